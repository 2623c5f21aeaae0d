package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/qforge/fmea-backend/internal/engine/reverse"
	"github.com/qforge/fmea-backend/internal/platform/apierr"
	"github.com/qforge/fmea-backend/internal/platform/logger"
	"github.com/qforge/fmea-backend/internal/repos"
	"github.com/qforge/fmea-backend/internal/types"
)

// FailureAnalysisService reverse-engineers the denormalized display rows from
// the atomic schema and reconciles them against the persisted set so row
// identities stay stable across repeated reconciliations.
type FailureAnalysisService interface {
	Reconcile(ctx context.Context, analysisID string) ([]types.FailureAnalysisRow, reverse.Report, error)
}

type failureAnalysisService struct {
	db         *gorm.DB
	log        *logger.Logger
	structures repos.StructureRepo
	functions  repos.FunctionRepo
	failures   repos.FailureRepo
	rows       repos.AnalysisRowRepo
}

func NewFailureAnalysisService(
	db *gorm.DB,
	baseLog *logger.Logger,
	structures repos.StructureRepo,
	functions repos.FunctionRepo,
	failures repos.FailureRepo,
	rows repos.AnalysisRowRepo,
) FailureAnalysisService {
	return &failureAnalysisService{
		db:         db,
		log:        baseLog.With("service", "FailureAnalysisService"),
		structures: structures,
		functions:  functions,
		failures:   failures,
		rows:       rows,
	}
}

func (s *failureAnalysisService) loadAtomicSet(ctx context.Context, analysisID string) (*reverse.AtomicSet, error) {
	set := &reverse.AtomicSet{}
	var err error
	if set.L1, err = s.structures.GetL1(ctx, nil, analysisID); err != nil {
		return nil, err
	}
	if set.L2Structures, err = s.structures.GetL2(ctx, nil, analysisID); err != nil {
		return nil, err
	}
	if set.L3Structures, err = s.structures.GetL3(ctx, nil, analysisID); err != nil {
		return nil, err
	}
	if set.L1Functions, err = s.functions.GetL1(ctx, nil, analysisID); err != nil {
		return nil, err
	}
	if set.L2Functions, err = s.functions.GetL2(ctx, nil, analysisID); err != nil {
		return nil, err
	}
	if set.L3Functions, err = s.functions.GetL3(ctx, nil, analysisID); err != nil {
		return nil, err
	}
	if set.Effects, err = s.failures.GetEffects(ctx, nil, analysisID); err != nil {
		return nil, err
	}
	if set.Modes, err = s.failures.GetModes(ctx, nil, analysisID); err != nil {
		return nil, err
	}
	if set.Causes, err = s.failures.GetCauses(ctx, nil, analysisID); err != nil {
		return nil, err
	}
	if set.Links, err = s.failures.GetLinks(ctx, nil, analysisID); err != nil {
		return nil, err
	}
	return set, nil
}

func (s *failureAnalysisService) Reconcile(ctx context.Context, analysisID string) ([]types.FailureAnalysisRow, reverse.Report, error) {
	set, err := s.loadAtomicSet(ctx, analysisID)
	if err != nil {
		return nil, reverse.Report{}, apierr.Storage(fmt.Errorf("load atomic schema: %w", err))
	}

	existing, err := s.rows.GetByAnalysisID(ctx, nil, analysisID)
	if err != nil {
		return nil, reverse.Report{}, apierr.Storage(fmt.Errorf("load analysis rows: %w", err))
	}

	rows := reverse.Update(existing, set)
	report := reverse.Validate(rows)
	for _, warn := range report.Warnings {
		s.log.Warn("Incomplete failure chain", "analysis_id", analysisID, "link_id", warn.LinkID, "detail", warn.Message)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.rows.ReplaceForAnalysis(ctx, tx, analysisID, rows)
	})
	if err != nil {
		return nil, reverse.Report{}, apierr.Storage(fmt.Errorf("store analysis rows: %w", err))
	}
	return rows, report, nil
}
