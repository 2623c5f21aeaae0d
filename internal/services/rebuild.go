package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/qforge/fmea-backend/internal/docstore"
	"github.com/qforge/fmea-backend/internal/engine/normalize"
	"github.com/qforge/fmea-backend/internal/platform/apierr"
	"github.com/qforge/fmea-backend/internal/platform/logger"
	"github.com/qforge/fmea-backend/internal/repos"
	"github.com/qforge/fmea-backend/internal/types"
)

// RebuildReport is returned to the caller for observability: how many rows of
// each entity the committed snapshot holds.
type RebuildReport struct {
	AnalysisID string         `json:"analysisId"`
	Schema     string         `json:"schema"`
	Rebuilt    map[string]int `json:"rebuilt"`
}

// RebuildService is the only component allowed to mass-delete atomic rows.
// It loads the authoritative document, normalizes it and atomically replaces
// the analysis' entire atomic schema inside one transaction. The operation is
// idempotent, so callers may retry on storage failures.
type RebuildService interface {
	Rebuild(ctx context.Context, analysisID string) (*RebuildReport, error)
}

type rebuildService struct {
	db         *gorm.DB
	log        *logger.Logger
	docs       docstore.Store
	structures repos.StructureRepo
	functions  repos.FunctionRepo
	failures   repos.FailureRepo
	runs       repos.RebuildRunRepo
	locks      *analysisLocks
	group      singleflight.Group
	opts       normalize.Options
}

func NewRebuildService(
	db *gorm.DB,
	baseLog *logger.Logger,
	docs docstore.Store,
	structures repos.StructureRepo,
	functions repos.FunctionRepo,
	failures repos.FailureRepo,
	runs repos.RebuildRunRepo,
	opts normalize.Options,
) RebuildService {
	return &rebuildService{
		db:         db,
		log:        baseLog.With("service", "RebuildService"),
		docs:       docs,
		structures: structures,
		functions:  functions,
		failures:   failures,
		runs:       runs,
		locks:      newAnalysisLocks(),
		opts:       opts,
	}
}

func (s *rebuildService) Rebuild(ctx context.Context, analysisID string) (*RebuildReport, error) {
	// Concurrent identical rebuilds collapse into one execution; rebuild is
	// idempotent so every waiter can share the same result. The execution is
	// detached from the first caller's cancellation so one aborted request
	// cannot fail the waiters collapsed behind it.
	v, err, _ := s.group.Do(analysisID, func() (interface{}, error) {
		ctx := context.WithoutCancel(ctx)
		release := s.locks.acquire(analysisID)
		defer release()
		return s.rebuild(ctx, analysisID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*RebuildReport), nil
}

func (s *rebuildService) rebuild(ctx context.Context, analysisID string) (*RebuildReport, error) {
	doc, err := s.docs.LoadDocument(ctx, analysisID)
	if err != nil {
		return nil, apierr.Storage(fmt.Errorf("load document: %w", err))
	}
	if doc == nil {
		return nil, apierr.NotFound(fmt.Errorf("no document for analysis %s", analysisID))
	}

	steps, err := s.docs.LoadConfirmedState(ctx, analysisID)
	if err != nil {
		return nil, apierr.Storage(fmt.Errorf("load confirmed state: %w", err))
	}
	if steps != nil {
		doc.Steps = *steps
	}

	snap := normalize.Normalize(analysisID, doc, s.opts)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.failures.DeleteByAnalysisID(ctx, tx, analysisID); err != nil {
			return fmt.Errorf("purge failures: %w", err)
		}
		if err := s.functions.DeleteByAnalysisID(ctx, tx, analysisID); err != nil {
			return fmt.Errorf("purge functions: %w", err)
		}
		if err := s.structures.DeleteByAnalysisID(ctx, tx, analysisID); err != nil {
			return fmt.Errorf("purge structures: %w", err)
		}

		if err := s.structures.InsertL1(ctx, tx, snap.L1); err != nil {
			return fmt.Errorf("insert l1 structure: %w", err)
		}
		if err := s.structures.InsertL2(ctx, tx, snap.L2Structures); err != nil {
			return fmt.Errorf("insert l2 structures: %w", err)
		}
		if err := s.structures.InsertL3(ctx, tx, snap.L3Structures); err != nil {
			return fmt.Errorf("insert l3 structures: %w", err)
		}
		if err := s.functions.InsertL1(ctx, tx, snap.L1Functions); err != nil {
			return fmt.Errorf("insert l1 functions: %w", err)
		}
		if err := s.functions.InsertL2(ctx, tx, snap.L2Functions); err != nil {
			return fmt.Errorf("insert l2 functions: %w", err)
		}
		if err := s.functions.InsertL3(ctx, tx, snap.L3Functions); err != nil {
			return fmt.Errorf("insert l3 functions: %w", err)
		}
		if err := s.failures.InsertEffects(ctx, tx, snap.Effects); err != nil {
			return fmt.Errorf("insert effects: %w", err)
		}
		if err := s.failures.InsertModes(ctx, tx, snap.Modes); err != nil {
			return fmt.Errorf("insert modes: %w", err)
		}
		if err := s.failures.InsertCauses(ctx, tx, snap.Causes); err != nil {
			return fmt.Errorf("insert causes: %w", err)
		}
		if err := s.failures.InsertLinks(ctx, tx, snap.Links); err != nil {
			return fmt.Errorf("insert links: %w", err)
		}
		if err := s.failures.InsertRisks(ctx, tx, snap.Risks); err != nil {
			return fmt.Errorf("insert risks: %w", err)
		}
		if err := s.failures.InsertOptimizations(ctx, tx, snap.Optimizations); err != nil {
			return fmt.Errorf("insert optimizations: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, apierr.Storage(err)
	}

	counts := snap.Counts()
	s.writeAudit(ctx, analysisID, counts)
	s.log.Info("Atomic schema rebuilt",
		"analysis_id", analysisID,
		"l2_structures", counts["l2Structures"],
		"failure_links", counts["failureLinks"],
	)

	return &RebuildReport{
		AnalysisID: analysisID,
		Schema:     types.SchemaVersion,
		Rebuilt:    counts,
	}, nil
}

// writeAudit records the committed counts; failures here never fail the
// rebuild itself.
func (s *rebuildService) writeAudit(ctx context.Context, analysisID string, counts map[string]int) {
	raw, err := json.Marshal(counts)
	if err != nil {
		return
	}
	run := &types.RebuildRun{
		ID:         uuid.New(),
		AnalysisID: analysisID,
		Schema:     types.SchemaVersion,
		Counts:     raw,
	}
	if err := s.runs.Create(ctx, nil, run); err != nil {
		s.log.Warn("Failed to write rebuild audit row", "analysis_id", analysisID, "error", err)
	}
}
