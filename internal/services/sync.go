package services

import (
	"context"
	"fmt"

	"github.com/qforge/fmea-backend/internal/docstore"
	"github.com/qforge/fmea-backend/internal/engine/cdsync"
	"github.com/qforge/fmea-backend/internal/platform/apierr"
	"github.com/qforge/fmea-backend/internal/platform/logger"
	"github.com/qforge/fmea-backend/internal/repos"
	"github.com/qforge/fmea-backend/internal/types"
)

// DirectionFMEAToCP is the only supported structure-sync direction: the
// control plan's skeleton is always derived from the FMEA side.
const DirectionFMEAToCP = "fmea-to-cp"

type SyncDataReport struct {
	MatchedRows int  `json:"matched_rows"`
	ChangedRows int  `json:"changed_rows"`
	Rebuilt     bool `json:"rebuilt"`
}

// SyncService propagates structure and characteristic data between an FMEA
// analysis and its downstream control plan. All writes go through the
// document models; the cp-wins path triggers a rebuild of the FMEA analysis
// so its atomic schema follows the document.
type SyncService interface {
	SyncStructure(ctx context.Context, direction, sourceID, targetID string, opts cdsync.StructureOptions) (*cdsync.StructureReport, error)
	SyncData(ctx context.Context, fmeaID, cpNo string, policy cdsync.ConflictPolicy, fields []cdsync.Field) (*SyncDataReport, error)
}

type syncService struct {
	log        *logger.Logger
	docs       docstore.Store
	structures repos.StructureRepo
	functions  repos.FunctionRepo
	rebuild    RebuildService
}

func NewSyncService(
	baseLog *logger.Logger,
	docs docstore.Store,
	structures repos.StructureRepo,
	functions repos.FunctionRepo,
	rebuild RebuildService,
) SyncService {
	return &syncService{
		log:        baseLog.With("service", "SyncService"),
		docs:       docs,
		structures: structures,
		functions:  functions,
		rebuild:    rebuild,
	}
}

func (s *syncService) loadUnits(ctx context.Context, analysisID string) ([]cdsync.Unit, []types.L2Structure, error) {
	l2s, err := s.structures.GetL2(ctx, nil, analysisID)
	if err != nil {
		return nil, nil, apierr.Storage(fmt.Errorf("load l2 structures: %w", err))
	}
	l3s, err := s.structures.GetL3(ctx, nil, analysisID)
	if err != nil {
		return nil, nil, apierr.Storage(fmt.Errorf("load l3 structures: %w", err))
	}
	l2f, err := s.functions.GetL2(ctx, nil, analysisID)
	if err != nil {
		return nil, nil, apierr.Storage(fmt.Errorf("load l2 functions: %w", err))
	}
	l3f, err := s.functions.GetL3(ctx, nil, analysisID)
	if err != nil {
		return nil, nil, apierr.Storage(fmt.Errorf("load l3 functions: %w", err))
	}
	return cdsync.ExtractUnits(l2s, l2f, l3s, l3f), l2s, nil
}

func (s *syncService) SyncStructure(ctx context.Context, direction, sourceID, targetID string, opts cdsync.StructureOptions) (*cdsync.StructureReport, error) {
	if direction != DirectionFMEAToCP {
		return nil, apierr.BadRequest(fmt.Errorf("unsupported sync direction %q", direction))
	}

	units, l2s, err := s.loadUnits(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	if len(l2s) == 0 {
		return nil, apierr.NotFound(fmt.Errorf("analysis %s has no atomic structures; rebuild it first", sourceID))
	}

	cp, err := s.docs.LoadControlPlan(ctx, targetID)
	if err != nil {
		return nil, apierr.Storage(fmt.Errorf("load control plan: %w", err))
	}
	if cp == nil {
		cp = &types.ControlPlanDocument{CPNo: targetID}
	}

	report := cdsync.AlignStructure(cp, l2s, units, opts)
	if err := s.docs.SaveControlPlan(ctx, targetID, cp); err != nil {
		return nil, apierr.Storage(fmt.Errorf("save control plan: %w", err))
	}

	s.log.Info("Control plan structure aligned",
		"source_id", sourceID,
		"cp_no", targetID,
		"processes_created", report.ProcessesCreated,
		"rows_created", report.RowsCreated,
	)
	return &report, nil
}

func (s *syncService) SyncData(ctx context.Context, fmeaID, cpNo string, policy cdsync.ConflictPolicy, fields []cdsync.Field) (*SyncDataReport, error) {
	units, _, err := s.loadUnits(ctx, fmeaID)
	if err != nil {
		return nil, err
	}

	cp, err := s.docs.LoadControlPlan(ctx, cpNo)
	if err != nil {
		return nil, apierr.Storage(fmt.Errorf("load control plan: %w", err))
	}
	if cp == nil {
		return nil, apierr.NotFound(fmt.Errorf("no control plan %s", cpNo))
	}

	switch policy {
	case cdsync.PolicyFMEAWins:
		return s.syncFMEAWins(ctx, cpNo, cp, units, fields)
	case cdsync.PolicyCPWins:
		return s.syncCPWins(ctx, fmeaID, cp, units, fields)
	default:
		return nil, apierr.BadRequest(fmt.Errorf("unknown conflict policy %q", policy))
	}
}

func (s *syncService) syncFMEAWins(ctx context.Context, cpNo string, cp *types.ControlPlanDocument, units []cdsync.Unit, fields []cdsync.Field) (*SyncDataReport, error) {
	report := &SyncDataReport{}
	for pi := range cp.Processes {
		proc := &cp.Processes[pi]
		for ri := range proc.Rows {
			unit, ok := cdsync.MatchUnit(units, proc.No, proc.Name, proc.Rows[ri])
			if !ok {
				continue
			}
			report.MatchedRows++
			if cdsync.ApplyFMEAWins(&proc.Rows[ri], unit, fields) {
				report.ChangedRows++
			}
		}
	}
	if report.ChangedRows > 0 {
		if err := s.docs.SaveControlPlan(ctx, cpNo, cp); err != nil {
			return nil, apierr.Storage(fmt.Errorf("save control plan: %w", err))
		}
	}
	s.log.Info("Data synced fmea-wins", "cp_no", cpNo, "matched", report.MatchedRows, "changed", report.ChangedRows)
	return report, nil
}

func (s *syncService) syncCPWins(ctx context.Context, fmeaID string, cp *types.ControlPlanDocument, units []cdsync.Unit, fields []cdsync.Field) (*SyncDataReport, error) {
	doc, err := s.docs.LoadDocument(ctx, fmeaID)
	if err != nil {
		return nil, apierr.Storage(fmt.Errorf("load document: %w", err))
	}
	if doc == nil {
		return nil, apierr.NotFound(fmt.Errorf("no document for analysis %s", fmeaID))
	}

	report := &SyncDataReport{}
	for pi := range cp.Processes {
		proc := cp.Processes[pi]
		for _, row := range proc.Rows {
			unit, ok := cdsync.MatchUnit(units, proc.No, proc.Name, row)
			if !ok {
				continue
			}
			report.MatchedRows++
			if cdsync.ApplyCPWins(doc, unit, row, fields) {
				report.ChangedRows++
			}
		}
	}

	if report.ChangedRows > 0 {
		// The document is the source of truth: persist it, then rebuild so
		// the atomic schema reflects the write-back. The rebuild takes the
		// analysis lock like any other.
		if err := s.docs.SaveDocument(ctx, fmeaID, doc); err != nil {
			return nil, apierr.Storage(fmt.Errorf("save document: %w", err))
		}
		if _, err := s.rebuild.Rebuild(ctx, fmeaID); err != nil {
			return nil, err
		}
		report.Rebuilt = true
	}
	s.log.Info("Data synced cp-wins", "analysis_id", fmeaID, "matched", report.MatchedRows, "changed", report.ChangedRows, "rebuilt", report.Rebuilt)
	return report, nil
}
