package docstore

import (
	"context"
	"strings"

	"github.com/qforge/fmea-backend/internal/types"
)

// Store persists the legacy documents: the FMEA document tree (durable source
// of truth), the separately tracked confirmation record, and the control-plan
// document. The atomic schema is derived from these, never the other way
// around except through the cp-wins write-back path.
type Store interface {
	LoadDocument(ctx context.Context, analysisID string) (*types.Document, error)
	SaveDocument(ctx context.Context, analysisID string, doc *types.Document) error
	LoadConfirmedState(ctx context.Context, analysisID string) (*types.ConfirmedSteps, error)
	SaveConfirmedState(ctx context.Context, analysisID string, steps *types.ConfirmedSteps) error
	LoadControlPlan(ctx context.Context, cpNo string) (*types.ControlPlanDocument, error)
	SaveControlPlan(ctx context.Context, cpNo string, doc *types.ControlPlanDocument) error
	ListAnalysisIDs(ctx context.Context) ([]string, error)
}

// Document payloads migrated through several storage generations; loads probe
// these prefixes in priority order and take the first structurally valid hit.
// Saves always write the first prefix.
var documentPrefixes = []string{"fmea:doc:", "fmea:legacy:", "doc:"}

const (
	confirmPrefix     = "fmea:confirm:"
	controlPlanPrefix = "cp:doc:"
)

// NormalizeAnalysisID upper-cases an analysis id at the boundary. Storage
// keys are case-sensitive, user input is not.
func NormalizeAnalysisID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
