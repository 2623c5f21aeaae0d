package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SchemaVersion names the atomic table layout; reported by rebuild so callers
// can tell which generation of the derived schema they are reading.
const SchemaVersion = "atomic/v2"

// The atomic schema is the normalized, rebuildable index over one legacy
// document. Every row is scoped by analysis_id and carries a stable id that
// survives rebuilds (derived from the node's hierarchical path when the node
// itself has none).

type L1Structure struct {
	ID         string    `gorm:"type:text;primaryKey" json:"id"`
	AnalysisID string    `gorm:"column:analysis_id;not null;index" json:"analysis_id"`
	Name       string    `gorm:"column:name;not null" json:"name"`
	Confirmed  bool      `gorm:"column:confirmed;not null;default:false" json:"confirmed"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (L1Structure) TableName() string { return "l1_structure" }

type L2Structure struct {
	ID         string    `gorm:"type:text;primaryKey" json:"id"`
	AnalysisID string    `gorm:"column:analysis_id;not null;index" json:"analysis_id"`
	No         string    `gorm:"column:no;not null" json:"no"`
	Name       string    `gorm:"column:name;not null" json:"name"`
	Order      int       `gorm:"column:sort_order;not null;default:0" json:"order"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (L2Structure) TableName() string { return "l2_structure" }

type L3Structure struct {
	ID         string    `gorm:"type:text;primaryKey" json:"id"`
	AnalysisID string    `gorm:"column:analysis_id;not null;index" json:"analysis_id"`
	L2ID       string    `gorm:"column:l2_id;not null;index" json:"l2_id"`
	M4         string    `gorm:"column:m4" json:"m4"`
	Name       string    `gorm:"column:name;not null" json:"name"`
	Order      int       `gorm:"column:sort_order;not null;default:0" json:"order"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (L3Structure) TableName() string { return "l3_structure" }

type L1Function struct {
	ID           string    `gorm:"type:text;primaryKey" json:"id"`
	AnalysisID   string    `gorm:"column:analysis_id;not null;index" json:"analysis_id"`
	L1StructID   string    `gorm:"column:l1_struct_id;not null;index" json:"l1_struct_id"`
	Category     string    `gorm:"column:category" json:"category"`
	FunctionName string    `gorm:"column:function_name" json:"function_name"`
	Requirement  string    `gorm:"column:requirement" json:"requirement"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

func (L1Function) TableName() string { return "l1_function" }

type L2Function struct {
	ID           string    `gorm:"type:text;primaryKey" json:"id"`
	AnalysisID   string    `gorm:"column:analysis_id;not null;index" json:"analysis_id"`
	L2StructID   string    `gorm:"column:l2_struct_id;not null;index" json:"l2_struct_id"`
	FunctionName string    `gorm:"column:function_name" json:"function_name"`
	ProductChar  string    `gorm:"column:product_char" json:"product_char"`
	SpecialChar  string    `gorm:"column:special_char" json:"special_char"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

func (L2Function) TableName() string { return "l2_function" }

// L3Function carries its parent L2 structure id alongside the owning L3
// structure so reverse engineering never has to re-derive the two-hop join.
type L3Function struct {
	ID           string    `gorm:"type:text;primaryKey" json:"id"`
	AnalysisID   string    `gorm:"column:analysis_id;not null;index" json:"analysis_id"`
	L3StructID   string    `gorm:"column:l3_struct_id;not null;index" json:"l3_struct_id"`
	L2StructID   string    `gorm:"column:l2_struct_id;not null;index" json:"l2_struct_id"`
	FunctionName string    `gorm:"column:function_name" json:"function_name"`
	ProcessChar  string    `gorm:"column:process_char" json:"process_char"`
	SpecialChar  string    `gorm:"column:special_char" json:"special_char"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

func (L3Function) TableName() string { return "l3_function" }

type FailureEffect struct {
	ID         string    `gorm:"type:text;primaryKey" json:"id"`
	AnalysisID string    `gorm:"column:analysis_id;not null;index" json:"analysis_id"`
	L1FuncID   string    `gorm:"column:l1_func_id;not null;index" json:"l1_func_id"`
	Category   string    `gorm:"column:category" json:"category"`
	Effect     string    `gorm:"column:effect;not null" json:"effect"`
	Severity   int       `gorm:"column:severity;not null;default:0" json:"severity"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (FailureEffect) TableName() string { return "failure_effect" }

type FailureMode struct {
	ID            string    `gorm:"type:text;primaryKey" json:"id"`
	AnalysisID    string    `gorm:"column:analysis_id;not null;index" json:"analysis_id"`
	L2FuncID      string    `gorm:"column:l2_func_id;not null;index" json:"l2_func_id"`
	L2StructID    string    `gorm:"column:l2_struct_id;not null;index" json:"l2_struct_id"`
	Mode          string    `gorm:"column:mode;not null" json:"mode"`
	ProductCharID string    `gorm:"column:product_char_id" json:"product_char_id"`
	SpecialChar   bool      `gorm:"column:special_char;not null;default:false" json:"special_char"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null" json:"updated_at"`
}

func (FailureMode) TableName() string { return "failure_mode" }

type FailureCause struct {
	ID         string    `gorm:"type:text;primaryKey" json:"id"`
	AnalysisID string    `gorm:"column:analysis_id;not null;index" json:"analysis_id"`
	L3FuncID   string    `gorm:"column:l3_func_id;not null;index" json:"l3_func_id"`
	L3StructID string    `gorm:"column:l3_struct_id;not null;index" json:"l3_struct_id"`
	L2StructID string    `gorm:"column:l2_struct_id;not null;index" json:"l2_struct_id"`
	Cause      string    `gorm:"column:cause;not null" json:"cause"`
	Occurrence int       `gorm:"column:occurrence;not null;default:0" json:"occurrence"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (FailureCause) TableName() string { return "failure_cause" }

// FailureLink joins one cause→mode→effect chain. Its identity is the triple:
// links are never carried across rebuilds, they are derived fresh each time.
// FEID and FCID may be empty while a chain is partially authored.
type FailureLink struct {
	ID         string    `gorm:"type:text;primaryKey" json:"id"`
	AnalysisID string    `gorm:"column:analysis_id;not null;index" json:"analysis_id"`
	FMID       string    `gorm:"column:fm_id;not null;index" json:"fm_id"`
	FEID       string    `gorm:"column:fe_id;index" json:"fe_id"`
	FCID       string    `gorm:"column:fc_id;index" json:"fc_id"`
	Order      int       `gorm:"column:sort_order;not null;default:0" json:"order"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (FailureLink) TableName() string { return "failure_link" }

type RiskAnalysis struct {
	ID         string    `gorm:"type:text;primaryKey" json:"id"`
	AnalysisID string    `gorm:"column:analysis_id;not null;index" json:"analysis_id"`
	LinkID     string    `gorm:"column:link_id;not null;index" json:"link_id"`
	Severity   int       `gorm:"column:severity;not null;default:0" json:"severity"`
	Occurrence int       `gorm:"column:occurrence;not null;default:0" json:"occurrence"`
	Detection  int       `gorm:"column:detection;not null;default:0" json:"detection"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (RiskAnalysis) TableName() string { return "risk_analysis" }

type Optimization struct {
	ID               string    `gorm:"type:text;primaryKey" json:"id"`
	AnalysisID       string    `gorm:"column:analysis_id;not null;index" json:"analysis_id"`
	LinkID           string    `gorm:"column:link_id;not null;index" json:"link_id"`
	PreventionAction string    `gorm:"column:prevention_action" json:"prevention_action"`
	DetectionAction  string    `gorm:"column:detection_action" json:"detection_action"`
	Status           string    `gorm:"column:status" json:"status"`
	CreatedAt        time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time `gorm:"not null" json:"updated_at"`
}

func (Optimization) TableName() string { return "optimization" }

// FailureAnalysisRow is a reverse-engineered display row: one per failure
// link, carrying the full denormalized hierarchy context so the grid never
// joins at read time. Rows are re-derived on every reconciliation but keep
// their id and created_at for unchanged links.
type FailureAnalysisRow struct {
	ID          string    `gorm:"type:text;primaryKey" json:"id"`
	AnalysisID  string    `gorm:"column:analysis_id;not null;index" json:"analysis_id"`
	LinkID      string    `gorm:"column:link_id;not null;index" json:"link_id"`
	FMID        string    `gorm:"column:fm_id;not null" json:"fm_id"`
	FEID        string    `gorm:"column:fe_id" json:"fe_id"`
	FCID        string    `gorm:"column:fc_id" json:"fc_id"`
	ProductName string    `gorm:"column:product_name" json:"product_name"`
	ProcessNo   string    `gorm:"column:process_no" json:"process_no"`
	ProcessName string    `gorm:"column:process_name" json:"process_name"`
	WorkElement string    `gorm:"column:work_element" json:"work_element"`
	M4          string    `gorm:"column:m4" json:"m4"`
	ProductChar string    `gorm:"column:product_char" json:"product_char"`
	ProcessChar string    `gorm:"column:process_char" json:"process_char"`
	SpecialChar string    `gorm:"column:special_char" json:"special_char"`
	Category    string    `gorm:"column:category" json:"category"`
	Requirement string    `gorm:"column:requirement" json:"requirement"`
	Mode        string    `gorm:"column:mode" json:"mode"`
	Effect      string    `gorm:"column:effect" json:"effect"`
	Cause       string    `gorm:"column:cause" json:"cause"`
	Severity    int       `gorm:"column:severity;not null;default:0" json:"severity"`
	Occurrence  int       `gorm:"column:occurrence;not null;default:0" json:"occurrence"`
	Order       int       `gorm:"column:sort_order;not null;default:0" json:"order"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (FailureAnalysisRow) TableName() string { return "failure_analysis" }

// RebuildRun is an audit row written after every committed rebuild; counts is
// the per-entity report serialized as jsonb.
type RebuildRun struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	AnalysisID string         `gorm:"column:analysis_id;not null;index" json:"analysis_id"`
	Schema     string         `gorm:"column:schema;not null" json:"schema"`
	Counts     datatypes.JSON `gorm:"column:counts;type:jsonb" json:"counts"`
	CreatedAt  time.Time      `gorm:"not null" json:"created_at"`
}

func (RebuildRun) TableName() string { return "rebuild_run" }
