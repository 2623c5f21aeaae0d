package types

// Document is the legacy FMEA document: one deeply nested tree per analysis,
// durable source of truth for everything the atomic schema derives. It is
// mutated by the editor and persisted after every edit; the atomic tables are
// rebuilt from it wholesale.
type Document struct {
	Subject          string            `json:"subject"`
	SubjectConfirmed bool              `json:"subjectConfirmed"`
	ScopeFunctions   []L1FunctionNode  `json:"scopeFunctions"`
	Processes        []ProcessNode     `json:"processes"`
	Steps            ConfirmedSteps    `json:"steps"`
}

// ProcessNode is one L2 structure: a process step with its product functions
// and work elements.
type ProcessNode struct {
	ID           string            `json:"id,omitempty"`
	No           string            `json:"no"`
	Name         string            `json:"name"`
	Order        int               `json:"order"`
	Functions    []L2FunctionNode  `json:"functions,omitempty"`
	WorkElements []WorkElementNode `json:"workElements,omitempty"`
}

// WorkElementNode is one L3 structure under a process, tagged with its 4M
// category (Man/Machine/Material/Method).
type WorkElementNode struct {
	ID        string           `json:"id,omitempty"`
	M4        string           `json:"m4"`
	Name      string           `json:"name"`
	Order     int              `json:"order"`
	Functions []L3FunctionNode `json:"functions,omitempty"`
}

type L1FunctionNode struct {
	ID           string              `json:"id,omitempty"`
	Category     string              `json:"category"`
	FunctionName string              `json:"functionName"`
	Requirement  string              `json:"requirement"`
	Effects      []FailureEffectNode `json:"effects,omitempty"`
}

type L2FunctionNode struct {
	ID           string            `json:"id,omitempty"`
	FunctionName string            `json:"functionName"`
	ProductChar  string            `json:"productChar"`
	SpecialChar  string            `json:"specialChar"`
	Modes        []FailureModeNode `json:"modes,omitempty"`
}

type L3FunctionNode struct {
	ID           string             `json:"id,omitempty"`
	FunctionName string             `json:"functionName"`
	ProcessChar  string             `json:"processChar"`
	SpecialChar  string             `json:"specialChar"`
	Causes       []FailureCauseNode `json:"causes,omitempty"`
}

type FailureEffectNode struct {
	ID       string `json:"id,omitempty"`
	Category string `json:"category"`
	Effect   string `json:"effect"`
	Severity int    `json:"severity"`
}

type FailureModeNode struct {
	ID          string            `json:"id,omitempty"`
	Mode        string            `json:"mode"`
	SpecialChar bool              `json:"specialChar"`
	Links       []FailureLinkNode `json:"links,omitempty"`
}

type FailureCauseNode struct {
	ID         string `json:"id,omitempty"`
	Cause      string `json:"cause"`
	Occurrence int    `json:"occurrence"`
}

// FailureLinkNode ties the owning failure mode to an effect and a cause by
// node id. Either side may be empty while the chain is still being authored.
type FailureLinkNode struct {
	EffectID     string            `json:"effectId,omitempty"`
	CauseID      string            `json:"causeId,omitempty"`
	Risk         *RiskNode         `json:"risk,omitempty"`
	Optimization *OptimizationNode `json:"optimization,omitempty"`
}

type RiskNode struct {
	Severity   int `json:"severity"`
	Occurrence int `json:"occurrence"`
	Detection  int `json:"detection"`
}

type OptimizationNode struct {
	PreventionAction string `json:"preventionAction"`
	DetectionAction  string `json:"detectionAction"`
	Status           string `json:"status"`
}

// ConfirmedSteps marks which authoring phases are locked. Tracked outside the
// document body in legacy storage, merged in before normalization.
type ConfirmedSteps struct {
	Structure    bool `json:"structureConfirmed"`
	L1           bool `json:"l1Confirmed"`
	L2           bool `json:"l2Confirmed"`
	L3           bool `json:"l3Confirmed"`
	Risk         bool `json:"riskConfirmed"`
	Optimization bool `json:"optimizationConfirmed"`
}

// HasStructure reports whether the document carries at least one recognizable
// structure array. Used by the document store to tell a real legacy payload
// apart from unrelated values stored under probed key prefixes.
func (d *Document) HasStructure() bool {
	if d == nil {
		return false
	}
	return len(d.Processes) > 0 || len(d.ScopeFunctions) > 0 || d.Subject != ""
}
