package types

// ControlPlanDocument is the downstream control document. Its processes
// mirror the FMEA's L2 structures but carry their own row identifiers; rows
// are matched to FMEA data by structural path, never by id.
type ControlPlanDocument struct {
	CPNo      string          `json:"cpNo"`
	Processes []CPProcessNode `json:"processes"`
}

type CPProcessNode struct {
	ID   string      `json:"id,omitempty"`
	No   string      `json:"no"`
	Name string      `json:"name"`
	Rows []CPRowNode `json:"rows,omitempty"`
}

// CPRowNode is one control-plan line. Characteristics are enumerated per row:
// a process with three product characteristics has three rows, and each syncs
// independently.
type CPRowNode struct {
	ID          string `json:"id,omitempty"`
	WorkElement string `json:"workElement"`
	Equipment   string `json:"equipment"`
	ProductChar string `json:"productChar"`
	ProcessChar string `json:"processChar"`
	SpecialChar string `json:"specialChar"`
	Method      string `json:"method"`
	Frequency   string `json:"frequency"`
}
