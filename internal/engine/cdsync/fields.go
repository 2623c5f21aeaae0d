package cdsync

import "fmt"

// Field names one syncable column between the FMEA atomic schema and a
// control-plan row.
type Field string

const (
	FieldEquipment   Field = "equipment"
	FieldWorkElement Field = "workElement"
	FieldProductChar Field = "productChar"
	FieldProcessChar Field = "processChar"
	FieldSpecialChar Field = "specialChar"
)

// ConflictPolicy declares which document wins on a matched row.
type ConflictPolicy string

const (
	// PolicyFMEAWins overwrites control-plan values from the FMEA side;
	// used to repair target drift.
	PolicyFMEAWins ConflictPolicy = "fmea-wins"
	// PolicyCPWins flows control-plan edits back into the FMEA document.
	// The write goes through the document model and a rebuild, never into
	// the atomic tables directly.
	PolicyCPWins ConflictPolicy = "cp-wins"
)

func ParsePolicy(s string) (ConflictPolicy, error) {
	switch ConflictPolicy(s) {
	case PolicyFMEAWins, PolicyCPWins:
		return ConflictPolicy(s), nil
	default:
		return "", fmt.Errorf("unknown conflict policy %q", s)
	}
}

func ParseFields(names []string) ([]Field, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("no sync fields declared")
	}
	fields := make([]Field, 0, len(names))
	for _, name := range names {
		switch f := Field(name); f {
		case FieldEquipment, FieldWorkElement, FieldProductChar, FieldProcessChar, FieldSpecialChar:
			fields = append(fields, f)
		default:
			return nil, fmt.Errorf("unknown sync field %q", name)
		}
	}
	return fields, nil
}

func hasField(fields []Field, f Field) bool {
	for _, v := range fields {
		if v == f {
			return true
		}
	}
	return false
}
