package cdsync

import (
	"strings"

	"github.com/qforge/fmea-backend/internal/types"
)

// Unit is one matchable slice of a process: the process path plus at most one
// distinct characteristic. Control-plan rows enumerate characteristics one
// per row, so sync treats every characteristic as an independent unit rather
// than overwriting all rows of a process with a single value.
type Unit struct {
	ProcessNo   string
	ProcessName string
	ProductChar string
	ProcessChar string
	SpecialChar string
	WorkElement string
	Equipment   string
}

// ProcessKey matches processes across documents by structural path, never by
// row id: two documents do not share identifiers.
func ProcessKey(no, name string) string {
	return strings.TrimSpace(no) + "|" + strings.TrimSpace(name)
}

// ExtractUnits derives the FMEA side's matchable units from the atomic
// schema. Each product characteristic yields a unit; process characteristics
// without a product counterpart yield their own units; a process with no
// characteristics at all yields a single bare unit.
func ExtractUnits(
	l2Structs []types.L2Structure,
	l2Funcs []types.L2Function,
	l3Structs []types.L3Structure,
	l3Funcs []types.L3Function,
) []Unit {
	l3ByL2 := map[string][]types.L3Structure{}
	for _, l3 := range l3Structs {
		l3ByL2[l3.L2ID] = append(l3ByL2[l3.L2ID], l3)
	}
	l3fByL2 := map[string][]types.L3Function{}
	for _, l3f := range l3Funcs {
		l3fByL2[l3f.L2StructID] = append(l3fByL2[l3f.L2StructID], l3f)
	}
	l2fByL2 := map[string][]types.L2Function{}
	for _, l2f := range l2Funcs {
		l2fByL2[l2f.L2StructID] = append(l2fByL2[l2f.L2StructID], l2f)
	}

	var units []Unit
	for _, l2 := range l2Structs {
		// Machine-type work element doubles as the equipment value.
		workElement, equipment := "", ""
		for _, l3 := range l3ByL2[l2.ID] {
			if workElement == "" {
				workElement = l3.Name
			}
			if equipment == "" && l3.M4 == "MC" {
				equipment = l3.Name
			}
		}
		if equipment == "" {
			equipment = workElement
		}

		base := Unit{
			ProcessNo:   l2.No,
			ProcessName: l2.Name,
			WorkElement: workElement,
			Equipment:   equipment,
		}

		emitted := false
		for _, l2f := range l2fByL2[l2.ID] {
			if strings.TrimSpace(l2f.ProductChar) == "" {
				continue
			}
			u := base
			u.ProductChar = l2f.ProductChar
			u.SpecialChar = l2f.SpecialChar
			units = append(units, u)
			emitted = true
		}
		for _, l3f := range l3fByL2[l2.ID] {
			if strings.TrimSpace(l3f.ProcessChar) == "" {
				continue
			}
			u := base
			u.ProcessChar = l3f.ProcessChar
			if u.SpecialChar == "" {
				u.SpecialChar = l3f.SpecialChar
			}
			units = append(units, u)
			emitted = true
		}
		if !emitted {
			units = append(units, base)
		}
	}
	return units
}

// MatchUnit finds the unit a control-plan row syncs against: same process
// path, then the row's own characteristic value. A row without a
// characteristic falls back to the process's bare unit, if any.
func MatchUnit(units []Unit, processNo, processName string, row types.CPRowNode) (Unit, bool) {
	key := ProcessKey(processNo, processName)
	var bare *Unit
	for i := range units {
		u := units[i]
		if ProcessKey(u.ProcessNo, u.ProcessName) != key {
			continue
		}
		if row.ProductChar != "" && u.ProductChar == row.ProductChar {
			return u, true
		}
		if row.ProductChar == "" && row.ProcessChar != "" && u.ProcessChar == row.ProcessChar {
			return u, true
		}
		if u.ProductChar == "" && u.ProcessChar == "" && bare == nil {
			bare = &units[i]
		}
	}
	if row.ProductChar == "" && row.ProcessChar == "" && bare != nil {
		return *bare, true
	}
	return Unit{}, false
}
