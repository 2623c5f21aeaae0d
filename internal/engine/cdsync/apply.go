package cdsync

import (
	"strings"

	"github.com/qforge/fmea-backend/internal/types"
)

// ApplyFMEAWins copies the declared fields from a matched FMEA unit onto a
// control-plan row. Reports whether anything changed.
func ApplyFMEAWins(row *types.CPRowNode, unit Unit, fields []Field) bool {
	changed := false
	set := func(dst *string, val string) {
		if *dst != val {
			*dst = val
			changed = true
		}
	}
	if hasField(fields, FieldEquipment) {
		set(&row.Equipment, unit.Equipment)
	}
	if hasField(fields, FieldWorkElement) {
		set(&row.WorkElement, unit.WorkElement)
	}
	if hasField(fields, FieldProductChar) && unit.ProductChar != "" {
		set(&row.ProductChar, unit.ProductChar)
	}
	if hasField(fields, FieldProcessChar) && unit.ProcessChar != "" {
		set(&row.ProcessChar, unit.ProcessChar)
	}
	if hasField(fields, FieldSpecialChar) {
		set(&row.SpecialChar, unit.SpecialChar)
	}
	return changed
}

// ApplyCPWins writes a control-plan row's declared fields back into the FMEA
// document nodes the matched unit came from. Only the document is touched;
// the caller persists it and triggers a rebuild so the atomic schema follows.
func ApplyCPWins(doc *types.Document, unit Unit, row types.CPRowNode, fields []Field) bool {
	proc := findProcess(doc, unit.ProcessNo, unit.ProcessName)
	if proc == nil {
		return false
	}
	changed := false
	set := func(dst *string, val string) {
		if val != "" && *dst != val {
			*dst = val
			changed = true
		}
	}

	if hasField(fields, FieldEquipment) {
		if we := findWorkElement(proc, "MC"); we != nil {
			set(&we.Name, row.Equipment)
		}
	}
	if hasField(fields, FieldWorkElement) {
		if we := findWorkElement(proc, ""); we != nil {
			set(&we.Name, row.WorkElement)
		}
	}

	if unit.ProductChar != "" {
		for i := range proc.Functions {
			fn := &proc.Functions[i]
			if fn.ProductChar != unit.ProductChar {
				continue
			}
			if hasField(fields, FieldProductChar) {
				set(&fn.ProductChar, row.ProductChar)
			}
			if hasField(fields, FieldSpecialChar) {
				set(&fn.SpecialChar, row.SpecialChar)
			}
			break
		}
	}
	if unit.ProcessChar != "" {
		for wi := range proc.WorkElements {
			for fi := range proc.WorkElements[wi].Functions {
				fn := &proc.WorkElements[wi].Functions[fi]
				if fn.ProcessChar != unit.ProcessChar {
					continue
				}
				if hasField(fields, FieldProcessChar) {
					set(&fn.ProcessChar, row.ProcessChar)
				}
				if hasField(fields, FieldSpecialChar) && unit.ProductChar == "" {
					set(&fn.SpecialChar, row.SpecialChar)
				}
				return changed
			}
		}
	}
	return changed
}

func findProcess(doc *types.Document, no, name string) *types.ProcessNode {
	key := ProcessKey(no, name)
	for i := range doc.Processes {
		if ProcessKey(doc.Processes[i].No, doc.Processes[i].Name) == key {
			return &doc.Processes[i]
		}
	}
	return nil
}

// findWorkElement returns the first work element with the given 4M category,
// or the first one at all when the category is empty or has no match.
func findWorkElement(proc *types.ProcessNode, m4 string) *types.WorkElementNode {
	if len(proc.WorkElements) == 0 {
		return nil
	}
	if m4 != "" {
		for i := range proc.WorkElements {
			if proc.WorkElements[i].M4 == m4 {
				return &proc.WorkElements[i]
			}
		}
	}
	return &proc.WorkElements[0]
}

type StructureOptions struct {
	// Overwrite renames an existing target process when the source has a
	// different name under the same process number.
	Overwrite bool
}

type StructureReport struct {
	ProcessesCreated int `json:"processes_created"`
	ProcessesRenamed int `json:"processes_renamed"`
	RowsCreated      int `json:"rows_created"`
}

// AlignStructure creates or aligns the control plan's process/row skeleton
// from the FMEA side's structures: one process node per L2 structure, one row
// per characteristic unit. Existing rows are left alone; data flows through
// SyncData, not here.
func AlignStructure(cp *types.ControlPlanDocument, l2Structs []types.L2Structure, units []Unit, opts StructureOptions) StructureReport {
	var report StructureReport

	byNo := map[string]int{}
	for i := range cp.Processes {
		byNo[strings.TrimSpace(cp.Processes[i].No)] = i
	}

	for _, l2 := range l2Structs {
		pi, ok := byNo[strings.TrimSpace(l2.No)]
		if !ok {
			cp.Processes = append(cp.Processes, types.CPProcessNode{No: l2.No, Name: l2.Name})
			pi = len(cp.Processes) - 1
			byNo[strings.TrimSpace(l2.No)] = pi
			report.ProcessesCreated++
		} else if opts.Overwrite && cp.Processes[pi].Name != l2.Name {
			cp.Processes[pi].Name = l2.Name
			report.ProcessesRenamed++
		}
		proc := &cp.Processes[pi]

		for _, u := range units {
			if ProcessKey(u.ProcessNo, u.ProcessName) != ProcessKey(l2.No, l2.Name) {
				continue
			}
			if hasRowForUnit(proc.Rows, u) {
				continue
			}
			proc.Rows = append(proc.Rows, types.CPRowNode{
				WorkElement: u.WorkElement,
				Equipment:   u.Equipment,
				ProductChar: u.ProductChar,
				ProcessChar: u.ProcessChar,
				SpecialChar: u.SpecialChar,
			})
			report.RowsCreated++
		}
	}
	return report
}

func hasRowForUnit(rows []types.CPRowNode, u Unit) bool {
	for _, row := range rows {
		if u.ProductChar != "" {
			if row.ProductChar == u.ProductChar {
				return true
			}
			continue
		}
		if u.ProcessChar != "" {
			if row.ProcessChar == u.ProcessChar {
				return true
			}
			continue
		}
		if row.ProductChar == "" && row.ProcessChar == "" {
			return true
		}
	}
	return false
}
