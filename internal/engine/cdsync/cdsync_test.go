package cdsync

import (
	"testing"

	"github.com/qforge/fmea-backend/internal/types"
)

func sampleUnits() []Unit {
	l2s := []types.L2Structure{
		{ID: "l2s", AnalysisID: "FMEA-001", No: "10", Name: "Assembly"},
	}
	l2f := []types.L2Function{
		{ID: "l2f-a", L2StructID: "l2s", ProductChar: "press depth", SpecialChar: "SC"},
		{ID: "l2f-b", L2StructID: "l2s", ProductChar: "torque"},
	}
	l3s := []types.L3Structure{
		{ID: "l3s", L2ID: "l2s", M4: "MC", Name: "Press P-200"},
	}
	l3f := []types.L3Function{
		{ID: "l3f", L3StructID: "l3s", L2StructID: "l2s", ProcessChar: "press force"},
	}
	return ExtractUnits(l2s, l2f, l3s, l3f)
}

func TestExtractUnitsPerCharacteristic(t *testing.T) {
	units := sampleUnits()
	if len(units) != 3 {
		t.Fatalf("expected 3 units (2 product chars + 1 process char), got %d", len(units))
	}
	for _, u := range units {
		if u.Equipment != "Press P-200" {
			t.Fatalf("machine work element not used as equipment: %q", u.Equipment)
		}
	}
}

func TestMatchUnitPerCharacteristicIsolation(t *testing.T) {
	units := sampleUnits()

	rowA := types.CPRowNode{ProductChar: "press depth"}
	rowB := types.CPRowNode{ProductChar: "torque"}

	ua, ok := MatchUnit(units, "10", "Assembly", rowA)
	if !ok || ua.ProductChar != "press depth" || ua.SpecialChar != "SC" {
		t.Fatalf("row A matched wrong unit: %+v", ua)
	}
	ub, ok := MatchUnit(units, "10", "Assembly", rowB)
	if !ok || ub.ProductChar != "torque" {
		t.Fatalf("row B matched wrong unit: %+v", ub)
	}
	if _, ok := MatchUnit(units, "20", "Assembly", rowA); ok {
		t.Fatalf("matched across different process paths")
	}
}

func TestApplyFMEAWinsOverwritesDeclaredFieldsOnly(t *testing.T) {
	units := sampleUnits()
	row := types.CPRowNode{ProductChar: "press depth", Equipment: "Old press", Method: "visual"}
	unit, ok := MatchUnit(units, "10", "Assembly", row)
	if !ok {
		t.Fatalf("no unit matched")
	}

	changed := ApplyFMEAWins(&row, unit, []Field{FieldEquipment})
	if !changed || row.Equipment != "Press P-200" {
		t.Fatalf("declared field not overwritten: %q", row.Equipment)
	}
	if row.Method != "visual" {
		t.Fatalf("undeclared field touched")
	}

	if ApplyFMEAWins(&row, unit, []Field{FieldEquipment}) {
		t.Fatalf("second apply with equal values reported a change")
	}
}

func TestApplyCPWinsWritesIntoDocument(t *testing.T) {
	doc := &types.Document{
		Processes: []types.ProcessNode{
			{
				No:   "10",
				Name: "Assembly",
				Functions: []types.L2FunctionNode{
					{FunctionName: "Press bearing", ProductChar: "press depth"},
				},
				WorkElements: []types.WorkElementNode{
					{M4: "MC", Name: "Press P-100"},
				},
			},
		},
	}
	unit := Unit{ProcessNo: "10", ProcessName: "Assembly", ProductChar: "press depth"}
	row := types.CPRowNode{Equipment: "Press P-300", ProductChar: "press depth (rev B)"}

	changed := ApplyCPWins(doc, unit, row, []Field{FieldEquipment, FieldProductChar})
	if !changed {
		t.Fatalf("no change applied")
	}
	if doc.Processes[0].WorkElements[0].Name != "Press P-300" {
		t.Fatalf("equipment not written back: %q", doc.Processes[0].WorkElements[0].Name)
	}
	if doc.Processes[0].Functions[0].ProductChar != "press depth (rev B)" {
		t.Fatalf("product characteristic not written back")
	}
}

func TestApplyCPWinsIgnoresUnknownProcess(t *testing.T) {
	doc := &types.Document{Processes: []types.ProcessNode{{No: "10", Name: "Assembly"}}}
	unit := Unit{ProcessNo: "99", ProcessName: "Ghost"}
	if ApplyCPWins(doc, unit, types.CPRowNode{Equipment: "X"}, []Field{FieldEquipment}) {
		t.Fatalf("applied against a process the document does not have")
	}
}

func TestAlignStructureCreatesSkeleton(t *testing.T) {
	l2s := []types.L2Structure{
		{ID: "l2s", No: "10", Name: "Assembly"},
		{ID: "l2s2", No: "20", Name: "Inspection"},
	}
	units := append(sampleUnits(), Unit{ProcessNo: "20", ProcessName: "Inspection"})

	cp := &types.ControlPlanDocument{CPNo: "CP-7"}
	report := AlignStructure(cp, l2s, units, StructureOptions{})

	if report.ProcessesCreated != 2 {
		t.Fatalf("processes created = %d", report.ProcessesCreated)
	}
	if len(cp.Processes[0].Rows) != 3 {
		t.Fatalf("rows for assembly = %d, want one per characteristic unit", len(cp.Processes[0].Rows))
	}
	if len(cp.Processes[1].Rows) != 1 {
		t.Fatalf("rows for inspection = %d", len(cp.Processes[1].Rows))
	}

	// Aligning again must be a no-op.
	again := AlignStructure(cp, l2s, units, StructureOptions{})
	if again.ProcessesCreated != 0 || again.RowsCreated != 0 {
		t.Fatalf("realign not idempotent: %+v", again)
	}
}

func TestAlignStructureOverwriteRenames(t *testing.T) {
	cp := &types.ControlPlanDocument{
		Processes: []types.CPProcessNode{{No: "10", Name: "Asembly (typo)"}},
	}
	l2s := []types.L2Structure{{ID: "l2s", No: "10", Name: "Assembly"}}

	report := AlignStructure(cp, l2s, nil, StructureOptions{})
	if report.ProcessesRenamed != 0 || cp.Processes[0].Name != "Asembly (typo)" {
		t.Fatalf("renamed without overwrite")
	}
	report = AlignStructure(cp, l2s, nil, StructureOptions{Overwrite: true})
	if report.ProcessesRenamed != 1 || cp.Processes[0].Name != "Assembly" {
		t.Fatalf("overwrite did not rename: %+v", cp.Processes[0])
	}
}

func TestParseFieldsAndPolicy(t *testing.T) {
	fields, err := ParseFields([]string{"equipment", "specialChar"})
	if err != nil || len(fields) != 2 {
		t.Fatalf("parse fields: %v %v", fields, err)
	}
	if _, err := ParseFields([]string{"rpn"}); err == nil {
		t.Fatalf("unknown field accepted")
	}
	if _, err := ParseFields(nil); err == nil {
		t.Fatalf("empty field list accepted")
	}
	if _, err := ParsePolicy("cp-wins"); err != nil {
		t.Fatalf("cp-wins rejected: %v", err)
	}
	if _, err := ParsePolicy("newest-wins"); err == nil {
		t.Fatalf("unknown policy accepted")
	}
}
