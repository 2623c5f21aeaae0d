package reverse

import (
	"testing"
	"time"

	"github.com/qforge/fmea-backend/internal/types"
)

const analysisID = "FMEA-001"

func sampleSet() *AtomicSet {
	return &AtomicSet{
		L1: &types.L1Structure{ID: "l1", AnalysisID: analysisID, Name: "Drive Housing"},
		L2Structures: []types.L2Structure{
			{ID: "l2s", AnalysisID: analysisID, No: "10", Name: "Assembly"},
		},
		L3Structures: []types.L3Structure{
			{ID: "l3s", AnalysisID: analysisID, L2ID: "l2s", M4: "MC", Name: "Press"},
		},
		L1Functions: []types.L1Function{
			{ID: "l1f", AnalysisID: analysisID, L1StructID: "l1", Category: "fit", Requirement: "No leakage"},
		},
		L2Functions: []types.L2Function{
			{ID: "l2f", AnalysisID: analysisID, L2StructID: "l2s", FunctionName: "Press bearing", ProductChar: "press depth"},
		},
		L3Functions: []types.L3Function{
			{ID: "l3f", AnalysisID: analysisID, L3StructID: "l3s", L2StructID: "l2s", FunctionName: "Apply force", ProcessChar: "press force", SpecialChar: "CC"},
		},
		Effects: []types.FailureEffect{
			{ID: "fe", AnalysisID: analysisID, L1FuncID: "l1f", Effect: "Oil leak", Severity: 8},
		},
		Modes: []types.FailureMode{
			{ID: "fm", AnalysisID: analysisID, L2FuncID: "l2f", L2StructID: "l2s", Mode: "Bearing too shallow"},
		},
		Causes: []types.FailureCause{
			{ID: "fc", AnalysisID: analysisID, L3FuncID: "l3f", L3StructID: "l3s", L2StructID: "l2s", Cause: "Worn tool", Occurrence: 3},
		},
		Links: []types.FailureLink{
			{ID: "link-1", AnalysisID: analysisID, FMID: "fm", FEID: "fe", FCID: "fc"},
		},
	}
}

func TestBuildResolvesFullChain(t *testing.T) {
	rows := Build(sampleSet())
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	row := rows[0]
	if row.ProductName != "Drive Housing" {
		t.Fatalf("product name = %q", row.ProductName)
	}
	if row.ProcessNo != "10" || row.ProcessName != "Assembly" {
		t.Fatalf("process context = %q %q", row.ProcessNo, row.ProcessName)
	}
	if row.WorkElement != "Press" || row.M4 != "MC" {
		t.Fatalf("work element context = %q %q", row.WorkElement, row.M4)
	}
	if row.ProductChar != "press depth" || row.ProcessChar != "press force" {
		t.Fatalf("characteristics = %q %q", row.ProductChar, row.ProcessChar)
	}
	if row.Mode != "Bearing too shallow" || row.Effect != "Oil leak" || row.Cause != "Worn tool" {
		t.Fatalf("failure texts = %q %q %q", row.Mode, row.Effect, row.Cause)
	}
	if row.Severity != 8 || row.Occurrence != 3 {
		t.Fatalf("scores = %d %d", row.Severity, row.Occurrence)
	}
	if row.Category != "fit" || row.Requirement != "No leakage" {
		t.Fatalf("scope context = %q %q", row.Category, row.Requirement)
	}
}

func TestBuildSkipsLinkWithoutMode(t *testing.T) {
	set := sampleSet()
	set.Links = append(set.Links, types.FailureLink{ID: "link-bad", AnalysisID: analysisID, FMID: "missing"})
	rows := Build(set)
	if len(rows) != 1 {
		t.Fatalf("link without resolvable mode must be skipped, got %d rows", len(rows))
	}
}

func TestBuildEmitsIncompleteRows(t *testing.T) {
	set := sampleSet()
	set.Links[0].FCID = ""
	rows := Build(set)
	if len(rows) != 1 {
		t.Fatalf("partial chain dropped")
	}
	if rows[0].Cause != "" || rows[0].WorkElement != "" {
		t.Fatalf("empty chain side produced context: %q %q", rows[0].Cause, rows[0].WorkElement)
	}
	if rows[0].Effect != "Oil leak" {
		t.Fatalf("intact chain side lost: %q", rows[0].Effect)
	}
}

func TestBuildSpecialCharPrecedence(t *testing.T) {
	set := sampleSet()
	rows := Build(set)
	// Product side empty, process side carries CC.
	if rows[0].SpecialChar != "CC" {
		t.Fatalf("special char = %q, want process-side CC", rows[0].SpecialChar)
	}
	set.L2Functions[0].SpecialChar = "SC"
	rows = Build(set)
	if rows[0].SpecialChar != "SC" {
		t.Fatalf("special char = %q, product side must win when set", rows[0].SpecialChar)
	}
}

func TestBuildOrdersByLinkOrder(t *testing.T) {
	set := sampleSet()
	set.Links[0].Order = 5
	set.Links = append(set.Links, types.FailureLink{ID: "link-2", AnalysisID: analysisID, FMID: "fm", Order: 1})
	rows := Build(set)
	if len(rows) != 2 || rows[0].LinkID != "link-2" || rows[1].LinkID != "link-1" {
		t.Fatalf("rows not ordered by link insertion order")
	}
}

func TestUpdatePreservesRowIdentity(t *testing.T) {
	set := sampleSet()
	first := Build(set)
	first[0].CreatedAt = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	second := Update(first, set)
	if second[0].ID != first[0].ID {
		t.Fatalf("row id churned: %q vs %q", second[0].ID, first[0].ID)
	}
	if !second[0].CreatedAt.Equal(first[0].CreatedAt) {
		t.Fatalf("created_at churned")
	}

	third := Update(second, set)
	if third[0].ID != first[0].ID || !third[0].CreatedAt.Equal(first[0].CreatedAt) {
		t.Fatalf("repeated update with no change altered row identity")
	}

	set.Links = append(set.Links, types.FailureLink{ID: "link-2", AnalysisID: analysisID, FMID: "fm", Order: 1})
	fourth := Update(third, set)
	if len(fourth) != 2 {
		t.Fatalf("new link not materialized")
	}
	for _, row := range fourth {
		if row.LinkID == "link-2" && row.ID == first[0].ID {
			t.Fatalf("new link reused an existing row id")
		}
	}
}

func TestValidateSplitsErrorsAndWarnings(t *testing.T) {
	rows := []types.FailureAnalysisRow{
		{LinkID: "a"}, // no fm: unusable
		{LinkID: "b", FMID: "fm", ProcessName: "Assembly", FCID: "fc"}, // cause without work element
		{LinkID: "c", FMID: "fm", ProcessName: "Assembly", FEID: "fe"}, // effect without scope function
		{LinkID: "d", FMID: "fm"}, // mode without process context
	}
	report := Validate(rows)
	if len(report.Errors) != 1 || report.Errors[0].LinkID != "a" {
		t.Fatalf("errors = %+v", report.Errors)
	}
	if len(report.Warnings) != 3 {
		t.Fatalf("warnings = %+v", report.Warnings)
	}
	if report.OK() {
		t.Fatalf("report with errors must not be OK")
	}
}
