package normalize

import (
	"testing"

	"github.com/qforge/fmea-backend/internal/types"
)

func sampleDocument() *types.Document {
	return &types.Document{
		Subject: "Drive Housing",
		ScopeFunctions: []types.L1FunctionNode{
			{
				Category:     "fit",
				FunctionName: "Seal housing",
				Requirement:  "No leakage",
				Effects: []types.FailureEffectNode{
					{ID: "fe-leak", Category: "customer", Effect: "Oil leak", Severity: 8},
				},
			},
		},
		Processes: []types.ProcessNode{
			{
				No:   "10",
				Name: "Assembly",
				Functions: []types.L2FunctionNode{
					{
						FunctionName: "Press bearing",
						ProductChar:  "press depth",
						Modes: []types.FailureModeNode{
							{
								ID:   "fm-shallow",
								Mode: "Bearing too shallow",
								Links: []types.FailureLinkNode{
									{EffectID: "fe-leak", CauseID: "fc-worn", Risk: &types.RiskNode{Severity: 8, Occurrence: 3, Detection: 4}},
								},
							},
						},
					},
				},
				WorkElements: []types.WorkElementNode{
					{
						M4:   "MC",
						Name: "Press",
						Functions: []types.L3FunctionNode{
							{
								FunctionName: "Apply force",
								ProcessChar:  "press force",
								Causes: []types.FailureCauseNode{
									{ID: "fc-worn", Cause: "Worn tool", Occurrence: 3},
								},
							},
						},
					},
				},
			},
		},
	}
}

func TestNormalizeStableIDs(t *testing.T) {
	doc := sampleDocument()
	a := Normalize("FMEA-001", doc, Options{})
	b := Normalize("FMEA-001", doc, Options{})

	if a.L1 == nil || b.L1 == nil || a.L1.ID != b.L1.ID {
		t.Fatalf("l1 structure id not stable across normalizations")
	}
	if len(a.L2Structures) != 1 || a.L2Structures[0].ID != b.L2Structures[0].ID {
		t.Fatalf("l2 structure id not stable: %q vs %q", a.L2Structures[0].ID, b.L2Structures[0].ID)
	}
	if a.L3Structures[0].ID != b.L3Structures[0].ID {
		t.Fatalf("l3 structure id not stable")
	}
	if a.Links[0].ID != b.Links[0].ID {
		t.Fatalf("link id not stable")
	}
}

func TestNormalizeDistinctAnalysesGetDistinctIDs(t *testing.T) {
	doc := sampleDocument()
	a := Normalize("FMEA-001", doc, Options{})
	b := Normalize("FMEA-002", doc, Options{})
	if a.L2Structures[0].ID == b.L2Structures[0].ID {
		t.Fatalf("structurally identical rows in different analyses must not share ids")
	}
}

func TestNormalizeReusesDurableNodeIDs(t *testing.T) {
	doc := sampleDocument()
	doc.Processes[0].ID = "proc-10"
	snap := Normalize("FMEA-001", doc, Options{})
	if snap.L2Structures[0].ID != "proc-10" {
		t.Fatalf("expected durable node id to be reused, got %q", snap.L2Structures[0].ID)
	}
}

func TestNormalizeSkipsPlaceholders(t *testing.T) {
	doc := sampleDocument()
	doc.Processes = append(doc.Processes, types.ProcessNode{No: "20", Name: "  "})
	doc.Processes[0].Functions[0].Modes = append(doc.Processes[0].Functions[0].Modes,
		types.FailureModeNode{Mode: ""})
	doc.Processes[0].WorkElements[0].Functions = append(doc.Processes[0].WorkElements[0].Functions,
		types.L3FunctionNode{})

	snap := Normalize("FMEA-001", doc, Options{})
	if len(snap.L2Structures) != 1 {
		t.Fatalf("placeholder process materialized: %d l2 structures", len(snap.L2Structures))
	}
	if len(snap.Modes) != 1 {
		t.Fatalf("placeholder mode materialized: %d modes", len(snap.Modes))
	}
	if len(snap.L3Functions) != 1 {
		t.Fatalf("placeholder l3 function materialized: %d", len(snap.L3Functions))
	}
}

func TestNormalizeDenormalizedBackReferences(t *testing.T) {
	snap := Normalize("FMEA-001", sampleDocument(), Options{})

	l2 := snap.L2Structures[0]
	l3 := snap.L3Structures[0]
	if l3.L2ID != l2.ID {
		t.Fatalf("l3 structure points at %q, want l2 %q", l3.L2ID, l2.ID)
	}
	fc := snap.Causes[0]
	if fc.L2StructID != l2.ID || fc.L3StructID != l3.ID {
		t.Fatalf("failure cause back-references wrong: l2=%q l3=%q", fc.L2StructID, fc.L3StructID)
	}
	fm := snap.Modes[0]
	if fm.L2StructID != l2.ID {
		t.Fatalf("failure mode l2 back-reference wrong")
	}
	if fm.ProductCharID != snap.L2Functions[0].ID {
		t.Fatalf("failure mode product characteristic reference wrong")
	}
}

func TestNormalizeLinkResolution(t *testing.T) {
	doc := sampleDocument()
	snap := Normalize("FMEA-001", doc, Options{})

	if len(snap.Links) != 1 {
		t.Fatalf("expected 1 link, got %d", len(snap.Links))
	}
	link := snap.Links[0]
	if link.FMID != snap.Modes[0].ID {
		t.Fatalf("link fm reference wrong")
	}
	if link.FEID != snap.Effects[0].ID || link.FCID != snap.Causes[0].ID {
		t.Fatalf("link fe/fc references wrong: fe=%q fc=%q", link.FEID, link.FCID)
	}
	if len(snap.Risks) != 1 || snap.Risks[0].LinkID != link.ID {
		t.Fatalf("risk row missing or mis-keyed")
	}
}

func TestNormalizeDropsDanglingLinkReferences(t *testing.T) {
	doc := sampleDocument()
	// Point the link at an effect that never materializes.
	doc.Processes[0].Functions[0].Modes[0].Links[0].EffectID = "no-such-effect"
	snap := Normalize("FMEA-001", doc, Options{})
	if snap.Links[0].FEID != "" {
		t.Fatalf("dangling effect reference kept: %q", snap.Links[0].FEID)
	}
	if snap.Links[0].FCID == "" {
		t.Fatalf("valid cause reference dropped")
	}
}

func TestNormalizeRequireCompleteChain(t *testing.T) {
	doc := sampleDocument()
	doc.Processes[0].Functions[0].Modes[0].Links[0].CauseID = ""

	tolerant := Normalize("FMEA-001", doc, Options{})
	if len(tolerant.Risks) != 1 {
		t.Fatalf("tolerant policy should score partial chains, got %d risks", len(tolerant.Risks))
	}
	strict := Normalize("FMEA-001", doc, Options{RequireCompleteChain: true})
	if len(strict.Risks) != 0 {
		t.Fatalf("strict policy scored a partial chain")
	}
	if len(strict.Links) != 1 {
		t.Fatalf("strict policy must still emit the link itself")
	}
}

func TestNormalizeEmptyDocument(t *testing.T) {
	snap := Normalize("FMEA-001", &types.Document{}, Options{})
	if snap.L1 != nil || len(snap.L2Structures) != 0 || len(snap.Links) != 0 {
		t.Fatalf("empty document produced rows")
	}
}

func TestNormalizeConfirmedFlag(t *testing.T) {
	doc := sampleDocument()
	doc.Steps.Structure = true
	snap := Normalize("FMEA-001", doc, Options{})
	if snap.L1 == nil || !snap.L1.Confirmed {
		t.Fatalf("structure confirmation not copied onto l1 structure")
	}
}

func TestNormalizeCollapsesDuplicateNodes(t *testing.T) {
	doc := sampleDocument()
	// Duplicate the link node and the durable effect/cause nodes the way a
	// copy-paste edit would.
	mode := &doc.Processes[0].Functions[0].Modes[0]
	mode.Links = append(mode.Links, mode.Links[0])
	fn := &doc.ScopeFunctions[0]
	fn.Effects = append(fn.Effects, fn.Effects[0])
	l3fn := &doc.Processes[0].WorkElements[0].Functions[0]
	l3fn.Causes = append(l3fn.Causes, l3fn.Causes[0])

	snap := Normalize("FMEA-001", doc, Options{})
	counts := snap.Counts()
	if counts["failureLinks"] != 1 {
		t.Fatalf("duplicate triple produced %d links", counts["failureLinks"])
	}
	if counts["failureEffects"] != 1 || counts["failureCauses"] != 1 {
		t.Fatalf("duplicate nodes overcounted: %d effects, %d causes",
			counts["failureEffects"], counts["failureCauses"])
	}
	if counts["riskAnalyses"] != 1 {
		t.Fatalf("duplicate triple produced %d risk rows", counts["riskAnalyses"])
	}
	if snap.Links[0].Order != 0 {
		t.Fatalf("surviving link order = %d", snap.Links[0].Order)
	}
}
