package normalize

import (
	"strings"

	"github.com/qforge/fmea-backend/internal/types"
)

// Snapshot is one complete atomic-schema image of a single analysis, produced
// by a pure fold over the legacy document tree. The rebuild coordinator swaps
// it into the database wholesale.
type Snapshot struct {
	AnalysisID    string
	L1            *types.L1Structure
	L2Structures  []types.L2Structure
	L3Structures  []types.L3Structure
	L1Functions   []types.L1Function
	L2Functions   []types.L2Function
	L3Functions   []types.L3Function
	Effects       []types.FailureEffect
	Modes         []types.FailureMode
	Causes        []types.FailureCause
	Links         []types.FailureLink
	Risks         []types.RiskAnalysis
	Optimizations []types.Optimization
}

type Options struct {
	// RequireCompleteChain gates risk/optimization rows: when set, links
	// missing an effect or cause produce no scoring rows.
	RequireCompleteChain bool
}

// Counts reports how many rows of each entity the snapshot holds.
func (s *Snapshot) Counts() map[string]int {
	l1 := 0
	if s.L1 != nil {
		l1 = 1
	}
	return map[string]int{
		"l1Structures":   l1,
		"l2Structures":   len(s.L2Structures),
		"l3Structures":   len(s.L3Structures),
		"l1Functions":    len(s.L1Functions),
		"l2Functions":    len(s.L2Functions),
		"l3Functions":    len(s.L3Functions),
		"failureEffects": len(s.Effects),
		"failureModes":   len(s.Modes),
		"failureCauses":  len(s.Causes),
		"failureLinks":   len(s.Links),
		"riskAnalyses":   len(s.Risks),
		"optimizations":  len(s.Optimizations),
	}
}

func filled(s string) bool { return strings.TrimSpace(s) != "" }

// Normalize flattens one legacy document into atomic rows. Placeholder nodes
// (no user content) are skipped along with their subtrees so the derived
// schema never accumulates empty template rows. No I/O.
func Normalize(analysisID string, doc *types.Document, opts Options) *Snapshot {
	snap := &Snapshot{AnalysisID: analysisID}
	if doc == nil {
		return snap
	}
	ns := analysisNamespace(analysisID)

	// Ids of materialized effect/cause rows; links may only reference these.
	effectIDs := map[string]string{}
	causeIDs := map[string]string{}

	// Duplicated nodes (same durable id or same derived path) collapse to one
	// row so counts stay honest and link inserts never collide.
	seenEffects := map[string]bool{}
	seenModes := map[string]bool{}
	seenCauses := map[string]bool{}

	if filled(doc.Subject) || len(doc.ScopeFunctions) > 0 {
		snap.L1 = &types.L1Structure{
			ID:         pathID(ns, "l1"),
			AnalysisID: analysisID,
			Name:       strings.TrimSpace(doc.Subject),
			Confirmed:  doc.Steps.Structure,
		}
		for _, fn := range doc.ScopeFunctions {
			if !filled(fn.FunctionName) && !filled(fn.Requirement) {
				continue
			}
			fnPath := "l1/fn:" + fn.Category + "|" + fn.FunctionName
			fnID := nodeID(fn.ID, ns, fnPath)
			snap.L1Functions = append(snap.L1Functions, types.L1Function{
				ID:           fnID,
				AnalysisID:   analysisID,
				L1StructID:   snap.L1.ID,
				Category:     fn.Category,
				FunctionName: fn.FunctionName,
				Requirement:  fn.Requirement,
			})
			for _, fe := range fn.Effects {
				if !filled(fe.Effect) {
					continue
				}
				feID := nodeID(fe.ID, ns, fnPath+"/fe:"+fe.Effect)
				if !seenEffects[feID] {
					seenEffects[feID] = true
					snap.Effects = append(snap.Effects, types.FailureEffect{
						ID:         feID,
						AnalysisID: analysisID,
						L1FuncID:   fnID,
						Category:   fe.Category,
						Effect:     fe.Effect,
						Severity:   fe.Severity,
					})
				}
				if fe.ID != "" {
					effectIDs[fe.ID] = feID
				}
			}
		}
	}

	type pendingLink struct {
		fmID string
		node types.FailureLinkNode
	}
	var pending []pendingLink

	for pi, proc := range doc.Processes {
		if !filled(proc.Name) {
			continue
		}
		l2Path := "l2:" + proc.No + "|" + proc.Name
		l2ID := nodeID(proc.ID, ns, l2Path)
		order := proc.Order
		if order == 0 {
			order = pi
		}
		snap.L2Structures = append(snap.L2Structures, types.L2Structure{
			ID:         l2ID,
			AnalysisID: analysisID,
			No:         proc.No,
			Name:       proc.Name,
			Order:      order,
		})

		for _, fn := range proc.Functions {
			if !filled(fn.FunctionName) && !filled(fn.ProductChar) {
				continue
			}
			fnPath := l2Path + "/fn:" + fn.FunctionName + "|" + fn.ProductChar
			fnID := nodeID(fn.ID, ns, fnPath)
			snap.L2Functions = append(snap.L2Functions, types.L2Function{
				ID:           fnID,
				AnalysisID:   analysisID,
				L2StructID:   l2ID,
				FunctionName: fn.FunctionName,
				ProductChar:  fn.ProductChar,
				SpecialChar:  fn.SpecialChar,
			})
			for _, fm := range fn.Modes {
				if !filled(fm.Mode) {
					continue
				}
				fmID := nodeID(fm.ID, ns, fnPath+"/fm:"+fm.Mode)
				productCharID := ""
				if filled(fn.ProductChar) {
					productCharID = fnID
				}
				if !seenModes[fmID] {
					seenModes[fmID] = true
					snap.Modes = append(snap.Modes, types.FailureMode{
						ID:            fmID,
						AnalysisID:    analysisID,
						L2FuncID:      fnID,
						L2StructID:    l2ID,
						Mode:          fm.Mode,
						ProductCharID: productCharID,
						SpecialChar:   fm.SpecialChar,
					})
				}
				for _, link := range fm.Links {
					pending = append(pending, pendingLink{fmID: fmID, node: link})
				}
			}
		}

		for wi, we := range proc.WorkElements {
			if !filled(we.Name) {
				continue
			}
			l3Path := l2Path + "/l3:" + we.Name
			l3ID := nodeID(we.ID, ns, l3Path)
			weOrder := we.Order
			if weOrder == 0 {
				weOrder = wi
			}
			snap.L3Structures = append(snap.L3Structures, types.L3Structure{
				ID:         l3ID,
				AnalysisID: analysisID,
				L2ID:       l2ID,
				M4:         we.M4,
				Name:       we.Name,
				Order:      weOrder,
			})
			for _, fn := range we.Functions {
				if !filled(fn.FunctionName) && !filled(fn.ProcessChar) {
					continue
				}
				fnPath := l3Path + "/fn:" + fn.FunctionName + "|" + fn.ProcessChar
				fnID := nodeID(fn.ID, ns, fnPath)
				snap.L3Functions = append(snap.L3Functions, types.L3Function{
					ID:           fnID,
					AnalysisID:   analysisID,
					L3StructID:   l3ID,
					L2StructID:   l2ID,
					FunctionName: fn.FunctionName,
					ProcessChar:  fn.ProcessChar,
					SpecialChar:  fn.SpecialChar,
				})
				for _, fc := range fn.Causes {
					if !filled(fc.Cause) {
						continue
					}
					fcID := nodeID(fc.ID, ns, fnPath+"/fc:"+fc.Cause)
					if !seenCauses[fcID] {
						seenCauses[fcID] = true
						snap.Causes = append(snap.Causes, types.FailureCause{
							ID:         fcID,
							AnalysisID: analysisID,
							L3FuncID:   fnID,
							L3StructID: l3ID,
							L2StructID: l2ID,
							Cause:      fc.Cause,
							Occurrence: fc.Occurrence,
						})
					}
					if fc.ID != "" {
						causeIDs[fc.ID] = fcID
					}
				}
			}
		}
	}

	// Links are derived last so effect/cause references can be resolved
	// against the rows that actually materialized. A reference to a skipped
	// placeholder is dropped rather than left dangling. A link's identity is
	// its fm/fe/fc triple, so repeated triples collapse to the first one.
	seenLinks := map[string]bool{}
	order := 0
	for _, p := range pending {
		feID := effectIDs[p.node.EffectID]
		fcID := causeIDs[p.node.CauseID]
		linkID := pathID(ns, "link:"+p.fmID+"|"+feID+"|"+fcID)
		if seenLinks[linkID] {
			continue
		}
		seenLinks[linkID] = true
		snap.Links = append(snap.Links, types.FailureLink{
			ID:         linkID,
			AnalysisID: analysisID,
			FMID:       p.fmID,
			FEID:       feID,
			FCID:       fcID,
			Order:      order,
		})
		order++
		complete := feID != "" && fcID != ""
		if opts.RequireCompleteChain && !complete {
			continue
		}
		if p.node.Risk != nil {
			snap.Risks = append(snap.Risks, types.RiskAnalysis{
				ID:         pathID(ns, "risk:"+linkID),
				AnalysisID: analysisID,
				LinkID:     linkID,
				Severity:   p.node.Risk.Severity,
				Occurrence: p.node.Risk.Occurrence,
				Detection:  p.node.Risk.Detection,
			})
		}
		if opt := p.node.Optimization; opt != nil && (filled(opt.PreventionAction) || filled(opt.DetectionAction)) {
			snap.Optimizations = append(snap.Optimizations, types.Optimization{
				ID:               pathID(ns, "opt:"+linkID),
				AnalysisID:       analysisID,
				LinkID:           linkID,
				PreventionAction: opt.PreventionAction,
				DetectionAction:  opt.DetectionAction,
				Status:           opt.Status,
			})
		}
	}

	return snap
}
