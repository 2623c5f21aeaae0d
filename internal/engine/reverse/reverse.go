package reverse

import (
	"sort"

	"github.com/google/uuid"

	"github.com/qforge/fmea-backend/internal/types"
)

// AtomicSet is one analysis' atomic schema loaded into memory for reverse
// engineering: every failure link is walked backward through its foreign keys
// to recover the full hierarchical context it belongs to.
type AtomicSet struct {
	L1           *types.L1Structure
	L2Structures []types.L2Structure
	L3Structures []types.L3Structure
	L1Functions  []types.L1Function
	L2Functions  []types.L2Function
	L3Functions  []types.L3Function
	Effects      []types.FailureEffect
	Modes        []types.FailureMode
	Causes       []types.FailureCause
	Links        []types.FailureLink
}

type index struct {
	l2Structs map[string]types.L2Structure
	l3Structs map[string]types.L3Structure
	l1Funcs   map[string]types.L1Function
	l2Funcs   map[string]types.L2Function
	l3Funcs   map[string]types.L3Function
	effects   map[string]types.FailureEffect
	modes     map[string]types.FailureMode
	causes    map[string]types.FailureCause
}

func buildIndex(set *AtomicSet) *index {
	ix := &index{
		l2Structs: make(map[string]types.L2Structure, len(set.L2Structures)),
		l3Structs: make(map[string]types.L3Structure, len(set.L3Structures)),
		l1Funcs:   make(map[string]types.L1Function, len(set.L1Functions)),
		l2Funcs:   make(map[string]types.L2Function, len(set.L2Functions)),
		l3Funcs:   make(map[string]types.L3Function, len(set.L3Functions)),
		effects:   make(map[string]types.FailureEffect, len(set.Effects)),
		modes:     make(map[string]types.FailureMode, len(set.Modes)),
		causes:    make(map[string]types.FailureCause, len(set.Causes)),
	}
	for _, v := range set.L2Structures {
		ix.l2Structs[v.ID] = v
	}
	for _, v := range set.L3Structures {
		ix.l3Structs[v.ID] = v
	}
	for _, v := range set.L1Functions {
		ix.l1Funcs[v.ID] = v
	}
	for _, v := range set.L2Functions {
		ix.l2Funcs[v.ID] = v
	}
	for _, v := range set.L3Functions {
		ix.l3Funcs[v.ID] = v
	}
	for _, v := range set.Effects {
		ix.effects[v.ID] = v
	}
	for _, v := range set.Modes {
		ix.modes[v.ID] = v
	}
	for _, v := range set.Causes {
		ix.causes[v.ID] = v
	}
	return ix
}

// Build reverse-engineers one denormalized analysis row per failure link. A
// link whose failure mode cannot be resolved is meaningless and is skipped;
// missing effect/cause context leaves the corresponding fields empty rather
// than dropping the row.
func Build(set *AtomicSet) []types.FailureAnalysisRow {
	if set == nil {
		return nil
	}
	ix := buildIndex(set)
	rows := make([]types.FailureAnalysisRow, 0, len(set.Links))

	for _, link := range set.Links {
		fm, ok := ix.modes[link.FMID]
		if !ok {
			continue
		}

		row := types.FailureAnalysisRow{
			ID:         uuid.NewString(),
			AnalysisID: link.AnalysisID,
			LinkID:     link.ID,
			FMID:       link.FMID,
			FEID:       link.FEID,
			FCID:       link.FCID,
			Mode:       fm.Mode,
			Order:      link.Order,
		}
		if set.L1 != nil {
			row.ProductName = set.L1.Name
		}

		if l2, ok := ix.l2Structs[fm.L2StructID]; ok {
			row.ProcessNo = l2.No
			row.ProcessName = l2.Name
		}
		var productSpecial string
		if l2f, ok := ix.l2Funcs[fm.L2FuncID]; ok {
			row.ProductChar = l2f.ProductChar
			productSpecial = l2f.SpecialChar
		}

		if fe, ok := ix.effects[link.FEID]; ok {
			row.Effect = fe.Effect
			row.Severity = fe.Severity
			if l1f, ok := ix.l1Funcs[fe.L1FuncID]; ok {
				row.Category = l1f.Category
				row.Requirement = l1f.Requirement
			}
		}

		var processSpecial string
		if fc, ok := ix.causes[link.FCID]; ok {
			row.Cause = fc.Cause
			row.Occurrence = fc.Occurrence
			if l3, ok := ix.l3Structs[fc.L3StructID]; ok {
				row.WorkElement = l3.Name
				row.M4 = l3.M4
			}
			if l3f, ok := ix.l3Funcs[fc.L3FuncID]; ok {
				row.ProcessChar = l3f.ProcessChar
				processSpecial = l3f.SpecialChar
			}
		}

		// The legacy model defines the special-characteristic tag redundantly
		// on both function levels; whichever side carries a value wins,
		// product side first.
		if productSpecial != "" {
			row.SpecialChar = productSpecial
		} else {
			row.SpecialChar = processSpecial
		}

		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Order < rows[j].Order })
	return rows
}

// Update rebuilds the rows and re-keys them against the previous result:
// rows for links that already existed keep their id and creation timestamp so
// downstream consumers see stable keys across reconciliations.
func Update(existing []types.FailureAnalysisRow, set *AtomicSet) []types.FailureAnalysisRow {
	prior := make(map[string]types.FailureAnalysisRow, len(existing))
	for _, row := range existing {
		prior[row.LinkID] = row
	}
	rows := Build(set)
	for i := range rows {
		if old, ok := prior[rows[i].LinkID]; ok {
			rows[i].ID = old.ID
			rows[i].CreatedAt = old.CreatedAt
		}
	}
	return rows
}
