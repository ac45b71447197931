package engine

import (
	"github.com/roach88/vcube/internal/ir"
	"github.com/roach88/vcube/internal/plan"
)

// Bundle derivation per operator variant. Each function is a pure,
// single-shot transform of its input bundle(s); inputs are never modified.

// DeriveProjection keeps the measures of in that occur in measures, keyed
// by MEASURE_UNIQUE_NAME. An empty measures relation leaves in unchanged.
func DeriveProjection(in *ir.Bundle, measures ir.Relation) (*ir.Bundle, error) {
	if measures.Len() == 0 {
		return in.With(ir.KindMeasures, in.Measures), nil
	}
	kept, err := ir.Intersect(in.Measures, measures, ir.FieldMeasureUnique)
	if err != nil {
		return nil, err
	}
	return in.With(ir.KindMeasures, kept), nil
}

// DeriveSlice removes the dimensions listed in dims, keyed by
// DIMENSION_UNIQUE_NAME. Surviving rows keep their order.
func DeriveSlice(in *ir.Bundle, dims ir.Relation) (*ir.Bundle, error) {
	if dims.Len() == 0 {
		return in.With(ir.KindDimensions, in.Dimensions), nil
	}
	kept, err := ir.Difference(in.Dimensions, dims, ir.FieldDimensionUnique)
	if err != nil {
		return nil, err
	}
	return in.With(ir.KindDimensions, kept), nil
}

// DeriveRollup restricts, for every paired hierarchy, the levels to those
// at or above the rollup level (LEVEL_NUMBER not greater than the rollup
// level's) and drops the members of removed levels.
func DeriveRollup(in *ir.Bundle, pairs []plan.LevelPair) (*ir.Bundle, error) {
	levels := in.Levels
	hi, ok := levels.Index(ir.FieldHierarchyUnique)
	if !ok {
		return nil, ir.NewPlanningError(ir.ErrCodeMissingField, "levels relation has no %s", ir.FieldHierarchyUnique)
	}
	li, ok := levels.Index(ir.FieldLevelUnique)
	if !ok {
		return nil, ir.NewPlanningError(ir.ErrCodeMissingField, "levels relation has no %s", ir.FieldLevelUnique)
	}
	ni, ok := levels.Index(ir.FieldLevelNumber)
	if !ok {
		return nil, ir.NewPlanningError(ir.ErrCodeMissingField, "levels relation has no %s", ir.FieldLevelNumber)
	}

	// Rollup depth per hierarchy.
	limit := make(map[ir.Term]int64, len(pairs))
	for _, p := range pairs {
		found := false
		for _, row := range levels.Rows() {
			if row[hi] != p.Hierarchy || row[li] != p.Level {
				continue
			}
			n, err := row[ni].Int()
			if err != nil {
				return nil, ir.WrapPlanningError(ir.ErrCodeMalformedRelation,
					"level number of "+p.Level.Value(), err)
			}
			if cur, seen := limit[p.Hierarchy]; !seen || n < cur {
				limit[p.Hierarchy] = n
			}
			found = true
			break
		}
		if !found {
			return nil, ir.NewPlanningError(ir.ErrCodeUnknownLevel,
				"level %s is not in hierarchy %s", p.Level.Value(), p.Hierarchy.Value())
		}
	}

	removed := make(map[ir.Term]struct{})
	var numErr error
	keptLevels := levels.Filter(func(row ir.Tuple) bool {
		depth, rolled := limit[row[hi]]
		if !rolled {
			return true
		}
		n, err := row[ni].Int()
		if err != nil {
			if numErr == nil {
				numErr = ir.WrapPlanningError(ir.ErrCodeMalformedRelation, "level number of "+row[li].Value(), err)
			}
			return false
		}
		if n > depth {
			removed[row[li]] = struct{}{}
			return false
		}
		return true
	})
	if numErr != nil {
		return nil, numErr
	}

	out := in.With(ir.KindLevels, keptLevels)
	if len(removed) == 0 {
		return out, nil
	}
	mi, ok := in.Members.Index(ir.FieldLevelUnique)
	if !ok {
		return nil, ir.NewPlanningError(ir.ErrCodeMissingField, "members relation has no %s", ir.FieldLevelUnique)
	}
	keptMembers := in.Members.Filter(func(row ir.Tuple) bool {
		_, gone := removed[row[mi]]
		return !gone
	})
	return out.With(ir.KindMembers, keptMembers), nil
}

// DeriveConvert reinterprets in under domain: every CUBE_NAME becomes
// domain and the members are the correspondence outputs.
func DeriveConvert(in *ir.Bundle, corr *plan.Correspondence, domain ir.Term) (*ir.Bundle, error) {
	if corr == nil {
		return nil, ir.NewPlanningError(ir.ErrCodeMissingCorrespondence, "convert without correspondence")
	}
	out := rehome(in, domain)
	members, err := outputMembers(corr, domain)
	if err != nil {
		return nil, err
	}
	out.Set(ir.KindMembers, members)
	return out, nil
}

// DeriveMerge unions the cubes, measures, dimensions, hierarchies and
// levels of a and b by unique name after moving both under domain. The
// members are the correspondence outputs.
func DeriveMerge(a, b *ir.Bundle, corr *plan.Correspondence, domain ir.Term) (*ir.Bundle, error) {
	if corr == nil {
		return nil, ir.NewPlanningError(ir.ErrCodeMissingCorrespondence, "merge without correspondence")
	}
	left, right := rehome(a, domain), rehome(b, domain)
	out := &ir.Bundle{}
	for _, k := range ir.Kinds {
		if k == ir.KindMembers {
			continue
		}
		merged, err := ir.Union(left.Relation(k), right.Relation(k), k.KeyField())
		if err != nil {
			return nil, err
		}
		out.Set(k, merged)
	}
	members, err := outputMembers(corr, domain)
	if err != nil {
		return nil, err
	}
	out.Set(ir.KindMembers, members)
	return out, nil
}

// DeriveDrillAcross combines a and b over their shared dimensions: the
// dimensions, hierarchies, levels and members present in both survive (in
// a's order) while measures and cubes are the union of both.
func DeriveDrillAcross(a, b *ir.Bundle) (*ir.Bundle, error) {
	out := &ir.Bundle{}
	for _, k := range ir.Kinds {
		var (
			rel ir.Relation
			err error
		)
		switch k {
		case ir.KindCubes, ir.KindMeasures:
			rel, err = ir.Union(a.Relation(k), b.Relation(k), k.KeyField())
		default:
			rel, err = ir.Intersect(a.Relation(k), b.Relation(k), k.KeyField())
		}
		if err != nil {
			return nil, err
		}
		out.Set(k, rel)
	}
	return out, nil
}

// rehome rewrites CUBE_NAME to domain in every relation that carries it.
func rehome(in *ir.Bundle, domain ir.Term) *ir.Bundle {
	out := &ir.Bundle{}
	for _, k := range ir.Kinds {
		out.Set(k, in.Relation(k).Set(ir.FieldCubeName, domain))
	}
	return out
}

// outputMembers returns the correspondence outputs as a members relation
// under domain. Outputs with the full members header are reordered to the
// canonical column order.
func outputMembers(corr *plan.Correspondence, domain ir.Term) (ir.Relation, error) {
	outputs := corr.Outputs()
	if !outputs.Has(ir.FieldMemberUnique) {
		return ir.Relation{}, ir.NewPlanningError(ir.ErrCodeMissingField,
			"correspondence %s outputs have no %s", corr.Name(), ir.FieldMemberUnique)
	}
	if outputs.Header().SameSet(ir.MembersHeader) {
		projected, err := outputs.Project(ir.MembersHeader)
		if err != nil {
			return ir.Relation{}, err
		}
		outputs = projected
	}
	return outputs.Set(ir.FieldCubeName, domain), nil
}
