// Package cfgbuild threads CFG edges along the unit-graph successor
// relation astbuild's body nodes were derived from, per spec §4.6. It
// runs after astbuild has populated the association map for the method
// and before pdgbuild (ordering guarantee in spec §5: "method head → AST
// body → CFG → PDG").
package cfgbuild

import (
	"context"

	"jvmcpg/internal/driver"
	"jvmcpg/internal/extract/ids"
	"jvmcpg/internal/ir"
	"jvmcpg/internal/schema"
)

// Build wires the entry BLOCK to every unit with no predecessor, each
// unit's node to its unit-graph successors' nodes, and every RETURN node
// to the method's single METHOD_RETURN sink.
func Build(ctx context.Context, d driver.Driver, assoc *ids.Association, ug ir.UnitGraph, fullName, signature string) error {
	scope := ids.MethodScope(fullName, signature)
	entry := assoc.First(ids.EntryKey(scope))
	ret := assoc.First(ids.ReturnKey(scope))
	units := ug.Units()

	nodeOf := func(i int) *driver.Node { return assoc.First(ids.UnitKey(scope, i)) }

	// resolveEntry finds the CPG node effectively reached when control
	// passes to unit i, chasing through GOTO/NOP units that emitted no
	// node of their own.
	var resolveEntry func(i int, seen map[int]bool) *driver.Node
	resolveEntry = func(i int, seen map[int]bool) *driver.Node {
		if i < 0 || i >= len(units) || seen[i] {
			return nil
		}
		seen[i] = true
		if n := nodeOf(i); n != nil {
			return n
		}
		for _, s := range ug.Succs(i) {
			if n := resolveEntry(s, seen); n != nil {
				return n
			}
		}
		return nil
	}

	linkedRoot := false
	for i, u := range units {
		if len(ug.Preds(i)) != 0 {
			continue
		}
		if n := resolveEntry(i, map[int]bool{}); n != nil {
			if err := d.AddEdge(ctx, entry, n, schema.CFG, nil); err != nil {
				return err
			}
			linkedRoot = true
		}
		_ = u
	}
	if !linkedRoot {
		// Empty body: the entry block falls straight through to the
		// return sink.
		if err := d.AddEdge(ctx, entry, ret, schema.CFG, nil); err != nil {
			return err
		}
	}

	for i, u := range units {
		cur := nodeOf(i)
		if cur == nil {
			continue // GOTO/NOP: no node of its own to link from.
		}

		switch u.Op {
		case ir.OpBranch:
			trueTarget := assoc.First(ids.JumpTargetKey(scope, i, "TRUE"))
			falseTarget := assoc.First(ids.JumpTargetKey(scope, i, "FALSE"))
			if err := d.AddEdge(ctx, cur, trueTarget, schema.CFG, nil); err != nil {
				return err
			}
			if err := d.AddEdge(ctx, cur, falseTarget, schema.CFG, nil); err != nil {
				return err
			}
			if t := resolveEntry(u.TrueTarget, map[int]bool{}); t != nil {
				if err := d.AddEdge(ctx, trueTarget, t, schema.CFG, nil); err != nil {
					return err
				}
			}
			if f := resolveEntry(u.FalseTarget, map[int]bool{}); f != nil {
				if err := d.AddEdge(ctx, falseTarget, f, schema.CFG, nil); err != nil {
					return err
				}
			}
		case ir.OpReturn:
			if err := d.AddEdge(ctx, cur, ret, schema.CFG, nil); err != nil {
				return err
			}
		default:
			succs := ug.Succs(i)
			if len(succs) == 0 {
				if err := d.AddEdge(ctx, cur, ret, schema.CFG, nil); err != nil {
					return err
				}
				continue
			}
			for _, s := range succs {
				if n := resolveEntry(s, map[int]bool{}); n != nil {
					if err := d.AddEdge(ctx, cur, n, schema.CFG, nil); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}
