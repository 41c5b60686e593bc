// Package callgraph wires CALL edges from the CALL nodes astbuild
// emitted for invocations to the METHOD node each resolves to, per spec
// §4.8. It is algorithm-agnostic: it consumes whatever Oracle the
// pipeline configured (CHA or SPARK-style points-to) and never inspects
// how out-edges were computed.
package callgraph

import (
	"context"
	"strings"

	"jvmcpg/internal/cpgerr"
	"jvmcpg/internal/driver"
	"jvmcpg/internal/extract/ids"
	"jvmcpg/internal/schema"
)

// CallSite is one resolved or unresolved call edge reported by an
// Oracle: the unit index identifies the CALL node via the caller's
// association entries (ids.CallSiteKey); Target fields are empty when
// the call is statically unresolvable (reflection, unbound dynamic
// dispatch).
type CallSite struct {
	CallUnitIndex             int
	TargetFullName, TargetSig string
}

// Oracle abstracts whichever call-graph algorithm the pipeline selected
// (spec §4.8: "The choice is opaque to the builder: it only needs the
// out_edges oracle").
type Oracle interface {
	OutEdges(callerFullName, callerSignature string) []CallSite
}

// MethodKey identifies one method processed in the current run.
type MethodKey struct {
	FullName  string
	Signature string
}

// Build resolves every call site reported by oracle for each method in
// methods, creating a phantom METHOD head for any target that is
// declared but has no known body. Returns every phantom target created,
// for the caller to log (spec §7: PhantomTarget is non-fatal).
func Build(ctx context.Context, d driver.Driver, assoc *ids.Association, oracle Oracle, methods []MethodKey) ([]*cpgerr.PhantomTarget, error) {
	var phantoms []*cpgerr.PhantomTarget
	for _, m := range methods {
		scope := ids.MethodScope(m.FullName, m.Signature)
		for _, cs := range oracle.OutEdges(m.FullName, m.Signature) {
			callNode := assoc.First(ids.CallSiteKey(scope, cs.CallUnitIndex))
			if callNode == nil {
				continue
			}
			if cs.TargetFullName == "" {
				continue // unresolvable; methodFullName on the CALL node still carries the symbolic reference.
			}

			target, created, err := resolveOrPhantom(ctx, d, cs.TargetFullName, cs.TargetSig)
			if err != nil {
				return phantoms, err
			}
			if err := d.AddEdge(ctx, callNode, target, schema.CallEdge, nil); err != nil {
				return phantoms, err
			}
			if created {
				phantoms = append(phantoms, &cpgerr.PhantomTarget{
					MethodFullName: cs.TargetFullName,
					Signature:      cs.TargetSig,
					CallSiteID:     callNode.ID(),
				})
			}
		}
	}
	return phantoms, nil
}

func resolveOrPhantom(ctx context.Context, d driver.Driver, fullName, signature string) (*driver.Node, bool, error) {
	sub, err := d.GetMethod(ctx, fullName, signature, false)
	if err != nil {
		return nil, false, err
	}
	if len(sub.Nodes) > 0 {
		return sub.Nodes[0], false, nil
	}

	phantom := driver.NewNode(schema.Method).
		Set("name", lastSegment(fullName)).
		Set("fullName", fullName).
		Set("signature", signature).
		Set("external", true)
	if err := d.AddVertex(ctx, phantom); err != nil {
		return nil, false, err
	}
	return phantom, true, nil
}

func lastSegment(fullName string) string {
	if i := strings.LastIndexByte(fullName, '.'); i >= 0 {
		return fullName[i+1:]
	}
	return fullName
}
