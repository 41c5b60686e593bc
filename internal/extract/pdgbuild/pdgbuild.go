// Package pdgbuild adds the data-flow edges astbuild leaves for it: REF
// (def/use binding), ARGUMENT (call-site argument position), and
// RECEIVER (instance dispatch target), per spec §4.7. It consumes the
// hidden bookkeeping properties astbuild attaches to body nodes
// ("_refKind"/"_refName" on IDENTIFIER/FIELD_IDENTIFIER, "_args"/
// "_receiver" on CALL) rather than re-walking the IR.
package pdgbuild

import (
	"context"

	"jvmcpg/internal/driver"
	"jvmcpg/internal/extract/ids"
	"jvmcpg/internal/schema"
)

// Build emits REF/ARGUMENT/RECEIVER edges for the method identified by
// (fullName, signature), whose body astbuild has already persisted and
// recorded in assoc.
func Build(ctx context.Context, d driver.Driver, assoc *ids.Association, fullName, signature string) error {
	scope := ids.MethodScope(fullName, signature)
	body := assoc.Lookup(ids.BodyKey(scope))

	for _, n := range body {
		if err := linkRef(ctx, d, assoc, scope, n); err != nil {
			return err
		}
		if n.Kind() != schema.Call {
			continue
		}
		if err := linkArguments(ctx, d, n); err != nil {
			return err
		}
		if err := linkReceiver(ctx, d, n); err != nil {
			return err
		}
	}
	return nil
}

func linkRef(ctx context.Context, d driver.Driver, assoc *ids.Association, scope string, n *driver.Node) error {
	refKind, _ := n.Get("_refKind").(string)
	refName, _ := n.Get("_refName").(string)
	if refKind == "" || refName == "" {
		return nil
	}

	var target *driver.Node
	switch refKind {
	case "local":
		target = assoc.First(ids.LocalKey(scope, refName))
	case "param":
		target = assoc.First(ids.ParamKey(scope, refName))
	case "member":
		// Member declarations live at class scope; this method-local
		// build has no MEMBER node to bind to, so the FIELD_IDENTIFIER
		// stays unresolved rather than dangling to a fabricated target.
		return nil
	}
	if target == nil {
		return nil
	}
	return d.AddEdge(ctx, n, target, schema.Ref, nil)
}

func linkArguments(ctx context.Context, d driver.Driver, call *driver.Node) error {
	args, _ := call.Get("_args").([]*driver.Node)
	for _, a := range args {
		if a == nil {
			continue
		}
		if err := d.AddEdge(ctx, call, a, schema.Argument, nil); err != nil {
			return err
		}
	}
	return nil
}

func linkReceiver(ctx context.Context, d driver.Driver, call *driver.Node) error {
	receiver, _ := call.Get("_receiver").(*driver.Node)
	if receiver == nil {
		return nil
	}
	return d.AddEdge(ctx, call, receiver, schema.Receiver, nil)
}
