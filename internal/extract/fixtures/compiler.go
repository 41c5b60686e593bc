package fixtures

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"jvmcpg/internal/extract/pipeline"
	"jvmcpg/internal/ir"
)

// Class describes one compiled-and-lifted class for use directly in
// tests, bypassing pipeline.Compiler entirely.
type Class struct {
	Name, TypeFullName, AstParentType, NamespaceFullName, Hash string
	Methods                                                    []ir.UnitGraph
}

// ClassUnit converts c into the value pipeline.Pipeline.Project consumes.
func (c Class) ClassUnit() pipeline.ClassUnit {
	return pipeline.ClassUnit{
		Name:              c.Name,
		Hash:              c.Hash,
		TypeFullName:      c.TypeFullName,
		AstParentType:     c.AstParentType,
		NamespaceFullName: c.NamespaceFullName,
		Methods:           c.Methods,
	}
}

// DemoCompiler implements pipeline.Compiler by reading each input path's
// byte content and hashing it, synthesising one trivial no-arg
// void-returning method per file. It performs no real parsing or
// bytecode analysis — cpg-extract has no bytecode lifter to call (spec
// §1 keeps that component out of scope), so this is the minimum needed
// to run the pipeline end-to-end against real files on disk rather than
// only in-memory test fixtures.
type DemoCompiler struct{}

func (DemoCompiler) Compile(_ context.Context, paths []string, _ string) ([]pipeline.ClassUnit, error) {
	out := make([]pipeline.ClassUnit, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}

		base := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		typeFullName := "fixtures." + base
		methodFullName := typeFullName + ".main"

		m := NewMethod(methodFullName, "()V", p).
			AstParent(typeFullName, "TYPE_DECL").
			Returns("void", true)
		m.Add(ir.Unit{Op: ir.OpReturn, Line: 1, Col: 1})

		out = append(out, Class{
			Name:          p,
			Hash:          hashOf(data),
			TypeFullName:  typeFullName,
			AstParentType: "NAMESPACE_BLOCK",
			Methods:       []ir.UnitGraph{m.Build()},
		}.ClassUnit())
	}
	return out, nil
}

func hashOf(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Describe is a small helper for CLI/logging output, not used by the
// pipeline itself.
func Describe(c pipeline.ClassUnit) string {
	return fmt.Sprintf("%s (%d methods)", c.TypeFullName, len(c.Methods))
}
