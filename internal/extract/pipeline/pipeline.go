// Package pipeline implements the extractor state machine from spec
// §4.9: IDLE -> load() -> LOADED -> project() -> COMPILING ->
// LOADING_CLASSES -> DIFF_SCAN -> DELETE_STALE -> BUILDING_CPG ->
// LINKING_CALLS -> IDLE. It owns the process-local association map and
// drives C5 (astbuild), C6 (cfgbuild), C7 (pdgbuild), and C8
// (callgraph) against whatever Driver the caller configured it with.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"jvmcpg/internal/cpgerr"
	"jvmcpg/internal/driver"
	"jvmcpg/internal/driver/memdriver"
	"jvmcpg/internal/extract/astbuild"
	"jvmcpg/internal/extract/callgraph"
	"jvmcpg/internal/extract/cfgbuild"
	"jvmcpg/internal/extract/ids"
	"jvmcpg/internal/extract/pdgbuild"
	"jvmcpg/internal/ir"
	"jvmcpg/internal/schema"
)

// State is one node of the pipeline's state machine.
type State string

const (
	StateIdle           State = "IDLE"
	StateLoaded         State = "LOADED"
	StateCompiling      State = "COMPILING"
	StateLoadingClasses State = "LOADING_CLASSES"
	StateDiffScan       State = "DIFF_SCAN"
	StateDeleteStale    State = "DELETE_STALE"
	StateBuildingCPG    State = "BUILDING_CPG"
	StateLinkingCalls   State = "LINKING_CALLS"
)

// CallGraphAlg selects the call-graph oracle (spec §6.2).
type CallGraphAlg string

const (
	AlgNone  CallGraphAlg = "NONE"
	AlgCHA   CallGraphAlg = "CHA"
	AlgSPARK CallGraphAlg = "SPARK"
)

// Config is the subset of spec §6.2's recognised options the pipeline
// itself consults.
type Config struct {
	CallGraphAlg      CallGraphAlg
	SparkOpts         string
	ParallelThreshold int
	CompileDir        string
}

// DefaultConfig matches spec §6.2's documented defaults.
func DefaultConfig() Config {
	return Config{CallGraphAlg: AlgNone, ParallelThreshold: 100000}
}

// ClassUnit is one compiled-and-lifted class, the unit DIFF_SCAN
// compares by content hash and BUILDING_CPG ingests. Producing one from
// real JVM bytecode is the out-of-scope lifter's job; Compiler is the
// seam a caller plugs a real one into.
type ClassUnit struct {
	Name               string // FILE.name
	Hash               string
	TypeFullName       string
	AstParentType      string
	NamespaceFullName  string
	Methods            []ir.UnitGraph
}

// Compiler turns a set of loaded source paths into compiled, lifted
// classes. CompileError wraps any failure (spec §7).
type Compiler interface {
	Compile(ctx context.Context, paths []string, compileDir string) ([]ClassUnit, error)
}

// Result summarises one project() call.
type Result struct {
	Rebuilt   []string
	Skipped   []string
	Deleted   []string
	Schema    []*cpgerr.SchemaViolation
	Phantoms  []*cpgerr.PhantomTarget
}

// Pipeline is the extractor state machine. One Pipeline handles one
// logical project at a time; concurrent callers must serialise their own
// calls (spec §5: "single-writer within one extraction").
type Pipeline struct {
	mu sync.Mutex

	d        driver.Driver
	compiler Compiler
	oracle   callgraph.Oracle
	cfg      Config

	state   State
	pending []string
	assoc   *ids.Association
}

// New constructs a Pipeline in IDLE. oracle may be nil when
// cfg.CallGraphAlg is AlgNone.
func New(d driver.Driver, compiler Compiler, oracle callgraph.Oracle, cfg Config) *Pipeline {
	return &Pipeline{
		d:        d,
		compiler: compiler,
		oracle:   oracle,
		cfg:      cfg,
		state:    StateIdle,
		assoc:    ids.NewAssociation(),
	}
}

// State returns the pipeline's current state, for callers/tests that
// want to observe the machine without racing project().
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Load validates that every path exists and transitions IDLE -> LOADED.
// Per spec §7, a missing path fails load() with state unchanged.
func (p *Pipeline) Load(_ context.Context, paths []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateIdle {
		return fmt.Errorf("pipeline: load() called in state %s, want %s", p.state, StateIdle)
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			return &cpgerr.MissingInput{File: path, Err: err}
		}
	}
	p.pending = paths
	p.state = StateLoaded
	return nil
}

// Project runs LOADED -> ... -> IDLE once, per spec §4.9.
func (p *Pipeline) Project(ctx context.Context) (*Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateLoaded {
		return nil, fmt.Errorf("pipeline: project() called in state %s, want %s", p.state, StateLoaded)
	}
	defer func() {
		p.state = StateIdle
		p.assoc.Clear()
	}()

	p.state = StateCompiling
	classes, err := p.compiler.Compile(ctx, p.pending, p.cfg.CompileDir)
	if err != nil {
		if _, ok := err.(*cpgerr.CompileError); ok {
			return nil, err
		}
		return nil, &cpgerr.CompileError{Detail: err.Error(), Err: err}
	}

	p.state = StateLoadingClasses
	existingHash, err := p.currentFileHashes(ctx)
	if err != nil {
		return nil, err
	}

	p.state = StateDiffScan
	var toRebuild []ClassUnit
	var skipped []string
	for _, c := range classes {
		if h, ok := existingHash[c.Name]; ok && h == c.Hash {
			skipped = append(skipped, c.Name)
			continue
		}
		toRebuild = append(toRebuild, c)
	}

	p.state = StateDeleteStale
	deleted, err := p.deleteStale(ctx, toRebuild)
	if err != nil {
		return nil, err
	}

	p.state = StateBuildingCPG
	var violations []*cpgerr.SchemaViolation
	var built []callgraph.MethodKey
	var rebuiltNames []string
	if p.cfg.ParallelThreshold > 0 && len(toRebuild) > p.cfg.ParallelThreshold {
		built, violations, rebuiltNames, err = p.buildClassesParallel(ctx, toRebuild)
	} else {
		for _, c := range toRebuild {
			m, v, buildErr := p.buildClassWith(ctx, p.d, c)
			if buildErr != nil {
				return nil, buildErr
			}
			built = append(built, m...)
			violations = append(violations, v...)
			rebuiltNames = append(rebuiltNames, c.Name)
		}
	}
	if err != nil {
		return nil, err
	}

	p.state = StateLinkingCalls
	var phantoms []*cpgerr.PhantomTarget
	if p.cfg.CallGraphAlg != AlgNone && p.oracle != nil {
		phantoms, err = callgraph.Build(ctx, p.d, p.assoc, p.oracle, built)
		if err != nil {
			return nil, err
		}
	}

	return &Result{
		Rebuilt:  rebuiltNames,
		Skipped:  skipped,
		Deleted:  deleted,
		Schema:   violations,
		Phantoms: phantoms,
	}, nil
}

// currentFileHashes reads every FILE node's hash, keyed by name, for
// DIFF_SCAN's comparison.
func (p *Pipeline) currentFileHashes(ctx context.Context) (map[string]string, error) {
	whole, err := p.d.GetWholeGraph(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string)
	for _, n := range whole.Nodes {
		if n.Kind() == schema.File {
			out[n.String("name")] = n.String("hash")
		}
	}
	return out, nil
}

// deleteStale removes, for each class marked for rebuild, every METHOD
// with a matching filename, every TYPE_DECL with a matching filename,
// and finally the FILE node itself (spec §4.9 DELETE_STALE). Inbound
// CALL edges survive automatically: DeleteMethod preserves them onto a
// phantom head (see internal/driver/memdriver's DeleteMethod), so this
// pipeline keeps no separate side table for them.
func (p *Pipeline) deleteStale(ctx context.Context, toRebuild []ClassUnit) ([]string, error) {
	if len(toRebuild) == 0 {
		return nil, nil
	}
	names := make(map[string]bool, len(toRebuild))
	for _, c := range toRebuild {
		names[c.Name] = true
	}

	whole, err := p.d.GetWholeGraph(ctx)
	if err != nil {
		return nil, err
	}

	var deleted []string
	for _, n := range whole.Nodes {
		if n.Kind() == schema.Method && names[n.String("filename")] {
			if err := p.d.DeleteMethod(ctx, n.String("fullName"), n.String("signature")); err != nil {
				return nil, err
			}
		}
	}
	for _, n := range whole.Nodes {
		if n.Kind() == schema.TypeDecl && names[n.String("filename")] {
			if err := p.d.DeleteVertex(ctx, n); err != nil {
				return nil, err
			}
		}
	}
	for _, n := range whole.Nodes {
		if n.Kind() == schema.File && names[n.String("name")] {
			if err := p.d.DeleteVertex(ctx, n); err != nil {
				return nil, err
			}
			deleted = append(deleted, n.String("name"))
		}
	}
	return deleted, nil
}

// buildClassWith ensures c's FILE/NAMESPACE_BLOCK/TYPE_DECL program
// structure exists in d, then runs C5 -> C6 -> C7 for each of c's
// methods (spec §4.9 BUILDING_CPG). A schema violation on any one
// method rolls that method back (via DeleteMethod) and continues with
// the next. d is p.d on the serial path, or a class-private staging
// driver on the parallel path (see buildClassesParallel).
func (p *Pipeline) buildClassWith(ctx context.Context, d driver.Driver, c ClassUnit) ([]callgraph.MethodKey, []*cpgerr.SchemaViolation, error) {
	ns := driver.NewNode(schema.NamespaceBlock).
		Set("name", c.NamespaceFullName).
		Set("fullName", c.NamespaceFullName).
		Set("filename", c.Name)
	if err := d.AddVertex(ctx, ns); err != nil {
		return nil, nil, err
	}

	file := driver.NewNode(schema.File).Set("name", c.Name).Set("hash", c.Hash)
	if err := d.AddVertex(ctx, file); err != nil {
		return nil, nil, err
	}
	if err := d.AddEdge(ctx, file, ns, schema.AST, nil); err != nil {
		return nil, nil, err
	}

	typeDecl := driver.NewNode(schema.TypeDecl).
		Set("name", c.TypeFullName).
		Set("fullName", c.TypeFullName).
		Set("astParentFullName", c.NamespaceFullName).
		Set("astParentType", c.AstParentType).
		Set("filename", c.Name)
	if err := d.AddVertex(ctx, typeDecl); err != nil {
		return nil, nil, err
	}
	if err := d.AddEdge(ctx, ns, typeDecl, schema.AST, nil); err != nil {
		return nil, nil, err
	}

	var built []callgraph.MethodKey
	var violations []*cpgerr.SchemaViolation
	for _, ug := range c.Methods {
		mi := ug.Method()

		methodNode, err := astbuild.Build(ctx, d, p.assoc, ug)
		if sv, ok := asSchemaViolation(err); ok {
			violations = append(violations, annotate(sv, mi))
			_ = d.DeleteMethod(ctx, mi.FullName, mi.Signature)
			continue
		} else if err != nil {
			return built, violations, err
		}

		if err := d.AddEdge(ctx, typeDecl, methodNode, schema.AST, nil); err != nil {
			return built, violations, err
		}
		if err := d.AddEdge(ctx, methodNode, file, schema.SourceFile, nil); err != nil {
			return built, violations, err
		}

		if err := cfgbuild.Build(ctx, d, p.assoc, ug, mi.FullName, mi.Signature); err != nil {
			if sv, ok := asSchemaViolation(err); ok {
				violations = append(violations, annotate(sv, mi))
				_ = d.DeleteMethod(ctx, mi.FullName, mi.Signature)
				continue
			}
			return built, violations, err
		}

		if err := pdgbuild.Build(ctx, d, p.assoc, mi.FullName, mi.Signature); err != nil {
			if sv, ok := asSchemaViolation(err); ok {
				violations = append(violations, annotate(sv, mi))
				_ = d.DeleteMethod(ctx, mi.FullName, mi.Signature)
				continue
			}
			return built, violations, err
		}

		built = append(built, callgraph.MethodKey{FullName: mi.FullName, Signature: mi.Signature})
	}
	return built, violations, nil
}

// buildClassesParallel implements spec §5's "parallel strategy ...
// permitted for the IR-lifting step (per class) only when the number
// of inputs exceeds a configurable threshold". Each class is built
// against its own private in-memory staging driver concurrently,
// bounded at GOMAXPROCS; the resulting subgraphs are then replayed
// into p.d one class at a time, in toRebuild's order, to keep the
// driver single-writer (spec §5 "results are then merged serially
// into the driver").
func (p *Pipeline) buildClassesParallel(ctx context.Context, toRebuild []ClassUnit) ([]callgraph.MethodKey, []*cpgerr.SchemaViolation, []string, error) {
	type staged struct {
		built      []callgraph.MethodKey
		violations []*cpgerr.SchemaViolation
		sub        *driver.Subgraph
	}
	staging := make([]staged, len(toRebuild))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, c := range toRebuild {
		i, c := i, c
		g.Go(func() error {
			scratch := memdriver.New()
			built, violations, err := p.buildClassWith(gctx, scratch, c)
			if err != nil {
				return err
			}
			sub, err := scratch.GetWholeGraph(gctx)
			if err != nil {
				return err
			}
			staging[i] = staged{built: built, violations: violations, sub: sub}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}

	var built []callgraph.MethodKey
	var violations []*cpgerr.SchemaViolation
	var rebuiltNames []string
	for i, c := range toRebuild {
		if err := p.replayIntoDriver(ctx, staging[i].sub); err != nil {
			return nil, nil, nil, err
		}
		built = append(built, staging[i].built...)
		violations = append(violations, staging[i].violations...)
		rebuiltNames = append(rebuiltNames, c.Name)
	}
	return built, violations, rebuiltNames, nil
}

// replayIntoDriver re-inserts every node and edge of a staging
// subgraph into p.d under fresh ids, since a node's id is meaningful
// only within the driver that assigned it.
func (p *Pipeline) replayIntoDriver(ctx context.Context, sub *driver.Subgraph) error {
	mapped := make(map[int64]*driver.Node, len(sub.Nodes))
	for _, n := range sub.Nodes {
		fresh := driver.NewNode(n.Kind())
		for k, v := range n.Properties() {
			fresh.Set(k, v)
		}
		if err := p.d.AddVertex(ctx, fresh); err != nil {
			return err
		}
		mapped[n.ID()] = fresh
	}
	for _, e := range sub.Edges {
		src, dst := mapped[e.Src.ID()], mapped[e.Dst.ID()]
		if err := p.d.AddEdge(ctx, src, dst, e.Label, e.Properties); err != nil {
			return err
		}
	}
	return nil
}

func asSchemaViolation(err error) (*cpgerr.SchemaViolation, bool) {
	sv, ok := err.(*cpgerr.SchemaViolation)
	return sv, ok
}

func annotate(sv *cpgerr.SchemaViolation, mi ir.MethodInfo) *cpgerr.SchemaViolation {
	if sv.MethodFullName == "" {
		sv.MethodFullName = mi.FullName
	}
	if sv.Signature == "" {
		sv.Signature = mi.Signature
	}
	if sv.File == "" {
		sv.File = mi.Filename
	}
	return sv
}
