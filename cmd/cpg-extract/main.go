// Command cpg-extract runs one load()+project() extraction cycle
// against a set of input files, wiring together the driver factory,
// configuration loader, and extractor pipeline (spec §4.14).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"jvmcpg/internal/config"
	"jvmcpg/internal/driverfactory"
	"jvmcpg/internal/extract/fixtures"
	"jvmcpg/internal/extract/pipeline"
	"jvmcpg/internal/progress"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	driverSpec := flag.String("driver", "memory", "Driver backend: memory, sqlite:<path>, or remote:<url>")
	configPath := flag.String("config", "", "Path to a YAML config file (spec §6.2 fields)")
	callGraphAlg := flag.String("callGraphAlg", "", "Override callGraphAlg: NONE, CHA, or SPARK")
	sparkOpts := flag.String("sparkOpts", "", "Opaque options string forwarded to a SPARK oracle")
	parallelThreshold := flag.Int("parallelThreshold", 0, "Override parallelThreshold")
	compileDir := flag.String("compileDir", "", "Override compileDir")
	verbose := flag.Bool("verbose", false, "Print detailed progress")
	quiet := flag.Bool("quiet", false, "Suppress all but phase boundaries, warnings and the final summary")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: cpg-extract [flags] <input-file> [<input-file> ...]\n\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		return fmt.Errorf("at least one input file is required")
	}
	paths := flag.Args()

	cfg, err := config.Load(*configPath, config.Overrides{
		CallGraphAlg:      *callGraphAlg,
		SparkOpts:         *sparkOpts,
		ParallelThreshold: *parallelThreshold,
		CompileDir:        *compileDir,
	})
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	d, closeDriver, err := driverfactory.Open(*driverSpec)
	if err != nil {
		return fmt.Errorf("driver: %w", err)
	}
	defer func() { _ = closeDriver() }()

	prog := progress.New(*verbose, *quiet)
	prog.Log("driver=%s callGraphAlg=%s parallelThreshold=%d", *driverSpec, cfg.CallGraphAlg, cfg.ParallelThreshold)

	// cpg-extract has no bytecode lifter to call — that collaborator is
	// deliberately out of scope (spec §1) — so it drives the pipeline
	// with fixtures.DemoCompiler, which hashes each input file's bytes
	// and synthesises one trivial method per file. A real deployment
	// supplies its own pipeline.Compiler wired to an actual lifter; the
	// call-graph oracle is the same kind of external collaborator, so no
	// Oracle is passed here either (spec §4.8 "consumes an external
	// call-graph oracle").
	p := pipeline.New(d, fixtures.DemoCompiler{}, nil, cfg)

	ctx := context.Background()
	prog.Phase("LOADED")
	if err := p.Load(ctx, paths); err != nil {
		return fmt.Errorf("load: %w", err)
	}

	prog.Phase("PROJECT")
	result, err := p.Project(ctx)
	if err != nil {
		return fmt.Errorf("project: %w", err)
	}

	for _, sv := range result.Schema {
		prog.Warn("schema violation: %s", sv.Error())
	}
	for _, ph := range result.Phantoms {
		prog.Warn("phantom target: %s", ph.Error())
	}
	prog.Count("rebuilt", len(result.Rebuilt))
	prog.Count("skipped", len(result.Skipped))
	prog.Count("deleted", len(result.Deleted))
	prog.Summary(len(result.Rebuilt), len(result.Skipped), len(result.Deleted), len(result.Schema), len(result.Phantoms))
	return nil
}
