package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/fields/config"
	"github.com/pthm-cable/fields/sample"
	"github.com/pthm-cable/fields/scene"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	sitesPath := flag.String("sites", "", "CSV of x,y,z site coordinates")
	kind := flag.String("kind", string(scene.Distance), "Scene to sample: "+kindList())
	outputDir := flag.String("out", "", "Output directory for samples, summary and config snapshot")
	logStats := flag.Bool("log-stats", false, "Log sample statistics and timings via slog")
	verify := flag.Bool("verify", false, "Check batch results against point-by-point evaluation")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Derived.LogLevel}))
	slog.SetDefault(logger)

	if err := run(cfg, scene.Kind(*kind), *sitesPath, *outputDir, *logStats, *verify); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func kindList() string {
	names := make([]string, len(scene.Kinds))
	for i, k := range scene.Kinds {
		names[i] = string(k)
	}
	return strings.Join(names, "|")
}

func run(cfg *config.Config, kind scene.Kind, sitesPath, outputDir string, logStats, verify bool) error {
	perf := sample.NewPerfCollector()

	perf.StartPhase(sample.PhaseLoad)
	var sites []r3.Vec
	if sitesPath != "" {
		var err error
		if sites, err = sample.ReadSitesFile(sitesPath); err != nil {
			return err
		}
	}

	perf.StartPhase(sample.PhaseBuild)
	s, err := scene.Build(kind, cfg, sites)
	if err != nil {
		return err
	}

	lattice := sample.Lattice{
		Min: cfg.Derived.LatticeMin,
		Max: cfg.Derived.LatticeMax,
		NX:  cfg.Lattice.Resolution[0],
		NY:  cfg.Lattice.Resolution[1],
		NZ:  cfg.Lattice.Resolution[2],
	}
	slog.Info("sampling",
		"kind", kind,
		"sites", len(sites),
		"points", lattice.Len(),
		"falloff", cfg.Falloff.Kind,
		"noise", cfg.Derived.NoiseBasis,
	)

	perf.StartPhase(sample.PhaseEvaluate)
	var (
		scalars *sample.ScalarGrid
		vectors *sample.VectorGrid
		summary sample.Summary
	)
	if s.Scalar != nil {
		if scalars, err = sample.Scalar(s.Scalar, lattice); err != nil {
			return err
		}
		summary = sample.Summarize(string(kind), scalars.Values)
	} else {
		if vectors, err = sample.Vector(s.Vector, lattice); err != nil {
			return err
		}
		summary = sample.Summarize(string(kind)+"_magnitude", vectors.Magnitudes())
	}

	if verify {
		perf.StartPhase(sample.PhaseVerify)
		dev, err := s.MaxDeviation(lattice.Points())
		if err != nil {
			return err
		}
		if dev > cfg.Field.Tolerance {
			return fmt.Errorf("batch and point evaluation differ by %g (tolerance %g)", dev, cfg.Field.Tolerance)
		}
		slog.Info("verified", "max_deviation", dev)
	}

	perf.StartPhase(sample.PhaseWrite)
	om, err := sample.NewOutputManager(outputDir)
	if err != nil {
		return err
	}
	defer om.Close()

	if err := om.WriteConfig(cfg); err != nil {
		return err
	}
	if scalars != nil {
		err = om.WriteScalar(scalars)
	} else {
		err = om.WriteVector(vectors)
	}
	if err != nil {
		return err
	}
	if err := om.WriteSummary(summary); err != nil {
		return err
	}

	stats := perf.Stop(lattice.Len())
	if logStats {
		slog.Info("summary", "stats", summary, "perf", stats)
	}
	if dir := om.Dir(); dir != "" {
		slog.Info("output written", "dir", dir)
	}
	return nil
}
