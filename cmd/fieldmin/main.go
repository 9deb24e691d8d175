// Package main finds the geometric median of a site list by minimizing the
// summed distance field with BFGS.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/fields/config"
	"github.com/pthm-cable/fields/sample"
	"github.com/pthm-cable/fields/scene"
)

// evalRecord is one row of minimize_log.csv.
type evalRecord struct {
	Eval  int     `csv:"eval"`
	X     float64 `csv:"x"`
	Y     float64 `csv:"y"`
	Z     float64 `csv:"z"`
	Value float64 `csv:"value"`
}

// formatDuration formats a duration as MM:SS with millisecond precision.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Millisecond)
	m := d / time.Minute
	d -= m * time.Minute
	return fmt.Sprintf("%dm%06.3fs", m, d.Seconds())
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	sitesPath := flag.String("sites", "", "CSV of x,y,z site coordinates")
	outputDir := flag.String("output", "", "Output directory for the evaluation log (optional)")
	flag.Parse()

	if *sitesPath == "" {
		log.Fatal("--sites is required")
	}

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Cfg()

	sites, err := sample.ReadSitesFile(*sitesPath)
	if err != nil {
		log.Fatalf("failed to read sites: %v", err)
	}

	objective, err := scene.SummedDistance(sites)
	if err != nil {
		log.Fatalf("failed to build objective: %v", err)
	}

	var evals []evalRecord
	start := scene.Centroid(sites)
	startTime := time.Now()

	fmt.Printf("Minimizing summed distance to %d sites from centroid (%.4f, %.4f, %.4f)\n",
		len(sites), start.X, start.Y, start.Z)

	res, err := scene.Minimize(objective, start, scene.MinimizeSettings{
		Step:              cfg.Field.Step,
		MaxIterations:     cfg.Minimize.MaxIterations,
		GradientThreshold: cfg.Minimize.GradientThreshold,
	}, func(p r3.Vec, v float64) {
		evals = append(evals, evalRecord{Eval: len(evals) + 1, X: p.X, Y: p.Y, Z: p.Z, Value: v})
	})
	if err != nil {
		log.Fatalf("minimization failed: %v", err)
	}

	fmt.Printf("\nMinimization complete after %d iterations, %d evaluations in %s (%s)\n",
		res.Iterations, res.Evaluations, formatDuration(time.Since(startTime)), res.Status)
	fmt.Printf("Geometric median: (%.6f, %.6f, %.6f)\n", res.Point.X, res.Point.Y, res.Point.Z)
	fmt.Printf("Summed distance:  %.6f\n", res.Value)

	if *outputDir == "" {
		return
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	logPath := filepath.Join(*outputDir, "minimize_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()

	if err := gocsv.MarshalFile(&evals, logFile); err != nil {
		log.Printf("failed to write evaluation log: %v", err)
	} else {
		fmt.Printf("\nEvaluation log saved to: %s\n", logPath)
	}
}
