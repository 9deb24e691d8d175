package sample

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/fields/config"
)

// SiteRecord is one row of a site list CSV.
type SiteRecord struct {
	X float64 `csv:"x"`
	Y float64 `csv:"y"`
	Z float64 `csv:"z"`
}

// ScalarRecord is one row of a scalar grid CSV.
type ScalarRecord struct {
	I     int     `csv:"i"`
	J     int     `csv:"j"`
	K     int     `csv:"k"`
	X     float64 `csv:"x"`
	Y     float64 `csv:"y"`
	Z     float64 `csv:"z"`
	Value float64 `csv:"value"`
}

// VectorRecord is one row of a vector grid CSV.
type VectorRecord struct {
	I  int     `csv:"i"`
	J  int     `csv:"j"`
	K  int     `csv:"k"`
	X  float64 `csv:"x"`
	Y  float64 `csv:"y"`
	Z  float64 `csv:"z"`
	VX float64 `csv:"vx"`
	VY float64 `csv:"vy"`
	VZ float64 `csv:"vz"`
}

// ReadSites parses an x,y,z CSV with a header row.
func ReadSites(r io.Reader) ([]r3.Vec, error) {
	var records []SiteRecord
	if err := gocsv.Unmarshal(r, &records); err != nil {
		return nil, fmt.Errorf("reading sites: %w", err)
	}
	sites := make([]r3.Vec, len(records))
	for i, rec := range records {
		sites[i] = r3.Vec{X: rec.X, Y: rec.Y, Z: rec.Z}
	}
	return sites, nil
}

// ReadSitesFile reads a site list from path.
func ReadSitesFile(path string) ([]r3.Vec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening sites: %w", err)
	}
	defer f.Close()
	return ReadSites(f)
}

// scalarRecords flattens g in lattice order.
func scalarRecords(g *ScalarGrid) []ScalarRecord {
	l := g.Lattice
	out := make([]ScalarRecord, 0, l.Len())
	for k := range l.NZ {
		for j := range l.NY {
			for i := range l.NX {
				p := l.At(i, j, k)
				out = append(out, ScalarRecord{I: i, J: j, K: k, X: p.X, Y: p.Y, Z: p.Z, Value: g.At(i, j, k)})
			}
		}
	}
	return out
}

func vectorRecords(g *VectorGrid) []VectorRecord {
	l := g.Lattice
	out := make([]VectorRecord, 0, l.Len())
	for k := range l.NZ {
		for j := range l.NY {
			for i := range l.NX {
				p, v := l.At(i, j, k), g.At(i, j, k)
				out = append(out, VectorRecord{I: i, J: j, K: k, X: p.X, Y: p.Y, Z: p.Z, VX: v.X, VY: v.Y, VZ: v.Z})
			}
		}
	}
	return out
}

// WriteScalarGrid writes g as CSV with a header row.
func WriteScalarGrid(w io.Writer, g *ScalarGrid) error {
	if err := gocsv.Marshal(scalarRecords(g), w); err != nil {
		return fmt.Errorf("writing scalar grid: %w", err)
	}
	return nil
}

// WriteVectorGrid writes g as CSV with a header row.
func WriteVectorGrid(w io.Writer, g *VectorGrid) error {
	if err := gocsv.Marshal(vectorRecords(g), w); err != nil {
		return fmt.Errorf("writing vector grid: %w", err)
	}
	return nil
}

// OutputManager writes a run's artifacts into one directory: the effective
// config, the sampled grid and a summary table.
type OutputManager struct {
	dir         string
	summaryFile *os.File

	summaryHeaderWritten bool
}

// NewOutputManager creates the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, "summary.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating summary.csv: %w", err)
	}
	return &OutputManager{dir: dir, summaryFile: f}, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

func (om *OutputManager) create(name string, write func(io.Writer) error) error {
	f, err := os.Create(filepath.Join(om.dir, name))
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteScalar writes g to samples.csv.
func (om *OutputManager) WriteScalar(g *ScalarGrid) error {
	if om == nil {
		return nil
	}
	return om.create("samples.csv", func(w io.Writer) error { return WriteScalarGrid(w, g) })
}

// WriteVector writes g to samples.csv.
func (om *OutputManager) WriteVector(g *VectorGrid) error {
	if om == nil {
		return nil
	}
	return om.create("samples.csv", func(w io.Writer) error { return WriteVectorGrid(w, g) })
}

// WriteSummary appends a row to summary.csv.
func (om *OutputManager) WriteSummary(s Summary) error {
	if om == nil {
		return nil
	}

	records := []Summary{s}

	if !om.summaryHeaderWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, om.summaryFile); err != nil {
			return fmt.Errorf("writing summary: %w", err)
		}
		om.summaryHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, om.summaryFile); err != nil {
			return fmt.Errorf("writing summary: %w", err)
		}
	}

	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close closes the summary file.
func (om *OutputManager) Close() error {
	if om == nil || om.summaryFile == nil {
		return nil
	}
	return om.summaryFile.Close()
}
