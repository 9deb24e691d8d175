// Field slice preview tool - interactive visualization with sliders.
//
// Usage: go run ./cmd/fieldpreview [-config cfg.yaml] [-sites sites.csv]
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	gui "github.com/gen2brain/raylib-go/raygui"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/fields/config"
	"github.com/pthm-cable/fields/falloff"
	"github.com/pthm-cable/fields/sample"
	"github.com/pthm-cable/fields/scene"
)

const panelWidth = 320

// defaultSites is used when no -sites file is given.
var defaultSites = []r3.Vec{
	{X: -1, Y: -0.5, Z: 0},
	{X: 0.8, Y: 0.9, Z: 0.3},
	{X: 0.2, Y: -1.2, Z: -0.4},
	{X: 1.3, Y: -0.2, Z: 0.1},
}

// PreviewParams holds the interactive settings.
type PreviewParams struct {
	Kind        int // index into scene.Kinds
	Falloff     int // index into falloff.Kinds
	Coefficient float32
	Seed        int64
	SliceZ      float32
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	sitesPath := flag.String("sites", "", "CSV of x,y,z site coordinates (empty = built-in sites)")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	base := config.Cfg()

	sites := defaultSites
	if *sitesPath != "" {
		var err error
		if sites, err = sample.ReadSitesFile(*sitesPath); err != nil {
			log.Fatalf("failed to read sites: %v", err)
		}
	}

	pv := base.Preview
	previewSize := min(pv.Width-panelWidth-30, pv.Height-20)
	gridSize := max(previewSize/pv.CellSize, 2)

	rl.InitWindow(int32(pv.Width), int32(pv.Height), "Field Slice Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(pv.TargetFPS))

	initial := PreviewParams{
		Falloff:     indexOf(falloff.Kinds, falloff.Kind(base.Falloff.Kind)),
		Coefficient: float32(base.Falloff.Coefficient),
		Seed:        base.Noise.Seed,
	}
	params := initial

	img := rl.GenImageColor(gridSize, gridSize, rl.Black)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(texture)

	values := make([]float64, gridSize*gridSize)
	var summary sample.Summary
	var lastErr error
	needsRegen := true

	for !rl.WindowShouldClose() {
		if needsRegen {
			lastErr = generateSlice(values, gridSize, base, sites, params)
			if lastErr == nil {
				summary = sample.Summarize("slice", values)
				updateTexture(texture, values, summary)
			}
			needsRegen = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		rl.DrawTexturePro(
			texture,
			rl.Rectangle{X: 0, Y: 0, Width: float32(gridSize), Height: float32(gridSize)},
			rl.Rectangle{X: 10, Y: 10, Width: float32(previewSize), Height: float32(previewSize)},
			rl.Vector2{X: 0, Y: 0},
			0,
			rl.White,
		)
		rl.DrawRectangleLines(10, 10, int32(previewSize), int32(previewSize), rl.DarkGray)

		panelX := float32(previewSize + 20)
		panelY := float32(10)

		rl.DrawText("Field Slice", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		// Scene and falloff selectors
		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 140, Height: 30}, "Scene: "+string(scene.Kinds[params.Kind])) {
			params.Kind = (params.Kind + 1) % len(scene.Kinds)
			needsRegen = true
		}
		if gui.Button(rl.Rectangle{X: panelX + 150, Y: panelY, Width: 150, Height: 30}, "Falloff: "+string(falloff.Kinds[params.Falloff])) {
			params.Falloff = (params.Falloff + 1) % len(falloff.Kinds)
			needsRegen = true
		}
		panelY += 45

		// Slice height slider
		extent := float32(pv.Extent)
		rl.DrawText("Slice Z", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newZ := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"", "",
			params.SliceZ, -extent, extent,
		)
		rl.DrawText(fmt.Sprintf("%.2f", params.SliceZ), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newZ != params.SliceZ {
			params.SliceZ = newZ
			needsRegen = true
		}
		panelY += 35

		// Falloff coefficient slider
		rl.DrawText("Falloff coefficient", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newCoef := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"", "",
			params.Coefficient, 0, 10,
		)
		rl.DrawText(fmt.Sprintf("%.2f", params.Coefficient), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newCoef != params.Coefficient {
			params.Coefficient = newCoef
			needsRegen = true
		}
		panelY += 35

		// Seed slider
		rl.DrawText("Noise seed", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newSeed := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"", "",
			float32(params.Seed), 0, 99999,
		)
		rl.DrawText(fmt.Sprintf("%d", params.Seed), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if int64(newSeed) != params.Seed {
			params.Seed = int64(newSeed)
			needsRegen = true
		}
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 140, Height: 30}, "Random Seed") {
			params.Seed = int64(rl.GetRandomValue(0, 99999))
			needsRegen = true
		}
		if gui.Button(rl.Rectangle{X: panelX + 150, Y: panelY, Width: 150, Height: 30}, "Reset All") {
			params = initial
			needsRegen = true
		}
		panelY += 50

		// Stats
		if lastErr != nil {
			rl.DrawText(lastErr.Error(), int32(panelX), int32(panelY), 14, rl.Maroon)
		} else {
			lines := []string{
				fmt.Sprintf("Min: %.4f  Max: %.4f", summary.Min, summary.Max),
				fmt.Sprintf("Mean: %.4f  Std: %.4f", summary.Mean, summary.Std),
				fmt.Sprintf("P10: %.4f  P50: %.4f  P90: %.4f", summary.P10, summary.P50, summary.P90),
			}
			for _, line := range lines {
				rl.DrawText(line, int32(panelX), int32(panelY), 14, rl.DarkGray)
				panelY += 18
			}
		}

		rl.EndDrawing()
	}
}

func indexOf[T comparable](list []T, v T) int {
	for i, x := range list {
		if x == v {
			return i
		}
	}
	return 0
}

// generateSlice samples the selected scene on the z = params.SliceZ plane.
// Vector scenes are shown by magnitude.
func generateSlice(dst []float64, size int, base *config.Config, sites []r3.Vec, params PreviewParams) error {
	cfg := *base
	cfg.Falloff.Kind = string(falloff.Kinds[params.Falloff])
	cfg.Falloff.Coefficient = float64(params.Coefficient)
	cfg.Noise.Seed = params.Seed
	f, err := falloff.New(falloff.Kinds[params.Falloff], cfg.Falloff.Amplitude, cfg.Falloff.Coefficient, cfg.Falloff.Clamp)
	if err != nil {
		return err
	}
	cfg.Derived.Falloff = f

	s, err := scene.Build(scene.Kinds[params.Kind], &cfg, sites)
	if err != nil {
		return err
	}

	ext := cfg.Preview.Extent
	l := sample.Lattice{
		Min: r3.Vec{X: -ext, Y: -ext, Z: float64(params.SliceZ)},
		Max: r3.Vec{X: ext, Y: ext, Z: float64(params.SliceZ)},
		NX:  size, NY: size, NZ: 1,
	}
	if s.Scalar != nil {
		g, err := sample.Scalar(s.Scalar, l)
		if err != nil {
			return err
		}
		copy(dst, g.Values)
		return nil
	}
	g, err := sample.Vector(s.Vector, l)
	if err != nil {
		return err
	}
	copy(dst, g.Magnitudes())
	return nil
}

// updateTexture maps values onto a dark blue -> cyan -> yellow -> white ramp
// normalized to the slice's range.
func updateTexture(texture rl.Texture2D, values []float64, s sample.Summary) {
	span := s.Max - s.Min
	pixels := make([]color.RGBA, len(values))
	for i, raw := range values {
		if math.IsNaN(raw) || math.IsInf(raw, 0) {
			pixels[i] = color.RGBA{R: 255, A: 255}
			continue
		}
		var v float32
		if span > 0 {
			v = float32((raw - s.Min) / span)
		}
		var r, g, b uint8
		if v < 0.25 {
			t := v / 0.25
			r = uint8(10 + t*30)
			g = uint8(20 + t*60)
			b = uint8(60 + t*100)
		} else if v < 0.5 {
			t := (v - 0.25) / 0.25
			r = uint8(40 + t*20)
			g = uint8(80 + t*120)
			b = uint8(160 + t*40)
		} else if v < 0.75 {
			t := (v - 0.5) / 0.25
			r = uint8(60 + t*140)
			g = uint8(200 - t*40)
			b = uint8(200 - t*150)
		} else {
			t := (v - 0.75) / 0.25
			r = uint8(200 + t*55)
			g = uint8(160 + t*95)
			b = uint8(50 + t*205)
		}
		pixels[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	rl.UpdateTexture(texture, pixels)
}
