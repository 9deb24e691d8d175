package scene

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/fields/field"
)

// MinimizeSettings bounds a minimization run.
type MinimizeSettings struct {
	Step              float64 // finite-difference step for the gradient
	MaxIterations     int
	GradientThreshold float64
}

// MinimizeResult is the outcome of Minimize.
type MinimizeResult struct {
	Point       r3.Vec
	Value       float64
	Iterations  int
	Evaluations int
	Status      optimize.Status
}

// LogValue implements slog.LogValuer for structured logging.
func (r MinimizeResult) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("x", r.Point.X),
		slog.Float64("y", r.Point.Y),
		slog.Float64("z", r.Point.Z),
		slog.Float64("value", r.Value),
		slog.Int("iterations", r.Iterations),
		slog.Int("evaluations", r.Evaluations),
		slog.String("status", r.Status.String()),
	)
}

// Centroid returns the mean of sites.
func Centroid(sites []r3.Vec) r3.Vec {
	xs, ys, zs := field.Components(sites)
	return r3.Vec{X: stat.Mean(xs, nil), Y: stat.Mean(ys, nil), Z: stat.Mean(zs, nil)}
}

// Minimize searches for a local minimum of f with BFGS starting at start. The
// search gradient is the central-difference Gradient of f, and field
// evaluation errors abort the run. onEval, if set, sees every function
// evaluation in order.
func Minimize(f field.Scalar, start r3.Vec, s MinimizeSettings, onEval func(p r3.Vec, v float64)) (MinimizeResult, error) {
	grad, err := field.NewGradient(f, s.Step)
	if err != nil {
		return MinimizeResult{}, err
	}

	// optimize has no error path through Func; record the first failure and
	// report it after the run.
	var evalErr error
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			p := r3.Vec{X: x[0], Y: x[1], Z: x[2]}
			v, err := f.Evaluate(p)
			if err != nil && evalErr == nil {
				evalErr = err
			}
			if onEval != nil {
				onEval(p, v)
			}
			return v
		},
		Grad: func(dst, x []float64) {
			g, err := grad.Evaluate(r3.Vec{X: x[0], Y: x[1], Z: x[2]})
			if err != nil && evalErr == nil {
				evalErr = err
			}
			dst[0], dst[1], dst[2] = g.X, g.Y, g.Z
		},
	}
	settings := &optimize.Settings{
		MajorIterations:   s.MaxIterations,
		GradientThreshold: s.GradientThreshold,
	}

	res, err := optimize.Minimize(problem, []float64{start.X, start.Y, start.Z}, settings, &optimize.BFGS{})
	if evalErr != nil {
		return MinimizeResult{}, fmt.Errorf("evaluating objective: %w", evalErr)
	}
	if res == nil {
		return MinimizeResult{}, fmt.Errorf("minimize: %w", err)
	}
	out := MinimizeResult{
		Point:       r3.Vec{X: res.X[0], Y: res.X[1], Z: res.X[2]},
		Value:       res.F,
		Iterations:  res.Stats.MajorIterations,
		Evaluations: res.Stats.FuncEvaluations,
		Status:      res.Status,
	}
	// Iteration and evaluation limits still produce a usable point.
	if err != nil && res.Status != optimize.IterationLimit && res.Status != optimize.FunctionEvaluationLimit {
		return out, fmt.Errorf("minimize: %w", err)
	}
	return out, nil
}
