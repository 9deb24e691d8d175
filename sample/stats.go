package sample

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary holds distribution statistics for a set of samples.
type Summary struct {
	Name string  `csv:"name"`
	N    int     `csv:"n"`
	Min  float64 `csv:"min"`
	Max  float64 `csv:"max"`
	Mean float64 `csv:"mean"`
	Std  float64 `csv:"std"`
	P10  float64 `csv:"p10"`
	P50  float64 `csv:"p50"`
	P90  float64 `csv:"p90"`

	// Non-finite samples are excluded from every statistic above
	NonFinite int `csv:"non_finite"`
}

// Summarize computes statistics over values. The result for an empty or
// entirely non-finite input has N == 0 and zero statistics.
func Summarize(name string, values []float64) Summary {
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		finite = append(finite, v)
	}
	s := Summary{Name: name, N: len(finite), NonFinite: len(values) - len(finite)}
	if s.N == 0 {
		return s
	}

	s.Min = floats.Min(finite)
	s.Max = floats.Max(finite)
	if s.N == 1 {
		s.Mean = finite[0]
	} else {
		s.Mean, s.Std = stat.MeanStdDev(finite, nil)
	}

	// Percentiles interpolate the empirical CDF.
	sort.Float64s(finite)
	s.P10 = stat.Quantile(0.10, stat.LinInterp, finite, nil)
	s.P50 = stat.Quantile(0.50, stat.LinInterp, finite, nil)
	s.P90 = stat.Quantile(0.90, stat.LinInterp, finite, nil)
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s Summary) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("name", s.Name),
		slog.Int("n", s.N),
		slog.Float64("min", s.Min),
		slog.Float64("max", s.Max),
		slog.Float64("mean", s.Mean),
		slog.Float64("std", s.Std),
		slog.Float64("p10", s.P10),
		slog.Float64("p50", s.P50),
		slog.Float64("p90", s.P90),
	}
	if s.NonFinite > 0 {
		attrs = append(attrs, slog.Int("non_finite", s.NonFinite))
	}
	return slog.GroupValue(attrs...)
}
