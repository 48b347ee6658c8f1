package delta

import (
	"fmt"

	"github.com/danielpatrickdp/adaptive-state/wellness-core/internal/state"
)

// #region direction
// Direction is the self-reported outcome of a guided session.
type Direction string

const (
	Better  Direction = "better"
	Worse   Direction = "worse"
	Neutral Direction = "neutral"
)

// #endregion direction

// #region focus
// Focus is the metric dimension an experiment trains.
type Focus string

const (
	FocusLoad        Focus = "load"
	FocusReadiness   Focus = "readiness"
	FocusConsistency Focus = "consistency"
)

// Title returns the display name of the focus.
func (f Focus) Title() string {
	switch f {
	case FocusLoad:
		return "Load"
	case FocusReadiness:
		return "Readiness"
	case FocusConsistency:
		return "Consistency"
	default:
		return string(f)
	}
}

// #endregion focus

// #region metric-delta
// MetricDelta is a signed change on the three composite metrics.
type MetricDelta struct {
	Load        int `json:"load"`
	Readiness   int `json:"readiness"`
	Consistency int `json:"consistency"`
}

// Add returns the field-wise sum of d and o.
func (d MetricDelta) Add(o MetricDelta) MetricDelta {
	return MetricDelta{
		Load:        d.Load + o.Load,
		Readiness:   d.Readiness + o.Readiness,
		Consistency: d.Consistency + o.Consistency,
	}
}

// IsZero reports whether the delta changes nothing.
func (d MetricDelta) IsZero() bool {
	return d == MetricDelta{}
}

// ApplyTo adds d to m and re-clamps every field to [0, 100].
func (d MetricDelta) ApplyTo(m state.Metrics) state.Metrics {
	return state.ClampMetrics(state.Metrics{
		Load:        m.Load + d.Load,
		Readiness:   m.Readiness + d.Readiness,
		Consistency: m.Consistency + d.Consistency,
	})
}

func (d MetricDelta) String() string {
	return fmt.Sprintf("load=%+d readiness=%+d consistency=%+d", d.Load, d.Readiness, d.Consistency)
}

// #endregion metric-delta

// #region config
// Config holds the scaling constants of the delta engine.
type Config struct {
	IntensityFactor  int // load/readiness change per intensity step
	ConsistencyStep  int // adherence credit per completed session, any direction
	MinIntensity     int
	MaxIntensity     int
	CheckInFocusStep int // focused dimension on a check-in
	CheckInOtherStep int // the two other dimensions on a check-in
	CompletedRange   int // |perceived change| saturates here
}

// DefaultConfig returns the constants the product ships with.
func DefaultConfig() Config {
	return Config{
		IntensityFactor:  2,
		ConsistencyStep:  1,
		MinIntensity:     1,
		MaxIntensity:     5,
		CheckInFocusStep: 2,
		CheckInOtherStep: 1,
		CompletedRange:   5,
	}
}

// #endregion config
