package eval

// #region eval-config
// Config holds thresholds for post-step validation.
type Config struct {
	MinMetric       int     // reject if any metric falls below this
	MaxMetric       int     // reject if any metric exceeds this
	QualityBaseline float64 // warn if the quality score drops below baseline
}

// DefaultConfig returns the shipped thresholds.
func DefaultConfig() Config {
	return Config{
		MinMetric:       0,
		MaxMetric:       100,
		QualityBaseline: 0.5,
	}
}

// #endregion eval-config

// #region eval-check
// Check captures a single validation check result.
type Check struct {
	Name          string  `json:"name"`
	Value         float64 `json:"value"`
	Pass          bool    `json:"pass"`
	Informational bool    `json:"informational,omitempty"` // never fails the run
}

// #endregion eval-check

// #region eval-result
// Result is the output of post-step validation.
type Result struct {
	Passed bool    `json:"passed"`
	Checks []Check `json:"checks"`
	Reason string  `json:"reason"`
}

// Failed returns the blocking checks that did not pass.
func (r Result) Failed() []Check {
	var out []Check
	for _, c := range r.Checks {
		if !c.Pass && !c.Informational {
			out = append(out, c)
		}
	}
	return out
}

// #endregion eval-result
