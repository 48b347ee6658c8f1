package signals

import (
	"time"

	"github.com/danielpatrickdp/adaptive-state/wellness-core/internal/state"
)

// #region signal-types

// SignalType is a health data stream the app can be granted access to.
type SignalType string

const (
	HeartRate            SignalType = "heart_rate"
	HeartRateVariability SignalType = "heart_rate_variability"
	RestingHeartRate     SignalType = "resting_heart_rate"
	SleepAnalysis        SignalType = "sleep_analysis"
	StepCount            SignalType = "step_count"
	MindfulMinutes       SignalType = "mindful_minutes"
)

// KnownSignalTypes lists every signal type in a stable order.
func KnownSignalTypes() []SignalType {
	return []SignalType{
		HeartRate,
		HeartRateVariability,
		RestingHeartRate,
		SleepAnalysis,
		StepCount,
		MindfulMinutes,
	}
}

// #endregion signal-types

// #region profile

// Episode is one detected stress episode.
type Episode struct {
	ID              string    `json:"id"`
	Label           string    `json:"label"`
	StartAt         time.Time `json:"start_at"`
	DurationMinutes int       `json:"duration_minutes"`
	PeakIntensity   float64   `json:"peak_intensity"` // 0-1
}

// EndAt is the exclusive end of the episode.
func (e Episode) EndAt() time.Time {
	return e.StartAt.Add(time.Duration(e.DurationMinutes) * time.Minute)
}

// Segment is a labeled interval of the day timeline.
type Segment struct {
	Label   string    `json:"label"`
	StartAt time.Time `json:"start_at"`
	EndAt   time.Time `json:"end_at"`
}

// Quality summarizes how trustworthy the derived data is.
type Quality struct {
	Score      float64 `json:"score"` // 0-1
	ActionHint string  `json:"action_hint"`
}

// Sync records the last successful device sync.
type Sync struct {
	LastSyncAt time.Time `json:"last_sync_at"`
}

// Profile is the synthesized signal picture for one scenario day.
type Profile struct {
	Scenario    state.Scenario      `json:"scenario"`
	Day         int                 `json:"day"`
	Connected   bool                `json:"connected"`
	Permissions map[SignalType]bool `json:"permissions"`
	Episodes    []Episode           `json:"episodes"`
	Timeline    []Segment           `json:"timeline"`
	Quality     Quality             `json:"quality"`
	Sync        Sync                `json:"sync"`
	GeneratedAt time.Time           `json:"generated_at"`
}

// GrantedCount returns the number of granted signal types.
func (p Profile) GrantedCount() int {
	n := 0
	for _, granted := range p.Permissions {
		if granted {
			n++
		}
	}
	return n
}

// #endregion profile

// #region refresh-input

// RefreshInput bundles the live facts folded into a refreshed profile.
type RefreshInput struct {
	Scenario              state.Scenario
	Metrics               state.Metrics
	Day                   int
	CompletedSessionCount int
	// ActiveExperimentAdherence is 0-100, or negative when no experiment is running.
	ActiveExperimentAdherence int
	Now                       time.Time
	UpdateSyncTimestamp       bool
}

// #endregion refresh-input

// #region quality-config

// QualityConfig holds the weights of the data-quality score.
type QualityConfig struct {
	ConnectedFloor   float64 // base score while a device is connected
	PermissionWeight float64
	TimelineWeight   float64
	EpisodeWeight    float64
	ExpectedEpisodes int     // episode coverage saturates here
	SessionBonus     float64 // per completed session
	MaxSessions      int     // session bonus saturates here
	AdherenceWeight  float64 // scaled by adherence/100
	ClearPenalty     float64 // minimum drop applied by ClearDerived
	GoodScore        float64 // hints stop nagging at or above this score
}

// DefaultQualityConfig returns the shipped weights.
func DefaultQualityConfig() QualityConfig {
	return QualityConfig{
		ConnectedFloor:   0.1,
		PermissionWeight: 0.3,
		TimelineWeight:   0.3,
		EpisodeWeight:    0.3,
		ExpectedEpisodes: 3,
		SessionBonus:     0.02,
		MaxSessions:      3,
		AdherenceWeight:  0.04,
		ClearPenalty:     0.05,
		GoodScore:        0.85,
	}
}

// #endregion quality-config
