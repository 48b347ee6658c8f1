package signals

import (
	"fmt"
	"math"
	"time"

	"github.com/danielpatrickdp/adaptive-state/wellness-core/internal/state"
	"github.com/google/uuid"
)

// episodeNamespace scopes deterministic episode IDs.
var episodeNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("wellness-core/signals/episode"))

// #region engine

// Engine synthesizes demo signal profiles. It holds only its config and is safe for concurrent use.
type Engine struct {
	quality QualityConfig
}

// NewEngine creates an Engine with the given quality weights.
func NewEngine(quality QualityConfig) *Engine {
	return &Engine{quality: quality}
}

var defaultEngine = NewEngine(DefaultQualityConfig())

// Seed uses the default engine.
func Seed(scenario state.Scenario, day int, now time.Time) Profile {
	return defaultEngine.Seed(scenario, day, now)
}

// Refresh uses the default engine.
func Refresh(existing Profile, in RefreshInput) Profile {
	return defaultEngine.Refresh(existing, in)
}

// ClearDerived uses the default engine.
func ClearDerived(existing Profile, now time.Time) Profile {
	return defaultEngine.ClearDerived(existing, now)
}

// #endregion engine

// #region seed

// Seed builds the initial profile for a scenario day. Everything except timestamps is a pure
// function of (scenario, day); now only anchors the day and the sync time.
func (e *Engine) Seed(scenario state.Scenario, day int, now time.Time) Profile {
	day = max(day, 0)
	permissions := make(map[SignalType]bool, len(KnownSignalTypes()))
	for _, st := range KnownSignalTypes() {
		permissions[st] = true
	}

	p := Profile{
		Scenario:    scenario,
		Day:         day,
		Connected:   true,
		Permissions: permissions,
		Episodes:    generateEpisodes(scenario, day, dayStart(now), 1),
		Timeline:    generateTimeline(scenario, dayStart(now)),
		Sync:        Sync{LastSyncAt: now},
		GeneratedAt: now,
	}
	score := e.baseScore(p)
	p.Quality = Quality{
		Score:      score,
		ActionHint: e.actionHint(p, score, state.Definition(scenario).Baseline, -1),
	}
	return p
}

// #endregion seed

// #region refresh

// Refresh re-derives episodes and timeline for in.Day with peaks scaled by current load against
// the scenario baseline, keeps permissions and connection from existing, and folds sessions and
// adherence into the quality score. A disconnected profile gets no derived data.
func (e *Engine) Refresh(existing Profile, in RefreshInput) Profile {
	day := max(in.Day, 0)
	p := Profile{
		Scenario:    in.Scenario,
		Day:         day,
		Connected:   existing.Connected,
		Permissions: copyPermissions(existing.Permissions),
		Episodes:    []Episode{},
		Timeline:    []Segment{},
		Sync:        existing.Sync,
		GeneratedAt: in.Now,
	}
	if p.Connected {
		start := dayStart(in.Now)
		baseline := state.Definition(in.Scenario).Baseline
		p.Episodes = generateEpisodes(in.Scenario, day, start, loadFactor(in.Metrics, baseline))
		p.Timeline = generateTimeline(in.Scenario, start)
	}
	if in.UpdateSyncTimestamp {
		p.Sync.LastSyncAt = in.Now
	}

	score := math.Min(1, e.baseScore(p)+e.engagementBonus(in.CompletedSessionCount, in.ActiveExperimentAdherence))
	if !p.Connected {
		score = e.baseScore(p)
	}
	p.Quality = Quality{
		Score:      round3(score),
		ActionHint: e.actionHint(p, score, in.Metrics, in.ActiveExperimentAdherence),
	}
	return p
}

// #endregion refresh

// #region clear

// ClearDerived drops episodes and timeline. Permissions and connection are kept, and the
// quality score ends strictly below the input score, except that it is floored at 0: clearing
// a profile already at 0 leaves it at 0.
func (e *Engine) ClearDerived(existing Profile, now time.Time) Profile {
	p := existing
	p.Permissions = copyPermissions(existing.Permissions)
	p.Episodes = []Episode{}
	p.Timeline = []Segment{}
	p.GeneratedAt = now

	score := e.baseScore(p)
	if score > existing.Quality.Score-e.quality.ClearPenalty {
		score = existing.Quality.Score - e.quality.ClearPenalty
	}
	score = round3(math.Max(0, score))
	p.Quality = Quality{
		Score:      score,
		ActionHint: "Derived insights were cleared. Sync a full day of data to rebuild your timeline.",
	}
	return p
}

// #endregion clear

// #region quality

// baseScore weighs permission, timeline and episode coverage. Non-decreasing in each.
func (e *Engine) baseScore(p Profile) float64 {
	q := e.quality
	known := len(KnownSignalTypes())

	var score float64
	if p.Connected {
		score += q.ConnectedFloor
	}
	score += q.PermissionWeight * ratio(min(p.GrantedCount(), known), known)
	score += q.TimelineWeight * coverage(p.Timeline)
	score += q.EpisodeWeight * ratio(min(len(p.Episodes), q.ExpectedEpisodes), q.ExpectedEpisodes)
	return round3(math.Min(1, score))
}

func (e *Engine) engagementBonus(sessions, adherence int) float64 {
	q := e.quality
	bonus := q.SessionBonus * float64(min(max(sessions, 0), q.MaxSessions))
	if adherence > 0 {
		bonus += q.AdherenceWeight * float64(min(adherence, 100)) / 100
	}
	return bonus
}

// actionHint picks the first applicable nudge. It never returns an empty string.
func (e *Engine) actionHint(p Profile, score float64, m state.Metrics, adherence int) string {
	switch {
	case !p.Connected:
		return "Reconnect your wearable to resume syncing."
	case p.GrantedCount() < len(KnownSignalTypes()):
		return "Grant access to all health signals for a complete picture."
	case len(p.Episodes) == 0 || len(p.Timeline) == 0:
		return "Sync a full day of data to rebuild your timeline."
	case state.ClampMetric(m.Load) >= 80:
		return "Load is elevated. A short Calm Now session before your next sync will help."
	case adherence >= 0 && adherence < 50:
		return fmt.Sprintf("Experiment adherence is %d%%. Check in today to keep it above 50%%.", adherence)
	case score < e.quality.GoodScore:
		return "Wear your device overnight to improve data quality."
	default:
		return "Data quality is good. Keep your current routine."
	}
}

// #endregion quality

// #region generation

func generateEpisodes(scenario state.Scenario, day int, start time.Time, factor float64) []Episode {
	t := tableFor(scenario)
	episodes := make([]Episode, 0, len(t.Episodes))
	for i, tmpl := range t.Episodes {
		if tmpl.FromDay > day {
			continue
		}
		peak := clampUnit((tmpl.Peak + tmpl.PeakPerDay*float64(day)) * factor)
		episodes = append(episodes, Episode{
			ID:              episodeID(scenario, day, i),
			Label:           tmpl.Label,
			StartAt:         atOffset(start, tmpl.OffsetMinutes),
			DurationMinutes: tmpl.DurationMinutes,
			PeakIntensity:   round3(peak),
		})
	}
	return episodes
}

// generateTimeline lays segments on wall-clock offsets from start, so the last segment ends at
// the next local midnight even when the day is 23 or 25 hours long. A segment swallowed by a
// DST gap is dropped.
func generateTimeline(scenario state.Scenario, start time.Time) []Segment {
	t := tableFor(scenario)
	segments := make([]Segment, 0, len(t.Timeline))
	cursor, offset := start, 0
	for _, tmpl := range t.Timeline {
		offset += tmpl.Minutes
		end := atOffset(start, offset)
		if !end.After(cursor) {
			continue
		}
		segments = append(segments, Segment{Label: tmpl.Label, StartAt: cursor, EndAt: end})
		cursor = end
	}
	return segments
}

func episodeID(scenario state.Scenario, day, index int) string {
	return uuid.NewSHA1(episodeNamespace, []byte(fmt.Sprintf("%s/%d/%d", scenario, day, index))).String()
}

// loadFactor scales episode peaks by current load relative to the baseline, within [0.5, 1.5].
func loadFactor(m state.Metrics, baseline state.Metrics) float64 {
	if baseline.Load <= 0 {
		return 1
	}
	f := 0.5 + 0.5*float64(state.ClampMetric(m.Load))/float64(baseline.Load)
	return math.Max(0.5, math.Min(1.5, f))
}

// #endregion generation

// #region helpers

// DayBounds returns local midnight of t's calendar day and the following midnight.
func DayBounds(t time.Time) (start, end time.Time) {
	start = dayStart(t)
	return start, start.AddDate(0, 0, 1)
}

func dayStart(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

// atOffset is the wall-clock time minutes after midnight on start's day.
func atOffset(start time.Time, minutes int) time.Time {
	y, m, d := start.Date()
	return time.Date(y, m, d, 0, minutes, 0, 0, start.Location())
}

// coverage is the fraction of the timeline's calendar day covered by its segments.
func coverage(timeline []Segment) float64 {
	if len(timeline) == 0 {
		return 0
	}
	start, end := DayBounds(timeline[0].StartAt)
	var total time.Duration
	for _, s := range timeline {
		total += s.EndAt.Sub(s.StartAt)
	}
	return math.Min(1, float64(total)/float64(end.Sub(start)))
}

func copyPermissions(in map[SignalType]bool) map[SignalType]bool {
	out := make(map[SignalType]bool, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func ratio(n, d int) float64 {
	if d <= 0 {
		return 0
	}
	return float64(n) / float64(d)
}

func clampUnit(v float64) float64 {
	return math.Max(0.05, math.Min(1, v))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// #endregion helpers
