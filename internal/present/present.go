// Package present converts engine outputs into protobuf Struct values for a
// protobuf-speaking presentation layer.
package present

import (
	"fmt"
	"time"

	"github.com/danielpatrickdp/adaptive-state/wellness-core/internal/appstate"
	"github.com/danielpatrickdp/adaptive-state/wellness-core/internal/recommend"
	"github.com/danielpatrickdp/adaptive-state/wellness-core/internal/signals"
	"github.com/danielpatrickdp/adaptive-state/wellness-core/internal/state"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// #region recommendation

// Recommendation renders rec with its ranked drivers.
func Recommendation(rec recommend.Recommendation, drivers []recommend.DriverImpact) *structpb.Struct {
	list := make([]*structpb.Value, 0, len(drivers))
	for _, d := range drivers {
		list = append(list, structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			"id":     structpb.NewStringValue(d.ID),
			"name":   structpb.NewStringValue(d.Name),
			"detail": structpb.NewStringValue(d.Detail),
			"impact": structpb.NewNumberValue(d.Impact),
		}}))
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"preset_id":            structpb.NewStringValue(rec.PresetID),
		"title":                structpb.NewStringValue(rec.Title),
		"rule_id":              structpb.NewStringValue(rec.RuleID),
		"rationale":            structpb.NewStringValue(rec.Rationale),
		"confidence":           structpb.NewNumberValue(rec.Confidence),
		"projected_load_delta": structpb.NewNumberValue(rec.ProjectedLoadDelta),
		"fallback":             structpb.NewBoolValue(rec.Fallback),
		"drivers":              structpb.NewListValue(&structpb.ListValue{Values: list}),
	}}
}

// Metrics renders the three composite metrics.
func Metrics(m state.Metrics) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"load":        structpb.NewNumberValue(float64(m.Load)),
		"readiness":   structpb.NewNumberValue(float64(m.Readiness)),
		"consistency": structpb.NewNumberValue(float64(m.Consistency)),
	}}
}

// #endregion recommendation

// #region profile

// Profile renders p. Zero timestamps become null.
func Profile(p signals.Profile) (*structpb.Struct, error) {
	syncAt, err := timestamp(p.Sync.LastSyncAt)
	if err != nil {
		return nil, err
	}
	generatedAt, err := timestamp(p.GeneratedAt)
	if err != nil {
		return nil, err
	}

	permFields := make(map[string]*structpb.Value, len(p.Permissions))
	for st, granted := range p.Permissions {
		permFields[string(st)] = structpb.NewBoolValue(granted)
	}

	episodes := make([]*structpb.Value, 0, len(p.Episodes))
	for _, e := range p.Episodes {
		start, err := timestamp(e.StartAt)
		if err != nil {
			return nil, err
		}
		episodes = append(episodes, structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			"id":               structpb.NewStringValue(e.ID),
			"label":            structpb.NewStringValue(e.Label),
			"start_at":         start,
			"duration_minutes": structpb.NewNumberValue(float64(e.DurationMinutes)),
			"peak_intensity":   structpb.NewNumberValue(e.PeakIntensity),
		}}))
	}

	timeline := make([]*structpb.Value, 0, len(p.Timeline))
	for _, s := range p.Timeline {
		start, err := timestamp(s.StartAt)
		if err != nil {
			return nil, err
		}
		end, err := timestamp(s.EndAt)
		if err != nil {
			return nil, err
		}
		timeline = append(timeline, structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			"label":    structpb.NewStringValue(s.Label),
			"start_at": start,
			"end_at":   end,
		}}))
	}

	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"scenario":     structpb.NewStringValue(string(p.Scenario)),
		"day":          structpb.NewNumberValue(float64(p.Day)),
		"connected":    structpb.NewBoolValue(p.Connected),
		"permissions":  structpb.NewStructValue(&structpb.Struct{Fields: permFields}),
		"episodes":     structpb.NewListValue(&structpb.ListValue{Values: episodes}),
		"timeline":     structpb.NewListValue(&structpb.ListValue{Values: timeline}),
		"quality":      structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{"score": structpb.NewNumberValue(p.Quality.Score), "action_hint": structpb.NewStringValue(p.Quality.ActionHint)}}),
		"last_sync_at": syncAt,
		"generated_at": generatedAt,
	}}, nil
}

// #endregion profile

// #region route

// Route renders the app state and its root route.
func Route(s appstate.State, hasSeenIntro bool) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"state":          structpb.NewStringValue(string(s)),
		"route":          structpb.NewStringValue(string(appstate.RootRoute(s, hasSeenIntro))),
		"has_seen_intro": structpb.NewBoolValue(hasSeenIntro),
	}}
}

// #endregion route

// #region encoding

// JSON encodes m with protojson. indent selects multi-line output.
func JSON(m proto.Message, indent bool) ([]byte, error) {
	opts := protojson.MarshalOptions{Multiline: indent, Indent: "  "}
	if !indent {
		opts.Indent = ""
	}
	data, err := opts.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal %T: %w", m, err)
	}
	return data, nil
}

// timestamp renders t in the RFC 3339 form protojson uses for google.protobuf.Timestamp.
// The zero time renders as null.
func timestamp(t time.Time) (*structpb.Value, error) {
	if t.IsZero() {
		return structpb.NewNullValue(), nil
	}
	ts := timestamppb.New(t)
	if err := ts.CheckValid(); err != nil {
		return nil, fmt.Errorf("timestamp %s: %w", t, err)
	}
	return structpb.NewStringValue(ts.AsTime().Format(time.RFC3339Nano)), nil
}

// #endregion encoding
