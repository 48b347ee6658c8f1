package signals

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidProfile is wrapped by every Validate failure.
var ErrInvalidProfile = errors.New("invalid signal profile")

// Validate checks the ordering and range invariants of p.
func (p Profile) Validate() error {
	for i := 1; i < len(p.Episodes); i++ {
		prev, cur := p.Episodes[i-1], p.Episodes[i]
		if cur.StartAt.Before(prev.EndAt()) {
			return fmt.Errorf("%w: episode %d overlaps episode %d", ErrInvalidProfile, i, i-1)
		}
	}
	for i, e := range p.Episodes {
		if e.DurationMinutes <= 0 {
			return fmt.Errorf("%w: episode %d has no duration", ErrInvalidProfile, i)
		}
		if e.PeakIntensity < 0 || e.PeakIntensity > 1 {
			return fmt.Errorf("%w: episode %d peak %.3f out of [0, 1]", ErrInvalidProfile, i, e.PeakIntensity)
		}
	}
	for i, s := range p.Timeline {
		if !s.EndAt.After(s.StartAt) {
			return fmt.Errorf("%w: segment %d is empty", ErrInvalidProfile, i)
		}
		if i > 0 && !s.StartAt.Equal(p.Timeline[i-1].EndAt) {
			return fmt.Errorf("%w: segment %d is not contiguous", ErrInvalidProfile, i)
		}
	}
	if p.Quality.Score < 0 || p.Quality.Score > 1 {
		return fmt.Errorf("%w: quality score %.3f out of [0, 1]", ErrInvalidProfile, p.Quality.Score)
	}
	if strings.TrimSpace(p.Quality.ActionHint) == "" {
		return fmt.Errorf("%w: empty action hint", ErrInvalidProfile)
	}
	return nil
}
