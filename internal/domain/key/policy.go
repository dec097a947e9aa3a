package key

import (
	"fmt"
	"strconv"
	"strings"
)

// Policy decides whether a key with the given number of whole days until
// expiry warrants a notification.
type Policy interface {
	Notifiable(daysUntilExpiry int) bool
	String() string
}

// Band is one inclusive range of days-until-expiry values that trigger a
// notification. Min == Max expresses a single exact day.
type Band struct {
	Min int
	Max int
}

// Contains reports whether days falls inside the band.
func (b Band) Contains(days int) bool {
	return days >= b.Min && days <= b.Max
}

// BandPolicy is a Policy built from one or more bands. Both historical
// behaviors of this job are band policies: the long-lead reminder with an
// urgent window ("14,1-3") and the single 31-day lead window ("0-30").
type BandPolicy struct {
	Bands []Band
}

// ExactOrSoonPolicy notifies at exactly 14 days out, plus an urgent
// reminder 1-3 days before expiry.
func ExactOrSoonPolicy() BandPolicy {
	return BandPolicy{Bands: []Band{{Min: 14, Max: 14}, {Min: 1, Max: 3}}}
}

// WindowPolicy notifies for every key expiring within the next 30 days,
// including the expiry day itself. Already-expired keys are excluded.
func WindowPolicy() BandPolicy {
	return BandPolicy{Bands: []Band{{Min: 0, Max: 30}}}
}

func (p BandPolicy) Notifiable(daysUntilExpiry int) bool {
	for _, b := range p.Bands {
		if b.Contains(daysUntilExpiry) {
			return true
		}
	}
	return false
}

func (p BandPolicy) String() string {
	parts := make([]string, 0, len(p.Bands))
	for _, b := range p.Bands {
		if b.Min == b.Max {
			parts = append(parts, strconv.Itoa(b.Min))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", b.Min, b.Max))
		}
	}
	return strings.Join(parts, ",")
}

// ParsePolicy builds a BandPolicy from its textual form: comma-separated
// bands, each either a single day ("14") or an inclusive range ("1-3").
// This is the inverse of BandPolicy.String.
func ParsePolicy(spec string) (BandPolicy, error) {
	var policy BandPolicy
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		var band Band
		if min, max, found := strings.Cut(part, "-"); found {
			lo, err := strconv.Atoi(strings.TrimSpace(min))
			if err != nil {
				return BandPolicy{}, fmt.Errorf("invalid policy band %q: %w", part, err)
			}
			hi, err := strconv.Atoi(strings.TrimSpace(max))
			if err != nil {
				return BandPolicy{}, fmt.Errorf("invalid policy band %q: %w", part, err)
			}
			if lo > hi {
				return BandPolicy{}, fmt.Errorf("invalid policy band %q: lower bound above upper", part)
			}
			band = Band{Min: lo, Max: hi}
		} else {
			day, err := strconv.Atoi(part)
			if err != nil {
				return BandPolicy{}, fmt.Errorf("invalid policy band %q: %w", part, err)
			}
			band = Band{Min: day, Max: day}
		}
		policy.Bands = append(policy.Bands, band)
	}
	if len(policy.Bands) == 0 {
		return BandPolicy{}, fmt.Errorf("policy spec %q contains no bands", spec)
	}
	return policy, nil
}
