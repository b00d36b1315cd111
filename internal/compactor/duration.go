package compactor

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Duration is a human-friendly duration used for config values like
// partition_timeout. time.ParseDuration has no concept of weeks, and
// printing a time.Duration the standard way produces "338h0m0s" instead
// of the "2w2h" style operators write in config files — Duration adds
// the missing "w" unit and normalizes formatting to the largest units
// that divide evenly, generalizing common.ParseDuration (which is a
// thin wrapper over time.ParseDuration with no week support).
type Duration time.Duration

const week = 7 * 24 * time.Hour

// ParseHumanDuration parses a string like "3w2h15ms" into a Duration.
// Units are w(eek), h(our), m(inute), s(econd), ms, us, ns — the same
// suffixes time.ParseDuration accepts, plus "w". An empty string or "0"
// parses to a zero Duration.
func ParseHumanDuration(s string) (Duration, error) {
	if s == "0" || s == "" {
		return 0, nil
	}

	var total time.Duration
	rest := s
	for len(rest) > 0 {
		i := 0
		for i < len(rest) && (rest[i] == '-' || rest[i] == '+' || rest[i] == '.' || (rest[i] >= '0' && rest[i] <= '9')) {
			i++
		}
		if i == 0 {
			return 0, fmt.Errorf("invalid duration %q: expected a number", s)
		}
		numPart := rest[i:]
		unitEnd := 0
		for unitEnd < len(numPart) && !(numPart[unitEnd] >= '0' && numPart[unitEnd] <= '9') && numPart[unitEnd] != '.' {
			unitEnd++
		}

		value, err := strconv.ParseFloat(rest[:i], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", s, err)
		}
		unit := numPart[:unitEnd]

		var unitDuration time.Duration
		switch unit {
		case "w":
			unitDuration = week
		case "h":
			unitDuration = time.Hour
		case "m":
			unitDuration = time.Minute
		case "s":
			unitDuration = time.Second
		case "ms":
			unitDuration = time.Millisecond
		case "us", "µs":
			unitDuration = time.Microsecond
		case "ns":
			unitDuration = time.Nanosecond
		default:
			return 0, fmt.Errorf("invalid duration %q: unknown unit %q", s, unit)
		}

		total += time.Duration(value * float64(unitDuration))
		rest = numPart[unitEnd:]
	}

	return Duration(total), nil
}

// String renders the duration using the largest units that divide it
// evenly, e.g. 3w2h15ms, matching what ParseHumanDuration accepts back.
func (d Duration) String() string {
	if d == 0 {
		return "0s"
	}

	remaining := time.Duration(d)
	negative := remaining < 0
	if negative {
		remaining = -remaining
	}

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}

	units := []struct {
		suffix string
		size   time.Duration
	}{
		{"w", week},
		{"h", time.Hour},
		{"m", time.Minute},
		{"s", time.Second},
		{"ms", time.Millisecond},
		{"us", time.Microsecond},
		{"ns", time.Nanosecond},
	}

	for _, u := range units {
		if remaining < u.size {
			continue
		}
		count := remaining / u.size
		remaining -= count * u.size
		fmt.Fprintf(&b, "%d%s", count, u.suffix)
	}

	return b.String()
}

// Std returns the standard library time.Duration equivalent.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}
