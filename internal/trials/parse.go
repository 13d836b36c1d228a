package trials

import (
	"strconv"
	"strings"
)

// ParseAge extracts an integer age from the registry's free-form age
// strings ("18 Years", "65+", "N/A"). It returns 0 when no digits are
// present, which callers must treat as "no constraint known", not age
// zero.
func ParseAge(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "Unknown") {
		return 0
	}
	start := -1
	for i, r := range raw {
		if r >= '0' && r <= '9' {
			start = i
			break
		}
	}
	if start < 0 {
		return 0
	}
	end := start
	for end < len(raw) && raw[end] >= '0' && raw[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(raw[start:end])
	if err != nil {
		return 0
	}
	return n
}

// AgeBounds resolves an eligibility block to comparable integer bounds.
// An absent maximum defaults to 100; a present but unparseable one falls
// through ParseAge to 0, matching the registry's sentinel handling.
func AgeBounds(e Eligibility) (min, max int) {
	min = ParseAge(e.MinimumAge)
	if strings.TrimSpace(e.MaximumAge) == "" {
		return min, 100
	}
	return min, ParseAge(e.MaximumAge)
}
