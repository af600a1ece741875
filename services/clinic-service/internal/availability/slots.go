package availability

import (
	"fmt"
	"time"
)

const tokenLayout = "15:04"

// SlotTokens returns the bookable time tokens for one workday: every
// step-aligned token in [workStart, workEnd) that is not already held.
// Tokens use the "15:04" wall-clock form appointments are stored with.
func SlotTokens(workStart, workEnd string, step time.Duration, booked []string) ([]string, error) {
	if step <= 0 {
		return nil, fmt.Errorf("step must be positive")
	}
	start, err := time.Parse(tokenLayout, workStart)
	if err != nil {
		return nil, fmt.Errorf("invalid workday start %q", workStart)
	}
	end, err := time.Parse(tokenLayout, workEnd)
	if err != nil {
		return nil, fmt.Errorf("invalid workday end %q", workEnd)
	}
	if !end.After(start) {
		return nil, fmt.Errorf("workday end %q not after start %q", workEnd, workStart)
	}

	taken := make(map[string]struct{}, len(booked))
	for _, b := range booked {
		taken[b] = struct{}{}
	}

	var tokens []string
	for t := start; t.Before(end); t = t.Add(step) {
		token := t.Format(tokenLayout)
		if _, ok := taken[token]; ok {
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens, nil
}
