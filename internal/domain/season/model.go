package season

import (
	"fmt"
	"strings"
)

// Season groups games played over a date range.
type Season struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Location       string `json:"location,omitempty"`
	PeriodCount    int    `json:"periodCount,omitempty"`
	PeriodDuration int    `json:"periodDuration,omitempty"`
	StartDate      string `json:"startDate,omitempty"`
	EndDate        string `json:"endDate,omitempty"`
	Archived       bool   `json:"archived,omitempty"`
	Notes          string `json:"notes,omitempty"`
}

func (s Season) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("season id is required")
	}
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("season name is required")
	}
	if s.PeriodCount < 0 || s.PeriodDuration < 0 {
		return fmt.Errorf("season period configuration cannot be negative")
	}

	return nil
}

func Clone(items []Season) []Season {
	if items == nil {
		return nil
	}
	return append([]Season(nil), items...)
}
