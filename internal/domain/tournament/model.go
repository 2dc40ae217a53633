package tournament

import (
	"fmt"
	"strings"
)

// Tournament is a named competition a game can belong to.
type Tournament struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Location       string `json:"location,omitempty"`
	Level          string `json:"level,omitempty"`
	PeriodCount    int    `json:"periodCount,omitempty"`
	PeriodDuration int    `json:"periodDuration,omitempty"`
	StartDate      string `json:"startDate,omitempty"`
	EndDate        string `json:"endDate,omitempty"`
	Archived       bool   `json:"archived,omitempty"`
	Notes          string `json:"notes,omitempty"`
}

func (t Tournament) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("tournament id is required")
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("tournament name is required")
	}
	if t.PeriodCount < 0 || t.PeriodDuration < 0 {
		return fmt.Errorf("tournament period configuration cannot be negative")
	}

	return nil
}

func Clone(items []Tournament) []Tournament {
	if items == nil {
		return nil
	}
	return append([]Tournament(nil), items...)
}
