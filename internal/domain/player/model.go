package player

import (
	"fmt"
	"strings"
)

// Player is one entry of the master roster. The same shape is copied into a
// game's availablePlayers and playersOnField lists.
type Player struct {
	ID                   string  `json:"id"`
	Name                 string  `json:"name"`
	Nickname             string  `json:"nickname,omitempty"`
	JerseyNumber         string  `json:"jerseyNumber,omitempty"`
	IsGoalie             bool    `json:"isGoalie"`
	Notes                string  `json:"notes,omitempty"`
	ReceivedFairPlayCard bool    `json:"receivedFairPlayCard,omitempty"`
	Color                string  `json:"color,omitempty"`
	RelX                 float64 `json:"relX,omitempty"`
	RelY                 float64 `json:"relY,omitempty"`
}

func (p Player) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("player id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("player name is required")
	}

	return nil
}

// Update holds optional changes applied by UpdatePlayerInRoster.
type Update struct {
	Name                 *string
	Nickname             *string
	JerseyNumber         *string
	IsGoalie             *bool
	Notes                *string
	ReceivedFairPlayCard *bool
	Color                *string
}

func (p Player) Apply(u Update) Player {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Nickname != nil {
		p.Nickname = *u.Nickname
	}
	if u.JerseyNumber != nil {
		p.JerseyNumber = *u.JerseyNumber
	}
	if u.IsGoalie != nil {
		p.IsGoalie = *u.IsGoalie
	}
	if u.Notes != nil {
		p.Notes = *u.Notes
	}
	if u.ReceivedFairPlayCard != nil {
		p.ReceivedFairPlayCard = *u.ReceivedFairPlayCard
	}
	if u.Color != nil {
		p.Color = *u.Color
	}
	return p
}

// IndexOf returns the position of id in players, or -1.
func IndexOf(players []Player, id string) int {
	for i := range players {
		if players[i].ID == id {
			return i
		}
	}
	return -1
}

func Clone(players []Player) []Player {
	if players == nil {
		return nil
	}
	return append([]Player(nil), players...)
}
