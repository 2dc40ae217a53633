package id

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Generator creates identifiers for games, players, seasons and tournaments.
type Generator interface {
	NewID(prefix string) string
}

// TimeRandomGenerator produces "<prefix>_<unix millis>_<8 hex chars>", the
// shape the coaching app has always used for its record ids.
type TimeRandomGenerator struct {
	now func() time.Time
}

func NewTimeRandomGenerator() *TimeRandomGenerator {
	return &TimeRandomGenerator{now: time.Now}
}

func (g *TimeRandomGenerator) NewID(prefix string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "id"
	}

	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return prefix + "_" + strconv.FormatInt(g.now().UnixMilli(), 10) + "_" + suffix
}
