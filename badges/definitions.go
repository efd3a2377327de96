// Package badges holds the badge definition catalog. Definitions are
// static; an earned badge is a definition stamped with an EarnedAt time
// and contextual fields.
package badges

import (
	"time"

	"github.com/cristianccgg/letranido-backend/storage"
)

const (
	ContestWinner  = "contest_winner"
	ContestSecond  = "contest_second"
	ContestThird   = "contest_third"
	Founder        = "founder"
	FirstStory     = "first_story"
	ProlificWriter = "prolific_writer"
)

type Definition struct {
	ID          string
	Name        string
	Description string
	Icon        string
	Rarity      storage.BadgeRarity
	IsSpecial   bool
}

var catalog = map[string]Definition{
	ContestWinner: {
		ID:          ContestWinner,
		Name:        "Contest Winner",
		Description: "Won first place in a monthly writing contest",
		Icon:        "trophy",
		Rarity:      storage.RarityLegendary,
	},
	ContestSecond: {
		ID:          ContestSecond,
		Name:        "Silver Quill",
		Description: "Placed second in a monthly writing contest",
		Icon:        "medal",
		Rarity:      storage.RarityEpic,
	},
	ContestThird: {
		ID:          ContestThird,
		Name:        "Bronze Ink",
		Description: "Placed third in a monthly writing contest",
		Icon:        "award",
		Rarity:      storage.RarityRare,
	},
	Founder: {
		ID:          Founder,
		Name:        "Founder",
		Description: "Joined during the first month after launch",
		Icon:        "sparkles",
		Rarity:      storage.RarityLegendary,
		IsSpecial:   true,
	},
	FirstStory: {
		ID:          FirstStory,
		Name:        "First Story",
		Description: "Published a first story",
		Icon:        "pen",
		Rarity:      storage.RarityCommon,
	},
	ProlificWriter: {
		ID:          ProlificWriter,
		Name:        "Prolific Writer",
		Description: "Published ten or more stories",
		Icon:        "books",
		Rarity:      storage.RarityRare,
	},
}

// PlacementOrder drives the sequential award pass: first place first, so
// an interrupted finalization favors the higher-ranked winners.
var PlacementOrder = []string{ContestWinner, ContestSecond, ContestThird}

func Lookup(id string) (Definition, bool) {
	def, ok := catalog[id]
	return def, ok
}

// Earned materializes a definition into a stored badge value.
func (d Definition) Earned(at time.Time, context map[string]string) storage.Badge {
	return storage.Badge{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Icon:        d.Icon,
		Rarity:      d.Rarity,
		EarnedAt:    at.UTC(),
		IsSpecial:   d.IsSpecial,
		Context:     context,
	}
}
