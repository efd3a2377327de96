package storage

import "time"

type ContestStatus string

const (
	ContestStatusSubmission ContestStatus = "submission"
	ContestStatusVoting     ContestStatus = "voting"
	ContestStatusResults    ContestStatus = "results"
)

type BadgeRarity string

const (
	RarityCommon    BadgeRarity = "common"
	RarityRare      BadgeRarity = "rare"
	RarityEpic      BadgeRarity = "epic"
	RarityLegendary BadgeRarity = "legendary"
)

type Contest struct {
	ID                 string        `dynamodbav:"PK" json:"id"`
	Title              string        `dynamodbav:"Title" json:"title"`
	Month              string        `dynamodbav:"Month" json:"month"`
	Status             ContestStatus `dynamodbav:"ContestStatus" json:"status"`
	SubmissionDeadline time.Time     `dynamodbav:"SubmissionDeadline" json:"submissionDeadline"`
	VotingDeadline     time.Time     `dynamodbav:"VotingDeadline" json:"votingDeadline"`
	FinalizedAt        *time.Time    `dynamodbav:"FinalizedAt,omitempty" json:"finalizedAt,omitempty"`
}

type Story struct {
	ContestID  string    `dynamodbav:"PK" json:"contestId"`
	ID         string    `dynamodbav:"SK" json:"id"`
	UserID     string    `dynamodbav:"UserID" json:"userId"`
	Title      string    `dynamodbav:"Title" json:"title"`
	LikesCount int       `dynamodbav:"LikesCount" json:"likesCount"`
	CreatedAt  time.Time `dynamodbav:"CreatedAt" json:"createdAt"`
	WordCount  int       `dynamodbav:"WordCount" json:"wordCount"`
}

type Badge struct {
	ID          string            `dynamodbav:"ID" json:"id"`
	Name        string            `dynamodbav:"Name" json:"name"`
	Description string            `dynamodbav:"Description" json:"description"`
	Icon        string            `dynamodbav:"Icon" json:"icon"`
	Rarity      BadgeRarity       `dynamodbav:"Rarity" json:"rarity"`
	EarnedAt    time.Time         `dynamodbav:"EarnedAt" json:"earnedAt"`
	IsSpecial   bool              `dynamodbav:"IsSpecial,omitempty" json:"isSpecial,omitempty"`
	Context     map[string]string `dynamodbav:"Context,omitempty" json:"context,omitempty"`
}

// UserProfile carries the ordered badge list directly on the user record.
// BadgeVersion is bumped on every badge-list write and backs the
// conditional update that signals concurrent modifications.
type UserProfile struct {
	UserID       string     `dynamodbav:"PK" json:"userId"`
	DisplayName  string     `dynamodbav:"DisplayName" json:"displayName"`
	Badges       []Badge    `dynamodbav:"Badges" json:"badges"`
	BadgeVersion int        `dynamodbav:"BadgeVersion" json:"-"`
	IsFounder    bool       `dynamodbav:"IsFounder" json:"isFounder"`
	FounderSince *time.Time `dynamodbav:"FounderSince,omitempty" json:"founderSince,omitempty"`
}

// HasBadge reports whether a badge with the given definition id is already
// on the profile. Awarding is a set-union on this id, never an append.
func (p *UserProfile) HasBadge(badgeID string) bool {
	for _, b := range p.Badges {
		if b.ID == badgeID {
			return true
		}
	}
	return false
}
