package contest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/cristianccgg/letranido-backend/awards"
	"github.com/cristianccgg/letranido-backend/badges"
	"github.com/cristianccgg/letranido-backend/logging"
	"github.com/cristianccgg/letranido-backend/retry"
	"github.com/cristianccgg/letranido-backend/storage"
)

const (
	// DefaultAwardDelay spaces out the sequential placement awards so the
	// three writes never contend on the store at once and notifications
	// surface in rank order.
	DefaultAwardDelay = 500 * time.Millisecond

	// PlaceholderAuthor stands in when the display name lookup misses.
	PlaceholderAuthor = "Anonymous Writer"

	runIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// Awarder is the badge award path the finalizer drives.
type Awarder interface {
	Award(ctx context.Context, badgeID, userID string, extra map[string]string) (*awards.Result, error)
}

// Notifier receives every newly awarded badge, one by one, as soon as the
// award is durable.
type Notifier interface {
	Enqueue(badge storage.Badge) bool
}

type Winner struct {
	Story      *storage.Story `json:"story"`
	AuthorName string         `json:"authorName"`
}

type Winners struct {
	First  *Winner `json:"first,omitempty"`
	Second *Winner `json:"second,omitempty"`
	Third  *Winner `json:"third,omitempty"`
}

// AwardedBadge records one placement award attempt. A failed attempt
// carries the error text so an operator can replay it through the manual
// award path.
type AwardedBadge struct {
	BadgeID       string         `json:"badgeId"`
	UserID        string         `json:"userId"`
	StoryTitle    string         `json:"storyTitle"`
	Badge         *storage.Badge `json:"badge,omitempty"`
	AlreadyExists bool           `json:"alreadyExists,omitempty"`
	Error         string         `json:"error,omitempty"`
}

// FinalizationResult is a value object returned to the caller; it is not
// persisted beyond the finalizer's last-result cache.
type FinalizationResult struct {
	Success           bool             `json:"success"`
	Error             string           `json:"error,omitempty"`
	Contest           *storage.Contest `json:"contest,omitempty"`
	Winners           Winners          `json:"winners"`
	BadgesAwarded     []AwardedBadge   `json:"badgesAwarded"`
	TotalParticipants int              `json:"totalParticipants"`
	FinalizedAt       time.Time        `json:"finalizedAt,omitempty"`
	RunID             string           `json:"runId,omitempty"`
}

type Finalizer struct {
	contests storage.ContestStorage
	stories  storage.StoryStorage
	users    storage.UserStorage
	awarder  Awarder
	notifier Notifier

	awardDelay time.Duration
	now        func() time.Time

	mu         sync.Mutex
	lastResult *FinalizationResult
}

func NewFinalizer(contests storage.ContestStorage, stories storage.StoryStorage, users storage.UserStorage, awarder Awarder, notifier Notifier) *Finalizer {
	return &Finalizer{
		contests:   contests,
		stories:    stories,
		users:      users,
		awarder:    awarder,
		notifier:   notifier,
		awardDelay: DefaultAwardDelay,
		now:        time.Now,
	}
}

// Finalize transitions the contest into results and awards the placement
// badges. The call is idempotent at the contest level: a contest already
// in results is refused without side effects. Individual award failures
// are recorded in the result but never fail the finalization itself.
func (f *Finalizer) Finalize(ctx context.Context, contestID string) (*FinalizationResult, error) {
	runID := newRunID()
	logging.Log.Infof("FINALIZE[%s]: starting for contest %s", runID, contestID)

	contest, err := f.contests.Get(ctx, contestID)
	if err != nil {
		return nil, err
	}
	if contest.Status == storage.ContestStatusResults {
		logging.Log.Warnf("FINALIZE[%s]: contest %s already finalized", runID, contestID)
		return f.cache(&FinalizationResult{Success: false, Error: "already finalized", Contest: contest, RunID: runID}), nil
	}

	ranked, names, err := f.loadRanking(ctx, contest)
	if err != nil {
		return nil, err
	}
	if len(ranked) == 0 {
		logging.Log.Warnf("FINALIZE[%s]: contest %s has no participants", runID, contestID)
		return f.cache(&FinalizationResult{Success: false, Error: "no participants", Contest: contest, RunID: runID}), nil
	}

	// The status flip must land before any badge is issued: a contest
	// stuck in results with missing badges is recoverable by replaying
	// the awards, badges on a non-results contest are not.
	finalizedAt := f.now().UTC()
	if err := f.contests.TransitionToResults(ctx, contestID, finalizedAt); err != nil {
		if errors.Is(err, storage.ErrAlreadyFinalized) {
			logging.Log.Warnf("FINALIZE[%s]: lost the results transition race for contest %s", runID, contestID)
			return f.cache(&FinalizationResult{Success: false, Error: "already finalized", Contest: contest, RunID: runID}), nil
		}
		logging.Log.Errorf("FINALIZE[%s]: results transition failed for contest %s: %v", runID, contestID, err)
		return nil, err
	}
	contest.Status = storage.ContestStatusResults
	contest.FinalizedAt = &finalizedAt

	result := &FinalizationResult{
		Success:           true,
		Contest:           contest,
		Winners:           buildWinners(ranked, names),
		TotalParticipants: len(ranked),
		FinalizedAt:       finalizedAt,
		RunID:             runID,
	}

	// Strictly 1st then 2nd then 3rd: if the process dies mid-pass the
	// higher-ranked winner already has the badge.
	for pos, badgeID := range badges.PlacementOrder {
		if pos >= len(ranked) {
			break
		}
		if pos > 0 {
			if err := retry.Sleep(ctx, f.awardDelay); err != nil {
				logging.Log.Errorf("FINALIZE[%s]: interrupted between awards: %v", runID, err)
				return f.cache(result), nil
			}
		}

		story := ranked[pos]
		outcome := AwardedBadge{BadgeID: badgeID, UserID: story.UserID, StoryTitle: story.Title}

		res, err := f.awarder.Award(ctx, badgeID, story.UserID, map[string]string{
			"contest_id":    contest.ID,
			"contest_title": contest.Title,
			"month":         contest.Month,
			"story_title":   story.Title,
			"placement":     fmt.Sprintf("%d", pos+1),
		})
		if err != nil {
			logging.Log.Errorf("FINALIZE[%s]: award %s failed for user %s in contest %s: %v", runID, badgeID, story.UserID, contestID, err)
			outcome.Error = err.Error()
			result.BadgesAwarded = append(result.BadgesAwarded, outcome)
			continue
		}

		outcome.Badge = res.Badge
		outcome.AlreadyExists = res.AlreadyExists
		result.BadgesAwarded = append(result.BadgesAwarded, outcome)

		if res.IsNew && f.notifier != nil {
			f.notifier.Enqueue(*res.Badge)
		}
	}

	logging.Log.Infof("FINALIZE[%s]: contest %s finalized with %d participants, %d award outcomes", runID, contestID, result.TotalParticipants, len(result.BadgesAwarded))
	return f.cache(result), nil
}

// PreviewWinners runs the read-only part of Finalize. Given unchanged
// data, the ranking it returns is exactly the one a later Finalize will
// commit to.
func (f *Finalizer) PreviewWinners(ctx context.Context, contestID string) ([]*storage.Story, map[string]string, error) {
	contest, err := f.contests.Get(ctx, contestID)
	if err != nil {
		return nil, nil, err
	}

	ranked, names, err := f.loadRanking(ctx, contest)
	if err != nil {
		return nil, nil, err
	}
	return ranked, names, nil
}

// LastResult returns the most recent finalization outcome, or nil.
func (f *Finalizer) LastResult() *FinalizationResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastResult
}

func (f *Finalizer) loadRanking(ctx context.Context, contest *storage.Contest) ([]*storage.Story, map[string]string, error) {
	stories, err := f.stories.GetByContest(ctx, contest.ID)
	if err != nil {
		return nil, nil, err
	}
	ranked := Rank(stories)

	userIDs := make([]string, 0, len(ranked))
	for _, s := range ranked {
		userIDs = append(userIDs, s.UserID)
	}

	// Best effort: a degraded lookup falls back to placeholders, it never
	// fails the finalization.
	names, err := f.users.LookupDisplayNames(ctx, userIDs)
	if err != nil {
		logging.Log.Warnf("FINALIZE: display name lookup degraded for contest %s: %v", contest.ID, err)
		names = map[string]string{}
	}
	return ranked, names, nil
}

func (f *Finalizer) cache(r *FinalizationResult) *FinalizationResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastResult = r
	return r
}

func buildWinners(ranked []*storage.Story, names map[string]string) Winners {
	var w Winners
	slots := []**Winner{&w.First, &w.Second, &w.Third}
	for i, slot := range slots {
		if i >= len(ranked) {
			break
		}
		*slot = &Winner{Story: ranked[i], AuthorName: AuthorName(names, ranked[i].UserID)}
	}
	return w
}

// AuthorName resolves a display name, defaulting to the placeholder.
func AuthorName(names map[string]string, userID string) string {
	if name, ok := names[userID]; ok && name != "" {
		return name
	}
	return PlaceholderAuthor
}

func newRunID() string {
	id, err := gonanoid.Generate(runIDAlphabet, 8)
	if err != nil {
		logging.Log.Errorf("FINALIZE: failed to generate run id: %v", err)
		return "unknown"
	}
	return id
}
