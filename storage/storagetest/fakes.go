// Package storagetest provides in-memory fakes of the storage interfaces
// so the engine can be tested without a live table.
package storagetest

import (
	"context"
	"sync"
	"time"

	"github.com/cristianccgg/letranido-backend/storage"
)

type FakeContestStorage struct {
	mu       sync.Mutex
	Contests map[string]*storage.Contest

	// TransitionErr, when set, fails the next results transition.
	TransitionErr error
	Transitions   int
}

func NewFakeContestStorage() *FakeContestStorage {
	return &FakeContestStorage{Contests: make(map[string]*storage.Contest)}
}

func (f *FakeContestStorage) Get(_ context.Context, id string) (*storage.Contest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.Contests[id]
	if !ok {
		return nil, storage.ErrContestNotFound
	}
	clone := *c
	return &clone, nil
}

func (f *FakeContestStorage) GetAll(_ context.Context) ([]*storage.Contest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*storage.Contest, 0, len(f.Contests))
	for _, c := range f.Contests {
		clone := *c
		out = append(out, &clone)
	}
	return out, nil
}

func (f *FakeContestStorage) Put(_ context.Context, contest *storage.Contest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *contest
	f.Contests[contest.ID] = &clone
	return nil
}

func (f *FakeContestStorage) TransitionToResults(_ context.Context, id string, finalizedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.TransitionErr != nil {
		err := f.TransitionErr
		f.TransitionErr = nil
		return err
	}
	c, ok := f.Contests[id]
	if !ok || c.Status == storage.ContestStatusResults {
		return storage.ErrAlreadyFinalized
	}
	c.Status = storage.ContestStatusResults
	at := finalizedAt.UTC()
	c.FinalizedAt = &at
	f.Transitions++
	return nil
}

type FakeStoryStorage struct {
	mu      sync.Mutex
	Stories map[string][]*storage.Story
}

func NewFakeStoryStorage() *FakeStoryStorage {
	return &FakeStoryStorage{Stories: make(map[string][]*storage.Story)}
}

func (f *FakeStoryStorage) GetByContest(_ context.Context, contestID string) ([]*storage.Story, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*storage.Story, 0, len(f.Stories[contestID]))
	for _, s := range f.Stories[contestID] {
		clone := *s
		out = append(out, &clone)
	}
	return out, nil
}

func (f *FakeStoryStorage) Create(_ context.Context, story *storage.Story) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *story
	f.Stories[story.ContestID] = append(f.Stories[story.ContestID], &clone)
	return nil
}

type FakeUserStorage struct {
	mu    sync.Mutex
	Users map[string]*storage.UserProfile

	// FailWrites makes the next n UpdateBadges calls report zero rows
	// affected, simulating lost optimistic-concurrency races.
	FailWrites int
	// ConflictHook runs after a FailWrites-induced conflict, with the
	// lock held: mutate Users directly, do not call back into the fake.
	ConflictHook func()
	// WriteErr, when set, fails the next UpdateBadges call outright.
	WriteErr error
	// DropWrites silently discards writes while still reporting success,
	// simulating a store that acknowledges before durability.
	DropWrites bool
	// LookupErr fails LookupDisplayNames.
	LookupErr error
	// FounderErr fails the next SetFounder call.
	FounderErr error

	UpdateCalls int
}

func NewFakeUserStorage() *FakeUserStorage {
	return &FakeUserStorage{Users: make(map[string]*storage.UserProfile)}
}

func (f *FakeUserStorage) Get(_ context.Context, userID string) (*storage.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.Users[userID]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	clone := *u
	clone.Badges = append([]storage.Badge(nil), u.Badges...)
	return &clone, nil
}

func (f *FakeUserStorage) Put(_ context.Context, profile *storage.UserProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *profile
	clone.Badges = append([]storage.Badge(nil), profile.Badges...)
	f.Users[profile.UserID] = &clone
	return nil
}

func (f *FakeUserStorage) GetBadges(ctx context.Context, userID string) ([]storage.Badge, error) {
	u, err := f.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.Badges, nil
}

func (f *FakeUserStorage) UpdateBadges(_ context.Context, userID string, badges []storage.Badge, expectedVersion int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.UpdateCalls++
	if f.WriteErr != nil {
		err := f.WriteErr
		f.WriteErr = nil
		return 0, err
	}
	if f.FailWrites > 0 {
		f.FailWrites--
		if f.ConflictHook != nil {
			f.ConflictHook()
		}
		return 0, nil
	}
	u, ok := f.Users[userID]
	if !ok {
		return 0, nil
	}
	if u.BadgeVersion != expectedVersion {
		return 0, nil
	}
	if f.DropWrites {
		return 1, nil
	}
	u.Badges = append([]storage.Badge(nil), badges...)
	u.BadgeVersion++
	return 1, nil
}

func (f *FakeUserStorage) SetFounder(_ context.Context, userID string, since time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FounderErr != nil {
		err := f.FounderErr
		f.FounderErr = nil
		return err
	}
	u, ok := f.Users[userID]
	if !ok {
		return storage.ErrUserNotFound
	}
	u.IsFounder = true
	at := since.UTC()
	u.FounderSince = &at
	return nil
}

func (f *FakeUserStorage) LookupDisplayNames(_ context.Context, userIDs []string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.LookupErr != nil {
		err := f.LookupErr
		f.LookupErr = nil
		return nil, err
	}
	names := make(map[string]string, len(userIDs))
	for _, id := range userIDs {
		if u, ok := f.Users[id]; ok {
			names[id] = u.DisplayName
		}
	}
	return names, nil
}

type FakeBadgeChecker struct {
	Badges []storage.Badge
	Err    error
	Calls  int
}

func (f *FakeBadgeChecker) CheckBadges(_ context.Context, _ string) ([]storage.Badge, error) {
	f.Calls++
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Badges, nil
}
