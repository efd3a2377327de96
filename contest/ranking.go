// Package contest implements the finalization engine: the ranking
// computer and the orchestrator that turns a ranking into awarded badges.
package contest

import (
	"sort"

	"github.com/cristianccgg/letranido-backend/storage"
)

// Rank orders stories into a single strict ranking. Pure: the input slice
// is never mutated and no clock or storage is consulted.
//
// Tie-break chain: likes desc, created_at asc (prompt participation wins),
// word_count desc, title asc, story id asc. The id fallback keeps the
// order total even when two stories share a title.
func Rank(stories []*storage.Story) []*storage.Story {
	ranked := make([]*storage.Story, len(stories))
	copy(ranked, stories)

	sort.SliceStable(ranked, func(i, j int) bool {
		return Less(ranked[i], ranked[j])
	})
	return ranked
}

// Less reports whether a ranks strictly above b.
func Less(a, b *storage.Story) bool {
	if a.LikesCount != b.LikesCount {
		return a.LikesCount > b.LikesCount
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	if a.WordCount != b.WordCount {
		return a.WordCount > b.WordCount
	}
	if a.Title != b.Title {
		return a.Title < b.Title
	}
	return a.ID < b.ID
}
