package contest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianccgg/letranido-backend/storage"
)

func story(id, userID, title string, likes int, createdAt time.Time, words int) *storage.Story {
	return &storage.Story{
		ContestID:  "contest-1",
		ID:         id,
		UserID:     userID,
		Title:      title,
		LikesCount: likes,
		CreatedAt:  createdAt,
		WordCount:  words,
	}
}

func TestRankOrdersByLikes(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	stories := []*storage.Story{
		story("s1", "u1", "Middle", 5, t0, 500),
		story("s2", "u2", "Top", 12, t0, 500),
		story("s3", "u3", "Bottom", 1, t0, 500),
	}

	ranked := Rank(stories)

	require.Len(t, ranked, 3)
	assert.Equal(t, "s2", ranked[0].ID)
	assert.Equal(t, "s1", ranked[1].ID)
	assert.Equal(t, "s3", ranked[2].ID)
}

func TestRankTieBreakChain(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	t1 := t0.Add(2 * time.Hour)

	t.Run("Equal likes - earlier submission wins", func(t *testing.T) {
		a := story("a", "u1", "Alpha", 10, t0, 500)
		b := story("b", "u2", "Beta", 10, t1, 900)

		ranked := Rank([]*storage.Story{b, a})
		assert.Equal(t, "a", ranked[0].ID)
		assert.Equal(t, "b", ranked[1].ID)
	})

	t.Run("Equal likes and time - more words win", func(t *testing.T) {
		a := story("a", "u1", "Alpha", 10, t0, 1200)
		b := story("b", "u2", "Beta", 10, t0, 500)

		ranked := Rank([]*storage.Story{b, a})
		assert.Equal(t, "a", ranked[0].ID)
	})

	t.Run("Equal likes, time and words - title ascending", func(t *testing.T) {
		a := story("a", "u1", "Autumn Rain", 10, t0, 500)
		b := story("b", "u2", "Winter Sun", 10, t0, 500)

		ranked := Rank([]*storage.Story{b, a})
		assert.Equal(t, "a", ranked[0].ID)
	})

	t.Run("Identical stories - id keeps the order total", func(t *testing.T) {
		a := story("a", "u1", "Same Title", 10, t0, 500)
		b := story("b", "u2", "Same Title", 10, t0, 500)

		assert.True(t, Less(a, b))
		assert.False(t, Less(b, a))
	})
}

func TestRankIsDeterministicAndPure(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	stories := []*storage.Story{
		story("s1", "u1", "One", 3, t0, 100),
		story("s2", "u2", "Two", 9, t0.Add(time.Hour), 200),
		story("s3", "u3", "Three", 9, t0, 300),
		story("s4", "u4", "Four", 1, t0, 400),
	}
	original := append([]*storage.Story(nil), stories...)

	first := Rank(stories)
	second := Rank(stories)

	require.Equal(t, first, second, "two runs over the same input must agree")
	assert.Equal(t, original, stories, "input slice must not be reordered")
	assert.Equal(t, "s3", first[0].ID, "likes tie broken by earlier submission")
	assert.Equal(t, "s2", first[1].ID)
}

func TestRankTotalOrderOverAllPairs(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	stories := []*storage.Story{
		story("s1", "u1", "A", 5, t0, 100),
		story("s2", "u2", "A", 5, t0, 100),
		story("s3", "u3", "B", 5, t0, 200),
		story("s4", "u4", "C", 7, t0, 100),
	}

	for i, a := range stories {
		for j, b := range stories {
			if i == j {
				continue
			}
			assert.NotEqual(t, Less(a, b), Less(b, a),
				"comparator must strictly order %s vs %s", a.ID, b.ID)
		}
	}
}

func TestRankEmptyAndSingle(t *testing.T) {
	assert.Empty(t, Rank(nil))

	t0 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	only := story("s1", "u1", "Solo", 0, t0, 10)
	ranked := Rank([]*storage.Story{only})
	require.Len(t, ranked, 1)
	assert.Equal(t, "s1", ranked[0].ID)
}
