package models

import (
	"github.com/cristianccgg/letranido-backend/contest"
	"github.com/cristianccgg/letranido-backend/storage"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type PreviewWinner struct {
	Position   int            `json:"position"`
	Story      *storage.Story `json:"story"`
	AuthorName string         `json:"authorName"`
}

type PreviewWinnersResponse struct {
	Success bool            `json:"success"`
	Winners []PreviewWinner `json:"winners"`
}

func TransformPreviewToResponse(ranked []*storage.Story, names map[string]string) PreviewWinnersResponse {
	resp := PreviewWinnersResponse{
		Success: true,
		Winners: make([]PreviewWinner, 0, len(ranked)),
	}
	for i, story := range ranked {
		resp.Winners = append(resp.Winners, PreviewWinner{
			Position:   i + 1,
			Story:      story,
			AuthorName: contest.AuthorName(names, story.UserID),
		})
	}
	return resp
}
