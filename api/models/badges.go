package models

import "github.com/cristianccgg/letranido-backend/storage"

type AwardBadgeRequest struct {
	UserID  string            `json:"userId"`
	BadgeID string            `json:"badgeId"`
	Extra   map[string]string `json:"extra,omitempty"`
}

type UserBadgesResponse struct {
	UserID string          `json:"userId"`
	Badges []storage.Badge `json:"badges"`
}

type BadgeCheckResponse struct {
	UserID   string          `json:"userId"`
	Badges   []storage.Badge `json:"badges"`
	Enqueued int             `json:"enqueued"`
}
