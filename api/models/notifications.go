package models

import "github.com/cristianccgg/letranido-backend/notify"

type CurrentNotificationResponse struct {
	Notification *notify.Entry `json:"notification"`
	QueueDepth   int           `json:"queueDepth"`
}

type FounderCelebrationResponse struct {
	Show bool `json:"show"`
}
