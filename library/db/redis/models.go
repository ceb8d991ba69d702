package redis

import (
	"encoding/json"
	"time"
)

// ThumbnailTask asks the worker to generate thumbnails for an uploaded image
type ThumbnailTask struct {
	TaskID    string    `json:"task_id"`
	UserID    string    `json:"user_id"`
	FileID    string    `json:"file_id"`
	CreatedAt time.Time `json:"created_at"`
}

// MarshalBinary encodes the task as JSON for the list entry.
func (t *ThumbnailTask) MarshalBinary() ([]byte, error) {
	return json.Marshal(t)
}

// UserEmailTask asks the worker to send a welcome email to a new user
type UserEmailTask struct {
	TaskID    string    `json:"task_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// MarshalBinary encodes the task as JSON for the list entry.
func (t *UserEmailTask) MarshalBinary() ([]byte, error) {
	return json.Marshal(t)
}
