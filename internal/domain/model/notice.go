package model

import "time"

// NoticeLevel controls how a notice is styled.
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Notice is a transient per-session message. It expires at Deadline
// regardless of whether it was ever rendered.
type Notice struct {
	Level    NoticeLevel `json:"level"`
	Message  string      `json:"message"`
	Deadline time.Time   `json:"deadline"`
}

// Expired reports whether the notice should no longer be shown at now.
func (n Notice) Expired(now time.Time) bool {
	return !now.Before(n.Deadline)
}
