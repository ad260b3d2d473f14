package project

import (
	"context"
	"time"
)

// RemoteStore is the document store addressed by project id. The whole set
// is always fetched wholesale.
type RemoteStore interface {
	GetAll(ctx context.Context) ([]Project, error)
	Put(ctx context.Context, id string, proj Project) error
	Delete(ctx context.Context, id string) error
}

// LocalCache is a single named slot holding the last known project set.
// Read reports false when the slot has never been written.
type LocalCache interface {
	Read(ctx context.Context) ([]Project, bool, error)
	Write(ctx context.Context, projects []Project) error
}

// NoticeLevel classifies a user-facing notice.
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a non-blocking message for the user.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
	At      time.Time   `json:"at"`
}

// Notifier receives notices about sync outcomes and deadlines.
type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, Notice) {}
