package table

import (
	"log/slog"
	"time"
)

type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Notification is a transient, user-facing message (a toast). It is never
// stored by the controller.
type Notification struct {
	Level      Level     `json:"level"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	Collection string    `json:"collection"`
	RecordID   string    `json:"record_id,omitempty"`
	Time       time.Time `json:"time"`
}

type Notifier interface {
	Notify(n Notification)
}

type NotifierFunc func(n Notification)

func (f NotifierFunc) Notify(n Notification) {
	f(n)
}

// LogNotifier writes notifications to a slog logger. It is the default when
// a controller is created without a notifier.
type LogNotifier struct {
	Logger *slog.Logger
}

func (l LogNotifier) Notify(n Notification) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}

	attrs := []any{"collection", n.Collection, "title", n.Title}
	if n.RecordID != "" {
		attrs = append(attrs, "record_id", n.RecordID)
	}

	if n.Level == LevelError {
		logger.Warn(n.Message, attrs...)
		return
	}
	logger.Info(n.Message, attrs...)
}

type multiNotifier []Notifier

func (m multiNotifier) Notify(n Notification) {
	for _, target := range m {
		target.Notify(n)
	}
}

// Tee fans a notification out to every non-nil target.
func Tee(targets ...Notifier) Notifier {
	out := make(multiNotifier, 0, len(targets))
	for _, t := range targets {
		if t != nil {
			out = append(out, t)
		}
	}

	return out
}
