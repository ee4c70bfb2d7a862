package view

import (
	"context"
	"sync"
)

// Level classifies a notice.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notice is a one-shot, toast style message for the user.
type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Notifier delivers notices to whoever renders them.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

// Notify implements Notifier.
func (f NotifierFunc) Notify(n Notice) { f(n) }

// Flash queues notices until the next render drains them.
type Flash struct {
	mu      sync.Mutex
	notices []Notice
}

// NewFlash returns a Flash pre-loaded with pending notices.
func NewFlash(pending ...Notice) *Flash {
	return &Flash{notices: append([]Notice(nil), pending...)}
}

// Notify implements Notifier.
func (f *Flash) Notify(n Notice) {
	f.mu.Lock()
	f.notices = append(f.notices, n)
	f.mu.Unlock()
}

// Drain returns and clears the queued notices.
func (f *Flash) Drain() []Notice {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.notices
	f.notices = nil
	return out
}

// Pending returns a copy of the queued notices without clearing them.
func (f *Flash) Pending() []Notice {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Notice(nil), f.notices...)
}

// Confirmer answers a yes/no prompt before a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, message string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, message string) bool

// Confirm implements Confirmer.
func (f ConfirmFunc) Confirm(ctx context.Context, message string) bool { return f(ctx, message) }

// Answer is a Confirmer with a fixed reply.
type Answer bool

// Confirm implements Confirmer.
func (a Answer) Confirm(context.Context, string) bool { return bool(a) }
