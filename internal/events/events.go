// Package events publishes client configuration changes to interested
// dashboard components.
package events

import (
	"context"
	"time"
)

// Action names the kind of change.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// ClientChangeEvent is published after a client configuration write commits.
type ClientChangeEvent struct {
	Action     Action    `json:"action"`
	ClientID   uint      `json:"clientId,omitempty"`
	ClientKey  string    `json:"clientKey"`
	ClientName string    `json:"clientName"`
	At         time.Time `json:"at"`
}

// Publisher delivers change events. Implementations must be safe for
// concurrent use.
type Publisher interface {
	Publish(ctx context.Context, ev ClientChangeEvent) error
	Close()
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, ClientChangeEvent) error { return nil }

func (Nop) Close() {}
