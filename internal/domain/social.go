package domain

import (
	"fmt"
	"time"
)

type PresenceState string

const (
	PresenceOnline  PresenceState = "online"
	PresenceAway    PresenceState = "away"
	PresenceOffline PresenceState = "offline"
)

type PresenceStatus struct {
	State     PresenceState `json:"state"`
	DeviceID  string        `json:"deviceId"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

func (p PresenceStatus) Validate() error {
	switch p.State {
	case PresenceOnline, PresenceAway, PresenceOffline:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidPresence, p.State)
	}
}

// AudienceMember is an account following the journal over ActivityPub.
type AudienceMember struct {
	Handle      string `json:"handle"`
	DisplayName string `json:"displayName"`
	InboxURL    string `json:"inboxUrl"`
}

// Device is one installation signed in to the account.
type Device struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Platform string    `json:"platform"`
	LastSeen time.Time `json:"lastSeen"`
	// Current is set by the use case for this installation.
	Current bool `json:"current"`
}
