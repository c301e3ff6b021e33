package model

import "time"

// PendingAction is the conversational memory for a destructive Intent that
// has been announced but not yet confirmed. The captured Intent is what gets
// executed on confirmation; the confirmation message itself is never
// re-parsed, so arguments cannot be tampered with between prompt and
// confirmation.
type PendingAction struct {
	UserID    string
	ChannelID string
	Intent    Intent
	CreatedAt time.Time
	TTL       time.Duration
}

func NewPendingAction(userID, channelID string, intent Intent, ttl time.Duration) PendingAction {
	return PendingAction{
		UserID:    userID,
		ChannelID: channelID,
		Intent:    intent,
		CreatedAt: time.Now().UTC(),
		TTL:       ttl,
	}
}

// Expired reports whether the pending action is past its TTL at now.
func (p PendingAction) Expired(now time.Time) bool {
	return now.Sub(p.CreatedAt) > p.TTL
}
