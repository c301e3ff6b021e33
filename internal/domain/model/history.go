package model

import "time"

// HistoryEntry records one completed command for the history view.
type HistoryEntry struct {
	ID        string       `json:"id"`
	UserID    string       `json:"user_id"`
	ChannelID string       `json:"channel_id"`
	Command   string       `json:"command"`
	Kind      IntentKind   `json:"kind"`
	Status    ResultStatus `json:"status"`
	Summary   string       `json:"summary"`
	CreatedAt time.Time    `json:"created_at"`
}

func NewHistoryEntry(userID, channelID, command string, kind IntentKind, res Result) HistoryEntry {
	return HistoryEntry{
		ID:        generateID(),
		UserID:    userID,
		ChannelID: channelID,
		Command:   command,
		Kind:      kind,
		Status:    res.Status,
		Summary:   res.Summary(),
		CreatedAt: time.Now().UTC(),
	}
}
