package model

import "time"

type AuditEventType string

const (
	AuditCommandReceived       AuditEventType = "command.received"
	AuditCommandDenied         AuditEventType = "command.denied"
	AuditConfirmationRequested AuditEventType = "confirmation.requested"
	AuditConfirmationAccepted  AuditEventType = "confirmation.accepted"
	AuditConfirmationRejected  AuditEventType = "confirmation.rejected"
	AuditConfirmationCancelled AuditEventType = "confirmation.cancelled"
	AuditIntentExecuted        AuditEventType = "intent.executed"
	AuditIntentFailed          AuditEventType = "intent.failed"
	AuditJobStarted            AuditEventType = "job.started"
	AuditJobFinished           AuditEventType = "job.finished"
)

type AuditLog struct {
	ID          string            `json:"id"`
	EventType   AuditEventType    `json:"event_type"`
	UserID      string            `json:"user_id"`
	ChannelID   string            `json:"channel_id"`
	IntentKind  IntentKind        `json:"intent_kind,omitempty"`
	Description string            `json:"description"`
	Metadata    map[string]string `json:"metadata"`
	CreatedAt   time.Time         `json:"created_at"`
}

func NewAuditLog(eventType AuditEventType, userID, channelID, description string) AuditLog {
	return AuditLog{
		ID:          generateID(),
		EventType:   eventType,
		UserID:      userID,
		ChannelID:   channelID,
		Description: description,
		Metadata:    make(map[string]string),
		CreatedAt:   time.Now().UTC(),
	}
}

func (a AuditLog) WithIntentKind(kind IntentKind) AuditLog {
	a.IntentKind = kind
	return a
}

func (a AuditLog) WithMetadata(key, value string) AuditLog {
	meta := make(map[string]string, len(a.Metadata)+1)
	for k, v := range a.Metadata {
		meta[k] = v
	}
	meta[key] = value
	a.Metadata = meta
	return a
}
