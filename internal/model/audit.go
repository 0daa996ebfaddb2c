package model

import "time"

// Audit actions recorded for mutating operations.
const (
	AuditCreate = "CREATE"
	AuditUpdate = "UPDATE"
	AuditDelete = "DELETE"
)

// AuditLog records who changed what. Changes carries a JSON object of the
// modified fields; secrets are masked before they reach this struct.
type AuditLog struct {
	ID           int64          `json:"id"`
	UserID       int64          `json:"user_id"`
	UserEmail    string         `json:"user_email,omitempty"`
	Action       string         `json:"action"`
	ResourceType string         `json:"resource_type"`
	ResourceID   int64          `json:"resource_id"`
	Changes      map[string]any `json:"changes,omitempty"`
	IPAddress    string         `json:"ip_address,omitempty"`
	UserAgent    string         `json:"user_agent,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}
