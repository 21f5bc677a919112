package models

import "time"

// AuditAction is the kind of event an AuditEntry records.
type AuditAction string

const (
	ActionRegister         AuditAction = "REGISTER"
	ActionLogin            AuditAction = "LOGIN"
	ActionLogout           AuditAction = "LOGOUT"
	ActionRefresh          AuditAction = "REFRESH"
	ActionSaveCredential   AuditAction = "SAVE_CREDENTIAL"
	ActionCreateCredential AuditAction = "CREATE_CREDENTIAL"
	ActionUpdateCredential AuditAction = "UPDATE_CREDENTIAL"
	ActionVerifyCredential AuditAction = "VERIFY_CREDENTIAL"
	ActionDeleteCredential AuditAction = "DELETE_CREDENTIAL"
)

// AuditStatus is the outcome of an audited action.
type AuditStatus string

const (
	StatusSuccess AuditStatus = "SUCCESS"
	StatusFailed  AuditStatus = "FAILED"
)

// AuditEntry is an append-only record of a security relevant action.
// Details never carry secrets or hashes.
type AuditEntry struct {
	ID            string      `json:"id" bson:"_id"`
	Username      string      `json:"username" bson:"username"`
	Action        AuditAction `json:"action_type" bson:"action_type"`
	Status        AuditStatus `json:"status" bson:"status"`
	Details       string      `json:"details,omitempty" bson:"details,omitempty"`
	SourceAddress string      `json:"source_address,omitempty" bson:"source_address,omitempty"`
	ClientAgent   string      `json:"client_agent,omitempty" bson:"client_agent,omitempty"`
	CreatedAt     time.Time   `json:"created_at" bson:"created_at"`
}
