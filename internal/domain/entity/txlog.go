package entity

import "time"

// Operation names the mutation kind recorded in the transaction log.
type Operation string

const (
	OpInsert Operation = "INSERT"
	OpUpdate Operation = "UPDATE"
	OpDelete Operation = "DELETE"
)

// TransactionLogEntry is one durability record. An entry is written in the
// same local transaction as the business mutation it describes.
type TransactionLogEntry struct {
	ID         int64     `json:"id"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	Op         Operation `json:"op"`
	LoggedAt   time.Time `json:"logged_at"`
}
