package models

import "time"

// Interaction is one processed inbound message. Only the hashed sender
// identity and the outcome kind are recorded; raw numbers and message content
// never reach this table.
type Interaction struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	RequestID      string    `gorm:"size:36;index" json:"requestId"`
	Identity       string    `gorm:"size:16;not null;index" json:"identity"`
	Kind           string    `gorm:"size:32;not null" json:"kind"`
	Status         int       `json:"status"`
	ResponseTimeMs int64     `json:"responseTimeMs"`
	CreatedAt      time.Time `gorm:"index" json:"createdAt"`
}
