package models

import "time"

// BlockedNumber is an operator-blocked raw sender address. The raw number is
// the key because operators block the numbers they see; hashing happens only
// for interaction records.
type BlockedNumber struct {
	Number    string `gorm:"primaryKey;size:32"`
	Reason    string `gorm:"size:256"`
	CreatedAt time.Time
}
