package models

import "time"

// ServiceState is the operator-controlled runtime state, persisted as a
// single row (ID 1) so toggles survive restarts.
type ServiceState struct {
	ID                uint `gorm:"primaryKey"`
	KillSwitch        bool `gorm:"default:false"`
	PausedUntil       *time.Time
	FallbackMode      bool `gorm:"default:false"`
	ModerationEnabled bool `gorm:"default:true"`
	RatePerMinute     int  `gorm:"default:10"`
	UpdatedAt         time.Time
}
