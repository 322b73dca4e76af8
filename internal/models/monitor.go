package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MonitorStatus is the resolved state of a monitor. A monitor starts in
// StatusPending and only the check orchestrator moves it between states.
type MonitorStatus string

const (
	StatusPending MonitorStatus = "pending"
	StatusUp      MonitorStatus = "up"
	StatusDown    MonitorStatus = "down"
)

// Valid reports whether s is one of the three known states.
func (s MonitorStatus) Valid() bool {
	switch s {
	case StatusPending, StatusUp, StatusDown:
		return true
	}
	return false
}

type Monitor struct {
	ID              string        `gorm:"primaryKey" json:"id"`
	UserID          string        `gorm:"index;not null" json:"user_id"`
	Name            string        `gorm:"not null" json:"name"`
	URL             string        `gorm:"not null" json:"url"`
	IntervalMinutes int           `gorm:"not null;default:5" json:"interval_minutes"`
	Status          MonitorStatus `gorm:"not null;default:pending" json:"status"`

	LastCheckedAt      *time.Time `json:"last_checked_at"`
	LastStatusChangeAt *time.Time `json:"last_status_change_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Checks []Check `gorm:"foreignKey:MonitorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

func (m *Monitor) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.Status == "" {
		m.Status = StatusPending
	}
	return
}
