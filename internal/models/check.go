package models

import "time"

// CheckStatus classifies the outcome of one probe.
type CheckStatus string

const (
	CheckSuccess CheckStatus = "success"
	CheckFailed  CheckStatus = "failed"
)

// Check is the immutable record of one probe attempt. StatusCode and
// ResponseTimeMs are only set when an HTTP response was received (including
// non-2xx); ErrorMessage is set exactly when the check failed.
type Check struct {
	ID             uint        `gorm:"primaryKey" json:"id"`
	MonitorID      string      `gorm:"index;not null" json:"monitor_id"`
	Status         CheckStatus `gorm:"not null" json:"status"`
	StatusCode     *int        `json:"status_code"`
	ResponseTimeMs *int64      `json:"response_time_ms"`
	ErrorMessage   *string     `json:"error_message"`
	CheckedAt      time.Time   `gorm:"index;not null" json:"checked_at"`
	CreatedAt      time.Time   `json:"created_at"`
}
