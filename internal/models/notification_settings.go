package models

import "time"

// NotificationSettings is the per-user delivery configuration. One row per
// user, upserted. Stored Pushover credentials may be overridden by
// process-wide environment values; resolution lives in the notify package.
type NotificationSettings struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID string `gorm:"uniqueIndex;not null" json:"user_id"`

	EmailEnabled bool   `json:"email_enabled"`
	EmailAddress string `json:"email_address"`

	PushoverEnabled  bool   `json:"pushover_enabled"`
	PushoverUserKey  string `json:"-"`
	PushoverAPIToken string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
