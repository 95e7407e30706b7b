package models

import "time"

type ActivityAction string

const (
	ActivityCreate  ActivityAction = "create"
	ActivityUpdate  ActivityAction = "update"
	ActivityDelete  ActivityAction = "delete"
	ActivityOrder   ActivityAction = "order"
	ActivityRestock ActivityAction = "restock"
	ActivityUpload  ActivityAction = "upload"
)

// ActivityLog records a dashboard mutation the upstream API accepted.
type ActivityLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	RequestID string `gorm:"size:64" json:"request_id"`

	// e.g. "inventory_item", "employee", "order", "store", "notification_settings"
	EntityType string `gorm:"size:50;index" json:"entity_type"`
	EntityID   int64  `gorm:"index" json:"entity_id"`

	Action      ActivityAction `gorm:"size:20" json:"action"`
	Description string         `gorm:"size:255" json:"description"`

	// jsonb needs "null" rather than an empty string
	BeforeData string `gorm:"type:jsonb" json:"before_data"`
	AfterData  string `gorm:"type:jsonb" json:"after_data"`
}
