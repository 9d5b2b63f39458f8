package domain

import "time"

const (
	NotificationOrderUpdate   = "order_update"
	NotificationLowStockAlert = "low_stock_alert"
)

// Notification is the durable record of a dispatch attempt. The row is
// written before any channel is tried, so dispatch outcome is always
// observable even when every channel fails.
type Notification struct {
	ID        uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    uint64    `json:"userId" gorm:"not null;index"`
	Message   string    `json:"message" gorm:"not null"`
	Type      string    `json:"type" gorm:"type:varchar(32)"`
	IsRead    bool      `json:"isRead" gorm:"default:false"`
	EmailSent bool      `json:"emailSent" gorm:"default:false"`
	SmsSent   bool      `json:"smsSent" gorm:"default:false"`
	PushSent  bool      `json:"pushSent" gorm:"default:false"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
}
