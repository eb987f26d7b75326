package types

import "time"

const (
	NotificationTypeNewReport = "NEW_REPORT"
)

type Notification struct {
	ID        string    `db:"id" json:"id"`
	AccountID string    `db:"account_id" json:"userId"`
	ReportID  string    `db:"report_id" json:"reportId"`
	Message   string    `db:"message" json:"message"`
	Type      string    `db:"type" json:"type"`
	Link      string    `db:"link" json:"link"`
	IsRead    bool      `db:"is_read" json:"isRead"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
