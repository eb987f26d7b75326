package types

import "time"

// ExpertProfile extends an EXPERT account. One per account.
type ExpertProfile struct {
	AccountID       string    `db:"account_id" json:"accountId"`
	Title           string    `db:"title" json:"title"`
	Specialties     []string  `db:"specialties" json:"specialties"`
	Credentials     []string  `db:"credentials" json:"credentials"`
	Bio             string    `db:"bio" json:"bio"`
	ConsultationFee *float64  `db:"consultation_fee" json:"consultationFee,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
}
