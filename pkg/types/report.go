package types

import (
	"math"
	"time"
)

type Urgency string

const (
	UrgencyLow      Urgency = "LOW"
	UrgencyMedium   Urgency = "MEDIUM"
	UrgencyHigh     Urgency = "HIGH"
	UrgencyCritical Urgency = "CRITICAL"
)

// Rank orders urgencies LOW < MEDIUM < HIGH < CRITICAL. Unknown values rank 0.
func (u Urgency) Rank() int {
	switch u {
	case UrgencyLow:
		return 1
	case UrgencyMedium:
		return 2
	case UrgencyHigh:
		return 3
	case UrgencyCritical:
		return 4
	}
	return 0
}

type ReportStatus string

const (
	ReportStatusPending    ReportStatus = "PENDING"
	ReportStatusVerified   ReportStatus = "VERIFIED"
	ReportStatusInProgress ReportStatus = "IN_PROGRESS"
	ReportStatusResolved   ReportStatus = "RESOLVED"
	ReportStatusRejected   ReportStatus = "REJECTED"
)

type Report struct {
	ID                 string       `db:"id" json:"id"`
	AccountID          string       `db:"account_id" json:"userId"`
	Title              string       `db:"title" json:"title"`
	Description        string       `db:"description" json:"description"`
	Location           string       `db:"location" json:"location"`
	Latitude           *float64     `db:"latitude" json:"latitude,omitempty"`
	Longitude          *float64     `db:"longitude" json:"longitude,omitempty"`
	Urgency            Urgency      `db:"urgency" json:"urgency"`
	Category           string       `db:"category" json:"category"`
	PotentialSolutions *string      `db:"potential_solutions" json:"potentialSolutions,omitempty"`
	Images             []string     `db:"images" json:"images"`
	Status             ReportStatus `db:"status" json:"status"`
	CreatedAt          time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time    `db:"updated_at" json:"updatedAt"`
}

// ReportFilter narrows a report listing. Zero values mean "any".
type ReportFilter struct {
	Category string
	Urgency  Urgency
	Status   ReportStatus
	Location string
	Page     int
	Limit    int
}

// Offset saturates at math.MaxInt instead of overflowing, so an absurd page
// yields an empty result rather than a negative offset.
func (f ReportFilter) Offset() int {
	if f.Page < 1 || f.Limit < 1 {
		return 0
	}
	if f.Page-1 > math.MaxInt/f.Limit {
		return math.MaxInt
	}
	return (f.Page - 1) * f.Limit
}

type ReportPage struct {
	Reports []*Report `json:"reports"`
	Meta    PageMeta  `json:"meta"`
}

type PageMeta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

func NewPageMeta(total, page, limit int) PageMeta {
	meta := PageMeta{Total: total, Page: page, Limit: limit}
	if limit > 0 {
		meta.TotalPages = (total + limit - 1) / limit
	}
	return meta
}

// ReportCreation is what the store hands back after a report insert. FanOutErr
// is set when the report committed but the notification batch did not.
type ReportCreation struct {
	Report        *Report
	Notifications []*Notification
	FanOutErr     error
}
