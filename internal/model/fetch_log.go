package model

import "time"

// FetchLog records one gateway call. Meal payloads are never stored.
type FetchLog struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	Endpoint   string    `gorm:"size:64;not null" json:"endpoint"`
	Year       string    `gorm:"size:8;not null" json:"year"`
	Month      string    `gorm:"size:4;not null" json:"month"`
	FromDate   string    `gorm:"size:8" json:"fromDate"`
	ToDate     string    `gorm:"size:8" json:"toDate"`
	Status     int       `gorm:"not null" json:"status"`
	ResultCode string    `gorm:"size:32" json:"resultCode"`
	RowCount   int       `json:"rowCount"`
	ErrorText  string    `gorm:"size:512" json:"errorText,omitempty"`
	DurationMs int64     `json:"durationMs"`
	CreatedAt  time.Time `gorm:"not null;index" json:"createdAt"`
}
