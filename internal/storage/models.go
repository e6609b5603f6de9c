package storage

import (
	"time"

	"gorm.io/gorm"
)

// Observation is one evaluation of a monitored location.
type Observation struct {
	gorm.Model
	Timestamp time.Time `gorm:"index" json:"timestamp"`
	Location  string    `gorm:"index" json:"location"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`

	RiseTime  *time.Time `json:"rise_time,omitempty"`
	RiseAz    float64    `json:"rise_azimuth"`
	SetTime   *time.Time `json:"set_time,omitempty"`
	SetAz     float64    `json:"set_azimuth"`
	IsVisible bool       `json:"is_visible"`
}

// DailySummary counts observations for one UTC day.
type DailySummary struct {
	Date         time.Time `json:"date"`
	Observations int64     `json:"observations"`
	Visible      int64     `json:"visible"`
}
