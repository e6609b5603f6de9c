// Package storage keeps a log of monitored observations in SQLite.
package storage

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/thurmanmarka/sunwindow"
)

type Database struct {
	db *gorm.DB
}

func NewDatabase(path string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.AutoMigrate(&Observation{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &Database{db: db}, nil
}

// SaveResult stores r as an observation of the named location.
func (d *Database) SaveResult(location string, c sunwindow.Coordinates, r sunwindow.Result) error {
	obs := &Observation{
		Timestamp: time.Unix(r.QueryTime, 0).UTC(),
		Location:  location,
		Latitude:  c.Lat,
		Longitude: c.Lon,
		IsVisible: r.IsVisible,
	}
	if t, ok := r.Rise(); ok {
		obs.RiseTime, obs.RiseAz = &t, r.RiseAz
	}
	if t, ok := r.Set(); ok {
		obs.SetTime, obs.SetAz = &t, r.SetAz
	}
	return d.db.Create(obs).Error
}

func (d *Database) GetLatest() (*Observation, error) {
	var obs Observation
	if err := d.db.Order("timestamp desc").First(&obs).Error; err != nil {
		return nil, err
	}
	return &obs, nil
}

func (d *Database) GetWithLimit(limit int) ([]Observation, error) {
	var out []Observation
	if err := d.db.Order("timestamp desc").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (d *Database) GetByRange(from, to time.Time) ([]Observation, error) {
	var out []Observation
	err := d.db.Where("timestamp BETWEEN ? AND ?", from.UTC(), to.UTC()).
		Order("timestamp desc").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (d *Database) GetDailySummary(date time.Time) (*DailySummary, error) {
	date = date.UTC()
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	s := &DailySummary{Date: start}
	q := d.db.Model(&Observation{}).Where("timestamp >= ? AND timestamp < ?", start, end)
	if err := q.Count(&s.Observations).Error; err != nil {
		return nil, err
	}
	err := d.db.Model(&Observation{}).
		Where("timestamp >= ? AND timestamp < ? AND is_visible = ?", start, end, true).
		Count(&s.Visible).Error
	if err != nil {
		return nil, err
	}
	return s, nil
}

// CleanOldData deletes observations older than the given number of days and
// reports how many were removed.
func (d *Database) CleanOldData(days int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	res := d.db.Unscoped().Where("timestamp < ?", cutoff).Delete(&Observation{})
	return res.RowsAffected, res.Error
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
