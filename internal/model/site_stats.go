package model

import "time"

// SiteStats is a singleton row (id = SiteStatsID) created lazily on the
// first recorded visit.
const SiteStatsID uint64 = 1

type SiteStats struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	Visits    int64     `gorm:"not null;default:0" json:"visits"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (SiteStats) TableName() string {
	return "site_stats"
}
