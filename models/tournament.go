package models

import "time"

// Tournament groups standings for a leaderboard (one season, one event).
type Tournament struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	// Active tournaments accept new standings. Defaults to true.
	Active    bool       `gorm:"default:true;not null"`
	Name      string     `gorm:"size:255;not null;uniqueIndex"`
	StartsOn  *time.Time `gorm:"index"`
	CreatedBy uint       `gorm:"index"`
	Standings []Standing `gorm:"foreignKey:TournamentID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
}
