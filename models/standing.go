package models

import "time"

// Review states of a Standing.
const (
	StatusAccepted    = "accepted"
	StatusNeedsReview = "needs_review"
	StatusRejected    = "rejected"
)

// ValidStatus reports whether s is one of the review states.
func ValidStatus(s string) bool {
	return s == StatusAccepted || s == StatusNeedsReview || s == StatusRejected
}

// Standing is one extracted lobby result.
type Standing struct {
	ID           uint `gorm:"primaryKey"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	UserID       uint        `gorm:"index;not null"`
	ScreenshotID *uint       `gorm:"uniqueIndex"`
	Screenshot   *Screenshot `gorm:"foreignKey:ScreenshotID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:",omitempty"`
	TournamentID *uint       `gorm:"index"`
	Lobby        string      `gorm:"size:128"`
	PlayedAt     time.Time   `gorm:"index;not null"`

	Format          string  `gorm:"size:32"`
	Strategy        string  `gorm:"size:32"`
	PlayerCount     int     `gorm:"not null"`
	CharacterScore  float64 `gorm:"not null"`
	StructuralScore float64 `gorm:"not null"`
	OverallScore    float64 `gorm:"not null;index"`
	LowConfidence   bool    `gorm:"default:false"`
	// Conditions is a comma separated list of degraded-run markers.
	Conditions string `gorm:"size:255"`
	Warnings   string `gorm:"type:text"`
	// Tokens holds the ingested OCR tokens as JSON so the standing can be
	// re-extracted later.
	Tokens string `gorm:"type:text" json:"-"`

	Status     string     `gorm:"size:16;not null;index;default:needs_review"`
	ReviewedBy *uint      `gorm:"index"`
	ReviewedAt *time.Time

	Players []StandingPlayer `gorm:"foreignKey:StandingID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// StandingPlayer is one row of a Standing. Placement is unique per standing.
type StandingPlayer struct {
	ID         uint   `gorm:"primaryKey"`
	StandingID uint   `gorm:"not null;uniqueIndex:idx_standing_placement"`
	Placement  int    `gorm:"not null;uniqueIndex:idx_standing_placement"`
	Name       string `gorm:"size:64;not null;index"`
	Points     int    `gorm:"not null"`
}
