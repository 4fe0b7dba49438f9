package models

import (
	"time"
)

// Screenshot is an uploaded standings image.
type Screenshot struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	FileName    string `gorm:"size:255;not null;uniqueIndex:idx_user_file"`
	StorePath   string `gorm:"column:store_path;size:512"` // public relative path (e.g. public/processed/xxx.png)
	UserID      uint   `gorm:"index;not null;uniqueIndex:idx_user_file"`
	ContentType string `gorm:"size:128"`
	// Source names the OCR engine that produced the detections.
	Source string `gorm:"size:64"`
	// Failed marks screenshots where no text was usable; the record is kept
	// so an administrator can look at it.
	Failed       bool   `gorm:"default:false;index"`
	FailedReason string `gorm:"size:255"`
}
