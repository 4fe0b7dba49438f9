package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"standings-ocr/models"
	"standings-ocr/pkg/standings"
)

var (
	ErrNotFound         = errors.New("standing not found")
	ErrAlreadyExtracted = errors.New("screenshot already has a standing")
	ErrInvalidStatus    = errors.New("invalid review status")
	ErrInvalidName      = errors.New("corrected name is not a valid player name")
	ErrUnknownPlacement = errors.New("no player at that placement")
	ErrNothingToPersist = errors.New("result has no usable text")
)

// Meta is what the caller knows about a standing besides the extraction.
type Meta struct {
	UserID       uint
	ScreenshotID *uint
	TournamentID *uint
	Lobby        string
	PlayedAt     time.Time
}

// ReviewStatus decides the initial review state of a result: failed
// extractions are rejected, degraded or low scoring ones need review.
func ReviewStatus(res *standings.Result, threshold float64) string {
	switch {
	case res == nil || !res.Success:
		return models.StatusRejected
	case res.LowConfidence || res.Scores.Overall < threshold:
		return models.StatusNeedsReview
	}
	return models.StatusAccepted
}

// BuildStanding maps a result onto a Standing row and its players.
func BuildStanding(res *standings.Result, meta Meta, threshold float64) (models.Standing, error) {
	tokens, err := json.Marshal(res.Tokens)
	if err != nil {
		return models.Standing{}, fmt.Errorf("encode tokens: %w", err)
	}
	conds := make([]string, len(res.Conditions))
	for i, c := range res.Conditions {
		conds[i] = string(c)
	}
	playedAt := meta.PlayedAt
	if playedAt.IsZero() {
		playedAt = time.Now()
	}
	st := models.Standing{
		UserID:          meta.UserID,
		ScreenshotID:    meta.ScreenshotID,
		TournamentID:    meta.TournamentID,
		Lobby:           strings.TrimSpace(meta.Lobby),
		PlayedAt:        playedAt,
		Format:          string(res.Format),
		Strategy:        string(res.Strategy),
		PlayerCount:     res.StructuredData.PlayerCount,
		CharacterScore:  res.Scores.Character,
		StructuralScore: res.Scores.Structural,
		OverallScore:    res.Scores.Overall,
		LowConfidence:   res.LowConfidence,
		Conditions:      strings.Join(conds, ","),
		Warnings:        strings.Join(res.Warnings, "\n"),
		Tokens:          string(tokens),
		Status:          ReviewStatus(res, threshold),
	}
	for _, p := range res.StructuredData.Players {
		st.Players = append(st.Players, models.StandingPlayer{Placement: p.Placement, Name: p.Name, Points: p.Points})
	}
	return st, nil
}

// SaveStanding persists a successful result and its players in one
// transaction. A failed result only marks the screenshot as failed and
// returns ErrNothingToPersist.
func SaveStanding(gdb *gorm.DB, res *standings.Result, meta Meta, threshold float64) (*models.Standing, error) {
	if !res.Success {
		if meta.ScreenshotID != nil {
			markFailed(gdb, *meta.ScreenshotID, res.Error)
		}
		return nil, ErrNothingToPersist
	}
	st, err := BuildStanding(res, meta, threshold)
	if err != nil {
		return nil, err
	}
	err = gdb.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&st).Error; err != nil {
			if IsUniqueViolation(err) && meta.ScreenshotID != nil {
				return ErrAlreadyExtracted
			}
			return fmt.Errorf("create standing: %w", err)
		}
		if meta.ScreenshotID != nil {
			return tx.Model(&models.Screenshot{}).Where("id = ?", *meta.ScreenshotID).
				Updates(map[string]any{"failed": false, "failed_reason": ""}).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// failedReasonMax is the size of the screenshots.failed_reason column.
const failedReasonMax = 255

func markFailed(gdb *gorm.DB, screenshotID uint, reason string) {
	reason = truncateUTF8(reason, failedReasonMax)
	err := gdb.Model(&models.Screenshot{}).Where("id = ?", screenshotID).
		Updates(map[string]any{"failed": true, "failed_reason": reason}).Error
	if err != nil {
		log.Printf("store: mark screenshot %d failed: %v", screenshotID, err)
	}
}

// truncateUTF8 cuts s to at most max bytes without splitting a rune.
func truncateUTF8(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

// ReplaceResult overwrites the extraction of an existing standing (after a
// re-read or a table update) and resets its review. Identity fields such as
// owner, screenshot, lobby and tournament are kept.
func ReplaceResult(gdb *gorm.DB, st *models.Standing, res *standings.Result, threshold float64) error {
	if !res.Success {
		return ErrNothingToPersist
	}
	fresh, err := BuildStanding(res, Meta{
		UserID: st.UserID, ScreenshotID: st.ScreenshotID, TournamentID: st.TournamentID,
		Lobby: st.Lobby, PlayedAt: st.PlayedAt,
	}, threshold)
	if err != nil {
		return err
	}
	return gdb.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("standing_id = ?", st.ID).Delete(&models.StandingPlayer{}).Error; err != nil {
			return fmt.Errorf("delete players: %w", err)
		}
		players := fresh.Players
		for i := range players {
			players[i].StandingID = st.ID
		}
		if len(players) > 0 {
			if err := tx.Create(&players).Error; err != nil {
				return fmt.Errorf("create players: %w", err)
			}
		}
		err := tx.Model(&models.Standing{}).Where("id = ?", st.ID).Updates(map[string]any{
			"format":           fresh.Format,
			"strategy":         fresh.Strategy,
			"player_count":     fresh.PlayerCount,
			"character_score":  fresh.CharacterScore,
			"structural_score": fresh.StructuralScore,
			"overall_score":    fresh.OverallScore,
			"low_confidence":   fresh.LowConfidence,
			"conditions":       fresh.Conditions,
			"warnings":         fresh.Warnings,
			"tokens":           fresh.Tokens,
			"status":           fresh.Status,
			"reviewed_by":      nil,
			"reviewed_at":      nil,
		}).Error
		if err != nil {
			return fmt.Errorf("update standing: %w", err)
		}
		st.Players = players
		st.Format, st.Strategy, st.PlayerCount = fresh.Format, fresh.Strategy, fresh.PlayerCount
		st.CharacterScore, st.StructuralScore, st.OverallScore = fresh.CharacterScore, fresh.StructuralScore, fresh.OverallScore
		st.LowConfidence, st.Conditions, st.Warnings, st.Tokens = fresh.LowConfidence, fresh.Conditions, fresh.Warnings, fresh.Tokens
		st.Status, st.ReviewedBy, st.ReviewedAt = fresh.Status, nil, nil
		return nil
	})
}

// Find loads a standing with its players.
func Find(gdb *gorm.DB, id uint) (*models.Standing, error) {
	var st models.Standing
	err := gdb.Preload("Players", func(db *gorm.DB) *gorm.DB { return db.Order("placement") }).First(&st, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// normalizeCorrections validates reviewer name corrections, keyed by
// placement, through the same normalizer used at extraction.
func normalizeCorrections(corrections map[int]string) (map[int]string, error) {
	out := make(map[int]string, len(corrections))
	for placement, raw := range corrections {
		name, ok := standings.Normalize(raw)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidName, raw)
		}
		out[placement] = name
	}
	return out, nil
}

// ApplyReview sets the review status of a standing and applies player name
// corrections.
func ApplyReview(gdb *gorm.DB, id, reviewerID uint, status string, corrections map[int]string) (*models.Standing, error) {
	if !models.ValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	names, err := normalizeCorrections(corrections)
	if err != nil {
		return nil, err
	}
	err = gdb.Transaction(func(tx *gorm.DB) error {
		st, err := Find(tx, id)
		if err != nil {
			return err
		}
		byPlacement := map[int]*models.StandingPlayer{}
		for i := range st.Players {
			byPlacement[st.Players[i].Placement] = &st.Players[i]
		}
		for placement, name := range names {
			p, ok := byPlacement[placement]
			if !ok {
				return fmt.Errorf("%w: %d", ErrUnknownPlacement, placement)
			}
			if err := tx.Model(p).Update("name", name).Error; err != nil {
				return fmt.Errorf("update player: %w", err)
			}
		}
		now := time.Now()
		return tx.Model(&models.Standing{}).Where("id = ?", id).Updates(map[string]any{
			"status":      status,
			"reviewed_by": reviewerID,
			"reviewed_at": now,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return Find(gdb, id)
}

// Tokens decodes the OCR tokens stored with a standing.
func Tokens(st *models.Standing) ([]standings.Token, error) {
	if st.Tokens == "" {
		return nil, nil
	}
	var toks []standings.Token
	if err := json.Unmarshal([]byte(st.Tokens), &toks); err != nil {
		return nil, fmt.Errorf("decode tokens of standing %d: %w", st.ID, err)
	}
	return toks, nil
}

// Detections returns the stored tokens as detections for re-extraction.
func Detections(st *models.Standing) ([]standings.Detection, error) {
	toks, err := Tokens(st)
	if err != nil {
		return nil, err
	}
	dets := make([]standings.Detection, len(toks))
	for i, t := range toks {
		dets[i] = t.Detection()
	}
	return dets, nil
}
