package main

import (
	"errors"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"standings-ocr/models"
	"standings-ocr/pkg/ocr"
	"standings-ocr/pkg/standings"
	"standings-ocr/pkg/store"
)

const maxUploadBytes = 5 * 1024 * 1024

var (
	extractor = standings.NewExtractor()
	ocrSource ocr.Source
)

func setupRoutes(r *gin.Engine) {
	r.POST("/register", registerHandler)
	r.POST("/login", loginHandler)
	r.POST("/refresh", refreshHandler)
	r.POST("/revoke_refresh", revokeRefreshHandler)
	authGroup := r.Group("")
	authGroup.Use(jwtAuthMiddleware())
	authGroup.GET("/me", meHandler)
	authGroup.POST("/standings/extract", extractHandler)
	authGroup.POST("/uploads", uploadScreenshotHandler)
	authGroup.GET("/uploads", listScreenshotsHandler)
	authGroup.GET("/standings", listStandingsHandler)
	authGroup.GET("/standings/:id", getStandingHandler)
	authGroup.GET("/leaderboard", leaderboardHandler)
	authGroup.GET("/tournaments", listTournamentsHandler)

	admin := authGroup.Group("")
	admin.Use(requireRole(models.RoleAdministrator))
	admin.POST("/standings/:id/review", reviewStandingHandler)
	admin.POST("/tournaments", createTournamentHandler)
}

func jwtAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || len(authHeader) < 8 || authHeader[:7] != "Bearer " {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid Authorization header"})
			c.Abort()
			return
		}
		tokenString := authHeader[7:]
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrInvalidKeyType
			}
			return jwtSecret, nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
			c.Abort()
			return
		}
		username, _ := claims["username"].(string)
		role, _ := claims["role"].(string)
		c.Set("username", username)
		if role != "" {
			c.Set("role", role)
		}
		c.Next()
	}
}

// requireRole lets the request through only when the token carries role.
func requireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("role") != role {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func isAdmin(c *gin.Context) bool {
	return c.GetString("role") == models.RoleAdministrator
}

func meHandler(c *gin.Context) {
	username := c.GetString("username")
	if username == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "context missing username"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"username": username, "role": c.GetString("role")})
}

// getUserFromContext fetches the currently authenticated user using the username set by jwtAuthMiddleware
func getUserFromContext(c *gin.Context) (*models.User, bool) {
	uname := c.GetString("username")
	if uname == "" {
		return nil, false
	}
	var user models.User
	if err := db.Where("username = ?", uname).First(&user).Error; err != nil {
		return nil, false
	}
	return &user, true
}

func registerHandler(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := RegisterUser(req.Username, req.Password); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, ErrUserExists) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user registered successfully"})
}

func loginHandler(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := Authenticate(req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	tokenString, err := issueAccessToken(user.Username, roleName(user), accessTokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	refreshToken, err := createAndStoreRefreshToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "login successful", "token": tokenString, "refresh_token": refreshToken})
}

// refreshHandler exchanges a refresh token for a new access token and rotates the refresh token
func refreshHandler(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rt, err := findRefreshTokenByRaw(req.RefreshToken)
	if err != nil || !rt.Usable(time.Now()) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired refresh token"})
		return
	}
	var user models.User
	if err := db.First(&user, rt.UserID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	tokenString, err := issueAccessToken(user.Username, roleName(user), refreshedTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	// rotate: revoke the presented token and hand out a new one
	db.Model(&models.RefreshToken{}).Where("id = ?", rt.ID).Update("revoked", true)
	newRT, err := createAndStoreRefreshToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to rotate refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": tokenString, "refresh_token": newRT})
}

// revokeRefreshHandler revokes a given refresh token (useful on logout)
func revokeRefreshHandler(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rt, err := findRefreshTokenByRaw(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "refresh token not found"})
		return
	}
	rt.Revoked = true
	if err := db.Save(rt).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "refresh token revoked"})
}

// resultView strips the token dump unless the caller asked for it.
func resultView(res *standings.Result, withTokens bool) standings.Result {
	out := *res
	if !withTokens {
		out.Tokens = nil
	}
	return out
}

func logResult(name string, res *standings.Result) {
	for _, w := range res.Warnings {
		log.Printf("extract %s: %s", name, w)
	}
	if !res.Success {
		log.Printf("extract %s failed: %s", name, res.Error)
		return
	}
	log.Printf("extract %s format=%s strategy=%s players=%d overall=%.2f low=%v",
		name, res.Format, res.Strategy, res.StructuredData.PlayerCount, res.Scores.Overall, res.LowConfidence)
}

// extractHandler runs extraction over detections posted as JSON. The result
// is persisted only when persist is set.
func extractHandler(c *gin.Context) {
	var req struct {
		Detections    []standings.Detection `json:"detections"`
		Persist       bool                  `json:"persist"`
		Lobby         string                `json:"lobby"`
		TournamentID  *uint                 `json:"tournament_id"`
		PlayedAt      string                `json:"played_at"`
		IncludeTokens bool                  `json:"include_tokens"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var playedAt time.Time
	if req.PlayedAt != "" {
		t, err := time.Parse(time.RFC3339, req.PlayedAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "played_at must be RFC3339"})
			return
		}
		playedAt = t
	}
	res := extractor.Extract(req.Detections)
	logResult("request", res)
	if !req.Persist {
		c.JSON(http.StatusOK, gin.H{"result": resultView(res, req.IncludeTokens)})
		return
	}
	if !res.Success {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": res.Error, "result": resultView(res, req.IncludeTokens)})
		return
	}
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	st, err := store.SaveStanding(db, res, store.Meta{UserID: user.ID, TournamentID: req.TournamentID, Lobby: req.Lobby, PlayedAt: playedAt}, cfg.AcceptThreshold)
	if err != nil {
		log.Printf("save standing failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db save failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": resultView(res, req.IncludeTokens), "standing_id": st.ID, "status": st.Status})
}

var uploadExts = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".json": "application/json",
}

// uploadScreenshotHandler stores a screenshot, runs OCR and extraction and
// persists the standing.
func uploadScreenshotHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file missing"})
		return
	}
	if file.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large (max 5MB)"})
		return
	}
	name := filepath.Base(file.Filename)
	ct, ok := uploadExts[strings.ToLower(filepath.Ext(name))]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported file type"})
		return
	}
	var tournamentID *uint
	if v := c.PostForm("tournament_id"); v != "" {
		if parsed, err := strconv.ParseUint(v, 10, 64); err == nil && parsed != 0 {
			tid := uint(parsed)
			tournamentID = &tid
		}
	}

	var existing models.Screenshot
	if err := db.Where("user_id = ? AND file_name = ?", user.ID, name).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "file already uploaded", "id": existing.ID})
		return
	}

	dir := filepath.Join(uploadBaseDir(), user.Username)
	if err := os.MkdirAll(dir, 0755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "mkdir failed"})
		return
	}
	fullPath := filepath.Join(dir, name)
	if err := c.SaveUploadedFile(file, fullPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	src := ocr.ForPath(fullPath, ocrSource)
	if src == nil {
		_ = os.Remove(fullPath)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "ocr engine not configured"})
		return
	}
	shot := models.Screenshot{
		UserID:      user.ID,
		FileName:    name,
		StorePath:   filepath.ToSlash(filepath.Join("public", user.Username, name)),
		ContentType: ct,
		Source:      src.Name(),
	}
	if err := db.Create(&shot).Error; err != nil {
		if store.IsUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "file already uploaded"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db save failed"})
		return
	}

	dets, err := src.Detect(fullPath)
	if err != nil && !errors.Is(err, ocr.ErrNoWords) {
		log.Printf("ocr %s failed: %v", fullPath, err)
		db.Model(&shot).Updates(map[string]any{"failed": true, "failed_reason": "ocr failed"})
		status := http.StatusInternalServerError
		if errors.Is(err, ocr.ErrNoImage) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error(), "id": shot.ID})
		return
	}
	res := extractor.Extract(dets)
	logResult(name, res)

	meta := store.Meta{UserID: user.ID, ScreenshotID: &shot.ID, TournamentID: tournamentID, Lobby: c.PostForm("lobby")}
	st, err := store.SaveStanding(db, res, meta, cfg.AcceptThreshold)
	if errors.Is(err, store.ErrNothingToPersist) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": res.Error, "id": shot.ID, "result": resultView(res, false)})
		return
	}
	if err != nil {
		log.Printf("save standing for %s failed: %v", name, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db save failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": shot.ID, "store_path": shot.StorePath, "standing_id": st.ID, "status": st.Status, "result": resultView(res, false)})
}

// listScreenshotsHandler returns screenshots; admin sees all, users only their own.
func listScreenshotsHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	q := db.Model(&models.Screenshot{})
	if !isAdmin(c) {
		q = q.Where("user_id = ?", user.ID)
	}
	if c.Query("failed") == "true" {
		q = q.Where("failed = ?", true)
	}
	var shots []models.Screenshot
	if err := q.Order("id desc").Limit(200).Find(&shots).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, shots)
}

// listStandingsHandler lists recent standings; admin sees all.
func listStandingsHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	q := db.Model(&models.Standing{}).Preload("Players", func(tx *gorm.DB) *gorm.DB { return tx.Order("placement") })
	if !isAdmin(c) {
		q = q.Where("user_id = ?", user.ID)
	}
	if s := c.Query("status"); s != "" {
		if !models.ValidStatus(s) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		q = q.Where("status = ?", s)
	}
	if v := c.Query("tournament_id"); v != "" {
		tid, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tournament_id"})
			return
		}
		q = q.Where("tournament_id = ?", tid)
	}
	var items []models.Standing
	if err := q.Order("id desc").Limit(200).Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, items)
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

func getStandingHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	st, err := store.Find(db, id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if !isAdmin(c) && st.UserID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	c.JSON(http.StatusOK, st)
}

// reviewStandingHandler lets an administrator accept or reject a standing and
// correct player names.
func reviewStandingHandler(c *gin.Context) {
	reviewer, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req struct {
		Status      string         `json:"status" binding:"required"`
		Corrections map[int]string `json:"corrections"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st, err := store.ApplyReview(db, id, reviewer.ID, req.Status, req.Corrections)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, st)
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, store.ErrInvalidStatus), errors.Is(err, store.ErrInvalidName), errors.Is(err, store.ErrUnknownPlacement):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("review standing %d failed: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "review failed"})
	}
}

// parseDay accepts YYYY-MM-DD; an empty string yields the zero time.
func parseDay(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", s)
}

func leaderboardHandler(c *gin.Context) {
	var f store.LeaderboardFilter
	if v := c.Query("tournament_id"); v != "" {
		tid, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tournament_id"})
			return
		}
		t := uint(tid)
		f.TournamentID = &t
	}
	var err error
	if f.From, err = parseDay(c.Query("from")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from must be YYYY-MM-DD"})
		return
	}
	if f.To, err = parseDay(c.Query("to")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to must be YYYY-MM-DD"})
		return
	}
	if !f.To.IsZero() {
		f.To = f.To.AddDate(0, 0, 1) // inclusive day
	}
	f.Limit, _ = strconv.Atoi(c.Query("limit"))
	rows, err := store.Leaderboard(db, f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

func createTournamentHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req struct {
		Name     string `json:"name" binding:"required"`
		StartsOn string `json:"starts_on"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t := models.Tournament{Name: strings.TrimSpace(req.Name), CreatedBy: user.ID, Active: true}
	if req.StartsOn != "" {
		d, err := parseDay(req.StartsOn)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "starts_on must be YYYY-MM-DD"})
			return
		}
		t.StartsOn = &d
	}
	if err := db.Create(&t).Error; err != nil {
		if store.IsUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "tournament already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create tournament"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": t.ID})
}

func listTournamentsHandler(c *gin.Context) {
	var items []models.Tournament
	q := db.Model(&models.Tournament{})
	if c.Query("all") != "true" {
		q = q.Where("active = ?", true)
	}
	if err := q.Order("id desc").Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, items)
}
