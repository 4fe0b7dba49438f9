package main

import (
	"errors"
	"flag"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/fsnotify/fsnotify"
	"gorm.io/gorm"

	"standings-ocr/models"
	"standings-ocr/pkg/config"
	"standings-ocr/pkg/ocr"
	"standings-ocr/pkg/standings"
	"standings-ocr/pkg/store"
)

// Global DB handle for helper funcs
var db *gorm.DB

// global flags (parsed in main)
var (
	verbose   bool
	threshold float64
	extractor = standings.NewExtractor()
)

var extMime = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".json": "application/json",
}

// screenshots already known to the database, keyed by file name
type preloadState struct {
	byFile map[string]*models.Screenshot
	done   map[uint]bool // screenshot id -> has a standing
	mu     sync.RWMutex
}

func newPreloadState() *preloadState {
	return &preloadState{
		byFile: make(map[string]*models.Screenshot, 1024),
		done:   make(map[uint]bool, 1024),
	}
}

func (ps *preloadState) get(name string) (*models.Screenshot, bool) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	s, ok := ps.byFile[name]
	return s, ok
}

func (ps *preloadState) put(s *models.Screenshot) {
	ps.mu.Lock()
	ps.byFile[s.FileName] = s
	ps.mu.Unlock()
}

func (ps *preloadState) extracted(id uint) bool {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return ps.done[id]
}

func (ps *preloadState) markExtracted(id uint) {
	ps.mu.Lock()
	ps.done[id] = true
	ps.mu.Unlock()
}

// Main: scans a directory of standings screenshots, creates Screenshot rows,
// runs OCR and extraction and stores the standings; optional watch mode.
func main() {
	cfg := config.Load()
	dirFlag := flag.String("dir", "public/standings", "directory to scan for standings screenshots")
	username := flag.String("user", "admin", "owner of the imported screenshots")
	dryRun := flag.Bool("dry-run", false, "Skip all DB queries and writes; OCR and print the extracted standings")
	watch := flag.Bool("watch", false, "Watch directory for new files")
	workers := flag.Int("workers", cfg.OCRWorkers, "Worker pool size (default NumCPU)")
	lang := flag.String("lang", cfg.OCRLang, "tesseract language")
	flag.BoolVar(&verbose, "verbose", false, "Verbose per-file logging")
	flag.Float64Var(&threshold, "accept-threshold", cfg.AcceptThreshold, "overall score needed to accept a standing without review")
	flag.Parse()

	src := ocr.NewTesseract(*lang)
	src.Verbose = verbose

	if *dryRun {
		log.Printf("Dry-run: scanning %s (no DB interaction)", *dirFlag)
		files := listImageFiles(*dirFlag)
		log.Printf("Found %d candidate files", len(files))
		for _, f := range files {
			res := extractFile(filepath.Join(*dirFlag, f), src)
			if !res.Success {
				log.Printf("%s: %s", f, res.Error)
				continue
			}
			log.Printf("%s: format=%s overall=%.2f status=%s", f, res.Format, res.Scores.Overall, store.ReviewStatus(res, threshold))
			for _, p := range res.StructuredData.Players {
				log.Printf("  %d. %s (%d)", p.Placement, p.Name, p.Points)
			}
		}
		return
	}

	db = store.MustOpenFromEnv()
	owner := resolveOwner(*username)
	ps := preloadAll(owner)
	log.Printf("Preloaded: screenshots=%d extracted=%d", len(ps.byFile), len(ps.done))

	files := listImageFiles(*dirFlag)
	log.Printf("Scanning %d files (workers=%d)", len(files), effectiveWorkers(*workers))
	runWorkerPool(*dirFlag, owner, ps, src, files, effectiveWorkers(*workers))

	if *watch {
		if err := watchDirectory(*dirFlag, owner, ps, src, effectiveWorkers(*workers)); err != nil {
			log.Fatalf("watch failed: %v", err)
		}
	}
}

func effectiveWorkers(w int) int {
	if w <= 0 {
		return runtime.NumCPU()
	}
	return w
}

func logV(format string, args ...any) {
	if verbose {
		log.Printf(format, args...)
	}
}

// sourceFor prefers a detections sidecar (shot.png.json) over running OCR.
func sourceFor(path string, def ocr.Source) ocr.Source {
	if fileExists(path + ".json") {
		return ocr.DetectionFile{}
	}
	return ocr.ForPath(path, def)
}

func extractFile(path string, def ocr.Source) *standings.Result {
	dets, err := sourceFor(path, def).Detect(path)
	if err != nil && !errors.Is(err, ocr.ErrNoWords) {
		res := standings.ExtractStandings(nil)
		res.Error = err.Error()
		res.Err = err
		return res
	}
	return extractor.Extract(dets)
}

// preloadAll fetches the owner's screenshots and which of them already have a
// standing, so the workers rarely query per file.
func preloadAll(owner models.User) *preloadState {
	ps := newPreloadState()
	var shots []models.Screenshot
	if err := db.Where("user_id = ?", owner.ID).Find(&shots).Error; err == nil {
		for i := range shots {
			s := shots[i]
			ps.byFile[s.FileName] = &s
		}
	}
	var ids []uint
	if err := db.Model(&models.Standing{}).Where("user_id = ? AND screenshot_id IS NOT NULL", owner.ID).Pluck("screenshot_id", &ids).Error; err == nil {
		for _, id := range ids {
			ps.done[id] = true
		}
	}
	return ps
}

func resolveOwner(username string) models.User {
	var u models.User
	if err := db.Where("username = ?", username).First(&u).Error; err != nil {
		log.Fatalf("owner %q not found: %v", username, err)
	}
	return u
}

func listImageFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !isSupportedExt(e.Name()) {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out
}

func watchDirectory(dir string, owner models.User, ps *preloadState, src ocr.Source, workers int) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return err
	}
	log.Printf("Watching %s (debounced) ...", dir)

	fileCh := make(chan string, 256)
	go func() {
		pending := map[string]time.Time{}
		ticker := time.NewTicker(250 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					close(fileCh)
					return
				}
				if ev.Op&(fsnotify.Create|fsnotify.Write) != 0 {
					name := filepath.Base(ev.Name)
					if !isSupportedExt(name) {
						continue
					}
					pending[name] = time.Now()
				}
			case <-ticker.C:
				now := time.Now()
				for name, t := range pending {
					if now.Sub(t) > 300*time.Millisecond { // stable
						fileCh <- name
						delete(pending, name)
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					close(fileCh)
					return
				}
				log.Printf("watch error: %v", err)
			}
		}
	}()

	runWorkerPool(dir, owner, ps, src, nil, workers, fileCh)
	return nil
}

// isSupportedExt accepts screenshots and detection exports; a .json that sits
// next to an image belongs to that image and is skipped.
func isSupportedExt(name string) bool {
	if strings.Contains(name, ".ocr.") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
		return true
	case ".json":
		base := strings.TrimSuffix(name, filepath.Ext(name))
		return !isSupportedExt(base)
	}
	return false
}

// runWorkerPool processes the initial files and then everything received on
// extraCh. It returns once all input is consumed.
func runWorkerPool(dir string, owner models.User, ps *preloadState, src ocr.Source, initial []string, workers int, extraCh ...<-chan string) {
	fileCh := make(chan string, 1024)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range fileCh {
				processSingleFile(dir, name, owner, ps, src)
			}
		}()
	}
	go func() {
		for _, f := range initial {
			fileCh <- f
		}
		var relay sync.WaitGroup
		for _, ch := range extraCh {
			relay.Add(1)
			go func(c <-chan string) {
				defer relay.Done()
				for n := range c {
					fileCh <- n
				}
			}(ch)
		}
		relay.Wait()
		close(fileCh)
	}()
	wg.Wait()
}

// processSingleFile is idempotent: a screenshot row is created once and a
// standing is extracted only when none exists for it yet.
func processSingleFile(dir, name string, owner models.User, ps *preloadState, src ocr.Source) {
	filePath := filepath.Join(dir, name)
	storePath := filepath.ToSlash(filepath.Join("public", "processed", name))

	shot, exists := ps.get(name)
	if exists && ps.extracted(shot.ID) {
		logV("SKIP standing exists %s", name)
		return
	}
	if !exists {
		s := models.Screenshot{UserID: owner.ID, FileName: name, StorePath: storePath, ContentType: mimeFromExt(name)}
		if err := db.Create(&s).Error; err != nil {
			if !store.IsUniqueViolation(err) {
				log.Printf("ERROR create screenshot %s: %v", name, err)
				return
			}
			// race: another worker or the server created it
			if err2 := db.Where("user_id = ? AND file_name = ?", owner.ID, name).First(&s).Error; err2 != nil {
				log.Printf("WARN fetch after race failed %s: %v", name, err2)
				return
			}
		}
		ps.put(&s)
		shot = &s
		log.Printf("NEW screenshot id=%d file=%s", s.ID, name)
	}

	detector := sourceFor(filePath, src)
	if shot.Source == "" {
		shot.Source = detector.Name()
		_ = db.Model(shot).Update("source", shot.Source).Error
	}
	res := extractFile(filePath, src)
	for _, w := range res.Warnings {
		logV("%s: %s", name, w)
	}
	id := shot.ID
	st, err := store.SaveStanding(db, res, store.Meta{UserID: owner.ID, ScreenshotID: &id}, threshold)
	switch {
	case errors.Is(err, store.ErrNothingToPersist):
		logV("OCR no standings %s: %s", name, res.Error)
		return
	case errors.Is(err, store.ErrAlreadyExtracted):
		ps.markExtracted(id)
		logV("SKIP standing created concurrently %s", name)
		return
	case err != nil:
		log.Printf("ERROR save standing %s: %v", name, err)
		return
	}
	ps.markExtracted(id)
	log.Printf("STANDING id=%d players=%d overall=%.2f status=%s file=%s", st.ID, st.PlayerCount, st.OverallScore, st.Status, name)

	// Move the processed file into public/processed so new screenshots are processed only once
	if err := moveToProcessed(filePath, name); err != nil {
		log.Printf("WARN failed to move processed file %s: %v", name, err)
	} else {
		logV("moved processed %s to public/processed", name)
	}
	if sidecar := filePath + ".json"; fileExists(sidecar) {
		_ = moveToProcessed(sidecar, name+".json")
	}
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

func mimeFromExt(name string) string {
	return extMime[strings.ToLower(filepath.Ext(name))]
}

// moveToProcessed moves a file into public/processed/<name>, downscaling
// images above 1 MB. It attempts an atomic rename and falls back to
// copy+remove when necessary.
func moveToProcessed(srcFullPath, name string) error {
	const maxBytes = 1_000_000
	processedDir := filepath.Join("public", "processed")
	if err := os.MkdirAll(processedDir, 0o755); err != nil {
		return err
	}
	dst := filepath.Join(processedDir, name)

	fi, err := os.Stat(srcFullPath)
	if err != nil {
		return err
	}
	if fi.Size() <= maxBytes || strings.EqualFold(filepath.Ext(name), ".json") {
		return moveFile(srcFullPath, dst)
	}
	img, err := imaging.Open(srcFullPath)
	if err != nil {
		return moveFile(srcFullPath, dst)
	}
	// size roughly scales with area
	scale := math.Sqrt(float64(maxBytes) / float64(fi.Size()))
	scale = math.Max(0.1, math.Min(scale, 0.95))
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	newW := int(math.Max(1, math.Round(float64(w)*scale)))
	newH := int(math.Max(1, math.Round(float64(h)*scale)))
	img = imaging.Resize(img, newW, newH, imaging.Lanczos)
	if err := imaging.Save(img, dst); err != nil {
		return moveFile(srcFullPath, dst)
	}
	_ = os.Remove(srcFullPath)
	if fi2, err2 := os.Stat(dst); err2 == nil && fi2.Size() > maxBytes {
		if img2, errOpen2 := imaging.Open(dst); errOpen2 == nil {
			img2 = imaging.Resize(img2, int(float64(img2.Bounds().Dx())*0.8), 0, imaging.Lanczos)
			_ = imaging.Save(img2, dst)
		}
	}
	return nil
}

func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	return copyRemove(src, dst)
}

func copyRemove(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	_ = out.Close()
	return os.Remove(src)
}
