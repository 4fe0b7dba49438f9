package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"standings-ocr/pkg/config"
	"standings-ocr/pkg/ocr"
)

var (
	cfg       = config.FromEnv()
	jwtSecret []byte
)

func main() {
	// .env is loaded before any variable is read; real environment wins.
	cfg = config.Load()
	jwtSecret = cfg.JWTSecret

	// `./standings-ocr migrate` runs AutoMigrate and seeding then exits.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		initDB()
		fmt.Println("migration and seeding completed")
		return
	}

	initDB()
	ocrSource = ocr.NewTesseract(cfg.OCRLang)

	r := gin.Default()
	setupRoutes(r)

	log.Printf("listening on %s", cfg.HTTPAddr)
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
