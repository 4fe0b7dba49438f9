package main

import (
	"log"
	"os"

	"gorm.io/gorm"

	"standings-ocr/pkg/store"
)

var db *gorm.DB

func initDB() {
	var err error
	db, err = store.Open(cfg.DBDSN)
	if err != nil {
		log.Fatal("failed to connect postgres database: ", err)
	}
	// Control schema migrations with env DB_AUTO_MIGRATE (default true). Permission errors are logged and ignored.
	if cfg.AutoMigrate {
		if err := store.Migrate(db); err != nil {
			log.Printf("migration finished with warnings: %v", err)
		}
	}
	seedDB()
}

func seedDB() {
	if err := store.SeedRoles(db); err != nil {
		log.Printf("failed to seed roles: %v", err)
	}
	created, err := store.SeedAdmin(db, "admin", cfg.AdminPassword)
	if err != nil {
		log.Printf("failed to seed admin: %v", err)
	} else if created {
		log.Println("Seeded admin user: username=admin (password from ADMIN_PASSWORD)")
	}
	ensureUploadBase()
}

// ensureUploadBase creates the base uploads directory.
func ensureUploadBase() {
	base := uploadBaseDir()
	if err := os.MkdirAll(base, 0755); err != nil {
		log.Printf("failed to create upload base dir %s: %v", base, err)
	}
}

// uploadBaseDir returns the base directory for local uploads (configurable via UPLOAD_BASE env)
func uploadBaseDir() string {
	if v := os.Getenv("UPLOAD_BASE"); v != "" {
		return v
	}
	return cfg.UploadBase
}
