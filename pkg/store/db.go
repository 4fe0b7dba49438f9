// Package store persists extracted standings with gorm on Postgres.
package store

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"standings-ocr/models"
)

// Open connects to Postgres.
func Open(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, errors.New("DB_DSN is not set. This project requires a Postgres DSN in DB_DSN")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return gdb, nil
}

// MustOpenFromEnv is the initializer used by the command line tools.
func MustOpenFromEnv() *gorm.DB {
	gdb, err := Open(os.Getenv("DB_DSN"))
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	return gdb
}

// Migrate creates or updates every table. Models are migrated one by one so
// a permission problem on one table does not block the others; failures are
// logged and returned joined.
func Migrate(gdb *gorm.DB) error {
	var errs []error
	// roles first so users can reference them
	for _, m := range []struct {
		table string
		model any
	}{
		{"roles", &models.Role{}},
		{"users", &models.User{}},
		{"refresh_tokens", &models.RefreshToken{}},
		{"tournaments", &models.Tournament{}},
		{"screenshots", &models.Screenshot{}},
		{"standings", &models.Standing{}},
		{"standing_players", &models.StandingPlayer{}},
	} {
		if err := gdb.AutoMigrate(m.model); err != nil {
			log.Printf("migration warning (%s): %v", m.table, err)
			errs = append(errs, fmt.Errorf("migrate %s: %w", m.table, err))
		}
	}
	return errors.Join(errs...)
}

// SeedRoles ensures the master roles exist.
func SeedRoles(gdb *gorm.DB) error {
	for _, r := range models.MasterRoles() {
		if err := gdb.Where("name = ?", r.Name).FirstOrCreate(&r).Error; err != nil {
			return fmt.Errorf("failed to ensure role %s: %w", r.Name, err)
		}
	}
	return nil
}

// SeedAdmin creates the administrator account when it is missing. It reports
// whether a new account was created.
func SeedAdmin(gdb *gorm.DB, username, password string) (bool, error) {
	var count int64
	gdb.Model(&models.User{}).Where("username = ?", username).Count(&count)
	if count > 0 {
		return false, nil
	}
	var role models.Role
	if err := gdb.Where("name = ?", models.RoleAdministrator).First(&role).Error; err != nil {
		return false, fmt.Errorf("failed to find administrator role: %w", err)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("failed to hash admin password: %w", err)
	}
	rid := role.ID
	admin := models.User{Username: username, HashedPassword: hashed, RoleID: &rid}
	if err := gdb.Create(&admin).Error; err != nil {
		if IsUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create admin user: %w", err)
	}
	return true, nil
}

// IsUniqueViolation reports whether err is a Postgres unique_violation.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint")
}
