package sanitize

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	"standings-ocr/pkg/store"
)

// DefaultTables are the application tables, children first.
const DefaultTables = "standing_players,standings,screenshots,tournaments,refresh_tokens,users,roles"

// Options mirrors the db_sanitize flags.
type Options struct {
	Tables        string
	DryRun        bool
	Yes           bool
	Reseed        bool
	AdminPassword string
}

var nameRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ParseTables splits a comma separated list and keeps valid identifiers;
// rejected entries are returned separately.
func ParseTables(list string) (valid, invalid []string) {
	for _, p := range strings.Split(list, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !nameRe.MatchString(p) {
			invalid = append(invalid, p)
			continue
		}
		valid = append(valid, p)
	}
	return valid, invalid
}

// TruncateStatement builds the TRUNCATE for already validated table names.
func TruncateStatement(tables []string) string {
	quoted := make([]string, 0, len(tables))
	for _, t := range tables {
		quoted = append(quoted, fmt.Sprintf("\"%s\"", t))
	}
	return fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", strings.Join(quoted, ", "))
}

// Run truncates the requested tables that exist and optionally reseeds the
// master roles and the admin account.
func Run(gdb *gorm.DB, opts Options) error {
	wanted, invalid := ParseTables(opts.Tables)
	for _, t := range invalid {
		log.Printf("warning: skipping invalid table name '%s'", t)
	}

	existing := []string{}
	// check presence individually to avoid any injection risk
	for _, t := range wanted {
		var cnt int64
		if err := gdb.Raw("SELECT count(*) FROM pg_tables WHERE schemaname = 'public' AND tablename = ?", t).Scan(&cnt).Error; err != nil {
			return fmt.Errorf("query pg_tables for %s: %w", t, err)
		}
		if cnt > 0 {
			existing = append(existing, t)
		} else {
			log.Printf("info: table %s not found, skipping", t)
		}
	}
	if len(existing) == 0 {
		log.Println("no requested tables present in the database; nothing to do")
		return nil
	}

	fmt.Println("Tables considered for truncation:")
	for _, t := range existing {
		fmt.Printf(" - %s\n", t)
	}
	if opts.DryRun {
		fmt.Println("dry-run enabled; no changes will be made. Use --dry-run=false --yes to execute.")
		return nil
	}
	if !opts.Yes {
		fmt.Println("Destructive operation. Pass --yes to confirm execution. Aborting.")
		return nil
	}

	stmt := TruncateStatement(existing)
	log.Printf("Executing: %s", stmt)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := gdb.WithContext(ctx).Exec(stmt).Error; err != nil {
		return fmt.Errorf("truncate failed: %w", err)
	}
	log.Println("Truncate completed.")

	if opts.Reseed {
		if err := store.SeedRoles(gdb); err != nil {
			return fmt.Errorf("reseed roles: %w", err)
		}
		if _, err := store.SeedAdmin(gdb, "admin", opts.AdminPassword); err != nil {
			return fmt.Errorf("reseed admin: %w", err)
		}
		log.Println("Reseeded roles and admin user.")
	}
	return nil
}
