package migrate

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations
var Migrations embed.FS

// Migrate applies the embedded asset-metadata migrations on startup. It is
// idempotent; goose skips versions that are already applied.
func Migrate(dsn string, path fs.FS) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open assets database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping assets database: %w", err)
	}

	goose.SetBaseFS(path)
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("apply asset migrations: %w", err)
	}
	return nil
}
