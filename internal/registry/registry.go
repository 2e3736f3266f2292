// Package registry persists compiled binary images and their source
// digests keyed by (script name, generation), generalizing the
// teacher's internal/database connection-pool-per-driver shape
// (internal/database/db_manager.go) to a single build-artifact table
// instead of arbitrary ad hoc queries.
package registry

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"exalt/internal/buildcfg"
	"exalt/internal/opcode"
)

// Registry wraps a single *sql.DB backing the build-artifact table.
// Unlike the teacher's DBManager, which multiplexes many named
// connections, a registry only ever needs one: every exalt CLI
// invocation targets exactly one artifact store.
type Registry struct {
	db     *sql.DB
	driver string
}

// Artifact is one stored build: a compiled binary image plus the
// digest of the source it was built from, so a caller can tell
// whether a cached image is stale without recompiling.
type Artifact struct {
	ID         string
	ScriptName string
	Game       opcode.Game
	Digest     string
	Image      []byte
	CreatedAt  time.Time
}

// Open connects to dsn, selecting the database/sql driver by its
// scheme prefix (sqlite3://, postgres://, mysql://, sqlserver://) the
// way the teacher's DBManager.Connect maps a dbType string onto a
// driver name. An unprefixed dsn is treated as a sqlite3 file path,
// the default local backend.
func Open(dsn string) (*Registry, error) {
	driver, open := "sqlite3", dsn
	if idx := strings.Index(dsn, "://"); idx >= 0 {
		scheme := dsn[:idx]
		open = dsn[idx+3:]
		switch scheme {
		case "sqlite", "sqlite3":
			driver = "sqlite3"
		case "postgres", "postgresql":
			driver, open = "postgres", dsn
		case "mysql":
			driver, open = "mysql", open
		case "sqlserver", "mssql":
			driver, open = "sqlserver", dsn
		default:
			return nil, fmt.Errorf("registry: unsupported dsn scheme %q", scheme)
		}
	}

	db, err := sql.Open(driver, open)
	if err != nil {
		return nil, fmt.Errorf("registry: failed to open %s: %w", driver, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("registry: failed to ping %s: %w", driver, err)
	}

	r := &Registry{db: db, driver: driver}
	if err := r.init(); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Registry) init() error {
	_, err := r.db.Exec(`CREATE TABLE IF NOT EXISTS artifacts (
		id TEXT PRIMARY KEY,
		script_name TEXT NOT NULL,
		game TEXT NOT NULL,
		digest TEXT NOT NULL,
		image BLOB NOT NULL,
		created_at TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("registry: failed to initialize schema: %w", err)
	}
	return nil
}

// Close releases the underlying connection.
func (r *Registry) Close() error {
	return r.db.Close()
}

// Put stores image under scriptName/game, returning the new
// artifact's id. source is hashed with sha256 so Get callers can
// compare against a freshly-read script before trusting a cached
// image.
func (r *Registry) Put(scriptName string, game opcode.Game, source, image []byte) (string, error) {
	id := uuid.NewString()
	sum := sha256.Sum256(source)
	digest := hex.EncodeToString(sum[:])

	_, err := r.db.Exec(
		`INSERT INTO artifacts (id, script_name, game, digest, image, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, scriptName, buildcfg.GameString(game), digest, image, time.Now().UTC().Format("2006-01-02T15:04:05.000000000Z07:00"),
	)
	if err != nil {
		return "", fmt.Errorf("registry: failed to insert artifact: %w", err)
	}
	return id, nil
}

// Get returns the most recently stored artifact for scriptName/game,
// or an error if none exists.
func (r *Registry) Get(scriptName string, game opcode.Game) (*Artifact, error) {
	row := r.db.QueryRow(
		`SELECT id, script_name, game, digest, image, created_at FROM artifacts
		 WHERE script_name = ? AND game = ? ORDER BY created_at DESC LIMIT 1`,
		scriptName, buildcfg.GameString(game),
	)
	return scanArtifact(row)
}

func scanArtifact(row *sql.Row) (*Artifact, error) {
	var a Artifact
	var gameTag, createdAt string
	if err := row.Scan(&a.ID, &a.ScriptName, &gameTag, &a.Digest, &a.Image, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("registry: no artifact found")
		}
		return nil, fmt.Errorf("registry: failed to scan artifact: %w", err)
	}
	game, err := buildcfg.ParseGame(gameTag)
	if err != nil {
		return nil, err
	}
	a.Game = game
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		a.CreatedAt = t
	}
	return &a, nil
}

// Listing is one row of a List result, rendered for CLI display.
type Listing struct {
	ID         string
	ScriptName string
	Game       string
	Size       string
	CreatedAt  time.Time
}

// List returns every stored artifact, newest first, with image sizes
// rendered human-readable via dustin/go-humanize the way the teacher
// formats byte counts in its CLI output.
func (r *Registry) List() ([]Listing, error) {
	rows, err := r.db.Query(`SELECT id, script_name, game, length(image), created_at FROM artifacts ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("registry: failed to list artifacts: %w", err)
	}
	defer rows.Close()

	var out []Listing
	for rows.Next() {
		var l Listing
		var size int64
		var createdAt string
		if err := rows.Scan(&l.ID, &l.ScriptName, &l.Game, &size, &createdAt); err != nil {
			return nil, fmt.Errorf("registry: failed to scan listing: %w", err)
		}
		l.Size = humanize.Bytes(uint64(size))
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			l.CreatedAt = t
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
