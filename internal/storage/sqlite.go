package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/manabu/internal/models"
)

// SQLiteStore implements Store using SQLite. It is the default backend: a
// single local file, no external service.
type SQLiteStore struct {
	db      *sql.DB
	timeout time.Duration
}

// NewSQLiteStore opens or creates a SQLite database at dbPath and initializes
// the schema. Parent directories are created if they do not exist. timeout
// bounds every store operation; zero means 5s.
func NewSQLiteStore(dbPath string, timeout time.Duration) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &SQLiteStore{db: db, timeout: timeout}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS facts (
		id TEXT PRIMARY KEY,
		content TEXT NOT NULL,
		term TEXT,
		category TEXT,
		type TEXT,
		source TEXT NOT NULL,
		path TEXT NOT NULL,
		tokens TEXT,
		confidence REAL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_facts_term ON facts(term);
	CREATE INDEX IF NOT EXISTS idx_facts_source ON facts(source);
	CREATE INDEX IF NOT EXISTS idx_facts_created_at ON facts(created_at);
	`
	_, err := db.Exec(schema)
	return err
}

func (s *SQLiteStore) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// Insert appends a fact. ID and CreatedAt are assigned when unset.
func (s *SQLiteStore) Insert(ctx context.Context, fact *models.Fact) (string, error) {
	if fact.Content == "" || fact.Source == "" {
		return "", fmt.Errorf("fact content and source must be non-empty")
	}
	if fact.ID == "" {
		fact.ID = uuid.New().String()
	}
	if fact.CreatedAt.IsZero() {
		fact.CreatedAt = time.Now().UTC()
	}
	tokensJSON, err := json.Marshal(fact.Tokens)
	if err != nil {
		return "", fmt.Errorf("failed to marshal tokens: %w", err)
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO facts (id, content, term, category, type, source, path, tokens, confidence, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		fact.ID, fact.Content, fact.Term, string(fact.Category), fact.Type,
		fact.Source, fact.Path, string(tokensJSON), fact.Confidence, fact.CreatedAt,
	)
	if err != nil {
		return "", err
	}
	return fact.ID, nil
}

// Get returns a fact by ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*models.Fact, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	row := s.db.QueryRowContext(ctx,
		`SELECT id, content, term, category, type, source, path, tokens, confidence, created_at
		 FROM facts WHERE id = ?`, id,
	)
	fact, err := scanFact(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return fact, err
}

// Query returns facts matching the filter, most recent first. Substring and
// equality predicates are pushed down to SQL; regex filtering happens in Go
// because SQLite lacks REGEXP without an extension.
func (s *SQLiteStore) Query(ctx context.Context, f Filter) ([]*models.Fact, error) {
	var (
		conds []string
		args  []interface{}
	)
	if len(f.ContentAny) > 0 {
		ors := make([]string, 0, len(f.ContentAny))
		for _, sub := range f.ContentAny {
			ors = append(ors, "instr(lower(content), lower(?)) > 0")
			args = append(args, sub)
		}
		conds = append(conds, "("+strings.Join(ors, " OR ")+")")
	}
	if f.Term != "" {
		conds = append(conds, "term = ?")
		args = append(args, f.Term)
	}
	if f.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, string(f.Category))
	}
	if f.Source != "" {
		conds = append(conds, "source = ?")
		args = append(args, f.Source)
	}

	query := `SELECT id, content, term, category, type, source, path, tokens, confidence, created_at FROM facts`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC, rowid DESC"

	limit := f.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	var contentRe *regexp.Regexp
	if f.ContentRegex != "" {
		re, err := regexp.Compile("(?i)" + f.ContentRegex)
		if err != nil {
			return nil, fmt.Errorf("invalid content regex: %w", err)
		}
		contentRe = re
	} else {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var facts []*models.Fact
	for rows.Next() {
		fact, err := scanFact(rows.Scan)
		if err != nil {
			return nil, err
		}
		if contentRe != nil && !contentRe.MatchString(fact.Content) {
			continue
		}
		facts = append(facts, fact)
		if len(facts) >= limit {
			break
		}
	}
	return facts, rows.Err()
}

// ExistsBySource reports whether any fact with the given source exists.
func (s *SQLiteStore) ExistsBySource(ctx context.Context, source string) (bool, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM facts WHERE source = ? LIMIT 1`, source,
	).Scan(&n)
	return n > 0, err
}

// ExistsByContent reports whether a fact with exactly this content exists.
func (s *SQLiteStore) ExistsByContent(ctx context.Context, content string) (bool, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM facts WHERE content = ? LIMIT 1`, content,
	).Scan(&n)
	return n > 0, err
}

// Count returns the total number of stored facts.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM facts`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// scanFact reads one fact row. scan is either sql.Row.Scan or sql.Rows.Scan.
func scanFact(scan func(dest ...interface{}) error) (*models.Fact, error) {
	var (
		fact       models.Fact
		term       sql.NullString
		category   sql.NullString
		ftype      sql.NullString
		tokensJSON sql.NullString
		confidence sql.NullFloat64
	)
	err := scan(&fact.ID, &fact.Content, &term, &category, &ftype,
		&fact.Source, &fact.Path, &tokensJSON, &confidence, &fact.CreatedAt)
	if err != nil {
		return nil, err
	}
	fact.Term = term.String
	fact.Category = models.Category(category.String)
	fact.Type = ftype.String
	fact.Confidence = confidence.Float64
	if tokensJSON.Valid && tokensJSON.String != "" && tokensJSON.String != "null" {
		if err := json.Unmarshal([]byte(tokensJSON.String), &fact.Tokens); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tokens: %w", err)
		}
	}
	return &fact, nil
}
