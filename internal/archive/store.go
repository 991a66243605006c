// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive persists accepted research reports in a local SQLite
// database with full-text search over report bodies.
package archive

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/deep-research/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "reports.db"
)

// Store manages the report archive SQLite database.
type Store struct {
	db         *sql.DB
	archiveDir string
	maxResults int
}

// NewStore opens or creates the archive database at
// archiveDir/index/reports.db, creating the schema if it does not exist.
func NewStore(cfg types.ArchiveConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.Dir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		archiveDir: cfg.Dir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS reports (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			query TEXT NOT NULL,
			body TEXT NOT NULL,
			word_count INTEGER NOT NULL,
			char_count INTEGER NOT NULL,
			searches_used INTEGER NOT NULL,
			depth_profile TEXT NOT NULL DEFAULT '',
			generated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_generated_at ON reports(generated_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='reports_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE reports_fts USING fts5(query, body, content=reports, content_rowid=rowid)`,
			`CREATE TRIGGER reports_ai AFTER INSERT ON reports BEGIN
				INSERT INTO reports_fts(rowid, query, body) VALUES (new.rowid, new.query, new.body);
			END`,
			`CREATE TRIGGER reports_ad AFTER DELETE ON reports BEGIN
				INSERT INTO reports_fts(reports_fts, rowid, query, body) VALUES('delete', old.rowid, old.query, old.body);
			END`,
			`CREATE TRIGGER reports_au AFTER UPDATE ON reports BEGIN
				INSERT INTO reports_fts(reports_fts, rowid, query, body) VALUES('delete', old.rowid, old.query, old.body);
				INSERT INTO reports_fts(rowid, query, body) VALUES (new.rowid, new.query, new.body);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// reportID generates a deterministic ID from the query and generation
// time. The ID is the first 12 hex characters of the SHA-256 digest.
func reportID(query string, generatedAt time.Time) string {
	h := sha256.New()
	h.Write([]byte(query))
	h.Write([]byte(generatedAt.UTC().Format(time.RFC3339Nano)))
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}

// joinDepths renders a depth profile as the comma-separated TEXT column
// value; splitDepths is its inverse.
func joinDepths(depths []types.Depth) string {
	parts := make([]string, len(depths))
	for i, d := range depths {
		parts[i] = string(d)
	}
	return strings.Join(parts, ",")
}

func splitDepths(s string) []types.Depth {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	depths := make([]types.Depth, len(parts))
	for i, p := range parts {
		depths[i] = types.Depth(p)
	}
	return depths
}

// Save upserts a report and returns its archive ID.
func (s *Store) Save(ctx context.Context, rep types.ResearchReport) (string, error) {
	id := reportID(rep.Query, rep.GeneratedAt)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reports (id, query, body, word_count, char_count, searches_used, depth_profile, generated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			body=excluded.body, word_count=excluded.word_count,
			char_count=excluded.char_count, searches_used=excluded.searches_used,
			depth_profile=excluded.depth_profile`,
		id, rep.Query, rep.Body, rep.WordCount, len(rep.Body),
		rep.SearchesUsed, joinDepths(rep.DepthProfile),
		rep.GeneratedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("saving report: %w", err)
	}
	return id, nil
}

// Summary describes an archived report without its body.
type Summary struct {
	ID           string    `json:"id" yaml:"id"`
	Query        string    `json:"query" yaml:"query"`
	WordCount    int       `json:"word_count" yaml:"word_count"`
	CharCount    int       `json:"char_count" yaml:"char_count"`
	SearchesUsed int       `json:"searches_used" yaml:"searches_used"`
	GeneratedAt  time.Time `json:"generated_at" yaml:"generated_at"`
}

// List returns archived report summaries, newest first, up to limit.
// A non-positive limit uses the store default.
func (s *Store) List(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, query, word_count, char_count, searches_used, generated_at
		 FROM reports ORDER BY generated_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	defer rows.Close()

	return scanSummaries(rows)
}

// Get returns the full report for an archive ID. A unique ID prefix is
// accepted.
func (s *Store) Get(ctx context.Context, id string) (types.ResearchReport, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT query, body, word_count, searches_used, depth_profile, generated_at
		 FROM reports WHERE id = ? OR id LIKE ? LIMIT 2`,
		id, id+"%")
	if err != nil {
		return types.ResearchReport{}, fmt.Errorf("looking up report: %w", err)
	}
	defer rows.Close()

	var reps []types.ResearchReport
	for rows.Next() {
		var rep types.ResearchReport
		var depthProfile, generatedAt string
		if err := rows.Scan(&rep.Query, &rep.Body, &rep.WordCount, &rep.SearchesUsed,
			&depthProfile, &generatedAt); err != nil {
			return types.ResearchReport{}, fmt.Errorf("scanning report: %w", err)
		}
		rep.DepthProfile = splitDepths(depthProfile)
		rep.GeneratedAt, _ = time.Parse(time.RFC3339Nano, generatedAt)
		reps = append(reps, rep)
	}
	if err := rows.Err(); err != nil {
		return types.ResearchReport{}, err
	}

	switch len(reps) {
	case 0:
		return types.ResearchReport{}, fmt.Errorf("report %s not found", id)
	case 1:
		return reps[0], nil
	default:
		return types.ResearchReport{}, fmt.Errorf("report ID %s is ambiguous", id)
	}
}

// Latest returns the most recently generated report.
func (s *Store) Latest(ctx context.Context) (types.ResearchReport, error) {
	var rep types.ResearchReport
	var depthProfile, generatedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT query, body, word_count, searches_used, depth_profile, generated_at
		 FROM reports ORDER BY generated_at DESC LIMIT 1`,
	).Scan(&rep.Query, &rep.Body, &rep.WordCount, &rep.SearchesUsed, &depthProfile, &generatedAt)
	if err == sql.ErrNoRows {
		return types.ResearchReport{}, fmt.Errorf("archive is empty")
	}
	if err != nil {
		return types.ResearchReport{}, fmt.Errorf("looking up latest report: %w", err)
	}
	rep.DepthProfile = splitDepths(depthProfile)
	rep.GeneratedAt, _ = time.Parse(time.RFC3339Nano, generatedAt)
	return rep, nil
}

// SearchReports runs an FTS5 full-text query over archived queries and
// bodies, ranked by relevance.
func (s *Store) SearchReports(ctx context.Context, query string, limit int) ([]Summary, error) {
	if strings.TrimSpace(query) == "" {
		return s.List(ctx, limit)
	}
	if limit <= 0 {
		limit = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.query, r.word_count, r.char_count, r.searches_used, r.generated_at
		 FROM reports_fts
		 JOIN reports r ON r.rowid = reports_fts.rowid
		 WHERE reports_fts MATCH ?
		 ORDER BY reports_fts.rank LIMIT ?`,
		query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching reports: %w", err)
	}
	defer rows.Close()

	return scanSummaries(rows)
}

func scanSummaries(rows *sql.Rows) ([]Summary, error) {
	var results []Summary
	for rows.Next() {
		var (
			sum         Summary
			generatedAt string
		)
		if err := rows.Scan(&sum.ID, &sum.Query, &sum.WordCount, &sum.CharCount,
			&sum.SearchesUsed, &generatedAt); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		sum.GeneratedAt, _ = time.Parse(time.RFC3339Nano, generatedAt)
		results = append(results, sum)
	}
	return results, rows.Err()
}

// exportEntry holds one report in the export file, body included.
type exportEntry struct {
	Summary `yaml:",inline"`
	Body    string `yaml:"body"`
}

const exportLimit = 100000

// ExportYAML writes the full archive to archiveDir/index/export.yaml.
func (s *Store) ExportYAML(ctx context.Context) (string, error) {
	sums, err := s.List(ctx, exportLimit)
	if err != nil {
		return "", fmt.Errorf("querying for export: %w", err)
	}

	entries := make([]exportEntry, len(sums))
	for i, sum := range sums {
		rep, err := s.Get(ctx, sum.ID)
		if err != nil {
			return "", err
		}
		entries[i] = exportEntry{Summary: sum, Body: rep.Body}
	}

	data, err := yaml.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	path := filepath.Join(s.archiveDir, indexDir, "export.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing export: %w", err)
	}
	return path, nil
}
