// Package kb holds the labour-law knowledge base: a local SQLite corpus of
// law sections with full-text search, used to ground clause evaluations.
package kb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"

	"github.com/hana-yusof/lawcheck/internal/llm"
)

// Section is one indexed law passage.
type Section struct {
	ID        int64  `json:"id,omitempty"`
	Act       string `json:"act"`
	Reference string `json:"reference"`
	Title     string `json:"title,omitempty"`
	Body      string `json:"body"`
}

// Retriever finds law sections relevant to a piece of clause text.
type Retriever interface {
	Search(ctx context.Context, query string, limit int) ([]llm.LawSection, error)
}

// Store is a SQLite-backed section index. FTS5 is used when the build
// supports it; otherwise searches fall back to LIKE matching.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
	fts    bool
}

// Open opens (or creates) the knowledge base at path. Use ":memory:" for tests.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open knowledge base: %w", err)
	}
	// the modernc driver is not safe for concurrent writers on one file
	db.SetMaxOpenConns(1)

	s := &Store{db: db, logger: logger}
	if err := s.init(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) init(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS law_section (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	act       TEXT NOT NULL,
	reference TEXT NOT NULL UNIQUE,
	title     TEXT NOT NULL DEFAULT '',
	body      TEXT NOT NULL
);`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create law_section: %w", err)
	}

	// external-content FTS index kept in sync by triggers
	stmts := []string{
		`CREATE VIRTUAL TABLE IF NOT EXISTS law_section_fts USING fts5(
			reference, title, body,
			content='law_section', content_rowid='id'
		);`,
		`CREATE TRIGGER IF NOT EXISTS law_section_ai AFTER INSERT ON law_section BEGIN
			INSERT INTO law_section_fts(rowid, reference, title, body)
			VALUES (new.id, new.reference, new.title, new.body);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS law_section_au AFTER UPDATE ON law_section BEGIN
			INSERT INTO law_section_fts(law_section_fts, rowid, reference, title, body)
			VALUES ('delete', old.id, old.reference, old.title, old.body);
			INSERT INTO law_section_fts(rowid, reference, title, body)
			VALUES (new.id, new.reference, new.title, new.body);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS law_section_ad AFTER DELETE ON law_section BEGIN
			INSERT INTO law_section_fts(law_section_fts, rowid, reference, title, body)
			VALUES ('delete', old.id, old.reference, old.title, old.body);
		END;`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			s.logger.Warn("kb.fts_unavailable", "error", err)
			s.fts = false
			return nil
		}
	}
	s.fts = true
	return nil
}

// Insert adds or replaces a section; the FTS index follows via triggers.
func (s *Store) Insert(ctx context.Context, sec Section) error {
	if sec.Reference == "" || sec.Body == "" {
		return fmt.Errorf("section needs reference and body")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO law_section (act, reference, title, body) VALUES (?, ?, ?, ?)
		 ON CONFLICT(reference) DO UPDATE SET act=excluded.act, title=excluded.title, body=excluded.body`,
		sec.Act, sec.Reference, sec.Title, sec.Body)
	if err != nil {
		return fmt.Errorf("insert section %q: %w", sec.Reference, err)
	}
	return nil
}

// Count reports how many sections are indexed.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM law_section`).Scan(&n)
	return n, err
}

// Search implements Retriever. The clause text is reduced to significant
// terms before matching; ranking is bm25 under FTS5, hit count under LIKE.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]llm.LawSection, error) {
	if limit <= 0 {
		limit = 3
	}
	terms := significantTerms(query, 12)
	if len(terms) == 0 {
		return nil, nil
	}
	if s.fts {
		return s.searchFTS(ctx, terms, limit)
	}
	return s.searchLike(ctx, terms, limit)
}

func (s *Store) searchFTS(ctx context.Context, terms []string, limit int) ([]llm.LawSection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ls.act, ls.reference, ls.title, ls.body
		 FROM law_section_fts
		 JOIN law_section ls ON ls.id = law_section_fts.rowid
		 WHERE law_section_fts MATCH ?
		 ORDER BY rank
		 LIMIT ?`, ftsQuery(terms), limit)
	if err != nil {
		return nil, fmt.Errorf("fts search: %w", err)
	}
	defer rows.Close()
	return scanSections(rows)
}

func (s *Store) searchLike(ctx context.Context, terms []string, limit int) ([]llm.LawSection, error) {
	// score = number of terms present in the body
	score := ""
	for i := range terms {
		if i > 0 {
			score += " + "
		}
		score += "(body LIKE ? COLLATE NOCASE)"
	}
	var args []any
	for _, t := range terms { // WHERE
		args = append(args, "%"+t+"%")
	}
	for _, t := range terms { // ORDER BY
		args = append(args, "%"+t+"%")
	}
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx,
		`SELECT act, reference, title, body FROM law_section
		 WHERE `+score+` > 0
		 ORDER BY `+score+` DESC
		 LIMIT ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("like search: %w", err)
	}
	defer rows.Close()
	return scanSections(rows)
}

func scanSections(rows *sql.Rows) ([]llm.LawSection, error) {
	var out []llm.LawSection
	for rows.Next() {
		var act, ref, title, body string
		if err := rows.Scan(&act, &ref, &title, &body); err != nil {
			return nil, fmt.Errorf("scan section: %w", err)
		}
		full := ref
		if act != "" {
			full = act + " " + ref
		}
		out = append(out, llm.LawSection{Reference: full, Title: title, Text: body})
	}
	return out, rows.Err()
}
