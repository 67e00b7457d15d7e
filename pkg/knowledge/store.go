// Package knowledge is a small sqlite-backed document store that serves as
// the retrieval collaborator: ranked snippet search over a seeded corpus.
package knowledge

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	_ "modernc.org/sqlite"

	"github.com/zen-systems/askflow/pkg/agent"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	content TEXT NOT NULL,
	source  TEXT NOT NULL
);`

// Document is one entry to add to the store.
type Document struct {
	Content string
	Source  string
}

// Store implements agent.Retriever over a sqlite database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the store at the given path. Use ":memory:" for
// an ephemeral store.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("failed to create knowledge dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open knowledge store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate knowledge store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Add appends documents to the store.
func (s *Store) Add(ctx context.Context, docs []Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO documents (content, source) VALUES (?, ?)`,
			doc.Content, doc.Source,
		); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Count returns the number of stored documents.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n)
	return n, err
}

// Search returns the topK documents ranked by term overlap with the query.
// Distance is 1 - overlap/|query terms|, so 0 is a full match.
func (s *Store) Search(ctx context.Context, query string, topK int) ([]agent.Document, error) {
	if topK <= 0 {
		topK = 3
	}

	rows, err := s.db.QueryContext(ctx, `SELECT content, source FROM documents ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("knowledge search failed: %w", err)
	}
	defer rows.Close()

	terms := tokenize(query)
	var results []agent.Document
	for rows.Next() {
		var content, source string
		if err := rows.Scan(&content, &source); err != nil {
			return nil, err
		}
		results = append(results, agent.Document{
			Content:  content,
			Metadata: map[string]string{"source": source},
			Distance: distance(terms, content),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func distance(terms []string, content string) float64 {
	if len(terms) == 0 {
		return 1
	}
	haystack := strings.ToLower(content)
	matched := 0
	for _, term := range terms {
		if strings.Contains(haystack, term) {
			matched++
		}
	}
	return 1 - float64(matched)/float64(len(terms))
}

func tokenize(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]bool, len(fields))
	var terms []string
	for _, f := range fields {
		if len(f) < 3 || seen[f] {
			continue
		}
		seen[f] = true
		terms = append(terms, f)
	}
	return terms
}
