package export

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"codelinks/internal/analyse"
	"codelinks/internal/logging"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Store keeps marked content in an SQLite database for ad-hoc queries.
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore creates or opens a marked content database.
func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, dbPath: dbPath}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS marked_content (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		filepath TEXT NOT NULL,
		remote_url TEXT,
		start_row INTEGER NOT NULL,
		start_column INTEGER NOT NULL,
		end_row INTEGER NOT NULL,
		end_column INTEGER NOT NULL,
		tagged_scope TEXT,
		type TEXT NOT NULL,
		marker TEXT,
		need_id TEXT,
		need_ids_json TEXT,
		need_json TEXT,
		rst TEXT,
		analysed_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_marked_content_need_id ON marked_content(need_id);
	CREATE INDEX IF NOT EXISTS idx_marked_content_filepath ON marked_content(filepath);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Replace swaps the stored content for contents in one transaction.
func (s *Store) Replace(ctx context.Context, contents []analyse.MarkedContent) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM marked_content"); err != nil {
		return fmt.Errorf("failed to clear marked content: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO marked_content (
			filepath, remote_url, start_row, start_column, end_row, end_column,
			tagged_scope, type, marker, need_id, need_ids_json, need_json, rst, analysed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, c := range contents {
		needIDs, err := nullableJSON(c.NeedIDs, len(c.NeedIDs) > 0)
		if err != nil {
			return err
		}
		need, err := nullableJSON(c.Need, c.Need != nil)
		if err != nil {
			return err
		}
		_, err = stmt.ExecContext(ctx,
			c.FilePath, nullString(c.RemoteURL),
			c.SourceMap.Start.Row, c.SourceMap.Start.Column,
			c.SourceMap.End.Row, c.SourceMap.End.Column,
			nullString(c.TaggedScope), string(c.Type), nullString(c.Marker),
			nullString(c.NeedID()), needIDs, need, nullString(c.Rst), now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert %s:%d: %w", c.FilePath, c.Line(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	logging.Get(logging.CategoryExport).Info("marked content stored",
		zap.String("db", s.dbPath), zap.Int("rows", len(contents)))
	return nil
}

const selectColumns = `filepath, remote_url, start_row, start_column, end_row, end_column,
	tagged_scope, type, marker, need_ids_json, need_json, rst`

// Need returns the definitions of a need id.
func (s *Store) Need(ctx context.Context, id string) ([]analyse.MarkedContent, error) {
	return s.query(ctx, `SELECT `+selectColumns+` FROM marked_content
		WHERE type = ? AND need_id = ? ORDER BY filepath, start_row`, string(analyse.TypeNeed), id)
}

// RefsTo returns the need-id-refs entries that reference id.
func (s *Store) RefsTo(ctx context.Context, id string) ([]analyse.MarkedContent, error) {
	return s.query(ctx, `SELECT `+selectColumns+` FROM marked_content
		WHERE type = ? AND EXISTS (SELECT 1 FROM json_each(need_ids_json) WHERE value = ?)
		ORDER BY filepath, start_row`, string(analyse.TypeNeedIDRefs), id)
}

// Rsts returns the marked rst entries of a file, or of every file when
// filePath is empty.
func (s *Store) Rsts(ctx context.Context, filePath string) ([]analyse.MarkedContent, error) {
	return s.query(ctx, `SELECT `+selectColumns+` FROM marked_content
		WHERE type = ? AND (? = '' OR filepath = ?) ORDER BY filepath, start_row`,
		string(analyse.TypeRst), filePath, filePath)
}

// Counts returns the number of stored rows per content type.
func (s *Store) Counts(ctx context.Context) (map[analyse.ContentType]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT type, COUNT(*) FROM marked_content GROUP BY type")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[analyse.ContentType]int)
	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, err
		}
		counts[analyse.ContentType(typ)] = n
	}
	return counts, rows.Err()
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]analyse.MarkedContent, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []analyse.MarkedContent
	for rows.Next() {
		var (
			c                        analyse.MarkedContent
			typ                      string
			remoteURL, scope, marker sql.NullString
			needIDs, need, rst       sql.NullString
		)
		if err := rows.Scan(&c.FilePath, &remoteURL,
			&c.SourceMap.Start.Row, &c.SourceMap.Start.Column,
			&c.SourceMap.End.Row, &c.SourceMap.End.Column,
			&scope, &typ, &marker, &needIDs, &need, &rst); err != nil {
			return nil, err
		}
		c.RemoteURL, c.TaggedScope, c.Marker, c.Rst = remoteURL.String, scope.String, marker.String, rst.String
		c.Type = analyse.ContentType(typ)
		if needIDs.Valid {
			if err := json.Unmarshal([]byte(needIDs.String), &c.NeedIDs); err != nil {
				return nil, fmt.Errorf("failed to decode need ids: %w", err)
			}
		}
		if need.Valid {
			if err := json.Unmarshal([]byte(need.String), &c.Need); err != nil {
				return nil, fmt.Errorf("failed to decode need: %w", err)
			}
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullableJSON(v any, valid bool) (sql.NullString, error) {
	if !valid {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode json column: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}
