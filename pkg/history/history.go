// Package history keeps a SQLite log of pipeline runs.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no run matches.
var ErrNotFound = errors.New("run not found")

// Run status values.
const (
	StatusDone   = "done"
	StatusFailed = "failed"
)

// Run is one recorded pipeline execution.
type Run struct {
	ID          string
	Pipeline    string
	Seed        map[string]string
	Status      string
	Output      string
	Error       string
	FailedStage string
	CreatedAt   time.Time
	Duration    time.Duration
	Stages      []StageRun
}

// StageRun is one completed stage of a recorded run.
type StageRun struct {
	Index    int
	Name     string
	Output   string
	Adapter  string
	Model    string
	Content  string
	Duration time.Duration
}

// ListOptions filters ListRuns.
type ListOptions struct {
	Pipeline string
	Query    string
	Limit    int
}

type Store struct {
	db *sql.DB
}

// Open opens or creates the database at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		pipeline TEXT NOT NULL,
		seed_json TEXT NOT NULL,
		seed_text TEXT NOT NULL,
		status TEXT NOT NULL,
		output TEXT,
		error TEXT,
		failed_stage TEXT,
		created_at INTEGER NOT NULL,
		duration_ms INTEGER
	);

	CREATE TABLE IF NOT EXISTS run_stages (
		run_id TEXT NOT NULL,
		idx INTEGER NOT NULL,
		name TEXT NOT NULL,
		output_field TEXT NOT NULL,
		adapter TEXT,
		model TEXT,
		content TEXT NOT NULL,
		duration_ms INTEGER,
		PRIMARY KEY (run_id, idx),
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_pipeline ON runs(pipeline, created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveRun records a run and its stages. A missing ID or timestamp is
// filled in; the stored ID is returned.
func (s *Store) SaveRun(ctx context.Context, run Run) (string, error) {
	if run.Pipeline == "" {
		return "", fmt.Errorf("pipeline name is required")
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	if run.Status == "" {
		run.Status = StatusDone
	}

	seed := normalizeSeed(run.Seed)
	seedJSON, err := json.Marshal(seed)
	if err != nil {
		return "", err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, pipeline, seed_json, seed_text, status, output, error, failed_stage, created_at, duration_ms) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Pipeline, string(seedJSON), seedText(seed), run.Status, run.Output, run.Error, run.FailedStage,
		run.CreatedAt.UnixMilli(), run.Duration.Milliseconds())
	if err != nil {
		return "", err
	}

	for _, st := range run.Stages {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO run_stages (run_id, idx, name, output_field, adapter, model, content, duration_ms) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, st.Index, st.Name, st.Output, st.Adapter, st.Model, st.Content, st.Duration.Milliseconds())
		if err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return run.ID, nil
}

// ListRuns returns runs newest first, without stage detail.
func (s *Store) ListRuns(ctx context.Context, opts ListOptions) ([]Run, error) {
	query := `SELECT id, pipeline, seed_json, status, output, error, failed_stage, created_at, duration_ms FROM runs`
	var where []string
	var args []any
	if opts.Pipeline != "" {
		where = append(where, "pipeline = ?")
		args = append(args, opts.Pipeline)
	}
	if q := normalizeText(opts.Query); q != "" {
		where = append(where, `seed_text LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(q)+"%")
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, rowid DESC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// GetRun returns a run with its stages. id may be a unique prefix.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrNotFound
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, pipeline, seed_json, status, output, error, failed_stage, created_at, duration_ms FROM runs WHERE id = ? OR id LIKE ? ESCAPE '\' ORDER BY id = ? DESC LIMIT 2`,
		id, escapeLike(id)+"%", id)
	if err != nil {
		return nil, err
	}
	var matches []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		matches = append(matches, run)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch {
	case len(matches) == 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	case matches[0].ID != id && len(matches) > 1:
		return nil, fmt.Errorf("run id prefix %q is ambiguous", id)
	}
	run := matches[0]

	stageRows, err := s.db.QueryContext(ctx,
		`SELECT idx, name, output_field, adapter, model, content, duration_ms FROM run_stages WHERE run_id = ? ORDER BY idx`, run.ID)
	if err != nil {
		return nil, err
	}
	defer stageRows.Close()
	for stageRows.Next() {
		var st StageRun
		var adapter, model sql.NullString
		var durationMs sql.NullInt64
		if err := stageRows.Scan(&st.Index, &st.Name, &st.Output, &adapter, &model, &st.Content, &durationMs); err != nil {
			return nil, err
		}
		st.Adapter = adapter.String
		st.Model = model.String
		st.Duration = time.Duration(durationMs.Int64) * time.Millisecond
		run.Stages = append(run.Stages, st)
	}
	return run, stageRows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var (
		run                         Run
		seedJSON                    string
		output, errMsg, failedStage sql.NullString
		createdMs                   int64
		durationMs                  sql.NullInt64
	)
	if err := row.Scan(&run.ID, &run.Pipeline, &seedJSON, &run.Status, &output, &errMsg, &failedStage, &createdMs, &durationMs); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(seedJSON), &run.Seed); err != nil {
		return nil, fmt.Errorf("decode seed of run %s: %w", run.ID, err)
	}
	run.Output = output.String
	run.Error = errMsg.String
	run.FailedStage = failedStage.String
	run.CreatedAt = time.UnixMilli(createdMs)
	run.Duration = time.Duration(durationMs.Int64) * time.Millisecond
	return &run, nil
}

// normalizeSeed trims whitespace and applies Unicode NFC normalization so
// equal inputs are stored identically.
func normalizeSeed(seed map[string]string) map[string]string {
	out := make(map[string]string, len(seed))
	for k, v := range seed {
		out[k] = normalizeText(v)
	}
	return out
}

func seedText(seed map[string]string) string {
	keys := make([]string, 0, len(seed))
	for k := range seed {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, seed[k])
	}
	return strings.Join(parts, "\n")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// escapeLike makes s match literally inside a LIKE pattern escaped with '\'.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func normalizeText(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}
