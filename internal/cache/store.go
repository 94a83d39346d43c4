package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"vttgen/internal/fileutil"
	"vttgen/internal/transcribe"
)

// DB is the transcript cache backed by SQLite.
type DB struct {
	db   *sql.DB
	path string
}

// Entry is one cached transcription.
type Entry struct {
	ID        string
	Key       string
	Input     string
	InputSize int64
	Params    Params
	Info      transcribe.Info
	Segments  []transcribe.Segment
	CreatedAt time.Time
}

// Summary describes an entry without its segments.
type Summary struct {
	ID           string
	Input        string
	InputSize    int64
	Params       Params
	Language     string
	SegmentCount int
	CreatedAt    time.Time
}

// Transcription replays the cached result.
func (e *Entry) Transcription() *transcribe.Transcription {
	return transcribe.FromSegments(e.Info, e.Segments)
}

// Open creates or connects to the cache database at path and applies migrations.
func Open(ctx context.Context, path string) (*DB, error) {
	if err := fileutil.EnsureParentDir(path); err != nil {
		return nil, fmt.Errorf("ensure cache directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &DB{db: db, path: path}
	if err := store.applyMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (d *DB) Path() string {
	if d == nil {
		return ""
	}
	return d.path
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

// Lookup returns the entry stored under key, or nil when there is none.
func (d *DB) Lookup(ctx context.Context, key string) (*Entry, error) {
	row := d.db.QueryRowContext(ctx, `SELECT
            id, cache_key, input_path, input_size, backend, model, device, compute_type,
            language_hint, beam_size, vad_filter, info_json, segments_json, created_at
        FROM transcripts WHERE cache_key = ?`, key)

	var (
		entry        Entry
		languageHint sql.NullString
		vad          int
		infoJSON     string
		segmentsJSON string
		created      string
	)
	err := row.Scan(
		&entry.ID, &entry.Key, &entry.Input, &entry.InputSize,
		&entry.Params.Backend, &entry.Params.Model, &entry.Params.Device, &entry.Params.ComputeType,
		&languageHint, &entry.Params.BeamSize, &vad, &infoJSON, &segmentsJSON, &created,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup transcript: %w", err)
	}
	entry.Params.Language = languageHint.String
	entry.Params.VADFilter = vad != 0
	if err := json.Unmarshal([]byte(infoJSON), &entry.Info); err != nil {
		return nil, fmt.Errorf("decode cached info: %w", err)
	}
	if err := json.Unmarshal([]byte(segmentsJSON), &entry.Segments); err != nil {
		return nil, fmt.Errorf("decode cached segments: %w", err)
	}
	entry.CreatedAt = parseTime(created)
	return &entry, nil
}

// Store inserts entry, replacing any entry with the same key. A missing ID
// or creation time is filled in.
func (d *DB) Store(ctx context.Context, entry *Entry) error {
	if entry == nil {
		return errors.New("entry is nil")
	}
	if entry.Key == "" {
		return errors.New("entry key is empty")
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	segments := entry.Segments
	if segments == nil {
		segments = []transcribe.Segment{}
	}
	infoJSON, err := json.Marshal(entry.Info)
	if err != nil {
		return fmt.Errorf("marshal info: %w", err)
	}
	segmentsJSON, err := json.Marshal(segments)
	if err != nil {
		return fmt.Errorf("marshal segments: %w", err)
	}

	_, err = d.db.ExecContext(ctx, `INSERT INTO transcripts (
            id, cache_key, input_path, input_size, backend, model, device, compute_type,
            language_hint, beam_size, vad_filter, info_json, segments_json, segment_count, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(cache_key) DO UPDATE SET
            id = excluded.id,
            input_path = excluded.input_path,
            input_size = excluded.input_size,
            info_json = excluded.info_json,
            segments_json = excluded.segments_json,
            segment_count = excluded.segment_count,
            created_at = excluded.created_at`,
		entry.ID,
		entry.Key,
		entry.Input,
		entry.InputSize,
		entry.Params.Backend,
		entry.Params.Model,
		entry.Params.Device,
		entry.Params.ComputeType,
		nullableString(entry.Params.Language),
		entry.Params.BeamSize,
		boolToInt(entry.Params.VADFilter),
		string(infoJSON),
		string(segmentsJSON),
		len(segments),
		entry.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("store transcript: %w", err)
	}
	return nil
}

// List returns summaries of every entry, newest first.
func (d *DB) List(ctx context.Context) ([]Summary, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT
            id, input_path, input_size, backend, model, device, compute_type,
            language_hint, beam_size, vad_filter, info_json, segment_count, created_at
        FROM transcripts ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list transcripts: %w", err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var (
			s            Summary
			languageHint sql.NullString
			vad          int
			infoJSON     string
			created      string
		)
		if err := rows.Scan(
			&s.ID, &s.Input, &s.InputSize,
			&s.Params.Backend, &s.Params.Model, &s.Params.Device, &s.Params.ComputeType,
			&languageHint, &s.Params.BeamSize, &vad, &infoJSON, &s.SegmentCount, &created,
		); err != nil {
			return nil, fmt.Errorf("scan transcript: %w", err)
		}
		s.Params.Language = languageHint.String
		s.Params.VADFilter = vad != 0
		var info transcribe.Info
		if err := json.Unmarshal([]byte(infoJSON), &info); err == nil && info.Language != nil {
			s.Language = *info.Language
		}
		s.CreatedAt = parseTime(created)
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// Purge deletes every entry and returns how many were removed.
func (d *DB) Purge(ctx context.Context) (int64, error) {
	res, err := d.db.ExecContext(ctx, `DELETE FROM transcripts`)
	if err != nil {
		return 0, fmt.Errorf("purge transcripts: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return removed, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
