package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"vttgen/internal/transcribe"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "nested", "transcripts.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func sampleParams() Params {
	return Params{
		Backend:     "faster-whisper",
		Model:       "small",
		Device:      "cpu",
		ComputeType: "int8",
		BeamSize:    5,
		VADFilter:   true,
	}
}

func TestKeyDependsOnEveryParam(t *testing.T) {
	base := sampleParams()
	baseKey := Key("abc", base)
	if Key("ABC ", base) != baseKey {
		t.Fatal("expected input hash to be case and space insensitive")
	}
	if len(baseKey) != 64 {
		t.Fatalf("unexpected key length %d", len(baseKey))
	}

	variants := []func(*Params){
		func(p *Params) { p.Backend = "openai" },
		func(p *Params) { p.Endpoint = "http://localhost:8080/v1" },
		func(p *Params) { p.Model = "medium" },
		func(p *Params) { p.Device = "cuda" },
		func(p *Params) { p.ComputeType = "float16" },
		func(p *Params) { p.Language = "en" },
		func(p *Params) { p.BeamSize = 1 },
		func(p *Params) { p.VADFilter = false },
	}
	for i, mutate := range variants {
		p := base
		mutate(&p)
		if Key("abc", p) == baseKey {
			t.Fatalf("variant %d produced the same key", i)
		}
	}
	if Key("abd", base) == baseKey {
		t.Fatal("expected different input hash to change key")
	}
}

func TestStoreLookupRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if entry, err := db.Lookup(ctx, "missing"); err != nil || entry != nil {
		t.Fatalf("expected miss, got %v %v", entry, err)
	}

	params := sampleParams()
	params.Language = "fr"
	entry := &Entry{
		Key:       Key("hash", params),
		Input:     "/media/clip.mp4",
		InputSize: 2048,
		Params:    params,
		Info: transcribe.Info{
			Language:            transcribe.String("fr"),
			LanguageProbability: transcribe.Float(0.91),
		},
		Segments: []transcribe.Segment{
			{Start: transcribe.Float(0), End: transcribe.Float(1.5), Text: " bonjour"},
			{Start: transcribe.Float(1.5), Text: "sans fin"},
		},
	}
	if err := db.Store(ctx, entry); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if entry.ID == "" || entry.CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamp to be assigned: %+v", entry)
	}

	got, err := db.Lookup(ctx, entry.Key)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got == nil {
		t.Fatal("expected hit")
	}
	if got.ID != entry.ID || got.Input != entry.Input || got.InputSize != 2048 {
		t.Fatalf("unexpected entry: %+v", got)
	}
	if got.Params != params {
		t.Fatalf("params = %+v, want %+v", got.Params, params)
	}
	if got.Info.Language == nil || *got.Info.Language != "fr" || got.Info.Duration != nil {
		t.Fatalf("unexpected info: %+v", got.Info)
	}
	if len(got.Segments) != 2 || got.Segments[1].End != nil || got.Segments[0].Text != " bonjour" {
		t.Fatalf("unexpected segments: %+v", got.Segments)
	}
	if !got.CreatedAt.Equal(entry.CreatedAt) {
		t.Fatalf("created_at = %v, want %v", got.CreatedAt, entry.CreatedAt)
	}

	count := 0
	tr := got.Transcription()
	for _, err := range tr.Segments {
		if err != nil {
			t.Fatalf("replay: %v", err)
		}
		count++
	}
	if count != 2 {
		t.Fatalf("replayed %d segments", count)
	}
}

func TestStoreReplacesSameKey(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	key := Key("hash", sampleParams())

	first := &Entry{Key: key, Input: "/a.mp4", Params: sampleParams()}
	if err := db.Store(ctx, first); err != nil {
		t.Fatalf("Store: %v", err)
	}
	second := &Entry{Key: key, Input: "/b.mp4", Params: sampleParams(), Segments: []transcribe.Segment{{Text: "x"}}}
	if err := db.Store(ctx, second); err != nil {
		t.Fatalf("Store: %v", err)
	}

	summaries, err := db.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected one entry, got %d", len(summaries))
	}
	if summaries[0].Input != "/b.mp4" || summaries[0].SegmentCount != 1 {
		t.Fatalf("unexpected summary: %+v", summaries[0])
	}
}

func TestListNewestFirstAndPurge(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	old := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	params := sampleParams()
	if err := db.Store(ctx, &Entry{Key: "k1", Input: "/old.mp4", Params: params, CreatedAt: old}); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if err := db.Store(ctx, &Entry{
		Key:    "k2",
		Input:  "/new.mp4",
		Params: params,
		Info:   transcribe.Info{Language: transcribe.String("en")},
	}); err != nil {
		t.Fatalf("Store: %v", err)
	}

	summaries, err := db.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(summaries) != 2 || summaries[0].Input != "/new.mp4" || summaries[1].Input != "/old.mp4" {
		t.Fatalf("unexpected order: %+v", summaries)
	}
	if summaries[0].Language != "en" || summaries[1].Language != "" {
		t.Fatalf("unexpected languages: %+v", summaries)
	}

	removed, err := db.Purge(ctx)
	if err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if removed != 2 {
		t.Fatalf("removed %d, want 2", removed)
	}
	summaries, err = db.List(ctx)
	if err != nil || len(summaries) != 0 {
		t.Fatalf("expected empty cache, got %v %v", summaries, err)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transcripts.db")
	ctx := context.Background()

	db, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := db.Store(ctx, &Entry{Key: "k", Input: "/x", Params: sampleParams()}); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db, err = Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	if db.Path() != path {
		t.Fatalf("unexpected path %q", db.Path())
	}
	entry, err := db.Lookup(ctx, "k")
	if err != nil || entry == nil {
		t.Fatalf("expected entry after reopen, got %v %v", entry, err)
	}
	if entry.Segments == nil || len(entry.Segments) != 0 {
		t.Fatalf("expected empty non-nil segments, got %#v", entry.Segments)
	}
}

func TestStoreRejectsEmptyKey(t *testing.T) {
	db := openTestDB(t)
	if err := db.Store(context.Background(), &Entry{Input: "/x"}); err == nil {
		t.Fatal("expected error for empty key")
	}
	if err := db.Store(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil entry")
	}
}
