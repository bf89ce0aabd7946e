package record

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestCreateAndGetRecord(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	created, err := store.CreateRecord(ctx, "Old Mill", "A watermill from 1820")
	if err != nil {
		t.Fatalf("CreateRecord() error: %v", err)
	}
	if created.ID == "" {
		t.Error("expected a generated ID")
	}
	if created.Status != StatusDraft {
		t.Errorf("Status = %q, want %q", created.Status, StatusDraft)
	}

	got, err := store.GetRecord(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetRecord() error: %v", err)
	}
	if got.Title != "Old Mill" || got.Description != "A watermill from 1820" {
		t.Errorf("got %q / %q", got.Title, got.Description)
	}
	if got.LOM == nil || len(got.LOM) != 0 {
		t.Errorf("LOM = %v, want empty map", got.LOM)
	}
}

func TestGetRecordNotFound(t *testing.T) {
	store := testStore(t)

	_, err := store.GetRecord(context.Background(), "no-such-id")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestListRecordsNewestFirst(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	first, err := store.CreateRecord(ctx, "First", "")
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	second, err := store.CreateRecord(ctx, "Second", "")
	if err != nil {
		t.Fatal(err)
	}

	records, err := store.ListRecords(ctx)
	if err != nil {
		t.Fatalf("ListRecords() error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].ID != second.ID || records[1].ID != first.ID {
		t.Errorf("order = [%s, %s], want newest first", records[0].Title, records[1].Title)
	}
}

func TestUpdateRecord(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	rec, err := store.CreateRecord(ctx, "Draft title", "Draft description")
	if err != nil {
		t.Fatal(err)
	}

	t.Run("partial update keeps other fields", func(t *testing.T) {
		updated, err := store.UpdateRecord(ctx, rec.ID, "New title", "", "")
		if err != nil {
			t.Fatalf("UpdateRecord() error: %v", err)
		}
		if updated.Title != "New title" {
			t.Errorf("Title = %q", updated.Title)
		}
		if updated.Description != "Draft description" {
			t.Errorf("Description = %q, want unchanged", updated.Description)
		}
	})

	t.Run("status transition", func(t *testing.T) {
		updated, err := store.UpdateRecord(ctx, rec.ID, "", "", StatusPublished)
		if err != nil {
			t.Fatalf("UpdateRecord() error: %v", err)
		}
		if updated.Status != StatusPublished {
			t.Errorf("Status = %q", updated.Status)
		}
	})

	t.Run("invalid status rejected", func(t *testing.T) {
		if _, err := store.UpdateRecord(ctx, rec.ID, "", "", "archived"); err == nil {
			t.Error("expected error for invalid status")
		}
	})
}

func TestSetLOMRoundTrip(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	rec, err := store.CreateRecord(ctx, "Cathedral", "")
	if err != nil {
		t.Fatal(err)
	}

	tree := map[string]any{
		"title":    "Cathedral of Light",
		"keywords": []any{"gothic", "architecture"},
		"lifecycle": map[string]any{
			"version": "2",
			"status":  "final",
		},
	}
	if err := store.SetLOM(ctx, rec.ID, tree); err != nil {
		t.Fatalf("SetLOM() error: %v", err)
	}

	got, err := store.GetRecord(ctx, rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.LOM["title"] != "Cathedral of Light" {
		t.Errorf("LOM title = %v", got.LOM["title"])
	}
	kw, ok := got.LOM["keywords"].([]any)
	if !ok || len(kw) != 2 {
		t.Errorf("LOM keywords = %v", got.LOM["keywords"])
	}
}

func TestSetLOMNotFound(t *testing.T) {
	store := testStore(t)

	err := store.SetLOM(context.Background(), "missing", map[string]any{"title": "x"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestDeleteRecordCascadesMedia(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	rec, err := store.CreateRecord(ctx, "With media", "")
	if err != nil {
		t.Fatal(err)
	}
	m := &Media{
		ID:        "m1",
		RecordID:  rec.ID,
		FileType:  "image",
		Filename:  "photo.jpg",
		Path:      "media/" + rec.ID + "/m1.jpg",
		Size:      42,
		CreatedAt: time.Now().UTC(),
	}
	if err := store.InsertMedia(ctx, m); err != nil {
		t.Fatal(err)
	}

	removed, err := store.DeleteRecord(ctx, rec.ID)
	if err != nil {
		t.Fatalf("DeleteRecord() error: %v", err)
	}
	if len(removed) != 1 || removed[0].ID != "m1" {
		t.Errorf("removed media = %v, want the attached row", removed)
	}

	if _, err := store.GetMedia(ctx, "m1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("media still present after record delete: %v", err)
	}
}

func TestDeleteRecordNotFound(t *testing.T) {
	store := testStore(t)

	_, err := store.DeleteRecord(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestMediaLifecycle(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	rec, err := store.CreateRecord(ctx, "Media record", "")
	if err != nil {
		t.Fatal(err)
	}

	base := time.Now().UTC()
	for i, id := range []string{"a1", "b2", "c3"} {
		m := &Media{
			ID:        id,
			RecordID:  rec.ID,
			FileType:  "image",
			Filename:  id + ".png",
			Path:      "media/" + rec.ID + "/" + id + ".png",
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := store.InsertMedia(ctx, m); err != nil {
			t.Fatal(err)
		}
	}

	media, err := store.ListMedia(ctx, rec.ID)
	if err != nil {
		t.Fatalf("ListMedia() error: %v", err)
	}
	if len(media) != 3 {
		t.Fatalf("got %d media rows, want 3", len(media))
	}
	for i, want := range []string{"a1", "b2", "c3"} {
		if media[i].ID != want {
			t.Errorf("media[%d].ID = %q, want %q", i, media[i].ID, want)
		}
	}

	deleted, err := store.DeleteMedia(ctx, "b2")
	if err != nil {
		t.Fatalf("DeleteMedia() error: %v", err)
	}
	if deleted.Filename != "b2.png" {
		t.Errorf("deleted.Filename = %q", deleted.Filename)
	}

	media, err = store.ListMedia(ctx, rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(media) != 2 {
		t.Errorf("got %d media rows after delete, want 2", len(media))
	}
}

func TestInsertMediaForeignKey(t *testing.T) {
	store := testStore(t)

	m := &Media{
		ID:        "orphan",
		RecordID:  "no-such-record",
		FileType:  "image",
		Filename:  "x.png",
		CreatedAt: time.Now().UTC(),
	}
	if err := store.InsertMedia(context.Background(), m); err == nil {
		t.Error("expected foreign key violation for orphan media")
	}
}

func TestReopenChecksSchemaVersion(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "reopen.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	rec, err := store.CreateRecord(context.Background(), "Persisted", "")
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(dbPath)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.GetRecord(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("GetRecord() after reopen: %v", err)
	}
	if got.Title != "Persisted" {
		t.Errorf("Title = %q", got.Title)
	}
}
