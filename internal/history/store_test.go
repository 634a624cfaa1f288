package history_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/phoniks/bs/internal/history"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.Open(filepath.Join(t.TempDir(), "state", "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndList(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	first, err := store.Record(ctx, history.Entry{
		PKID:           "@cGs=.ed25519",
		FileCount:      2,
		ManifestDigest: "&ZGln.sha512_256",
		OutputPath:     "/tmp/manifest.json",
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if first.ID == "" || first.CreatedAt.IsZero() {
		t.Fatalf("entry not stamped: %+v", first)
	}

	second, err := store.Record(ctx, history.Entry{
		PKID:           "@cGs=.ed25519",
		FileCount:      5,
		ManifestDigest: "&b3Ro.sha512_256",
		OutputPath:     "-",
	})
	if err != nil {
		t.Fatalf("Record second: %v", err)
	}

	entries, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].ID != second.ID {
		t.Errorf("newest entry not first: got %s, want %s", entries[0].ID, second.ID)
	}
	if entries[1].FileCount != 2 {
		t.Errorf("got file count %d, want 2", entries[1].FileCount)
	}
}

func TestListRespectsLimit(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := store.Record(ctx, history.Entry{PKID: "@a.ed25519", OutputPath: "-"}); err != nil {
			t.Fatalf("Record %d: %v", i, err)
		}
	}

	entries, err := store.List(ctx, 3)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
}

func TestOpenReusesExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := history.Open(path)
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	if _, err := store.Record(context.Background(), history.Entry{PKID: "@a.ed25519", OutputPath: "-"}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := history.Open(path)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	defer reopened.Close()

	entries, err := reopened.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries after reopen, want 1", len(entries))
	}
}
