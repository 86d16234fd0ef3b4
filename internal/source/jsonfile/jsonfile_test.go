package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeDataset(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dataframe.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	return path
}

func TestLoadTolerantDecode(t *testing.T) {
	path := writeDataset(t, `[
		{"Name":"John Doe","Email":"john@x.com","Value":50.0,"Entry Date":"2024-01-15","Gclid":"g1"},
		{"Name":"Jane Smith","Email":"jane@x.com","Value":"75.50","Entry Date":"garbage","Fbclid":123}
	]`)

	records, err := New(path).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("loaded %d records, want 2", len(records))
	}

	if records[0].Value.Cents != 5000 || !records[0].EntryDate.Valid {
		t.Errorf("first record = %+v", records[0])
	}
	// String values coerce, invalid dates stay marked invalid,
	// non-string click ids degrade to empty.
	if records[1].Value.Cents != 7550 {
		t.Errorf("string value = %d cents, want 7550", records[1].Value.Cents)
	}
	if records[1].EntryDate.Valid {
		t.Error("garbage date should be invalid")
	}
	if records[1].Fbclid != "" {
		t.Errorf("numeric Fbclid should decode to empty, got %q", records[1].Fbclid)
	}
}

func TestLoadMissingFile(t *testing.T) {
	src := New(filepath.Join(t.TempDir(), "missing.json"))
	if _, err := src.Load(context.Background()); err == nil {
		t.Fatal("missing file should error")
	}
}

func TestLoadNonArrayPayload(t *testing.T) {
	path := writeDataset(t, `{"not":"an array"}`)
	if _, err := New(path).Load(context.Background()); err == nil {
		t.Fatal("non-array payload should error")
	}
}

func TestLoadCancelledContext(t *testing.T) {
	path := writeDataset(t, `[]`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(path).Load(ctx); err == nil {
		t.Fatal("cancelled context should error")
	}
}
