package storage

import "testing"

func TestNewMemoryWithSchemaBootstraps(t *testing.T) {
	h, err := NewMemoryWithSchema()
	if err != nil {
		t.Fatalf("NewMemoryWithSchema: %v", err)
	}
	defer h.Close()

	var count int
	if err := h.DB().QueryRow("SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = 'elements'").Scan(&count); err != nil {
		t.Fatalf("query elements table: %v", err)
	}
	if count != 1 {
		t.Errorf("expected elements table to exist, got count=%d", count)
	}
}

func TestFromBytesRoundTripsThroughToBytes(t *testing.T) {
	h, err := NewMemoryWithSchema()
	if err != nil {
		t.Fatalf("NewMemoryWithSchema: %v", err)
	}

	if _, err := h.DB().Exec(`INSERT INTO duc_global_state
		(id, display_name, background_color, main_scope, scope_exponent_threshold, pruning_level)
		VALUES (1, 'doc', '#fff', 'mm', 3, 10)`); err != nil {
		t.Fatalf("insert: %v", err)
	}

	raw, err := h.ToBytes()
	if err != nil {
		t.Fatalf("ToBytes: %v", err)
	}
	h.Close()

	reopened, err := FromBytes(raw)
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	defer reopened.Close()

	var name string
	if err := reopened.DB().QueryRow("SELECT display_name FROM duc_global_state WHERE id = 1").Scan(&name); err != nil {
		t.Fatalf("query after round-trip: %v", err)
	}
	if name != "doc" {
		t.Errorf("expected display_name=doc, got %q", name)
	}

	if _, err := reopened.DB().Exec("INSERT INTO document_dictionary (key, value) VALUES ('a', 'b')"); err == nil {
		t.Errorf("expected write to fail under query_only pragma")
	}
}

func TestFromBytesRejectsEmptyBuffer(t *testing.T) {
	if _, err := FromBytes(nil); err == nil {
		t.Errorf("expected error for empty buffer")
	}
}
