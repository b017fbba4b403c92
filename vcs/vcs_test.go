package vcs

import (
	"testing"

	"github.com/ducflair/ducgo/storage"
)

func newHandle(t *testing.T) *storage.Handle {
	t.Helper()
	h, err := storage.NewMemoryWithSchema()
	if err != nil {
		t.Fatalf("NewMemoryWithSchema: %v", err)
	}
	t.Cleanup(func() { h.Close() })
	return h
}

func TestCreateCheckpointThenRestoreVersion(t *testing.T) {
	h := newHandle(t)
	vc := Open(h)

	if err := vc.CreateCheckpoint(CreateCheckpointInput{
		VersionNumber: 1,
		SchemaVersion: 1,
		Data:          []byte("hello world"),
		IsManualSave:  true,
	}); err != nil {
		t.Fatalf("CreateCheckpoint: %v", err)
	}

	restored, err := vc.RestoreVersion(1)
	if err != nil {
		t.Fatalf("RestoreVersion: %v", err)
	}
	if !restored.FromCheckpoint || string(restored.Data) != "hello world" {
		t.Fatalf("unexpected restore result: %+v", restored)
	}

	meta, err := vc.GetMetadata()
	if err != nil {
		t.Fatalf("GetMetadata: %v", err)
	}
	if meta == nil || meta.CurrentVersion != 1 || meta.TotalSize != int64(len("hello world")) {
		t.Fatalf("unexpected metadata: %+v", meta)
	}
}

func TestCreateDeltaChainAndRestore(t *testing.T) {
	h := newHandle(t)
	vc := Open(h)

	if err := vc.CreateCheckpoint(CreateCheckpointInput{
		VersionNumber: 1,
		SchemaVersion: 1,
		Data:          []byte("v1"),
	}); err != nil {
		t.Fatalf("CreateCheckpoint: %v", err)
	}

	var baseID string
	if err := h.DB().QueryRow(`SELECT id FROM checkpoints WHERE version_number = 1`).Scan(&baseID); err != nil {
		t.Fatalf("lookup base checkpoint: %v", err)
	}

	if err := vc.CreateDelta(CreateDeltaInput{
		BaseCheckpointID: baseID,
		VersionNumber:    2,
		SchemaVersion:    1,
		Payload:          []byte("v2"),
	}); err != nil {
		t.Fatalf("CreateDelta: %v", err)
	}
	if err := vc.CreateDelta(CreateDeltaInput{
		BaseCheckpointID: baseID,
		VersionNumber:    3,
		SchemaVersion:    1,
		Payload:          []byte("v3"),
	}); err != nil {
		t.Fatalf("CreateDelta: %v", err)
	}

	restored, err := vc.RestoreVersion(3)
	if err != nil {
		t.Fatalf("RestoreVersion(3): %v", err)
	}
	if restored.FromCheckpoint || string(restored.Data) != "v3" {
		t.Fatalf("unexpected restore at v3: %+v", restored)
	}

	restored2, err := vc.RestoreVersion(2)
	if err != nil {
		t.Fatalf("RestoreVersion(2): %v", err)
	}
	if string(restored2.Data) != "v2" {
		t.Fatalf("unexpected restore at v2: %+v", restored2)
	}

	versions, err := vc.ListVersions()
	if err != nil {
		t.Fatalf("ListVersions: %v", err)
	}
	if len(versions) != 3 {
		t.Fatalf("expected 3 version entries, got %d", len(versions))
	}
	if versions[0].VersionNumber != 1 || versions[0].VersionType != "checkpoint" {
		t.Fatalf("unexpected first entry: %+v", versions[0])
	}
	if versions[2].VersionNumber != 3 || versions[2].VersionType != "delta" {
		t.Fatalf("unexpected last entry: %+v", versions[2])
	}
}

func TestRevertToVersionCreatesNewHeadCheckpoint(t *testing.T) {
	h := newHandle(t)
	vc := Open(h)

	if err := vc.CreateCheckpoint(CreateCheckpointInput{VersionNumber: 1, SchemaVersion: 1, Data: []byte("a")}); err != nil {
		t.Fatalf("CreateCheckpoint 1: %v", err)
	}
	if err := vc.CreateCheckpoint(CreateCheckpointInput{VersionNumber: 2, SchemaVersion: 1, Data: []byte("b")}); err != nil {
		t.Fatalf("CreateCheckpoint 2: %v", err)
	}

	reverted, err := vc.RevertToVersion(1)
	if err != nil {
		t.Fatalf("RevertToVersion: %v", err)
	}
	if reverted.VersionNumber != 3 || string(reverted.Data) != "a" {
		t.Fatalf("unexpected revert result: %+v", reverted)
	}

	meta, err := vc.GetMetadata()
	if err != nil {
		t.Fatalf("GetMetadata: %v", err)
	}
	if meta.CurrentVersion != 3 {
		t.Fatalf("expected current version 3 after revert, got %d", meta.CurrentVersion)
	}
}

func TestPruneDeltasBeforeKeepsCheckpoints(t *testing.T) {
	h := newHandle(t)
	vc := Open(h)

	if err := vc.CreateCheckpoint(CreateCheckpointInput{VersionNumber: 1, SchemaVersion: 1, Data: []byte("a")}); err != nil {
		t.Fatalf("CreateCheckpoint: %v", err)
	}
	var baseID string
	if err := h.DB().QueryRow(`SELECT id FROM checkpoints WHERE version_number = 1`).Scan(&baseID); err != nil {
		t.Fatalf("lookup base: %v", err)
	}
	for i, payload := range [][]byte{[]byte("b"), []byte("c"), []byte("d")} {
		if err := vc.CreateDelta(CreateDeltaInput{
			BaseCheckpointID: baseID, VersionNumber: int64(i + 2), SchemaVersion: 1, Payload: payload,
		}); err != nil {
			t.Fatalf("CreateDelta %d: %v", i, err)
		}
	}

	n, err := vc.PruneDeltasBefore(4)
	if err != nil {
		t.Fatalf("PruneDeltasBefore: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 deltas pruned, got %d", n)
	}

	versions, err := vc.ListVersions()
	if err != nil {
		t.Fatalf("ListVersions: %v", err)
	}
	if len(versions) != 2 {
		t.Fatalf("expected checkpoint + 1 remaining delta, got %d entries", len(versions))
	}
}

func TestSetUserCheckpoint(t *testing.T) {
	h := newHandle(t)
	vc := Open(h)

	if err := vc.CreateCheckpoint(CreateCheckpointInput{VersionNumber: 1, SchemaVersion: 1, Data: []byte("a")}); err != nil {
		t.Fatalf("CreateCheckpoint: %v", err)
	}
	var cpID string
	if err := h.DB().QueryRow(`SELECT id FROM checkpoints WHERE version_number = 1`).Scan(&cpID); err != nil {
		t.Fatalf("lookup checkpoint: %v", err)
	}

	if err := vc.SetUserCheckpoint(cpID); err != nil {
		t.Fatalf("SetUserCheckpoint: %v", err)
	}

	meta, err := vc.GetMetadata()
	if err != nil {
		t.Fatalf("GetMetadata: %v", err)
	}
	if meta.UserCheckpointVersionID == nil || *meta.UserCheckpointVersionID != cpID {
		t.Fatalf("unexpected user checkpoint: %+v", meta)
	}
}

func TestReadVersionGraphReturnsNilWhenUninitialized(t *testing.T) {
	h := newHandle(t)
	vc := Open(h)

	g, err := vc.ReadVersionGraph()
	if err != nil {
		t.Fatalf("ReadVersionGraph: %v", err)
	}
	if g != nil {
		t.Fatalf("expected nil version graph before any writes, got %+v", g)
	}
}

func TestMaybeMigrateSchemaClosesChainOnBoundary(t *testing.T) {
	h := newHandle(t)
	vc := Open(h)

	if err := vc.CreateCheckpoint(CreateCheckpointInput{VersionNumber: 1, SchemaVersion: 1, Data: []byte("a")}); err != nil {
		t.Fatalf("CreateCheckpoint schema 1: %v", err)
	}
	if err := vc.CreateCheckpoint(CreateCheckpointInput{VersionNumber: 2, SchemaVersion: 2, Data: []byte("b")}); err != nil {
		t.Fatalf("CreateCheckpoint schema 2: %v", err)
	}

	var closedCount int
	if err := h.DB().QueryRow(`SELECT COUNT(*) FROM version_chains WHERE schema_version = 1 AND end_version IS NOT NULL`).
		Scan(&closedCount); err != nil {
		t.Fatalf("count closed chains: %v", err)
	}
	if closedCount != 1 {
		t.Fatalf("expected schema-1 chain to be closed, got %d closed chains", closedCount)
	}

	var migrations int
	if err := h.DB().QueryRow(`SELECT COUNT(*) FROM schema_migrations WHERE from_schema_version = 1 AND to_schema_version = 2`).
		Scan(&migrations); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if migrations != 1 {
		t.Fatalf("expected one recorded migration, got %d", migrations)
	}
}
