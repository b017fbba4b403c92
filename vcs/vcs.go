// Package vcs implements the Version Control Engine: the two-tier
// checkpoint/delta history subsystem layered directly on top of a Storage
// Image Handle that already carries the schema catalog. Grounded
// operation-for-operation on the original implementation's
// version_control.rs (restore_version's checkpoint-then-delta-chain lookup,
// resolve_chain_id's "open chain per schema version" bookkeeping,
// maybe_migrate_schema's chain-closing migration, and the prune/revert SQL
// shapes). Deltas are zlib-compressed; this is intentionally a different
// codec from the outer .duc container's raw-deflate wrapping (package
// container) and the two must never be confused.
package vcs

import (
	"bytes"
	"compress/zlib"
	"database/sql"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/ducflair/ducgo/duerr"
	"github.com/ducflair/ducgo/model"
	"github.com/ducflair/ducgo/schema"
	"github.com/ducflair/ducgo/storage"
)

// VersionControl operates directly on a Storage Image Handle's tables.
// Like the Handle it wraps, it is not safe for concurrent use.
type VersionControl struct {
	h *storage.Handle
}

// Open wraps a handle that already carries the schema (including the
// version-control tables) for version-control operations.
func Open(h *storage.Handle) *VersionControl { return &VersionControl{h: h} }

func nowMillis() int64 { return time.Now().UnixMilli() }

func newID() string { return uuid.NewString() }

// compressDelta zlib-compresses a delta payload. Distinct from package
// container's raw DEFLATE container codec.
func compressDelta(payload []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(payload); err != nil {
		return nil, duerr.Wrap(err, duerr.Io, "vcs: zlib-compress delta")
	}
	if err := w.Close(); err != nil {
		return nil, duerr.Wrap(err, duerr.Io, "vcs: close zlib writer")
	}
	return buf.Bytes(), nil
}

func decompressDelta(changeset []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(changeset))
	if err != nil {
		return nil, duerr.Wrap(err, duerr.InvalidData, "vcs: open zlib reader for delta")
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, duerr.Wrap(err, duerr.InvalidData, "vcs: inflate delta changeset")
	}
	return out, nil
}

// CreateCheckpointInput is the caller-supplied content of a new checkpoint.
type CreateCheckpointInput struct {
	VersionNumber int64
	SchemaVersion int32
	Data          []byte
	Description   *string
	IsManualSave  bool
	UserID        *string
}

// CreateDeltaInput is the caller-supplied content of a new delta.
type CreateDeltaInput struct {
	BaseCheckpointID string
	VersionNumber    int64
	SchemaVersion    int32
	Payload          []byte
	Description      *string
	IsManualSave     bool
	UserID           *string
}

// CreateCheckpoint inserts a new checkpoint, first closing out any schema
// migration the new checkpoint's schema version implies, resolving (or
// opening) the checkpoint's version chain, and finally advancing the
// version_graph pointer.
func (vc *VersionControl) CreateCheckpoint(in CreateCheckpointInput) error {
	db := vc.h.DB()
	if err := vc.maybeMigrateSchema(db, in.SchemaVersion); err != nil {
		return err
	}
	chainID, err := vc.resolveChainID(db, in.SchemaVersion, in.VersionNumber)
	if err != nil {
		return err
	}

	id := newID()
	_, err = db.Exec(`INSERT OR REPLACE INTO `+schema.TableCheckpoints+
		` (id, parent_id, chain_id, version_number, schema_version, timestamp, description, is_manual_save,
		   is_schema_boundary, user_id, data, size_bytes)
		  VALUES (?,NULL,?,?,?,?,?,?,0,?,?,?)`,
		id, chainID, in.VersionNumber, in.SchemaVersion, nowMillis(), nullableString(in.Description),
		in.IsManualSave, nullableString(in.UserID), in.Data, len(in.Data))
	if err != nil {
		return duerr.Wrap(err, duerr.Db, "vcs: insert checkpoint")
	}

	return vc.updateVersionGraphPointer(db, in.VersionNumber, in.SchemaVersion, id)
}

// CreateDelta inserts a new delta referencing an existing checkpoint,
// assigning the next dense delta_sequence number within that checkpoint's
// group and zlib-compressing the payload before storage.
func (vc *VersionControl) CreateDelta(in CreateDeltaInput) error {
	db := vc.h.DB()
	if err := vc.maybeMigrateSchema(db, in.SchemaVersion); err != nil {
		return err
	}
	chainID, err := vc.resolveChainID(db, in.SchemaVersion, in.VersionNumber)
	if err != nil {
		return err
	}

	var seq int64
	err = db.QueryRow(`SELECT COALESCE(MAX(delta_sequence),0)+1 FROM `+schema.TableDeltas+
		` WHERE base_checkpoint_id = ?`, in.BaseCheckpointID).Scan(&seq)
	if err != nil {
		return duerr.Wrap(err, duerr.Db, "vcs: compute delta sequence")
	}

	changeset, err := compressDelta(in.Payload)
	if err != nil {
		return err
	}

	id := newID()
	_, err = db.Exec(`INSERT OR REPLACE INTO `+schema.TableDeltas+
		` (id, parent_id, base_checkpoint_id, chain_id, delta_sequence, version_number, schema_version, timestamp,
		   description, is_manual_save, user_id, changeset, size_bytes)
		  VALUES (?,NULL,?,?,?,?,?,?,?,?,?,?,?)`,
		id, in.BaseCheckpointID, chainID, seq, in.VersionNumber, in.SchemaVersion, nowMillis(),
		nullableString(in.Description), in.IsManualSave, nullableString(in.UserID), changeset, len(in.Payload))
	if err != nil {
		return duerr.Wrap(err, duerr.Db, "vcs: insert delta")
	}

	return vc.updateVersionGraphPointer(db, in.VersionNumber, in.SchemaVersion, id)
}

// RestoreVersion reconstructs the document bytes as of version v: a direct
// checkpoint hit returns its data verbatim; otherwise the owning delta's
// base checkpoint is loaded and every delta in sequence up to v is applied
// by taking the last one's decompressed changeset (deltas are full
// snapshots, not incremental diffs -- "applying" means "the newest wins").
func (vc *VersionControl) RestoreVersion(v int64) (*model.RestoredVersion, error) {
	db := vc.h.DB()

	var cpID string
	var cpSchema int32
	var cpData []byte
	err := db.QueryRow(`SELECT id, schema_version, data FROM `+schema.TableCheckpoints+
		` WHERE version_number = ?`, v).Scan(&cpID, &cpSchema, &cpData)
	if err == nil {
		return &model.RestoredVersion{VersionNumber: v, SchemaVersion: cpSchema, Data: cpData, FromCheckpoint: true}, nil
	}
	if err != sql.ErrNoRows {
		return nil, duerr.Wrap(err, duerr.Db, "vcs: lookup checkpoint by version")
	}

	var schemaVersion int32
	var baseCheckpointID string
	err = db.QueryRow(`SELECT schema_version, base_checkpoint_id FROM `+schema.TableDeltas+
		` WHERE version_number = ?`, v).Scan(&schemaVersion, &baseCheckpointID)
	if err == sql.ErrNoRows {
		return nil, duerr.New(duerr.InvalidData, fmt.Sprintf("vcs: no checkpoint or delta at version %d", v))
	}
	if err != nil {
		return nil, duerr.Wrap(err, duerr.Db, "vcs: lookup delta by version")
	}

	var baseData []byte
	var baseVersion int64
	err = db.QueryRow(`SELECT data, version_number FROM `+schema.TableCheckpoints+` WHERE id = ?`, baseCheckpointID).
		Scan(&baseData, &baseVersion)
	if err != nil {
		return nil, duerr.Wrap(err, duerr.InvalidData, "vcs: base checkpoint missing for delta chain")
	}

	rows, err := db.Query(`SELECT changeset FROM `+schema.TableDeltas+
		` WHERE base_checkpoint_id = ? AND schema_version = ? AND version_number > ? AND version_number <= ?
		  ORDER BY delta_sequence ASC`, baseCheckpointID, schemaVersion, baseVersion, v)
	if err != nil {
		return nil, duerr.Wrap(err, duerr.Db, "vcs: query delta chain")
	}
	defer rows.Close()

	data := baseData
	found := false
	for rows.Next() {
		var changeset []byte
		if err := rows.Scan(&changeset); err != nil {
			return nil, duerr.Wrap(err, duerr.Db, "vcs: scan delta changeset")
		}
		decompressed, err := decompressDelta(changeset)
		if err != nil {
			return nil, err
		}
		data = decompressed
		found = true
	}
	if err := rows.Err(); err != nil {
		return nil, duerr.Wrap(err, duerr.Db, "vcs: iterate delta chain")
	}
	_ = found // the base checkpoint's data is itself a valid restore if no delta in range matched

	return &model.RestoredVersion{VersionNumber: v, SchemaVersion: schemaVersion, Data: data, FromCheckpoint: false}, nil
}

// RestoreCheckpoint restores a checkpoint directly by id, bypassing version
// number lookup.
func (vc *VersionControl) RestoreCheckpoint(id string) (*model.RestoredVersion, error) {
	var v int64
	var sv int32
	var data []byte
	err := vc.h.DB().QueryRow(`SELECT version_number, schema_version, data FROM `+schema.TableCheckpoints+
		` WHERE id = ?`, id).Scan(&v, &sv, &data)
	if err == sql.ErrNoRows {
		return nil, duerr.New(duerr.InvalidData, "vcs: no checkpoint with id "+id)
	}
	if err != nil {
		return nil, duerr.Wrap(err, duerr.Db, "vcs: restore checkpoint")
	}
	return &model.RestoredVersion{VersionNumber: v, SchemaVersion: sv, Data: data, FromCheckpoint: true}, nil
}

// ListVersions merges checkpoints and deltas into one listing, tagged by
// VersionType, ordered by version number.
func (vc *VersionControl) ListVersions() ([]model.VersionEntry, error) {
	db := vc.h.DB()
	var out []model.VersionEntry

	cpRows, err := db.Query(`SELECT id, version_number, schema_version, timestamp, description, is_manual_save,
		user_id, size_bytes FROM ` + schema.TableCheckpoints)
	if err != nil {
		return nil, duerr.Wrap(err, duerr.Db, "vcs: query checkpoints for listing")
	}
	for cpRows.Next() {
		var e model.VersionEntry
		var description, userID sql.NullString
		if err := cpRows.Scan(&e.ID, &e.VersionNumber, &e.SchemaVersion, &e.Timestamp, &description,
			&e.IsManualSave, &userID, &e.SizeBytes); err != nil {
			cpRows.Close()
			return nil, duerr.Wrap(err, duerr.Db, "vcs: scan checkpoint listing row")
		}
		e.Description = nullableStringFromSQL(description)
		e.UserID = nullableStringFromSQL(userID)
		e.VersionType = "checkpoint"
		out = append(out, e)
	}
	cpErr := cpRows.Err()
	cpRows.Close()
	if cpErr != nil {
		return nil, duerr.Wrap(cpErr, duerr.Db, "vcs: iterate checkpoint listing")
	}

	deltaRows, err := db.Query(`SELECT id, version_number, schema_version, timestamp, description, is_manual_save,
		user_id, size_bytes FROM ` + schema.TableDeltas)
	if err != nil {
		return nil, duerr.Wrap(err, duerr.Db, "vcs: query deltas for listing")
	}
	for deltaRows.Next() {
		var e model.VersionEntry
		var description, userID sql.NullString
		if err := deltaRows.Scan(&e.ID, &e.VersionNumber, &e.SchemaVersion, &e.Timestamp, &description,
			&e.IsManualSave, &userID, &e.SizeBytes); err != nil {
			deltaRows.Close()
			return nil, duerr.Wrap(err, duerr.Db, "vcs: scan delta listing row")
		}
		e.Description = nullableStringFromSQL(description)
		e.UserID = nullableStringFromSQL(userID)
		e.VersionType = "delta"
		out = append(out, e)
	}
	deltaErr := deltaRows.Err()
	deltaRows.Close()
	if deltaErr != nil {
		return nil, duerr.Wrap(deltaErr, duerr.Db, "vcs: iterate delta listing")
	}

	sortVersionEntries(out)
	return out, nil
}

func sortVersionEntries(entries []model.VersionEntry) {
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j].VersionNumber < entries[j-1].VersionNumber; j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}
}

// GetMetadata returns the version_graph singleton row, or nil if it is
// absent (a document with no version-control history yet).
func (vc *VersionControl) GetMetadata() (*model.VersionGraphMetadata, error) {
	var m model.VersionGraphMetadata
	var userCheckpoint, latest sql.NullString
	var lastPruned sql.NullInt64
	err := vc.h.DB().QueryRow(`SELECT current_version, current_schema_version, user_checkpoint_version_id,
		latest_version_id, chain_count, last_pruned, total_size FROM `+schema.TableVersionGraph+` WHERE id = 1`).
		Scan(&m.CurrentVersion, &m.CurrentSchemaVersion, &userCheckpoint, &latest, &m.ChainCount, &lastPruned, &m.TotalSize)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, duerr.Wrap(err, duerr.Db, "vcs: get metadata")
	}
	m.UserCheckpointVersionID = nullableStringFromSQL(userCheckpoint)
	if latest.Valid {
		m.LatestVersionID = latest.String
	}
	if lastPruned.Valid {
		m.LastPruned = lastPruned.Int64
	}
	return &m, nil
}

// SetUserCheckpoint records which checkpoint the user explicitly pinned as
// their manual save point.
func (vc *VersionControl) SetUserCheckpoint(versionID string) error {
	_, err := vc.h.DB().Exec(`UPDATE `+schema.TableVersionGraph+` SET user_checkpoint_version_id = ? WHERE id = 1`, versionID)
	return duerr.Wrap(err, duerr.Db, "vcs: set user checkpoint")
}

// ReadVersionGraph aggregates the full version-control state: metadata,
// every chain, checkpoint, delta, and recorded schema migration. Returns
// nil if the version_graph singleton row has never been initialized.
func (vc *VersionControl) ReadVersionGraph() (*model.VersionGraph, error) {
	meta, err := vc.GetMetadata()
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, nil
	}

	db := vc.h.DB()
	g := &model.VersionGraph{Metadata: *meta}

	chainRows, err := db.Query(`SELECT id, schema_version, start_version, end_version, migration, root_checkpoint_id
		FROM ` + schema.TableVersionChains)
	if err != nil {
		return nil, duerr.Wrap(err, duerr.Db, "vcs: query version chains")
	}
	for chainRows.Next() {
		var c model.VersionChain
		var end sql.NullInt64
		var migration, root sql.NullString
		if err := chainRows.Scan(&c.ID, &c.SchemaVersion, &c.StartVersion, &end, &migration, &root); err != nil {
			chainRows.Close()
			return nil, duerr.Wrap(err, duerr.Db, "vcs: scan version chain")
		}
		if end.Valid {
			v := end.Int64
			c.EndVersion = &v
		}
		c.Migration = nullableStringFromSQL(migration)
		if root.Valid {
			c.RootCheckpointID = root.String
		}
		g.Chains = append(g.Chains, c)
	}
	if err := chainRows.Err(); err != nil {
		chainRows.Close()
		return nil, duerr.Wrap(err, duerr.Db, "vcs: iterate version chains")
	}
	chainRows.Close()

	cpRows, err := db.Query(`SELECT id, parent_id, chain_id, version_number, schema_version, timestamp, description,
		is_manual_save, is_schema_boundary, user_id, data, size_bytes FROM ` + schema.TableCheckpoints)
	if err != nil {
		return nil, duerr.Wrap(err, duerr.Db, "vcs: query checkpoints")
	}
	for cpRows.Next() {
		var c model.Checkpoint
		var parentID, description, userID sql.NullString
		if err := cpRows.Scan(&c.Base.ID, &parentID, &c.ChainID, &c.VersionNumber, &c.SchemaVersion,
			&c.Base.Timestamp, &description, &c.Base.IsManualSave, &c.IsSchemaBoundary, &userID, &c.Data,
			&c.SizeBytes); err != nil {
			cpRows.Close()
			return nil, duerr.Wrap(err, duerr.Db, "vcs: scan checkpoint")
		}
		c.Base.ParentID = nullableStringFromSQL(parentID)
		c.Base.Description = nullableStringFromSQL(description)
		c.Base.UserID = nullableStringFromSQL(userID)
		g.Checkpoints = append(g.Checkpoints, c)
	}
	if err := cpRows.Err(); err != nil {
		cpRows.Close()
		return nil, duerr.Wrap(err, duerr.Db, "vcs: iterate checkpoints")
	}
	cpRows.Close()

	deltaRows, err := db.Query(`SELECT id, parent_id, base_checkpoint_id, chain_id, delta_sequence, version_number,
		schema_version, timestamp, description, is_manual_save, user_id, changeset, size_bytes
		FROM ` + schema.TableDeltas)
	if err != nil {
		return nil, duerr.Wrap(err, duerr.Db, "vcs: query deltas")
	}
	for deltaRows.Next() {
		var d model.Delta
		var parentID, description, userID sql.NullString
		var changeset []byte
		if err := deltaRows.Scan(&d.Base.ID, &parentID, &d.BaseCheckpointID, &d.ChainID, &d.DeltaSequence,
			&d.VersionNumber, &d.SchemaVersion, &d.Base.Timestamp, &description, &d.Base.IsManualSave, &userID,
			&changeset, &d.SizeBytes); err != nil {
			deltaRows.Close()
			return nil, duerr.Wrap(err, duerr.Db, "vcs: scan delta")
		}
		d.Base.ParentID = nullableStringFromSQL(parentID)
		d.Base.Description = nullableStringFromSQL(description)
		d.Base.UserID = nullableStringFromSQL(userID)
		payload, err := decompressDelta(changeset)
		if err != nil {
			deltaRows.Close()
			return nil, err
		}
		d.Payload = payload
		g.Deltas = append(g.Deltas, d)
	}
	if err := deltaRows.Err(); err != nil {
		deltaRows.Close()
		return nil, duerr.Wrap(err, duerr.Db, "vcs: iterate deltas")
	}
	deltaRows.Close()

	migRows, err := db.Query(`SELECT from_schema_version, to_schema_version, migration_name, checksum, applied_at,
		boundary_checkpoint_id FROM ` + schema.TableSchemaMigrations)
	if err != nil {
		return nil, duerr.Wrap(err, duerr.Db, "vcs: query schema migrations")
	}
	for migRows.Next() {
		var m model.SchemaMigration
		var checksum, boundary sql.NullString
		if err := migRows.Scan(&m.From, &m.To, &m.Name, &checksum, &m.AppliedAt, &boundary); err != nil {
			migRows.Close()
			return nil, duerr.Wrap(err, duerr.Db, "vcs: scan schema migration")
		}
		m.Checksum = nullableStringFromSQL(checksum)
		m.BoundaryCheckpointID = nullableStringFromSQL(boundary)
		g.Migrations = append(g.Migrations, m)
	}
	if err := migRows.Err(); err != nil {
		migRows.Close()
		return nil, duerr.Wrap(err, duerr.Db, "vcs: iterate schema migrations")
	}
	migRows.Close()

	return g, nil
}

// resolveChainID returns the id of the currently open chain (end_version IS
// NULL) for schemaVersion, opening a new one if none is open. Exactly one
// chain per schema version may be open at a time.
func (vc *VersionControl) resolveChainID(db *sql.DB, schemaVersion int32, versionNumber int64) (string, error) {
	var id string
	err := db.QueryRow(`SELECT id FROM `+schema.TableVersionChains+
		` WHERE schema_version = ? AND end_version IS NULL`, schemaVersion).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", duerr.Wrap(err, duerr.Db, "vcs: find open chain")
	}

	id = newID()
	_, err = db.Exec(`INSERT INTO `+schema.TableVersionChains+
		` (id, schema_version, start_version, end_version, migration, root_checkpoint_id) VALUES (?,?,?,NULL,NULL,NULL)`,
		id, schemaVersion, versionNumber)
	if err != nil {
		return "", duerr.Wrap(err, duerr.Db, "vcs: open new chain")
	}
	if _, err := db.Exec(`UPDATE `+schema.TableVersionGraph+` SET chain_count = chain_count + 1 WHERE id = 1`); err != nil {
		return "", duerr.Wrap(err, duerr.Db, "vcs: bump chain count")
	}
	return id, nil
}

// maybeMigrateSchema closes out the currently open chain (if any) whenever
// an incoming write targets a schema version different from the one the
// document currently carries, and records the transition in
// schema_migrations. A no-op when the write's schema version matches the
// document's current schema version.
func (vc *VersionControl) maybeMigrateSchema(db *sql.DB, incomingSchemaVersion int32) error {
	var currentSchemaVersion int32
	var currentVersion int64
	err := db.QueryRow(`SELECT current_schema_version, current_version FROM `+schema.TableVersionGraph+` WHERE id = 1`).
		Scan(&currentSchemaVersion, &currentVersion)
	if err == sql.ErrNoRows {
		return nil // first write ever; nothing to migrate from
	}
	if err != nil {
		return duerr.Wrap(err, duerr.Db, "vcs: read current schema version")
	}
	if currentSchemaVersion == incomingSchemaVersion {
		return nil
	}

	if _, err := db.Exec(`UPDATE `+schema.TableVersionChains+
		` SET end_version = ? WHERE schema_version = ? AND end_version IS NULL`,
		currentVersion, currentSchemaVersion); err != nil {
		return duerr.Wrap(err, duerr.Db, "vcs: close chain at schema boundary")
	}

	name := fmt.Sprintf("auto_migration_v%d_to_v%d", currentSchemaVersion, incomingSchemaVersion)
	if _, err := db.Exec(`INSERT OR IGNORE INTO `+schema.TableSchemaMigrations+
		` (from_schema_version, to_schema_version, migration_name, checksum, applied_at, boundary_checkpoint_id)
		  VALUES (?,?,?,NULL,?,NULL)`,
		currentSchemaVersion, incomingSchemaVersion, name, nowMillis()); err != nil {
		return duerr.Wrap(err, duerr.Db, "vcs: record schema migration")
	}
	return nil
}

// updateVersionGraphPointer advances the singleton version_graph row after
// a checkpoint or delta write, initializing it first if this is the
// document's first version-control write.
func (vc *VersionControl) updateVersionGraphPointer(db *sql.DB, versionNumber int64, schemaVersion int32, latestID string) error {
	var currentVersion int64
	err := db.QueryRow(`SELECT current_version FROM ` + schema.TableVersionGraph + ` WHERE id = 1`).Scan(&currentVersion)
	if err == sql.ErrNoRows {
		if _, err := db.Exec(`INSERT INTO `+schema.TableVersionGraph+
			` (id, current_version, current_schema_version, user_checkpoint_version_id, latest_version_id,
			   chain_count, last_pruned, total_size) VALUES (1,?,?,NULL,?,1,NULL,0)`,
			versionNumber, schemaVersion, latestID); err != nil {
			return duerr.Wrap(err, duerr.Db, "vcs: initialize version graph")
		}
		return vc.recalculateTotalSize(db)
	}
	if err != nil {
		return duerr.Wrap(err, duerr.Db, "vcs: read current version graph pointer")
	}

	// current_version always advances to max(current_version, v); the schema
	// version and latest pointer only move forward when this write is the
	// new head, so replaying/backfilling an older version never regresses
	// them.
	if versionNumber > currentVersion {
		_, err = db.Exec(`UPDATE `+schema.TableVersionGraph+
			` SET current_version = ?, current_schema_version = ?, latest_version_id = ? WHERE id = 1`,
			versionNumber, schemaVersion, latestID)
	} else {
		_, err = db.Exec(`UPDATE `+schema.TableVersionGraph+
			` SET current_version = MAX(current_version, ?) WHERE id = 1`, versionNumber)
	}
	if err != nil {
		return duerr.Wrap(err, duerr.Db, "vcs: update version graph pointer")
	}
	return vc.recalculateTotalSize(db)
}

// recalculateTotalSize sums checkpoint and delta storage and writes the
// result back onto the version_graph singleton.
func (vc *VersionControl) recalculateTotalSize(db *sql.DB) error {
	var total int64
	err := db.QueryRow(`SELECT COALESCE((SELECT SUM(size_bytes) FROM ` + schema.TableCheckpoints + `),0) +
		COALESCE((SELECT SUM(size_bytes) FROM ` + schema.TableDeltas + `),0)`).Scan(&total)
	if err != nil {
		return duerr.Wrap(err, duerr.Db, "vcs: recalculate total size")
	}
	_, err = db.Exec(`UPDATE `+schema.TableVersionGraph+` SET total_size = ? WHERE id = 1`, total)
	return duerr.Wrap(err, duerr.Db, "vcs: write total size")
}

// PruneDeltasBefore deletes every delta with version_number < v, keeping
// all checkpoints intact, and returns the number of rows removed.
func (vc *VersionControl) PruneDeltasBefore(v int64) (int, error) {
	db := vc.h.DB()
	res, err := db.Exec(`DELETE FROM `+schema.TableDeltas+` WHERE version_number < ?`, v)
	if err != nil {
		return 0, duerr.Wrap(err, duerr.Db, "vcs: prune deltas")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, duerr.Wrap(err, duerr.Db, "vcs: read prune rows affected")
	}
	if err := vc.recalculateTotalSize(db); err != nil {
		return 0, err
	}
	if _, err := db.Exec(`UPDATE `+schema.TableVersionGraph+` SET last_pruned = ? WHERE id = 1`, nowMillis()); err != nil {
		return 0, duerr.Wrap(err, duerr.Db, "vcs: record last pruned")
	}
	return int(n), nil
}

// PruneBefore deletes every checkpoint and delta with version_number < v,
// except it always keeps the single checkpoint closest to v from below, and
// the deltas based on that checkpoint, so that restore_version never loses
// its anchor. Closed version chains that
// end entirely before v are deleted along with them.
func (vc *VersionControl) PruneBefore(v int64) (int, error) {
	db := vc.h.DB()

	var keepID string
	hasKeep := true
	err := db.QueryRow(`SELECT id FROM `+schema.TableCheckpoints+
		` WHERE version_number < ? ORDER BY version_number DESC LIMIT 1`, v).Scan(&keepID)
	if err == sql.ErrNoRows {
		hasKeep = false
	} else if err != nil {
		return 0, duerr.Wrap(err, duerr.Db, "vcs: find anchor checkpoint")
	}

	var deltaRes, cpRes sql.Result
	if hasKeep {
		deltaRes, err = db.Exec(`DELETE FROM `+schema.TableDeltas+
			` WHERE version_number < ? AND base_checkpoint_id != ?`, v, keepID)
	} else {
		deltaRes, err = db.Exec(`DELETE FROM `+schema.TableDeltas+` WHERE version_number < ?`, v)
	}
	if err != nil {
		return 0, duerr.Wrap(err, duerr.Db, "vcs: prune old deltas")
	}

	if hasKeep {
		cpRes, err = db.Exec(`DELETE FROM `+schema.TableCheckpoints+` WHERE version_number < ? AND id != ?`, v, keepID)
	} else {
		cpRes, err = db.Exec(`DELETE FROM `+schema.TableCheckpoints+` WHERE version_number < ?`, v)
	}
	if err != nil {
		return 0, duerr.Wrap(err, duerr.Db, "vcs: prune old checkpoints")
	}

	if _, err := db.Exec(`DELETE FROM ` + schema.TableVersionChains + ` WHERE end_version IS NOT NULL AND end_version < ?`, v); err != nil {
		return 0, duerr.Wrap(err, duerr.Db, "vcs: prune closed chains")
	}

	deltaN, _ := deltaRes.RowsAffected()
	cpN, _ := cpRes.RowsAffected()

	if err := vc.recalculateTotalSize(db); err != nil {
		return 0, err
	}
	if _, err := db.Exec(`UPDATE `+schema.TableVersionGraph+` SET last_pruned = ? WHERE id = 1`, nowMillis()); err != nil {
		return 0, duerr.Wrap(err, duerr.Db, "vcs: record last pruned")
	}
	return int(deltaN + cpN), nil
}

// RevertToVersion restores v and records the reverted bytes as a brand new
// checkpoint at the head of history, so the revert itself becomes an
// undoable action rather than rewriting the past.
func (vc *VersionControl) RevertToVersion(v int64) (*model.RestoredVersion, error) {
	restored, err := vc.RestoreVersion(v)
	if err != nil {
		return nil, err
	}

	meta, err := vc.GetMetadata()
	if err != nil {
		return nil, err
	}
	nextVersion := restored.VersionNumber + 1
	if meta != nil && meta.CurrentVersion >= nextVersion {
		nextVersion = meta.CurrentVersion + 1
	}

	description := fmt.Sprintf("revert to version %d", v)
	if err := vc.CreateCheckpoint(CreateCheckpointInput{
		VersionNumber: nextVersion,
		SchemaVersion: restored.SchemaVersion,
		Data:          restored.Data,
		Description:   &description,
		IsManualSave:  true,
	}); err != nil {
		return nil, err
	}

	return &model.RestoredVersion{
		VersionNumber:  nextVersion,
		SchemaVersion:  restored.SchemaVersion,
		Data:           restored.Data,
		FromCheckpoint: true,
	}, nil
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullableStringFromSQL(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	v := n.String
	return &v
}
