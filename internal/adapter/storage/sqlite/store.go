package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/tianer2820/namecleanup/internal/adapter/storage"
	"github.com/tianer2820/namecleanup/internal/core"
)

// Store is a scene document kept in a sqlite database.
type Store struct {
	db *sql.DB
}

var _ storage.Editor = (*Store)(nil)

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// pragmas are per connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL; PRAGMA foreign_keys=ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS blocks (
  seq   INTEGER PRIMARY KEY AUTOINCREMENT,
  id    TEXT NOT NULL UNIQUE,
  kind  TEXT NOT NULL,
  name  TEXT NOT NULL,
  UNIQUE(kind, name)
);

CREATE TABLE IF NOT EXISTS objects (
  id      TEXT PRIMARY KEY REFERENCES blocks(id),
  mesh_id TEXT REFERENCES blocks(id)
);

CREATE TABLE IF NOT EXISTS material_slots (
  object_id   TEXT NOT NULL REFERENCES objects(id),
  slot        INTEGER NOT NULL,
  material_id TEXT REFERENCES blocks(id),
  PRIMARY KEY(object_id, slot)
);

CREATE TABLE IF NOT EXISTS selection (
  object_id TEXT PRIMARY KEY REFERENCES objects(id),
  position  INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_objects_mesh    ON objects(mesh_id);
CREATE INDEX IF NOT EXISTS idx_slots_material  ON material_slots(material_id);
CREATE INDEX IF NOT EXISTS idx_selection_order ON selection(position);
`)
	return err
}

func (s *Store) SelectedObjects(ctx context.Context) ([]core.Object, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT b.id, b.name, o.mesh_id
FROM selection sel
JOIN blocks b  ON b.id = sel.object_id
JOIN objects o ON o.id = sel.object_id
ORDER BY sel.position
`)
	if err != nil {
		return nil, err
	}

	type row struct {
		obj  core.Object
		mesh sql.NullString
	}
	var picked []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.obj.ID, &r.obj.Name, &r.mesh); err != nil {
			_ = rows.Close()
			return nil, err
		}
		r.obj.Kind = core.KindObject
		picked = append(picked, r)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	out := make([]core.Object, 0, len(picked))
	for _, r := range picked {
		obj := r.obj
		if r.mesh.Valid {
			mesh, err := s.blockByID(ctx, r.mesh.String)
			if err != nil {
				return nil, err
			}
			obj.Data = &mesh
		}
		if obj.Materials, err = s.slots(ctx, obj.ID); err != nil {
			return nil, err
		}
		out = append(out, obj)
	}
	return out, nil
}

func (s *Store) Images(ctx context.Context) ([]core.Block, error) {
	return s.List(ctx, core.KindImage)
}

func (s *Store) Rename(ctx context.Context, ref core.Ref, name string) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	var current string
	err = tx.QueryRowContext(ctx, `SELECT name FROM blocks WHERE id=? AND kind=?`, ref.ID, string(ref.Kind)).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%s %s: %w", ref.Kind, ref.ID, storage.ErrNotFound)
	}
	if err != nil {
		return "", err
	}
	if current == name {
		return name, nil
	}

	final, err := uniqueName(ctx, tx, ref.Kind, name, ref.ID)
	if err != nil {
		return "", err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE blocks SET name=? WHERE id=?`, final, ref.ID); err != nil {
		return "", err
	}
	return final, tx.Commit()
}

func (s *Store) AddMesh(ctx context.Context, name string) (core.Ref, error) {
	return s.add(ctx, core.KindMesh, name)
}

func (s *Store) AddMaterial(ctx context.Context, name string) (core.Ref, error) {
	return s.add(ctx, core.KindMaterial, name)
}

func (s *Store) AddImage(ctx context.Context, name string) (core.Ref, error) {
	return s.add(ctx, core.KindImage, name)
}

func (s *Store) AddObject(ctx context.Context, name string, mesh *core.Ref, materials []core.Ref) (core.Ref, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Ref{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var meshID sql.NullString
	if mesh != nil {
		if err := checkKind(ctx, tx, *mesh, core.KindMesh); err != nil {
			return core.Ref{}, err
		}
		meshID = sql.NullString{String: mesh.ID, Valid: true}
	}
	for _, m := range materials {
		if m.ID == "" {
			continue
		}
		if err := checkKind(ctx, tx, m, core.KindMaterial); err != nil {
			return core.Ref{}, err
		}
	}

	ref, err := insertBlock(ctx, tx, core.KindObject, name)
	if err != nil {
		return core.Ref{}, err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO objects(id, mesh_id) VALUES(?, ?)`, ref.ID, meshID); err != nil {
		return core.Ref{}, err
	}
	for i, m := range materials {
		var matID sql.NullString
		if m.ID != "" {
			matID = sql.NullString{String: m.ID, Valid: true}
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO material_slots(object_id, slot, material_id) VALUES(?, ?, ?)`, ref.ID, i, matID); err != nil {
			return core.Ref{}, err
		}
	}
	return ref, tx.Commit()
}

func (s *Store) Select(ctx context.Context, id string) error {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM objects WHERE id=?`, id).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("object %s: %w", id, storage.ErrNotFound)
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO selection(object_id, position)
VALUES(?, (SELECT COALESCE(MAX(position), 0) + 1 FROM selection))
ON CONFLICT(object_id) DO NOTHING
`, id)
	return err
}

func (s *Store) ClearSelection(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM selection`)
	return err
}

func (s *Store) List(ctx context.Context, kind core.Kind) ([]core.Block, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%q: %w", kind, storage.ErrInvalidKind)
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT b.id, b.name,
  (SELECT COUNT(1) FROM objects o WHERE o.mesh_id = b.id) +
  (SELECT COUNT(1) FROM material_slots m WHERE m.material_id = b.id)
FROM blocks b
WHERE b.kind=?
ORDER BY b.seq
`, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.Block
	for rows.Next() {
		b := core.Block{Ref: core.Ref{Kind: kind}}
		if err := rows.Scan(&b.ID, &b.Name, &b.Users); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) Lookup(ctx context.Context, kind core.Kind, name string) (core.Block, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM blocks WHERE kind=? AND name=?`, string(kind), name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Block{}, fmt.Errorf("%s %q: %w", kind, name, storage.ErrNotFound)
	}
	if err != nil {
		return core.Block{}, err
	}
	return s.blockByID(ctx, id)
}

func (s *Store) add(ctx context.Context, kind core.Kind, name string) (core.Ref, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Ref{}, err
	}
	defer func() { _ = tx.Rollback() }()

	ref, err := insertBlock(ctx, tx, kind, name)
	if err != nil {
		return core.Ref{}, err
	}
	return ref, tx.Commit()
}

func (s *Store) blockByID(ctx context.Context, id string) (core.Block, error) {
	var b core.Block
	var kind string
	err := s.db.QueryRowContext(ctx, `
SELECT b.kind, b.name,
  (SELECT COUNT(1) FROM objects o WHERE o.mesh_id = b.id) +
  (SELECT COUNT(1) FROM material_slots m WHERE m.material_id = b.id)
FROM blocks b WHERE b.id=?
`, id).Scan(&kind, &b.Name, &b.Users)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Block{}, fmt.Errorf("block %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return core.Block{}, err
	}
	b.ID = id
	b.Kind = core.Kind(kind)
	return b, nil
}

func (s *Store) slots(ctx context.Context, objectID string) ([]*core.Block, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT material_id FROM material_slots WHERE object_id=? ORDER BY slot`, objectID)
	if err != nil {
		return nil, err
	}
	var ids []sql.NullString
	for rows.Next() {
		var id sql.NullString
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	if len(ids) == 0 {
		return nil, nil
	}
	out := make([]*core.Block, len(ids))
	for i, id := range ids {
		if !id.Valid {
			continue
		}
		mat, err := s.blockByID(ctx, id.String)
		if err != nil {
			return nil, err
		}
		out[i] = &mat
	}
	return out, nil
}

func insertBlock(ctx context.Context, tx *sql.Tx, kind core.Kind, name string) (core.Ref, error) {
	final, err := uniqueName(ctx, tx, kind, name, "")
	if err != nil {
		return core.Ref{}, err
	}
	ref := core.Ref{Kind: kind, ID: uuid.NewString()}
	if _, err := tx.ExecContext(ctx, `INSERT INTO blocks(id, kind, name) VALUES(?, ?, ?)`, ref.ID, string(kind), final); err != nil {
		return core.Ref{}, err
	}
	return ref, nil
}

func uniqueName(ctx context.Context, tx *sql.Tx, kind core.Kind, name, except string) (string, error) {
	var qerr error
	final, err := storage.UniqueName(name, func(n string) bool {
		if qerr != nil {
			return true
		}
		var c int
		qerr = tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM blocks WHERE kind=? AND name=? AND id<>?`, string(kind), n, except).Scan(&c)
		return c > 0
	})
	if qerr != nil {
		return "", qerr
	}
	return final, err
}

func checkKind(ctx context.Context, tx *sql.Tx, ref core.Ref, kind core.Kind) error {
	var c int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM blocks WHERE id=? AND kind=?`, ref.ID, string(kind)).Scan(&c); err != nil {
		return err
	}
	if c == 0 {
		return fmt.Errorf("%s %s: %w", kind, ref.ID, storage.ErrNotFound)
	}
	return nil
}
