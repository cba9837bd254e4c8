package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/tianer2820/namecleanup/internal/adapter/storage"
	"github.com/tianer2820/namecleanup/internal/core"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "scene.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestSQLiteStore_SelectedObjects(t *testing.T) {
	ctx := context.Background()
	st := openTemp(t)

	mesh, err := st.AddMesh(ctx, "Mesh.001")
	if err != nil {
		t.Fatal(err)
	}
	m1, _ := st.AddMaterial(ctx, "Steel")
	m2, _ := st.AddMaterial(ctx, "Paint")

	cube, err := st.AddObject(ctx, "My Cube", &mesh, []core.Ref{m1, {}, m2})
	if err != nil {
		t.Fatal(err)
	}
	empty, err := st.AddObject(ctx, "Empty", nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := st.Select(ctx, empty.ID); err != nil {
		t.Fatal(err)
	}
	if err := st.Select(ctx, cube.ID); err != nil {
		t.Fatal(err)
	}
	// selecting twice keeps the first position
	if err := st.Select(ctx, empty.ID); err != nil {
		t.Fatal(err)
	}

	objs, err := st.SelectedObjects(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(objs) != 2 {
		t.Fatalf("expected 2 selected, got %d", len(objs))
	}
	if objs[0].Name != "Empty" || objs[0].Data != nil {
		t.Fatalf("unexpected first object: %+v", objs[0])
	}
	got := objs[1]
	if got.Name != "My Cube" || got.Data == nil || got.Data.Name != "Mesh.001" || got.Data.Users != 1 {
		t.Fatalf("unexpected cube: %+v (data %+v)", got, got.Data)
	}
	if len(got.Materials) != 3 || got.Materials[1] != nil {
		t.Fatalf("expected 3 slots with the middle one empty, got %+v", got.Materials)
	}
	if got.Materials[0].Name != "Steel" || got.Materials[2].Name != "Paint" {
		t.Fatalf("unexpected slot order: %q, %q", got.Materials[0].Name, got.Materials[2].Name)
	}

	if err := st.ClearSelection(ctx); err != nil {
		t.Fatal(err)
	}
	objs, _ = st.SelectedObjects(ctx)
	if len(objs) != 0 {
		t.Fatalf("expected empty selection, got %d", len(objs))
	}
}

func TestSQLiteStore_RenameSuffixesCollisions(t *testing.T) {
	ctx := context.Background()
	st := openTemp(t)

	if _, err := st.AddImage(ctx, "wood"); err != nil {
		t.Fatal(err)
	}
	img, err := st.AddImage(ctx, "Wood")
	if err != nil {
		t.Fatal(err)
	}

	got, err := st.Rename(ctx, img, "wood")
	if err != nil {
		t.Fatal(err)
	}
	if got != "wood.001" {
		t.Fatalf("expected wood.001, got %q", got)
	}

	images, err := st.Images(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(images) != 2 || images[0].Name != "wood" || images[1].Name != "wood.001" {
		t.Fatalf("unexpected images: %+v", images)
	}

	if _, err := st.Rename(ctx, img, ""); !errors.Is(err, storage.ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
	if _, err := st.Rename(ctx, core.Ref{Kind: core.KindImage, ID: "missing"}, "x"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteStore_SharedUsers(t *testing.T) {
	ctx := context.Background()
	st := openTemp(t)

	mesh, _ := st.AddMesh(ctx, "Shared")
	mat, _ := st.AddMaterial(ctx, "Shared")
	if _, err := st.AddObject(ctx, "A", &mesh, []core.Ref{mat}); err != nil {
		t.Fatal(err)
	}
	if _, err := st.AddObject(ctx, "B", &mesh, []core.Ref{mat}); err != nil {
		t.Fatal(err)
	}

	blk, err := st.Lookup(ctx, core.KindMesh, "Shared")
	if err != nil {
		t.Fatal(err)
	}
	if blk.Users != 2 {
		t.Fatalf("expected 2 mesh users, got %d", blk.Users)
	}
	mats, err := st.List(ctx, core.KindMaterial)
	if err != nil {
		t.Fatal(err)
	}
	if len(mats) != 1 || mats[0].Users != 2 {
		t.Fatalf("expected 1 material with 2 users, got %+v", mats)
	}

	bad := core.Ref{Kind: core.KindMaterial, ID: mesh.ID}
	if _, err := st.AddObject(ctx, "C", nil, []core.Ref{bad}); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for a mesh used as material, got %v", err)
	}
}
