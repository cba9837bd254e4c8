package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/tianer2820/namecleanup/internal/adapter/storage"
	"github.com/tianer2820/namecleanup/internal/core"
)

func TestMemoryStore_UsersAndSelection(t *testing.T) {
	ctx := context.Background()
	st := New()

	mesh, _ := st.AddMesh(ctx, "Mesh")
	mat, _ := st.AddMaterial(ctx, "Mat")
	a, err := st.AddObject(ctx, "A", &mesh, []core.Ref{mat, {}})
	if err != nil {
		t.Fatal(err)
	}
	b, err := st.AddObject(ctx, "B", &mesh, nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := st.Select(ctx, b.ID); err != nil {
		t.Fatal(err)
	}
	if err := st.Select(ctx, a.ID); err != nil {
		t.Fatal(err)
	}

	objs, err := st.SelectedObjects(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(objs) != 2 || objs[0].Name != "B" || objs[1].Name != "A" {
		t.Fatalf("expected selection order [B A], got %+v", objs)
	}
	if objs[1].Data == nil || objs[1].Data.Users != 2 {
		t.Fatalf("expected shared mesh with 2 users, got %+v", objs[1].Data)
	}
	if len(objs[1].Materials) != 2 || objs[1].Materials[1] != nil {
		t.Fatalf("expected two slots with the second empty, got %+v", objs[1].Materials)
	}
	if objs[1].Materials[0].Users != 1 {
		t.Fatalf("expected singly used material, got %d", objs[1].Materials[0].Users)
	}
}

func TestMemoryStore_RenameCollision(t *testing.T) {
	ctx := context.Background()
	st := New()

	a, _ := st.AddObject(ctx, "cube", nil, nil)
	b, _ := st.AddObject(ctx, "Cube", nil, nil)

	got, err := st.Rename(ctx, b, "cube")
	if err != nil {
		t.Fatal(err)
	}
	if got != "cube.001" {
		t.Fatalf("expected suffixed name, got %q", got)
	}

	got, err = st.Rename(ctx, a, "cube")
	if err != nil || got != "cube" {
		t.Fatalf("expected renaming to own name to be a no-op, got %q, %v", got, err)
	}

	// a mesh may share an object's name
	m, _ := st.AddMesh(ctx, "cube")
	if blk, _ := st.Lookup(ctx, core.KindMesh, "cube"); blk.ID != m.ID {
		t.Fatalf("expected mesh named cube")
	}
}

func TestMemoryStore_Errors(t *testing.T) {
	ctx := context.Background()
	st := New()

	a, _ := st.AddObject(ctx, "A", nil, nil)
	if _, err := st.Rename(ctx, a, ""); !errors.Is(err, storage.ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
	if _, err := st.Rename(ctx, core.Ref{Kind: core.KindMesh, ID: a.ID}, "x"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for kind mismatch, got %v", err)
	}
	if err := st.Select(ctx, "nope"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := st.List(ctx, core.Kind("camera")); !errors.Is(err, storage.ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
}
