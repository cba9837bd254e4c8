package storage

import (
	"context"
	"errors"

	"github.com/tianer2820/namecleanup/internal/core"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrInvalidName = errors.New("invalid name")
	ErrInvalidKind = errors.New("invalid kind")
)

// Store is the view of a scene document the rename passes work against.
type Store interface {
	// SelectedObjects returns the selection in selection order with mesh
	// and material usage counts filled in.
	SelectedObjects(ctx context.Context) ([]core.Object, error)
	Images(ctx context.Context) ([]core.Block, error)

	// Rename sets the name of ref and returns the name actually stored,
	// which differs from name when the document had to make it unique.
	Rename(ctx context.Context, ref core.Ref, name string) (string, error)
}

// Editor builds and inspects a document. The shell, the scene loader and
// tests use it; the passes only need Store.
type Editor interface {
	Store

	AddMesh(ctx context.Context, name string) (core.Ref, error)
	AddMaterial(ctx context.Context, name string) (core.Ref, error)
	AddImage(ctx context.Context, name string) (core.Ref, error)
	// AddObject links an optional mesh and one material slot per entry of
	// materials; a zero Ref leaves that slot empty.
	AddObject(ctx context.Context, name string, mesh *core.Ref, materials []core.Ref) (core.Ref, error)

	Select(ctx context.Context, id string) error
	ClearSelection(ctx context.Context) error

	List(ctx context.Context, kind core.Kind) ([]core.Block, error)
	Lookup(ctx context.Context, kind core.Kind, name string) (core.Block, error)
}
