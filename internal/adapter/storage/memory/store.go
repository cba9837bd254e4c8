package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/tianer2820/namecleanup/internal/adapter/storage"
	"github.com/tianer2820/namecleanup/internal/core"
)

type block struct {
	ref  core.Ref
	name string
	seq  int
}

type object struct {
	mesh      string   // mesh id, "" for an empty
	materials []string // material id per slot, "" for an empty slot
}

// Store is an in-memory scene document.
type Store struct {
	mu       sync.RWMutex
	seq      int
	blocks   map[string]*block
	objects  map[string]*object
	selected []string // selection order
}

var _ storage.Editor = (*Store)(nil)

func New() *Store {
	return &Store{
		blocks:  make(map[string]*block),
		objects: make(map[string]*object),
	}
}

func (s *Store) SelectedObjects(ctx context.Context) ([]core.Object, error) {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Object, 0, len(s.selected))
	for _, id := range s.selected {
		out = append(out, s.objectLocked(id))
	}
	return out, nil
}

func (s *Store) Images(ctx context.Context) ([]core.Block, error) {
	return s.List(ctx, core.KindImage)
}

func (s *Store) Rename(ctx context.Context, ref core.Ref, name string) (string, error) {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.blocks[ref.ID]
	if !ok || b.ref.Kind != ref.Kind {
		return "", fmt.Errorf("%s %s: %w", ref.Kind, ref.ID, storage.ErrNotFound)
	}
	if b.name == name {
		return name, nil
	}
	final, err := storage.UniqueName(name, func(n string) bool {
		return s.takenLocked(ref.Kind, n, ref.ID)
	})
	if err != nil {
		return "", err
	}
	b.name = final
	return final, nil
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
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	obj := &object{materials: make([]string, len(materials))}
	if mesh != nil {
		if err := s.checkLocked(*mesh, core.KindMesh); err != nil {
			return core.Ref{}, err
		}
		obj.mesh = mesh.ID
	}
	for i, m := range materials {
		if m.ID == "" {
			continue
		}
		if err := s.checkLocked(m, core.KindMaterial); err != nil {
			return core.Ref{}, err
		}
		obj.materials[i] = m.ID
	}

	ref, err := s.addLocked(core.KindObject, name)
	if err != nil {
		return core.Ref{}, err
	}
	s.objects[ref.ID] = obj
	return ref, nil
}

func (s *Store) Select(ctx context.Context, id string) error {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.objects[id]; !ok {
		return fmt.Errorf("object %s: %w", id, storage.ErrNotFound)
	}
	for _, sel := range s.selected {
		if sel == id {
			return nil
		}
	}
	s.selected = append(s.selected, id)
	return nil
}

func (s *Store) ClearSelection(ctx context.Context) error {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = nil
	return nil
}

// List returns every block of kind in creation order.
func (s *Store) List(ctx context.Context, kind core.Kind) ([]core.Block, error) {
	_ = ctx
	if !kind.Valid() {
		return nil, fmt.Errorf("%q: %w", kind, storage.ErrInvalidKind)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	bs := make([]*block, 0, len(s.blocks))
	for _, b := range s.blocks {
		if b.ref.Kind == kind {
			bs = append(bs, b)
		}
	}
	sort.Slice(bs, func(i, j int) bool { return bs[i].seq < bs[j].seq })

	out := make([]core.Block, 0, len(bs))
	for _, b := range bs {
		out = append(out, s.blockLocked(b))
	}
	return out, nil
}

func (s *Store) Lookup(ctx context.Context, kind core.Kind, name string) (core.Block, error) {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, b := range s.blocks {
		if b.ref.Kind == kind && b.name == name {
			return s.blockLocked(b), nil
		}
	}
	return core.Block{}, fmt.Errorf("%s %q: %w", kind, name, storage.ErrNotFound)
}

func (s *Store) add(ctx context.Context, kind core.Kind, name string) (core.Ref, error) {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(kind, name)
}

func (s *Store) addLocked(kind core.Kind, name string) (core.Ref, error) {
	final, err := storage.UniqueName(name, func(n string) bool {
		return s.takenLocked(kind, n, "")
	})
	if err != nil {
		return core.Ref{}, err
	}
	s.seq++
	ref := core.Ref{Kind: kind, ID: "mem-" + strconv.Itoa(s.seq)}
	s.blocks[ref.ID] = &block{ref: ref, name: final, seq: s.seq}
	return ref, nil
}

func (s *Store) checkLocked(ref core.Ref, kind core.Kind) error {
	b, ok := s.blocks[ref.ID]
	if !ok || b.ref.Kind != kind {
		return fmt.Errorf("%s %s: %w", kind, ref.ID, storage.ErrNotFound)
	}
	return nil
}

func (s *Store) takenLocked(kind core.Kind, name, except string) bool {
	for id, b := range s.blocks {
		if id != except && b.ref.Kind == kind && b.name == name {
			return true
		}
	}
	return false
}

func (s *Store) usersLocked(id string) int {
	n := 0
	for _, obj := range s.objects {
		if obj.mesh == id {
			n++
		}
		for _, m := range obj.materials {
			if m == id {
				n++
			}
		}
	}
	return n
}

func (s *Store) blockLocked(b *block) core.Block {
	users := 0
	if b.ref.Kind != core.KindObject {
		users = s.usersLocked(b.ref.ID)
	}
	return core.Block{Ref: b.ref, Name: b.name, Users: users}
}

func (s *Store) objectLocked(id string) core.Object {
	b := s.blocks[id]
	obj := s.objects[id]

	out := core.Object{Ref: b.ref, Name: b.name}
	if obj.mesh != "" {
		mesh := s.blockLocked(s.blocks[obj.mesh])
		out.Data = &mesh
	}
	if len(obj.materials) > 0 {
		out.Materials = make([]*core.Block, len(obj.materials))
		for i, m := range obj.materials {
			if m == "" {
				continue
			}
			mat := s.blockLocked(s.blocks[m])
			out.Materials[i] = &mat
		}
	}
	return out
}
