package audit

import (
	"context"

	"github.com/tianer2820/namecleanup/internal/core"
	"github.com/tianer2820/namecleanup/internal/usecase/cleanup"
)

type Store interface {
	SelectedObjects(ctx context.Context) ([]core.Object, error)
	Images(ctx context.Context) ([]core.Block, error)
}

// Change is one rename a do-all run would make.
type Change struct {
	Pass string
	Ref  core.Ref
	From string
	To   string
}

type Options struct {
	Limit int // 0 means no limit
}

type Service struct {
	store Store
}

func New(store Store) *Service {
	return &Service{store: store}
}

// Pending lists the renames a full do-all run would make, in the order the
// passes would make them. Nothing is written. Suffixes the document adds to
// keep names unique are not predicted.
func (s *Service) Pending(ctx context.Context, opt Options) ([]Change, error) {
	objs, err := s.store.SelectedObjects(ctx)
	if err != nil {
		return nil, err
	}
	images, err := s.store.Images(ctx)
	if err != nil {
		return nil, err
	}

	var out []Change
	add := func(pass string, ref core.Ref, from, to string) {
		if from != to {
			out = append(out, Change{Pass: pass, Ref: ref, From: from, To: to})
		}
	}

	for _, obj := range objs {
		add(cleanup.PassLowerObjects, obj.Ref, obj.Name, core.FormatName(obj.Name))
	}
	for _, img := range images {
		add(cleanup.PassLowerImages, img.Ref, img.Name, core.FormatName(img.Name))
	}
	for _, obj := range objs {
		if mesh := obj.Data; mesh != nil && mesh.Kind == core.KindMesh && mesh.SinglyUsed() {
			add(cleanup.PassSyncMeshes, mesh.Ref, mesh.Name, core.FormatName(obj.Name))
		}
	}
	for _, obj := range objs {
		for _, mat := range obj.Materials {
			if mat.SinglyUsed() {
				add(cleanup.PassSyncMaterials, mat.Ref, mat.Name, core.FormatName(obj.Name))
			}
		}
	}

	if opt.Limit > 0 && len(out) > opt.Limit {
		out = out[:opt.Limit]
	}
	return out, nil
}
