// Package cleanup implements the rename passes: lowercasing object and image
// names and copying object names onto their singly-used meshes and
// materials.
package cleanup

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tianer2820/namecleanup/internal/adapter/storage"
	"github.com/tianer2820/namecleanup/internal/core"
	"github.com/tianer2820/namecleanup/internal/logging"
)

// Pass identifiers, also used as command ids.
const (
	PassLowerObjects  = "lower_object_names"
	PassLowerImages   = "lower_image_names"
	PassSyncMeshes    = "sync_mesh_names"
	PassSyncMaterials = "sync_material_names"
)

type Config struct {
	// LegacyReports keeps the original report nouns ("materials" for
	// images, "meshs" for meshes).
	LegacyReports bool
}

// Report is the outcome of one pass.
type Report struct {
	Pass  string
	Count int

	noun string
}

// Message is the line shown to the user, e.g. "renamed 3 objects".
func (r Report) Message() string {
	return fmt.Sprintf("renamed %d %s", r.Count, r.noun)
}

type Service struct {
	store storage.Store
	log   *slog.Logger
	cfg   Config
}

func New(store storage.Store, log *slog.Logger, cfg Config) *Service {
	if log == nil {
		log = logging.Discard()
	}
	return &Service{store: store, log: log, cfg: cfg}
}

// LowerObjectNames formats the name of every selected object.
func (s *Service) LowerObjectNames(ctx context.Context) (Report, error) {
	rep := s.report(PassLowerObjects, "objects")

	objs, err := s.store.SelectedObjects(ctx)
	if err != nil {
		return rep, fmt.Errorf("%s: %w", rep.Pass, err)
	}
	for _, obj := range objs {
		changed, err := s.rename(ctx, obj.Ref, obj.Name, core.FormatName(obj.Name))
		if err != nil {
			return rep, fmt.Errorf("%s: %w", rep.Pass, err)
		}
		if changed {
			rep.Count++
		}
	}
	return s.done(rep), nil
}

// LowerImageNames formats the name of every image in the document.
func (s *Service) LowerImageNames(ctx context.Context) (Report, error) {
	noun := "images"
	if s.cfg.LegacyReports {
		noun = "materials"
	}
	rep := s.report(PassLowerImages, noun)

	images, err := s.store.Images(ctx)
	if err != nil {
		return rep, fmt.Errorf("%s: %w", rep.Pass, err)
	}
	for _, img := range images {
		changed, err := s.rename(ctx, img.Ref, img.Name, core.FormatName(img.Name))
		if err != nil {
			return rep, fmt.Errorf("%s: %w", rep.Pass, err)
		}
		if changed {
			rep.Count++
		}
	}
	return s.done(rep), nil
}

// SyncMeshNames gives each selected object's mesh the object's name,
// unless the mesh is shared with another object.
func (s *Service) SyncMeshNames(ctx context.Context) (Report, error) {
	noun := "meshes"
	if s.cfg.LegacyReports {
		noun = "meshs"
	}
	rep := s.report(PassSyncMeshes, noun)

	objs, err := s.store.SelectedObjects(ctx)
	if err != nil {
		return rep, fmt.Errorf("%s: %w", rep.Pass, err)
	}
	for _, obj := range objs {
		mesh := obj.Data
		if mesh == nil || mesh.Kind != core.KindMesh || !mesh.SinglyUsed() {
			continue
		}
		changed, err := s.rename(ctx, mesh.Ref, mesh.Name, obj.Name)
		if err != nil {
			return rep, fmt.Errorf("%s: %w", rep.Pass, err)
		}
		if changed {
			rep.Count++
		}
	}
	return s.done(rep), nil
}

// SyncMaterialNames gives every singly-used material in the slots of each
// selected object the object's name.
func (s *Service) SyncMaterialNames(ctx context.Context) (Report, error) {
	rep := s.report(PassSyncMaterials, "materials")

	objs, err := s.store.SelectedObjects(ctx)
	if err != nil {
		return rep, fmt.Errorf("%s: %w", rep.Pass, err)
	}
	for _, obj := range objs {
		for _, mat := range obj.Materials {
			if !mat.SinglyUsed() {
				continue
			}
			changed, err := s.rename(ctx, mat.Ref, mat.Name, obj.Name)
			if err != nil {
				return rep, fmt.Errorf("%s: %w", rep.Pass, err)
			}
			if changed {
				rep.Count++
			}
		}
	}
	return s.done(rep), nil
}

// DoAll runs the four passes in order. Object names are lowered before the
// sync passes copy them. A failing pass stops the run; the reports of the
// passes that completed are returned with the error and their renames stay.
func (s *Service) DoAll(ctx context.Context) ([]Report, error) {
	passes := []func(context.Context) (Report, error){
		s.LowerObjectNames,
		s.LowerImageNames,
		s.SyncMeshNames,
		s.SyncMaterialNames,
	}

	reports := make([]Report, 0, len(passes))
	for _, pass := range passes {
		rep, err := pass(ctx)
		if err != nil {
			return reports, err
		}
		reports = append(reports, rep)
	}
	return reports, nil
}

func (s *Service) report(pass, noun string) Report {
	return Report{Pass: pass, noun: noun}
}

// rename writes want over current when they differ and reports whether the
// stored name changed. The store may adjust want to keep it unique, so a
// block whose wanted name is held by another block can end up unchanged.
func (s *Service) rename(ctx context.Context, ref core.Ref, current, want string) (bool, error) {
	if current == want {
		return false, nil
	}
	got, err := s.store.Rename(ctx, ref, want)
	if err != nil {
		return false, fmt.Errorf("rename %s %q: %w", ref.Kind, current, err)
	}
	if got == current {
		return false, nil
	}
	s.log.Debug("renamed", "kind", ref.Kind, "id", ref.ID, "from", current, "to", got)
	return true, nil
}

func (s *Service) done(rep Report) Report {
	s.log.Info(rep.Message(), "pass", rep.Pass, "renamed", rep.Count)
	return rep
}
