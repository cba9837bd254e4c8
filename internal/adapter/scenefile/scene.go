// Package scenefile reads a scene description from YAML and builds it in a
// document store.
package scenefile

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/tianer2820/namecleanup/internal/adapter/storage"
	"github.com/tianer2820/namecleanup/internal/core"
)

type Scene struct {
	Meshes    []string `yaml:"meshes"`
	Materials []string `yaml:"materials"`
	Images    []string `yaml:"images"`
	Objects   []Object `yaml:"objects"`
}

type Object struct {
	Name string `yaml:"name"`
	Mesh string `yaml:"mesh"`
	// Materials names one material per slot; "" is an empty slot.
	Materials []string `yaml:"materials"`
	Selected  bool     `yaml:"selected"`
}

func Load(r io.Reader) (*Scene, error) {
	var sc Scene
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	return &sc, nil
}

// Apply creates the scene's blocks and objects in ed and selects the
// objects marked selected, in file order. Mesh and material references
// resolve against the names in the same file.
func Apply(ctx context.Context, ed storage.Editor, sc *Scene) error {
	meshes := make(map[string]core.Ref, len(sc.Meshes))
	for _, name := range sc.Meshes {
		ref, err := ed.AddMesh(ctx, name)
		if err != nil {
			return fmt.Errorf("mesh %q: %w", name, err)
		}
		meshes[name] = ref
	}
	materials := make(map[string]core.Ref, len(sc.Materials))
	for _, name := range sc.Materials {
		ref, err := ed.AddMaterial(ctx, name)
		if err != nil {
			return fmt.Errorf("material %q: %w", name, err)
		}
		materials[name] = ref
	}
	for _, name := range sc.Images {
		if _, err := ed.AddImage(ctx, name); err != nil {
			return fmt.Errorf("image %q: %w", name, err)
		}
	}

	for _, o := range sc.Objects {
		var mesh *core.Ref
		if o.Mesh != "" {
			ref, ok := meshes[o.Mesh]
			if !ok {
				return fmt.Errorf("object %q: mesh %q: %w", o.Name, o.Mesh, storage.ErrNotFound)
			}
			mesh = &ref
		}
		slots := make([]core.Ref, len(o.Materials))
		for i, m := range o.Materials {
			if m == "" {
				continue
			}
			ref, ok := materials[m]
			if !ok {
				return fmt.Errorf("object %q: material %q: %w", o.Name, m, storage.ErrNotFound)
			}
			slots[i] = ref
		}

		ref, err := ed.AddObject(ctx, o.Name, mesh, slots)
		if err != nil {
			return fmt.Errorf("object %q: %w", o.Name, err)
		}
		if o.Selected {
			if err := ed.Select(ctx, ref.ID); err != nil {
				return err
			}
		}
	}
	return nil
}
