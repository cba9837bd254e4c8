// Package command exposes the cleanup passes as a table of named commands,
// each guarded by an availability check.
package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tianer2820/namecleanup/internal/adapter/storage"
	"github.com/tianer2820/namecleanup/internal/usecase/cleanup"
)

// Namespace may prefix command ids, as in "cleanup.lower_object_names".
const Namespace = "cleanup"

const DoAllFormattings = "do_all_formattings"

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUnavailable    = errors.New("command not available")
)

// Command is one entry of the table.
type Command struct {
	ID          string
	Label       string
	Description string

	// Poll reports whether the command can run against the current document.
	Poll func(ctx context.Context) (bool, error)
	Run  func(ctx context.Context) ([]cleanup.Report, error)
}

type Registry struct {
	byID  map[string]Command
	order []string
}

// New builds the standard command table over svc, using store for the
// selection checks.
func New(svc *cleanup.Service, store storage.Store) *Registry {
	hasSelection := func(ctx context.Context) (bool, error) {
		objs, err := store.SelectedObjects(ctx)
		if err != nil {
			return false, err
		}
		return len(objs) > 0, nil
	}
	always := func(context.Context) (bool, error) { return true, nil }

	r := &Registry{byID: make(map[string]Command)}
	r.add(Command{
		ID:          cleanup.PassLowerObjects,
		Label:       "Lower object names",
		Description: "Rename all selected objects to lower case",
		Poll:        hasSelection,
		Run:         single(svc.LowerObjectNames),
	})
	r.add(Command{
		ID:          cleanup.PassSyncMeshes,
		Label:       "Sync mesh names",
		Description: "Rename singly-used meshes of the selected objects after their object",
		Poll:        hasSelection,
		Run:         single(svc.SyncMeshNames),
	})
	r.add(Command{
		ID:          cleanup.PassSyncMaterials,
		Label:       "Sync material names",
		Description: "Rename singly-used materials of the selected objects after their object",
		Poll:        hasSelection,
		Run:         single(svc.SyncMaterialNames),
	})
	r.add(Command{
		ID:          cleanup.PassLowerImages,
		Label:       "Lower image names",
		Description: "Rename all images to lower case",
		Poll:        always,
		Run:         single(svc.LowerImageNames),
	})
	r.add(Command{
		ID:          DoAllFormattings,
		Label:       "Do all formattings",
		Description: "Lower object and image names, then sync mesh and material names",
		Poll:        hasSelection,
		Run:         svc.DoAll,
	})
	return r
}

func single(pass func(context.Context) (cleanup.Report, error)) func(context.Context) ([]cleanup.Report, error) {
	return func(ctx context.Context) ([]cleanup.Report, error) {
		rep, err := pass(ctx)
		if err != nil {
			return nil, err
		}
		return []cleanup.Report{rep}, nil
	}
}

func (r *Registry) add(c Command) {
	r.byID[c.ID] = c
	r.order = append(r.order, c.ID)
}

// Commands returns the table in registration order.
func (r *Registry) Commands() []Command {
	out := make([]Command, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// Lookup finds a command by id, with or without the namespace prefix.
func (r *Registry) Lookup(id string) (Command, error) {
	id = strings.TrimPrefix(strings.TrimSpace(id), Namespace+".")
	c, ok := r.byID[id]
	if !ok {
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, id)
	}
	return c, nil
}

// Available reports whether id exists and its check passes.
func (r *Registry) Available(ctx context.Context, id string) (bool, error) {
	c, err := r.Lookup(id)
	if err != nil {
		return false, err
	}
	return c.Poll(ctx)
}

// Invoke runs id if it is available. Nothing is renamed when the check
// fails.
func (r *Registry) Invoke(ctx context.Context, id string) ([]cleanup.Report, error) {
	c, err := r.Lookup(id)
	if err != nil {
		return nil, err
	}
	ok, err := c.Poll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.ID, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", c.ID, ErrUnavailable)
	}
	return c.Run(ctx)
}
