package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tianer2820/namecleanup/internal/app"
	"github.com/tianer2820/namecleanup/internal/core"
	"github.com/tianer2820/namecleanup/internal/usecase/audit"
	"github.com/tianer2820/namecleanup/internal/usecase/command"
)

const usage = `Commands:
  mesh|material|image <name>               add a data-block
  object <name> <mesh|-> [material|-]...   add an object
  select <object>... | deselect            change the selection
  list [object|mesh|material|image]        show names and users
  preview                                  show what do_all_formattings would rename
  commands                                 show cleanup commands and availability
  run <command> | <command>                run a cleanup command
  quit`

var (
	infoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	dimStyle   = lipgloss.NewStyle().Faint(true)
	labelStyle = lipgloss.NewStyle().Bold(true)
)

type shell struct {
	app *app.App
	out io.Writer
}

func newShell(a *app.App, out io.Writer) *shell {
	return &shell{app: a, out: out}
}

// exec runs one line and returns false when the shell should exit.
func (s *shell) exec(ctx context.Context, line string) bool {
	args, err := splitArgs(line)
	if err != nil {
		s.fail(err)
		return true
	}
	if len(args) == 0 {
		return true
	}
	cmd, rest := strings.ToLower(args[0]), args[1:]

	switch cmd {
	case "quit", "exit":
		return false

	case "help":
		fmt.Fprintln(s.out, usage)

	case "mesh", "material", "image":
		if len(rest) != 1 {
			fmt.Fprintf(s.out, "usage: %s <name>\n", cmd)
			return true
		}
		s.add(ctx, core.Kind(cmd), rest[0])

	case "object":
		if len(rest) < 2 {
			fmt.Fprintln(s.out, "usage: object <name> <mesh|-> [material|-]...")
			return true
		}
		s.addObject(ctx, rest[0], rest[1], rest[2:])

	case "select":
		for _, name := range rest {
			b, err := s.app.Store.Lookup(ctx, core.KindObject, name)
			if err == nil {
				err = s.app.Store.Select(ctx, b.ID)
			}
			if err != nil {
				s.fail(err)
				return true
			}
		}

	case "deselect":
		if err := s.app.Store.ClearSelection(ctx); err != nil {
			s.fail(err)
		}

	case "list":
		kinds := core.Kinds
		if len(rest) > 0 {
			kinds = []core.Kind{core.Kind(strings.ToLower(rest[0]))}
		}
		s.list(ctx, kinds)

	case "preview":
		s.preview(ctx)

	case "commands":
		s.commands(ctx)

	case "run":
		if len(rest) != 1 {
			fmt.Fprintln(s.out, "usage: run <command>")
			return true
		}
		s.invoke(ctx, rest[0])

	default:
		if _, err := s.app.Commands.Lookup(cmd); err == nil {
			s.invoke(ctx, cmd)
			return true
		}
		fmt.Fprintln(s.out, "unknown command:", cmd)
		fmt.Fprintln(s.out, usage)
	}
	return true
}

func (s *shell) add(ctx context.Context, kind core.Kind, name string) {
	var err error
	switch kind {
	case core.KindMesh:
		_, err = s.app.Store.AddMesh(ctx, name)
	case core.KindMaterial:
		_, err = s.app.Store.AddMaterial(ctx, name)
	case core.KindImage:
		_, err = s.app.Store.AddImage(ctx, name)
	}
	if err != nil {
		s.fail(err)
	}
}

func (s *shell) addObject(ctx context.Context, name, mesh string, materials []string) {
	var meshRef *core.Ref
	if mesh != "-" {
		b, err := s.app.Store.Lookup(ctx, core.KindMesh, mesh)
		if err != nil {
			s.fail(err)
			return
		}
		meshRef = &b.Ref
	}
	slots := make([]core.Ref, len(materials))
	for i, m := range materials {
		if m == "-" {
			continue
		}
		b, err := s.app.Store.Lookup(ctx, core.KindMaterial, m)
		if err != nil {
			s.fail(err)
			return
		}
		slots[i] = b.Ref
	}
	if _, err := s.app.Store.AddObject(ctx, name, meshRef, slots); err != nil {
		s.fail(err)
	}
}

func (s *shell) list(ctx context.Context, kinds []core.Kind) {
	selected := map[string]bool{}
	if objs, err := s.app.Store.SelectedObjects(ctx); err == nil {
		for _, o := range objs {
			selected[o.ID] = true
		}
	}

	for _, kind := range kinds {
		blocks, err := s.app.Store.List(ctx, kind)
		if err != nil {
			s.fail(err)
			return
		}
		fmt.Fprintln(s.out, labelStyle.Render(string(kind)+"s"))
		if len(blocks) == 0 {
			fmt.Fprintln(s.out, dimStyle.Render("  (none)"))
			continue
		}
		for _, b := range blocks {
			mark := " "
			if selected[b.ID] {
				mark = "*"
			}
			line := fmt.Sprintf("  %s %q", mark, b.Name)
			if kind != core.KindObject {
				line += dimStyle.Render(fmt.Sprintf(" users=%d", b.Users))
			}
			fmt.Fprintln(s.out, line)
		}
	}
}

func (s *shell) preview(ctx context.Context) {
	changes, err := s.app.Audit.Pending(ctx, audit.Options{})
	if err != nil {
		s.fail(err)
		return
	}
	if len(changes) == 0 {
		fmt.Fprintln(s.out, "(nothing to rename)")
		return
	}
	for _, c := range changes {
		fmt.Fprintf(s.out, "%-20s %-8s %q -> %q\n", c.Pass, c.Ref.Kind, c.From, c.To)
	}
}

func (s *shell) commands(ctx context.Context) {
	for _, c := range s.app.Commands.Commands() {
		ok, err := c.Poll(ctx)
		state := "available"
		if err != nil {
			state = "error: " + err.Error()
		} else if !ok {
			state = dimStyle.Render("needs a selection")
		}
		fmt.Fprintf(s.out, "%-22s %-22s %s\n", c.ID, c.Label, state)
	}
}

func (s *shell) invoke(ctx context.Context, id string) {
	reports, err := s.app.Commands.Invoke(ctx, id)
	for _, r := range reports {
		fmt.Fprintln(s.out, infoStyle.Render(r.Message()))
	}
	if errors.Is(err, command.ErrUnavailable) {
		fmt.Fprintln(s.out, dimStyle.Render(id+": select at least one object first"))
		return
	}
	if err != nil {
		s.fail(err)
	}
}

func (s *shell) fail(err error) {
	fmt.Fprintln(s.out, errStyle.Render("error: "+err.Error()))
}
