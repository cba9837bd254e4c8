package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/tianer2820/namecleanup/internal/app"
	"github.com/tianer2820/namecleanup/internal/config"
	"github.com/tianer2820/namecleanup/internal/core"
)

type ExportBlock struct {
	ID       string `json:"id"`
	Kind     string `json:"kind"`
	Name     string `json:"name"`
	Users    int    `json:"users,omitempty"`
	Selected bool   `json:"selected,omitempty"`
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := pflag.NewFlagSet("namecleanupctl", pflag.ContinueOnError)
	flags := config.Bind(fs)
	var (
		importPath = fs.String("import", "", "YAML scene to add to the document before running")
		commands   = fs.StringArray("run", nil, "cleanup command to run (repeatable, in order)")
		out        = fs.String("out", "", "write the document as JSON to this file (- for stdout)")
	)
	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	cfg, err := flags.Resolve(fs)
	if err != nil {
		return err
	}
	// headless runs work on a database unless told otherwise
	if !fs.Changed("store") {
		cfg.Store.Driver = config.DriverSQLite
	}

	ctx := context.Background()
	a, err := app.Open(ctx, cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	if *importPath != "" {
		if err := a.LoadScene(ctx, *importPath); err != nil {
			return err
		}
	}

	for _, id := range *commands {
		reports, err := a.Commands.Invoke(ctx, id)
		for _, r := range reports {
			fmt.Fprintln(stdout, r.Message())
		}
		if err != nil {
			return err
		}
	}

	if *out == "" {
		return nil
	}
	export, err := exportDocument(ctx, a)
	if err != nil {
		return err
	}
	if *out == "-" {
		return writeJSON(stdout, export)
	}

	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()
	if err := writeJSON(f, export); err != nil {
		return err
	}
	fmt.Fprintln(stdout, "exported", len(export), "blocks to", *out)
	return nil
}

func exportDocument(ctx context.Context, a *app.App) ([]ExportBlock, error) {
	selected := map[string]bool{}
	objs, err := a.Store.SelectedObjects(ctx)
	if err != nil {
		return nil, err
	}
	for _, o := range objs {
		selected[o.ID] = true
	}

	var export []ExportBlock
	for _, kind := range core.Kinds {
		blocks, err := a.Store.List(ctx, kind)
		if err != nil {
			return nil, err
		}
		for _, b := range blocks {
			export = append(export, ExportBlock{
				ID:       b.ID,
				Kind:     string(b.Kind),
				Name:     b.Name,
				Users:    b.Users,
				Selected: selected[b.ID],
			})
		}
	}
	return export, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
