package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/tianer2820/namecleanup/internal/app"
	"github.com/tianer2820/namecleanup/internal/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	fs := pflag.NewFlagSet("namecleanup", pflag.ContinueOnError)
	flags := config.Bind(fs)
	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	cfg, err := flags.Resolve(fs)
	if err != nil {
		return err
	}

	ctx := context.Background()
	a, err := app.Open(ctx, cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	sh := newShell(a, os.Stdout)

	fmt.Println("Name Cleanup")
	fmt.Println(usage)

	sc := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !sc.Scan() {
			break
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if !sh.exec(ctx, line) {
			return nil
		}
	}
	return sc.Err()
}
