// seehuhn.de/go/vectorize - approximate images with evolving polygons
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Command vectorize approximates an image by a set of translucent
// polygons.
//
// Usage:
//
//	vectorize run -config vectorize.yaml     # evolve, resuming if possible
//	vectorize run -target photo.jpg          # evolve with default settings
//	vectorize info -db vectorize.db          # summarise the stored run
//	vectorize render -db vectorize.db -o best.png -scale 4
//	vectorize plot -db vectorize.db -o fitness.png
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"seehuhn.de/go/vectorize"
	"seehuhn.de/go/vectorize/config"
)

// Tags of the images stored next to the genomes.
const (
	tagTarget     = "target"
	tagImportance = "importance"
)

type command struct {
	usage string
	run   func(ctx context.Context, args []string) error
}

var commands = map[string]*command{
	"run":    {"evolve polygons towards the target image", cmdRun},
	"info":   {"show a summary of the stored run", cmdInfo},
	"render": {"render the best stored genome to a PNG file", cmdRender},
	"plot":   {"plot the fitness history", cmdPlot},
}

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}
	name := os.Args[1]
	if name == "help" || name == "-h" || name == "-help" {
		usage(os.Stdout)
		return
	}
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "vectorize: unknown command %q\n", name)
		usage(os.Stderr)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := cmd.run(ctx, os.Args[2:])
	if errors.Is(err, flag.ErrHelp) {
		return
	} else if err != nil {
		slog.Error("vectorize: "+name, "error", err)
		stop()
		os.Exit(1)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: vectorize <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	for _, name := range slices.Sorted(maps.Keys(commands)) {
		fmt.Fprintf(w, "  %-8s %s\n", name, commands[name].usage)
	}
}

// loadConfig reads the configuration file, if any, and sets up logging.
func loadConfig(path string) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// setupLogging installs the configured logger as the default logger and
// as the logger of the vectorize package.
func setupLogging(cfg config.LogConfig, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	switch cfg.Format {
	case "json":
		h = slog.NewJSONHandler(w, opts)
	case "text", "":
		h = slog.NewTextHandler(w, opts)
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
	logger := slog.New(h)
	slog.SetDefault(logger)
	vectorize.SetLogger(logger)
	return logger, nil
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("vectorize "+name, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: vectorize %s [flags]\n", name)
		fs.PrintDefaults()
	}
	return fs
}
