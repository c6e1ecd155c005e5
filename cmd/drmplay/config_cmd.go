// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ManuGH/drmplay/internal/config"
	"github.com/ManuGH/drmplay/internal/version"
)

func runConfigCLI(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printConfigUsage(stderr)
		return 0
	}

	switch args[0] {
	case "init":
		return runConfigInit(args[1:], stdout, stderr)
	case "validate":
		return runConfigValidate(args[1:], stdout, stderr)
	case "dump":
		return runConfigDump(args[1:], stdout, stderr)
	default:
		fmt.Fprintf(stderr, "Unknown subcommand: %s\n\n", args[0])
		printConfigUsage(stderr)
		return 2
	}
}

func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  drmplay config init [--force] <path.yaml>")
	fmt.Fprintln(w, "  drmplay config validate [--file|-f config.yaml]")
	fmt.Fprintln(w, "  drmplay config dump [--file|-f config.yaml] [--format=yaml|json]")
}

func runConfigInit(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("drmplay config init", flag.ContinueOnError)
	fs.SetOutput(stderr)
	force := fs.Bool("force", false, "overwrite an existing file")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "Error: exactly one target path is required")
		return 2
	}
	path := fs.Arg(0)
	if err := config.WriteExample(path, *force); err != nil {
		if errors.Is(err, config.ErrConfigExists) {
			fmt.Fprintf(stderr, "Error: %v (use --force to overwrite)\n", err)
			return 1
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "wrote example configuration to %s\n", path)
	return 0
}

func loadForCLI(args []string, name string, stderr io.Writer, extra func(*flag.FlagSet)) (config.AppConfig, string, int) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	var file string
	fs.StringVar(&file, "file", "", "path to YAML configuration file")
	fs.StringVar(&file, "f", "", "path to YAML configuration file (shorthand)")
	if extra != nil {
		extra(fs)
	}
	if err := fs.Parse(args); err != nil {
		return config.AppConfig{}, "", 2
	}
	path := strings.TrimSpace(file)
	cfg, err := config.NewLoader(path, version.Version).Load()
	if err != nil {
		fmt.Fprintf(stderr, "Configuration error in %s:\n  %v\n", displayPath(path), err)
		return config.AppConfig{}, path, 1
	}
	return cfg, path, 0
}

func displayPath(path string) string {
	if path == "" {
		return "environment"
	}
	return path
}

func runConfigValidate(args []string, stdout, stderr io.Writer) int {
	_, path, code := loadForCLI(args, "drmplay config validate", stderr, nil)
	if code != 0 {
		return code
	}
	fmt.Fprintf(stdout, "%s is valid\n", displayPath(path))
	return 0
}

// runConfigDump prints the effective configuration with the token masked.
func runConfigDump(args []string, stdout, stderr io.Writer) int {
	var format string
	cfg, _, code := loadForCLI(args, "drmplay config dump", stderr, func(fs *flag.FlagSet) {
		fs.StringVar(&format, "format", "yaml", "output format: yaml or json")
	})
	if code != 0 {
		return code
	}
	if cfg.Identity.AccessToken != "" {
		cfg.Identity.AccessToken = "***"
	}

	switch format {
	case "json":
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(cfg); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	case "yaml":
		enc := yaml.NewEncoder(stdout)
		enc.SetIndent(2)
		if err := enc.Encode(config.ToFileConfig(cfg)); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		_ = enc.Close()
	default:
		fmt.Fprintf(stderr, "Error: unknown format %q\n", format)
		return 2
	}
	return 0
}
