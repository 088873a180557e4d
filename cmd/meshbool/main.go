// meshbool evaluates scene scripts that validate meshes and combine them
// with boolean operations.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/chazu/meshbool/pkg/config"
	"github.com/chazu/meshbool/pkg/engine"
	"github.com/chazu/meshbool/pkg/logger"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 1
	}

	command := args[0]
	args = args[1:]

	switch command {
	case "run":
		return cmdRun(args, stdout, stderr)
	case "check":
		return cmdCheck(args, stdout, stderr)
	case "config":
		return cmdConfig(args, stdout, stderr)
	case "help", "-h", "--help":
		printUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", command)
		printUsage(stderr)
		return 1
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `meshbool - mesh validation and boolean scene scripts

Usage:
  meshbool <command> [options] <script.mbl>

Commands:
  run <script.mbl>     Evaluate a script and write its outputs as STL
  check <script.mbl>   Evaluate a script and print its validation reports
  config               Print the effective config, or write it with -save / -o

Options:
  -o <path>            Output directory for run (default "."), config file for config
  -save                Write the effective config to the user config directory
  -config <file>       Config file (default ./meshbool.yaml)
  -policy <name>       Validation policy: strict or relaxed
  -kernel <name>       Boolean kernel: sdfx or manifold
  -cells <n>           Marching cubes resolution of the sdfx kernel
  -debug               Enable debug logging

Examples:
  meshbool run -o out examples/overlap.mbl
  meshbool check -policy relaxed examples/validity.mbl
  meshbool config -policy relaxed -cells 96 -save`)
}

// setup parses the common flags, loads the config and builds the App.
func setup(name string, args []string, stderr io.Writer, extra func(*flag.FlagSet)) (*App, *flag.FlagSet, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	var f config.Flags
	f.Register(fs)
	if extra != nil {
		extra(fs)
	}
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if fs.NArg() != 1 {
		return nil, nil, fmt.Errorf("usage: meshbool %s [options] <script.mbl>", name)
	}

	cfg, err := config.Load(&f)
	if err != nil {
		return nil, nil, err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, nil, err
	}
	logger.Sugar.Debugf("%s: policy=%s kernel=%s cells=%d timeout=%s",
		name, cfg.Validation.Policy, cfg.Kernel.Backend, cfg.Kernel.MeshCells, cfg.Engine.Timeout)
	app, err := NewApp(cfg, logger.Log)
	if err != nil {
		return nil, nil, err
	}
	return app, fs, nil
}

func evalFile(app *App, path string) (*engine.Scene, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return app.Evaluate(string(source))
}

func cmdRun(args []string, stdout, stderr io.Writer) int {
	var outDir string
	app, fs, err := setup("run", args, stderr, func(fs *flag.FlagSet) {
		fs.StringVar(&outDir, "o", ".", "Output directory")
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	scene, err := evalFile(app, fs.Arg(0))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	written, err := app.WriteSTL(outDir, scene)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	for _, p := range written {
		fmt.Fprintln(stdout, p)
	}
	return 0
}

func cmdCheck(args []string, stdout, stderr io.Writer) int {
	app, fs, err := setup("check", args, stderr, nil)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	scene, err := evalFile(app, fs.Arg(0))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	code := 0
	for _, c := range scene.Checks {
		fmt.Fprintf(stdout, "%-20s %s\n", c.Name, c.Report)
		if !c.Report.Valid {
			code = 2
		}
	}
	return code
}

func cmdConfig(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		f    config.Flags
		save bool
		out  string
	)
	f.Register(fs)
	fs.BoolVar(&save, "save", false, "Write to the user config directory")
	fs.StringVar(&out, "o", "", "Write to this file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(stderr, "Error: usage: meshbool config [options]")
		return 1
	}

	cfg, err := config.Load(&f)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	switch {
	case out != "":
		err = cfg.SaveTo(out)
	case save:
		out = filepath.Join(config.ConfigDir(), config.FileName)
		err = cfg.Save()
	default:
		var data []byte
		if data, err = cfg.Marshal(); err == nil {
			_, err = stdout.Write(data)
		}
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if out != "" {
		fmt.Fprintln(stdout, out)
	}
	return 0
}
