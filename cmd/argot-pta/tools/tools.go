// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package tools contains utility types and functions for the argot-pta tool frontends.
package tools

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/awslabs/ar-go-pta/analysis/config"
	"github.com/awslabs/ar-go-pta/analysis/ir"
	"github.com/awslabs/ar-go-pta/analysis/pta"
	"github.com/awslabs/ar-go-pta/analysis/pta/builder"
	"github.com/awslabs/ar-go-pta/internal/formatutil"
)

// Version is the version of the argot-pta tools
const Version = "v0.1.0"

// UnparsedCommonFlags represents an unparsed CLI sub-command flags.
type UnparsedCommonFlags struct {
	FlagSet     *flag.FlagSet
	ConfigPath  *string
	Verbose     *bool
	NoColor     *bool
	Entrypoints *EntrypointFlags
}

// NewUnparsedCommonFlags returns an unparsed flag set with a given name.
// This is useful for creating sub-commands that have the flags -config, -verbose, -no-color and -entry
// but need other flags in addition.
func NewUnparsedCommonFlags(name string) UnparsedCommonFlags {
	cmd := flag.NewFlagSet(name, flag.ExitOnError)
	configPath := cmd.String("config", "", "config file path for analysis")
	verbose := cmd.Bool("verbose", false, "verbose printing on standard output")
	noColor := cmd.Bool("no-color", false, "disable colored output")
	entrypoints := &EntrypointFlags{}
	cmd.Var(entrypoints, "entry", "entrypoint Class.method, added to the entrypoints of the config (repeatable)")
	return UnparsedCommonFlags{
		FlagSet:     cmd,
		ConfigPath:  configPath,
		Verbose:     verbose,
		NoColor:     noColor,
		Entrypoints: entrypoints,
	}
}

// Parse parses args and returns the common flags
func (f UnparsedCommonFlags) Parse(args []string) (CommonFlags, error) {
	if err := f.FlagSet.Parse(args); err != nil {
		return CommonFlags{}, fmt.Errorf("failed to parse command %s with args %v: %v", f.FlagSet.Name(), args, err)
	}
	if *f.NoColor {
		formatutil.SetColors(false)
	}
	return CommonFlags{
		FlagSet:     f.FlagSet,
		ConfigPath:  *f.ConfigPath,
		Verbose:     *f.Verbose,
		Entrypoints: *f.Entrypoints,
	}, nil
}

// CommonFlags represents a parsed CLI sub-command flags.
// E.g., for the command `argot-pta callgraph ...`, "callgraph" is the sub-command.
type CommonFlags struct {
	FlagSet     *flag.FlagSet
	ConfigPath  string
	Verbose     bool
	Entrypoints EntrypointFlags
}

// NewCommonFlags returns a parsed flag set with a given name.
// Returns an error if args are invalid.
// Prints cmdUsage along with flag docs as the --help message.
func NewCommonFlags(name string, args []string, cmdUsage string) (CommonFlags, error) {
	flags := NewUnparsedCommonFlags(name)
	SetUsage(flags.FlagSet, cmdUsage)
	return flags.Parse(args)
}

// SetUsage sets cmd's usage (for --help flag) to output the string cmdUsage
// followed by each flag's documentation.
func SetUsage(cmd *flag.FlagSet, cmdUsage string) {
	cmd.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s\n", cmdUsage)
		fmt.Fprintf(os.Stderr, "Options:\n")
		cmd.VisitAll(func(f *flag.Flag) {
			fmt.Fprintf(os.Stderr, "  %s: %s (default: %q)\n", f.Name, f.Usage, f.DefValue)
		})
	}
}

// EntrypointFlags represents the entrypoints given on the command line.
type EntrypointFlags []ir.MethodRef

func (e *EntrypointFlags) String() string {
	if e == nil {
		return "[]"
	}
	return fmt.Sprintf("%v", []ir.MethodRef(*e))
}

// Set parses value as a method reference and adds it to e.
// This method satisfies the flag.Value interface.
func (e *EntrypointFlags) Set(value string) error {
	m, err := ir.ParseMethodRef(value)
	if err != nil {
		return err
	}
	*e = append(*e, m)
	return nil
}

// LoadConfig loads the config file from configPath. An empty path gives the default config.
func LoadConfig(configPath string) (*config.Config, error) {
	if configPath == "" {
		return config.NewDefault(), nil
	}
	config.SetGlobalConfig(configPath)
	cfg, err := config.LoadGlobal()
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %v", configPath, err)
	}

	return cfg, nil
}

// Analysis is the outcome of running the pointer analysis from a tool
type Analysis struct {
	Config *config.Config
	Logger *config.LogGroup
	Result *pta.Result
	// Partial is true when the analysis stopped before its fixpoint
	Partial bool
}

// Analyze loads the configuration and the program named by the flags, and runs the pointer analysis from the
// entrypoints of the config and of the -entry flags. An interrupt stops the analysis; the partial result is then
// returned with Partial set, as it is when the step bound of the config is reached.
func Analyze(flags CommonFlags) (*Analysis, error) {
	cfg, err := LoadConfig(flags.ConfigPath)
	if err != nil {
		return nil, err
	}
	if flags.Verbose && cfg.LogLevel < int(config.DebugLevel) {
		cfg.LogLevel = int(config.DebugLevel)
	}
	logger := config.NewLogGroup(cfg)

	args := flags.FlagSet.Args()
	if len(args) != 1 {
		return nil, fmt.Errorf("expected one program file, got %d arguments", len(args))
	}
	logger.Infof(formatutil.Faint("Reading program %s")+"\n", args[0])
	program, err := ir.LoadProgram(args[0])
	if err != nil {
		return nil, fmt.Errorf("could not load program: %w", err)
	}

	entrypoints := builder.EntrypointsFromConfig(cfg)
	for _, m := range flags.Entrypoints {
		entrypoints = append(entrypoints, builder.Entrypoint{Method: m})
	}

	var opts []builder.Option
	if logger.LogsAt(config.TraceLevel) {
		opts = append(opts, builder.WithMonitor(func(p builder.Progress) {
			logger.Tracef("step %d: %d nodes, %d edges, %d constraints, points-to size %d\n",
				p.Step, p.Nodes, p.CallEdges, p.Constraints, p.PointsToSize)
		}))
	}
	b, err := builder.New(program, nil, cfg, logger, opts...)
	if err != nil {
		return nil, err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := b.Build(ctx, entrypoints)
	partial := false
	if err != nil {
		var cancel *pta.CancelError
		if !errors.As(err, &cancel) || cancel.Partial == nil {
			return nil, err
		}
		logger.Warnf("%v, reporting partial results\n", err)
		res, partial = cancel.Partial, true
	}
	logger.Debugf("Call graph of %s: %s, %s\n", args[0],
		formatutil.Plural(res.CallGraph.NumNodes(), "node"), formatutil.Plural(res.CallGraph.NumEdges(), "edge"))
	return &Analysis{Config: cfg, Logger: logger, Result: res, Partial: partial}, nil
}
