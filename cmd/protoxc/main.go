// Command protoxc is protox's command-line front end: it compiles a set of
// entry .proto files into a serialized FileDescriptorSet, the way protoc's
// --descriptor_set_out does (SPEC_FULL.md §5.3).
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"google.golang.org/protobuf/proto"

	"github.com/protoxlang/protox"
	"github.com/protoxlang/protox/resolver"
)

type flags struct {
	includes          []string
	descriptorSetIns  []string
	output            string
	includeImports    bool
	includeSourceInfo bool
	verbosity         int
	config            string
}

func (f *flags) bind(fs *pflag.FlagSet) {
	fs.StringSliceVarP(&f.includes, "include", "I", nil, "Import path root, repeatable.")
	fs.StringSliceVar(&f.descriptorSetIns, "descriptor-set-in", nil, "Pre-compiled descriptor set to resolve imports from, repeatable.")
	fs.StringVarP(&f.output, "output", "o", "-", `Output path for the serialized FileDescriptorSet ("-" for stdout).`)
	fs.BoolVar(&f.includeImports, "include-imports", true, "Include transitively-imported files' descriptors in the output set.")
	fs.BoolVar(&f.includeSourceInfo, "include-source-info", false, "Populate FileDescriptorProto.SourceCodeInfo (best-effort).")
	fs.CountVarP(&f.verbosity, "verbose", "v", "Increase logging verbosity; repeatable.")
	fs.StringVar(&f.config, "config", "protox.yaml", "Optional config file providing \"includes\" and \"output\".")
}

// loadConfig layers an optional protox.yaml over the flag defaults,
// matching openconfig-ygot's viper-based config layering: flags explicitly
// set on the command line always win, viper only fills in what wasn't set.
func loadConfig(f *flags, fs *pflag.FlagSet) error {
	v := viper.New()
	v.SetConfigFile(f.config)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("protoxc: read config %s: %w", f.config, err)
	}
	if !fs.Changed("include") && v.IsSet("includes") {
		f.includes = v.GetStringSlice("includes")
	}
	if !fs.Changed("output") && v.IsSet("output") {
		f.output = v.GetString("output")
	}
	return nil
}

func newLogger(verbosity int) *zap.Logger {
	if verbosity <= 0 {
		return zap.NewNop()
	}
	level := zapcore.InfoLevel
	if verbosity >= 2 {
		level = zapcore.DebugLevel
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func newRootCommand() *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:   "protoxc [flags] <file>...",
		Short: "Compile .proto files into a serialized FileDescriptorSet.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(f, cmd.Flags()); err != nil {
				return err
			}
			return run(cmd, f, args)
		},
		SilenceUsage: true,
	}
	f.bind(cmd.Flags())
	return cmd
}

func run(cmd *cobra.Command, f *flags, entryFiles []string) error {
	logger := newLogger(f.verbosity)
	defer func() { _ = logger.Sync() }()

	resolvers := []resolver.Resolver{resolver.NewIncludeResolver(f.includes...)}
	for _, path := range f.descriptorSetIns {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("protoxc: read descriptor set %s: %w", path, err)
		}
		r, err := resolver.NewDescriptorSetResolver(data)
		if err != nil {
			return fmt.Errorf("protoxc: %s: %w", path, err)
		}
		resolvers = append(resolvers, r)
	}
	resolvers = append(resolvers, resolver.WellKnown())
	chain := resolver.NewChain(logger, resolvers...)

	compiler := protox.NewCompiler(chain, logger)
	opts := protox.Options{
		IncludeImports:    f.includeImports,
		IncludeSourceInfo: f.includeSourceInfo,
	}

	set, diags, err := compiler.Compile(cmd.Context(), opts, entryFiles...)
	if err != nil {
		return fmt.Errorf("protoxc: %w", err)
	}
	for _, d := range diags {
		fmt.Fprintln(cmd.ErrOrStderr(), d.String())
	}

	data, err := proto.Marshal(set)
	if err != nil {
		return fmt.Errorf("protoxc: marshal descriptor set: %w", err)
	}

	if f.output == "-" {
		if _, err := cmd.OutOrStdout().Write(data); err != nil {
			return fmt.Errorf("protoxc: write output: %w", err)
		}
	} else if err := os.WriteFile(f.output, data, 0o644); err != nil {
		return fmt.Errorf("protoxc: write %s: %w", f.output, err)
	}

	if len(diags) > 0 {
		return errExitWithDiagnostics
	}
	return nil
}

// errExitWithDiagnostics is never printed (the diagnostics were already
// printed by run); it exists only to make main exit 1 without cobra
// printing a redundant "Error: ..." line.
var errExitWithDiagnostics = errors.New("protoxc: compiled with diagnostics")

func main() {
	cmd := newRootCommand()
	cmd.SilenceErrors = true
	if err := cmd.Execute(); err != nil {
		if err != errExitWithDiagnostics {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
