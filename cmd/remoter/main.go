package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/toyz/remoter/internal/cli"
	"github.com/toyz/remoter/internal/strategy"
	"github.com/toyz/remoter/internal/utils"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// options are the flags shared by generate and clean
type options struct {
	configFile string
	module     string
	prefix     string
	verbose    bool
	quiet      bool
	workers    int
	dryRun     bool
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "remoter",
		Short: "Remote interface proxy and stub generator",
		Long: `remoter scans Go packages for interfaces annotated with //remoter::remote
and //remoter::callback and generates a client proxy and a server stub for each.

Directory arguments accept Go-style patterns:
  ./...              scan the current directory and all subdirectories
  ./internal/...     scan internal and all its subdirectories
  ./pkg/greeter      scan only that directory`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newGenerateCmd(), newCleanCmd(), newVersionCmd())
	return root
}

func newGenerateCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "generate [directories...]",
		Short: "Generate proxies and stubs",
		Example: `  remoter generate ./...
  remoter generate --module github.com/myorg/myapp ./internal/...
  remoter generate --dry-run --verbose ./pkg/greeter`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config(cmd.Flags(), args)
			if err != nil {
				return reportConfigError(err)
			}

			diagnostics := newDiagnostics(cfg)
			if cfg.Verbose {
				diagnostics.PhaseHeader("Configuration")
				diagnostics.List("Target directories: %s", strings.Join(cfg.Directories, ", "))
				if cfg.ModuleName != "" {
					diagnostics.List("Custom module: %s", cfg.ModuleName)
				}
				diagnostics.List("Workers: %d", cfg.Workers)
			}

			// The generator reports its own failures in detail.
			return cli.NewGenerator(cfg, diagnostics).Run()
		},
	}

	opts.addGenerateFlags(cmd.Flags())
	return cmd
}

func newCleanCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "clean [directories...]",
		Short: "Remove generated files",
		Long:  "Removes autogen_* files whose first line carries the remoter generated header.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config(cmd.Flags(), args)
			if err != nil {
				return reportConfigError(err)
			}

			diagnostics := newDiagnostics(cfg)
			if _, err := cli.NewCleaner(diagnostics).CleanGeneratedFiles(cfg.Directories, cfg.DryRun); err != nil {
				diagnostics.Error("Clean operation failed: %v", err)
				return err
			}
			return nil
		},
	}

	opts.addCleanFlags(cmd.Flags())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the tool and strategy table versions",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "remoter %s (strategy table version %d)\n", version, strategy.Version)
		},
	}
}

func (o *options) addGenerateFlags(flags *pflag.FlagSet) {
	flags.StringVar(&o.configFile, "config", "", "config file (default "+cli.DefaultConfigFile+" when present)")
	flags.StringVar(&o.module, "module", "", "module path for descriptors (defaults to the go.mod module)")
	flags.StringVar(&o.prefix, "descriptor-prefix", "", "replace the import path in default descriptors")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "enable verbose output and detailed error reporting")
	flags.BoolVarP(&o.quiet, "quiet", "q", false, "only show errors")
	flags.IntVar(&o.workers, "workers", 0, "packages generated in parallel (defaults to GOMAXPROCS)")
	flags.BoolVar(&o.dryRun, "dry-run", false, "generate without writing files")
}

func (o *options) addCleanFlags(flags *pflag.FlagSet) {
	flags.StringVar(&o.configFile, "config", "", "config file (default "+cli.DefaultConfigFile+" when present)")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "list every removed file")
	flags.BoolVarP(&o.quiet, "quiet", "q", false, "only show errors")
	flags.BoolVar(&o.dryRun, "dry-run", false, "list files without removing them")
}

// config loads the config file, then applies the flags the user set and the
// positional directories
func (o *options) config(flags *pflag.FlagSet, args []string) (cli.Config, error) {
	path, optional := o.configFile, false
	if path == "" {
		path, optional = cli.DefaultConfigFile, true
	}

	cfg, err := cli.LoadConfigFile(path, optional)
	if err != nil {
		return cfg, err
	}

	if len(args) > 0 {
		cfg.Directories = args
	}
	if flags.Changed("module") {
		cfg.ModuleName = o.module
	}
	if flags.Changed("descriptor-prefix") {
		cfg.DescriptorPrefix = o.prefix
	}
	if flags.Changed("verbose") {
		cfg.Verbose = o.verbose
	}
	if flags.Changed("quiet") {
		cfg.Quiet = o.quiet
	}
	if flags.Changed("workers") {
		cfg.Workers = o.workers
	}
	if flags.Changed("dry-run") {
		cfg.DryRun = o.dryRun
	}

	return cfg, cfg.Validate()
}

func newDiagnostics(cfg cli.Config) *utils.DiagnosticSystem {
	switch {
	case cfg.Quiet:
		return utils.NewQuietDiagnostics()
	case cfg.Verbose:
		return utils.NewVerboseDiagnostics()
	default:
		return utils.NewDiagnosticSystem(utils.DiagnosticInfo)
	}
}

func reportConfigError(err error) error {
	cli.NewDiagnosticReporter(false).ReportError(err)
	return err
}
