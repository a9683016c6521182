package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"bundlebuilder/application"
	"bundlebuilder/specification"
	"bundlebuilder/toolchain"
	"bundlebuilder/utilities/config"
	"bundlebuilder/utilities/logger"
)

// newToolchain creates the toolchain the commands run external tools with.
// Tests replace it with a recording fake.
var newToolchain = func(cfg *config.Config, stdout, stderr io.Writer) toolchain.Toolchain {
	tc := toolchain.NewExec(cfg.Toolchain)
	tc.Stdout = stdout
	tc.Stderr = stderr
	tc.Logger = logger.Default()
	return tc
}

// cli holds the flags shared by all commands and the configuration loaded
// before any command runs.
type cli struct {
	stdout io.Writer
	stderr io.Writer

	configFile string
	logLevel   string
	logFormat  string
	silent     bool
	logDir     string

	settings *config.Config
}

// newRootCmd builds the command tree. Every call returns a fresh tree so
// flag values never leak between runs.
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "bundlebuilder",
		Short: "Build macOS application bundles for script applications",
		Long: `bundlebuilder assembles a <name>.app bundle from a specification document
(application.yaml, .toml or .hcl): it creates Contents/{MacOS,Resources,Frameworks},
writes Info.plist and PkgInfo, compiles the launcher, copies sources and resources,
compiles interface files and data models and copies the icon.

With --deploy the runtime is embedded into the bundle so it can be shipped.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: 2, Message: err.Error()}
	})

	flags := root.PersistentFlags()
	flags.StringVar(&c.configFile, "config", "", "Builder configuration file (tool paths, launcher and deploy settings)")
	flags.StringVar(&c.logLevel, "log-level", "info", "Logging level: debug, info, warn or error")
	flags.StringVar(&c.logFormat, "log-format", "text", "Log output format: text or json")
	flags.BoolVar(&c.silent, "silent", false, "Only report errors")
	flags.StringVar(&c.logDir, "logdir", "", "Directory for log files (enables file logging)")

	root.AddCommand(c.buildCmd(), c.deployCmd(), c.cleanCmd(), c.initCmd())
	return root
}

// setup configures logging and loads the builder configuration.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	format := strings.ToLower(c.logFormat)
	if format != "text" && format != "json" {
		return &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}
	logger.Configure(logger.Options{Level: c.logLevel, Format: format, Silent: c.silent, Output: c.stderr})

	if c.logDir != "" {
		if err := logger.SetLogFile(cmd.Root().Name(), c.logDir); err != nil {
			// File logging is optional
			logger.Warn("Failed to set up file logging: %v", err)
		} else {
			logger.Info("Logging to file: %s", logger.GetLogFilePath())
		}
	}

	settings, err := config.LoadConfiguration(c.configFile)
	if err != nil {
		return &ExitError{Code: 2, Message: err.Error()}
	}
	if err := settings.Validate(); err != nil {
		return &ExitError{Code: 2, Message: fmt.Sprintf("invalid configuration: %v", err)}
	}
	c.settings = settings
	return nil
}

func specPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return specification.DefaultFileName
}

func (c *cli) buildCmd() *cobra.Command {
	var (
		deploy bool
		output string
		target string
	)
	cmd := &cobra.Command{
		Use:   "build [specification]",
		Short: "Build the application bundle",
		Long: `Build the application bundle described by the specification
(default application.yaml). Rebuilding adds to an existing bundle unless the
specification sets overwrite or --deploy is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch target {
			case "", application.TargetModern, application.TargetLegacy:
			default:
				return &ExitError{Code: 2, Message: fmt.Sprintf("invalid target %q: must be %q or %q",
					target, application.TargetModern, application.TargetLegacy)}
			}
			spec, err := specification.Load(specPath(args))
			if err != nil {
				return err
			}
			if output != "" {
				if err := os.MkdirAll(output, 0o755); err != nil {
					return fmt.Errorf("create output directory: %w", err)
				}
			}

			builder, err := application.NewBuilder(spec, newToolchain(c.settings, c.stdout, c.stderr),
				application.WithLogger(logger.Default()),
				application.WithOutputDir(output),
				application.WithSettings(c.settings),
			)
			if err != nil {
				return err
			}
			if err := builder.Build(cmd.Context(), application.BuildOptions{Deploy: deploy, Target: target}); err != nil {
				return err
			}
			fmt.Fprintln(c.stdout, builder.Layout().BundleRoot())
			return nil
		},
	}
	cmd.Flags().BoolVar(&deploy, "deploy", false, "Make a clean build and embed the runtime")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Directory the bundle is created in (default: working directory)")
	cmd.Flags().StringVar(&target, "target", "", "Launcher target: modern or legacy (default from configuration)")
	return cmd
}

func (c *cli) deployCmd() *cobra.Command {
	var specFile string
	cmd := &cobra.Command{
		Use:   "deploy <bundle.app>",
		Short: "Embed the runtime into an existing bundle",
		Long: `Run the deploy tool over a bundle that was built earlier. The packages,
BridgeSupport, compile and standard library settings come from the specification.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := specification.Load(specFile)
			if err != nil {
				return err
			}
			flags := application.DeployFlags(spec, c.settings.Deploy.SupportLibrary)
			return application.DeployExisting(cmd.Context(), args[0], flags,
				newToolchain(c.settings, c.stdout, c.stderr), logger.Default())
		},
	}
	cmd.Flags().StringVar(&specFile, "spec", specification.DefaultFileName, "Specification document")
	return cmd
}

func (c *cli) cleanCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "clean [specification]",
		Short: "Remove the application bundle",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := specification.Load(specPath(args))
			if err != nil {
				return err
			}
			builder, err := application.NewBuilder(spec, newToolchain(c.settings, c.stdout, c.stderr),
				application.WithLogger(logger.Default()),
				application.WithOutputDir(output),
			)
			if err != nil {
				return err
			}
			return builder.RemoveBundleRoot()
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Directory the bundle was created in")
	return cmd
}
