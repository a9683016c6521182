// Package application contains the core logic for creating macOS application bundles.
// A Builder turns a Specification into a <name>.app directory tree: it lays out
// the bundle skeleton, writes the metadata files, compiles the launcher stub,
// copies sources and resources, compiles interface files and data models,
// copies the icon and optionally runs the deploy tool.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"bundlebuilder/specification"
	"bundlebuilder/toolchain"
	"bundlebuilder/utilities/config"
	"bundlebuilder/utilities/logger"
)

// State is a step of a build. A build passes through the states in
// declaration order; CLEAN, ICON_COPIED and DEPLOYED may be skipped.
type State int

const (
	StateInit State = iota
	StateClean
	StateScaffold
	StateMetadataWritten
	StateLauncherReady
	StateSourcesCopied
	StateResourcesCopied
	StateDataModelsCompiled
	StateIconCopied
	StateDeployed
	StateDone
)

var stateNames = [...]string{
	StateInit:               "INIT",
	StateClean:              "CLEAN",
	StateScaffold:           "SCAFFOLD",
	StateMetadataWritten:    "METADATA_WRITTEN",
	StateLauncherReady:      "LAUNCHER_READY",
	StateSourcesCopied:      "SOURCES_COPIED",
	StateResourcesCopied:    "RESOURCES_COPIED",
	StateDataModelsCompiled: "DATA_MODELS_COMPILED",
	StateIconCopied:         "ICON_COPIED",
	StateDeployed:           "DEPLOYED",
	StateDone:               "DONE",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Build targets select the launcher architectures and a few legacy behaviours.
const (
	TargetModern = "modern"
	TargetLegacy = "legacy"
)

// Architectures returns the launcher architectures for a target.
func Architectures(target string) []string {
	if target == TargetLegacy {
		return []string{"x86_64"}
	}
	return []string{"x86_64", "arm64"}
}

// BuildOptions are the per-build switches.
type BuildOptions struct {
	// Deploy forces a clean build and runs the deploy tool at the end.
	Deploy bool
	// Target overrides the configured launcher target when set.
	Target string
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger used for build progress.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// WithOutputDir places the bundle inside dir instead of the working directory.
func WithOutputDir(dir string) Option {
	return func(b *Builder) { b.outputDir = dir }
}

// WithSettings replaces the default builder settings.
func WithSettings(cfg *config.Config) Option {
	return func(b *Builder) { b.settings = cfg }
}

// WithStateHook registers fn to be called each time the build enters a state.
func WithStateHook(fn func(State)) Option {
	return func(b *Builder) { b.hook = fn }
}

// Builder builds one bundle from one specification. It is not safe for
// concurrent use; a build runs synchronously on the calling goroutine.
type Builder struct {
	spec      *specification.Specification
	toolchain toolchain.Toolchain
	settings  *config.Config
	layout    Layout
	logger    *slog.Logger
	hook      func(State)
	outputDir string
	state     State
}

// NewBuilder prepares a build of spec using tc for every external tool.
func NewBuilder(spec *specification.Specification, tc toolchain.Toolchain, opts ...Option) (*Builder, error) {
	if spec == nil {
		return nil, errors.New("application: specification is nil")
	}
	if tc == nil {
		return nil, errors.New("application: toolchain is nil")
	}

	b := &Builder{
		spec:      spec,
		toolchain: tc,
		settings:  config.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = logger.Default()
	}
	if b.settings == nil {
		b.settings = config.Default()
	}
	b.layout = NewLayout(b.outputDir, spec.Name())
	return b, nil
}

// Build builds spec with the given options. See Builder.Build.
func Build(ctx context.Context, spec *specification.Specification, tc toolchain.Toolchain, buildOpts BuildOptions, opts ...Option) error {
	b, err := NewBuilder(spec, tc, opts...)
	if err != nil {
		return err
	}
	return b.Build(ctx, buildOpts)
}

// Layout returns the paths of the bundle this builder produces.
func (b *Builder) Layout() Layout { return b.layout }

// State returns the last state the builder entered.
func (b *Builder) State() State { return b.state }

type step struct {
	state State
	run   func(ctx context.Context) error
}

// Build runs the build steps in their fixed order. The first failure aborts
// the build and is returned; whatever was written so far stays on disk.
// Building again without overwrite or deploy is additive.
func (b *Builder) Build(ctx context.Context, opts BuildOptions) error {
	target := opts.Target
	if target == "" {
		target = b.settings.Launcher.Target
	}
	switch target {
	case TargetModern, TargetLegacy:
	case "":
		target = TargetModern
	default:
		return fmt.Errorf("unknown build target %q", target)
	}

	b.logger.Info("Building application bundle",
		"name", b.spec.Name(), "bundle", b.layout.BundleRoot(), "deploy", opts.Deploy, "target", target)
	b.enter(StateInit)

	var steps []step
	if b.spec.Overwrite() || opts.Deploy {
		steps = append(steps, step{StateClean, func(context.Context) error { return b.RemoveBundleRoot() }})
	}
	steps = append(steps,
		step{StateScaffold, func(context.Context) error { return b.createDirectoryStructure() }},
		step{StateMetadataWritten, func(context.Context) error { return b.writeBundleFiles() }},
		step{StateLauncherReady, func(ctx context.Context) error { return b.prepareLauncher(ctx, target, opts.Deploy) }},
		step{StateSourcesCopied, func(context.Context) error { return b.copySources() }},
		step{StateResourcesCopied, b.copyResources},
		step{StateDataModelsCompiled, b.compileDataModels},
	)
	if b.spec.IconExists() {
		steps = append(steps, step{StateIconCopied, func(context.Context) error { return b.copyIcon(target) }})
	}
	if opts.Deploy {
		steps = append(steps, step{StateDeployed, b.deploy})
	}

	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.run(ctx); err != nil {
			b.logger.Debug("Build step failed", "step", s.state.String(), "error", err)
			return err
		}
		b.enter(s.state)
	}

	b.enter(StateDone)
	b.logger.Info("Application bundle ready", "bundle", b.layout.BundleRoot())
	return nil
}

func (b *Builder) enter(s State) {
	b.state = s
	b.logger.Debug("Build state", "state", s.String())
	if b.hook != nil {
		b.hook(s)
	}
}
