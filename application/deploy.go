// Package application: This file runs the deploy tool, which embeds the language
// runtime, the support library and any extra packages into the bundle so it
// runs on machines without a development installation.
package application

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"bundlebuilder/specification"
	"bundlebuilder/toolchain"
	"bundlebuilder/utilities/logger"
)

// DeployFlags assembles the deploy tool arguments for spec, in this order:
//
//	--embed
//	--gem <supportLibrary>   (when supportLibrary is set)
//	--gem <g>                (for each package in the specification)
//	--bs                     (when BridgeSupport files are embedded)
//	--compile                (when sources are compiled)
//	--no-stdlib              (unless the standard library is kept)
//
// The bundle root is not part of the flags; the toolchain appends it.
func DeployFlags(spec *specification.Specification, supportLibrary string) []string {
	flags := []string{"--embed"}
	if supportLibrary != "" {
		flags = append(flags, "--gem", supportLibrary)
	}
	for _, gem := range spec.Gems() {
		flags = append(flags, "--gem", gem)
	}
	if spec.EmbedBridgeSupport() {
		flags = append(flags, "--bs")
	}
	if spec.Compile() {
		flags = append(flags, "--compile")
	}
	if !spec.Stdlib() {
		flags = append(flags, "--no-stdlib")
	}
	return flags
}

// deploy runs the deploy tool over the freshly built bundle.
func (b *Builder) deploy(ctx context.Context) error {
	flags := DeployFlags(b.spec, b.settings.Deploy.SupportLibrary)
	return runDeploy(ctx, b.toolchain, b.logger, b.layout.BundleRoot(), flags)
}

// DeployExisting runs the deploy tool over a bundle that was built earlier.
//
// Parameters:
//   - bundlePath: Path to an existing directory ending in .app
//   - flags: Deploy tool flags, usually from DeployFlags
//   - tc: Toolchain that runs the deploy tool
//   - log: Progress logger, the package logger when nil
//
// Returns an *IOError when the bundle is missing or not a bundle, or the
// toolchain's error when the deploy tool fails.
func DeployExisting(ctx context.Context, bundlePath string, flags []string, tc toolchain.Toolchain, log *slog.Logger) error {
	if tc == nil {
		return errors.New("application: toolchain is nil")
	}
	if log == nil {
		log = logger.Default()
	}

	cleaned := filepath.Clean(bundlePath)
	if !strings.EqualFold(filepath.Ext(cleaned), ".app") {
		return ioError("deploy", bundlePath, errors.New("not an application bundle"))
	}
	info, err := os.Stat(cleaned)
	if err != nil {
		return ioError("deploy", bundlePath, err)
	}
	if !info.IsDir() {
		return ioError("deploy", bundlePath, errors.New("not a directory"))
	}

	return runDeploy(ctx, tc, log, cleaned, flags)
}

func runDeploy(ctx context.Context, tc toolchain.Toolchain, log *slog.Logger, bundleRoot string, flags []string) error {
	log.Info("Deploying application bundle", "bundle", bundleRoot, "flags", strings.Join(flags, " "))
	return tc.Deploy(ctx, toolchain.DeployRequest{
		BundleRoot: bundleRoot,
		Flags:      flags,
	})
}
