// Package application: This file copies the application's files into Contents/Resources.
// Three kinds of files end up there:
//   - sources: copied with their relative path intact
//   - resources: copied without their first path segment; interface files (.xib)
//     are compiled to .nib instead of copied
//   - data models: compiled to .mom (or .momd for versioned models)
package application

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"bundlebuilder/specification"
	"bundlebuilder/utilities/fileManagement"
)

// copySources copies every source to Resources/<relative path>.
func (b *Builder) copySources() error {
	sources := b.spec.Sources()
	b.logger.Info("Copying the sources", "count", len(sources))

	for _, source := range sources {
		destination := filepath.Join(b.layout.ResourcesRoot(), sourceDestination(source))
		if err := b.copyEntry(b.spec.Path(source), destination); err != nil {
			return err
		}
	}
	return nil
}

// copyResources copies every resource to Resources/<path without its first
// segment> and compiles interface files on the way.
func (b *Builder) copyResources(ctx context.Context) error {
	resources := b.spec.Resources()
	b.logger.Info("Copying the resources", "count", len(resources))

	for _, resource := range resources {
		source := b.spec.Path(resource)
		destination := filepath.Join(b.layout.ResourcesRoot(), resourceDestination(resource))

		if !isInterfaceFile(resource) {
			if err := b.copyEntry(source, destination); err != nil {
				return err
			}
			continue
		}

		destination = strings.TrimSuffix(destination, filepath.Ext(destination)) + ".nib"
		if err := os.MkdirAll(filepath.Dir(destination), 0o755); err != nil {
			return ioError("create directory", filepath.Dir(destination), err)
		}
		b.logger.Debug("Compiling interface", "source", source, "destination", destination)
		if err := b.toolchain.CompileInterfaceResource(ctx, source, destination); err != nil {
			return err
		}
	}
	return nil
}

// compileDataModels compiles every data model into Resources/<base name>.mom.
func (b *Builder) compileDataModels(ctx context.Context) error {
	models := b.spec.DataModels()
	if len(models) == 0 {
		return nil
	}
	b.logger.Info("Compiling the data models", "count", len(models))

	for _, model := range models {
		destination := filepath.Join(b.layout.ResourcesRoot(), dataModelOutput(model))
		b.logger.Debug("Compiling data model", "source", model, "destination", destination)
		if err := b.toolchain.CompileDataModel(ctx, b.spec.Path(model), destination); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) copyEntry(source, destination string) error {
	b.logger.Debug("Copying", "source", source, "destination", destination)
	if err := fileManagement.CopyRecursive(source, destination); err != nil {
		return ioError("copy", source, err)
	}
	return nil
}

// sourceDestination is the path of a source below Resources. Sources from
// outside the project directory keep only their base name.
func sourceDestination(source string) string {
	if specification.IsExternal(source) {
		return filepath.Base(source)
	}
	return source
}

// resourceDestination strips the first path segment, so "resources/images/a.png"
// lands at "images/a.png". A single segment keeps its name.
func resourceDestination(resource string) string {
	if specification.IsExternal(resource) {
		return filepath.Base(resource)
	}
	parts := strings.Split(filepath.ToSlash(filepath.Clean(resource)), "/")
	if len(parts) == 1 {
		return parts[0]
	}
	return filepath.Join(parts[1:]...)
}

func isInterfaceFile(p string) bool {
	return strings.EqualFold(filepath.Ext(p), ".xib")
}

// dataModelOutput maps Model.xcdatamodel to Model.mom and Model.xcdatamodeld
// to Model.momd.
func dataModelOutput(model string) string {
	base := filepath.Base(model)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if strings.EqualFold(ext, ".xcdatamodeld") {
		return stem + ".momd"
	}
	return stem + ".mom"
}
