// Package application: This file creates and removes the directory structure of a bundle.
package application

import (
	"os"

	"bundlebuilder/utilities/fileManagement"
)

// createDirectoryStructure creates the bundle skeleton:
//
//	<name>.app/
//	  Contents/
//	    Frameworks/
//	    MacOS/
//	    Resources/
//
// Directories that already exist are left alone, so a second build over an
// existing bundle adds to it instead of failing.
func (b *Builder) createDirectoryStructure() error {
	b.logger.Info("Creating and setting up the bundle directories")

	for _, dir := range b.layout.Directories() {
		if err := createDir(dir); err != nil {
			return err
		}
	}
	return nil
}

// createDir creates a single directory if it is not there yet.
// 0755 = rwxr-xr-x
func createDir(path string) error {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return nil
	}
	if err := os.Mkdir(path, 0o755); err != nil {
		return ioError("create directory", path, err)
	}
	return nil
}

// RemoveBundleRoot deletes the bundle directory with everything in it.
// A bundle that does not exist is not an error.
func (b *Builder) RemoveBundleRoot() error {
	root := b.layout.BundleRoot()
	if !fileManagement.Exists(root) {
		return nil
	}

	b.logger.Info("Delete all bundle directories", "bundle", root)
	if err := os.RemoveAll(root); err != nil {
		return ioError("remove", root, err)
	}
	return nil
}
