// Package application: This file handles copying the application icon into the bundle.
// The icon file (typically .icns format) is placed in Contents/Resources/<name>.icns
// and referenced in the Info.plist file. macOS uses this icon to display the app
// in Finder, Dock, and other system locations.
package application

import (
	"bundlebuilder/utilities/fileManagement"
)

// copyIcon copies the declared icon to Resources/<name>.icns. Modern builds
// always replace the destination; legacy builds keep an icon that is already
// in the bundle.
func (b *Builder) copyIcon(target string) error {
	iconSource := b.spec.Icon()
	iconPath := b.layout.IconFile()

	if target == TargetLegacy && fileManagement.Exists(iconPath) {
		b.logger.Debug("Icon already present", "file", iconPath)
		return nil
	}

	b.logger.Info("Copying the Icon File", "source", iconSource, "destination", iconPath)

	// Copy keeps the source permissions and truncates an existing destination
	if err := fileManagement.Copy(iconSource, iconPath); err != nil {
		return ioError("copy", iconSource, err)
	}
	return nil
}
