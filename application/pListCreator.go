// Package application: This file generates the Info.plist and PkgInfo files required by macOS.
// Info.plist is an XML property list with the bundle's metadata: name, identifier,
// version, executable and icon. macOS reads it to understand how to launch and
// display the application. PkgInfo repeats the package type and signature.
package application

import (
	"os"

	"howett.net/plist"
)

const (
	developmentRegion     = "English"
	infoDictionaryVersion = "6.0"
	principalClass        = "NSApplication"
)

// InfoPlist is the content of Contents/Info.plist. Optional keys are left out
// of the document when empty.
type InfoPlist struct {
	CFBundleName                  string `plist:"CFBundleName"`
	CFBundleIdentifier            string `plist:"CFBundleIdentifier"`
	CFBundleVersion               string `plist:"CFBundleVersion"`
	CFBundlePackageType           string `plist:"CFBundlePackageType"`
	CFBundleSignature             string `plist:"CFBundleSignature"`
	CFBundleExecutable            string `plist:"CFBundleExecutable"`
	CFBundleDevelopmentRegion     string `plist:"CFBundleDevelopmentRegion"`
	CFBundleInfoDictionaryVersion string `plist:"CFBundleInfoDictionaryVersion"`
	NSPrincipalClass              string `plist:"NSPrincipalClass"`
	LSUIElement                   bool   `plist:"LSUIElement"`
	LSMinimumSystemVersion        string `plist:"LSMinimumSystemVersion,omitempty"`
	CFBundleIconFile              string `plist:"CFBundleIconFile,omitempty"`
	CFBundleGetInfoString         string `plist:"CFBundleGetInfoString,omitempty"`
}

// InfoPlist returns the metadata this builder writes into Info.plist.
func (b *Builder) InfoPlist() InfoPlist {
	info := InfoPlist{
		CFBundleName:                  b.spec.Name(),
		CFBundleIdentifier:            b.spec.Identifier(),
		CFBundleVersion:               b.spec.Version(),
		CFBundlePackageType:           b.spec.PackageType(),
		CFBundleSignature:             b.spec.Signature(),
		CFBundleExecutable:            b.layout.ExecutableName(),
		CFBundleDevelopmentRegion:     developmentRegion,
		CFBundleInfoDictionaryVersion: infoDictionaryVersion,
		NSPrincipalClass:              principalClass,
		LSUIElement:                   b.spec.Agent(),
		LSMinimumSystemVersion:        b.settings.Launcher.MinimumSystemVersion,
		CFBundleGetInfoString:         b.spec.InfoString(),
	}
	// The key names the icon only when there is one to copy.
	if b.spec.IconExists() {
		info.CFBundleIconFile = b.layout.IconFileName()
	}
	return info
}

// writeBundleFiles writes PkgInfo and Info.plist into Contents/.
func (b *Builder) writeBundleFiles() error {
	if err := b.createPkgInfo(); err != nil {
		return err
	}
	return b.createPlist()
}

// createPlist encodes InfoPlist as an XML property list.
func (b *Builder) createPlist() error {
	plistFileName := b.layout.InfoPlistFile()
	b.logger.Info("Writing Info.plist", "file", plistFileName)

	data, err := plist.MarshalIndent(b.InfoPlist(), plist.XMLFormat, "\t")
	if err != nil {
		return ioError("encode", plistFileName, err)
	}
	return ioError("write", plistFileName, os.WriteFile(plistFileName, data, 0o644))
}

// createPkgInfo writes the 8 byte PkgInfo file: the 4 character package type
// followed by the 4 character creator signature.
func (b *Builder) createPkgInfo() error {
	pkgInfoFileName := b.layout.PkgInfoFile()
	content := b.spec.PackageType() + b.spec.Signature()
	return ioError("write", pkgInfoFileName, os.WriteFile(pkgInfoFileName, []byte(content), 0o644))
}
