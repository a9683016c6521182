// Package application: This file computes the paths inside a macOS application bundle.
// macOS requires a specific directory structure for .app bundles:
//
//	MyApp.app/
//	  Contents/
//	    Info.plist          (required metadata file)
//	    PkgInfo             (package type and creator signature)
//	    MacOS/              (the launcher executable)
//	    Resources/          (scripts, compiled interfaces, icon, data models)
//	    Frameworks/         (runtime embedded by the deploy step)
package application

import (
	"path/filepath"
	"strings"
	"unicode"
)

const (
	launcherSourceName = "main.m"
	entryScriptName    = "rb_main.rb"
)

// Layout derives every path of a bundle from its name. It is a pure value:
// nothing touches the filesystem, so it can be used before the bundle exists.
type Layout struct {
	outputDir string
	name      string
}

// NewLayout returns the layout of the bundle "<name>.app" inside outputDir.
// An empty outputDir means the working directory.
func NewLayout(outputDir, name string) Layout {
	return Layout{outputDir: outputDir, name: name}
}

// Name is the bundle name the layout was created for.
func (l Layout) Name() string { return l.name }

// BundleRoot is <output>/<name>.app.
func (l Layout) BundleRoot() string {
	return filepath.Join(l.outputDir, l.name+".app")
}

func (l Layout) ContentsRoot() string   { return filepath.Join(l.BundleRoot(), "Contents") }
func (l Layout) MacOSRoot() string      { return filepath.Join(l.ContentsRoot(), "MacOS") }
func (l Layout) ResourcesRoot() string  { return filepath.Join(l.ContentsRoot(), "Resources") }
func (l Layout) FrameworksRoot() string { return filepath.Join(l.ContentsRoot(), "Frameworks") }
func (l Layout) InfoPlistFile() string  { return filepath.Join(l.ContentsRoot(), "Info.plist") }
func (l Layout) PkgInfoFile() string    { return filepath.Join(l.ContentsRoot(), "PkgInfo") }

// IconFileName is the icon's name inside Resources, as referenced by Info.plist.
func (l Layout) IconFileName() string { return l.name + ".icns" }

func (l Layout) IconFile() string { return filepath.Join(l.ResourcesRoot(), l.IconFileName()) }

// ExecutableName is the bundle name with all whitespace removed.
func (l Layout) ExecutableName() string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, l.name)
}

func (l Layout) ExecutableFile() string { return filepath.Join(l.MacOSRoot(), l.ExecutableName()) }

// LauncherSourceName is the generated native source, relative to MacOSRoot.
func (l Layout) LauncherSourceName() string { return launcherSourceName }

func (l Layout) LauncherSourceFile() string {
	return filepath.Join(l.MacOSRoot(), launcherSourceName)
}

// EntryScriptName is the script the launcher hands to the interpreter.
func (l Layout) EntryScriptName() string { return entryScriptName }

func (l Layout) EntryScriptFile() string {
	return filepath.Join(l.ResourcesRoot(), entryScriptName)
}

// Directories lists the bundle skeleton, parents before children.
func (l Layout) Directories() []string {
	return []string{
		l.BundleRoot(),
		l.ContentsRoot(),
		l.FrameworksRoot(),
		l.MacOSRoot(),
		l.ResourcesRoot(),
	}
}
