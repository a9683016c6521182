package application

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"bundlebuilder/specification"
	"bundlebuilder/toolchain/toolchaintest"
)

func TestLayoutPaths(t *testing.T) {
	l := NewLayout("out", "Foo Bar")

	got := map[string]string{
		"bundle":     l.BundleRoot(),
		"contents":   l.ContentsRoot(),
		"macos":      l.MacOSRoot(),
		"resources":  l.ResourcesRoot(),
		"frameworks": l.FrameworksRoot(),
		"plist":      l.InfoPlistFile(),
		"pkginfo":    l.PkgInfoFile(),
		"icon":       l.IconFile(),
		"executable": l.ExecutableFile(),
		"source":     l.LauncherSourceFile(),
		"entry":      l.EntryScriptFile(),
	}
	want := map[string]string{
		"bundle":     filepath.Join("out", "Foo Bar.app"),
		"contents":   filepath.Join("out", "Foo Bar.app", "Contents"),
		"macos":      filepath.Join("out", "Foo Bar.app", "Contents", "MacOS"),
		"resources":  filepath.Join("out", "Foo Bar.app", "Contents", "Resources"),
		"frameworks": filepath.Join("out", "Foo Bar.app", "Contents", "Frameworks"),
		"plist":      filepath.Join("out", "Foo Bar.app", "Contents", "Info.plist"),
		"pkginfo":    filepath.Join("out", "Foo Bar.app", "Contents", "PkgInfo"),
		"icon":       filepath.Join("out", "Foo Bar.app", "Contents", "Resources", "Foo Bar.icns"),
		"executable": filepath.Join("out", "Foo Bar.app", "Contents", "MacOS", "FooBar"),
		"source":     filepath.Join("out", "Foo Bar.app", "Contents", "MacOS", "main.m"),
		"entry":      filepath.Join("out", "Foo Bar.app", "Contents", "Resources", "rb_main.rb"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("layout mismatch (-want +got):\n%s", diff)
	}
}

func TestLayoutWithoutOutputDir(t *testing.T) {
	l := NewLayout("", "Foo")
	require.Equal(t, "Foo.app", l.BundleRoot())
	require.Equal(t, []string{
		"Foo.app",
		filepath.Join("Foo.app", "Contents"),
		filepath.Join("Foo.app", "Contents", "Frameworks"),
		filepath.Join("Foo.app", "Contents", "MacOS"),
		filepath.Join("Foo.app", "Contents", "Resources"),
	}, l.Directories())
}

func TestExecutableNameStripsAllWhitespace(t *testing.T) {
	tests := map[string]string{
		"Foo":           "Foo",
		"Foo Bar":       "FooBar",
		" Foo \tBar  X": "FooBarX",
	}
	for name, want := range tests {
		require.Equal(t, want, NewLayout("", name).ExecutableName(), "name %q", name)
	}
}

func TestResourceDestination(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "shared", "logo.png")
	tests := []struct {
		in, want string
	}{
		{"resources/MainMenu.xib", "MainMenu.xib"},
		{"resources/images/logo.png", filepath.Join("images", "logo.png")},
		{"./resources/a.txt", "a.txt"},
		{"README", "README"},
		{abs, "logo.png"},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, resourceDestination(filepath.FromSlash(tc.in)), "resource %q", tc.in)
	}
}

func TestDataModelOutput(t *testing.T) {
	require.Equal(t, "Model.mom", dataModelOutput(filepath.Join("data", "Model.xcdatamodel")))
	require.Equal(t, "Store.momd", dataModelOutput(filepath.Join("data", "Store.xcdatamodeld")))
}

func TestDeployFlags(t *testing.T) {
	dir := t.TempDir()
	off := false
	tests := []struct {
		name    string
		doc     specification.Document
		support string
		want    []string
	}{
		{
			name:    "defaults",
			support: "hotcocoa",
			want:    []string{"--embed", "--gem", "hotcocoa"},
		},
		{
			name:    "everything",
			doc:     specification.Document{Gems: []string{"json", "sqlite3"}, EmbedBS: true, Compile: true, Stdlib: &off},
			support: "hotcocoa",
			want:    []string{"--embed", "--gem", "hotcocoa", "--gem", "json", "--gem", "sqlite3", "--bs", "--compile", "--no-stdlib"},
		},
		{
			name: "no support library",
			doc:  specification.Document{EmbedBS: true},
			want: []string{"--embed", "--bs"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.doc.Name, tc.doc.Identifier = "Foo", "com.example.foo"
			spec, err := specification.New(tc.doc, dir)
			require.NoError(t, err)
			if diff := cmp.Diff(tc.want, DeployFlags(spec, tc.support)); diff != "" {
				t.Errorf("flags mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDeployExisting(t *testing.T) {
	dir := t.TempDir()
	bundle := filepath.Join(dir, "Foo.app")
	require.NoError(t, os.Mkdir(bundle, 0o755))
	notDir := filepath.Join(dir, "Bar.app")
	require.NoError(t, os.WriteFile(notDir, nil, 0o644))

	t.Run("existing bundle", func(t *testing.T) {
		rec := toolchaintest.New()
		err := DeployExisting(context.Background(), bundle+string(filepath.Separator), []string{"--embed"}, rec, quietLogger())
		require.NoError(t, err)
		calls := rec.CallsTo(toolchaintest.MethodDeploy)
		require.Len(t, calls, 1)
		require.Equal(t, bundle, calls[0].Deploy.BundleRoot)
		require.Equal(t, []string{"--embed"}, calls[0].Deploy.Flags)
	})

	for name, path := range map[string]string{
		"missing":       filepath.Join(dir, "Missing.app"),
		"not a bundle":  dir,
		"not directory": notDir,
	} {
		t.Run(name, func(t *testing.T) {
			rec := toolchaintest.New()
			err := DeployExisting(context.Background(), path, []string{"--embed"}, rec, quietLogger())
			var ioErr *IOError
			require.ErrorAs(t, err, &ioErr)
			require.Empty(t, rec.Calls())
		})
	}
}
