// Package application: This file creates the launcher of the bundle.
// The launcher has two parts:
//   - Contents/MacOS/<executable>: a tiny native program compiled from a generated
//     source file. Its only job is to start the embedded interpreter with the
//     entry script.
//   - Contents/Resources/rb_main.rb: the entry script. It puts the resource
//     directory on the load path, loads every script in the bundle and starts the
//     application class.
package application

import (
	"bytes"
	"context"
	"os"
	"strings"
	"text/template"

	"bundlebuilder/toolchain"
	"bundlebuilder/utilities/fileManagement"
)

var launcherTemplate = template.Must(template.New("main.m").Parse(`#import <{{.RuntimeHeader}}>

int main(int argc, char *argv[])
{
    return {{.RuntimeEntry}}("{{.EntryScript}}", argc, argv);
}
`))

var entryScriptTemplate = template.Must(template.New("rb_main.rb").
	Funcs(template.FuncMap{"quote": singleQuoted}).
	Parse(`{{if .Deploy}}$:.map! { |x| x.sub(/^\/Library\/Frameworks/, NSBundle.mainBundle.privateFrameworksPath) }
{{end}}resources = NSBundle.mainBundle.resourcePath.fileSystemRepresentation
$:.unshift(resources)

Dir.glob("#{resources}/**/*.rb").each do |file|
  next if File.basename(file) == {{quote .EntryScript}}
  require file
end

begin
  Kernel.const_get({{quote .EntrySymbol}}).new.start
rescue Exception => e
  STDERR.puts e.message
  e.backtrace.each { |bt| STDERR.puts bt }
end
`))

// launcherData fills both launcher templates.
type launcherData struct {
	RuntimeHeader string
	RuntimeEntry  string
	EntryScript   string
	EntrySymbol   string
	Deploy        bool
}

func singleQuoted(s string) string {
	return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s) + "'"
}

func (b *Builder) launcherData(deploy bool) launcherData {
	return launcherData{
		RuntimeHeader: b.settings.Launcher.RuntimeHeader,
		RuntimeEntry:  b.settings.Launcher.RuntimeEntry,
		EntryScript:   b.layout.EntryScriptName(),
		EntrySymbol:   b.layout.ExecutableName(),
		Deploy:        deploy,
	}
}

// prepareLauncher compiles the native launcher unless it is already in the
// bundle, then rewrites the entry script.
func (b *Builder) prepareLauncher(ctx context.Context, target string, deploy bool) error {
	if fileManagement.Exists(b.layout.ExecutableFile()) {
		b.logger.Debug("Launcher already present", "file", b.layout.ExecutableFile())
	} else if err := b.buildExecutable(ctx, target); err != nil {
		return err
	}
	return b.writeEntryScript(deploy)
}

// buildExecutable generates the native source next to the executable, has
// the compiler build it for the target's architectures and removes the
// source again, whether or not compilation succeeded.
func (b *Builder) buildExecutable(ctx context.Context, target string) (err error) {
	source := b.layout.LauncherSourceFile()
	b.logger.Info("Compiling the launcher", "executable", b.layout.ExecutableFile(), "target", target)

	var buf bytes.Buffer
	if err := launcherTemplate.Execute(&buf, b.launcherData(false)); err != nil {
		return err
	}
	if err := os.WriteFile(source, buf.Bytes(), 0o644); err != nil {
		return ioError("write", source, err)
	}
	defer func() {
		if rmErr := os.Remove(source); rmErr != nil && !os.IsNotExist(rmErr) && err == nil {
			err = ioError("remove", source, rmErr)
		}
	}()

	return b.toolchain.CompileLauncher(ctx, toolchain.LauncherRequest{
		Dir:           b.layout.MacOSRoot(),
		Source:        b.layout.LauncherSourceName(),
		Output:        b.layout.ExecutableName(),
		Architectures: Architectures(target),
		Frameworks:    append([]string(nil), b.settings.Launcher.Frameworks...),
	})
}

// writeEntryScript (re)writes the entry script. Deploy builds additionally
// point framework lookups at the bundle's private Frameworks directory.
func (b *Builder) writeEntryScript(deploy bool) error {
	script := b.layout.EntryScriptFile()

	var buf bytes.Buffer
	if err := entryScriptTemplate.Execute(&buf, b.launcherData(deploy)); err != nil {
		return err
	}
	return ioError("write", script, os.WriteFile(script, buf.Bytes(), 0o644))
}
