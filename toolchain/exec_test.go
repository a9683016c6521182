package toolchain

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"bundlebuilder/utilities/config"
)

// fakeTool installs a shell script named name in a fresh PATH directory. The
// script appends its working directory and arguments to a record file.
func fakeTool(t *testing.T, name, body string) (record string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake tools are shell scripts")
	}
	bin := t.TempDir()
	record = filepath.Join(t.TempDir(), name+".log")
	script := "#!/bin/sh\n" +
		"echo \"$(pwd)|$*\" >> " + record + "\n" +
		body + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(bin, name), []byte(script), 0o755))
	t.Setenv("PATH", bin+string(os.PathListSeparator)+os.Getenv("PATH"))
	return record
}

func readRecord(t *testing.T, record string) []string {
	t.Helper()
	data, err := os.ReadFile(record)
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func quietExec(settings config.Toolchain) (*Exec, *bytes.Buffer) {
	e := NewExec(settings)
	var stderr bytes.Buffer
	e.Stdout = &bytes.Buffer{}
	e.Stderr = &stderr
	return e, &stderr
}

func TestCompileLauncherArguments(t *testing.T) {
	record := fakeTool(t, "fakecc", "exit 0")
	dir := t.TempDir()

	e, _ := quietExec(config.Toolchain{Compiler: "fakecc", CompilerFlags: []string{"-fobjc-gc-only"}})
	err := e.CompileLauncher(context.Background(), LauncherRequest{
		Dir:           dir,
		Source:        "main.m",
		Output:        "FooBar",
		Architectures: []string{"x86_64", "arm64"},
		Frameworks:    []string{"MacRuby", "Foundation"},
	})
	require.NoError(t, err)

	lines := readRecord(t, record)
	require.Len(t, lines, 1)
	wd, args, _ := strings.Cut(lines[0], "|")
	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	gotWd, err := filepath.EvalSymlinks(wd)
	require.NoError(t, err)
	require.Equal(t, resolved, gotWd)
	require.Equal(t, "main.m -o FooBar -arch x86_64 -arch arm64 -framework MacRuby -framework Foundation -fobjc-gc-only", args)
}

func TestRelativeToolPathWithWorkingDirectory(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake tools are shell scripts")
	}
	project := t.TempDir()
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(project))
	t.Cleanup(func() { _ = os.Chdir(oldWd) })
	require.NoError(t, os.MkdirAll("bin", 0o755))
	require.NoError(t, os.WriteFile(filepath.Join("bin", "cc"), []byte("#!/bin/sh\nexit 0\n"), 0o755))
	macOS := filepath.Join(project, "Foo.app", "Contents", "MacOS")
	require.NoError(t, os.MkdirAll(macOS, 0o755))

	e, _ := quietExec(config.Toolchain{Compiler: "./bin/cc", DeployTool: "./bin/cc"})
	require.NoError(t, e.CompileLauncher(context.Background(), LauncherRequest{
		Dir:    macOS,
		Source: "main.m",
		Output: "Foo",
	}))
	require.NoError(t, e.Deploy(context.Background(), DeployRequest{BundleRoot: "Foo.app"}))
}

func TestInterfaceAndDataModelArguments(t *testing.T) {
	ibRecord := fakeTool(t, "fakeib", "exit 0")
	momRecord := fakeTool(t, "fakemomc", "exit 0")

	e, _ := quietExec(config.Toolchain{InterfaceCompiler: "fakeib", DataModelCompiler: "fakemomc"})
	require.NoError(t, e.CompileInterfaceResource(context.Background(), "ui/Main.xib", "out/Main.nib"))
	require.NoError(t, e.CompileDataModel(context.Background(), "data/M.xcdatamodel", "out/M.mom"))

	_, ibArgs, _ := strings.Cut(readRecord(t, ibRecord)[0], "|")
	require.Equal(t, "--compile out/Main.nib ui/Main.xib", ibArgs)
	_, momArgs, _ := strings.Cut(readRecord(t, momRecord)[0], "|")
	require.Equal(t, "data/M.xcdatamodel out/M.mom", momArgs)
}

func TestDeployPutsBundleLast(t *testing.T) {
	record := fakeTool(t, "fakedeploy", "exit 0")

	e, _ := quietExec(config.Toolchain{DeployTool: "fakedeploy"})
	err := e.Deploy(context.Background(), DeployRequest{
		BundleRoot: "Foo.app",
		Flags:      []string{"--embed", "--gem", "hotcocoa", "--no-stdlib"},
	})
	require.NoError(t, err)

	_, args, _ := strings.Cut(readRecord(t, record)[0], "|")
	require.Equal(t, "--embed --gem hotcocoa --no-stdlib Foo.app", args)
}

func TestFailingToolReturnsExternalToolError(t *testing.T) {
	fakeTool(t, "fakedeploy", "echo 'embedding failed' >&2\nexit 3")

	e, stderr := quietExec(config.Toolchain{DeployTool: "fakedeploy"})
	err := e.Deploy(context.Background(), DeployRequest{BundleRoot: "Foo.app", Flags: []string{"--embed"}})

	var toolErr *ExternalToolError
	require.ErrorAs(t, err, &toolErr)
	require.Equal(t, "fakedeploy", toolErr.Tool)
	require.Equal(t, []string{"--embed", "Foo.app"}, toolErr.Args)
	require.Contains(t, toolErr.Stderr, "embedding failed")
	require.Contains(t, err.Error(), "embedding failed")

	var exitErr *exec.ExitError
	require.True(t, errors.As(err, &exitErr))
	require.Equal(t, 3, exitErr.ExitCode())

	// stderr is forwarded as well as captured
	require.Contains(t, stderr.String(), "embedding failed")
}

func TestMissingToolReturnsExternalToolError(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	e, _ := quietExec(config.Toolchain{DataModelCompiler: "no-such-momc"})
	err := e.CompileDataModel(context.Background(), "a", "b")

	var toolErr *ExternalToolError
	require.ErrorAs(t, err, &toolErr)
	require.Equal(t, "no-such-momc", toolErr.Tool)
	require.Empty(t, toolErr.Stderr)
}

func TestCancelledContextStopsTool(t *testing.T) {
	fakeTool(t, "slowtool", "sleep 5")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e, _ := quietExec(config.Toolchain{DeployTool: "slowtool"})
	err := e.Deploy(ctx, DeployRequest{BundleRoot: "Foo.app"})

	var toolErr *ExternalToolError
	require.ErrorAs(t, err, &toolErr)
}
