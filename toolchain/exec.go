package toolchain

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"bundlebuilder/utilities/config"
	"bundlebuilder/utilities/fileManagement"
	"bundlebuilder/utilities/logger"
)

// Exec runs the real tools as child processes. Tool names without a path are
// looked up in PATH at call time.
type Exec struct {
	Compiler          string
	CompilerFlags     []string
	InterfaceCompiler string
	DataModelCompiler string
	DeployTool        string

	// Stdout and Stderr receive the tools' output. Nil means the process's own
	// streams.
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

// NewExec creates an Exec from the toolchain settings.
func NewExec(settings config.Toolchain) *Exec {
	return &Exec{
		Compiler:          settings.Compiler,
		CompilerFlags:     append([]string(nil), settings.CompilerFlags...),
		InterfaceCompiler: settings.InterfaceCompiler,
		DataModelCompiler: settings.DataModelCompiler,
		DeployTool:        settings.DeployTool,
	}
}

var _ Toolchain = (*Exec)(nil)

// CompileLauncher runs: <compiler> <source> -o <output> -arch <a>... -framework <f>... <flags>
func (e *Exec) CompileLauncher(ctx context.Context, req LauncherRequest) error {
	args := []string{req.Source, "-o", req.Output}
	for _, arch := range req.Architectures {
		args = append(args, "-arch", arch)
	}
	for _, framework := range req.Frameworks {
		args = append(args, "-framework", framework)
	}
	args = append(args, e.CompilerFlags...)
	return e.run(ctx, req.Dir, e.Compiler, args...)
}

// CompileInterfaceResource runs: <interface compiler> --compile <destination> <source>
func (e *Exec) CompileInterfaceResource(ctx context.Context, source, destination string) error {
	return e.run(ctx, "", e.InterfaceCompiler, "--compile", destination, source)
}

// CompileDataModel runs: <data model compiler> <source> <destination>
func (e *Exec) CompileDataModel(ctx context.Context, source, destination string) error {
	return e.run(ctx, "", e.DataModelCompiler, source, destination)
}

// Deploy runs: <deploy tool> <flags>... <bundle root>
func (e *Exec) Deploy(ctx context.Context, req DeployRequest) error {
	args := append(append([]string(nil), req.Flags...), req.BundleRoot)
	return e.run(ctx, "", e.DeployTool, args...)
}

func (e *Exec) run(ctx context.Context, dir, tool string, args ...string) error {
	// Find the tool, either at the given path or in PATH
	programPath, err := fileManagement.FindProgramPath(tool)
	if err != nil {
		return &ExternalToolError{Tool: tool, Args: args, Err: err}
	}
	// Relative paths would otherwise be resolved against dir
	programPath, err = filepath.Abs(programPath)
	if err != nil {
		return &ExternalToolError{Tool: tool, Args: args, Err: err}
	}

	e.logger().Debug("running external tool", "tool", programPath, "args", args, "dir", dir)

	cmd := exec.CommandContext(ctx, programPath, args...)
	cmd.Dir = dir

	// Forward the output and keep a copy of stderr for the error
	var stderr bytes.Buffer
	cmd.Stdout = e.stdout()
	cmd.Stderr = io.MultiWriter(&stderr, e.stderr())

	if err := cmd.Run(); err != nil {
		return &ExternalToolError{Tool: tool, Args: args, Stderr: stderr.String(), Err: err}
	}
	return nil
}

func (e *Exec) stdout() io.Writer {
	if e.Stdout != nil {
		return e.Stdout
	}
	return os.Stdout
}

func (e *Exec) stderr() io.Writer {
	if e.Stderr != nil {
		return e.Stderr
	}
	return os.Stderr
}

func (e *Exec) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return logger.Default()
}
