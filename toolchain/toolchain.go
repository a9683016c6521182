// Package toolchain wraps the external programs a bundle build relies on: the
// native compiler for the launcher stub, the interface-builder compiler, the
// data-model compiler and the deploy tool. The builder only talks to the
// Toolchain interface, so tests can substitute a recording fake.
package toolchain

import (
	"context"
	"fmt"
	"strings"
)

// Toolchain runs the external tools. Every call is synchronous and returns
// once the tool has exited.
type Toolchain interface {
	// CompileLauncher builds the native launcher executable from its source.
	CompileLauncher(ctx context.Context, req LauncherRequest) error
	// CompileInterfaceResource compiles a .xib into a .nib at destination.
	CompileInterfaceResource(ctx context.Context, source, destination string) error
	// CompileDataModel compiles a data model into a .mom or .momd at destination.
	CompileDataModel(ctx context.Context, source, destination string) error
	// Deploy embeds the language runtime into an existing bundle.
	Deploy(ctx context.Context, req DeployRequest) error
}

// LauncherRequest describes one launcher compilation. Source and Output are
// relative to Dir, where the compiler runs.
type LauncherRequest struct {
	Dir           string
	Source        string
	Output        string
	Architectures []string
	Frameworks    []string
}

// DeployRequest describes one deploy tool run.
type DeployRequest struct {
	BundleRoot string
	Flags      []string
}

// ExternalToolError reports a tool that could not be started or exited with a
// failure status. Stderr holds whatever the tool wrote to its error stream.
type ExternalToolError struct {
	Tool   string
	Args   []string
	Stderr string
	Err    error
}

func (e *ExternalToolError) Error() string {
	msg := fmt.Sprintf("%s %s: %v", e.Tool, strings.Join(e.Args, " "), e.Err)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += "\n" + stderr
	}
	return msg
}

func (e *ExternalToolError) Unwrap() error { return e.Err }
