// Package toolchaintest provides a Toolchain that records calls instead of
// running external programs.
package toolchaintest

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"bundlebuilder/toolchain"
)

const (
	MethodCompileLauncher          = "CompileLauncher"
	MethodCompileInterfaceResource = "CompileInterfaceResource"
	MethodCompileDataModel         = "CompileDataModel"
	MethodDeploy                   = "Deploy"
)

// Call is one recorded toolchain invocation.
type Call struct {
	Method      string
	Source      string
	Destination string
	Launcher    toolchain.LauncherRequest
	Deploy      toolchain.DeployRequest
	// Input is the content of the launcher source at compile time.
	Input string
}

// Recorder implements toolchain.Toolchain. Compile methods write a small
// placeholder at their output path so later build steps see a file there.
// Errors in Fail are returned for the matching method after the call is
// recorded.
type Recorder struct {
	mu    sync.Mutex
	calls []Call

	Fail map[string]error
}

var _ toolchain.Toolchain = (*Recorder)(nil)

// New returns an empty Recorder.
func New() *Recorder {
	return &Recorder{Fail: map[string]error{}}
}

// Calls returns the recorded calls in order.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Methods returns the method names of the recorded calls in order.
func (r *Recorder) Methods() []string {
	var methods []string
	for _, c := range r.Calls() {
		methods = append(methods, c.Method)
	}
	return methods
}

// CallsTo returns the recorded calls of one method.
func (r *Recorder) CallsTo(method string) []Call {
	var calls []Call
	for _, c := range r.Calls() {
		if c.Method == method {
			calls = append(calls, c)
		}
	}
	return calls
}

func (r *Recorder) record(c Call) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
	return r.Fail[c.Method]
}

func (r *Recorder) CompileLauncher(_ context.Context, req toolchain.LauncherRequest) error {
	input, _ := os.ReadFile(filepath.Join(req.Dir, req.Source))
	if err := r.record(Call{Method: MethodCompileLauncher, Launcher: req, Input: string(input)}); err != nil {
		return err
	}
	return placeholder(filepath.Join(req.Dir, req.Output), 0o755)
}

func (r *Recorder) CompileInterfaceResource(_ context.Context, source, destination string) error {
	if err := r.record(Call{Method: MethodCompileInterfaceResource, Source: source, Destination: destination}); err != nil {
		return err
	}
	return placeholder(destination, 0o644)
}

func (r *Recorder) CompileDataModel(_ context.Context, source, destination string) error {
	if err := r.record(Call{Method: MethodCompileDataModel, Source: source, Destination: destination}); err != nil {
		return err
	}
	return placeholder(destination, 0o644)
}

func (r *Recorder) Deploy(_ context.Context, req toolchain.DeployRequest) error {
	req.Flags = append([]string(nil), req.Flags...)
	return r.record(Call{Method: MethodDeploy, Deploy: req})
}

func placeholder(path string, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte("compiled\n"), perm)
}
