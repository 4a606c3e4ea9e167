// Package lua embeds a Golua runtime that exposes the go-webhelpers
// functions to scripts through a global "helpers" table.
package lua

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"

	"github.com/arnodel/golua/lib"
	rt "github.com/arnodel/golua/runtime"
)

// RuntimeConfig contains configuration options for the Lua runtime.
type RuntimeConfig struct {
	// CPULimit is the CPU instruction limit for one execution.
	// 0 means unlimited.
	CPULimit uint64
	// MemoryLimit is the maximum memory in bytes a script may allocate.
	// 0 means unlimited.
	MemoryLimit uint64
	// Stdout receives print output. Output is always captured as well.
	Stdout io.Writer
}

// DefaultConfig returns a RuntimeConfig with a 10,000,000 instruction CPU
// limit and a 50 MB memory limit, printing to os.Stdout.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		CPULimit:    10_000_000,
		MemoryLimit: 50 * 1024 * 1024,
		Stdout:      os.Stdout,
	}
}

// Function describes a Go function exposed to Lua.
type Function struct {
	Name    string
	Fn      rt.GoFunctionFunc
	NArgs   int
	VarArgs bool
}

// HelperRuntime wraps a Golua runtime with resource limits and captured
// output. All methods are safe for concurrent use; executions are
// serialized.
type HelperRuntime struct {
	config  RuntimeConfig
	runtime *rt.Runtime
	output  *bytes.Buffer
	cleanup func()
	mu      sync.RWMutex
}

// New creates a HelperRuntime with the Lua standard libraries loaded.
func New(config RuntimeConfig) (*HelperRuntime, error) {
	output := &bytes.Buffer{}
	var stdout io.Writer = output
	if config.Stdout != nil {
		stdout = io.MultiWriter(config.Stdout, output)
	}

	runtime := rt.New(stdout)
	cleanup := lib.LoadAll(runtime)

	return &HelperRuntime{
		config:  config,
		runtime: runtime,
		output:  output,
		cleanup: cleanup,
	}, nil
}

// load compiles a chunk against the global environment. Callers hold mu.
func (hr *HelperRuntime) load(name string, code []byte) (*rt.Closure, error) {
	closure, err := hr.runtime.CompileAndLoadLuaChunk(name, code, rt.TableValue(hr.runtime.GlobalEnv()))
	if err != nil {
		return nil, fmt.Errorf("failed to load Lua chunk %s: %w", name, err)
	}
	return closure, nil
}

// LoadString compiles a Lua code string for Execute.
func (hr *HelperRuntime) LoadString(name, code string) (*rt.Closure, error) {
	hr.mu.Lock()
	defer hr.mu.Unlock()
	return hr.load(name, []byte(code))
}

// LoadFile reads and compiles a Lua file from disk.
func (hr *HelperRuntime) LoadFile(path string) (*rt.Closure, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read Lua file %s: %w", path, err)
	}

	hr.mu.Lock()
	defer hr.mu.Unlock()
	return hr.load(path, content)
}

// LoadFileFromFS reads and compiles a Lua file from fsys.
func (hr *HelperRuntime) LoadFileFromFS(fsys fs.FS, path string) (*rt.Closure, error) {
	content, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read Lua file from FS %s: %w", path, err)
	}

	hr.mu.Lock()
	defer hr.mu.Unlock()
	return hr.load(path, content)
}

// limits returns the hard limits applied to every call.
func (hr *HelperRuntime) limits() rt.RuntimeContextDef {
	return rt.RuntimeContextDef{
		HardLimits: rt.RuntimeResources{
			Cpu:    hr.config.CPULimit,
			Memory: hr.config.MemoryLimit,
		},
	}
}

// Execute runs a compiled closure within the configured limits and returns
// its first result. Exceeding a limit aborts the script with an error
// wrapping ErrLimitExceeded.
func (hr *HelperRuntime) Execute(closure *rt.Closure) (result rt.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = rt.NilValue, fmt.Errorf("%w: %v", ErrLimitExceeded, r)
		}
	}()

	hr.mu.Lock()
	defer hr.mu.Unlock()

	hr.runtime.PushContext(hr.limits())
	defer hr.runtime.PopContext()

	result, err = rt.Call1(hr.runtime.MainThread(), rt.FunctionValue(closure))
	if err != nil {
		return rt.NilValue, fmt.Errorf("Lua execution error: %w", err)
	}
	return result, nil
}

// ExecuteString compiles and executes a Lua code string.
func (hr *HelperRuntime) ExecuteString(name, code string) (rt.Value, error) {
	closure, err := hr.LoadString(name, code)
	if err != nil {
		return rt.NilValue, err
	}
	return hr.Execute(closure)
}

// ExecuteFile loads and executes a Lua file.
func (hr *HelperRuntime) ExecuteFile(path string) (rt.Value, error) {
	closure, err := hr.LoadFile(path)
	if err != nil {
		return rt.NilValue, err
	}
	return hr.Execute(closure)
}

// GetGlobal retrieves a global variable.
func (hr *HelperRuntime) GetGlobal(name string) rt.Value {
	hr.mu.RLock()
	defer hr.mu.RUnlock()
	return hr.runtime.GlobalEnv().Get(rt.StringValue(name))
}

// SetGlobal sets a global variable.
func (hr *HelperRuntime) SetGlobal(name string, value rt.Value) {
	hr.mu.Lock()
	defer hr.mu.Unlock()
	hr.runtime.GlobalEnv().Set(rt.StringValue(name), value)
}

// newGoFunction wraps fn and declares it compliant with the resource limits.
func newGoFunction(f Function) rt.Value {
	goFunc := rt.NewGoFunction(f.Fn, f.Name, f.NArgs, f.VarArgs)
	rt.SolemnlyDeclareCompliance(rt.ComplyMemSafe|rt.ComplyCpuSafe, goFunc)
	return rt.FunctionValue(goFunc)
}

// SetGoFunction registers a Go function as a global.
func (hr *HelperRuntime) SetGoFunction(name string, fn rt.GoFunctionFunc, nArgs int, hasVarArgs bool) {
	hr.mu.Lock()
	defer hr.mu.Unlock()
	hr.runtime.GlobalEnv().Set(rt.StringValue(name), newGoFunction(Function{
		Name: name, Fn: fn, NArgs: nArgs, VarArgs: hasVarArgs,
	}))
}

// SetModule registers funcs in a fresh global table called name, replacing
// any previous value, and returns the table.
func (hr *HelperRuntime) SetModule(name string, funcs []Function) *rt.Table {
	table := rt.NewTable()
	for _, f := range funcs {
		table.Set(rt.StringValue(f.Name), newGoFunction(f))
	}

	hr.mu.Lock()
	defer hr.mu.Unlock()
	hr.runtime.GlobalEnv().Set(rt.StringValue(name), rt.TableValue(table))
	return table
}

// CallFunction calls a global Lua function by name.
func (hr *HelperRuntime) CallFunction(name string, args ...rt.Value) (rt.Value, error) {
	hr.mu.Lock()
	defer hr.mu.Unlock()

	fn := hr.runtime.GlobalEnv().Get(rt.StringValue(name))
	if fn.IsNil() {
		return rt.NilValue, fmt.Errorf("function %s not found", name)
	}

	hr.runtime.PushContext(hr.limits())
	defer hr.runtime.PopContext()

	result, err := rt.Call1(hr.runtime.MainThread(), fn, args...)
	if err != nil {
		return rt.NilValue, fmt.Errorf("failed to call function %s: %w", name, err)
	}
	return result, nil
}

// Output returns everything printed so far.
func (hr *HelperRuntime) Output() string {
	hr.mu.RLock()
	defer hr.mu.RUnlock()
	return hr.output.String()
}

// ClearOutput clears the captured output buffer.
func (hr *HelperRuntime) ClearOutput() {
	hr.mu.Lock()
	defer hr.mu.Unlock()
	hr.output.Reset()
}

// Config returns the runtime configuration.
func (hr *HelperRuntime) Config() RuntimeConfig {
	hr.mu.RLock()
	defer hr.mu.RUnlock()
	return hr.config
}

// Close releases resources. The runtime must not be used afterwards.
func (hr *HelperRuntime) Close() error {
	hr.mu.Lock()
	defer hr.mu.Unlock()

	if hr.cleanup != nil {
		hr.cleanup()
		hr.cleanup = nil
	}
	return nil
}
