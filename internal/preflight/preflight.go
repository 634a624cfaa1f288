// Package preflight runs the environment checks surfaced by `bs doctor`:
// directory access for the identity store and logs, history database
// writability, and engine settings sanity.
package preflight

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sys/unix"

	"github.com/phoniks/bs/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every preflight check for the given config.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	return []Result{
		CheckDirectoryAccess("Identity directory", cfg.Paths.IdentityDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckDirectoryAccess("History database directory", filepath.Dir(cfg.Paths.HistoryDB)),
		CheckWorkers(cfg.Engine.Workers),
	}
}

// Passed reports whether every result succeeded.
func Passed(results []Result) bool {
	for _, result := range results {
		if !result.Passed {
			return false
		}
	}
	return true
}

// CheckDirectoryAccess verifies that the directory exists and is
// readable/writable. A missing directory passes with a note: bs creates its
// directories on first use.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckWorkers validates the configured engine pool size against the host.
func CheckWorkers(workers int) Result {
	const name = "Engine workers"
	cpus := runtime.NumCPU()
	switch {
	case workers < 0:
		return Result{Name: name, Detail: fmt.Sprintf("%d (error: must not be negative)", workers)}
	case workers == 0:
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("auto (%d logical CPUs)", cpus)}
	case workers > cpus*4:
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d (high for %d logical CPUs)", workers, cpus)}
	default:
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d", workers)}
	}
}
