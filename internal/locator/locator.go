// Package locator resolves the filesystem path of the Gemini CLI executable.
// Resolution follows a fixed priority: explicit override, GEMINI_CLI_PATH,
// the system PATH, well-known install directories, and finally npm global
// locations. The result is cached for the life of the process and can be
// invalidated when the binary vanishes after resolution.
package locator

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	gemerrors "github.com/schoolboyqueue/gemwrap/internal/errors"
)

// EnvCLIPath is the environment variable that overrides executable discovery.
const EnvCLIPath = "GEMINI_CLI_PATH"

// Source identifies where a resolved executable came from.
type Source string

const (
	SourceExplicit  Source = "explicit"
	SourceEnv       Source = "env"
	SourcePath      Source = "path"
	SourceWellKnown Source = "well-known"
	SourceNPMGlobal Source = "npm-global"
)

// Resolved holds a discovered executable path and its provenance.
type Resolved struct {
	Path   string
	Source Source
}

// Locator finds and caches the Gemini CLI path. Safe for concurrent use:
// the cache is read-mostly, written only on first resolution or after an
// explicit Invalidate.
type Locator struct {
	// explicit is a caller-supplied path that wins over all discovery.
	explicit string

	mu     sync.RWMutex
	cached *Resolved
}

// New creates a Locator. explicitPath may be empty, in which case discovery
// runs through the standard search order.
func New(explicitPath string) *Locator {
	return &Locator{explicit: explicitPath}
}

// Resolve returns the cached executable path, running discovery on first use.
func (l *Locator) Resolve() (string, error) {
	l.mu.RLock()
	if l.cached != nil {
		path := l.cached.Path
		l.mu.RUnlock()
		return path, nil
	}
	l.mu.RUnlock()

	l.mu.Lock()
	defer l.mu.Unlock()
	// Another caller may have resolved while we waited for the lock.
	if l.cached != nil {
		return l.cached.Path, nil
	}

	resolved, err := l.discover()
	if err != nil {
		return "", err
	}
	l.cached = resolved
	return resolved.Path, nil
}

// ResolvedInfo returns the cached resolution with provenance, resolving if
// needed. Used by health checks and verbose output.
func (l *Locator) ResolvedInfo() (*Resolved, error) {
	if _, err := l.Resolve(); err != nil {
		return nil, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	r := *l.cached
	return &r, nil
}

// Invalidate drops the cached path so the next Resolve re-runs discovery.
// Called by the transport when a previously resolved binary has vanished.
func (l *Locator) Invalidate() {
	l.mu.Lock()
	l.cached = nil
	l.mu.Unlock()
}

// discover walks the search order and returns the first valid candidate.
func (l *Locator) discover() (*Resolved, error) {
	var searched []string

	if l.explicit != "" {
		if isExecutable(l.explicit) {
			return &Resolved{Path: l.explicit, Source: SourceExplicit}, nil
		}
		searched = append(searched, l.explicit)
	}

	if envPath := os.Getenv(EnvCLIPath); envPath != "" {
		if isExecutable(envPath) {
			return &Resolved{Path: envPath, Source: SourceEnv}, nil
		}
		searched = append(searched, envPath+" ($"+EnvCLIPath+")")
	}

	if path, err := exec.LookPath(binaryName()); err == nil {
		return &Resolved{Path: path, Source: SourcePath}, nil
	}
	searched = append(searched, "$PATH")

	for _, candidate := range wellKnownPaths() {
		if isExecutable(candidate) {
			return &Resolved{Path: candidate, Source: SourceWellKnown}, nil
		}
		searched = append(searched, candidate)
	}

	for _, candidate := range npmGlobalPaths() {
		if isExecutable(candidate) {
			return &Resolved{Path: candidate, Source: SourceNPMGlobal}, nil
		}
		searched = append(searched, candidate)
	}

	return nil, gemerrors.NewNotFoundError(searched)
}

// binaryName returns the bare executable name for PATH lookup.
func binaryName() string {
	return "gemini"
}

// wellKnownPaths lists fixed per-user and system install directories.
func wellKnownPaths() []string {
	var paths []string
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".local", "bin", "gemini"))
	}
	paths = append(paths,
		"/usr/local/bin/gemini",
		filepath.Join("/opt", "gemini", "bin", "gemini"),
	)
	return paths
}

// npmGlobalPaths lists package-manager global install locations. Windows
// npm installs a .cmd wrapper; elsewhere the shim is a bare executable.
func npmGlobalPaths() []string {
	if runtime.GOOS == "windows" {
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return nil
		}
		return []string{filepath.Join(appData, "npm", "gemini.cmd")}
	}

	var paths []string
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".npm-global", "bin", "gemini"))
	}
	paths = append(paths, "/usr/local/lib/node_modules/.bin/gemini")
	return paths
}

// isExecutable reports whether path exists, is a regular file, and can be
// executed. Windows has no execute mode bits, so the check there is by
// extension.
func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		ext := strings.ToLower(filepath.Ext(path))
		return ext == ".exe" || ext == ".cmd" || ext == ".bat"
	}
	return info.Mode().Perm()&0111 != 0
}
