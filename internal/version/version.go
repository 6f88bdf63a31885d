// Package version provides build version information and runtime metadata.
package version

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"
)

const gitTimeout = 2 * time.Second

var (
	// These are set via ldflags at build time
	Version = ""
	Commit  = ""
	Date    = ""

	built struct{ version, commit, date string }

	once sync.Once

	execCommand = exec.CommandContext
)

// Reset clears cached values so the next accessor resolves them again.
func Reset() {
	once = sync.Once{}
	built.version, built.commit, built.date = "", "", ""
}

func ensureInitialized() {
	once.Do(func() {
		built.version, built.commit, built.date = Version, Commit, Date
		if built.date == "" {
			built.date = time.Now().Format("2006-01-02")
		}
		if built.commit == "" {
			built.commit = gitCommit()
		}
		if built.version == "" {
			built.version = gitVersion()
		}
	})
}

func git(args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), gitTimeout)
	defer cancel()

	cmd := execCommand(ctx, "git", args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.String()), nil
}

func gitCommit() string {
	out, err := git("describe", "--always", "--dirty")
	if err != nil || out == "" {
		return "unknown"
	}
	return out
}

func gitVersion() string {
	out, err := git("describe", "--tags", "--abbrev=0")
	if err != nil || out == "" {
		return "dev"
	}
	return out
}

// GetVersion returns the release tag, or "dev" outside a tagged checkout.
func GetVersion() string {
	ensureInitialized()
	return built.version
}

// GetCommit returns the abbreviated commit hash.
func GetCommit() string {
	ensureInitialized()
	return built.commit
}

// GetDate returns the build date.
func GetDate() string {
	ensureInitialized()
	return built.date
}

// Info returns a one-line description of the build.
func Info() string {
	ensureInitialized()
	return fmt.Sprintf("leap-dashboard-tui %s (commit: %s, built: %s, %s/%s)",
		built.version, built.commit, built.date, runtime.GOOS, runtime.GOARCH)
}
