// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package version

import (
	"fmt"
	"runtime"
)

var (
	// Version is the current library version, following semantic versioning.
	// It is populated by the build system (ldflags) for binaries.
	Version = "v0.1.0"

	// Commit is the git short hash of the build.
	Commit = "unknown"

	// Date is the build timestamp.
	Date = "unknown"
)

// RepoURL is the canonical project URL advertised to Discord.
const RepoURL = "https://github.com/ManuGH/retux"

// UserAgent returns the User-Agent Discord requires from bot clients.
func UserAgent() string {
	return fmt.Sprintf("DiscordBot (%s %s) Go/%s", RepoURL, Version, runtime.Version())
}

// String renders the version line printed by the CLI.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
}
