package app

// Build identity stamped into the run manifest. Release builds override these
// via -ldflags; the defaults identify local development binaries.
var (
	// BuildVersion is the semantic version of the built binary.
	BuildVersion = "0.0.0-dev"
	// BuildCommit is the VCS commit SHA associated with the build.
	BuildCommit = "unknown"
)
