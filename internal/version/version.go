package version

const (
	// Name of the application
	Name = "memberwall"
)

var (
	// Version is the semantic version
	Version = "1.0.0"
	// BuildTime is set during build via ldflags
	BuildTime = "unknown"
	// GitCommit is set during build via ldflags
	GitCommit = "unknown"
)

// Full returns the version string, including commit and build time when the
// binary was stamped with them.
func Full() string {
	if BuildTime == "unknown" || GitCommit == "unknown" {
		return Version
	}
	return Version + " (commit: " + GitCommit + ", built: " + BuildTime + ")"
}
