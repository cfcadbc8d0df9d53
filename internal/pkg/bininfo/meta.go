// Values in this file are injected at build time with -ldflags "-X properly.homes/backend/internal/pkg/bininfo.Version=...".
// Keep the variable names stable: the release pipeline references them.

package bininfo

const Name = "properly-backend"

var (
	// Version is the SemVer version of the binary.
	// Git commit is appended, if available, separated by a plus sign [+].
	Version = "v0.0.0"

	// BuildTime is the time at which the application was built.
	BuildTime = "1970-01-01T00:00:00Z"
)
