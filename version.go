// Package pitchroom provides the version information for pitchroom.
package pitchroom

// Version is the current version of pitchroom.
const Version = "0.1.0"

// GetVersion returns the current version string.
func GetVersion() string {
	return Version
}
