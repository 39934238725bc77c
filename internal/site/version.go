package site

import (
	"errors"
	"fmt"

	"golang.org/x/mod/semver"
)

// DefaultMaxVersion is the newest document schema this module understands.
const DefaultMaxVersion = "3.1.0"

// ErrUnsupportedVersion reports a document newer than the configured maximum
// or with an unparseable version.
var ErrUnsupportedVersion = errors.New("unsupported site version")

// CheckVersion accepts an empty version and any version <= max.
func CheckVersion(version, max string) error {
	if version == "" {
		return nil
	}
	if max == "" {
		max = DefaultMaxVersion
	}
	v, m := "v"+version, "v"+max
	if !semver.IsValid(v) {
		return fmt.Errorf("%w: %q", ErrUnsupportedVersion, version)
	}
	if !semver.IsValid(m) {
		return fmt.Errorf("invalid maximum version %q", max)
	}
	if semver.Compare(v, m) > 0 {
		return fmt.Errorf("%w: %s exceeds %s", ErrUnsupportedVersion, version, max)
	}
	return nil
}
