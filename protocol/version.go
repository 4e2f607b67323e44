package protocol

import (
	"fmt"
	"strings"

	"github.com/blang/semver/v4"
)

// Version identifies a protocol revision. The wire form is "major.minor.patch",
// with an optional leading "v" accepted on input.
type Version struct {
	Major, Minor, Patch uint64
}

func V(major, minor, patch uint64) Version {
	return Version{Major: major, Minor: minor, Patch: patch}
}

func ParseVersion(s string) (Version, error) {
	t := strings.TrimPrefix(strings.TrimSpace(s), "v")
	sv, err := semver.Parse(t)
	if err != nil {
		return Version{}, fmt.Errorf("invalid version %q: %w", s, err)
	}
	return Version{Major: sv.Major, Minor: sv.Minor, Patch: sv.Patch}, nil
}

func (v Version) String() string {
	return fmt.Sprintf("v%d.%d.%d", v.Major, v.Minor, v.Patch)
}

func (v Version) semver() semver.Version {
	return semver.Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch}
}

// Compare returns -1, 0 or 1 according to semantic version precedence.
func (v Version) Compare(o Version) int {
	return v.semver().Compare(o.semver())
}

func (v Version) LT(o Version) bool { return v.Compare(o) < 0 }
func (v Version) LE(o Version) bool { return v.Compare(o) <= 0 }
func (v Version) GE(o Version) bool { return v.Compare(o) >= 0 }
