package metadata

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a parsed "major.minor.patch" token
type Version struct {
	Major int
	Minor int
	Patch int
}

// ParseVersion parses a dotted version string. With skipPatch set,
// two-component strings are accepted and the patch defaults to zero.
func ParseVersion(s string, skipPatch bool) (Version, error) {
	parts := strings.Split(s, ".")
	want := 3
	if skipPatch {
		want = 2
	}
	if len(parts) != want {
		return Version{}, fmt.Errorf("expected %d version components in %q", want, s)
	}

	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || (len(p) > 1 && p[0] == '0') {
			return Version{}, fmt.Errorf("invalid version component %q in %q", p, s)
		}
		nums[i] = n
	}

	v := Version{Major: nums[0], Minor: nums[1]}
	if !skipPatch {
		v.Patch = nums[2]
	}
	return v, nil
}

// Compare returns -1, 0 or 1 ordering v against other lexicographically
// over the (major, minor, patch) triple.
func (v Version) Compare(other Version) int {
	pairs := [][2]int{
		{v.Major, other.Major},
		{v.Minor, other.Minor},
		{v.Patch, other.Patch},
	}
	for _, p := range pairs {
		if p[0] < p[1] {
			return -1
		}
		if p[0] > p[1] {
			return 1
		}
	}
	return 0
}

// String returns the dotted form
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}
