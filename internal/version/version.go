// Package version models Robot Framework versions and the ranges that gate
// mappers and validators.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a major.minor.patch Robot Framework version.
type Version struct {
	Major int
	Minor int
	Patch int
}

// New returns major.minor with a zero patch.
func New(major, minor int) Version {
	return Version{Major: major, Minor: minor}
}

// Parse accepts "3", "3.1" or "3.1.2". Suffixes such as "3.1b1" or
// "3.1.2.dev" are ignored after the last numeric component.
func Parse(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Version{}, fmt.Errorf("empty version")
	}
	parts := strings.SplitN(s, ".", 3)
	var nums [3]int
	for i, p := range parts {
		digits := leadingDigits(p)
		if digits == "" {
			return Version{}, fmt.Errorf("invalid version %q", s)
		}
		n, err := strconv.Atoi(digits)
		if err != nil {
			return Version{}, fmt.Errorf("invalid version %q: %w", s, err)
		}
		nums[i] = n
		if len(digits) < len(p) {
			break
		}
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// MustParse is Parse for constants. It panics on malformed input.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

func leadingDigits(s string) string {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i]
}

// Compare returns -1, 0 or 1.
func (v Version) Compare(o Version) int {
	switch {
	case v.Major != o.Major:
		return sign(v.Major - o.Major)
	case v.Minor != o.Minor:
		return sign(v.Minor - o.Minor)
	default:
		return sign(v.Patch - o.Patch)
	}
}

func sign(n int) int {
	if n < 0 {
		return -1
	}
	if n > 0 {
		return 1
	}
	return 0
}

func (v Version) IsOlderThan(o Version) bool {
	return v.Compare(o) < 0
}

func (v Version) IsNewerOrEqualTo(o Version) bool {
	return v.Compare(o) >= 0
}

func (v Version) String() string {
	if v.Patch == 0 {
		return fmt.Sprintf("%d.%d", v.Major, v.Minor)
	}
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Range is a half-open interval [min, max). A nil bound is unbounded.
type Range struct {
	min *Version
	max *Version
}

func Any() Range {
	return Range{}
}

func AtLeast(v Version) Range {
	return Range{min: &v}
}

func LessThan(v Version) Range {
	return Range{max: &v}
}

// Between is [lo, hi).
func Between(lo, hi Version) Range {
	return Range{min: &lo, max: &hi}
}

// Contains reports whether v falls inside the range.
func (r Range) Contains(v Version) bool {
	if r.min != nil && v.IsOlderThan(*r.min) {
		return false
	}
	if r.max != nil && !v.IsOlderThan(*r.max) {
		return false
	}
	return true
}

func (r Range) String() string {
	switch {
	case r.min == nil && r.max == nil:
		return "any"
	case r.max == nil:
		return ">=" + r.min.String()
	case r.min == nil:
		return "<" + r.max.String()
	default:
		return fmt.Sprintf(">=%s <%s", r.min, r.max)
	}
}
