package condition

import (
	"strconv"
	"strings"
)

// CompareVersions compares two version strings. When every dot
// component of both versions parses as an unsigned integer they are
// compared component-wise, shorter versions padded with zeros, so
// "1.10.0" sorts after "1.2.3". Otherwise the original strings are
// compared lexicographically; product version strings in the wild are
// not reliably numeric, and that fallback matches their historical
// ordering.
// Returns -1, 0 or 1.
func CompareVersions(a, b string) int {
	aParts := strings.Split(a, ".")
	bParts := strings.Split(b, ".")

	aNums, aOK := numericParts(aParts)
	bNums, bOK := numericParts(bParts)
	if aOK && bOK {
		for len(aNums) < len(bNums) {
			aNums = append(aNums, 0)
		}
		for len(bNums) < len(aNums) {
			bNums = append(bNums, 0)
		}
		for i := range aNums {
			if aNums[i] < bNums[i] {
				return -1
			}
			if aNums[i] > bNums[i] {
				return 1
			}
		}
		return 0
	}
	return strings.Compare(a, b)
}

func numericParts(parts []string) ([]uint64, bool) {
	nums := make([]uint64, len(parts))
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return nil, false
		}
		nums[i] = n
	}
	return nums, true
}

// CompareWith applies a comparator to two version strings.
func (op Comparator) CompareWith(actual, want string) bool {
	c := CompareVersions(actual, want)
	switch op {
	case CmpEq:
		return c == 0
	case CmpNe:
		return c != 0
	case CmpLt:
		return c < 0
	case CmpLe:
		return c <= 0
	case CmpGt:
		return c > 0
	case CmpGe:
		return c >= 0
	}
	return false
}
