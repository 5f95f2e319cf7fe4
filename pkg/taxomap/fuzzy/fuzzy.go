package fuzzy

import (
	"math"
	"strings"
)

// Scorer compares two strings and returns a similarity in [0,100].
// Comparison is rune based and case-sensitive; callers lower-case first.
type Scorer func(a, b string) int

// Ratio scores the whole of a against the whole of b as
// 2*overlap / (len(a)+len(b)), where overlap is the length of the longest
// common subsequence. Two empty strings score 0.
func Ratio(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 || len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	return percent(2*overlap(ra, rb), total)
}

// PartialRatio aligns the shorter string against every equal-length window
// of the longer one and returns the best window Ratio. It is 100 when the
// shorter string occurs verbatim inside the longer one and 0 when either
// operand is empty. Ties keep the first window found.
func PartialRatio(a, b string) int {
	short, long := []rune(a), []rune(b)
	if len(short) > len(long) {
		short, long = long, short
	}
	n := len(short)
	if n == 0 {
		return 0
	}
	if strings.Contains(string(long), string(short)) {
		return 100
	}

	best := 0
	for start := 0; start+n <= len(long); start++ {
		score := percent(overlap(short, long[start:start+n]), n)
		if score > best {
			best = score
		}
	}
	return best
}

// overlap returns the longest common subsequence length of a and b.
func overlap(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				curr[j] = prev[j-1] + 1
			case prev[j] >= curr[j-1]:
				curr[j] = prev[j]
			default:
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// percent rounds 100*num/den half to even.
func percent(num, den int) int {
	return int(math.RoundToEven(100 * float64(num) / float64(den)))
}
