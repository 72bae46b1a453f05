package ingest

import (
	"strconv"

	"comboforge/strutil"
)

// ExtractNumbers applies the shared line grammar: split on whitespace and
// commas, keep purely numeric tokens, keep values inside [1, max]. Values are
// returned in their original order. Tokens too large for an int are out of
// range by definition.
func ExtractNumbers(line string, max int) []int {
	tokens := strutil.SplitTokens(strutil.NormalizeLine(line))
	nums := make([]int, 0, len(tokens))
	for _, tok := range tokens {
		if !strutil.IsDigits(tok) {
			continue
		}
		v, err := strconv.Atoi(tok)
		if err != nil || v < 1 || v > max {
			continue
		}
		nums = append(nums, v)
	}
	return nums
}

// firstDistinct returns up to n values from nums, skipping repeats.
func firstDistinct(nums []int, n int) []int {
	out := make([]int, 0, n)
	for _, v := range nums {
		if len(out) == n {
			break
		}
		repeated := false
		for _, seen := range out {
			if seen == v {
				repeated = true
				break
			}
		}
		if !repeated {
			out = append(out, v)
		}
	}
	return out
}
