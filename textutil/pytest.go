package textutil

import (
	"errors"
	"regexp"
	"strconv"
)

var (
	collectedRe = regexp.MustCompile(`collected (\d+) items?`)
	passedRe    = regexp.MustCompile(`(\d+) passed`)
)

// ErrNoTestCases reports pytest output without a collection summary.
var ErrNoTestCases = errors.New("no test cases found in pytest output")

// PytestMaxScore extracts the number of collected test cases from pytest
// output.
func PytestMaxScore(output string) (int, error) {
	m := collectedRe.FindStringSubmatch(output)
	if m == nil {
		return 0, ErrNoTestCases
	}
	return strconv.Atoi(m[1])
}

// PytestScore extracts the number of passing test cases from pytest output.
// Output without an "N passed" summary scores zero.
func PytestScore(output string) int {
	m := passedRe.FindStringSubmatch(output)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}
