// Package utils contains small text helpers shared by the endpoints.
package utils

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Title upper-cases the first letter of every word and lower-cases the rest.
func Title(s string) string {
	return cases.Title(language.Und).String(s)
}

// Reverse reverses s rune by rune.
func Reverse(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

// RepeatJoin joins n copies of s with ", ", then drops trailing commas and spaces.
func RepeatJoin(s string, n int) string {
	return strings.TrimRight(strings.Repeat(s+", ", n), ", ")
}
