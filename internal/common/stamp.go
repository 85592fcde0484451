package common

import (
	"regexp"
	"time"
)

// StampLayout is the generation timestamp embedded in artifact filenames.
const StampLayout = "20060102_150405"

// StampPattern matches a StampLayout token.
const StampPattern = `\d{8}_\d{6}`

var stampRe = regexp.MustCompile(StampPattern)

// Stamp formats t as a filename token.
func Stamp(t time.Time) string {
	return t.Format(StampLayout)
}

// ParseStamp extracts and parses the first stamp token found in s.
func ParseStamp(s string) (time.Time, bool) {
	tok := stampRe.FindString(s)
	if tok == "" {
		return time.Time{}, false
	}
	ts, err := time.Parse(StampLayout, tok)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
