package filequeue

import (
	"math"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// numberRe matches the first unsigned decimal number in a filename stem.
// The sign is handled separately so that separator hyphens ("sample-12")
// are not read as negative signs.
var numberRe = regexp.MustCompile(`\d+(?:\.\d+)?`)

// autoTag proposes a tag for a newly queued file. If the filename stem
// contains a decimal number, its numeric value becomes the tag. Otherwise
// the tag is the smallest positive integer not already used as a tag by
// another entry in the same queue.
func autoTag(filename string, existing map[string]bool) string {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))

	if loc := numberRe.FindStringIndex(stem); loc != nil {
		text := stem[loc[0]:loc[1]]
		// Accept a leading minus only when it starts the stem or follows a
		// separator, so "run-3" tags as 3 but "-3_run" tags as -3.
		if loc[0] > 0 && stem[loc[0]-1] == '-' {
			if loc[0] == 1 || isSeparator(stem[loc[0]-2]) {
				text = "-" + text
			}
		}
		v, err := strconv.ParseFloat(text, 64)
		if err == nil {
			return formatTag(v)
		}
	}

	for i := 1; ; i++ {
		tag := strconv.Itoa(i)
		if !existing[tag] && !existing[tag+".0"] {
			return tag
		}
	}
}

func isSeparator(c byte) bool {
	return c == ' ' || c == '_' || c == '-' || c == '(' || c == '['
}

// formatTag renders a numeric tag; whole numbers keep one decimal place so
// "sample-12" tags as "12.0".
func formatTag(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (q *Queue) existingTags() map[string]bool {
	tags := make(map[string]bool, len(q.entries))
	for _, e := range q.entries {
		tags[e.Tag] = true
	}
	return tags
}
