// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package validation

import (
	"regexp"
	"strings"
)

// locationLine matches compiler-style positions like "main.go:12:" or
// "pkg/foo.go:3:14:".
var locationLine = regexp.MustCompile(`^\s*\S+\.go:\d+:`)

// errorMarkers are substrings that mark a sub-line as a distinct
// problem even without a file position.
var errorMarkers = []string{"undefined", "not used", "error"}

// CountIssueLines estimates how many distinct problems one issue blob
// describes. Tools sometimes report a whole compiler transcript as a
// single issue; counting its meaningful sub-lines keeps the quality
// score honest.
//
// Blank lines and "#" package headers are skipped. A sub-line counts
// when it carries a file position or one of the error markers. Every
// non-empty blob counts at least once.
func CountIssueLines(text string) int {
	count := 0
	for _, line := range strings.Split(text, "\n") {
		stripped := strings.TrimSpace(line)
		if stripped == "" || strings.HasPrefix(stripped, "#") {
			continue
		}
		if locationLine.MatchString(stripped) {
			count++
			continue
		}
		lower := strings.ToLower(stripped)
		for _, marker := range errorMarkers {
			if strings.Contains(lower, marker) {
				count++
				break
			}
		}
	}
	if count < 1 {
		count = 1
	}
	return count
}
