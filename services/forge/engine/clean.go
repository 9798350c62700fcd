// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package engine

import "strings"

// CleanArtifact strips markdown code-fence wrapping from a raw model
// response and returns the bare source text.
//
// When the response contains no fence at all it is returned with only
// surrounding whitespace trimmed, which makes the function idempotent:
// CleanArtifact(CleanArtifact(s)) == CleanArtifact(s).
//
// With fences present, the content starts after the first fence line,
// or at the first line beginning with "package " if that comes first.
// Content ends before the last fence line when one follows the start.
// If stripping would leave nothing, the trimmed raw text is returned
// so a malformed response degrades to "return what the model said"
// instead of an empty artifact.
func CleanArtifact(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	lines := strings.Split(trimmed, "\n")

	fenceIdx := -1
	packageIdx := -1
	for i, line := range lines {
		stripped := strings.TrimSpace(line)
		if fenceIdx == -1 && strings.HasPrefix(stripped, "```") {
			fenceIdx = i
		}
		if packageIdx == -1 && strings.HasPrefix(stripped, "package ") {
			packageIdx = i
		}
		if fenceIdx != -1 && packageIdx != -1 {
			break
		}
	}

	if fenceIdx == -1 {
		return trimmed
	}

	start := fenceIdx + 1
	if packageIdx != -1 && packageIdx < fenceIdx {
		start = packageIdx
	}

	end := len(lines)
	for i := len(lines) - 1; i >= start; i-- {
		if strings.HasPrefix(strings.TrimSpace(lines[i]), "```") {
			end = i
			break
		}
	}

	cleaned := strings.TrimSpace(strings.Join(lines[start:end], "\n"))
	if cleaned == "" {
		return trimmed
	}
	return cleaned
}
