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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountIssueLines(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{
			name: "single plain message counts once",
			text: "exported function Foo should have comment",
			want: 1,
		},
		{
			name: "compiler transcript counts positions",
			text: "# candidate\nmain.go:5:2: undefined: foo\nmain.go:9:6: x declared and not used\n\nmain.go:12:1: missing return",
			want: 3,
		},
		{
			name: "package header and blanks skipped",
			text: "# candidate\n\n\n",
			want: 1,
		},
		{
			name: "marker without position still counts",
			text: "could not import fmt (error loading package)",
			want: 1,
		},
		{
			name: "mixed markers and positions",
			text: "undefined: bar\nmain.go:3:1: syntax problem\nsome harmless note",
			want: 2,
		},
		{
			name: "empty text counts once",
			text: "",
			want: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CountIssueLines(tt.text))
		})
	}
}
