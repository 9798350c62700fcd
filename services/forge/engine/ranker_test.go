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

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianForge/services/forge/datatypes"
)

func candidateFor(backend string, quality float64, elapsed time.Duration, artifactLen int) datatypes.CandidateResult {
	return datatypes.CandidateResult{
		Artifact:   strings.Repeat("x", artifactLen),
		Generation: datatypes.GenerationMetadata{Backend: backend},
		Validation: datatypes.ValidationReport{QualityScore: quality},
		Elapsed:    elapsed,
	}
}

func TestCombinedScore(t *testing.T) {
	t.Run("perfect candidate", func(t *testing.T) {
		c := candidateFor("a", 1.0, 0, 3000)
		assert.InDelta(t, 1.0, CombinedScore(c), 1e-9)
	})

	t.Run("weights applied", func(t *testing.T) {
		// quality 0.8, 15s => timeScore 0.5, 1500 bytes => completeness 0.5
		c := candidateFor("a", 0.8, 15*time.Second, 1500)
		want := 0.70*0.8 + 0.10*0.5 + 0.20*0.5
		assert.InDelta(t, want, CombinedScore(c), 1e-9)
	})

	t.Run("time score floors at zero", func(t *testing.T) {
		c := candidateFor("a", 1.0, 45*time.Second, 3000)
		assert.InDelta(t, 0.70+0.20, CombinedScore(c), 1e-9)
	})

	t.Run("completeness saturates", func(t *testing.T) {
		short := candidateFor("a", 1.0, 0, 3000)
		long := candidateFor("a", 1.0, 0, 9000)
		assert.InDelta(t, CombinedScore(short), CombinedScore(long), 1e-9)
	})

	t.Run("failed candidate scores zero", func(t *testing.T) {
		c := candidateFor("a", 1.0, 0, 3000)
		c.Generation.Failed = true
		assert.Zero(t, CombinedScore(c))
	})
}

func TestRank(t *testing.T) {
	t.Run("descending by combined score", func(t *testing.T) {
		in := []datatypes.CandidateResult{
			candidateFor("slow-clean", 1.0, 20*time.Second, 3000),
			candidateFor("fast-dirty", 0.4, 1*time.Second, 3000),
			candidateFor("fast-clean", 1.0, 1*time.Second, 3000),
		}
		ranked := Rank(in)

		require.Len(t, ranked, 3)
		assert.Equal(t, "fast-clean", ranked[0].Generation.Backend)
		assert.Equal(t, "slow-clean", ranked[1].Generation.Backend)
		assert.Equal(t, "fast-dirty", ranked[2].Generation.Backend)
		assert.GreaterOrEqual(t, ranked[0].CombinedScore, ranked[1].CombinedScore)
	})

	t.Run("stable for equal scores", func(t *testing.T) {
		in := []datatypes.CandidateResult{
			candidateFor("first", 0.8, 5*time.Second, 1000),
			candidateFor("second", 0.8, 5*time.Second, 1000),
		}
		ranked := Rank(in)
		assert.Equal(t, "first", ranked[0].Generation.Backend)
		assert.Equal(t, "second", ranked[1].Generation.Backend)
	})

	t.Run("input slice not modified", func(t *testing.T) {
		in := []datatypes.CandidateResult{
			candidateFor("b", 0.2, time.Second, 100),
			candidateFor("a", 1.0, time.Second, 3000),
		}
		_ = Rank(in)
		assert.Equal(t, "b", in[0].Generation.Backend)
		assert.Zero(t, in[0].CombinedScore)
	})

	t.Run("failed candidates rank last", func(t *testing.T) {
		failed := candidateFor("broken", 0, time.Second, 0)
		failed.Generation.Failed = true
		in := []datatypes.CandidateResult{failed, candidateFor("ok", 0.3, 25*time.Second, 50)}

		ranked := Rank(in)
		assert.Equal(t, "ok", ranked[0].Generation.Backend)
		assert.Equal(t, "broken", ranked[1].Generation.Backend)
	})
}
