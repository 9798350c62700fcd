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
	"sort"

	"github.com/AleutianAI/AleutianForge/services/forge/datatypes"
)

// Scoring weights. Quality dominates; speed is a tiebreaker.
const (
	qualityWeight      = 0.70
	timeWeight         = 0.10
	completenessWeight = 0.20

	// timeCeilingSeconds is the generation duration at which the time
	// component reaches zero.
	timeCeilingSeconds = 30.0

	// completenessCeiling is the artifact length, in bytes, at which
	// the completeness component saturates at 1.
	completenessCeiling = 3000.0
)

// CombinedScore computes the ranking score for one candidate.
// Failed candidates score zero so they always rank last.
func CombinedScore(c datatypes.CandidateResult) float64 {
	if c.Generation.Failed {
		return 0.0
	}

	timeScore := 1.0 - c.Elapsed.Seconds()/timeCeilingSeconds
	if timeScore < 0.0 {
		timeScore = 0.0
	}

	completeness := float64(len(c.Artifact)) / completenessCeiling
	if completeness > 1.0 {
		completeness = 1.0
	}

	return qualityWeight*c.Validation.QualityScore +
		timeWeight*timeScore +
		completenessWeight*completeness
}

// Rank returns a new slice sorted by combined score, best first, with
// each candidate's CombinedScore filled in. The sort is stable, so
// equal scores keep dispatch order and ranking stays reproducible.
// The input slice is not modified.
func Rank(candidates []datatypes.CandidateResult) []datatypes.CandidateResult {
	ranked := make([]datatypes.CandidateResult, len(candidates))
	copy(ranked, candidates)

	for i := range ranked {
		ranked[i].CombinedScore = CombinedScore(ranked[i])
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].CombinedScore > ranked[j].CombinedScore
	})

	return ranked
}
