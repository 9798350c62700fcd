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

import "errors"

var (
	// ErrNoBackends means the dispatcher was invoked with an empty
	// backend roster. Configuration problem, not a runtime one.
	ErrNoBackends = errors.New("no generation backends configured")

	// ErrNoCandidates means every backend failed to produce an
	// artifact. The caller must surface this; fabricating a result
	// here is forbidden.
	ErrNoCandidates = errors.New("no candidates available: all backends failed")

	// ErrEmptyQuery means the generation request carried no query.
	ErrEmptyQuery = errors.New("query must not be empty")
)
