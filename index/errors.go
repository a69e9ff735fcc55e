// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package index

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrBackendRequired indicates an Orchestrator was constructed without a backend.
	ErrBackendRequired = errors.New("vector backend is required")

	// ErrInvalidBatchSize indicates the backend reported a batch size of zero or less.
	ErrInvalidBatchSize = errors.New("backend batch size must be positive")
)

// AggregateError reports the outcome of a batch run in which one or more
// batches failed. All batches run to completion before it is returned.
type AggregateError struct {
	// Tasks is the total number of batches submitted.
	Tasks int

	// Groups lists the index keys that had at least one failed batch.
	Groups []GroupKey

	// Err holds the individual batch failures.
	Err error
}

func (e *AggregateError) Error() string {
	keys := make([]string, len(e.Groups))
	for i, g := range e.Groups {
		keys[i] = g.String()
	}
	return fmt.Sprintf("indexing failed for %s (%d batches submitted): %v",
		strings.Join(keys, ", "), e.Tasks, e.Err)
}

func (e *AggregateError) Unwrap() error {
	return e.Err
}
