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
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/indexit/core"
	"github.com/poiesic/indexit/vector"
)

// GroupKey identifies one vector index: a type name and the field
// indexed under it.
type GroupKey struct {
	TypeName  string
	FieldName string
}

func (k GroupKey) String() string {
	return k.TypeName + "." + k.FieldName
}

// Orchestrator drives vector indexing against a backend.
type Orchestrator struct {
	backend vector.Backend
	logger  *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger used for progress reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// NewOrchestrator creates an orchestrator for the given backend.
func NewOrchestrator(backend vector.Backend, opts ...Option) (*Orchestrator, error) {
	if backend == nil {
		return nil, ErrBackendRequired
	}
	o := &Orchestrator{
		backend: backend,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// batchTask is one pending SubmitBatch call.
type batchTask struct {
	key     GroupKey
	objects []*core.KnowledgeObject
}

// IndexAll indexes every object that carries a value for one of its index
// fields. Objects are grouped by (type, field); each index is created once,
// then the group is split into batches no larger than the backend's batch
// size and all batches are submitted concurrently. Objects whose index
// field is absent or null are skipped.
//
// Index creation failures abort before any batch is submitted. Batch
// failures do not: every batch runs to completion and failures are
// returned together as an *AggregateError.
func (o *Orchestrator) IndexAll(ctx context.Context, objects []*core.KnowledgeObject) error {
	batchSize := o.backend.BatchSize()
	if batchSize <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidBatchSize, batchSize)
	}

	groups, keys := o.groupByIndexField(objects)
	if len(keys) == 0 {
		o.logger.Debug("no indexable objects")
		return nil
	}

	for _, key := range keys {
		if err := o.backend.CreateIndex(ctx, key.TypeName, key.FieldName); err != nil {
			return fmt.Errorf("creating index %s: %w", key, err)
		}
	}

	var tasks []batchTask
	for _, key := range keys {
		group := groups[key]
		for start := 0; start < len(group); start += batchSize {
			end := start + batchSize
			if end > len(group) {
				end = len(group)
			}
			tasks = append(tasks, batchTask{key: key, objects: group[start:end]})
		}
	}

	o.logger.Info("submitting index batches",
		"indexes", len(keys), "batches", len(tasks), "batchSize", batchSize)

	pool, err := ants.NewPool(len(tasks))
	if err != nil {
		return fmt.Errorf("creating worker pool: %w", err)
	}
	defer pool.Release()

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		errs   *multierror.Error
		failed = make(map[GroupKey]struct{})
	)

	for _, task := range tasks {
		task := task
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if err := o.backend.SubmitBatch(ctx, task.key.TypeName, task.key.FieldName, task.objects); err != nil {
				mu.Lock()
				errs = multierror.Append(errs,
					fmt.Errorf("batch of %d for %s: %w", len(task.objects), task.key, err))
				failed[task.key] = struct{}{}
				mu.Unlock()
			}
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			errs = multierror.Append(errs,
				fmt.Errorf("submitting batch for %s: %w", task.key, submitErr))
			failed[task.key] = struct{}{}
			mu.Unlock()
		}
	}

	wg.Wait()

	if errs == nil {
		return nil
	}

	failedKeys := make([]GroupKey, 0, len(failed))
	for key := range failed {
		failedKeys = append(failedKeys, key)
	}
	sort.Slice(failedKeys, func(i, j int) bool {
		return failedKeys[i].String() < failedKeys[j].String()
	})

	return &AggregateError{
		Tasks:  len(tasks),
		Groups: failedKeys,
		Err:    errs.ErrorOrNil(),
	}
}

// groupByIndexField buckets objects by (type, index field). An object with
// several index fields lands in one bucket per field, narrowed to that
// field. Keys are returned in first-seen order so batch submission stays
// deterministic.
func (o *Orchestrator) groupByIndexField(objects []*core.KnowledgeObject) (map[GroupKey][]*core.KnowledgeObject, []GroupKey) {
	groups := make(map[GroupKey][]*core.KnowledgeObject)
	var keys []GroupKey

	for _, obj := range objects {
		if obj == nil {
			continue
		}
		for _, fieldName := range obj.IndexFields {
			if _, ok := obj.IndexValue(fieldName); !ok {
				o.logger.Debug("skipping object with empty index field",
					"id", obj.Id, "type", obj.TypeName, "field", fieldName)
				continue
			}
			key := GroupKey{TypeName: obj.TypeName, FieldName: fieldName}
			if _, seen := groups[key]; !seen {
				keys = append(keys, key)
			}
			groups[key] = append(groups[key], obj.WithIndexField(fieldName))
		}
	}

	return groups, keys
}
