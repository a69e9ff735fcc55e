// Package index orchestrates vector indexing of knowledge objects.
//
// The Orchestrator takes a flat list of objects, groups them by
// (type, field) index key, ensures each index exists exactly once, splits
// each group into batches bounded by the backend's batch size, and submits
// all batches concurrently. Every batch runs to completion even when
// siblings fail; failures are aggregated into a single AggregateError.
package index
