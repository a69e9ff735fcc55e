// Package ingestion provides pipeline orchestration for knowledge objects.
//
// The Pipeline type manages the ingestion workflow: validating root
// objects, flattening their object graphs into deduplicated lists,
// persisting the flattened objects, and driving vector indexing through
// the index orchestrator.
//
// The package also includes a JSON document loader that parses object
// graphs from files, including cross-references between documents.
package ingestion
