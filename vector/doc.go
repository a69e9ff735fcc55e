// Package vector defines the capability interfaces the indexing layer needs
// from a vector search backend, plus the vector math and retry helpers shared
// by backend implementations.
//
// The Backend interface is deliberately narrow: create an index for a
// (type, field) pair, report the embedding batch size, and accept one batch
// of objects for embedding under that pair. Persistence, schema, and API
// surface concerns belong to the implementations.
package vector
