// Package mock provides test double implementations of the ai interfaces.
//
// MockEmbedder produces deterministic embeddings derived from a text hash,
// so tests get stable vectors without any external embedding service.
// Behavior can be overridden per-test via function fields.
package mock
