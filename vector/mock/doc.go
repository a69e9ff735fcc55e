// Package mock provides a test double implementation of vector.Backend.
//
// MockBackend records every CreateIndex and SubmitBatch call thread-safely
// (batches are submitted concurrently in production) and allows custom
// behavior injection via function fields.
package mock
