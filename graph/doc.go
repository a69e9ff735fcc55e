// Package graph flattens graphs of self-referencing knowledge objects.
//
// The Flattener type walks an object and every object reachable through its
// fields, directly or inside ordered sequences, and returns each unique
// object exactly once. Traversal is safe against cycles and aliasing: the
// same object reached through several paths is emitted a single time, and
// reference loops terminate.
package graph
