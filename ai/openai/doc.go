// Package openai implements ai.Embedder using OpenAI-compatible APIs.
//
// The embedder works against any endpoint that speaks the OpenAI embeddings
// protocol, including local services like Ollama, LocalAI, and vLLM. A
// token of "none" is sent for services that do not require authentication.
package openai
