// Package provider supplies (vocabulary, embedding matrix) pairs to the
// analysis pipeline.
//
// The pipeline treats embeddings as an opaque, already-normalized (N, D)
// matrix; everything model-specific lives behind the Provider interface,
// with one implementation per provider family selected by explicit
// configuration:
//   - OpenAIProvider: remote embeddings via the OpenAI API (output type only)
//   - EmbedEverythingProvider: local sentence-embedding models (output only)
//   - StaticProvider: in-memory or file-backed matrices, e.g. embedding
//     tables exported from a model by another tool (input and output)
//
// Remote providers can be wrapped in a circuit breaker (WithBreaker) so a
// failing endpoint trips fast instead of hammering through a whole
// vocabulary batch run.
package provider
