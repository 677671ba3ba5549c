// Package ai defines the model-backed services the pipeline depends on:
// text embedding, transcript segmentation, and structured-item
// normalization. The interfaces here are implemented by ai/openai for
// OpenAI-compatible APIs and by ai/mock for tests.
//
// All services are pure request/response collaborators; they hold no
// pipeline state and are safe for concurrent use.
package ai
