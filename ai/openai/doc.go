// Package openai implements the ai service interfaces against
// OpenAI-compatible APIs via langchaingo. It works with hosted OpenAI as
// well as local servers (Ollama, LocalAI, vLLM) speaking the same protocol.
//
// Chat-based services run in JSON mode with a strict response schema in the
// system prompt; responses are fence-stripped, lightly repaired, and parsed
// with a bounded retry loop.
package openai
