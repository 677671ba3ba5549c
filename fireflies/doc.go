// Package fireflies provides a client for the Fireflies.ai GraphQL API and
// a formatter that renders fetched transcripts to the markdown form the
// ingest pipeline parses. Requests retry transient failures with
// exponential backoff; authentication and GraphQL errors are permanent.
package fireflies
