// Package embedding provides a client for OpenAI-compatible embeddings APIs.
//
// The nexus pipeline uses it to turn each text chunk into a vector. Requests
// are POSTed as {"model","input"} to <base_url>/embeddings with bearer
// authentication; results are returned in input order regardless of how the
// server orders its data array.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors and network timeouts with
// exponential backoff (base 1s, max 20s, max_retries attempts). A Retry-After
// header overrides the computed delay, still capped at the maximum. Context
// cancellation aborts retries immediately. HealthCheck makes a single attempt.
package embedding
