// Package nexus implements the embedding pipeline that the CLI bootstrap runs.
//
// Execute reads one document, normalizes it, splits it into token-bounded
// chunks when it exceeds the configured budget, embeds each chunk (consulting
// the on-disk cache first), averages the chunk vectors element-wise, and
// writes a single JSON result document.
//
// Open builds an App with production dependencies from configuration; New
// accepts explicit dependencies so tests can substitute fakes for the
// embeddings endpoint, tokenizer, and cache.
package nexus
