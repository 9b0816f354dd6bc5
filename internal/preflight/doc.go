// Package preflight provides readiness checks for the embeddings endpoint
// and the filesystem paths nexus depends on.
//
// "nexus config validate" runs RunAll and prints the results as a table.
// The application constructor uses CheckAPIKey to refuse to start without
// credentials instead of failing on the first request.
package preflight
