// Package services defines shared utilities consumed by the pipeline stages
// and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and chunk indexes for
//     logging.
//   - Structured error markers plus the Wrap helper so failures carry a
//     consistent classification and an operator hint into the logs.
//
// The bootstrap never inspects these markers; they exist for the people
// reading the logs.
package services
