// Package logs reads back the JSON run log written by internal/logging.
//
// Reads are bounded: only the last N matching lines are held in memory, so
// long-lived log files can be inspected without loading them whole.
package logs
