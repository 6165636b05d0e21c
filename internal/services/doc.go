// Package services defines shared utilities consumed by the session pipeline.
//
// Key responsibilities:
//   - Context helpers that stamp session IDs, subject IDs, and run correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that tag failures with the
//     pipeline step they came from, so the committer can fold any failure into
//     a single durable error record.
//
// Use these helpers when wiring new pipeline logic so operational behaviour
// (error handling, observability) stays uniform across the pipeline.
package services
