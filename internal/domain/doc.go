// Package domain defines the core business types for the discount generator.
//
// Types in this package are pure value objects with no behavior beyond
// validation, no I/O and no HTTP concerns. They are the shared language between
// the ingestion, segmentation, offer and presentation packages.
//
// Rules for this package:
//   - No imports from other internal/ packages
//   - No *sql.DB, no http.Request, no context.Context in struct fields
//   - JSON tags are allowed (they're metadata, not behavior)
//   - Validation methods are allowed (they're pure functions on the type)
//   - Constants and enums belong here
package domain
