// Package core defines the shared domain types for leapcheck: model
// identity, schema declarations, constraint payloads, target configuration,
// and run-history records.
//
// It has no dependencies on other leapcheck packages so that internal/ and
// pkg/ packages can share types without import cycles.
package core
