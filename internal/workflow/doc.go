// Package workflow ties the catalog, derive, and publishing layers into the
// operations the CLI exposes: ingesting and updating files, generating
// derivatives and thumbnails, publishing pages, and maintaining the scan
// index and manifest.
package workflow
