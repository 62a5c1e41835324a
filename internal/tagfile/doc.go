// Package tagfile implements the folded-text sidecar format used for
// archive metadata. Files follow the RFC-2822-style tag grammar: one
// "name: value" entry per logical line, long lines soft-wrapped at 70
// columns with four-space continuations, CRLF terminated. Repeated
// names accumulate into ordered sequences, and the literal tokens
// "None" and "null" mark a value as explicitly absent.
package tagfile
