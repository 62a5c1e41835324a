// Package derive names and generates derivative files. A derivation rule
// pairs a shell command template with a role prefix: df-* rules produce
// distribution copies, pf-* rules produce preservation copies. The package
// owns the deterministic target naming, the no-overwrite idempotency policy
// that shields expensive converters from redundant runs, and the
// success / soft-success / failure outcome model for external invocations.
package derive
