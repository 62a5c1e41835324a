// Package scanindex maintains the identifier to payload path index. The
// index replaces repeated glob walks over the data tree with indexed
// lookups; it lives in the archive's state directory, is purely advisory,
// and can be deleted and rebuilt at any time without losing information.
package scanindex
