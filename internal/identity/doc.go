// Package identity encodes and decodes the on-disk filename identity used
// throughout the archive: basename[.formatTag][.identifier].extension. The
// identifier is a UUID shared by every file that is a version or derivative
// of the same item; the format tag records the file's role (SRC for the
// ingested original, df-* for distribution copies, pf-* for preservation
// copies). External tools parse archive directories with nothing but this
// grammar, so compose/decompose must round-trip byte for byte.
package identity
