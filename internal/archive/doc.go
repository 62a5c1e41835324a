// Package archive locates and bootstraps archive roots. A root is any
// directory holding a bagit.txt declaration file and a data payload
// directory; metadata sidecars, derivatives, thumbnails, and generated HTML
// live in fixed subdirectories beneath it. The package also provides the
// advisory single-writer lock honoring the toolkit's one-invocation-at-a-
// time model.
package archive
