// Package htmlpub generates the static item and collection pages under the
// archive's html directory. Pages are plain Bootstrap-styled HTML with no
// server-side requirements; publishing an item is just writing a file.
package htmlpub
