// Command odea catalogs files in a BagIt-style archive: it tags payload
// files with identifiers, maintains sidecar metadata, generates derivative
// files and thumbnails with external converters, and publishes static HTML
// pages for items and the collection.
package main
