// Package catalog models the archive's metadata entities. A File is one
// payload file with identity parts and probe results, an Item groups the
// files sharing an identifier under Dublin Core metadata, and a Bag is the
// collection-level record for the whole archive.
//
// Known fields map to struct fields; anything else a tag file carries lands
// in the entity's Extra record and is written back on save, so editing a
// sidecar by hand never loses fields the toolkit does not understand.
package catalog
