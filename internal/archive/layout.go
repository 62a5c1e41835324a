package archive

import "path/filepath"

const (
	// DataDir is the payload directory; "data" keeps the layout compatible
	// with BagIt-style tooling.
	DataDir = "data"
	// DerivDir receives generated derivative files.
	DerivDir = "data/deriv"
	// ThumbsDir receives thumbnail and preview images.
	ThumbsDir = "thumbs"
	// FileMetadataDir holds per-file sidecar tag files.
	FileMetadataDir = "file_metadata"
	// ItemMetadataDir holds per-item sidecar tag files.
	ItemMetadataDir = "item_metadata"
	// HTMLDir holds generated item and collection pages.
	HTMLDir = "html"
	// StateDir holds toolkit-internal state (scan index, writer lock).
	// Everything inside is advisory and safe to delete.
	StateDir = ".odea"

	// BagItFile marks a directory as an archive root.
	BagItFile = "bagit.txt"
	// BagInfoFile stores the collection-level tag metadata.
	BagInfoFile = "bag-info.txt"
)

// bagItDeclaration is written verbatim when bootstrapping a new root.
const bagItDeclaration = "BagIt-Version: 1.0\nTag-File-Character-Encoding: UTF-8\n"

// payloadDirs are created on bootstrap, in addition to the data tree.
var payloadDirs = []string{DerivDir, FileMetadataDir, ItemMetadataDir, HTMLDir, ThumbsDir}

// Join resolves a root-relative slash path against the archive root.
func Join(root, rel string) string {
	return filepath.Join(root, filepath.FromSlash(rel))
}
