package catalog

import (
	"fmt"
	"os"
	"path"
	"strconv"

	"odea/internal/archive"
	"odea/internal/diag"
	"odea/internal/identity"
	"odea/internal/probe"
	"odea/internal/tagfile"
)

// sizeUnknown marks a File whose size has not been probed.
const sizeUnknown int64 = -1

// File is one payload file. Filename is the root-relative slash path;
// Basename, Format, Ext, and Identifier are the decomposed filename parts
// and stay empty until Tag or a loader populates them.
type File struct {
	Filename   string
	Basename   string
	Format     string
	Ext        string
	Identifier string

	SHA256 string
	SHA512 string
	Size   int64
	Mtime  string

	// Dimensions and Duration describe image and audiovisual content.
	// Duration is kept as the probe reported it, in seconds.
	Dimensions string
	Duration   string

	// Thumb and Preview point at generated thumbnail images.
	Thumb   string
	Preview string

	// OriginalName preserves the pre-slug filename across a rename.
	OriginalName string

	// Extra holds tag fields with no struct slot.
	Extra *tagfile.Record
}

// NewFile returns a File for a root-relative path with nothing probed yet.
func NewFile(filename string) *File {
	return &File{Filename: filename, Size: sizeUnknown, Extra: tagfile.NewRecord()}
}

// Components returns the identity parts in composable form.
func (f *File) Components() identity.Components {
	return identity.Components{
		Basename:   f.Basename,
		FormatTag:  f.Format,
		Identifier: f.Identifier,
		Extension:  f.Ext,
	}
}

// Tag assigns an identifier and populates the filename parts. An identifier
// already embedded in the filename always wins; a conflicting explicit id is
// reported as an ambiguity and ignored. A file with no format tag defaults
// to the source format. Tagging never touches the disk.
func (f *File) Tag(id string, rep *diag.Reporter) string {
	embedded, found := identity.FindIdentifier(f.Filename)
	switch {
	case found && id != "" && id != embedded:
		rep.Report(diag.Event{
			Kind:   diag.KindIdentityAmbiguity,
			Path:   f.Filename,
			Detail: fmt.Sprintf("requested identifier %s conflicts with embedded %s", id, embedded),
		})
		f.Identifier = embedded
	case found:
		f.Identifier = embedded
	case id != "":
		f.Identifier = id
	case f.Identifier == "":
		f.Identifier = identity.NewIdentifier()
	}

	c := identity.Decompose(f.Filename, f.Identifier)
	f.Basename = c.Basename
	f.Format = c.FormatTag
	f.Ext = c.Extension
	if f.Format == "" {
		f.Format = identity.FormatSource
	}
	return f.Filename
}

// Slug returns the shortened, sanitized form of the basename.
func (f *File) Slug() string {
	return identity.Slugify(f.Basename)
}

// Rename moves the file on disk to the name composed from its identity
// parts. A failed rename leaves Filename at the on-disk truth and records a
// conflict event; the divergence between disk and the computed parts is the
// caller's signal to resolve.
func (f *File) Rename(root string, rep *diag.Reporter) string {
	newName, err := identity.Rename(root, f.Filename, f.Components())
	if err != nil {
		rep.Report(diag.Event{Kind: diag.KindRenameConflict, Path: f.Filename, Detail: err.Error(), Err: err})
		return f.Filename
	}
	f.Filename = newName
	return f.Filename
}

// Stat refreshes size and mtime from disk. Missing files leave both absent.
func (f *File) Stat(root string) {
	abs := archive.Join(root, f.Filename)
	if size, ok := probe.Size(abs); ok {
		f.Size = size
	} else {
		f.Size = sizeUnknown
	}
	if mtime, ok := probe.MtimeISO(abs); ok {
		f.Mtime = mtime
	} else {
		f.Mtime = ""
	}
}

// Checksum digests the file and stores the result in the matching field.
// The digest is returned for callers that need it immediately.
func (f *File) Checksum(root, alg string) (string, error) {
	digest, ok, err := probe.Checksum(archive.Join(root, f.Filename), alg)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}
	switch alg {
	case "sha256":
		f.SHA256 = digest
	case "sha512":
		f.SHA512 = digest
	}
	return digest, nil
}

// SidecarName returns the root-relative path of the file's metadata sidecar.
func (f *File) SidecarName() string {
	return path.Join(archive.FileMetadataDir, f.Identifier+"."+f.Format+".txt")
}

// Record renders the File as a tag record.
func (f *File) Record() *tagfile.Record {
	rec := tagfile.NewRecord()
	rec.Set("filename", scalarValue(f.Filename))
	rec.Set("basename", scalarValue(f.Basename))
	rec.Set("format", scalarValue(f.Format))
	rec.Set("ext", scalarValue(f.Ext))
	rec.Set("identifier", scalarValue(f.Identifier))
	rec.Set("sha256", scalarValue(f.SHA256))
	rec.Set("sha512", scalarValue(f.SHA512))
	size := ""
	if f.Size != sizeUnknown {
		size = strconv.FormatInt(f.Size, 10)
	}
	rec.Set("size", scalarValue(size))
	rec.Set("mtime", scalarValue(f.Mtime))
	rec.Set("dimensions", scalarValue(f.Dimensions))
	rec.Set("duration", scalarValue(f.Duration))
	rec.Set("thumb", scalarValue(f.Thumb))
	rec.Set("preview", scalarValue(f.Preview))
	rec.Set("original_name", scalarValue(f.OriginalName))
	for _, name := range f.Extra.Names() {
		values, _ := f.Extra.Get(name)
		rec.Set(name, values...)
	}
	return rec
}

// ApplyRecord overlays decoded tag fields onto the File. With skipIdentity
// set, the fields derived from the on-disk filename are left alone, since a
// stale sidecar must not override what the path says. A repeated scalar
// field or an unparsable size goes wholly to Extra.
func (f *File) ApplyRecord(rec *tagfile.Record, skipIdentity bool) {
	for _, name := range rec.Names() {
		values, _ := rec.Get(name)
		if skipIdentity {
			switch name {
			case "filename", "basename", "format", "ext":
				continue
			}
		}

		var slot *string
		switch name {
		case "filename":
			slot = &f.Filename
		case "basename":
			slot = &f.Basename
		case "format":
			slot = &f.Format
		case "ext":
			slot = &f.Ext
		case "identifier":
			slot = &f.Identifier
		case "sha256":
			slot = &f.SHA256
		case "sha512":
			slot = &f.SHA512
		case "mtime":
			slot = &f.Mtime
		case "dimensions":
			slot = &f.Dimensions
		case "duration":
			slot = &f.Duration
		case "thumb":
			slot = &f.Thumb
		case "preview":
			slot = &f.Preview
		case "original_name":
			slot = &f.OriginalName
		case "size":
			text, ok := scalarText(values)
			if !ok {
				f.Extra.Set(name, values...)
				continue
			}
			if text == "" {
				f.Size = sizeUnknown
				continue
			}
			size, err := strconv.ParseInt(text, 10, 64)
			if err != nil {
				f.Extra.Set(name, values...)
				continue
			}
			f.Size = size
			continue
		default:
			f.Extra.Set(name, values...)
			continue
		}

		text, ok := scalarText(values)
		if !ok {
			f.Extra.Set(name, values...)
			continue
		}
		*slot = text
	}
}

// Save writes the File's sidecar under file_metadata. Sidecars are cache
// records rebuilt from disk at will, so empty fields are stripped rather
// than persisted as explicit absents.
func (f *File) Save(root string) error {
	if f.Identifier == "" || f.Format == "" {
		return fmt.Errorf("save %s: file is not tagged", f.Filename)
	}
	data := tagfile.Encode(f.Record(), tagfile.EncodeOptions{StripEmpties: true})
	sidecar := archive.Join(root, f.SidecarName())
	if err := os.WriteFile(sidecar, data, 0o644); err != nil {
		return fmt.Errorf("save %s: %w", f.SidecarName(), err)
	}
	return nil
}
