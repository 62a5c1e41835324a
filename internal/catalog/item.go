package catalog

import (
	"fmt"
	"os"
	"path"

	"odea/internal/archive"
	"odea/internal/diag"
	"odea/internal/identity"
	"odea/internal/tagfile"
)

// Item groups the payload files sharing an identifier under Dublin Core
// metadata. Creator, Subject, Contributor, and Note repeat; the remaining
// elements hold a single value.
type Item struct {
	Identifier  string
	Title       string
	Creator     []string
	Subject     []string
	Contributor []string
	Coverage    string
	Date        string
	Description string
	Language    string
	Publisher   string
	Relation    string
	Rights      string
	Source      string
	DcmiType    string

	// EmbedURL is a web-accessible URL rendered as an iframe source on the
	// item's page.
	EmbedURL string
	Note     []string

	Extra *tagfile.Record
}

// NewItem returns an Item, generating an identifier when none is given.
func NewItem(id string) *Item {
	if id == "" {
		id = identity.NewIdentifier()
	}
	return &Item{Identifier: id, Extra: tagfile.NewRecord()}
}

// SidecarName returns the root-relative path of the item's tag file.
func (i *Item) SidecarName() string {
	return path.Join(archive.ItemMetadataDir, i.Identifier+".txt")
}

// Locator resolves an identifier to the payload paths tagged with it.
type Locator interface {
	Paths(identifier string) ([]string, error)
}

// Files loads the File entities tagged with the item's identifier.
func (i *Item) Files(root string, loc Locator, rep *diag.Reporter) ([]*File, error) {
	paths, err := loc.Paths(i.Identifier)
	if err != nil {
		return nil, fmt.Errorf("locate files for %s: %w", i.Identifier, err)
	}
	files := make([]*File, 0, len(paths))
	for _, p := range paths {
		f, err := LoadFile(root, p, rep)
		if err != nil {
			// Already reported; a corrupt sidecar must not hide the
			// item's other files.
			continue
		}
		files = append(files, f)
	}
	return files, nil
}

// Record renders the Item as a tag record.
func (i *Item) Record() *tagfile.Record {
	rec := tagfile.NewRecord()
	rec.Set("identifier", scalarValue(i.Identifier))
	rec.Set("title", scalarValue(i.Title))
	rec.Set("creator", listValues(i.Creator)...)
	rec.Set("subject", listValues(i.Subject)...)
	rec.Set("contributor", listValues(i.Contributor)...)
	rec.Set("coverage", scalarValue(i.Coverage))
	rec.Set("date", scalarValue(i.Date))
	rec.Set("description", scalarValue(i.Description))
	rec.Set("language", scalarValue(i.Language))
	rec.Set("publisher", scalarValue(i.Publisher))
	rec.Set("relation", scalarValue(i.Relation))
	rec.Set("rights", scalarValue(i.Rights))
	rec.Set("source", scalarValue(i.Source))
	rec.Set("dcmi_type", scalarValue(i.DcmiType))
	rec.Set("embed_url", scalarValue(i.EmbedURL))
	rec.Set("note", listValues(i.Note)...)
	for _, name := range i.Extra.Names() {
		values, _ := i.Extra.Get(name)
		rec.Set(name, values...)
	}
	return rec
}

// ApplyRecord overlays decoded tag fields onto the Item.
func (i *Item) ApplyRecord(rec *tagfile.Record) {
	for _, name := range rec.Names() {
		values, _ := rec.Get(name)

		switch name {
		case "creator":
			i.Creator = listTexts(values)
			continue
		case "subject":
			i.Subject = listTexts(values)
			continue
		case "contributor":
			i.Contributor = listTexts(values)
			continue
		case "note":
			i.Note = listTexts(values)
			continue
		}

		var slot *string
		switch name {
		case "identifier":
			slot = &i.Identifier
		case "title":
			slot = &i.Title
		case "coverage":
			slot = &i.Coverage
		case "date":
			slot = &i.Date
		case "description":
			slot = &i.Description
		case "language":
			slot = &i.Language
		case "publisher":
			slot = &i.Publisher
		case "relation":
			slot = &i.Relation
		case "rights":
			slot = &i.Rights
		case "source":
			slot = &i.Source
		case "dcmi_type":
			slot = &i.DcmiType
		case "embed_url":
			slot = &i.EmbedURL
		default:
			i.Extra.Set(name, values...)
			continue
		}

		text, ok := scalarText(values)
		if !ok {
			i.Extra.Set(name, values...)
			continue
		}
		*slot = text
	}
}

// Save writes the item's tag file under item_metadata. Items persist at
// full fidelity: cleared fields are written as explicit absents so they
// survive a reload.
func (i *Item) Save(root string) error {
	if i.Identifier == "" {
		return fmt.Errorf("save item: no identifier")
	}
	data := tagfile.Encode(i.Record(), tagfile.EncodeOptions{})
	sidecar := archive.Join(root, i.SidecarName())
	if err := os.WriteFile(sidecar, data, 0o644); err != nil {
		return fmt.Errorf("save %s: %w", i.SidecarName(), err)
	}
	return nil
}
