package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"odea/internal/archive"
	"odea/internal/diag"
	"odea/internal/identity"
	"odea/internal/tagfile"
)

// DefaultArchiveName is assigned to new collections until configured.
const DefaultArchiveName = "odeum"

// dcmiTypeCollection is the only valid DCMI type for a Bag.
const dcmiTypeCollection = "Collection"

// Bag is the collection-level record for the whole archive, persisted as
// bag-info.txt in the root.
type Bag struct {
	// Archive names the institution or archive owning the collection;
	// ArchiveURL is its web address.
	Archive    string
	ArchiveURL string

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

	// Preview is a root-relative path to an image representing the
	// collection.
	Preview string
	Note    []string

	Extra *tagfile.Record
}

// NewBag returns a Bag with a fresh identifier and collection defaults.
func NewBag() *Bag {
	return &Bag{
		Archive:    DefaultArchiveName,
		Identifier: identity.NewIdentifier(),
		DcmiType:   dcmiTypeCollection,
		Extra:      tagfile.NewRecord(),
	}
}

// Record renders the Bag as a tag record.
func (b *Bag) Record() *tagfile.Record {
	rec := tagfile.NewRecord()
	rec.Set("archive", scalarValue(b.Archive))
	rec.Set("archive_url", scalarValue(b.ArchiveURL))
	rec.Set("identifier", scalarValue(b.Identifier))
	rec.Set("title", scalarValue(b.Title))
	rec.Set("creator", listValues(b.Creator)...)
	rec.Set("subject", listValues(b.Subject)...)
	rec.Set("contributor", listValues(b.Contributor)...)
	rec.Set("coverage", scalarValue(b.Coverage))
	rec.Set("date", scalarValue(b.Date))
	rec.Set("description", scalarValue(b.Description))
	rec.Set("language", scalarValue(b.Language))
	rec.Set("publisher", scalarValue(b.Publisher))
	rec.Set("relation", scalarValue(b.Relation))
	rec.Set("rights", scalarValue(b.Rights))
	rec.Set("source", scalarValue(b.Source))
	rec.Set("dcmi_type", scalarValue(b.DcmiType))
	rec.Set("preview", scalarValue(b.Preview))
	rec.Set("note", listValues(b.Note)...)
	for _, name := range b.Extra.Names() {
		values, _ := b.Extra.Get(name)
		rec.Set(name, values...)
	}
	return rec
}

// ApplyRecord overlays decoded tag fields onto the Bag.
func (b *Bag) ApplyRecord(rec *tagfile.Record) {
	for _, name := range rec.Names() {
		values, _ := rec.Get(name)

		switch name {
		case "creator":
			b.Creator = listTexts(values)
			continue
		case "subject":
			b.Subject = listTexts(values)
			continue
		case "contributor":
			b.Contributor = listTexts(values)
			continue
		case "note":
			b.Note = listTexts(values)
			continue
		}

		var slot *string
		switch name {
		case "archive":
			slot = &b.Archive
		case "archive_url":
			slot = &b.ArchiveURL
		case "identifier":
			slot = &b.Identifier
		case "title":
			slot = &b.Title
		case "coverage":
			slot = &b.Coverage
		case "date":
			slot = &b.Date
		case "description":
			slot = &b.Description
		case "language":
			slot = &b.Language
		case "publisher":
			slot = &b.Publisher
		case "relation":
			slot = &b.Relation
		case "rights":
			slot = &b.Rights
		case "source":
			slot = &b.Source
		case "dcmi_type":
			slot = &b.DcmiType
		case "preview":
			slot = &b.Preview
		default:
			b.Extra.Set(name, values...)
			continue
		}

		text, ok := scalarText(values)
		if !ok {
			b.Extra.Set(name, values...)
			continue
		}
		*slot = text
	}
}

// Save writes bag-info.txt at full fidelity.
func (b *Bag) Save(root string) error {
	data := tagfile.Encode(b.Record(), tagfile.EncodeOptions{})
	if err := os.WriteFile(archive.Join(root, archive.BagInfoFile), data, 0o644); err != nil {
		return fmt.Errorf("save %s: %w", archive.BagInfoFile, err)
	}
	return nil
}

// Items loads every item recorded under item_metadata, sorted by
// identifier. A corrupt item tag file is reported and skipped.
func (b *Bag) Items(root string, rep *diag.Reporter) ([]*Item, error) {
	pattern := archive.Join(root, archive.ItemMetadataDir) + string(filepath.Separator) + "*.txt"
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", archive.ItemMetadataDir, err)
	}
	sort.Strings(matches)

	var items []*Item
	for _, match := range matches {
		id, ok := identity.FindIdentifier(filepath.Base(match))
		if !ok {
			continue
		}
		item, err := LoadItem(root, id, rep)
		if err != nil {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// PubItems returns the items that already have a generated page under
// html/, which is how the collection index avoids linking unpublished
// items.
func (b *Bag) PubItems(root string, rep *diag.Reporter) ([]*Item, error) {
	pattern := archive.Join(root, archive.HTMLDir) + string(filepath.Separator) + "*.html"
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", archive.HTMLDir, err)
	}

	published := make(map[string]bool, len(matches))
	for _, match := range matches {
		stem := strings.TrimSuffix(filepath.Base(match), ".html")
		published[stem] = true
	}

	items, err := b.Items(root, rep)
	if err != nil {
		return nil, err
	}
	var pub []*Item
	for _, item := range items {
		if published[item.Identifier] {
			pub = append(pub, item)
		}
	}
	return pub, nil
}
