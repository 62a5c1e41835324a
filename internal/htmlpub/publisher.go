package htmlpub

import (
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"odea/internal/archive"
	"odea/internal/catalog"
	"odea/internal/diag"
	"odea/internal/identity"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var (
	itemTemplate       = mustParse("item.html.tmpl")
	collectionTemplate = mustParse("collection.html.tmpl")
)

func mustParse(body string) *template.Template {
	return template.Must(template.ParseFS(templateFS,
		"templates/layout.html.tmpl", "templates/"+body))
}

type crumb struct {
	Label string
	Href  string
}

type metaRow struct {
	Label  string
	Values []template.HTML
}

type fileRow struct {
	Filename string
	Format   string
	Size     string
	Mtime    string
}

type card struct {
	Identifier  string
	Title       string
	DcmiType    string
	Description string
	Thumb       string
}

type pageData struct {
	Title       string
	Archive     string
	ArchiveURL  string
	Revision    string
	License     string
	Breadcrumbs []crumb
	Preview     template.HTML
	Metadata    []metaRow
	Files       []fileRow
	Cards       []card
}

// Publisher writes item and collection pages into the archive's html
// directory.
type Publisher struct {
	root     string
	locator  catalog.Locator
	reporter *diag.Reporter

	// now supplies the revision date on generated pages.
	now func() time.Time
}

// NewPublisher returns a Publisher for the archive rooted at root.
func NewPublisher(root string, loc catalog.Locator, rep *diag.Reporter) *Publisher {
	return &Publisher{root: root, locator: loc, reporter: rep, now: time.Now}
}

// PublishItem writes the page for one item and returns its root-relative
// path.
func (p *Publisher) PublishItem(item *catalog.Item, bag *catalog.Bag) (string, error) {
	files, err := item.Files(p.root, p.locator, p.reporter)
	if err != nil {
		return "", err
	}

	data := pageData{
		Title:      item.Title,
		Archive:    bag.Archive,
		ArchiveURL: bag.ArchiveURL,
		Revision:   p.now().Format("2006-01-02"),
		License:    bag.Rights,
		Breadcrumbs: []crumb{
			{Label: "Archive", Href: "../"},
			{Label: "Collection", Href: bag.Identifier + ".html"},
			{Label: "Item"},
		},
		Preview:  p.itemPreview(item, files),
		Metadata: itemMetadata(item),
	}
	for _, f := range files {
		data.Files = append(data.Files, fileRow{
			Filename: f.Filename,
			Format:   f.Format,
			Size:     byteSize(f.Size),
			Mtime:    f.Mtime,
		})
	}

	rel := filepath.ToSlash(filepath.Join(archive.HTMLDir, item.Identifier+".html"))
	return rel, p.render(itemTemplate, rel, data)
}

// PublishIndex writes the collection page and hard-links it to index.html.
// Only items that already have a published page appear on the index.
func (p *Publisher) PublishIndex(bag *catalog.Bag) (string, error) {
	items, err := bag.PubItems(p.root, p.reporter)
	if err != nil {
		return "", err
	}

	data := pageData{
		Title:      bag.Title,
		Archive:    bag.Archive,
		ArchiveURL: bag.ArchiveURL,
		Revision:   p.now().Format("2006-01-02"),
		License:    bag.Rights,
		Breadcrumbs: []crumb{
			{Label: "Archive", Href: "../"},
			{Label: "Collection"},
		},
		Preview:  previewImage(bag.Preview),
		Metadata: bagMetadata(bag),
	}
	for _, item := range items {
		data.Cards = append(data.Cards, p.itemCard(item))
	}

	rel := filepath.ToSlash(filepath.Join(archive.HTMLDir, bag.Identifier+".html"))
	if err := p.render(collectionTemplate, rel, data); err != nil {
		return "", err
	}

	indexPath := archive.Join(p.root, filepath.Join(archive.HTMLDir, "index.html"))
	if _, err := os.Lstat(indexPath); err == nil {
		if err := os.Remove(indexPath); err != nil {
			return "", fmt.Errorf("replace index.html: %w", err)
		}
	}
	if err := os.Link(archive.Join(p.root, rel), indexPath); err != nil {
		return "", fmt.Errorf("link index.html: %w", err)
	}
	return rel, nil
}

func (p *Publisher) render(tmpl *template.Template, rel string, data pageData) error {
	out, err := os.Create(archive.Join(p.root, rel))
	if err != nil {
		return fmt.Errorf("create %s: %w", rel, err)
	}
	defer out.Close()
	if err := tmpl.Execute(out, data); err != nil {
		return fmt.Errorf("render %s: %w", rel, err)
	}
	return nil
}

// itemPreview renders the item's preview block: an embedded frame when the
// item carries an embed URL, otherwise the source file's preview image.
func (p *Publisher) itemPreview(item *catalog.Item, files []*catalog.File) template.HTML {
	if item.EmbedURL != "" {
		escaped := template.HTMLEscapeString(item.EmbedURL)
		return template.HTML(`<div class="embed-responsive embed-responsive-16by9"><iframe src="` +
			escaped + `" scrolling="no" class="embed-responsive-item" allowfullscreen></iframe></div>`)
	}
	if src := sourceFile(files); src != nil && src.Preview != "" {
		return previewImage("../" + src.Preview)
	}
	return ""
}

func (p *Publisher) itemCard(item *catalog.Item) card {
	c := card{
		Identifier:  item.Identifier,
		Title:       item.Title,
		DcmiType:    item.DcmiType,
		Description: Truncate(item.Description, truncateLength),
	}
	files, err := item.Files(p.root, p.locator, p.reporter)
	if err == nil {
		if src := sourceFile(files); src != nil {
			c.Thumb = src.Thumb
		}
	}
	return c
}

func sourceFile(files []*catalog.File) *catalog.File {
	for _, f := range files {
		if f.Format == identity.FormatSource {
			return f
		}
	}
	return nil
}

func previewImage(src string) template.HTML {
	if src == "" {
		return ""
	}
	return template.HTML(`<p><img src="` + template.HTMLEscapeString(src) + `" class="img-thumbnail" /></p>`)
}

type metaField struct {
	label  string
	values []string
}

func one(value string) []string {
	return []string{value}
}

// metadataRows renders non-empty fields into table rows, linking URLs and
// styling hashtags in notes. The title is shown as the page heading, not a
// row.
func metadataRows(fields []metaField) []metaRow {
	rows := []metaRow{}
	for _, field := range fields {
		row := metaRow{Label: field.label}
		for _, value := range field.values {
			if value == "" {
				continue
			}
			if field.label == "note" {
				row.Values = append(row.Values, formatNote(value))
			} else {
				row.Values = append(row.Values, urlize(value))
			}
		}
		if len(row.Values) > 0 {
			rows = append(rows, row)
		}
	}
	return rows
}

func itemMetadata(item *catalog.Item) []metaRow {
	return metadataRows([]metaField{
		{"identifier", one(item.Identifier)},
		{"creator", item.Creator},
		{"subject", item.Subject},
		{"contributor", item.Contributor},
		{"coverage", one(item.Coverage)},
		{"date", one(item.Date)},
		{"description", one(item.Description)},
		{"language", one(item.Language)},
		{"publisher", one(item.Publisher)},
		{"relation", one(item.Relation)},
		{"rights", one(item.Rights)},
		{"source", one(item.Source)},
		{"dcmi_type", one(item.DcmiType)},
		{"note", item.Note},
	})
}

func bagMetadata(bag *catalog.Bag) []metaRow {
	return metadataRows([]metaField{
		{"identifier", one(bag.Identifier)},
		{"creator", bag.Creator},
		{"subject", bag.Subject},
		{"contributor", bag.Contributor},
		{"coverage", one(bag.Coverage)},
		{"date", one(bag.Date)},
		{"description", one(bag.Description)},
		{"language", one(bag.Language)},
		{"publisher", one(bag.Publisher)},
		{"relation", one(bag.Relation)},
		{"rights", one(bag.Rights)},
		{"source", one(bag.Source)},
		{"dcmi_type", one(bag.DcmiType)},
		{"note", bag.Note},
	})
}
