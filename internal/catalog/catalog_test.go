package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"odea/internal/archive"
	"odea/internal/diag"
	"odea/internal/identity"
)

const (
	nilUUID   = "00000000-0000-0000-0000-000000000000"
	otherUUID = "b3050922-520f-426e-9a9c-cfe728bd178d"
)

func newRoot(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := archive.Init(dir); err != nil {
		t.Fatal(err)
	}
	return dir
}

func writePayload(t *testing.T, root, rel, content string) {
	t.Helper()
	abs := archive.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFileTagDefaultsSourceFormat(t *testing.T) {
	f := NewFile("data/report.txt")
	f.Tag(nilUUID, nil)

	if f.Identifier != nilUUID {
		t.Fatalf("identifier = %q", f.Identifier)
	}
	if f.Basename != "data/report" || f.Format != identity.FormatSource || f.Ext != "txt" {
		t.Fatalf("parts = %q %q %q", f.Basename, f.Format, f.Ext)
	}
	if f.Filename != "data/report.txt" {
		t.Fatalf("tagging must not change the filename, got %q", f.Filename)
	}
}

func TestFileTagKeepsEmbeddedFormat(t *testing.T) {
	f := NewFile("data/a.b." + nilUUID + ".c.d.txt")
	f.Tag("", nil)

	if f.Basename != "data/a" || f.Format != "b" || f.Ext != "c.d.txt" {
		t.Fatalf("parts = %q %q %q", f.Basename, f.Format, f.Ext)
	}
	if f.Identifier != nilUUID {
		t.Fatalf("identifier = %q", f.Identifier)
	}
}

func TestFileTagEmbeddedIdentifierWins(t *testing.T) {
	rep := diag.NewReporter(nil)
	f := NewFile("data/report.SRC." + nilUUID + ".txt")
	f.Tag(otherUUID, rep)

	if f.Identifier != nilUUID {
		t.Fatalf("identifier = %q, want embedded %q", f.Identifier, nilUUID)
	}
	if events := rep.ByKind(diag.KindIdentityAmbiguity); len(events) != 1 {
		t.Fatalf("ambiguity events = %v", events)
	}
}

func TestFileTagGeneratesIdentifier(t *testing.T) {
	f := NewFile("data/report.txt")
	f.Tag("", nil)
	if !identity.Valid(f.Identifier) {
		t.Fatalf("identifier = %q", f.Identifier)
	}
}

func TestFileRenameConflict(t *testing.T) {
	root := newRoot(t)
	writePayload(t, root, "data/report.txt", "body")
	writePayload(t, root, "data/report.SRC."+nilUUID+".txt", "occupied")

	rep := diag.NewReporter(nil)
	f := NewFile("data/report.txt")
	f.Tag(nilUUID, rep)
	got := f.Rename(root, rep)

	if got != "data/report.txt" || f.Filename != "data/report.txt" {
		t.Fatalf("filename = %q", f.Filename)
	}
	if events := rep.ByKind(diag.KindRenameConflict); len(events) != 1 {
		t.Fatalf("conflict events = %v", events)
	}
	if data, err := os.ReadFile(archive.Join(root, "data/report.SRC."+nilUUID+".txt")); err != nil || string(data) != "occupied" {
		t.Fatalf("existing target disturbed: %q %v", data, err)
	}
}

func TestFileSaveLoadRoundTrip(t *testing.T) {
	root := newRoot(t)
	name := "data/report.SRC." + nilUUID + ".txt"
	writePayload(t, root, name, "hello world\n")

	rep := diag.NewReporter(nil)
	f := NewFile(name)
	f.Tag("", rep)
	f.Stat(root)
	if _, err := f.Checksum(root, "sha256"); err != nil {
		t.Fatal(err)
	}
	f.Thumb = "thumbs/report.png"
	if err := f.Save(root); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadFile(root, archive.Join(root, name), rep)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Filename != name || loaded.Identifier != nilUUID {
		t.Fatalf("loaded = %+v", loaded)
	}
	if loaded.Size != 12 || loaded.Mtime == "" {
		t.Fatalf("size/mtime = %d %q", loaded.Size, loaded.Mtime)
	}
	if loaded.SHA256 != "a948904f2f0f479b8f8197694b30184b0d2ed1c1cd2a1ec0fb85d299a192a447" {
		t.Fatalf("sha256 = %q", loaded.SHA256)
	}
	if loaded.Thumb != "thumbs/report.png" {
		t.Fatalf("thumb = %q", loaded.Thumb)
	}
	if len(rep.Events()) != 0 {
		t.Fatalf("unexpected events: %v", rep.Events())
	}
}

func TestLoadFileFilenameWinsOverSidecar(t *testing.T) {
	root := newRoot(t)
	name := "data/report.SRC." + nilUUID + ".txt"
	writePayload(t, root, name, "body")

	// A stale sidecar claiming different identity parts.
	sidecar := filepath.Join(archive.FileMetadataDir, nilUUID+".SRC.txt")
	writePayload(t, root, sidecar,
		"filename: data/old-name.txt\r\nbasename: data/old-name\r\nformat: old\r\next: pdf\r\nsha512: cafe\r\n")

	f, err := LoadFile(root, archive.Join(root, name), nil)
	if err != nil {
		t.Fatal(err)
	}
	if f.Filename != name || f.Basename != "data/report" || f.Format != "SRC" || f.Ext != "txt" {
		t.Fatalf("filename-derived parts overridden: %+v", f)
	}
	if f.SHA512 != "cafe" {
		t.Fatalf("sidecar fields not applied: %+v", f)
	}
}

func TestLoadFileUntagged(t *testing.T) {
	root := newRoot(t)
	writePayload(t, root, "data/plain.txt", "body")

	f, err := LoadFile(root, archive.Join(root, "data/plain.txt"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if f.Identifier != "" || f.Format != "" {
		t.Fatalf("untagged file gained identity: %+v", f)
	}
}

func TestLoadFileCorruptSidecar(t *testing.T) {
	root := newRoot(t)
	name := "data/report.SRC." + nilUUID + ".txt"
	writePayload(t, root, name, "body")
	writePayload(t, root, filepath.Join(archive.FileMetadataDir, nilUUID+".SRC.txt"),
		"title: fine\r\nthis line is broken\r\n")

	rep := diag.NewReporter(nil)
	f, err := LoadFile(root, archive.Join(root, name), rep)
	if err == nil {
		t.Fatal("expected a parse error")
	}
	if f == nil || f.Identifier != nilUUID {
		t.Fatalf("filename-derived file missing: %+v", f)
	}
	if events := rep.ByKind(diag.KindStructuralParse); len(events) != 1 {
		t.Fatalf("parse events = %v", events)
	}
}

func TestItemSaveLoadRoundTrip(t *testing.T) {
	root := newRoot(t)

	item := NewItem(nilUUID)
	item.Title = "Field recordings"
	item.Creator = []string{"First Author", "Second Author"}
	item.Subject = []string{"sound"}
	item.Note = []string{"digitized 2024 #audio"}
	item.Extra.Set("local_id", scalarValue("FR-17"))
	if err := item.Save(root); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadItem(root, nilUUID, nil)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Title != item.Title {
		t.Fatalf("title = %q", loaded.Title)
	}
	if len(loaded.Creator) != 2 || loaded.Creator[0] != "First Author" || loaded.Creator[1] != "Second Author" {
		t.Fatalf("creator = %v", loaded.Creator)
	}
	if len(loaded.Note) != 1 || loaded.Note[0] != item.Note[0] {
		t.Fatalf("note = %v", loaded.Note)
	}
	if text, ok := loaded.Extra.First("local_id"); !ok || text != "FR-17" {
		t.Fatalf("extra field lost: %v", loaded.Extra.Names())
	}
	// Cleared fields persist as explicit absents.
	if loaded.Description != "" || loaded.Date != "" {
		t.Fatalf("cleared fields = %q %q", loaded.Description, loaded.Date)
	}
}

func TestLoadItemMissingBootstraps(t *testing.T) {
	root := newRoot(t)
	item, err := LoadItem(root, otherUUID, nil)
	if err != nil {
		t.Fatal(err)
	}
	if item.Identifier != otherUUID {
		t.Fatalf("identifier = %q", item.Identifier)
	}
}

func TestItemFilesViaWalkLocator(t *testing.T) {
	root := newRoot(t)
	writePayload(t, root, "data/rec.SRC."+nilUUID+".wav", "a")
	writePayload(t, root, "data/deriv/rec.df-mp3."+nilUUID+".mp3", "b")
	writePayload(t, root, "data/other.SRC."+otherUUID+".wav", "c")
	writePayload(t, root, "data/untagged.txt", "d")

	item := NewItem(nilUUID)
	files, err := item.Files(root, WalkLocator{Root: root}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Fatalf("files = %d", len(files))
	}
	if files[0].Filename != "data/deriv/rec.df-mp3."+nilUUID+".mp3" {
		t.Fatalf("files[0] = %q", files[0].Filename)
	}
	if files[1].Format != "SRC" {
		t.Fatalf("files[1] = %+v", files[1])
	}
}

func TestLoadBagBootstrapsDefaults(t *testing.T) {
	root := newRoot(t)
	bag, err := LoadBag(root, nil)
	if err != nil {
		t.Fatal(err)
	}
	if bag.Archive != DefaultArchiveName || bag.DcmiType != "Collection" {
		t.Fatalf("defaults = %q %q", bag.Archive, bag.DcmiType)
	}
	if !identity.Valid(bag.Identifier) {
		t.Fatalf("identifier = %q", bag.Identifier)
	}
}

func TestBagSaveLoadRoundTrip(t *testing.T) {
	root := newRoot(t)
	bag := NewBag()
	bag.Title = "Test collection"
	bag.ArchiveURL = "https://archive.example.net"
	bag.Subject = []string{"spam", "eggs"}
	if err := bag.Save(root); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadBag(root, nil)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Title != bag.Title || loaded.ArchiveURL != bag.ArchiveURL || loaded.Identifier != bag.Identifier {
		t.Fatalf("loaded = %+v", loaded)
	}
	if len(loaded.Subject) != 2 || loaded.Subject[1] != "eggs" {
		t.Fatalf("subject = %v", loaded.Subject)
	}
}

func TestBagItemsAndPubItems(t *testing.T) {
	root := newRoot(t)
	for _, id := range []string{nilUUID, otherUUID} {
		item := NewItem(id)
		item.Title = "item " + id[:8]
		if err := item.Save(root); err != nil {
			t.Fatal(err)
		}
	}
	writePayload(t, root, filepath.Join(archive.HTMLDir, otherUUID+".html"), "<html></html>")

	bag := NewBag()
	items, err := bag.Items(root, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("items = %d", len(items))
	}

	pub, err := bag.PubItems(root, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(pub) != 1 || pub[0].Identifier != otherUUID {
		t.Fatalf("pub = %v", pub)
	}
}

func TestBagItemsSkipsCorruptSidecar(t *testing.T) {
	root := newRoot(t)
	item := NewItem(nilUUID)
	if err := item.Save(root); err != nil {
		t.Fatal(err)
	}
	writePayload(t, root, filepath.Join(archive.ItemMetadataDir, otherUUID+".txt"), "broken line without separator\r\n")

	rep := diag.NewReporter(nil)
	bag := NewBag()
	items, err := bag.Items(root, rep)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Identifier != nilUUID {
		t.Fatalf("items = %v", items)
	}
	if events := rep.ByKind(diag.KindStructuralParse); len(events) != 1 {
		t.Fatalf("parse events = %v", events)
	}
}

func TestWriteManifest(t *testing.T) {
	root := newRoot(t)
	writePayload(t, root, "data/a.txt", "hello world\n")
	writePayload(t, root, "data/b.txt", "hello world\n")

	if err := WriteManifest(root, "sha256", nil); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(archive.Join(root, ManifestName("sha256")))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(string(data), "\r\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %q", lines)
	}
	want := "a948904f2f0f479b8f8197694b30184b0d2ed1c1cd2a1ec0fb85d299a192a447"
	if lines[0] != want+" data/a.txt" || lines[1] != want+" data/b.txt" {
		t.Fatalf("manifest = %q", lines)
	}
}

func TestWriteManifestTrustsSidecarDigest(t *testing.T) {
	root := newRoot(t)
	name := "data/report.SRC." + nilUUID + ".txt"
	writePayload(t, root, name, "body")
	writePayload(t, root, filepath.Join(archive.FileMetadataDir, nilUUID+".SRC.txt"),
		"sha512: feedface\r\n")

	if err := WriteManifest(root, "sha512", nil); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(archive.Join(root, ManifestName("sha512")))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "feedface "+name {
		t.Fatalf("manifest = %q", data)
	}
}
