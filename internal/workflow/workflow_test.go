package workflow

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"odea/internal/archive"
	"odea/internal/catalog"
	"odea/internal/config"
	"odea/internal/derive"
	"odea/internal/diag"
	"odea/internal/identity"
	"odea/internal/logging"
	"odea/internal/scanindex"
)

const nilUUID = "00000000-0000-0000-0000-000000000000"

func newWorkflow(t *testing.T, withIndex bool) *Workflow {
	t.Helper()
	root := t.TempDir()
	if err := InitArchive(root, "field", "Field recordings"); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Derive.MinFreeGiB = 0

	var index *scanindex.Store
	if withIndex {
		var err error
		index, err = scanindex.Open(root)
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { _ = index.Close() })
	}
	return New(root, &cfg, logging.NewNop(), diag.NewReporter(nil), index)
}

// fakeMIME pins content sniffing for the test, keeping thumbnail dispatch
// deterministic without real media payloads.
func fakeMIME(t *testing.T, mime string) {
	t.Helper()
	orig := probeMIME
	probeMIME = func(string) (string, bool) { return mime, true }
	t.Cleanup(func() { probeMIME = orig })
}

func writePayload(t *testing.T, root, name, content string) {
	t.Helper()
	abs := archive.Join(root, name)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestInitArchive(t *testing.T) {
	w := newWorkflow(t, false)

	bag, err := catalog.LoadBag(w.root, nil)
	if err != nil {
		t.Fatal(err)
	}
	if bag.Archive != "field" || bag.Title != "Field recordings" {
		t.Fatalf("bag = %q / %q", bag.Archive, bag.Title)
	}

	// Re-initializing never clobbers an existing collection record.
	bag.Title = "Renamed"
	if err := bag.Save(w.root); err != nil {
		t.Fatal(err)
	}
	if err := InitArchive(w.root, "other", "Other"); err != nil {
		t.Fatal(err)
	}
	bag, _ = catalog.LoadBag(w.root, nil)
	if bag.Title != "Renamed" {
		t.Fatalf("title = %q after re-init", bag.Title)
	}
}

func TestUpdateFileTagsAndRenames(t *testing.T) {
	w := newWorkflow(t, false)
	fakeMIME(t, "application/octet-stream")
	writePayload(t, w.root, "data/My Recording.wav", "audio bytes")

	f, err := w.UpdateFile(context.Background(), "data/My Recording.wav")
	if err != nil {
		t.Fatal(err)
	}
	if !identity.Valid(f.Identifier) {
		t.Fatalf("identifier = %q", f.Identifier)
	}
	want := "data/my-recording.SRC." + f.Identifier + ".wav"
	if f.Filename != want {
		t.Fatalf("filename = %q, want %q", f.Filename, want)
	}
	if f.OriginalName != "data/My Recording.wav" {
		t.Fatalf("original name = %q", f.OriginalName)
	}
	if _, err := os.Stat(archive.Join(w.root, want)); err != nil {
		t.Fatalf("renamed file missing: %v", err)
	}
	if _, err := os.Stat(archive.Join(w.root, "data/My Recording.wav")); !os.IsNotExist(err) {
		t.Fatal("old file still present")
	}
	if f.SHA512 == "" || f.Size != int64(len("audio bytes")) || f.Mtime == "" {
		t.Fatalf("probe fields: sha512=%q size=%d mtime=%q", f.SHA512, f.Size, f.Mtime)
	}
	if _, err := os.Stat(archive.Join(w.root, f.SidecarName())); err != nil {
		t.Fatalf("sidecar missing: %v", err)
	}
}

func TestUpdateFileIdempotent(t *testing.T) {
	w := newWorkflow(t, false)
	fakeMIME(t, "application/octet-stream")
	writePayload(t, w.root, "data/rec.wav", "audio")

	f, err := w.UpdateFile(context.Background(), "data/rec.wav")
	if err != nil {
		t.Fatal(err)
	}
	again, err := w.UpdateFile(context.Background(), f.Filename)
	if err != nil {
		t.Fatal(err)
	}
	if again.Filename != f.Filename || again.Identifier != f.Identifier {
		t.Fatalf("second pass changed identity: %q %q", again.Filename, again.Identifier)
	}
	if events := w.reporter.Events(); len(events) != 0 {
		t.Fatalf("unexpected events: %v", events)
	}
}

func TestUpdateFileSkipsSubfiles(t *testing.T) {
	w := newWorkflow(t, false)
	fakeMIME(t, "application/octet-stream")
	inner := "data/set." + nilUUID + "/inner.txt"
	writePayload(t, w.root, inner, "part of a multi-file item")

	if _, err := w.UpdateFile(context.Background(), inner); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(archive.Join(w.root, inner)); err != nil {
		t.Fatalf("subfile was moved: %v", err)
	}
	sidecars, _ := filepath.Glob(archive.Join(w.root, filepath.Join(archive.FileMetadataDir, "*")))
	if len(sidecars) != 0 {
		t.Fatalf("sidecars written for a subfile: %v", sidecars)
	}
}

func TestUpdateSetsItemTitle(t *testing.T) {
	w := newWorkflow(t, false)
	fakeMIME(t, "application/octet-stream")
	writePayload(t, w.root, "data/field_notes.txt", "notes")

	f, err := w.Update(context.Background(), "data/field_notes.txt")
	if err != nil {
		t.Fatal(err)
	}
	item, err := catalog.LoadItem(w.root, f.Identifier, nil)
	if err != nil {
		t.Fatal(err)
	}
	if item.Title != "field notes" {
		t.Fatalf("title = %q", item.Title)
	}

	// An existing title survives further updates.
	item.Title = "Curated title"
	if err := item.Save(w.root); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Update(context.Background(), f.Filename); err != nil {
		t.Fatal(err)
	}
	item, _ = catalog.LoadItem(w.root, f.Identifier, nil)
	if item.Title != "Curated title" {
		t.Fatalf("title = %q after second update", item.Title)
	}
}

func TestDeriveProducesTarget(t *testing.T) {
	w := newWorkflow(t, false)
	fakeMIME(t, "application/octet-stream")
	writePayload(t, w.root, "data/rec.wav", "audio")
	w.rules.Register(derive.Rule{Name: "df-copy", Template: `cp "{source}" "{target}"`})

	f, err := w.UpdateFile(context.Background(), "data/rec.wav")
	if err != nil {
		t.Fatal(err)
	}
	rel, err := w.Derive(context.Background(), f, "df-copy", "wav", "", "")
	if err != nil {
		t.Fatal(err)
	}
	want := "data/deriv/rec.df-copy." + f.Identifier + ".wav"
	if rel != want {
		t.Fatalf("target = %q, want %q", rel, want)
	}
	content, err := os.ReadFile(archive.Join(w.root, rel))
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "audio" {
		t.Fatalf("target content = %q", content)
	}

	// Existing targets are never overwritten.
	if _, err := w.Derive(context.Background(), f, "df-copy", "wav", "", ""); err != nil {
		t.Fatal(err)
	}
}

func TestDeriveUnknownRule(t *testing.T) {
	w := newWorkflow(t, false)
	f := catalog.NewFile("data/rec.wav")
	f.Tag("", nil)
	if _, err := w.Derive(context.Background(), f, "df-nonesuch", "wav", "", ""); err == nil ||
		!strings.Contains(err.Error(), "unknown conversion rule") {
		t.Fatalf("err = %v", err)
	}
}

func TestDeriveAll(t *testing.T) {
	w := newWorkflow(t, false)
	fakeMIME(t, "application/octet-stream")
	writePayload(t, w.root, "data/notes.md", "# notes")
	w.rules.Register(derive.Rule{Name: "df-pandoc-html", Template: `cp "{source}" "{target}"`})

	f, err := w.UpdateFile(context.Background(), "data/notes.md")
	if err != nil {
		t.Fatal(err)
	}
	if err := w.DeriveAll(context.Background(), f.Filename); err != nil {
		t.Fatal(err)
	}

	deriv := "data/deriv/notes.df-pandoc-html." + f.Identifier + ".html"
	if _, err := os.Stat(archive.Join(w.root, deriv)); err != nil {
		t.Fatalf("derivative missing: %v", err)
	}
	df, err := catalog.LoadFile(w.root, deriv, nil)
	if err != nil {
		t.Fatal(err)
	}
	if df.Format != "df-pandoc-html" || df.SHA512 == "" {
		t.Fatalf("derivative not cataloged: format=%q sha512=%q", df.Format, df.SHA512)
	}
}

func TestDeriveAllUntagged(t *testing.T) {
	w := newWorkflow(t, false)
	writePayload(t, w.root, "data/loose.md", "x")
	if err := w.DeriveAll(context.Background(), "data/loose.md"); err == nil {
		t.Fatal("expected error for untagged file")
	}
}

func TestThumbsForImageSource(t *testing.T) {
	w := newWorkflow(t, false)
	fakeMIME(t, "image/png")
	writePayload(t, w.root, "data/pic.png", "not a real png")
	w.rules.Register(derive.Rule{Name: "df-img-thumb", Template: `cp "{source}" "{target}"`})
	w.rules.Register(derive.Rule{Name: "df-img-med", Template: `cp "{source}" "{target}"`})

	f, err := w.UpdateFile(context.Background(), "data/pic.png")
	if err != nil {
		t.Fatal(err)
	}
	wantThumb := "thumbs/pic.df-img-thumb." + f.Identifier + ".png"
	wantPreview := "thumbs/pic.df-img-med." + f.Identifier + ".png"
	if f.Thumb != wantThumb || f.Preview != wantPreview {
		t.Fatalf("thumb = %q, preview = %q", f.Thumb, f.Preview)
	}
	for _, rel := range []string{wantThumb, wantPreview} {
		if _, err := os.Stat(archive.Join(w.root, rel)); err != nil {
			t.Fatalf("%s missing: %v", rel, err)
		}
	}

	// The sidecar remembers the thumbnail paths.
	loaded, err := catalog.LoadFile(w.root, f.Filename, nil)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Thumb != wantThumb {
		t.Fatalf("loaded thumb = %q", loaded.Thumb)
	}
}

func TestThumbsSkipsUnsupportedTypes(t *testing.T) {
	w := newWorkflow(t, false)
	fakeMIME(t, "application/octet-stream")
	writePayload(t, w.root, "data/blob.bin", "opaque")

	f, err := w.UpdateFile(context.Background(), "data/blob.bin")
	if err != nil {
		t.Fatal(err)
	}
	if f.Thumb != "" || f.Preview != "" {
		t.Fatalf("thumb = %q, preview = %q", f.Thumb, f.Preview)
	}
}

func TestUpdateFileRecordsIndex(t *testing.T) {
	w := newWorkflow(t, true)
	fakeMIME(t, "application/octet-stream")
	writePayload(t, w.root, "data/Track One.wav", "audio")

	f, err := w.UpdateFile(context.Background(), "data/Track One.wav")
	if err != nil {
		t.Fatal(err)
	}
	entries, err := w.index.Lookup(context.Background(), f.Identifier)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Path != f.Filename {
		t.Fatalf("entries = %v", entries)
	}

	paths, err := w.Locator().Paths(f.Identifier)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 1 || paths[0] != f.Filename {
		t.Fatalf("locator paths = %v", paths)
	}
}

func TestRebuildIndexDisabled(t *testing.T) {
	w := newWorkflow(t, false)
	if _, err := w.RebuildIndex(context.Background()); err == nil {
		t.Fatal("expected error with index disabled")
	}
}

func TestWriteManifest(t *testing.T) {
	w := newWorkflow(t, false)
	fakeMIME(t, "application/octet-stream")
	writePayload(t, w.root, "data/rec.wav", "audio")

	if _, err := w.UpdateFile(context.Background(), "data/rec.wav"); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteManifest(); err != nil {
		t.Fatal(err)
	}
	manifest, err := os.ReadFile(archive.Join(w.root, catalog.ManifestName("sha512")))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(manifest), "data/rec.SRC.") {
		t.Fatalf("manifest = %q", manifest)
	}
}

func TestPublishRoundTrip(t *testing.T) {
	w := newWorkflow(t, false)
	fakeMIME(t, "application/octet-stream")
	writePayload(t, w.root, "data/rec.wav", "audio")

	f, err := w.Update(context.Background(), "data/rec.wav")
	if err != nil {
		t.Fatal(err)
	}
	rel, err := w.Publish(f.Filename)
	if err != nil {
		t.Fatal(err)
	}
	if rel != "html/"+f.Identifier+".html" {
		t.Fatalf("page = %q", rel)
	}

	indexRel, err := w.PublishIndex()
	if err != nil {
		t.Fatal(err)
	}
	page, err := os.ReadFile(archive.Join(w.root, indexRel))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(page), "rec") {
		t.Fatalf("collection page missing item: %q", page)
	}
	if _, err := os.Stat(archive.Join(w.root, "html/index.html")); err != nil {
		t.Fatalf("index.html missing: %v", err)
	}
}

func TestHalfDuration(t *testing.T) {
	for input, want := range map[string]string{
		"10.5":    "5.25",
		"0":       "0",
		"corrupt": "0",
		"":        "0",
	} {
		if got := halfDuration(input); got != want {
			t.Errorf("halfDuration(%q) = %q, want %q", input, got, want)
		}
	}
}
