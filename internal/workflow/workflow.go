package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"odea/internal/archive"
	"odea/internal/catalog"
	"odea/internal/config"
	"odea/internal/derive"
	"odea/internal/diag"
	"odea/internal/htmlpub"
	"odea/internal/identity"
	"odea/internal/preflight"
	"odea/internal/scanindex"
)

// Workflow executes toolkit operations against one archive root.
type Workflow struct {
	root     string
	cfg      *config.Config
	logger   *slog.Logger
	reporter *diag.Reporter
	rules    *derive.Rules
	runner   *derive.Runner
	index    *scanindex.Store
}

// New returns a Workflow for the archive rooted at root. index may be nil,
// in which case file lookups walk the data tree.
func New(root string, cfg *config.Config, logger *slog.Logger, rep *diag.Reporter, index *scanindex.Store) *Workflow {
	runner := derive.NewRunner(rep)
	runner.Overwrite = cfg.Derive.Overwrite
	return &Workflow{
		root:     root,
		cfg:      cfg,
		logger:   logger,
		reporter: rep,
		rules:    derive.DefaultRules(),
		runner:   runner,
		index:    index,
	}
}

// Locator returns the file locator in use: the scan index when available,
// otherwise a data-tree walk.
func (w *Workflow) Locator() catalog.Locator {
	if w.index != nil {
		return w.index
	}
	return catalog.WalkLocator{Root: w.root}
}

// InitArchive bootstraps an archive in dir: the BagIt declaration, the
// payload directories, and a collection record when none exists yet.
func InitArchive(dir, archiveName, title string) error {
	if err := archive.Init(dir); err != nil {
		return err
	}
	if _, err := os.Stat(archive.Join(dir, archive.BagInfoFile)); err == nil {
		return nil
	}
	bag := catalog.NewBag()
	if archiveName != "" {
		bag.Archive = archiveName
	}
	bag.Title = title
	return bag.Save(dir)
}

// UpdateFile refreshes one payload file: tags it, slugs and renames source
// files, records checksums and stat results, generates thumbnails for
// sources, and saves the sidecar. Files inside an identifier-tagged
// directory belong to that directory's item and are left in place untouched.
func (w *Workflow) UpdateFile(ctx context.Context, filename string) (*catalog.File, error) {
	f, err := catalog.LoadFile(w.root, filename, w.reporter)
	if err != nil {
		return f, err
	}

	if w.insideTaggedDir(f.Filename) {
		w.logger.Debug("skipping subfile of a tagged directory", "path", f.Filename)
		return f, nil
	}

	f.Tag("", w.reporter)

	// The slug propagates into derivative names, so renaming a source later
	// orphans previously generated derivatives and thumbnails.
	if f.Format == identity.FormatSource {
		if slug := f.Slug(); slug != f.Basename {
			f.OriginalName = f.Filename
			f.Basename = slug
		}
	}

	oldName := f.Filename
	f.Rename(w.root, w.reporter)
	if w.index != nil && f.Filename != oldName {
		if err := w.index.Invalidate(ctx, oldName); err != nil {
			return f, err
		}
	}

	if _, err := f.Checksum(w.root, w.cfg.Archive.ChecksumAlgorithm); err != nil {
		return f, err
	}
	f.Stat(w.root)
	w.probeMedia(ctx, f)

	if f.Format == identity.FormatSource {
		if err := w.Thumbs(ctx, f); err != nil {
			return f, err
		}
	}

	if err := f.Save(w.root); err != nil {
		return f, err
	}
	if w.index != nil {
		if err := w.index.Record(ctx, scanindex.Entry{Path: f.Filename, Identifier: f.Identifier, Format: f.Format}); err != nil {
			return f, err
		}
	}
	w.logger.Info("updated file", "path", f.Filename, "identifier", f.Identifier)
	return f, nil
}

// Update refreshes a file and its parent item, giving the item a title from
// the file's basename when it has none.
func (w *Workflow) Update(ctx context.Context, filename string) (*catalog.File, error) {
	f, err := w.UpdateFile(ctx, filename)
	if err != nil || f.Identifier == "" {
		return f, err
	}

	item, err := catalog.LoadItem(w.root, f.Identifier, w.reporter)
	if err != nil {
		return f, err
	}
	if item.Title == "" {
		item.Title = strings.ReplaceAll(path.Base(f.Basename), "_", " ")
	}
	if err := item.Save(w.root); err != nil {
		return f, err
	}
	return f, nil
}

// Derive runs one conversion rule against a file and updates the produced
// derivative's catalog entry. The returned path is root-relative; it is
// empty when the conversion failed.
func (w *Workflow) Derive(ctx context.Context, f *catalog.File, ruleName, ext, frame, targetDir string) (string, error) {
	rule, ok := w.rules.Lookup(ruleName)
	if !ok {
		return "", fmt.Errorf("unknown conversion rule %q", ruleName)
	}
	if f.Basename == "" {
		return "", fmt.Errorf("derive %s: file is not tagged", f.Filename)
	}
	if targetDir == "" {
		targetDir = archive.DerivDir
	}

	targetRel := filepath.ToSlash(derive.TargetPath(targetDir, f.Components(), rule.Name, ext))
	result, err := w.runner.Run(ctx,
		rule,
		archive.Join(w.root, f.Filename),
		archive.Join(w.root, targetRel),
		frame,
	)
	if err != nil {
		return "", err
	}
	if result.Cached {
		w.logger.Debug("derivative already exists", "target", targetRel)
		return targetRel, nil
	}
	w.logger.Info("derived", "rule", rule.Name, "target", targetRel, "outcome", result.Outcome.String())
	return targetRel, nil
}

// DeriveAll generates the default derivative set for a file, based on its
// extension, and refreshes the catalog entry of every derivative produced.
// Individual conversion failures are reported and do not stop the batch.
func (w *Workflow) DeriveAll(ctx context.Context, filename string) error {
	f, err := catalog.LoadFile(w.root, filename, w.reporter)
	if err != nil {
		return err
	}
	if f.Identifier == "" {
		return fmt.Errorf("derive %s: file is not tagged (run update first)", f.Filename)
	}

	targets := derive.DefaultTargets(f.Ext)
	if len(targets) == 0 {
		w.logger.Info("no default derivatives for extension", "ext", f.Ext)
		return nil
	}
	if check := preflight.CheckFreeSpace(w.root, w.cfg.Derive.MinFreeGiB); !check.Passed {
		return fmt.Errorf("derive %s: %s", f.Filename, check.Detail)
	}
	for _, target := range targets {
		rel, err := w.Derive(ctx, f, target.Rule, target.Ext, "", "")
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			continue
		}
		if _, err := w.UpdateFile(ctx, archive.Join(w.root, rel)); err != nil {
			return err
		}
	}
	return nil
}

// Thumbs generates the thumbnail and preview images for a file into the
// thumbs directory. Non-image sources first get an intermediate derivative
// that imaging tools can read: a screenshot for text, a still for video,
// a PDF for office documents.
func (w *Workflow) Thumbs(ctx context.Context, f *catalog.File) error {
	src, err := w.thumbSource(ctx, f)
	if err != nil || src == nil {
		return err
	}

	thumb, err := w.Derive(ctx, src, "df-img-thumb", "png", "", archive.ThumbsDir)
	if err != nil {
		return nil
	}
	preview, err := w.Derive(ctx, src, "df-img-med", "png", "", archive.ThumbsDir)
	if err != nil {
		return nil
	}
	f.Thumb = thumb
	f.Preview = preview
	return nil
}

// thumbSource picks or generates the image file thumbnails are rendered
// from. A nil result with a nil error means the file has no image
// representation.
func (w *Workflow) thumbSource(ctx context.Context, f *catalog.File) (*catalog.File, error) {
	mime, _ := probeMIME(archive.Join(w.root, f.Filename))
	if strings.HasPrefix(mime, "image/") || f.Ext == "pdf" {
		return f, nil
	}

	var rel string
	var err error
	switch {
	case strings.HasPrefix(mime, "text/"):
		rel, err = w.Derive(ctx, f, "df-img-screenshot", "png", "", "")
	case strings.HasPrefix(mime, "video/"):
		frame := ""
		if f.Duration != "" {
			frame = halfDuration(f.Duration)
		}
		rel, err = w.Derive(ctx, f, "df-img-still", "jpg", frame, "")
	case isOfficeExt(f.Ext):
		rel, err = w.Derive(ctx, f, "df-pdf-doc", "pdf", "", "")
	default:
		return nil, nil
	}
	if err != nil || rel == "" {
		// The conversion failure is already reported; the file simply has
		// no thumbnail.
		return nil, nil
	}

	src := catalog.NewFile(rel)
	src.Tag("", w.reporter)
	if _, err := src.Checksum(w.root, w.cfg.Archive.ChecksumAlgorithm); err != nil {
		return nil, err
	}
	src.Stat(w.root)
	if err := src.Save(w.root); err != nil {
		return nil, err
	}
	return src, nil
}

// Publish writes the item page for the item owning a file.
func (w *Workflow) Publish(filename string) (string, error) {
	f, err := catalog.LoadFile(w.root, filename, w.reporter)
	if err != nil {
		return "", err
	}
	if f.Identifier == "" {
		return "", fmt.Errorf("publish %s: file is not tagged", f.Filename)
	}
	item, err := catalog.LoadItem(w.root, f.Identifier, w.reporter)
	if err != nil {
		return "", err
	}
	bag, err := catalog.LoadBag(w.root, w.reporter)
	if err != nil {
		return "", err
	}
	pub := htmlpub.NewPublisher(w.root, w.Locator(), w.reporter)
	return pub.PublishItem(item, bag)
}

// PublishIndex regenerates the collection page and index.html.
func (w *Workflow) PublishIndex() (string, error) {
	bag, err := catalog.LoadBag(w.root, w.reporter)
	if err != nil {
		return "", err
	}
	pub := htmlpub.NewPublisher(w.root, w.Locator(), w.reporter)
	return pub.PublishIndex(bag)
}

// RebuildIndex repopulates the scan index from the data tree.
func (w *Workflow) RebuildIndex(ctx context.Context) (int, error) {
	if w.index == nil {
		return 0, errors.New("scan index is disabled")
	}
	return w.index.Rebuild(ctx)
}

// WriteManifest regenerates the payload manifest with the configured
// checksum algorithm.
func (w *Workflow) WriteManifest() error {
	return catalog.WriteManifest(w.root, w.cfg.Archive.ChecksumAlgorithm, w.reporter)
}

// insideTaggedDir reports whether the path sits inside a directory whose
// name embeds an identifier, marking it as a component of a multi-file item.
func (w *Workflow) insideTaggedDir(rel string) bool {
	dir := path.Dir(rel)
	_, found := identity.FindIdentifier(dir)
	return found
}

func isOfficeExt(ext string) bool {
	switch strings.ToLower(ext) {
	case "doc", "docx", "odt", "odp", "ppt", "pptx", "xls", "xlsx", "ods":
		return true
	}
	return false
}
