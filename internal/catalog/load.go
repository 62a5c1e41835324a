package catalog

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"odea/internal/archive"
	"odea/internal/diag"
	"odea/internal/identity"
	"odea/internal/tagfile"
)

// LoadFile loads the File for a payload path. The path may be absolute or
// relative to the working directory; it is stored root-relative. Identity
// parts always come from the filename itself; a sidecar, when one exists for
// the identifier and format, contributes everything else. A structurally
// invalid sidecar is reported and returned as an error alongside the
// filename-derived File, so batch callers can keep going.
func LoadFile(root, filename string, rep *diag.Reporter) (*File, error) {
	rel, err := archive.Rel(root, filename)
	if err != nil {
		return nil, err
	}
	f := NewFile(rel)

	id, ok := identity.FindIdentifier(rel)
	if !ok {
		return f, nil
	}
	f.Identifier = id
	c := identity.Decompose(rel, id)
	f.Basename = c.Basename
	f.Format = c.FormatTag
	f.Ext = c.Extension
	if f.Format == "" {
		return f, nil
	}

	sidecar := archive.Join(root, f.SidecarName())
	rec, err := tagfile.DecodeFile(sidecar)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return f, nil
		}
		var parseErr *tagfile.ParseError
		if errors.As(err, &parseErr) {
			rep.Report(diag.Event{Kind: diag.KindStructuralParse, Path: f.SidecarName(), Detail: parseErr.Error(), Err: parseErr})
		}
		return f, err
	}
	f.ApplyRecord(rec, true)
	return f, nil
}

// LoadItem loads the Item for an identifier, or a fresh Item when no tag
// file exists yet.
func LoadItem(root, id string, rep *diag.Reporter) (*Item, error) {
	item := NewItem(id)
	rec, err := tagfile.DecodeFile(archive.Join(root, item.SidecarName()))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return item, nil
		}
		var parseErr *tagfile.ParseError
		if errors.As(err, &parseErr) {
			rep.Report(diag.Event{Kind: diag.KindStructuralParse, Path: item.SidecarName(), Detail: parseErr.Error(), Err: parseErr})
		}
		return item, err
	}
	item.ApplyRecord(rec)
	return item, nil
}

// LoadBag loads bag-info.txt, bootstrapping a default Bag when the file is
// missing.
func LoadBag(root string, rep *diag.Reporter) (*Bag, error) {
	bag := NewBag()
	rec, err := tagfile.DecodeFile(archive.Join(root, archive.BagInfoFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return bag, nil
		}
		var parseErr *tagfile.ParseError
		if errors.As(err, &parseErr) {
			rep.Report(diag.Event{Kind: diag.KindStructuralParse, Path: archive.BagInfoFile, Detail: parseErr.Error(), Err: parseErr})
		}
		return bag, err
	}
	bag.ApplyRecord(rec)
	return bag, nil
}

// WalkLocator finds tagged payload paths by walking the data tree. It is the
// fallback Locator when no scan index is available.
type WalkLocator struct {
	Root string
}

// Paths returns the root-relative payload paths whose names embed the
// identifier, sorted.
func (w WalkLocator) Paths(identifier string) ([]string, error) {
	marker := "." + identifier + "."
	suffix := "." + identifier

	var paths []string
	dataRoot := archive.Join(w.Root, archive.DataDir)
	err := filepath.WalkDir(dataRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if !strings.Contains(name, marker) && !strings.HasSuffix(name, suffix) {
			return nil
		}
		rel, err := archive.Rel(w.Root, p)
		if err != nil {
			return err
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}
