package picker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/samber/lo"

	"github.com/kamal-hamza/grassfier/internal/core/domain"
	"github.com/kamal-hamza/grassfier/pkg/ui"
)

type findFunc func(slice interface{}, itemFunc func(i int) string, opts ...fuzzyfinder.Option) (int, error)

// Entry is one selectable image file
type Entry struct {
	Path    string
	Rel     string
	Size    int64
	ModTime time.Time
}

// FuzzyPicker lets the user choose an image under Root with a fuzzy finder
type FuzzyPicker struct {
	Root string
	find findFunc
}

// NewFuzzyPicker creates a picker rooted at root
func NewFuzzyPicker(root string) *FuzzyPicker {
	if root == "" {
		root = "."
	}
	return &FuzzyPicker{
		Root: root,
		find: fuzzyfinder.Find,
	}
}

// Pick shows the finder and returns the chosen path.
// Closing the finder returns domain.ErrPickCancelled.
func (p *FuzzyPicker) Pick(ctx context.Context) (string, error) {
	entries, err := ListImages(p.Root)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", fmt.Errorf("no images found under %s: %w", p.Root, domain.ErrPickCancelled)
	}

	idx, err := p.find(
		entries,
		func(i int) string {
			return entries[i].Rel
		},
		fuzzyfinder.WithContext(ctx),
		fuzzyfinder.WithPromptString("imagen> "),
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return ""
			}
			e := entries[i]

			var s strings.Builder
			s.WriteString(fmt.Sprintf("File: %s\n", ui.StyleBold.Render(filepath.Base(e.Path))))
			s.WriteString(fmt.Sprintf("Size: %s\n", domain.FormatFileSize(e.Size)))
			s.WriteString(fmt.Sprintf("Type: %s\n", imageMIME(e.Path)))
			s.WriteString(fmt.Sprintf("Date: %s\n", e.ModTime.Format("Jan 02, 2006 15:04")))
			return s.String()
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) || errors.Is(err, context.Canceled) {
			return "", domain.ErrPickCancelled
		}
		return "", fmt.Errorf("failed to run file picker: %w", err)
	}

	return entries[idx].Path, nil
}

// ListImages walks root and returns the image files below it, sorted by path.
// Hidden directories are skipped.
func ListImages(root string) ([]Entry, error) {
	var all []Entry

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		all = append(all, Entry{Path: path, Rel: rel, Size: info.Size(), ModTime: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	images := lo.Filter(all, func(e Entry, _ int) bool {
		return domain.IsImageMIME(imageMIME(e.Path))
	})
	sort.Slice(images, func(i, j int) bool { return images[i].Rel < images[j].Rel })
	return images, nil
}

// ImagePaths returns the image files directly inside dir
func ImagePaths(dir string) ([]string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	names := lo.FilterMap(files, func(f os.DirEntry, _ int) (string, bool) {
		return filepath.Join(dir, f.Name()), !f.IsDir() && domain.IsImageMIME(imageMIME(f.Name()))
	})
	sort.Strings(names)
	return names, nil
}

func imageMIME(path string) string {
	return mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
}
