// Package batch converts local files concurrently and writes the results
// to an output directory.
package batch

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tom832/MinerU/internal/domain"
)

// Processor converts one document.
type Processor interface {
	Process(ctx context.Context, req domain.ProcessingRequest) domain.ProcessingResult
}

// Options controls a batch run.
type Options struct {
	OutDir       string
	ImageDir     string // name of the per-document image directory
	ReturnImages bool
	Concurrency  int
}

// Item is the outcome for one input file.
type Item struct {
	Source   string
	Markdown string // path of the written Markdown file
	Images   int
	Duration time.Duration
	Err      error
}

// Run processes files with at most opts.Concurrency in flight. Each document
// is written to <OutDir>/<name>/<name>.md, with its images in
// <OutDir>/<name>/<ImageDir>/ so the Markdown links resolve. onDone, if set,
// is called once per file as it finishes. Items are returned in input order;
// a failed file never stops the others.
func Run(ctx context.Context, proc Processor, files []string, opts Options, onDone func(Item)) []Item {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.ImageDir == "" {
		opts.ImageDir = "images"
	}

	names := OutputNames(files)
	items := make([]Item, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			item := convert(ctx, proc, file, names[i], opts)
			items[i] = item
			if onDone != nil {
				onDone(item)
			}
			return nil
		})
	}
	_ = g.Wait()

	return items
}

func convert(ctx context.Context, proc Processor, file, name string, opts Options) Item {
	start := time.Now()
	item := Item{Source: file}

	kind, err := domain.KindFromFilename(file)
	if err != nil {
		item.Err = err
		item.Duration = time.Since(start)
		return item
	}

	res := proc.Process(ctx, domain.ProcessingRequest{
		Kind:         kind,
		Path:         file,
		Filename:     filepath.Base(file),
		ReturnImages: opts.ReturnImages,
	})
	if !res.Success {
		item.Err = errors.New(res.Message)
		item.Duration = time.Since(start)
		return item
	}

	mdPath, n, err := Write(filepath.Join(opts.OutDir, name), name, opts.ImageDir, res)
	item.Markdown, item.Images, item.Err = mdPath, n, err
	item.Duration = time.Since(start)
	return item
}

// Write stores res under dir as <name>.md plus decoded images in
// dir/imageDir. It returns the Markdown path and the number of images
// written.
func Write(dir, name, imageDir string, res domain.ProcessingResult) (string, int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("create output directory: %w", err)
	}

	mdPath := filepath.Join(dir, name+".md")
	if err := os.WriteFile(mdPath, []byte(res.MarkdownContent), 0o644); err != nil {
		return "", 0, fmt.Errorf("write markdown: %w", err)
	}

	if len(res.Images) == 0 {
		return mdPath, 0, nil
	}

	imgDir := filepath.Join(dir, imageDir)
	if err := os.MkdirAll(imgDir, 0o755); err != nil {
		return "", 0, fmt.Errorf("create image directory: %w", err)
	}
	for _, img := range res.Images {
		data, err := base64.StdEncoding.DecodeString(img.Content)
		if err != nil {
			return "", 0, fmt.Errorf("decode image %s: %w", img.Filename, err)
		}
		if err := os.WriteFile(filepath.Join(imgDir, filepath.Base(img.Filename)), data, 0o644); err != nil {
			return "", 0, fmt.Errorf("write image %s: %w", img.Filename, err)
		}
	}
	return mdPath, len(res.Images), nil
}

// OutputNames derives a unique output name per input from its base name
// without extension. Repeats get a numeric suffix: report, report_2, ...
func OutputNames(files []string) []string {
	used := make(map[string]bool, len(files))
	names := make([]string, len(files))
	for i, f := range files {
		base := filepath.Base(f)
		stem := strings.TrimSuffix(base, filepath.Ext(base))
		if stem == "" {
			stem = "document"
		}
		name := stem
		for n := 2; used[name]; n++ {
			name = fmt.Sprintf("%s_%d", stem, n)
		}
		used[name] = true
		names[i] = name
	}
	return names
}
