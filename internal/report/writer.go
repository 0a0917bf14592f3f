package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/naka-gawa/org-contributors/internal/domain"
)

// Writer renders a result to files.
type Writer struct {
	opts   Options
	logger logrus.FieldLogger
}

func NewWriter(opts Options, logger logrus.FieldLogger) *Writer {
	return &Writer{opts: opts, logger: logger}
}

// WriteFiles writes the Markdown report to markdownPath and, when jsonPath is not empty, the
// JSON document to jsonPath. Both files are rendered and written concurrently. It returns the
// paths that were written.
func (w *Writer) WriteFiles(ctx context.Context, result *domain.Result, markdownPath, jsonPath string) ([]string, error) {
	eg, _ := errgroup.WithContext(ctx)

	eg.Go(func() error {
		return w.writeFile(markdownPath, func(out io.Writer) error {
			return RenderMarkdown(out, result, w.opts)
		})
	})

	if jsonPath != "" {
		eg.Go(func() error {
			return w.writeFile(jsonPath, func(out io.Writer) error {
				return RenderJSON(out, result)
			})
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	written := []string{markdownPath}
	if jsonPath != "" {
		written = append(written, jsonPath)
	}
	return written, nil
}

func (w *Writer) writeFile(path string, render func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return fmt.Errorf("failed to render %s: %w", path, err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", path, err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	w.logger.Infof("Wrote %s (%d bytes)", path, buf.Len())
	return nil
}
