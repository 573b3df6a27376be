// Package csvout appends report pages to a CSV file one page at a time.
package csvout

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/leefowlercu/analytics-exporter/internal/report"
)

// ErrPageWrite marks a page that could not be appended. The file is
// truncated back to its size before the page, so it never holds part of
// a page.
var ErrPageWrite = errors.New("page write failed")

// appendFile is the subset of *os.File used by the writer.
type appendFile interface {
	io.Writer
	Stat() (os.FileInfo, error)
	Truncate(size int64) error
	Sync() error
	Close() error
}

func openAppend(path string) (appendFile, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}

// Writer holds the header state of one job's output file. The file is
// opened and closed for every page.
type Writer struct {
	path          string
	fallback      []string
	headerWritten bool
	open          func(path string) (appendFile, error)
}

// New returns a writer appending to path. fallbackHeader is written when
// the first page carries no column headers.
func New(path string, fallbackHeader []string) *Writer {
	return &Writer{
		path:     path,
		fallback: append([]string(nil), fallbackHeader...),
		open:     openAppend,
	}
}

// Path returns the output file path.
func (w *Writer) Path() string { return w.path }

// HeaderWritten reports whether the header line has been emitted.
func (w *Writer) HeaderWritten() bool { return w.headerWritten }

// WritePage appends the page's rows, preceded by the header on the first
// page, and closes the file. It returns the number of data rows written.
func (w *Writer) WritePage(page *report.Page) (int, error) {
	buf, err := w.encode(page)
	if err != nil {
		return 0, fmt.Errorf("%w; failed to encode page; %w", ErrPageWrite, err)
	}

	f, err := w.open(w.path)
	if err != nil {
		return 0, fmt.Errorf("%w; failed to open %s; %w", ErrPageWrite, w.path, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return 0, fmt.Errorf("%w; failed to stat %s; %w", ErrPageWrite, w.path, err)
	}
	before := info.Size()

	if _, err := f.Write(buf.Bytes()); err != nil {
		return 0, w.rollback(f, before, err)
	}
	if err := f.Sync(); err != nil {
		return 0, w.rollback(f, before, err)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("%w; failed to close %s; %w", ErrPageWrite, w.path, err)
	}

	w.headerWritten = true
	return len(page.Rows), nil
}

func (w *Writer) encode(page *report.Page) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	if !w.headerWritten {
		header := w.fallback
		if page.HasHeader() {
			header = page.Header()
		}
		if err := cw.Write(header); err != nil {
			return nil, err
		}
	}
	for _, row := range page.Rows {
		if err := cw.Write(row.Record()); err != nil {
			return nil, err
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, err
	}
	return &buf, nil
}

func (w *Writer) rollback(f appendFile, size int64, cause error) error {
	terr := f.Truncate(size)
	_ = f.Close()
	if terr != nil {
		return fmt.Errorf("%w; %s may hold a partial page; %w", ErrPageWrite, w.path, errors.Join(cause, terr))
	}
	return fmt.Errorf("%w; %w", ErrPageWrite, cause)
}
