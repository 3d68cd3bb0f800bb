package pdf

import (
	"fmt"
	"io"

	"github.com/gen2brain/go-fitz"

	"github.com/taxdeedflow/extraction-engine/internal/extraction"
)

// Document is a page source backed by a PDF file on disk.
type Document struct {
	doc  *fitz.Document
	page int
}

var _ extraction.PageSource = (*Document)(nil)

// Open validates and opens a PDF file.
func Open(path string) (*Document, error) {
	if err := ValidatePath(path); err != nil {
		return nil, err
	}

	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	if doc.NumPage() == 0 {
		doc.Close()
		return nil, fmt.Errorf("pdf has no pages: %s", path)
	}

	return &Document{doc: doc}, nil
}

// PageCount returns the number of pages in the document.
func (d *Document) PageCount() int {
	return d.doc.NumPage()
}

// Next returns the next page, or io.EOF after the last one. Pages whose
// text layer cannot be read yield an empty page rather than aborting the
// whole document.
func (d *Document) Next() (*extraction.Page, error) {
	if d.page >= d.doc.NumPage() {
		return nil, io.EOF
	}

	text, err := d.doc.Text(d.page)
	d.page++
	if err != nil {
		return &extraction.Page{}, nil
	}

	return &extraction.Page{
		Text:   text,
		Tables: extractTables(text),
	}, nil
}

// Close releases the underlying document.
func (d *Document) Close() error {
	return d.doc.Close()
}
