package graph

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	formerrors "github.com/a3tai/mcp-pdf-forms/internal/pdf/errors"
)

// OpenOptions controls how a document session is opened
type OpenOptions struct {
	MaxFileSize int64
	Password    string
	Debug       bool
}

// Document is a pdfcpu-backed document session. It is owned by a single
// workflow from Open to Close and is not safe for concurrent use.
type Document struct {
	path   string
	ctx    *model.Context
	pages  []Page
	debug  bool
	dirty  bool
	closed bool
}

// Open reads the PDF at path into an in-memory object graph
func Open(path string, opts OpenOptions) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, formerrors.Wrap(formerrors.KindIOFailure, "cannot access file", err)
	}
	if info.IsDir() {
		return nil, formerrors.Newf(formerrors.KindIOFailure, "path is a directory, not a file: %s", path)
	}
	if opts.MaxFileSize > 0 && info.Size() > opts.MaxFileSize {
		return nil, formerrors.Newf(formerrors.KindIOFailure,
			"file too large: %d bytes (max: %d bytes)", info.Size(), opts.MaxFileSize)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, formerrors.Wrap(formerrors.KindIOFailure, "failed to open PDF file", err)
	}
	defer file.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if opts.Password != "" {
		conf.UserPW = opts.Password
		conf.OwnerPW = opts.Password
	}

	ctx, err := api.ReadContext(file, conf)
	if err != nil {
		return nil, formerrors.Wrap(formerrors.KindIOFailure, "failed to read PDF context", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, formerrors.Wrap(formerrors.KindIOFailure, "failed to ensure page count", err)
	}

	if opts.Debug {
		log.Printf("opened %s: %d pages, version %s", path, ctx.PageCount, ctx.VersionString())
	}

	return &Document{path: path, ctx: ctx, debug: opts.Debug}, nil
}

// Path returns the path the session was opened from
func (d *Document) Path() string {
	return d.path
}

// PageCount returns the number of pages
func (d *Document) PageCount() int {
	if d.closed {
		return 0
	}
	return d.ctx.PageCount
}

// Version returns the PDF version string
func (d *Document) Version() string {
	if d.closed {
		return ""
	}
	return d.ctx.VersionString()
}

// Encrypted reports whether the source file was encrypted
func (d *Document) Encrypted() bool {
	return !d.closed && d.ctx.Encrypt != nil
}

// Permissions returns the P entry of the encryption dictionary; ok is
// false for unencrypted documents
func (d *Document) Permissions() (p int32, ok bool) {
	if d.closed || d.ctx.E == nil {
		return 0, false
	}
	return int32(d.ctx.E.P), true
}

// Catalog implements Graph
func (d *Document) Catalog() (types.Dict, error) {
	if d.closed {
		return nil, formerrors.New(formerrors.KindIOFailure, "document is closed")
	}
	return d.ctx.Catalog()
}

// Resolve implements Graph
func (d *Document) Resolve(obj types.Object) (types.Object, error) {
	if d.closed {
		return nil, formerrors.New(formerrors.KindIOFailure, "document is closed")
	}
	return d.ctx.Dereference(obj)
}

// Pages implements Graph. The list is built once per session.
func (d *Document) Pages() ([]Page, error) {
	if d.closed {
		return nil, formerrors.New(formerrors.KindIOFailure, "document is closed")
	}
	if d.pages != nil {
		return d.pages, nil
	}
	pages := make([]Page, 0, d.ctx.PageCount)
	for nr := 1; nr <= d.ctx.PageCount; nr++ {
		dict, ref, _, err := d.ctx.PageDict(nr, false)
		if err != nil {
			return nil, fmt.Errorf("failed to load page %d: %w", nr, err)
		}
		pages = append(pages, Page{Number: nr, Ref: ref, Dict: dict})
	}
	d.pages = pages
	return pages, nil
}

// SetNeedAppearances implements Graph
func (d *Document) SetNeedAppearances() error {
	if d.closed {
		return formerrors.New(formerrors.KindIOFailure, "document is closed")
	}
	if err := setNeedAppearances(d); err != nil {
		return err
	}
	d.dirty = true
	return nil
}

// MarkDirty implements Graph
func (d *Document) MarkDirty() {
	d.dirty = true
}

// Dirty implements Graph
func (d *Document) Dirty() bool {
	return d.dirty
}

// SaveAs writes the mutated graph to outPath. The input file is never a
// valid target; the output is written to a temporary sibling and renamed
// into place so a failed write leaves no partial file behind.
func (d *Document) SaveAs(outPath string) error {
	if d.closed {
		return formerrors.New(formerrors.KindIOFailure, "document is closed")
	}
	same, err := samePath(d.path, outPath)
	if err != nil {
		return formerrors.Wrap(formerrors.KindIOFailure, "failed to resolve output path", err)
	}
	if same {
		return formerrors.Newf(formerrors.KindIOFailure, "output path must differ from input: %s", outPath)
	}

	tmp := filepath.Join(filepath.Dir(outPath), fmt.Sprintf(".%s.%s.tmp", filepath.Base(outPath), uuid.NewString()))
	if err := api.WriteContextFile(d.ctx, tmp); err != nil {
		_ = os.Remove(tmp)
		return formerrors.Wrap(formerrors.KindIOFailure, "failed to write PDF", err)
	}
	if err := os.Rename(tmp, outPath); err != nil {
		_ = os.Remove(tmp)
		return formerrors.Wrap(formerrors.KindIOFailure, "failed to move output into place", err)
	}

	if d.debug {
		log.Printf("saved %s", outPath)
	}
	return nil
}

// Close releases the session. Closing twice is a no-op.
func (d *Document) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	d.ctx = nil
	d.pages = nil
	return nil
}

func samePath(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	if filepath.Clean(absA) == filepath.Clean(absB) {
		return true, nil
	}
	infoA, errA := os.Stat(absA)
	infoB, errB := os.Stat(absB)
	if errA == nil && errB == nil {
		return os.SameFile(infoA, infoB), nil
	}
	return false, nil
}
