package source

import (
	"bytes"
	"context"
	"io"

	"github.com/spf13/afero"

	"github.com/arloai/reporting/engine/core"
)

// Input is one declared data source for a report run: a name for
// provenance, a declared kind, and a way to open the payload. Opening is
// deferred so inputs can be collected in parallel.
type Input interface {
	Name() string
	Kind() core.SourceKind
	Open() (io.ReadCloser, error)
}

// FileInput reads a source from a filesystem path.
type FileInput struct {
	Fs       afero.Fs
	Path     string
	FileKind core.SourceKind
}

func (f *FileInput) Name() string {
	return f.Path
}

func (f *FileInput) Kind() core.SourceKind {
	return f.FileKind
}

func (f *FileInput) Open() (io.ReadCloser, error) {
	fs := f.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return fs.Open(f.Path)
}

// BytesInput serves an in-memory payload, mostly for feeds fetched upstream
// and for tests.
type BytesInput struct {
	SourceName string
	SourceKind core.SourceKind
	Data       []byte
}

func (b *BytesInput) Name() string {
	return b.SourceName
}

func (b *BytesInput) Kind() core.SourceKind {
	return b.SourceKind
}

func (b *BytesInput) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b.Data)), nil
}

// Collect opens and reads one input with the reader for its declared kind.
func Collect(ctx context.Context, in Input) (*RawRecordSet, error) {
	reader, err := ForKind(in.Kind())
	if err != nil {
		return nil, err
	}
	rc, err := in.Open()
	if err != nil {
		return nil, newReadError(err, in.Name(), ErrCodeRead, "failed to open source")
	}
	defer rc.Close()
	return reader.Read(ctx, rc, in.Name())
}
