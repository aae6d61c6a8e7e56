package raglabdal

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/gofs"
	"github.com/jamesrr39/raglab/raglab"
)

const (
	DocsFileSuffix = ".jsonl"

	// maxDocLineBytes bounds one JSONL line; document texts are a few KB,
	// so 16MB leaves generous headroom.
	maxDocLineBytes = 16 * 1024 * 1024
)

type DocsReader interface {
	Scan() bool
	Document() (*raglab.Document, errorsx.Error)
	Raw() []byte
	Err() errorsx.Error
	Reset() errorsx.Error
	LineNumber() int64
	FullyScannedBytes() int64
	TotalSize() int64
}

// DefaultDocsReader streams documents from a JSONL file, one JSON object per
// line. It tracks how many bytes have been consumed so long imports can
// report progress.
type DefaultDocsReader struct {
	file         gofs.File
	scanner      *bufio.Scanner
	totalSize    int64
	scannedBytes int64
	lineNumber   int64
	err          errorsx.Error
}

func NewDefaultDocsReader(file gofs.File) (*DefaultDocsReader, errorsx.Error) {
	fileInfo, err := file.Stat()
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	return &DefaultDocsReader{
		file:      file,
		scanner:   newDocsScanner(file),
		totalSize: fileInfo.Size(),
	}, nil
}

func newDocsScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxDocLineBytes)
	return scanner
}

func (r *DefaultDocsReader) Scan() bool {
	for {
		cont := r.scanner.Scan()
		if !cont {
			err := r.scanner.Err()
			if err != nil {
				r.err = errorsx.Wrap(err, "line", r.lineNumber)
			}
			return false
		}

		r.lineNumber++
		r.scannedBytes += int64(len(r.scanner.Bytes())) + 1 // +1 for the newline

		// skip blank lines rather than failing the whole file on them
		if len(r.scanner.Bytes()) == 0 {
			continue
		}

		return true
	}
}

func (r *DefaultDocsReader) Document() (*raglab.Document, errorsx.Error) {
	doc := new(raglab.Document)
	err := json.Unmarshal(r.scanner.Bytes(), doc)
	if err != nil {
		return nil, errorsx.Wrap(err, "line", r.lineNumber)
	}

	return doc, nil
}

func (r *DefaultDocsReader) Raw() []byte {
	return r.scanner.Bytes()
}

func (r *DefaultDocsReader) Err() errorsx.Error {
	return r.err
}

func (r *DefaultDocsReader) Reset() errorsx.Error {
	_, err := r.file.Seek(0, io.SeekStart)
	if err != nil {
		return errorsx.Wrap(err)
	}

	r.scanner = newDocsScanner(r.file)
	r.scannedBytes = 0
	r.lineNumber = 0
	r.err = nil

	return nil
}

func (r *DefaultDocsReader) LineNumber() int64 {
	return r.lineNumber
}

func (r *DefaultDocsReader) FullyScannedBytes() int64 {
	return r.scannedBytes
}

func (r *DefaultDocsReader) TotalSize() int64 {
	return r.totalSize
}
