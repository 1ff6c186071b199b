package shaderpack

import (
	"bytes"
	"io"
	"sync"
	"time"

	"github.com/pierrec/lz4"
)

// NewBuilder creates a new Builder. Do not fill the Index in
// the header, it will be overwritten anyway.
func NewBuilder(header Header) *Builder {
	if header.DateCreated == 0 {
		header.DateCreated = time.Now().Unix()
	}
	return &Builder{header: header}
}

type pendingBlob struct {

	// Label is the name the blob is loaded by
	Label string

	// Size in uncompressed state
	Size int64

	compressed []byte
}

// Builder is the high level builder for the pack format.
// Packs are versioned and cannot be appended to, this Builder
// is the way to create one. Whenever Add is called the blob is
// compressed immediately, WriteTo bundles everything together.
type Builder struct {
	io.WriterTo

	header Header

	mutex sync.Mutex
	blobs []pendingBlob
}

// Add appends a compiled blob to the builder under a label.
// Will block until lz4 finishes compression. Is safe
// to use concurrently in different goroutines.
func (b *Builder) Add(label string, data []byte) error {
	var compressed bytes.Buffer
	writer := lz4.NewWriter(&compressed)
	if _, err := io.Copy(writer, bytes.NewReader(data)); err != nil {
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.blobs = append(b.blobs, pendingBlob{
		Label:      label,
		Size:       int64(len(data)),
		compressed: compressed.Bytes(),
	})
	return nil
}

// WriteTo bundles and writes all of the blobs added to the Builder
// into a pack that is ready to use.
func (b *Builder) WriteTo(w io.Writer) (int64, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	header := b.header
	header.Index = nil

	var offset int64
	for _, blob := range b.blobs {
		header.Index = append(header.Index, IndexEntry{
			Label:          blob.Label,
			Offset:         offset,
			Size:           blob.Size,
			CompressedSize: int64(len(blob.compressed)),
		})
		offset += int64(len(blob.compressed))
	}

	rawHeader, err := gobEncode(header)
	if err != nil {
		return 0, err
	}

	var written int64
	n, err := w.Write(Magic[:])
	written += int64(n)
	if err != nil {
		return written, err
	}
	n, err = w.Write(int64ToBinary(int64(len(rawHeader))))
	written += int64(n)
	if err != nil {
		return written, err
	}
	n, err = w.Write(rawHeader)
	written += int64(n)
	if err != nil {
		return written, err
	}
	for _, blob := range b.blobs {
		n, err = w.Write(blob.compressed)
		written += int64(n)
		if err != nil {
			return written, err
		}
	}

	b.blobs = b.blobs[:0]
	return written, nil
}
