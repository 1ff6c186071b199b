package shaderpack

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/pierrec/lz4"
)

const headerSizeNumberLength = 8

// NewArchive reads the pack structure from r and returns an Archive
// ready for concurrent Load calls.
func NewArchive(r io.ReaderAt) (*Archive, error) {
	var magic [4]byte
	if _, err := r.ReadAt(magic[:], 0); err != nil {
		return nil, fmt.Errorf("read magic: %w", ErrPackFormat)
	}
	if magic != Magic {
		return nil, fmt.Errorf("bad magic %q: %w", magic[:], ErrPackFormat)
	}

	sizeBytes := make([]byte, headerSizeNumberLength)
	if _, err := r.ReadAt(sizeBytes, int64(len(Magic))); err != nil {
		return nil, fmt.Errorf("read header size: %w", ErrPackFormat)
	}
	headerSize, err := binaryToInt64(sizeBytes)
	if err != nil || headerSize <= 0 {
		return nil, fmt.Errorf("decode header size: %w", ErrPackFormat)
	}

	rawHeader := make([]byte, headerSize)
	if _, err := r.ReadAt(rawHeader, int64(len(Magic))+headerSizeNumberLength); err != nil {
		return nil, fmt.Errorf("read header: %w", ErrPackFormat)
	}

	var header Header
	if err := gobDecode(&header, rawHeader); err != nil {
		return nil, fmt.Errorf("decode header: %w", ErrPackFormat)
	}

	index := make(map[string]IndexEntry, len(header.Index))
	for _, entry := range header.Index {
		index[entry.Label] = entry
	}

	return &Archive{
		reader:    r,
		header:    header,
		index:     index,
		dataStart: int64(len(Magic)) + headerSizeNumberLength + headerSize,
	}, nil
}

// Open opens a pack file from disk. Close releases the file handle.
func Open(path string) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	archive, err := NewArchive(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	archive.closer = f
	return archive, nil
}

// Archive is an opened shader pack. All methods are safe for
// concurrent use, reads go through ReadAt and share no state.
type Archive struct {
	reader    io.ReaderAt
	closer    io.Closer
	header    Header
	index     map[string]IndexEntry
	dataStart int64
}

// Header returns the pack header as read from the file.
func (a *Archive) Header() Header {
	return a.header
}

// Labels returns every blob label in the pack, sorted.
func (a *Archive) Labels() []string {
	labels := make([]string, 0, len(a.index))
	for label := range a.index {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Load decompresses and returns the blob stored under label.
func (a *Archive) Load(label string) ([]byte, error) {
	entry, ok := a.index[label]
	if !ok {
		return nil, fmt.Errorf("%q: %w", label, ErrShaderNotFound)
	}

	compressed := make([]byte, entry.CompressedSize)
	if _, err := a.reader.ReadAt(compressed, a.dataStart+entry.Offset); err != nil {
		return nil, fmt.Errorf("read %q: %w", label, ErrPackFormat)
	}

	data := make([]byte, entry.Size)
	if _, err := io.ReadFull(lz4.NewReader(bytes.NewReader(compressed)), data); err != nil {
		return nil, fmt.Errorf("decompress %q: %w", label, ErrPackFormat)
	}
	return data, nil
}

// Close releases the underlying file when the archive owns one.
func (a *Archive) Close() error {
	if a.closer != nil {
		return a.closer.Close()
	}
	return nil
}
