// Package shaderpack is an api for an lz4 backed shader archive.
// Its purpose is to hold compiled SPIR-V blobs addressable by label.
// The archive itself is not compressed in any form, rather every blob
// is individually compressed, so it can be read from its place and
// decompressed on the fly. It can be read from concurrently.
package shaderpack

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
)

// package errors
var (
	ErrPackFormat     = errors.New("corrupted or not a shader pack")
	ErrShaderNotFound = errors.New("shader label not present in pack")
)

// Magic identifies a shader pack file.
var Magic = [4]byte{'G', 'S', 'P', '\x00'}

// IndexEntry is info for one blob in the pack index. Offset is
// relative to the start of the data section.
type IndexEntry struct {
	Label          string
	Offset         int64
	Size           int64
	CompressedSize int64
}

// Header is the pack header, gob encoded after the magic.
type Header struct {
	Author      string
	DateCreated int64
	Version     int64
	Index       []IndexEntry
}

func int64ToBinary(num int64) []byte {
	buf := bytes.NewBuffer([]byte{})
	if err := binary.Write(buf, binary.LittleEndian, &num); err != nil {
		panic(err) // If this thing fails you're probably having bigger problems
	}
	return buf.Bytes()
}

func binaryToInt64(bts []byte) (int64, error) {
	var num int64
	if err := binary.Read(bytes.NewReader(bts), binary.LittleEndian, &num); err != nil {
		return 0, err
	}
	return num, nil
}

func gobEncode(data interface{}) ([]byte, error) {
	var encoded bytes.Buffer
	enc := gob.NewEncoder(&encoded)
	if err := enc.Encode(data); err != nil {
		return nil, err
	}
	return encoded.Bytes(), nil
}

func gobDecode(obj interface{}, bts []byte) error {
	return gob.NewDecoder(bytes.NewBuffer(bts)).Decode(obj)
}
