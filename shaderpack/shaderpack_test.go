package shaderpack_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/koru3d/gpu/shaderpack"
)

var (
	testBlob1 = []byte("idunvovkjnreovmegihjbrqlkmfrjnb")
	testBlob2 = []byte("idunvovkjnreovmsdvwrvnervnreegihjbrqlkmfrjnb")
)

func buildTestPack(t *testing.T) []byte {
	builder := shaderpack.NewBuilder(shaderpack.Header{
		Author:  "koru3d",
		Version: 1,
	})
	if err := builder.Add("triangle.vert", testBlob1); err != nil {
		t.Fatal(err)
	}
	if err := builder.Add("triangle.frag", testBlob2); err != nil {
		t.Fatal(err)
	}

	buf := bytes.NewBuffer([]byte{})
	if written, err := builder.WriteTo(buf); err != nil {
		t.Fatal(err)
	} else {
		t.Logf("written %d", written)
	}
	return buf.Bytes()
}

func TestCreateAndLoad(t *testing.T) {
	pack := buildTestPack(t)

	ar, err := shaderpack.NewArchive(bytes.NewReader(pack))
	if err != nil {
		t.Fatal(err)
	}

	blob, err := ar.Load("triangle.vert")
	if err != nil {
		t.Error(err)
	}
	if !bytes.Equal(blob, testBlob1) {
		t.Error("first blob does not match up")
	}

	blob, err = ar.Load("triangle.frag")
	if err != nil {
		t.Error(err)
	}
	if !bytes.Equal(blob, testBlob2) {
		t.Error("second blob does not match up")
	}
}

func TestHeaderAndLabels(t *testing.T) {
	pack := buildTestPack(t)

	ar, err := shaderpack.NewArchive(bytes.NewReader(pack))
	if err != nil {
		t.Fatal(err)
	}

	header := ar.Header()
	if header.Author != "koru3d" {
		t.Error("author does not match up")
	}
	if header.Version != 1 {
		t.Error("version does not match up")
	}
	if header.DateCreated == 0 {
		t.Error("creation date was not defaulted")
	}

	labels := ar.Labels()
	if len(labels) != 2 {
		t.Fatalf("expected 2 labels, got %d", len(labels))
	}
	if labels[0] != "triangle.frag" || labels[1] != "triangle.vert" {
		t.Error("labels are not sorted")
	}
}

func TestLoadMissingLabel(t *testing.T) {
	pack := buildTestPack(t)

	ar, err := shaderpack.NewArchive(bytes.NewReader(pack))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := ar.Load("nonexistent"); !errors.Is(err, shaderpack.ErrShaderNotFound) {
		t.Errorf("expected ErrShaderNotFound, got %v", err)
	}
}

func TestBadMagic(t *testing.T) {
	pack := buildTestPack(t)
	pack[0] = 'X'

	if _, err := shaderpack.NewArchive(bytes.NewReader(pack)); !errors.Is(err, shaderpack.ErrPackFormat) {
		t.Errorf("expected ErrPackFormat, got %v", err)
	}
}

func TestTruncatedPack(t *testing.T) {
	pack := buildTestPack(t)

	if _, err := shaderpack.NewArchive(bytes.NewReader(pack[:6])); !errors.Is(err, shaderpack.ErrPackFormat) {
		t.Errorf("expected ErrPackFormat, got %v", err)
	}
}

func TestConcurrentLoad(t *testing.T) {
	pack := buildTestPack(t)

	ar, err := shaderpack.NewArchive(bytes.NewReader(pack))
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			blob, err := ar.Load("triangle.vert")
			if err == nil && !bytes.Equal(blob, testBlob1) {
				err = errors.New("blob does not match up")
			}
			done <- err
		}()
	}
	for i := 0; i < 8; i++ {
		if err := <-done; err != nil {
			t.Error(err)
		}
	}
}
