package document

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"
	"gitlab.com/tozd/go/errors"
)

// CompressedDocument is a Document whose text has been gzip-compressed for
// storage; all other metadata is carried uncompressed alongside it.
type CompressedDocument struct {
	ID               int64
	ArticleID        int64
	ArticleTitle     string
	HeadingPath      []string
	CompressedText   []byte
	AccessDate       int64 // epoch ms
	ModificationDate int64 // epoch ms
	Provenance       Provenance
}

// Compress gzip-compresses s at level 9, the level the document store schema
// (§6) requires for its BLOB column.
func Compress(s string) ([]byte, errors.E) {
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	_, err = w.Write([]byte(s))
	if err != nil {
		_ = w.Close()
		return nil, errors.WithStack(err)
	}
	err = w.Close()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return buf.Bytes(), nil
}

// Decompress reverses Compress. It is pure: decompressing the output of
// Compress always yields back the original string.
func Decompress(b []byte) (string, errors.E) {
	r, err := gzip.NewReader(bytes.NewReader(b))
	if err != nil {
		return "", errors.WithStack(err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return "", errors.WithStack(err)
	}
	return string(data), nil
}
