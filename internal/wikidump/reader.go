package wikidump

import (
	"encoding/xml"
	"io"

	"gitlab.com/tozd/go/errors"
)

// ErrReadingDump wraps any XML decode failure encountered while scanning a
// dump file; ErrUnexpectedEOF is never returned as a pipeline failure,
// since readers stop cleanly once the decoder reports io.EOF.
var ErrReadingDump = errors.Base("error reading wikipedia dump")

// Reader streams eligible Pages out of a MediaWiki export XML stream,
// skipping the <siteinfo> header and every page that fails Page.Eligible.
type Reader struct {
	decoder *xml.Decoder
}

// NewReader wraps an XML dump stream (typically bzip2-decompressed) for
// page-at-a-time reading.
func NewReader(r io.Reader) *Reader {
	return &Reader{decoder: xml.NewDecoder(r)}
}

// Next returns the next eligible page, or ok=false once the stream is
// exhausted. Ineligible pages are skipped transparently.
func (r *Reader) Next() (page *Page, ok bool, errE errors.E) {
	for {
		tok, err := r.decoder.Token()
		if err == io.EOF {
			return nil, false, nil
		}
		if err != nil {
			return nil, false, errors.WrapWith(err, ErrReadingDump)
		}

		start, isStart := tok.(xml.StartElement)
		if !isStart || start.Name.Local != "page" {
			continue
		}

		var p Page
		if err := r.decoder.DecodeElement(&p, &start); err != nil {
			return nil, false, errors.WrapWith(err, ErrReadingDump)
		}
		if p.Eligible() {
			return &p, true, nil
		}
	}
}
