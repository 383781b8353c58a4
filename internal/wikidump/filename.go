package wikidump

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gitlab.com/tozd/go/errors"
)

// ErrDateFromFilename is returned when a dump file's name doesn't carry the
// "enwiki-YYYYMMDD-..." date segment the ingestion pipeline relies on as
// every document's access date.
var ErrDateFromFilename = errors.Base("could not read date from dump file name")

// DateFromFilename extracts the dump's generation date from its standard
// "enwiki-YYYYMMDD-pages-articles-multistream1.xml-p1p41242" naming scheme:
// the second '-'-separated segment, an 8-digit YYYYMMDD string.
func DateFromFilename(path string) (time.Time, errors.E) {
	name := filepath.Base(path)
	parts := strings.Split(name, "-")
	if len(parts) < 2 || len(parts[1]) != 8 {
		return time.Time{}, errors.WithStack(ErrDateFromFilename)
	}

	segment := parts[1]
	year, err := strconv.Atoi(segment[0:4])
	if err != nil {
		return time.Time{}, errors.WrapWith(err, ErrDateFromFilename)
	}
	month, err := strconv.Atoi(segment[4:6])
	if err != nil {
		return time.Time{}, errors.WrapWith(err, ErrDateFromFilename)
	}
	day, err := strconv.Atoi(segment[6:8])
	if err != nil {
		return time.Time{}, errors.WrapWith(err, ErrDateFromFilename)
	}

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}
