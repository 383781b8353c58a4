package normalize

import "strconv"

// namedEntities covers the character entities that actually occur in
// Wikipedia dumps often enough to matter. decodeEntity handles "#"-prefixed
// numeric entities separately and rejects any other name not listed here.
var namedEntities = map[string]string{
	"amp":     "&",
	"lt":      "<",
	"gt":      ">",
	"quot":    "\"",
	"apos":    "'",
	"nbsp":    " ",
	"mdash":   "—",
	"ndash":   "–",
	"hellip":  "…",
	"lsquo":   "‘",
	"rsquo":   "’",
	"ldquo":   "“",
	"rdquo":   "”",
	"middot":  "·",
	"deg":     "°",
	"plusmn":  "±",
	"times":   "×",
	"divide":  "÷",
	"shy":     "­",
	"sect":    "§",
	"para":    "¶",
	"copy":    "©",
	"reg":     "®",
	"trade":   "™",
}

// decodeEntity resolves the body of an `&...;` character reference (without
// the surrounding `&` and `;`) to its literal character. It returns false if
// body isn't a recognized entity.
func decodeEntity(body string) (string, bool) {
	if len(body) == 0 {
		return "", false
	}
	if body[0] == '#' {
		var n int64
		var err error
		if len(body) > 1 && (body[1] == 'x' || body[1] == 'X') {
			n, err = strconv.ParseInt(body[2:], 16, 32)
		} else {
			n, err = strconv.ParseInt(body[1:], 10, 32)
		}
		if err != nil || n <= 0 || n > 0x10FFFF {
			return "", false
		}
		return string(rune(n)), true
	}
	if r, ok := namedEntities[body]; ok {
		return r, true
	}
	return "", false
}
