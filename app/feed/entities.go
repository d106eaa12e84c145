package feed

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	entityPattern = regexp.MustCompile(`&(amp|lt|gt|quot|#39|#[xX]27|#[xX]2[fF]|#[0-9]+);`)
	cdataPattern  = regexp.MustCompile(`(?s)^<!\[CDATA\[(.*)\]\]>$`)
)

var namedEntities = map[string]string{
	"amp":  "&",
	"lt":   "<",
	"gt":   ">",
	"quot": `"`,
	"#39":  "'",
	"#x27": "'",
	"#x2f": "/",
}

// DecodeEntities replaces the handful of entities feeds commonly carry in
// titles and links. Each reference is decoded exactly once, so "&amp;lt;"
// becomes "&lt;". Anything unrecognized is left as is.
func DecodeEntities(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}

	return entityPattern.ReplaceAllStringFunc(s, func(ref string) string {
		name := ref[1 : len(ref)-1]
		if v, ok := namedEntities[strings.ToLower(name)]; ok {
			return v
		}

		code, err := strconv.Atoi(name[1:])
		if err != nil || code <= 0 || code > 0x10FFFF || (code >= 0xD800 && code <= 0xDFFF) {
			return ref
		}
		return string(rune(code))
	})
}

// StripCDATA removes a CDATA wrapper when it encloses the whole string.
func StripCDATA(s string) string {
	if m := cdataPattern.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}

// CleanText trims, unwraps CDATA and decodes entities.
func CleanText(s string) string {
	return strings.TrimSpace(DecodeEntities(StripCDATA(strings.TrimSpace(s))))
}
