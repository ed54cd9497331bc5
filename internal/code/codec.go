package code

import (
	"encoding/base64"
	"strings"
	"unicode/utf8"
)

// Encode converts text to the base64 transport form Judge0 expects when
// base64_encoded=true is set on a request.
func Encode(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

// Decode reverses Encode. It never fails: input that is not valid base64 is
// returned unchanged, and invalid UTF-8 in program output is replaced with
// U+FFFD so arbitrary bytes are still displayable.
func Decode(s string) string {
	// Judge0 wraps encoded fields at 60 columns.
	clean := strings.NewReplacer("\n", "", "\r", "").Replace(s)
	dec, err := base64.StdEncoding.DecodeString(clean)
	if err != nil {
		return s
	}
	if !utf8.Valid(dec) {
		return strings.ToValidUTF8(string(dec), "�")
	}
	return string(dec)
}

// decodeField decodes an optional field. ok is false when the field was absent
// or decodes to an empty string.
func decodeField(p *string) (string, bool) {
	if p == nil || *p == "" {
		return "", false
	}
	out := Decode(*p)
	return out, out != ""
}
