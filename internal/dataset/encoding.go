package dataset

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Encoding decodes a whole input into UTF-8 text. A decode either succeeds
// for every byte or fails; nothing is silently replaced.
type Encoding struct {
	Name   string
	decode func([]byte) (string, error)
}

// Decode converts data to a UTF-8 string
func (e Encoding) Decode(data []byte) (string, error) {
	return e.decode(data)
}

var errInvalidUTF8 = errors.New("invalid UTF-8 byte sequence")

// UTF8 accepts only valid UTF-8, with or without a BOM
var UTF8 = Encoding{
	Name: "utf-8",
	decode: func(data []byte) (string, error) {
		data = bytes.TrimPrefix(data, utf8BOM)
		if !utf8.Valid(data) {
			return "", errInvalidUTF8
		}
		return string(data), nil
	},
}

// Latin1 decodes ISO-8859-1
var Latin1 = Encoding{Name: "latin-1", decode: charmapDecoder(charmap.ISO8859_1)}

// CP1252 decodes Windows-1252
var CP1252 = Encoding{Name: "cp1252", decode: charmapDecoder(charmap.Windows1252)}

func charmapDecoder(cm *charmap.Charmap) func([]byte) (string, error) {
	return func(data []byte) (string, error) {
		out, err := cm.NewDecoder().Bytes(data)
		if err != nil {
			return "", err
		}
		// Single-byte charsets cannot encode U+FFFD, so any occurrence is a
		// byte the charset does not define.
		if bytes.ContainsRune(out, utf8.RuneError) {
			return "", fmt.Errorf("byte not defined in %s", cm.String())
		}
		return string(out), nil
	}
}

var encodingNames = map[string]Encoding{
	"utf-8":        UTF8,
	"utf8":         UTF8,
	"latin-1":      Latin1,
	"latin1":       Latin1,
	"iso-8859-1":   Latin1,
	"cp1252":       CP1252,
	"windows-1252": CP1252,
}

// LookupEncoding resolves an encoding by name
func LookupEncoding(name string) (Encoding, error) {
	enc, ok := encodingNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Encoding{}, fmt.Errorf("unknown encoding %q", name)
	}
	return enc, nil
}

// Encodings resolves an ordered list of encoding names
func Encodings(names []string) ([]Encoding, error) {
	out := make([]Encoding, 0, len(names))
	for _, n := range names {
		enc, err := LookupEncoding(n)
		if err != nil {
			return nil, err
		}
		out = append(out, enc)
	}
	return out, nil
}

// DefaultEncodings is the fallback order used for raw input
var DefaultEncodings = []Encoding{UTF8, Latin1, CP1252}
