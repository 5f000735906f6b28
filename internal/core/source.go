package core

import (
	"bytes"
	"unicode/utf8"
)

// utf8BOM is the byte order mark commonly added by Windows programs.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// prepareSource strips a leading UTF-8 BOM and replaces invalid UTF-8
// sequences with '?' so that header matching and display stay predictable.
func prepareSource(data []byte) []byte {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteByte('?')
		} else {
			buf.Write(data[:size])
		}
		data = data[size:]
	}
	return buf.Bytes()
}
