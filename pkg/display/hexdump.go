package display

import (
	"fmt"
	"io"
	"strings"
)

// BytesPerRow is the width of a HexDump row.
const BytesPerRow = 16

// HexDump writes b as rows of 16 bytes: offset, hex bytes and the
// printable ASCII column.
func HexDump(w io.Writer, b []byte) {
	for off := 0; off < len(b); off += BytesPerRow {
		row := b[off:min(off+BytesPerRow, len(b))]

		var hex strings.Builder
		for i := 0; i < BytesPerRow; i++ {
			if i == BytesPerRow/2 {
				hex.WriteByte(' ')
			}
			if i < len(row) {
				fmt.Fprintf(&hex, "%02x ", row[i])
			} else {
				hex.WriteString("   ")
			}
		}

		text := make([]byte, len(row))
		for i, c := range row {
			if c >= 0x20 && c < 0x7f {
				text[i] = c
			} else {
				text[i] = '.'
			}
		}

		fmt.Fprintf(w, "%04x  %s |%s|\n", off, hex.String(), text)
	}
}

// Title writes text framed by a box of '#'.
func Title(w io.Writer, text string) {
	border := strings.Repeat("#", len(text)+4)
	fmt.Fprintf(w, "%s\n# %s #\n%s\n", border, text, border)
}
