package main

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/width"
)

// displayWidth returns s's width in terminal cells, counting east-Asian
// wide and fullwidth runes as 2 cells so a column of mixed-width payload
// previews still lines up.
func displayWidth(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

// padTo right-pads s with spaces until it occupies at least cells
// display columns.
func padTo(s string, cells int) string {
	if got := displayWidth(s); got < cells {
		return s + strings.Repeat(" ", cells-got)
	}
	return s
}

const previewWidth = 40

// recordPrinter writes one aligned line per record: its index, byte
// length, and a truncated preview of its payload.
type recordPrinter struct {
	out    io.Writer
	format string
}

func (p *recordPrinter) print(source string, index int, payload []byte) {
	preview := p.preview(payload)
	fmt.Fprintf(p.out, "%s\t%6d\t%6d  %s\n", source, index, len(payload), padTo(preview, previewWidth))
}

func (p *recordPrinter) preview(payload []byte) string {
	var s string
	if p.format == "hex" {
		s = fmt.Sprintf("%x", payload)
	} else if utf8.Valid(payload) {
		s = string(payload)
	} else {
		s = fmt.Sprintf("%x", payload)
	}
	s = strings.ReplaceAll(s, "\n", "\\n")
	if displayWidth(s) > previewWidth {
		for displayWidth(s) > previewWidth-1 && len(s) > 0 {
			_, size := utf8.DecodeLastRuneInString(s)
			s = s[:len(s)-size]
		}
		s += "…"
	}
	return s
}
