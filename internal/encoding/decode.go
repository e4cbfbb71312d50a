// Package encoding normalizes uploaded catalog files to UTF-8 text.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const sampleSize = 4096

// Charset names the encoding Decode settled on.
type Charset string

const (
	CharsetUTF8        Charset = "UTF-8"
	CharsetUTF16LE     Charset = "UTF-16LE"
	CharsetUTF16BE     Charset = "UTF-16BE"
	CharsetWindows1252 Charset = "windows-1252"
	CharsetISO88599    Charset = "ISO-8859-9"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Decoded is a UTF-8 view over an input of some detected charset.
type Decoded struct {
	io.Reader
	Charset Charset
	// Sample is the head of the input, undecoded, used for delimiter sniffing.
	Sample []byte
}

// Decode detects the charset of r and wraps it in a UTF-8 reader. A UTF-8 BOM
// is dropped, UTF-16 is recognised only by its BOM, and anything that is not
// valid UTF-8 goes through chardet before falling back to Windows-1252.
func Decode(r io.Reader) (Decoded, error) {
	br := bufio.NewReaderSize(r, sampleSize)

	buf, err := br.Peek(sampleSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return Decoded{}, fmt.Errorf("peek: %w", err)
	}

	sample := bytes.Clone(buf)

	switch {
	case bytes.HasPrefix(buf, bomUTF8):
		_, _ = br.Discard(len(bomUTF8))
		return Decoded{Reader: br, Charset: CharsetUTF8, Sample: sample[len(bomUTF8):]}, nil
	case bytes.HasPrefix(buf, bomUTF16LE):
		dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		return Decoded{Reader: transform.NewReader(br, dec), Charset: CharsetUTF16LE, Sample: sample}, nil
	case bytes.HasPrefix(buf, bomUTF16BE):
		dec := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
		return Decoded{Reader: transform.NewReader(br, dec), Charset: CharsetUTF16BE, Sample: sample}, nil
	case utf8.Valid(trimPartialRune(buf)):
		return Decoded{Reader: br, Charset: CharsetUTF8, Sample: sample}, nil
	}

	cs := CharsetWindows1252

	if res, err := chardet.NewTextDetector().DetectBest(buf); err == nil {
		switch res.Charset {
		case "UTF-8":
			return Decoded{Reader: br, Charset: CharsetUTF8, Sample: sample}, nil
		case "ISO-8859-9":
			cs = CharsetISO88599
		}
	}

	if cs == CharsetISO88599 {
		return Decoded{Reader: transform.NewReader(br, charmap.ISO8859_9.NewDecoder()), Charset: cs, Sample: sample}, nil
	}

	return Decoded{Reader: transform.NewReader(br, charmap.Windows1252.NewDecoder()), Charset: cs, Sample: sample}, nil
}

// trimPartialRune drops a multi-byte sequence cut off by the peek window.
func trimPartialRune(b []byte) []byte {
	for i := 1; i <= utf8.UTFMax && i <= len(b); i++ {
		if utf8.RuneStart(b[len(b)-i]) {
			if !utf8.FullRune(b[len(b)-i:]) {
				return b[:len(b)-i]
			}

			break
		}
	}

	return b
}

var delimiters = []rune{',', ';', '\t', '|'}

// SniffDelimiter picks the field separator that appears most often on the first
// line of sample. Quoted sections are ignored. It defaults to a comma.
func SniffDelimiter(sample []byte) rune {
	line := sample
	if i := bytes.IndexByte(sample, '\n'); i >= 0 {
		line = sample[:i]
	}

	counts := make(map[rune]int, len(delimiters))
	quoted := false

	for _, r := range string(line) {
		if r == '"' {
			quoted = !quoted
			continue
		}

		if !quoted {
			counts[r]++
		}
	}

	best, bestCount := ',', 0

	for _, d := range delimiters {
		if counts[d] > bestCount {
			best, bestCount = d, counts[d]
		}
	}

	return best
}
