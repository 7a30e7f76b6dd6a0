package files

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// maxLineSize bounds a single line read by ReadLines
const maxLineSize = 4 * 1024 * 1024

// Encoding returns the text encoding registered under name. An empty name
// selects UTF-8. UTF-8 and UTF-16 decoders drop a leading byte order mark.
func Encoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return unicode.UTF8BOM, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	case "iso-8859-1", "latin1":
		return charmap.ISO8859_1, nil
	case "shift_jis", "sjis":
		return japanese.ShiftJIS, nil
	case "utf-16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}

// NewDecodingReader wraps r so that it yields UTF-8 text
func NewDecodingReader(r io.Reader, encodingName string) (io.Reader, error) {
	enc, err := Encoding(encodingName)
	if err != nil {
		return nil, err
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}

type decodedFile struct {
	io.Reader
	file *os.File
}

func (d *decodedFile) Close() error {
	return d.file.Close()
}

// OpenText opens path for reading as UTF-8 text decoded from encodingName
func OpenText(path, encodingName string) (io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	reader, err := NewDecodingReader(file, encodingName)
	if err != nil {
		file.Close()
		return nil, err
	}

	return &decodedFile{Reader: reader, file: file}, nil
}

// ReadLines reads the whole file at path and returns its lines without
// terminators. Both "\n" and "\r\n" endings are accepted.
func ReadLines(path, encodingName string) ([]string, error) {
	rc, err := OpenText(path, encodingName)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return scanLines(rc)
}

func scanLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
