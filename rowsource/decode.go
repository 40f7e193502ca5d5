package rowsource

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/colgo/scalar"
)

// DecodeRows parses a row payload: either a JSON array of objects or a
// stream of concatenated/newline-delimited objects. An empty payload is a
// valid zero-row result. Malformed input fails with *ErrDecode carrying
// the 1-based row number.
func DecodeRows(r io.Reader) ([]scalar.Row, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, &ErrDecode{cause: err}
	}

	dec := json.NewDecoder(br)
	var rows []scalar.Row

	if first == '[' {
		if _, err := dec.Token(); err != nil {
			return nil, &ErrDecode{cause: err}
		}
		for dec.More() {
			var row scalar.Row
			if err := dec.Decode(&row); err != nil {
				return nil, &ErrDecode{Row: len(rows) + 1, cause: err}
			}
			rows = append(rows, row)
		}
		if _, err := dec.Token(); err != nil {
			return nil, &ErrDecode{Row: len(rows), cause: err}
		}
		if tok, err := dec.Token(); !errors.Is(err, io.EOF) {
			if err == nil {
				err = fmt.Errorf("trailing data after array: %v", tok)
			}
			return nil, &ErrDecode{Row: len(rows), cause: err}
		}
		return rows, nil
	}

	for {
		var row scalar.Row
		err := dec.Decode(&row)
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, &ErrDecode{Row: len(rows) + 1, cause: err}
		}
		rows = append(rows, row)
	}
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		if err := br.UnreadByte(); err != nil {
			return 0, err
		}
		return b, nil
	}
}

// NewDecompressingReader wraps r according to the name's extension:
// .gz payloads are gunzipped, .lz4 payloads are decompressed, anything
// else passes through. The caller owns closing the returned reader.
func NewDecompressingReader(r io.Reader, name string) (io.ReadCloser, error) {
	switch path.Ext(name) {
	case ".gz":
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, &ErrDecode{cause: err}
		}
		return zr, nil
	case ".lz4":
		return io.NopCloser(lz4.NewReader(r)), nil
	default:
		return io.NopCloser(r), nil
	}
}
