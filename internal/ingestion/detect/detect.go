package detect

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrUnreadable        = errors.New("unreadable file")
)

var byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

// Extensions accepted for uploaded data sources.
var Extensions = map[string]string{
	".csv":  "text/csv",
	".json": "application/json",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// Supported reports whether fileName has an accepted extension.
func Supported(fileName string) bool {
	_, ok := Extensions[strings.ToLower(filepath.Ext(fileName))]
	return ok
}

// Columns reads the column names of a tabular upload: the header row of a CSV,
// the keys of the first object of a JSON document (array, object or JSON
// lines), or the first non-empty row of the first sheet of an XLSX workbook.
// An empty file has no columns.
func Columns(fileName string, r io.Reader) ([]string, error) {
	switch ext := strings.ToLower(filepath.Ext(fileName)); ext {
	case ".csv":
		return csvColumns(r)
	case ".json":
		return jsonColumns(r)
	case ".xlsx":
		return xlsxColumns(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

func csvColumns(r io.Reader) ([]string, error) {
	reader := bufio.NewReader(r)
	if prefix, err := reader.Peek(len(byteOrderMark)); err == nil && bytes.Equal(prefix, byteOrderMark) {
		_, _ = reader.Discard(len(byteOrderMark))
	}

	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1

	for {
		row, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			return []string{}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: csv: %v", ErrUnreadable, err)
		}
		if cols := cleanRow(row); len(cols) > 0 {
			return cols, nil
		}
	}
}

func jsonColumns(r io.Reader) ([]string, error) {
	dec := json.NewDecoder(bufio.NewReader(r))
	tok, err := dec.Token()
	if errors.Is(err, io.EOF) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: json: %v", ErrUnreadable, err)
	}

	switch tok {
	case json.Delim('{'):
		return objectKeys(dec)
	case json.Delim('['):
		if !dec.More() {
			return []string{}, nil
		}
		first, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: json: %v", ErrUnreadable, err)
		}
		if first != json.Delim('{') {
			return nil, fmt.Errorf("%w: json array does not hold objects", ErrUnreadable)
		}
		return objectKeys(dec)
	default:
		return nil, fmt.Errorf("%w: json document is not an object or array", ErrUnreadable)
	}
}

// objectKeys reads the keys of the object whose opening brace was just
// consumed, in document order.
func objectKeys(dec *json.Decoder) ([]string, error) {
	keys := []string{}
	seen := map[string]bool{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: json: %v", ErrUnreadable, err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: json: unexpected token %v", ErrUnreadable, tok)
		}
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, fmt.Errorf("%w: json: %v", ErrUnreadable, err)
		}
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func xlsxColumns(r io.Reader) ([]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: xlsx: %v", ErrUnreadable, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return []string{}, nil
	}
	rows, err := f.Rows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: xlsx: %v", ErrUnreadable, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		row, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("%w: xlsx: %v", ErrUnreadable, err)
		}
		if cols := cleanRow(row); len(cols) > 0 {
			return cols, nil
		}
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("%w: xlsx: %v", ErrUnreadable, err)
	}
	return []string{}, nil
}

// cleanRow trims cells and drops trailing blanks. A row of blanks is empty.
func cleanRow(row []string) []string {
	out := make([]string, len(row))
	last := -1
	for i, cell := range row {
		out[i] = strings.TrimSpace(cell)
		if out[i] != "" {
			last = i
		}
	}
	return out[:last+1]
}
