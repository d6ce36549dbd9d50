// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// ErrUnsupportedFormat is returned for files that are neither CSV nor Parquet.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// RecordReader yields records in batches. Read fills buf and returns the
// number of records written; it returns io.EOF once no records remain,
// possibly together with a final n > 0.
type RecordReader interface {
	Read(buf []Record) (int, error)
	Close() error
}

// CSVReader reads user,brand,product rows.
type CSVReader struct {
	f       io.Closer
	r       *csv.Reader
	line    int
	started bool
}

// NewCSVReader reads CSV from r. closer may be nil.
func NewCSVReader(r io.Reader, closer io.Closer) *CSVReader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true
	return &CSVReader{f: closer, r: cr}
}

// Read implements RecordReader. Short rows are returned with the missing
// columns empty so validation can count them as skipped.
func (c *CSVReader) Read(buf []Record) (int, error) {
	n := 0
	for n < len(buf) {
		row, err := c.r.Read()
		if errors.Is(err, io.EOF) {
			return n, io.EOF
		}
		if err != nil {
			return n, fmt.Errorf("csv line %d: %w", c.line+1, err)
		}
		c.line++

		if !c.started {
			c.started = true
			if isHeader(row) {
				continue
			}
		}
		buf[n] = Record{User: column(row, 0), Brand: column(row, 1), Product: column(row, 2)}
		n++
	}
	return n, nil
}

// Close implements RecordReader.
func (c *CSVReader) Close() error {
	if c.f == nil {
		return nil
	}
	return c.f.Close()
}

func column(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func isHeader(row []string) bool {
	return len(row) >= 3 &&
		strings.EqualFold(strings.TrimSpace(row[0]), "user") &&
		strings.EqualFold(strings.TrimSpace(row[1]), "brand") &&
		strings.EqualFold(strings.TrimSpace(row[2]), "product")
}

// ParquetReader reads Record rows from a Parquet file.
type ParquetReader struct {
	f  *os.File
	pr *parquet.GenericReader[Record]
}

// OpenParquet opens a Parquet file of Record rows.
func OpenParquet(path string) (*ParquetReader, error) {
	f, err := os.Open(path) //nolint:gosec // path is an operator-supplied import file
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	pf, err := parquet.OpenFile(f, st.Size())
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("open parquet %s: %w", path, err)
	}
	return &ParquetReader{f: f, pr: parquet.NewGenericReader[Record](pf)}, nil
}

// Read implements RecordReader.
func (p *ParquetReader) Read(buf []Record) (int, error) {
	n, err := p.pr.Read(buf)
	for i := 0; i < n; i++ {
		buf[i].User = strings.TrimSpace(buf[i].User)
		buf[i].Brand = strings.TrimSpace(buf[i].Brand)
		buf[i].Product = strings.TrimSpace(buf[i].Product)
	}
	return n, err
}

// NumRows returns the number of rows in the file.
func (p *ParquetReader) NumRows() int64 {
	return p.pr.NumRows()
}

// Close implements RecordReader.
func (p *ParquetReader) Close() error {
	err := p.pr.Close()
	if cerr := p.f.Close(); err == nil {
		err = cerr
	}
	return err
}

// WriteParquet writes records to path. Used to export sales and to build
// fixtures.
func WriteParquet(path string, records []Record) error {
	f, err := os.Create(path) //nolint:gosec // path is operator supplied
	if err != nil {
		return err
	}
	w := parquet.NewGenericWriter[Record](f, parquet.Compression(&parquet.Zstd))
	if _, err := w.Write(records); err != nil {
		_ = f.Close()
		return fmt.Errorf("write parquet: %w", err)
	}
	if err := w.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return f.Close()
}

// Open picks a reader by file extension.
func Open(path string) (RecordReader, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		f, err := os.Open(path) //nolint:gosec // path is an operator-supplied import file
		if err != nil {
			return nil, err
		}
		return NewCSVReader(f, f), nil
	case ".parquet":
		return OpenParquet(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}
