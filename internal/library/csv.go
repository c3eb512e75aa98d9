package library

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseError reports a malformed catalog line.
type ParseError struct {
	Line int
	Err  error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	return fmt.Sprintf("catalog line %d: %v", e.Line, e.Err)
}

// Unwrap returns the wrapped error
func (e *ParseError) Unwrap() error {
	return e.Err
}

const csvFields = 5 // id,title,author,isbn,year

// ReadCSV parses a catalog with a header line followed by
// one `id,title,author,isbn,year` record per line.
func ReadCSV(r io.Reader) ([]Book, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = csvFields
	reader.TrimLeadingSpace = true
	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, &ParseError{Line: 1, Err: err}
	}
	var books []Book
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return books, nil
		}
		if err != nil {
			var (
				csvErr *csv.ParseError
				line   int
			)
			if errors.As(err, &csvErr) {
				line = csvErr.StartLine
			}
			return nil, &ParseError{Line: line, Err: err}
		}
		line, _ := reader.FieldPos(0)
		book, err := parseRecord(record)
		if err != nil {
			return nil, &ParseError{Line: line, Err: err}
		}
		books = append(books, book)
	}
}

func parseRecord(record []string) (Book, error) {
	id, err := strconv.Atoi(strings.TrimSpace(record[0]))
	if err != nil {
		return Book{}, fmt.Errorf("id: %w", err)
	}
	year, err := strconv.Atoi(strings.TrimSpace(record[4]))
	if err != nil {
		return Book{}, fmt.Errorf("year: %w", err)
	}
	book := Book{
		ID:     id,
		Title:  record[1],
		Author: record[2],
		ISBN:   record[3],
		Year:   year,
	}
	return book, book.Validate()
}
