package expense

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Коды построчных ошибок пакетного разбора.
const (
	CodeMissingColumn = "MissingColumn"
	CodeMalformedRow  = "MalformedRow"
)

// ErrEmptyFile возвращается, когда в файле нет даже строки заголовка.
var ErrEmptyFile = errors.New("csv file is empty")

// Синонимы заголовков: банковские выгрузки называют колонки по-разному.
var headerAliases = map[string][]string{
	"date":        {"date", "transaction date", "posting date"},
	"category":    {"category"},
	"amount":      {"amount", "debit", "value", "expense"},
	"description": {"description", "narrative", "details", "memo"},
}

// MissingColumnError сообщает об отсутствии обязательной колонки в заголовке.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing required column: %s", e.Column)
}

// RowError описывает структурную ошибку одной строки; нумерация идет
// с единицы по строкам данных.
type RowError struct {
	Row  int    `json:"row"`
	Code string `json:"error"`
}

// RowResult несет исход одной строки: либо кандидата, либо ошибку разбора.
type RowResult struct {
	Row       int
	Candidate Candidate
	Err       *RowError
}

type columnIndex struct {
	date        int
	category    int
	amount      int
	description int
}

// BatchReader лениво выдает построчные исходы разбора CSV.
// Испорченная строка никогда не прерывает чтение последующих.
type BatchReader struct {
	reader  *csv.Reader
	columns columnIndex
	row     int
}

// NewBatchReader читает заголовок и сопоставляет колонки по синонимам.
// Колонки date, category и amount обязательны, description опциональна.
func NewBatchReader(r io.Reader) (*BatchReader, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyFile
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	columns := columnIndex{date: -1, category: -1, amount: -1, description: -1}
	columns.date = findColumn(header, headerAliases["date"])
	columns.category = findColumn(header, headerAliases["category"])
	columns.amount = findColumn(header, headerAliases["amount"])
	columns.description = findColumn(header, headerAliases["description"])

	switch {
	case columns.date < 0:
		return nil, &MissingColumnError{Column: "date"}
	case columns.category < 0:
		return nil, &MissingColumnError{Column: "category"}
	case columns.amount < 0:
		return nil, &MissingColumnError{Column: "amount"}
	}

	return &BatchReader{reader: reader, columns: columns}, nil
}

// Next возвращает исход очередной строки; второй результат false на конце файла.
func (b *BatchReader) Next() (RowResult, bool) {
	fields, err := b.reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return RowResult{}, false
		}

		b.row++
		return RowResult{Row: b.row, Err: &RowError{Row: b.row, Code: CodeMalformedRow}}, true
	}

	b.row++

	required := b.columns.amount
	if b.columns.date > required {
		required = b.columns.date
	}
	if b.columns.category > required {
		required = b.columns.category
	}

	if len(fields) <= required {
		return RowResult{Row: b.row, Err: &RowError{Row: b.row, Code: CodeMalformedRow}}, true
	}

	candidate := Candidate{
		Date:     fields[b.columns.date],
		Category: fields[b.columns.category],
		Amount:   fields[b.columns.amount],
	}
	if b.columns.description >= 0 && b.columns.description < len(fields) {
		candidate.Description = strings.TrimSpace(fields[b.columns.description])
	}

	return RowResult{Row: b.row, Candidate: candidate}, true
}

func findColumn(header []string, aliases []string) int {
	for i, cell := range header {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for _, alias := range aliases {
			if normalized == alias {
				return i
			}
		}
	}

	return -1
}
