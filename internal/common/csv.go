// Package common provides the shared CSV sheet helpers used by the CLI
// commands that read and write fixed-shape artifacts: rule sheets,
// duplicate review sheets and summary exports.
package common

import (
	"encoding/csv"
	"fmt"
	"os"

	"finbook/csv-import/internal/fileutils"

	"github.com/gocarina/gocsv"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

// Delimiter is the global CSV delimiter, configurable via config or the
// CSV_DELIMITER environment variable.
var Delimiter rune = ','

func init() {
	// Fallback to environment variable for backward compatibility
	if val := os.Getenv("CSV_DELIMITER"); val != "" {
		SetDelimiter([]rune(val)[0])
	}
}

// SetDelimiter sets the delimiter used for reading and writing sheets.
func SetDelimiter(delim rune) {
	Delimiter = delim
}

// SetLogger allows setting a configured logger
func SetLogger(logger *logrus.Logger) {
	if logger == nil {
		return
	}
	log = logger
}

// ReadCSVFile reads a CSV file into a slice of structs using gocsv.
// TRow is the struct type whose csv tags map the columns.
func ReadCSVFile[TRow any](filePath string) ([]TRow, error) {
	log.WithField("file", filePath).Debug("Reading CSV sheet")

	file, err := fileutils.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error opening CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.WithError(err).Warn("Failed to close file")
		}
	}()

	reader := csv.NewReader(file)
	reader.Comma = Delimiter
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var rows []TRow
	if err := gocsv.UnmarshalCSV(reader, &rows); err != nil {
		return nil, fmt.Errorf("error parsing CSV file: %w", err)
	}

	log.WithFields(logrus.Fields{"file": filePath, "count": len(rows)}).Debug("Read CSV sheet")
	return rows, nil
}

// WriteCSVFile writes a slice of structs to a CSV file using gocsv,
// creating parent directories as needed.
func WriteCSVFile[TRow any](rows []TRow, filePath string) error {
	if rows == nil {
		return fmt.Errorf("cannot write nil rows to CSV")
	}

	file, err := fileutils.CreateFile(filePath)
	if err != nil {
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.WithError(err).Warn("Failed to close file")
		}
	}()

	csvWriter := csv.NewWriter(file)
	csvWriter.Comma = Delimiter

	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}

	log.WithFields(logrus.Fields{"file": filePath, "count": len(rows)}).Info("Wrote CSV sheet")
	return nil
}
