// Package loader feeds external tables to the virtual machine. Files
// are read through dataframe-go (CSV, JSON) and parquet-go (Parquet)
// and handed over as column-major string cells; the machine parses
// them by the target type's member kinds.
package loader

import (
	"context"
	"errors"
	"os"

	dataframe "github.com/rocketlaunchr/dataframe-go"
	"github.com/rocketlaunchr/dataframe-go/imports"
)

// CSV errors
var (
	ErrEmptyFile     = errors.New("empty CSV file")
	ErrInvalidFormat = errors.New("invalid CSV format")
)

// LoadCSV reads a CSV file into a DataFrame. The first row is the
// header; cells stay untyped text so the machine controls parsing.
func LoadCSV(path string) (*dataframe.DataFrame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	ctx := context.Background()
	df, err := imports.LoadFromCSV(ctx, file, imports.CSVLoadOptions{})
	if err != nil {
		return nil, err
	}

	if df == nil || len(df.Series) == 0 {
		return nil, ErrEmptyFile
	}

	return df, nil
}
