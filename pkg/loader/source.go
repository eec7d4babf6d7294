package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	dataframe "github.com/rocketlaunchr/dataframe-go"
)

// Source errors
var (
	ErrUnsupportedFile  = errors.New("unsupported file format")
	ErrUnsupportedWrite = errors.New("format does not support writing")
)

// FileSource resolves table names as file paths, picking the reader
// by extension. It satisfies the machine's table source interface.
type FileSource struct{}

// NewFileSource returns a source rooted in the process working directory.
func NewFileSource() FileSource { return FileSource{} }

// ReadColumns loads the named file and returns up to fields columns
// of untyped cells. Missing trailing columns come back empty-valued
// so frames stay rectangular.
func (FileSource) ReadColumns(name string, fields int) ([][]string, error) {
	var df *dataframe.DataFrame
	var err error
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		df, err = LoadJSON(name)
	case ".parquet":
		df, err = LoadParquet(name)
	default:
		df, err = LoadCSV(name)
	}
	if err != nil {
		return nil, err
	}
	return Columns(df, fields), nil
}

// WriteRows writes rendered lines as a text file; only delimited text
// output is supported.
func (FileSource) WriteRows(name string, rows []string) error {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".parquet":
		return fmt.Errorf("%w: %s", ErrUnsupportedWrite, name)
	}
	return os.WriteFile(name, []byte(strings.Join(rows, "\n")+"\n"), 0644)
}

// Columns renders a DataFrame column-major as strings, padded or
// truncated to the requested field count.
func Columns(df *dataframe.DataFrame, fields int) [][]string {
	nrows := 0
	if len(df.Series) > 0 {
		nrows = df.Series[0].NRows()
	}
	out := make([][]string, fields)
	for c := 0; c < fields; c++ {
		col := make([]string, nrows)
		if c < len(df.Series) {
			s := df.Series[c]
			for r := 0; r < nrows && r < s.NRows(); r++ {
				col[r] = cellString(s.Value(r))
			}
		}
		out[c] = col
	}
	return out
}

// cellString renders one series cell; missing values become empty text.
func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.UTC().Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprintf("%v", x)
	}
}
