package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/turbolytics/arquivo/internal/arquivo"
)

type Format string

const (
	FormatJSON    Format = "json"
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV, FormatParquet:
		return f, nil
	case "":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported export format: %q", s)
	}
}

func (f Format) Ext() string {
	return string(f)
}

// Encode writes files to w in the given format.
func Encode(w io.Writer, f Format, files []arquivo.File) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if files == nil {
			files = []arquivo.File{}
		}
		return enc.Encode(files)
	case FormatCSV:
		return encodeCSV(w, files)
	case FormatParquet:
		return encodeParquet(w, files)
	default:
		return fmt.Errorf("unsupported export format: %q", f)
	}
}

func encodeCSV(w io.Writer, files []arquivo.File) error {
	if len(files) == 0 {
		header, err := csvutil.Header(arquivo.File{}, "csv")
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, strings.Join(header, ",")+"\n")
		return err
	}
	bs, err := csvutil.Marshal(files)
	if err != nil {
		return err
	}
	_, err = w.Write(bs)
	return err
}

func encodeParquet(w io.Writer, files []arquivo.File) error {
	pw, err := writer.NewParquetWriterFromWriter(w, new(arquivo.File), 4)
	if err != nil {
		return fmt.Errorf("creating parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, f := range files {
		if err := pw.Write(f); err != nil {
			return fmt.Errorf("writing parquet row: %w", err)
		}
	}
	return pw.WriteStop()
}
