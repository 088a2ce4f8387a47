package arquivo

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/turbolytics/arquivo/internal"
	"github.com/turbolytics/arquivo/internal/normalize"
)

// Aliases under which each canonical field may appear, in priority order.
// The legacy backend is inconsistent; keep these lists as they are.
var (
	IDAliases               = []string{"id", "idArquivo", "id_arquivo", "codigo"}
	FileNameAliases         = []string{"nomeArquivo", "nome_arquivo", "nmArquivo", "fileName"}
	TotalRecordsAliases     = []string{"totalRegistros", "total_registros", "qtdRegistros", "totalRecords"}
	AcceptedAliases         = []string{"aceitos", "qtd_aceitos", "qtdAceitos", "accepted"}
	MissingDocumentsAliases = []string{"semDocumento", "sem_documento", "qtdSemDoc", "missingDocuments"}
	CodedErrorsAliases      = []string{"errosCodigo", "erros_codigo", "qtdErrosCod", "codedErrors"}
	GenericErrorsAliases    = []string{"errosGenericos", "erros_genericos", "qtdErros", "genericErrors"}
	UploadedAtAliases       = []string{"dataUpload", "data_upload", "dtUpload", "uploadedAt"}
	UploadedByAliases       = []string{"usuarioUpload", "usuario_upload", "usuario", "uploadedBy"}
)

// File is one uploaded file entry as shown to users.
type File struct {
	ID               string `json:"id,omitempty" csv:"id" parquet:"name=id, type=BYTE_ARRAY, convertedtype=UTF8"`
	FileName         string `json:"fileName" csv:"file_name" parquet:"name=file_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	TotalRecords     int64  `json:"totalRecords" csv:"total_records" parquet:"name=total_records, type=INT64"`
	Accepted         int64  `json:"accepted" csv:"accepted" parquet:"name=accepted, type=INT64"`
	MissingDocuments int64  `json:"missingDocuments" csv:"missing_documents" parquet:"name=missing_documents, type=INT64"`
	CodedErrors      int64  `json:"codedErrors" csv:"coded_errors" parquet:"name=coded_errors, type=INT64"`
	GenericErrors    int64  `json:"genericErrors" csv:"generic_errors" parquet:"name=generic_errors, type=INT64"`
	UploadedAt       string `json:"uploadedAt,omitempty" csv:"uploaded_at" parquet:"name=uploaded_at, type=BYTE_ARRAY, convertedtype=UTF8"`
	UploadedBy       string `json:"uploadedBy,omitempty" csv:"uploaded_by" parquet:"name=uploaded_by, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// HasID reports whether the detail view can be opened for this file.
// A missing identifier is never replaced by another field.
func (f File) HasID() bool {
	return f.ID != ""
}

// FromRecord maps the aliased keys of r onto the canonical fields.
func FromRecord(r *internal.Record) File {
	return File{
		ID:               Text(r, IDAliases),
		FileName:         Text(r, FileNameAliases),
		TotalRecords:     Count(r, TotalRecordsAliases),
		Accepted:         Count(r, AcceptedAliases),
		MissingDocuments: Count(r, MissingDocumentsAliases),
		CodedErrors:      Count(r, CodedErrorsAliases),
		GenericErrors:    Count(r, GenericErrorsAliases),
		UploadedAt:       Text(r, UploadedAtAliases),
		UploadedBy:       Text(r, UploadedByAliases),
	}
}

func FromPage(p normalize.Page) []File {
	files := make([]File, 0, p.Len())
	for _, r := range p.Records {
		files = append(files, FromRecord(r))
	}
	return files
}

// Lookup returns the value of the first alias present in r. Each alias is
// tried as an exact key and then case-insensitively before moving on.
func Lookup(r *internal.Record, aliases []string) (any, bool) {
	for _, alias := range aliases {
		if v, ok := r.Get(alias); ok {
			return v, true
		}
		if v, ok := r.GetFold(alias); ok {
			return v, true
		}
	}
	return nil, false
}

// Count decodes a numeric field, defaulting to zero.
func Count(r *internal.Record, aliases []string) int64 {
	v, ok := Lookup(r, aliases)
	if !ok {
		return 0
	}
	return ParseCount(v)
}

// Text decodes a text field, defaulting to the empty string.
func Text(r *internal.Record, aliases []string) string {
	v, ok := Lookup(r, aliases)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// ParseCount never fails: JSON numbers are truncated, strings are stripped of
// everything but digits before parsing, anything else is zero. A minus sign
// counts only when it directly precedes the first digit. Values outside the
// int64 range are zero.
func ParseCount(v any) int64 {
	switch t := v.(type) {
	case float64:
		// float64(math.MaxInt64) rounds up to 2^63, which does not fit
		if math.IsNaN(t) || t >= math.MaxInt64 || t < math.MinInt64 {
			return 0
		}
		return int64(t)
	case int:
		return int64(t)
	case int64:
		return t
	case string:
		return parseDigits(t)
	default:
		return 0
	}
}

func parseDigits(s string) int64 {
	s = strings.TrimSpace(s)
	var b strings.Builder
	prev := rune(0)
	for _, c := range s {
		if c >= '0' && c <= '9' {
			if b.Len() == 0 && prev == '-' {
				b.WriteRune('-')
			}
			b.WriteRune(c)
		}
		prev = c
	}
	n, err := strconv.ParseInt(b.String(), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
