package normalize

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/turbolytics/arquivo/internal"
)

// TotalCountHeader carries the total number of records when the body is a
// bare array.
const TotalCountHeader = "X-Total-Count"

// Wrapper keys searched, in priority order, for the record sequence.
var WrapperKeys = []string{
	"items",
	"arquivos",
	"lista",
	"data",
	"result",
	"results",
	"content",
}

var (
	TotalKeys    = []string{"total", "totalCount", "total_count", "totalRegistros", "totalElements"}
	PageKeys     = []string{"page", "pagina", "pageNumber"}
	PageSizeKeys = []string{"pageSize", "page_size", "tamanhoPagina", "size", "limit"}
)

// Request holds the pagination values used to issue the request. They are
// kept when the body does not say otherwise.
type Request struct {
	Page     int
	PageSize int
}

// TotalSource records where Page.Total came from.
type TotalSource string

const (
	TotalFromBody   TotalSource = "body"
	TotalFromHeader TotalSource = "header"
	TotalFromLength TotalSource = "length"
)

type Page struct {
	Records     []*internal.Record `json:"items"`
	Page        int                `json:"page"`
	PageSize    int                `json:"pageSize"`
	Total       int                `json:"total"`
	TotalSource TotalSource        `json:"-"`

	// HeaderTotal is set when a header total was present but lost to a
	// body total that disagrees with it.
	HeaderTotal *int `json:"-"`
}

func (p Page) Len() int {
	return len(p.Records)
}

func (p Page) TotalPages() int {
	if p.PageSize <= 0 {
		if p.Total > 0 {
			return 1
		}
		return 0
	}
	return int(math.Ceil(float64(p.Total) / float64(p.PageSize)))
}

func (p Page) HasNext() bool {
	return p.Page < p.TotalPages()
}

func (p Page) HasPrevious() bool {
	return p.Page > 1
}

// Normalize turns a decoded response body of unknown shape into a Page.
// It never fails: unusable input yields an empty page.
func Normalize(body any, header http.Header, req Request) Page {
	items, wrapper := extract(body)

	page := Page{
		Records:  make([]*internal.Record, 0, len(items)),
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	// every element stays a candidate record; non-objects carry no fields
	for _, item := range items {
		r, ok := item.(*internal.Record)
		if !ok || r == nil {
			r = internal.NewRecord(nil, nil)
		}
		page.Records = append(page.Records, r)
	}

	headerTotal, hasHeaderTotal := headerInt(header, TotalCountHeader)
	if total, ok := firstInt(wrapper, TotalKeys); ok {
		page.Total = total
		page.TotalSource = TotalFromBody
		if hasHeaderTotal && headerTotal != total {
			page.HeaderTotal = &headerTotal
		}
	} else if hasHeaderTotal {
		page.Total = headerTotal
		page.TotalSource = TotalFromHeader
	} else {
		page.Total = len(page.Records)
		page.TotalSource = TotalFromLength
	}

	if n, ok := firstInt(wrapper, PageKeys); ok && n > 0 {
		page.Page = n
	}
	if n, ok := firstInt(wrapper, PageSizeKeys); ok && n > 0 {
		page.PageSize = n
	}

	return page
}

// NormalizeBody decodes and normalizes a raw body. Malformed JSON is
// absorbed into an empty page that keeps the request values.
func NormalizeBody(body []byte, header http.Header, req Request) Page {
	v, err := Decode(body)
	if err != nil {
		return Normalize(nil, header, req)
	}
	return Normalize(v, header, req)
}

// extract returns the candidate records and, when the body was an object,
// the object itself so pagination fields can be read from it.
func extract(body any) ([]any, *internal.Record) {
	switch v := body.(type) {
	case []any:
		return v, nil
	case *internal.Record:
		if v == nil {
			return nil, nil
		}
		for _, key := range WrapperKeys {
			if value, ok := v.Lookup(key); ok {
				if items, ok := value.([]any); ok {
					return items, v
				}
			}
		}
		for _, value := range v.Values() {
			if items, ok := value.([]any); ok {
				return items, v
			}
		}
		// a lone record carries no pagination fields of its own
		return []any{v}, nil
	default:
		return nil, nil
	}
}

func firstInt(r *internal.Record, keys []string) (int, bool) {
	if r == nil {
		return 0, false
	}
	for _, key := range keys {
		value, ok := r.Lookup(key)
		if !ok {
			continue
		}
		if n, ok := toInt(value); ok {
			return n, true
		}
	}
	return 0, false
}

func toInt(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || t >= math.MaxInt || t < math.MinInt {
			return 0, false
		}
		return int(t), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func headerInt(header http.Header, key string) (int, bool) {
	if header == nil {
		return 0, false
	}
	raw := strings.TrimSpace(header.Get(key))
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
