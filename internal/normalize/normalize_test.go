package normalize

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDecode(t *testing.T, body string) any {
	t.Helper()
	v, err := Decode([]byte(body))
	require.NoError(t, err)
	return v
}

func TestDecode(t *testing.T) {
	t.Run("keeps key order", func(t *testing.T) {
		v := mustDecode(t, `{"z": 1, "a": "x", "m": [true, null]}`)
		r, ok := v.(interface{ Fields() []string })
		require.True(t, ok)
		assert.Equal(t, []string{"z", "a", "m"}, r.Fields())
	})

	t.Run("unescapes strings", func(t *testing.T) {
		v := mustDecode(t, `["a\"b", "ç"]`)
		assert.Equal(t, []any{`a"b`, "ç"}, v)
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := Decode([]byte(`{"items": [}`))
		assert.ErrorIs(t, err, ErrInvalidJSON)
	})
}

func TestNormalize(t *testing.T) {
	req := Request{Page: 2, PageSize: 10}

	t.Run("bare array keeps every element", func(t *testing.T) {
		for _, body := range []string{`[]`, `[{"id":1}]`, `[{"id":1},{"id":2},{"id":3}]`} {
			v := mustDecode(t, body)
			p := Normalize(v, nil, req)
			assert.Equal(t, len(v.([]any)), p.Len(), body)
		}
	})

	t.Run("wrapper key priority", func(t *testing.T) {
		v := mustDecode(t, `{"data": [{"id":1},{"id":2}], "items": [{"id":3}]}`)
		p := Normalize(v, nil, req)
		require.Equal(t, 1, p.Len())
		id, _ := p.Records[0].Get("id")
		assert.Equal(t, float64(3), id)
	})

	t.Run("wrapper key matched case-insensitively", func(t *testing.T) {
		v := mustDecode(t, `{"Arquivos": [{"id":1}]}`)
		assert.Equal(t, 1, Normalize(v, nil, req).Len())
	})

	t.Run("wrapper key whose value is not a sequence is skipped", func(t *testing.T) {
		v := mustDecode(t, `{"items": null, "data": [{"id":1},{"id":2}]}`)
		assert.Equal(t, 2, Normalize(v, nil, req).Len())
	})

	t.Run("single array property regardless of key", func(t *testing.T) {
		v := mustDecode(t, `{"meta": {"x": 1}, "registrosDoPeriodo": [{"id":1},{"id":2}], "ok": true}`)
		assert.Equal(t, 2, Normalize(v, nil, req).Len())
	})

	t.Run("first array in insertion order", func(t *testing.T) {
		v := mustDecode(t, `{"b": [{"id":"b"}], "a": [{"id":"a1"},{"id":"a2"}]}`)
		p := Normalize(v, nil, req)
		require.Equal(t, 1, p.Len())
		id, _ := p.Records[0].Get("id")
		assert.Equal(t, "b", id)
	})

	t.Run("single object becomes one record", func(t *testing.T) {
		v := mustDecode(t, `{"id": 7, "nomeArquivo": "a.txt", "totalRegistros": 900}`)
		p := Normalize(v, nil, req)
		require.Equal(t, 1, p.Len())
		assert.Equal(t, 1, p.Total)
		assert.Equal(t, TotalFromLength, p.TotalSource)
	})

	t.Run("scalars yield an empty page", func(t *testing.T) {
		for _, body := range []string{`null`, `42`, `"x"`, `true`} {
			p := Normalize(mustDecode(t, body), nil, req)
			assert.Equal(t, 0, p.Len(), body)
			assert.Equal(t, 2, p.Page)
			assert.Equal(t, 10, p.PageSize)
		}
	})

	t.Run("every sequence element is kept", func(t *testing.T) {
		for body, want := range map[string]int{
			`[1, "x", {"id":1}]`: 3,
			`[1, 2, 3]`:          3,
			`["a", "b"]`:         2,
			`{"items": [1, 2]}`:  2,
			`[null, {"id":1}]`:   2,
		} {
			p := Normalize(mustDecode(t, body), nil, req)
			assert.Equal(t, want, p.Len(), body)
			assert.Equal(t, want, p.Total, body)
			assert.Equal(t, TotalFromLength, p.TotalSource, body)
		}

		p := Normalize(mustDecode(t, `[1, "x", {"id":1}]`), nil, req)
		assert.Equal(t, 0, p.Records[0].Len())
		assert.Equal(t, 0, p.Records[1].Len())
		v, ok := p.Records[2].Get("id")
		require.True(t, ok)
		assert.Equal(t, float64(1), v)
	})
}

func TestNormalizeTotals(t *testing.T) {
	req := Request{Page: 1, PageSize: 20}
	header := http.Header{}
	header.Set(TotalCountHeader, "57")

	t.Run("out of range numbers are ignored", func(t *testing.T) {
		p := Normalize(mustDecode(t, `{"items": [{"id":1}], "total": 1e30, "page": -1e300, "pageSize": 1e19}`), nil, req)
		assert.Equal(t, 1, p.Total)
		assert.Equal(t, TotalFromLength, p.TotalSource)
		assert.Equal(t, 1, p.Page)
		assert.Equal(t, 20, p.PageSize)

		p = Normalize(mustDecode(t, `{"items": [], "totalCount": 1e30}`), header, req)
		assert.Equal(t, 57, p.Total)
		assert.Equal(t, TotalFromHeader, p.TotalSource)
	})

	t.Run("header total beats array length", func(t *testing.T) {
		p := Normalize(mustDecode(t, `[{"id":1},{"id":2}]`), header, req)
		assert.Equal(t, 57, p.Total)
		assert.Equal(t, TotalFromHeader, p.TotalSource)
		assert.Equal(t, 3, p.TotalPages())
		assert.True(t, p.HasNext())
	})

	t.Run("body total beats header", func(t *testing.T) {
		p := Normalize(mustDecode(t, `{"items":[{"id":1}], "total": 40}`), header, req)
		assert.Equal(t, 40, p.Total)
		assert.Equal(t, TotalFromBody, p.TotalSource)
		require.NotNil(t, p.HeaderTotal)
		assert.Equal(t, 57, *p.HeaderTotal)
	})

	t.Run("string total in body", func(t *testing.T) {
		p := Normalize(mustDecode(t, `{"items":[], "totalCount": "12"}`), nil, req)
		assert.Equal(t, 12, p.Total)
	})

	t.Run("malformed header is ignored", func(t *testing.T) {
		h := http.Header{}
		h.Set(TotalCountHeader, "many")
		p := Normalize(mustDecode(t, `[{"id":1}]`), h, req)
		assert.Equal(t, 1, p.Total)
		assert.Equal(t, TotalFromLength, p.TotalSource)
	})

	t.Run("body pagination overrides request", func(t *testing.T) {
		p := Normalize(mustDecode(t, `{"items":[], "pagina": 3, "tamanhoPagina": 50}`), nil, req)
		assert.Equal(t, 3, p.Page)
		assert.Equal(t, 50, p.PageSize)
	})

	t.Run("non-positive body pagination is ignored", func(t *testing.T) {
		p := Normalize(mustDecode(t, `{"items":[], "page": 0, "pageSize": -1}`), nil, req)
		assert.Equal(t, 1, p.Page)
		assert.Equal(t, 20, p.PageSize)
	})
}

func TestNormalizeBody(t *testing.T) {
	p := NormalizeBody([]byte(`<html>oops</html>`), nil, Request{Page: 1, PageSize: 10})
	assert.Equal(t, 0, p.Len())
	assert.Equal(t, 0, p.Total)
	assert.Equal(t, 1, p.Page)
	assert.False(t, p.HasNext())
}
