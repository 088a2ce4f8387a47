package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/turbolytics/arquivo/internal"
	"github.com/turbolytics/arquivo/internal/arquivo"
	"github.com/turbolytics/arquivo/internal/normalize"
	"github.com/turbolytics/arquivo/internal/period"
	"github.com/turbolytics/arquivo/internal/session"
)

const (
	// UserHeader identifies the session user to the backend.
	UserHeader = "X-Usuario"

	// FileField is the multipart field carrying the uploaded file.
	FileField = "arquivo"

	resourcePath = "arquivos"
)

var (
	ErrNotFound           = errors.New("arquivo not found")
	ErrUploadNotPermitted = errors.New("current user is not allowed to upload files")
)

// Keys under which error bodies carry their message, in preference order.
var ErrorMessageKeys = []string{"message", "error"}

// APIError is a non-2xx answer from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

type Option func(*Client)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient replaces the default client. A nil client is ignored.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout applies to a copy of the HTTP client, never to one passed in
// through WithHTTPClient.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

func WithDateMode(mode period.Mode) Option {
	return func(c *Client) {
		c.dateMode = mode
	}
}

// Client talks to the legacy ArquivoController API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	dateMode   period.Mode
	timeout    time.Duration
	logger     *zap.Logger
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid api url %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		dateMode:   period.ModeISO,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c, nil
}

func (c *Client) DateMode() period.Mode {
	return c.dateMode
}

type ListRequest struct {
	Period   period.Period
	Page     int
	PageSize int
}

// List fetches one page of files uploaded within the period.
func (c *Client) List(ctx context.Context, req ListRequest) (*normalize.Page, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if _, err := period.New(req.Period.Start, req.Period.End); err != nil {
		return nil, err
	}

	q := req.Period.Query(c.dateMode)
	q.Set("page", strconv.Itoa(req.Page))
	if req.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(req.PageSize))
	}

	resp, body, err := c.do(ctx, http.MethodGet, c.endpoint(), q, nil, "")
	if err != nil {
		return nil, err
	}
	if err := checkStatus(resp, body); err != nil {
		return nil, err
	}

	page := normalize.NormalizeBody(body, resp.Header, normalize.Request{
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if page.HeaderTotal != nil {
		c.logger.Debug("body and header totals disagree",
			zap.Int("body_total", page.Total),
			zap.Int("header_total", *page.HeaderTotal),
		)
	}

	c.logger.Debug("listed arquivos",
		zap.String("period", req.Period.String()),
		zap.Int("page", page.Page),
		zap.Int("records", page.Len()),
		zap.Int("total", page.Total),
		zap.String("total_source", string(page.TotalSource)),
	)
	return &page, nil
}

// GetRecord fetches the raw record of a single file.
func (c *Client) GetRecord(ctx context.Context, id string) (*internal.Record, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, &period.ValidationError{Field: "id", Message: "id is required"}
	}
	if strings.ContainsAny(id, "/?#") || id == "." || id == ".." {
		return nil, &period.ValidationError{Field: "id", Message: fmt.Sprintf("invalid id %q", id)}
	}

	resp, body, err := c.do(ctx, http.MethodGet, c.endpoint(id), nil, nil, "")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if err := checkStatus(resp, body); err != nil {
		return nil, err
	}

	page := normalize.NormalizeBody(body, resp.Header, normalize.Request{Page: 1, PageSize: 1})
	if page.Len() == 0 {
		return nil, ErrNotFound
	}
	return page.Records[0], nil
}

func (c *Client) Get(ctx context.Context, id string) (*arquivo.File, error) {
	r, err := c.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	f := arquivo.FromRecord(r)
	return &f, nil
}

type UploadRequest struct {
	FileName string
	Content  io.Reader
	// Fields are optional free text fields sent alongside the file.
	Fields map[string]string
}

func (r UploadRequest) Validate() error {
	if strings.TrimSpace(r.FileName) == "" || r.Content == nil {
		return &period.ValidationError{Field: FileField, Message: "a file is required"}
	}
	return nil
}

// Upload sends a file as multipart form data and returns the identifier the
// backend assigned to it. The identifier is empty when the backend did not
// return one.
func (c *Client) Upload(ctx context.Context, req UploadRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	if sess := session.FromContext(ctx); sess != nil && !sess.CanUpload {
		return "", ErrUploadNotPermitted
	}

	pr, pw := io.Pipe()
	defer pr.Close()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeMultipart(mw, req))
	}()

	resp, body, err := c.do(ctx, http.MethodPost, c.endpoint(), nil, pr, mw.FormDataContentType())
	if err != nil {
		return "", err
	}
	if err := checkStatus(resp, body); err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusCreated {
		c.logger.Warn("unexpected upload status", zap.Int("status", resp.StatusCode))
	}

	id := createdID(body, resp.Header)
	c.logger.Info("uploaded arquivo",
		zap.String("file", req.FileName),
		zap.String("id", id),
	)
	return id, nil
}

func writeMultipart(mw *multipart.Writer, req UploadRequest) error {
	part, err := mw.CreateFormFile(FileField, path.Base(req.FileName))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, req.Content); err != nil {
		return err
	}

	keys := make([]string, 0, len(req.Fields))
	for k := range req.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if req.Fields[k] == "" {
			continue
		}
		if err := mw.WriteField(k, req.Fields[k]); err != nil {
			return err
		}
	}
	return mw.Close()
}

func createdID(body []byte, header http.Header) string {
	if v, err := normalize.Decode(body); err == nil {
		switch t := v.(type) {
		case *internal.Record:
			if id := arquivo.Text(t, arquivo.IDAliases); id != "" {
				return id
			}
		case string:
			if t != "" {
				return t
			}
		case float64:
			return strconv.FormatFloat(t, 'f', -1, 64)
		}
	}
	if loc := header.Get("Location"); loc != "" {
		if u, err := url.Parse(loc); err == nil {
			if id := path.Base(u.Path); id != "." && id != "/" {
				return id
			}
		}
	}
	return ""
}

func (c *Client) endpoint(elems ...string) string {
	u := *c.baseURL
	u.Path = path.Join(append([]string{"/", u.Path, resourcePath}, elems...)...)
	u.RawPath = ""
	u.RawQuery = ""
	return u.String()
}

func (c *Client) do(ctx context.Context, method, endpoint string, q url.Values, body io.Reader, contentType string) (*http.Response, []byte, error) {
	if q != nil {
		endpoint = endpoint + "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if sess := session.FromContext(ctx); sess != nil {
		req.Header.Set(UserHeader, sess.User)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	bs, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("reading response of %s %s: %w", method, endpoint, err)
	}

	c.logger.Debug("backend request",
		zap.String("method", method),
		zap.String("url", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(bs)),
		zap.Duration("duration", time.Since(start)),
	)
	return resp, bs, nil
}

func checkStatus(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    ErrorMessage(body, resp.StatusCode),
	}
}

// ErrorMessage reads the message of an error body, falling back to the
// status text.
func ErrorMessage(body []byte, status int) string {
	if v, err := normalize.Decode(body); err == nil {
		if r, ok := v.(*internal.Record); ok {
			for _, key := range ErrorMessageKeys {
				if msg, ok := r.Lookup(key); ok {
					if s, ok := msg.(string); ok && s != "" {
						return s
					}
				}
			}
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return strconv.Itoa(status)
}
