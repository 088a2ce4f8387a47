package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/turbolytics/arquivo/internal"
	"github.com/turbolytics/arquivo/internal/arquivo"
	"github.com/turbolytics/arquivo/internal/catalog"
	"github.com/turbolytics/arquivo/internal/client"
	"github.com/turbolytics/arquivo/internal/normalize"
	"github.com/turbolytics/arquivo/internal/period"
)

const (
	CatalogKey      = "catalog.json"
	DefaultMaxPages = 10000
)

// Lister fetches one page of files.
type Lister interface {
	List(ctx context.Context, req client.ListRequest) (*normalize.Page, error)
}

type Option func(*Exporter)

func WithLogger(logger *zap.Logger) Option {
	return func(e *Exporter) {
		e.logger = logger
	}
}

func WithLister(l Lister) Option {
	return func(e *Exporter) {
		e.lister = l
	}
}

func WithRepository(r internal.Repository) Option {
	return func(e *Exporter) {
		e.repository = r
	}
}

func WithFormat(f Format) Option {
	return func(e *Exporter) {
		e.format = f
	}
}

func WithPageSize(n int) Option {
	return func(e *Exporter) {
		e.pageSize = n
	}
}

func WithMaxPages(n int) Option {
	return func(e *Exporter) {
		e.maxPages = n
	}
}

func WithSource(source string) Option {
	return func(e *Exporter) {
		e.source = source
	}
}

// Exporter walks every page of a period and preserves the files in a
// repository, next to a catalog describing the export.
type Exporter struct {
	logger     *zap.Logger
	lister     Lister
	repository internal.Repository
	format     Format
	pageSize   int
	maxPages   int
	source     string
	now        func() time.Time
}

func New(opts ...Option) (*Exporter, error) {
	e := &Exporter{
		logger:   zap.NewNop(),
		format:   FormatJSON,
		pageSize: 100,
		maxPages: DefaultMaxPages,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.lister == nil {
		return nil, fmt.Errorf("exporter requires a lister")
	}
	if e.repository == nil {
		return nil, fmt.Errorf("exporter requires a repository")
	}
	if _, err := ParseFormat(string(e.format)); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Exporter) DataKey() string {
	return "arquivos." + e.format.Ext()
}

// Collect fetches every file of the period, page by page.
func (e *Exporter) Collect(ctx context.Context, p period.Period) ([]arquivo.File, *catalog.Catalog, error) {
	c := &catalog.Catalog{
		Source: e.source,
		Period: p,
		Format: string(e.format),
	}

	var files []arquivo.File
	for n := 1; n <= e.maxPages; n++ {
		page, err := e.lister.List(ctx, client.ListRequest{
			Period:   p,
			Page:     n,
			PageSize: e.pageSize,
		})
		if err != nil {
			return nil, c, fmt.Errorf("fetching page %d: %w", n, err)
		}

		c.NumPages++
		c.ReportTotal = page.Total
		files = append(files, arquivo.FromPage(*page)...)

		e.logger.Debug("collected page",
			zap.Int("page", n),
			zap.Int("records", page.Len()),
			zap.Int("total", page.Total),
		)

		if !more(page) {
			break
		}
	}

	c.NumRecords = len(files)
	return files, c, nil
}

func more(p *normalize.Page) bool {
	if p.Len() == 0 {
		return false
	}
	// without a reported total, a full page may be followed by another one
	if p.TotalSource == normalize.TotalFromLength {
		return p.PageSize > 0 && p.Len() >= p.PageSize
	}
	return p.HasNext()
}

// Export collects the period and writes the data file and catalog under
// the export id.
func (e *Exporter) Export(ctx context.Context, id uuid.UUID, p period.Period) (*catalog.Catalog, error) {
	start := e.now().UTC()
	l := e.logger.With(zap.String("export_id", id.String()), zap.String("period", p.String()))
	l.Info("starting export", zap.String("format", string(e.format)))

	files, c, err := e.Collect(ctx, p)
	c.ID = id.String()
	c.StartTime = start
	c.DataKey = e.DataKey()
	if err != nil {
		c.EndTime = e.now().UTC()
		if werr := e.writeCatalog(ctx, c); werr != nil {
			l.Error("writing incomplete catalog", zap.Error(werr))
		}
		return c, err
	}

	var buf bytes.Buffer
	if err := Encode(&buf, e.format, files); err != nil {
		return c, fmt.Errorf("encoding %s: %w", e.format, err)
	}
	if err := e.repository.Write(ctx, c.DataKey, &buf); err != nil {
		return c, fmt.Errorf("writing %s: %w", e.repository.URI(c.DataKey), err)
	}

	c.EndTime = e.now().UTC()
	c.Completed = true
	if err := e.writeCatalog(ctx, c); err != nil {
		return c, err
	}

	if c.ReportTotal != c.NumRecords {
		l.Warn("exported record count differs from reported total",
			zap.Int("records", c.NumRecords),
			zap.Int("report_total", c.ReportTotal),
		)
	}
	l.Info("export completed",
		zap.Int("pages", c.NumPages),
		zap.Int("records", c.NumRecords),
		zap.String("data", e.repository.URI(c.DataKey)),
	)
	return c, nil
}

func (e *Exporter) writeCatalog(ctx context.Context, c *catalog.Catalog) error {
	bs, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	if err := e.repository.Write(ctx, CatalogKey, bytes.NewReader(bs)); err != nil {
		return fmt.Errorf("writing catalog: %w", err)
	}
	return nil
}
