package cmd

import (
	"fmt"
	"path"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/turbolytics/arquivo/internal"
	"github.com/turbolytics/arquivo/internal/config"
	"github.com/turbolytics/arquivo/internal/export"
	"github.com/turbolytics/arquivo/internal/local"
	"github.com/turbolytics/arquivo/internal/period"
	"github.com/turbolytics/arquivo/internal/s3"
)

func newExportCommand(a *app) *cobra.Command {
	var start, end, format string
	var maxPages int

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Exports every file of a period to the configured repository",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := period.New(start, end)
			if err != nil {
				return err
			}

			c, l, err := a.setup("export")
			if err != nil {
				return err
			}
			defer l.Sync()

			if format == "" {
				format = c.Export.Format
			}
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			ctx, err := withSession(cmd.Context(), c, l)
			if err != nil {
				return err
			}
			api, err := newClient(c, l)
			if err != nil {
				return err
			}

			eid := uuid.Must(uuid.NewUUID())
			repository, err := newRepository(c.Export.Repository, eid, l)
			if err != nil {
				return err
			}

			e, err := export.New(
				export.WithLogger(l),
				export.WithLister(api),
				export.WithRepository(repository),
				export.WithFormat(f),
				export.WithPageSize(c.API.PageSize),
				export.WithMaxPages(maxPages),
				export.WithSource(c.API.BaseURL),
			)
			if err != nil {
				return err
			}

			cat, err := e.Export(ctx, eid, p)
			if err != nil {
				return err
			}

			l.Info("exported",
				zap.String("export_id", cat.ID),
				zap.Int("records", cat.NumRecords),
			)
			fmt.Fprintln(cmd.OutOrStdout(), repository.URI(export.CatalogKey))
			return nil
		},
	}

	periodFlags(cmd, &start, &end)
	cmd.Flags().StringVarP(&format, "format", "f", "", "Export format: json, csv or parquet (defaults to export.format)")
	cmd.Flags().IntVar(&maxPages, "max-pages", export.DefaultMaxPages, "Upper bound on the number of pages fetched")
	return cmd
}

// newRepository places every export under its own id.
func newRepository(c config.Repository, id uuid.UUID, l *zap.Logger) (internal.Repository, error) {
	switch c.Type {
	case "local":
		return local.New(
			c.LocalConfig.Path,
			local.WithPrefix(id.String()),
			local.WithLogger(l),
		), nil
	case "s3":
		return s3.New(
			s3.WithLogger(l),
			s3.WithRegion(c.S3Config.Region),
			s3.WithBucket(c.S3Config.Bucket),
			s3.WithEndpoint(c.S3Config.Endpoint),
			s3.WithPrefix(path.Join(c.S3Config.Prefix, id.String())),
			s3.WithForcePathStyle(c.S3Config.ForcePathStyle),
		)
	default:
		return nil, fmt.Errorf("unknown repository type: %s", c.Type)
	}
}
