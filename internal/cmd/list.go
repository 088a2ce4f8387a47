package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/turbolytics/arquivo/internal/arquivo"
	"github.com/turbolytics/arquivo/internal/client"
	"github.com/turbolytics/arquivo/internal/export"
	"github.com/turbolytics/arquivo/internal/normalize"
	"github.com/turbolytics/arquivo/internal/period"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	outputCSV   = "csv"
)

func newListCommand(a *app) *cobra.Command {
	var start, end, output string
	var page, pageSize int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Lists the files uploaded within a period",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := period.New(start, end)
			if err != nil {
				return err
			}

			c, l, err := a.setup("list")
			if err != nil {
				return err
			}
			defer l.Sync()

			ctx, err := withSession(cmd.Context(), c, l)
			if err != nil {
				return err
			}
			api, err := newClient(c, l)
			if err != nil {
				return err
			}

			if pageSize <= 0 {
				pageSize = c.API.PageSize
			}
			result, err := api.List(ctx, client.ListRequest{
				Period:   p,
				Page:     page,
				PageSize: pageSize,
			})
			if err != nil {
				return err
			}

			l.Debug("listed",
				zap.String("period", p.String()),
				zap.Int("records", result.Len()),
			)
			return writePage(cmd.OutOrStdout(), output, result)
		},
	}

	periodFlags(cmd, &start, &end)
	cmd.Flags().IntVar(&page, "page", 1, "Page number, starting at 1")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "Files per page (defaults to api.page_size)")
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "Output format: table, json or csv")

	return cmd
}

type pageOutput struct {
	Items      []arquivo.File `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}

func writePage(w io.Writer, output string, page *normalize.Page) error {
	files := arquivo.FromPage(*page)

	switch output {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(pageOutput{
			Items:      files,
			Total:      page.Total,
			Page:       page.Page,
			PageSize:   page.PageSize,
			TotalPages: page.TotalPages(),
		})
	case outputCSV:
		return export.Encode(w, export.FormatCSV, files)
	case outputTable, "":
	default:
		return fmt.Errorf("unknown output format: %q", output)
	}

	if len(files) == 0 {
		fmt.Fprintln(w, "No files uploaded in this period.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFILE\tTOTAL\tACCEPTED\tNO DOC\tCODED ERR\tGENERIC ERR")
	for _, f := range files {
		id := f.ID
		if !f.HasID() {
			id = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%d\n",
			id, f.FileName, f.TotalRecords, f.Accepted, f.MissingDocuments, f.CodedErrors, f.GenericErrors)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\npage %d of %d, %d files\n", page.Page, page.TotalPages(), page.Total)
	return nil
}
