package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/turbolytics/arquivo/internal/arquivo"
)

func newShowCommand(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Shows the detail of one uploaded file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, l, err := a.setup("show")
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

			f, err := api.Get(ctx, args[0])
			if err != nil {
				return err
			}
			return writeFile(cmd.OutOrStdout(), output, f)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "Output format: table or json")
	return cmd
}

func writeFile(w io.Writer, output string, f *arquivo.File) error {
	switch output {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(f)
	case outputTable, "":
	default:
		return fmt.Errorf("unknown output format: %q", output)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "id:\t%s\n", f.ID)
	fmt.Fprintf(tw, "file:\t%s\n", f.FileName)
	fmt.Fprintf(tw, "total records:\t%d\n", f.TotalRecords)
	fmt.Fprintf(tw, "accepted:\t%d\n", f.Accepted)
	fmt.Fprintf(tw, "missing documents:\t%d\n", f.MissingDocuments)
	fmt.Fprintf(tw, "coded errors:\t%d\n", f.CodedErrors)
	fmt.Fprintf(tw, "generic errors:\t%d\n", f.GenericErrors)
	if f.UploadedAt != "" {
		fmt.Fprintf(tw, "uploaded at:\t%s\n", f.UploadedAt)
	}
	if f.UploadedBy != "" {
		fmt.Fprintf(tw, "uploaded by:\t%s\n", f.UploadedBy)
	}
	return tw.Flush()
}
