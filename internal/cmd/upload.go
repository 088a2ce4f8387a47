package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/turbolytics/arquivo/internal/client"
	"github.com/turbolytics/arquivo/internal/tui"
)

func newUploadCommand(a *app) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Uploads a file to the backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, l, err := a.setup("upload")
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

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			id, err := api.Upload(ctx, client.UploadRequest{
				FileName: filepath.Base(args[0]),
				Content:  f,
				Fields:   map[string]string{tui.DescriptionField: description},
			})
			if err != nil {
				return err
			}

			l.Debug("upload finished", zap.String("id", id))
			if id == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "upload accepted, no identifier returned")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Optional description sent with the file")
	return cmd
}
