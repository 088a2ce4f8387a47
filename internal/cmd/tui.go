package cmd

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/turbolytics/arquivo/internal/tui"
)

func newTUICommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Opens the interactive terminal interface",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, l, err := a.setup("tui")
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

			p := tea.NewProgram(
				tui.NewModel(ctx, api, c.API.PageSize),
				tea.WithAltScreen(),
				tea.WithContext(ctx),
			)
			_, err = p.Run()
			return err
		},
	}
}
