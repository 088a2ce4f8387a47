package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/turbolytics/arquivo/internal/session"
)

func newLoginCommand(a *app) *cobra.Command {
	var canUpload bool
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "login <user>",
		Short: "Starts a session for the given user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, l, err := a.setup("login")
			if err != nil {
				return err
			}
			defer l.Sync()

			if ttl <= 0 {
				ttl = c.Session.TTL
			}
			sess, err := session.New(args[0], canUpload, ttl, time.Now())
			if err != nil {
				return err
			}
			if err := newStore(c, l).Save(cmd.Context(), sess); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s until %s\n",
				sess.User, sess.ExpiresAt.Local().Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().BoolVar(&canUpload, "can-upload", true, "Whether the session may upload files")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Session lifetime (defaults to session.ttl)")
	return cmd
}

func newLogoutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Ends the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, l, err := a.setup("logout")
			if err != nil {
				return err
			}
			defer l.Sync()

			if err := newStore(c, l).Delete(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}
