package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/granjalink/farm-backend-go/internal/domain/auth"
)

func newLoginCmd(opts *options) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Example: `  farmctl login --email ana@granja.test --password secreto
  FARM_PASSWORD=secreto farmctl login --email ana@granja.test`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				password = opts.app.cfg.Password
			}
			req := auth.LoginRequest{Email: email, Password: password}
			if err := req.Validate(); err != nil {
				return err
			}

			session, err := opts.app.auth.SignIn(cmd.Context(), email, password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			p, _ := opts.printer(cmd)
			return p.message(session.User, "Signed in as "+session.User.Email)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (or FARM_PASSWORD)")
	return cmd
}

func newLogoutCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and remove the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// the local session is gone either way
			if err := opts.app.auth.SignOut(cmd.Context()); err != nil {
				opts.app.logger.Warn("Server sign out failed", "error", err)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return err
		},
	}
}

func newWhoamiCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user and role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.app.requireSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			st := s.store.Snapshot()
			me := auth.MeResponse{User: *st.Identity, Profile: st.Profile}

			name, role := "-", "-"
			if st.Profile != nil {
				name, role = st.Profile.FullName, string(st.Profile.Role)
			}
			if st.Err != nil {
				opts.app.logger.Warn("Session is degraded", "error", st.Err.Error())
			}

			p, _ := opts.printer(cmd)
			return p.print(me,
				[]string{"ID", "EMAIL", "NAME", "ROLE", "CAN EDIT", "ADMIN"},
				[][]string{{st.Identity.ID, st.Identity.Email, name, role, strconv.FormatBool(st.CanEdit()), strconv.FormatBool(st.IsAdmin())}},
			)
		},
	}
}
