package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rep-nop/application-services/guid"
	"github.com/rep-nop/application-services/logins"
)

func newLoginsCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "logins",
		Short: "Operate on a logins (password store) database",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "logins.db", "path to the logins database")

	open := func() (*logins.Store, error) {
		return logins.Open(dbPath)
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List stored logins as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open()
			if err != nil {
				return err
			}
			defer s.Close()

			all, err := s.List(cmd.Context())
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(all, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	add := &cobra.Command{
		Use:   "add <login-json>",
		Short: "Add a login from its JSON form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var l logins.Login
			if err := json.Unmarshal([]byte(args[0]), &l); err != nil {
				return fmt.Errorf("parsing login: %w", err)
			}
			s, err := open()
			if err != nil {
				return err
			}
			defer s.Close()

			added, err := s.Add(cmd.Context(), l)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), added.ID)
			return nil
		},
	}

	touch := &cobra.Command{
		Use:   "touch <id>",
		Short: "Record a use of a login",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open()
			if err != nil {
				return err
			}
			defer s.Close()
			return s.Touch(cmd.Context(), guid.GUID(args[0]))
		},
	}

	cmd.AddCommand(list, add, touch)
	return cmd
}
