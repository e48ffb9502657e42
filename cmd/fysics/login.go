package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"fysics/internal/config"
	"fysics/internal/domain"
)

func newLoginCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login [host-code]",
		Short: "Verify a host code against the backend and cache it locally.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cfg)
			if err != nil {
				return err
			}

			code := ""
			if len(args) == 1 {
				code = args[0]
			} else {
				con := newConsole(cmd.InOrStdin(), cmd.OutOrStdout())
				code, _ = con.prompt("Host code")
			}
			if code == "" {
				return errors.New("no host code given")
			}

			res := e.client.HostLogin(cmd.Context(), code)
			switch {
			case res.Status == 0:
				return fmt.Errorf("could not reach the backend: %s", res.Err)
			case res.Unauthorized(), !res.OK:
				return domain.ErrNotAuthorized
			}

			if err := e.store.SetHostCode(code); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Host code accepted and cached.")
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Forget the cached host code.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cfg)
			if err != nil {
				return err
			}
			if err := e.store.ClearHostCode(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Host code cleared.")
			return nil
		},
	})

	return cmd
}
