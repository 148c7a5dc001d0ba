package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/issuetracker/internal/auth"
	"github.com/idilsaglam/issuetracker/internal/ui"
)

func newAuthCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the admin API access token",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return usagef("usage: issues auth <login|logout|status>")
		},
	}
	cmd.AddCommand(newAuthLoginCmd(a), newAuthLogoutCmd(), newAuthStatusCmd(a))
	return cmd
}

func newAuthLoginCmd(a *app) *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an access token in ~/.issues/credentials.json",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if token == "" {
				fmt.Fprint(ui.Stdout, "Paste your token: ")
				sc := bufio.NewScanner(cmd.InOrStdin())
				if !sc.Scan() {
					if err := sc.Err(); err != nil {
						return fmt.Errorf("read token: %w", err)
					}
					return usagef("read token: no input")
				}
				token = strings.TrimSpace(sc.Text())
			}
			if err := auth.SetToken(token, a.cfg.Shop); err != nil {
				return fmt.Errorf("save token: %w", err)
			}
			ui.OK("logged in")
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "token to store (prompted when empty)")
	return cmd
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Delete the stored access token",
		Args:  exactArgs(0),
		RunE: func(*cobra.Command, []string) error {
			ti, _ := auth.GetToken()
			if ti != nil && ti.Source == "env" {
				ui.OK("token is provided by " + auth.EnvToken + " env var (nothing to delete)")
				return nil
			}
			if err := auth.DeleteToken(); err != nil {
				return fmt.Errorf("logout: %w", err)
			}
			ui.OK("logged out")
			return nil
		},
	}
}

func newAuthStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show where the access token comes from",
		Args:  exactArgs(0),
		RunE: func(*cobra.Command, []string) error {
			muted := ui.Current().Muted
			ti, err := auth.GetToken()
			if errors.Is(err, auth.ErrNoToken) {
				fmt.Fprintln(ui.Stdout, ui.C(muted, "not logged in"))
				fmt.Fprintln(ui.Stdout, "Run: issues auth login")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(ui.Stdout, "source: %s\n", ti.Source)
			fmt.Fprintf(ui.Stdout, "token: %s\n", auth.Mask(ti.Token))
			if shop := firstNonEmpty(ti.Shop, a.cfg.Shop); shop != "" {
				fmt.Fprintf(ui.Stdout, "shop: %s\n", shop)
			}
			if a.cfg.File != "" {
				fmt.Fprintf(ui.Stdout, "config: %s\n", a.cfg.File)
			}
			fmt.Fprintln(ui.Stdout, ui.C(muted, "env override: "+auth.EnvToken))
			return nil
		},
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
