package cli

import (
	"context"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/idilsaglam/issuetracker/internal/condition"
	"github.com/idilsaglam/issuetracker/internal/editor"
	"github.com/idilsaglam/issuetracker/internal/host"
	"github.com/idilsaglam/issuetracker/internal/printing"
	"github.com/idilsaglam/issuetracker/internal/tui"
	"github.com/idilsaglam/issuetracker/internal/ui"
)

const debugLogFile = "issues-debug.log"

func newRecommendCmd(a *app) *cobra.Command {
	var (
		apply   bool
		issueID int
	)
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Ask the backend for an issue based on customer feedback",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			rec := a.recommender()
			if rec == nil {
				return usagef("no backend configured: set backend-url or ISSUES_BACKEND_URL")
			}
			t := a.translator().Translate
			if !apply {
				if a.cfg.Resource == "" {
					return usagef("no resource selected: pass --resource or set ISSUES_RESOURCE")
				}
				sug, err := rec.Recommend(cmd.Context(), a.cfg.Resource)
				if err != nil {
					return err
				}
				if sug == nil {
					fmt.Fprintln(ui.Stdout, ui.C(ui.Current().Muted, t("recommend-none")))
					return nil
				}
				ui.Panel(ui.Stdout, []string{
					ui.C(ui.Current().Title, sug.Title),
					ui.C(ui.Current().Muted, sug.Description),
				})
				return nil
			}

			var target *int
			if cmd.Flags().Changed("issue-id") {
				target = &issueID
			}
			s, err := a.editorSession(cmd, target, editor.WithRecommender(rec))
			if err != nil {
				return err
			}
			changed, err := s.Recommend(cmd.Context())
			if err != nil {
				return err
			}
			if !changed {
				fmt.Fprintln(ui.Stdout, ui.C(ui.Current().Muted, t("recommend-none")))
				return nil
			}
			verb := "added"
			if s.Editing() {
				verb = "updated"
			}
			return a.submit(cmd, s, verb)
		},
	}
	cmd.Flags().BoolVar(&apply, "apply", false, "save the suggestion as an issue")
	cmd.Flags().IntVar(&issueID, "issue-id", 0, "with --apply, overwrite this issue instead of creating one")
	return cmd
}

// tuiLogger keeps log lines off the alternate screen: debug output goes to a
// file, everything else is dropped.
func (a *app) tuiLogger() (*slog.Logger, error) {
	if !a.logger.Enabled(context.Background(), slog.LevelDebug) {
		return discardLogger(), nil
	}
	f, err := tea.LogToFile(debugLogFile, "issues")
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", debugLogFile, err)
	}
	a.closers = append(a.closers, func() { _ = f.Close() })
	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})), nil
}

func (a *app) runTUI(cmd *cobra.Command, start string) error {
	if a.cfg.Resource == "" {
		return usagef("no resource selected: pass --resource or set ISSUES_RESOURCE")
	}
	logger, err := a.tuiLogger()
	if err != nil {
		return err
	}
	a.logger = logger
	st, exec, err := a.openStore(cmd.Context())
	if err != nil {
		return err
	}
	opts := tui.Options{
		Store:      st,
		ResourceID: a.cfg.Resource,
		Translator: a.translator(),
		Autosave:   a.cfg.Autosave,
		Start:      start,
		Logger:     logger,
	}
	if rec := a.recommender(); rec != nil {
		opts.Recommender = rec
	}
	if exec != nil {
		resource := a.cfg.Resource
		opts.ShouldRender = func(ctx context.Context) (bool, error) {
			return condition.ShouldRender(ctx, exec, resource)
		}
	}
	return tui.Run(cmd.Context(), opts)
}

func newBlockCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "block",
		Short: "Open the interactive issue list",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runTUI(cmd, host.BlockExtension)
		},
	}
}

func newActionCmd(a *app) *cobra.Command {
	var issueID int
	cmd := &cobra.Command{
		Use:   "action",
		Short: "Open the interactive issue form",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			var target *int
			if cmd.Flags().Changed("issue-id") {
				target = &issueID
			}
			return a.runTUI(cmd, host.ActionTarget(target))
		},
	}
	cmd.Flags().IntVar(&issueID, "issue-id", 0, "issue to edit; omit to create")
	return cmd
}

func newPrintCmd(a *app) *cobra.Command {
	var (
		sel  printing.Selection
		html bool
	)
	cmd := &cobra.Command{
		Use:   "print <order-id>",
		Short: "Build the print source for an order's documents",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orderID := args[0]
			src := printing.Source(orderID, sel)
			if src == "" {
				return usagef("%s", a.translator().Translate("print-none"))
			}
			if html {
				return printing.Render(ui.Stdout, orderID, sel.Kinds())
			}
			fmt.Fprintln(ui.Stdout, a.cfg.BackendURL+src)
			return nil
		},
	}
	cmd.Flags().BoolVar(&sel.Invoice, "invoice", true, "include the invoice (--invoice=false to leave it out)")
	cmd.Flags().BoolVar(&sel.PackingSlip, "packing-slip", false, "include the packing slip")
	cmd.Flags().BoolVar(&html, "html", false, "render the documents instead of printing the URL")
	return cmd
}

func newShouldRenderCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "should-render",
		Short: "Report whether the product has enough variants to show the surfaces",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.Resource == "" {
				return usagef("no resource selected: pass --resource or set ISSUES_RESOURCE")
			}
			exec, err := a.executor()
			if err != nil {
				return err
			}
			if exec == nil {
				return usagef("should-render needs the shopify store")
			}
			n, err := condition.VariantsCount(cmd.Context(), exec, a.cfg.Resource)
			if err != nil {
				return err
			}
			render := n > condition.MinVariants
			fmt.Fprintf(ui.Stdout, "variants: %d\nrender: %t\n", n, render)
			return nil
		},
	}
}
