package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/issuetracker/internal/editor"
	"github.com/idilsaglam/issuetracker/internal/host"
	"github.com/idilsaglam/issuetracker/internal/model"
	"github.com/idilsaglam/issuetracker/internal/tracker"
	"github.com/idilsaglam/issuetracker/internal/ui"
)

func newListCmd(a *app) *cobra.Command {
	var (
		page int
		all  bool
	)
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List the issues of the selected resource, one page at a time",
		Args:    exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.trackerSession(cmd)
			if err != nil {
				return err
			}
			return a.printList(s, page, all)
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page to show")
	cmd.Flags().BoolVar(&all, "all", false, "show every issue on one page")
	return cmd
}

func (a *app) trackerSession(cmd *cobra.Command) (*tracker.Session, error) {
	hc, err := a.hostContext(host.BlockExtension)
	if err != nil {
		return nil, err
	}
	st, _, err := a.openStore(cmd.Context())
	if err != nil {
		return nil, err
	}
	s, err := tracker.New(hc, st, tracker.WithLogger(a.logger))
	if err != nil {
		return nil, err
	}
	if err := s.Load(cmd.Context()); err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	return s, nil
}

func (a *app) printList(s *tracker.Session, page int, all bool) error {
	t := a.translator()
	issues := s.Issues()
	rows := issues
	if !all {
		s.SetPage(page)
		rows = s.Page()
	}

	th := ui.Current()
	done, open := model.Stats(issues)
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		ui.C(th.Title, t.Translate("issues")),
		ui.C(th.Success, th.SymDone), done,
		ui.C(th.Pending, th.SymOpen), open,
		ui.C(th.Accent, "Total"), len(issues),
	)

	lines := []string{header, ui.C(th.Muted, ui.ProgressBar(done, done+open, 28)), ""}
	lines = append(lines, issueLines(rows, t.Translate)...)
	if !all && s.TotalPages() > 1 {
		lines = append(lines, "", ui.C(th.Muted, fmt.Sprintf("page %d/%d", s.CurrentPage(), s.TotalPages())))
	}
	lines = append(lines, "", ui.C(th.Muted, "Tip: add with `issues add --title ... --description ...`"))
	ui.Panel(ui.Stdout, lines)
	return nil
}

func issueLines(issues []model.Issue, t func(string) string) []string {
	th := ui.Current()
	if len(issues) == 0 {
		return []string{ui.C(th.Muted, t("no-issues"))}
	}
	out := make([]string, 0, 2*len(issues))
	for _, it := range issues {
		box, color, status := th.BoxTodo, th.Muted, t("status-todo")
		if it.Completed {
			box, color, status = th.BoxCompleted, th.Success, t("status-completed")
		}
		out = append(out, fmt.Sprintf("%s %s %s  %s",
			ui.C(ui.Dim, fmt.Sprintf("#%-3d", it.ID)),
			ui.C(color, box),
			ui.Truncate(it.Title, 60),
			ui.C(color, status)))
		if it.Description != "" {
			out = append(out, "     "+ui.C(th.Muted, ui.Truncate(it.Description, 70)))
		}
	}
	return out
}

// formError turns field flags into the messages the form would show.
func formError(errs model.FormErrors, t func(string) string) error {
	var msgs []string
	if errs.Title {
		msgs = append(msgs, t("issue-title-error"))
	}
	if errs.Description {
		msgs = append(msgs, t("issue-description-error"))
	}
	return usagef("%s", strings.Join(msgs, "; "))
}

func (a *app) editorSession(cmd *cobra.Command, issueID *int, opts ...editor.Option) (*editor.Session, error) {
	hc, err := a.hostContext(host.ActionTarget(issueID))
	if err != nil {
		return nil, err
	}
	st, _, err := a.openStore(cmd.Context())
	if err != nil {
		return nil, err
	}
	s, err := editor.New(hc, st, append(opts, editor.WithLogger(a.logger))...)
	if err != nil {
		return nil, err
	}
	if err := s.Load(cmd.Context()); err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	return s, nil
}

func (a *app) submit(cmd *cobra.Command, s *editor.Session, verb string) error {
	v, err := s.Submit(cmd.Context())
	if errors.Is(err, editor.ErrInvalid) {
		return formError(v.Errors, a.translator().Translate)
	}
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}
	saved, _ := s.Saved()
	ui.OK(fmt.Sprintf("%s #%d", verb, saved.ID))
	return nil
}

func newAddCmd(a *app) *cobra.Command {
	var title, description string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an issue",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.editorSession(cmd, nil)
			if err != nil {
				return err
			}
			s.SetTitle(title)
			s.SetDescription(description)
			return a.submit(cmd, s, "added")
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "issue title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "issue description")
	return cmd
}

func newEditCmd(a *app) *cobra.Command {
	var title, description string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the title or description of an issue",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := a.editorSession(cmd, &id)
			if err != nil {
				return err
			}
			if !s.Editing() {
				ui.Hint("run `issues ls` to see valid ids")
				return usageError{fmt.Errorf("issue %d: %w", id, model.ErrNotFound)}
			}
			if cmd.Flags().Changed("title") {
				s.SetTitle(title)
			}
			if cmd.Flags().Changed("description") {
				s.SetDescription(description)
			}
			return a.submit(cmd, s, "updated")
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	return cmd
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <todo|completed>",
		Short: "Set the status of an issue",
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if _, err := model.ParseStatus(args[1]); err != nil {
				return usageError{err}
			}
			s, err := a.trackerSession(cmd)
			if err != nil {
				return err
			}
			if err := s.ChangeStatus(cmd.Context(), id, args[1]); err != nil {
				if errors.Is(err, model.ErrNotFound) {
					ui.Hint("run `issues ls` to see valid ids")
					return usageError{err}
				}
				return err
			}
			if err := s.Flush(cmd.Context()); err != nil {
				return fmt.Errorf("save: %w", err)
			}
			ui.OK(fmt.Sprintf("#%d %s", id, args[1]))
			return nil
		},
	}
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete an issue",
		Args:    exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := a.trackerSession(cmd)
			if err != nil {
				return err
			}
			if _, ok := model.Find(s.Issues(), id); !ok {
				ui.Hint("run `issues ls` to see valid ids")
				return usageError{fmt.Errorf("issue %d: %w", id, model.ErrNotFound)}
			}
			if err := s.Delete(cmd.Context(), id); err != nil {
				return fmt.Errorf("save: %w", err)
			}
			ui.OK(fmt.Sprintf("removed #%d", id))
			return nil
		},
	}
}
