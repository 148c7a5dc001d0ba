package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/issuetracker/internal/host"
	"github.com/idilsaglam/issuetracker/internal/model"
	"github.com/idilsaglam/issuetracker/internal/store"
	"github.com/idilsaglam/issuetracker/internal/tracker"
	"github.com/idilsaglam/issuetracker/internal/ui"
)

// RenderCheck decides whether the block shows its issues at all.
type RenderCheck func(ctx context.Context) (bool, error)

type BlockOptions struct {
	Autosave     bool
	ShouldRender RenderCheck
	Logger       *slog.Logger
}

type blockLoadedMsg struct {
	hidden bool
	err    error
}

type blockOpMsg struct {
	op  string
	err error
}

// Block is the list surface: one page of issues with status toggles,
// deletes, and navigation to the action surface.
type Block struct {
	ctx          context.Context
	host         host.Context
	session      *tracker.Session
	shouldRender RenderCheck
	logger       *slog.Logger

	spinner spinner.Model
	pager   paginator.Model
	help    help.Model
	keys    blockKeys

	loading     bool
	hidden      bool
	busy        bool
	confirmQuit bool
	cursor      int
	flash       string
	err         error
}

func NewBlock(ctx context.Context, hc host.Context, st store.Store, opts BlockOptions) (Block, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s, err := tracker.New(hc, st,
		tracker.WithAutosave(opts.Autosave),
		tracker.WithLogger(logger))
	if err != nil {
		return Block{}, err
	}
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = accentStyle
	pg := paginator.New()
	pg.Type = paginator.Dots
	pg.ActiveDot = accentStyle.Render("•")
	pg.InactiveDot = mutedStyle.Render("•")
	return Block{
		ctx:          ctx,
		host:         hc,
		session:      s,
		shouldRender: opts.ShouldRender,
		logger:       logger,
		spinner:      sp,
		pager:        pg,
		help:         help.New(),
		keys:         newBlockKeys(),
		loading:      true,
	}, nil
}

func (b Block) Init() tea.Cmd {
	return tea.Batch(b.spinner.Tick, b.load())
}

func (b Block) load() tea.Cmd {
	ctx, s, check := b.ctx, b.session, b.shouldRender
	return func() tea.Msg {
		if check != nil {
			ok, err := check(ctx)
			if err != nil {
				return blockLoadedMsg{err: err}
			}
			if !ok {
				return blockLoadedMsg{hidden: true}
			}
		}
		return blockLoadedMsg{err: s.Load(ctx)}
	}
}

func (b Block) run(op string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := b.ctx
	return func() tea.Msg {
		return blockOpMsg{op: op, err: fn(ctx)}
	}
}

func (b Block) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case blockLoadedMsg:
		if errors.Is(msg.err, tracker.ErrClosed) || errors.Is(msg.err, tracker.ErrStale) {
			return b, nil
		}
		b.loading = false
		b.hidden = msg.hidden
		b.err = msg.err
		b.sync()
		return b, nil

	case blockOpMsg:
		b.busy = false
		b.err = msg.err
		if msg.err == nil {
			b.flash = msg.op
		} else {
			b.logger.Warn("issue operation failed", "op", msg.op, "err", msg.err)
		}
		b.sync()
		return b, nil

	case spinner.TickMsg:
		if !b.loading && !b.busy {
			return b, nil
		}
		var cmd tea.Cmd
		b.spinner, cmd = b.spinner.Update(msg)
		return b, cmd

	case tea.WindowSizeMsg:
		b.help.Width = msg.Width
		return b, nil

	case tea.KeyMsg:
		return b.handleKey(msg)
	}
	return b, nil
}

func (b Block) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, b.keys.Quit) {
		if b.session.Dirty() && !b.confirmQuit {
			b.confirmQuit = true
			b.flash = "unsaved changes, press q again to discard"
			return b, nil
		}
		b.session.Close()
		b.host.Done()
		return b, nil
	}
	b.confirmQuit = false
	if b.loading || b.hidden || b.busy {
		return b, nil
	}
	b.flash = ""
	b.err = nil

	switch {
	case key.Matches(msg, b.keys.Up):
		if b.cursor > 0 {
			b.cursor--
		}
	case key.Matches(msg, b.keys.Down):
		if b.cursor < len(b.session.Page())-1 {
			b.cursor++
		}
	case key.Matches(msg, b.keys.Prev):
		if b.session.PreviousPage() {
			b.cursor = 0
		}
		b.sync()
	case key.Matches(msg, b.keys.Next):
		if b.session.NextPage() {
			b.cursor = 0
		}
		b.sync()
	case key.Matches(msg, b.keys.Toggle):
		it, ok := b.selected()
		if !ok {
			return b, nil
		}
		b.busy = true
		s := b.session
		return b, b.run("", func(ctx context.Context) error { return s.Toggle(ctx, it.ID) })
	case key.Matches(msg, b.keys.Delete):
		it, ok := b.selected()
		if !ok {
			return b, nil
		}
		b.busy = true
		s := b.session
		return b, b.run(fmt.Sprintf("deleted #%d", it.ID), func(ctx context.Context) error { return s.Delete(ctx, it.ID) })
	case key.Matches(msg, b.keys.Submit):
		b.busy = true
		return b, b.run("saved", b.session.Submit)
	case key.Matches(msg, b.keys.Reset):
		b.session.Reset()
		b.sync()
	case key.Matches(msg, b.keys.Add):
		b.err = b.session.AddIssue()
	case key.Matches(msg, b.keys.Edit):
		if it, ok := b.selected(); ok {
			b.err = b.session.EditIssue(it.ID)
		}
	}
	return b, nil
}

func (b Block) selected() (model.Issue, bool) {
	page := b.session.Page()
	if b.cursor < 0 || b.cursor >= len(page) {
		return model.Issue{}, false
	}
	return page[b.cursor], true
}

// sync copies paging state into the paginator and keeps the cursor on a row.
func (b *Block) sync() {
	b.pager.TotalPages = b.session.TotalPages()
	b.pager.Page = b.session.CurrentPage() - 1
	if n := len(b.session.Page()); b.cursor >= n {
		b.cursor = max(n-1, 0)
	}
}

func (b Block) View() string {
	t := b.host.T
	var sb strings.Builder

	if b.loading {
		sb.WriteString(titleStyle.Render(t("issues")) + "\n\n")
		sb.WriteString(b.spinner.View() + " " + mutedStyle.Render(t("loading")))
		return frame(sb.String())
	}
	if b.hidden {
		sb.WriteString(titleStyle.Render(t("issues")) + "\n\n")
		sb.WriteString(mutedStyle.Render(t("not-enough-variants")))
		if b.err != nil {
			sb.WriteString("\n" + errorStyle.Render(b.err.Error()))
		}
		return frame(sb.String())
	}

	done, open := model.Stats(b.session.Issues())
	fmt.Fprintf(&sb, "%s   %s %d  %s %d  %s %d\n\n",
		titleStyle.Render(t("issues")),
		successStyle.Render("✔"), done,
		pendingStyle.Render("•"), open,
		accentStyle.Render("Total"), done+open)

	page := b.session.Page()
	if len(page) == 0 {
		sb.WriteString(mutedStyle.Render(t("no-issues")) + "\n")
	}
	for i, it := range page {
		box, status := mutedStyle.Render(boxUnchecked), mutedStyle.Render(t("status-todo"))
		title := ui.Truncate(it.Title, 60)
		if it.Completed {
			box, status = successStyle.Render(boxChecked), successStyle.Render(t("status-completed"))
			title = doneStyle.Render(title)
		}
		prefix := "  "
		if i == b.cursor {
			prefix = selectedStyle.Render("> ")
		}
		fmt.Fprintf(&sb, "%s%s %s  %s\n", prefix, box, title, status)
		if it.Description != "" {
			sb.WriteString("    " + mutedStyle.Render(ui.Truncate(it.Description, 70)) + "\n")
		}
	}

	if b.session.TotalPages() > 1 {
		prev, next := mutedStyle.Render("‹"), mutedStyle.Render("›")
		if b.session.HasPreviousPage() {
			prev = accentStyle.Render("‹")
		}
		if b.session.HasNextPage() {
			next = accentStyle.Render("›")
		}
		fmt.Fprintf(&sb, "\n%s %s %s  %s\n", prev, b.pager.View(), next,
			mutedStyle.Render(fmt.Sprintf("%d/%d", b.session.CurrentPage(), b.session.TotalPages())))
	}

	if b.session.Dirty() {
		sb.WriteString("\n" + pendingStyle.Render("● "+t("submit")+" (ctrl+s) · "+t("reset")+" (r)"))
	}
	if b.busy {
		sb.WriteString("\n" + b.spinner.View())
	}
	if b.flash != "" {
		sb.WriteString("\n" + successStyle.Render(b.flash))
	}
	if b.err != nil {
		sb.WriteString("\n" + errorStyle.Render(b.err.Error()))
	}
	sb.WriteString("\n\n" + b.help.View(b.keys))
	return frame(sb.String())
}
