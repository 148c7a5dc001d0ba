package tui

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/issuetracker/internal/editor"
	"github.com/idilsaglam/issuetracker/internal/host"
	"github.com/idilsaglam/issuetracker/internal/model"
	"github.com/idilsaglam/issuetracker/internal/store"
)

const (
	titleLimit       = 50
	descriptionLimit = 300
)

type ActionOptions struct {
	Recommender editor.Recommender
	// ShouldRender hides the form when it reports false.
	ShouldRender RenderCheck
	Logger       *slog.Logger
}

type actionLoadedMsg struct {
	hidden bool
	err    error
}

type actionSubmittedMsg struct {
	validation model.Validation
	err        error
}

type actionRecommendedMsg struct {
	changed bool
	err     error
}

// Action is the create/edit form surface.
type Action struct {
	ctx          context.Context
	host         host.Context
	session      *editor.Session
	canRecommend bool
	shouldRender RenderCheck
	logger       *slog.Logger

	title   textinput.Model
	desc    textarea.Model
	focus   int
	spinner spinner.Model
	help    help.Model
	keys    actionKeys

	hidden bool
	flash  string
	err    error
}

func NewAction(ctx context.Context, hc host.Context, st store.Store, opts ActionOptions) (Action, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	edOpts := []editor.Option{editor.WithLogger(logger)}
	if opts.Recommender != nil {
		edOpts = append(edOpts, editor.WithRecommender(opts.Recommender))
	}
	s, err := editor.New(hc, st, edOpts...)
	if err != nil {
		return Action{}, err
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = hc.T("issue-title-label")
	ti.CharLimit = titleLimit

	ta := textarea.New()
	ta.Placeholder = hc.T("issue-description-label")
	ta.CharLimit = descriptionLimit
	ta.ShowLineNumbers = false
	ta.SetWidth(60)
	ta.SetHeight(5)

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = accentStyle

	return Action{
		ctx:          ctx,
		host:         hc,
		session:      s,
		canRecommend: opts.Recommender != nil,
		shouldRender: opts.ShouldRender,
		logger:       logger,
		title:        ti,
		desc:         ta,
		spinner:      sp,
		help:         help.New(),
		keys:         newActionKeys(),
	}, nil
}

func (a Action) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.load())
}

func (a Action) load() tea.Cmd {
	ctx, s, check := a.ctx, a.session, a.shouldRender
	return func() tea.Msg {
		if check != nil {
			ok, err := check(ctx)
			if err != nil {
				return actionLoadedMsg{err: err}
			}
			if !ok {
				return actionLoadedMsg{hidden: true}
			}
		}
		return actionLoadedMsg{err: s.Load(ctx)}
	}
}

func (a Action) submit() tea.Cmd {
	ctx, s := a.ctx, a.session
	return func() tea.Msg {
		v, err := s.Submit(ctx)
		return actionSubmittedMsg{validation: v, err: err}
	}
}

func (a Action) recommend() tea.Cmd {
	ctx, s := a.ctx, a.session
	return func() tea.Msg {
		changed, err := s.Recommend(ctx)
		return actionRecommendedMsg{changed: changed, err: err}
	}
}

func (a Action) busy() bool {
	return a.session.State() != editor.Ready || a.session.Recommending()
}

func (a Action) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case actionLoadedMsg:
		a.err = msg.err
		a.hidden = msg.hidden
		if msg.err != nil || msg.hidden {
			return a, nil
		}
		a.fill()
		return a, a.focusField(0)

	case actionSubmittedMsg:
		if errors.Is(msg.err, editor.ErrInvalid) {
			a.err = nil
			return a, nil
		}
		a.err = msg.err
		return a, nil

	case actionRecommendedMsg:
		a.err = msg.err
		switch {
		case msg.err != nil:
			a.logger.Warn("recommendation failed", "err", msg.err)
		case msg.changed:
			a.fill()
			a.flash = ""
		default:
			a.flash = a.host.T("recommend-none")
		}
		return a, nil

	case spinner.TickMsg:
		if !a.busy() {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tea.WindowSizeMsg:
		a.help.Width = msg.Width
		if w := msg.Width - 8; w > 20 {
			a.desc.SetWidth(w)
		}
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}
	return a, nil
}

func (a Action) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, a.keys.Cancel) {
		a.session.Cancel()
		return a, nil
	}
	if a.busy() {
		return a, nil
	}

	switch {
	case key.Matches(msg, a.keys.Next), key.Matches(msg, a.keys.Prev):
		return a, a.focusField(1 - a.focus)
	case key.Matches(msg, a.keys.Submit),
		a.focus == 0 && msg.Type == tea.KeyEnter:
		a.store()
		a.flash = ""
		return a, a.submit()
	case key.Matches(msg, a.keys.Recommend):
		if !a.canRecommend {
			return a, nil
		}
		a.store()
		return a, tea.Batch(a.recommend(), a.spinner.Tick)
	}

	var cmd tea.Cmd
	if a.focus == 0 {
		a.title, cmd = a.title.Update(msg)
	} else {
		a.desc, cmd = a.desc.Update(msg)
	}
	a.store()
	return a, cmd
}

func (a *Action) focusField(i int) tea.Cmd {
	a.focus = i
	if i == 0 {
		a.desc.Blur()
		return a.title.Focus()
	}
	a.title.Blur()
	return a.desc.Focus()
}

// fill copies the session's form values into the inputs.
func (a *Action) fill() {
	title, desc := a.session.Fields()
	a.title.SetValue(title)
	a.title.CursorEnd()
	a.desc.SetValue(desc)
}

// store copies the inputs into the session.
func (a *Action) store() {
	a.session.SetTitle(a.title.Value())
	a.session.SetDescription(a.desc.Value())
}

func (a Action) View() string {
	t := a.host.T
	var sb strings.Builder

	heading := t("issue-create-heading")
	button := t("issue-create-button")
	if a.session.Editing() {
		heading, button = t("issue-edit-heading"), t("issue-save-button")
	}
	sb.WriteString(titleStyle.Render(heading) + "\n")

	if a.hidden {
		sb.WriteString("\n" + mutedStyle.Render(t("not-enough-variants")))
		sb.WriteString("\n\n" + mutedStyle.Render("[esc] "+t("issue-cancel-button")))
		return frame(sb.String())
	}
	if a.session.State() == editor.Loading {
		if a.err != nil {
			sb.WriteString("\n" + errorStyle.Render(a.err.Error()))
		} else {
			sb.WriteString("\n" + a.spinner.View() + " " + mutedStyle.Render(t("loading")))
		}
		return frame(sb.String())
	}
	if a.session.Missing() {
		sb.WriteString(pendingStyle.Render(t("issue-missing")) + "\n")
	}
	if a.canRecommend {
		sb.WriteString(mutedStyle.Render(t("recommend-banner")) + "  " +
			accentStyle.Render("[ctrl+g] "+t("recommend-button")) + "\n")
	}

	errs := a.session.Errors()
	sb.WriteString("\n" + labelStyle.Render(t("issue-title-label")) + "\n")
	sb.WriteString(a.title.View() + "\n")
	if errs.Title {
		sb.WriteString(errorStyle.Render(t("issue-title-error")) + "\n")
	}
	sb.WriteString("\n" + labelStyle.Render(t("issue-description-label")) + "\n")
	sb.WriteString(a.desc.View() + "\n")
	if errs.Description {
		sb.WriteString(errorStyle.Render(t("issue-description-error")) + "\n")
	}

	sb.WriteString("\n" + accentStyle.Render("[ctrl+s] "+button) + "  " +
		mutedStyle.Render("[esc] "+t("issue-cancel-button")))
	if a.busy() {
		sb.WriteString("  " + a.spinner.View())
	}
	if a.flash != "" {
		sb.WriteString("\n" + mutedStyle.Render(a.flash))
	}
	if a.err != nil {
		sb.WriteString("\n" + errorStyle.Render(a.err.Error()))
	}
	sb.WriteString("\n\n" + a.help.View(a.keys))
	return frame(sb.String())
}
