// Package tui hosts the block and action surfaces in a terminal. The app
// plays the admin host: it owns navigation between the two surfaces and
// closes them on request.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/issuetracker/internal/editor"
	"github.com/idilsaglam/issuetracker/internal/host"
	"github.com/idilsaglam/issuetracker/internal/i18n"
	"github.com/idilsaglam/issuetracker/internal/store"
)

type Options struct {
	Store       store.Store
	ResourceID  string
	Translator  i18n.Translator
	Recommender editor.Recommender
	// ShouldRender gates the block, and the action when it is opened first.
	ShouldRender RenderCheck
	Autosave     bool
	// Start is the extension target to open first; empty opens the block.
	Start  string
	Logger *slog.Logger
}

// nav records host requests made by a surface. Sessions may call Close from
// a command goroutine, so access is locked.
type nav struct {
	mu     sync.Mutex
	target string
	closed bool
}

func (n *nav) navigate(target string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.target = target
	return nil
}

func (n *nav) close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
}

func (n *nav) take() (target string, closed bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	target, closed = n.target, n.closed
	n.target, n.closed = "", false
	return target, closed
}

type surface int

const (
	blockSurface surface = iota
	actionSurface
)

type App struct {
	ctx    context.Context
	opts   Options
	nav    *nav
	active surface
	// fromBlock means closing the action returns to the block.
	fromBlock bool
	block     Block
	action    Action
	err       error
}

func NewApp(ctx context.Context, opts Options) (App, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Translator == nil {
		opts.Translator = i18n.New("", false)
	}
	a := App{ctx: ctx, opts: opts, nav: &nav{}}
	if strings.HasPrefix(opts.Start, host.ActionExtension) {
		if err := a.openAction(opts.Start, opts.ShouldRender); err != nil {
			return App{}, err
		}
		return a, nil
	}
	if err := a.openBlock(); err != nil {
		return App{}, err
	}
	return a, nil
}

func (a *App) hostContext(launchURL string) host.Context {
	n := a.nav
	return host.Context{
		Selected:   []host.Resource{{ID: a.opts.ResourceID}},
		LaunchURL:  launchURL,
		Navigator:  host.NavigatorFunc(n.navigate),
		Close:      n.close,
		Translator: a.opts.Translator,
	}
}

func (a *App) openBlock() error {
	b, err := NewBlock(a.ctx, a.hostContext(host.BlockExtension), a.opts.Store, BlockOptions{
		Autosave:     a.opts.Autosave,
		ShouldRender: a.opts.ShouldRender,
		Logger:       a.opts.Logger,
	})
	if err != nil {
		return err
	}
	a.block, a.active = b, blockSurface
	return nil
}

// openAction opens the form. check is only set when the action is launched
// on its own; coming from the block, the block has already passed it.
func (a *App) openAction(target string, check RenderCheck) error {
	act, err := NewAction(a.ctx, a.hostContext(target), a.opts.Store, ActionOptions{
		Recommender:  a.opts.Recommender,
		ShouldRender: check,
		Logger:       a.opts.Logger,
	})
	if err != nil {
		return err
	}
	a.fromBlock = a.active == blockSurface && a.block.session != nil
	a.action, a.active = act, actionSurface
	return nil
}

func (a App) Init() tea.Cmd {
	if a.active == actionSurface {
		return a.action.Init()
	}
	return a.block.Init()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.Type == tea.KeyCtrlC {
		return a, tea.Quit
	}
	var (
		m   tea.Model
		cmd tea.Cmd
	)
	switch a.active {
	case actionSurface:
		m, cmd = a.action.Update(msg)
		a.action = m.(Action)
	default:
		m, cmd = a.block.Update(msg)
		a.block = m.(Block)
	}
	return a.route(cmd)
}

// route applies navigation or close requests raised during the last update.
func (a App) route(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	target, closed := a.nav.take()
	switch {
	case target != "":
		if !strings.HasPrefix(target, host.ActionExtension) {
			a.err = fmt.Errorf("unknown extension target %q", target)
			return a, cmd
		}
		if a.active == blockSurface {
			a.block.session.Close()
		}
		if err := a.openAction(target, nil); err != nil {
			a.err = err
			return a, cmd
		}
		a.err = nil
		return a, tea.Batch(cmd, a.action.Init())

	case closed:
		if a.active == actionSurface && a.fromBlock {
			if err := a.openBlock(); err != nil {
				a.err = err
				return a, tea.Quit
			}
			return a, tea.Batch(cmd, a.block.Init())
		}
		return a, tea.Quit
	}
	return a, cmd
}

func (a App) View() string {
	var v string
	if a.active == actionSurface {
		v = a.action.View()
	} else {
		v = a.block.View()
	}
	if a.err != nil {
		v += "\n" + errorStyle.Render(a.err.Error())
	}
	return v
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, opts Options) error {
	app, err := NewApp(ctx, opts)
	if err != nil {
		return err
	}
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}
