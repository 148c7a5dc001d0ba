package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idilsaglam/issuetracker/internal/config"
	"github.com/idilsaglam/issuetracker/internal/host"
	"github.com/idilsaglam/issuetracker/internal/i18n"
	"github.com/idilsaglam/issuetracker/internal/store"
	"github.com/idilsaglam/issuetracker/internal/ui"
)

// usageError marks errors that exit with code 2.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return usageError{fmt.Errorf(format, args...)}
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id < 0 {
		return 0, usagef("not an issue id: %s", s)
	}
	return id, nil
}

// app carries what every command shares once flags and config are resolved.
type app struct {
	cfgFile string
	verbose bool

	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *store.Metrics
	closers  []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *app) translator() i18n.Translator {
	return i18n.New(a.cfg.Locale, a.cfg.Localized)
}

// hostContext describes the selected resource the way the admin would.
func (a *app) hostContext(launchURL string) (host.Context, error) {
	if a.cfg.Resource == "" {
		return host.Context{}, usagef("no resource selected: pass --resource or set ISSUES_RESOURCE")
	}
	return host.Context{
		Selected:   []host.Resource{{ID: a.cfg.Resource}},
		LaunchURL:  launchURL,
		Translator: a.translator(),
	}, nil
}

func (a *app) setup(cmd *cobra.Command) error {
	pf := cmd.Root().PersistentFlags()
	cfg, err := config.Load(a.cfgFile, func(v *viper.Viper) error {
		for _, name := range []string{"store", "shop", "locale", "resource"} {
			if err := v.BindPFlag(name, pf.Lookup(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return usageError{err}
	}
	a.cfg = cfg
	ui.SetTheme(cfg.Theme)

	level := slog.LevelWarn
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	}
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(ui.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.logger)
	if cfg.File != "" {
		a.logger.Debug("loaded config", "file", cfg.File)
	}

	a.registry = prometheus.NewRegistry()
	a.metrics = store.NewMetrics(a.registry)
	return nil
}

// reportMetrics logs the store counters gathered during the command.
func (a *app) reportMetrics() {
	if a.registry == nil || !a.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	families, err := a.registry.Gather()
	if err != nil {
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			if m.GetCounter() == nil {
				continue
			}
			attrs := []any{"metric", mf.GetName(), "value", m.GetCounter().GetValue()}
			for _, lp := range m.GetLabel() {
				attrs = append(attrs, lp.GetName(), lp.GetValue())
			}
			a.logger.Debug("metric", attrs...)
		}
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "issues",
		Short: "Track issues attached to admin resources",
		Long: `issues keeps a short list of issues on a product (or any resource with
metafields) and exposes the same list to a terminal UI and a small backend.

Examples:
  issues -r gid://shopify/Product/1 add --title "Broken zipper" --description "Jams halfway"
  issues -r gid://shopify/Product/1 ls
  issues -r gid://shopify/Product/1 status 0 completed
  issues -r gid://shopify/Product/1 block`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			a.reportMetrics()
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default .issues/config.yaml)")
	pf.String("store", "", "backend: shopify or file")
	pf.String("shop", "", "shop domain, e.g. demo.myshopify.com")
	pf.String("locale", "", "locale for messages, e.g. fr-FR")
	pf.StringP("resource", "r", "", "selected resource GID")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newListCmd(a),
		newAddCmd(a),
		newEditCmd(a),
		newStatusCmd(a),
		newRemoveCmd(a),
		newRecommendCmd(a),
		newBlockCmd(a),
		newActionCmd(a),
		newPrintCmd(a),
		newShouldRenderCmd(a),
		newServeCmd(a),
		newAuthCmd(a),
	)
	return root
}

// Run executes the command line and returns an exit code (0 ok, 1 error, 2 usage).
func Run(ctx context.Context, args []string) int {
	a := &app{}
	defer a.close()

	root := newRootCmd(a)
	if len(args) == 0 {
		root.SetOut(ui.Stderr)
		_ = root.Help()
		return 2
	}
	root.SetArgs(args)
	root.SetOut(ui.Stdout)
	root.SetErr(ui.Stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	ui.Fail(err.Error())
	var ue usageError
	if errors.As(err, &ue) || strings.HasPrefix(err.Error(), "unknown command") {
		return 2
	}
	return 1
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
