// Command finsight answers portfolio questions from the terminal against the
// same database the API server uses.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/aristath/finsight/internal/config"
	"github.com/aristath/finsight/internal/di"
	"github.com/aristath/finsight/internal/domain"
	"github.com/aristath/finsight/pkg/logger"
)

// app carries state shared by every subcommand
type app struct {
	cfg       *config.Config
	log       zerolog.Logger
	container *di.Container
	userID    int64
	locale    string
	raw       bool
	out       io.Writer
}

func main() {
	if err := newRootCmd(&app{out: os.Stdout}).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "finsight",
		Short:         "Personal finance dashboard: valuation, risk, strategy and goals",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().Int64Var(&a.userID, "user", 0, "user id (defaults to the most recently created user)")
	root.PersistentFlags().StringVar(&a.locale, "locale", "", "label language, zh or en (defaults to LOCALE)")
	root.PersistentFlags().BoolVar(&a.raw, "raw", false, "print markdown without terminal styling")

	root.AddCommand(
		newAssessCmd(a),
		newStrategyCmd(a),
		newGoalsCmd(a),
		newMarketCmd(a),
		newProjectCmd(a),
		newReportCmd(a),
	)

	return root
}

// wire opens the database and services on first use. Commands that only
// compute (strategy) never call it.
func (a *app) wire(ctx context.Context) (*di.Container, error) {
	if a.container != nil {
		return a.container, nil
	}

	if a.cfg == nil {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		a.cfg = cfg
		a.log = logger.New(logger.Config{Level: "warn", Pretty: true})
	}

	container, err := di.Wire(ctx, a.cfg, a.log)
	if err != nil {
		return nil, err
	}
	a.container = container
	return container, nil
}

func (a *app) close() {
	if a.container != nil {
		a.container.Close()
		a.container = nil
	}
}

// user resolves --user, falling back to the most recent user
func (a *app) user(c *di.Container) (int64, error) {
	if a.userID > 0 {
		return a.userID, nil
	}
	id, err := c.UserRepo.RecentUserID()
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, fmt.Errorf("no users yet; create one through the API first")
	}
	return id, nil
}

// labels honours --locale, then the loaded configuration, then zh
func (a *app) labels() domain.Labels {
	switch {
	case a.locale != "":
		return domain.NewLabels(a.locale)
	case a.container != nil:
		return a.container.Labels
	default:
		return domain.Labels{}
	}
}

// currency is the configured display currency, CNY before config is loaded
func (a *app) currency() string {
	if a.cfg != nil && a.cfg.Currency != "" {
		return a.cfg.Currency
	}
	return "CNY"
}

// render prints markdown through glamour unless --raw was given
func (a *app) render(markdown string) error {
	if a.raw {
		_, err := io.WriteString(a.out, markdown)
		return err
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}

	out, err := r.Render(markdown)
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	_, err = io.WriteString(a.out, out)
	return err
}
