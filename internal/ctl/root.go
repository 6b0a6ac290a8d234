// Package ctl implements acessoriosctl, a command line client for the
// record store. It runs the same form and aggregation logic as the
// dashboard, so records created here are indistinguishable from ones
// entered in the browser.
package ctl

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"acessorios/internal/app"
	"acessorios/internal/config"
	applog "acessorios/internal/log"
	"acessorios/internal/ports"
	"acessorios/internal/remote"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	URL     string
	Timeout time.Duration
	Format  string // "text" | "json"
	Verbose bool

	// NewStore builds the record store for URL. Tests replace it.
	NewStore func(url string, timeout time.Duration) ports.RecordStore
	// Now is the clock used for default periods and report dates.
	Now func() time.Time
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

func defaultStore(url string, timeout time.Duration) ports.RecordStore {
	return remote.NewClient(url, timeout, nil)
}

// NewRootCommand creates the acessoriosctl root command.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{NewStore: defaultStore, Now: time.Now})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cfg := config.Load()

	cmd := &cobra.Command{
		Use:           "acessoriosctl",
		Short:         "Manage IT accessory records",
		Long:          "Lists, adds, edits, deletes and exports accessory allocation records held by the record store.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			// Logs never share stdout with command output.
			lc := applog.DefaultConfig()
			lc.Level = applog.ParseLevel("warn")
			if opts.Verbose {
				lc.Level = applog.ParseLevel("debug")
			}
			lc.Output = cmd.ErrOrStderr()
			applog.SetDefault(applog.New(lc))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.URL, "url", cfg.RemoteStoreURL, "record store base URL")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", cfg.RemoteTimeout, "request timeout")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log requests to stderr")

	cmd.AddCommand(newListCommand(opts))
	cmd.AddCommand(newAddCommand(opts))
	cmd.AddCommand(newEditCommand(opts))
	cmd.AddCommand(newDeleteCommand(opts))
	cmd.AddCommand(newExportCommand(opts))
	cmd.AddCommand(newCatalogCommand(opts))

	return cmd
}

func (o *RootOptions) newState() *app.State {
	return app.New(o.NewStore(o.URL, o.Timeout), nil)
}

// state loads a fresh snapshot from the store.
func (o *RootOptions) state(cmd *cobra.Command) (*app.State, error) {
	st := o.newState()
	if err := st.Refresh(cmd.Context()); err != nil {
		return nil, err
	}
	return st, nil
}

func (o *RootOptions) writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
