package ctl

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"acessorios/internal/core"
	"acessorios/internal/export"
)

func newExportCommand(opts *RootOptions) *cobra.Command {
	var (
		period periodFlags
		out    string
	)
	cmd := &cobra.Command{
		Use:       "export <csv|pdf>",
		Short:     "Write the filtered records as a CSV or PDF report",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(export.CSV), string(export.PDF)},
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := export.ParseFormat(args[0])
			if err != nil {
				return err
			}
			st, err := opts.state(cmd)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			records := st.Overview(period.filter()).Records
			if err := export.Write(&buf, format, records, opts.Now()); err != nil {
				if errors.Is(err, export.ErrEmptyExport) {
					return errors.New(export.EmptyNotice)
				}
				return err
			}

			if out == "-" {
				_, err := buf.WriteTo(cmd.OutOrStdout())
				return err
			}
			if out == "" {
				out = format.FileName()
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d registro(s) exportado(s) para %s\n", len(records), out)
			return err
		},
	}
	period.register(cmd, "to filter by (0 = all)")
	cmd.Flags().StringVarP(&out, "out", "o", "", `output file, "-" for stdout (default relatorio_acessorios.<format>)`)
	return cmd
}

type catalogProduct struct {
	ID        int        `json:"id"`
	Name      string     `json:"nome"`
	UnitPrice core.Money `json:"valorUnit"`
	Stock     int        `json:"estoque"`
}

type catalogOutput struct {
	Products []catalogProduct `json:"produtos"`
	Sectors  []string         `json:"setores"`
}

func newCatalogCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Show the product catalog and the sectors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if opts.Format == "json" {
				out := catalogOutput{Sectors: core.Sectors}
				for _, p := range core.Products() {
					out.Products = append(out.Products, catalogProduct{
						ID: p.ID, Name: p.Name, UnitPrice: p.UnitPrice, Stock: p.StockOnHand,
					})
				}
				return opts.writeJSON(w, out)
			}

			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tPRODUTO\tVALOR UNIT.\tESTOQUE")
			for _, p := range core.Products() {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", p.ID, p.Name, core.FormatCurrency(p.UnitPrice), p.StockOnHand)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			_, err := fmt.Fprintf(w, "\nSetores: %v\n", core.Sectors)
			return err
		},
	}
}
