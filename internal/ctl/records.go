package ctl

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"acessorios/internal/core"
	"acessorios/internal/form"
)

type periodFlags struct {
	month int
	year  int
}

func (p *periodFlags) register(cmd *cobra.Command, usage string) {
	cmd.Flags().IntVar(&p.month, "mes", 0, "month 1-12 "+usage)
	cmd.Flags().IntVar(&p.year, "ano", 0, "year "+usage)
}

func (p periodFlags) filter() core.Filter {
	var f core.Filter
	if p.month >= 1 && p.month <= 12 {
		f.Month = p.month
	}
	if p.year > 0 {
		f.Year = p.year
	}
	return f
}

type listOutput struct {
	Records []core.Record `json:"records"`
	Total   core.Money    `json:"total"`
	Items   int           `json:"items"`
	Count   int           `json:"count"`
}

func newListCommand(opts *RootOptions) *cobra.Command {
	var period periodFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List records, optionally filtered by period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := opts.state(cmd)
			if err != nil {
				return err
			}
			ov := st.Overview(period.filter())
			if opts.Format == "json" {
				return opts.writeJSON(cmd.OutOrStdout(), listOutput{
					Records: nonNil(ov.Records),
					Total:   ov.Totals.Value,
					Items:   ov.Totals.Items,
					Count:   ov.Totals.Records,
				})
			}
			return printRecords(cmd.OutOrStdout(), ov)
		},
	}
	period.register(cmd, "to filter by (0 = all)")
	return cmd
}

func printRecords(w io.Writer, ov core.Overview) error {
	if len(ov.Records) == 0 {
		_, err := fmt.Fprintln(w, "Nenhum registro para o período selecionado.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPRODUTO\tSETOR\tQTD\tVALOR UNIT.\tTOTAL\tPERÍODO")
	for _, r := range ov.Records {
		fmt.Fprintf(tw, "%s\t%d %s\t%s\t%d\t%s\t%s\t%02d/%d\n",
			r.ID, r.ProductID, r.Name, r.Sector, r.Quantity,
			core.FormatCurrency(r.UnitPrice), core.FormatCurrency(r.Total),
			r.Month, r.Year)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\nTotal: %s  Itens: %d  Registros: %d\n",
		core.FormatCurrency(ov.Totals.Value), ov.Totals.Items, ov.Totals.Records)
	return err
}

// recordFlags are the form fields settable from the command line.
type recordFlags struct {
	product  int
	sector   string
	quantity string
	period   periodFlags
}

func (rf *recordFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&rf.product, "produto", 0, "catalog product id")
	cmd.Flags().StringVar(&rf.sector, "setor", "", "sector receiving the items")
	cmd.Flags().StringVar(&rf.quantity, "quantidade", "", "number of items")
	rf.period.register(cmd, "of the allocation (default: current)")
}

// apply copies the flags the user set onto f, leaving the rest alone.
func (rf *recordFlags) apply(cmd *cobra.Command, f *form.Form) {
	flags := cmd.Flags()
	if flags.Changed("produto") {
		f.SetProduct(rf.product)
	}
	if flags.Changed("setor") {
		f.SetSector(rf.sector)
	}
	if flags.Changed("quantidade") {
		f.SetQuantity(rf.quantity)
	}
	month, year := f.Month, f.Year
	if flags.Changed("mes") {
		month = rf.period.month
	}
	if flags.Changed("ano") {
		year = rf.period.year
	}
	f.SetPeriod(month, year)
}

func submitError(err error) error {
	if errors.Is(err, form.ErrIncomplete) {
		return fmt.Errorf("registro incompleto: informe --produto, --setor e --quantidade válidos: %w", err)
	}
	return err
}

func newAddCommand(opts *RootOptions) *cobra.Command {
	var rf recordFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a record",
		Example: "  acessoriosctl add --produto 101 --setor TI --quantidade 2\n" +
			"  acessoriosctl add --produto 105 --setor RH --quantidade 1 --mes 3 --ano 2025",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now := opts.Now()
			f := form.New(now)
			rf.apply(cmd, f)
			intent, err := f.Submit(now)
			if err != nil {
				return submitError(err)
			}

			st := opts.newState()
			rec, err := st.Create(cmd.Context(), intent.Draft)
			if err != nil {
				return err
			}
			return opts.printRecord(cmd, "Registro adicionado", rec)
		},
	}
	rf.register(cmd)
	return cmd
}

func newEditCommand(opts *RootOptions) *cobra.Command {
	var rf recordFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of an existing record",
		Long: "Change fields of an existing record. Fields not given keep their value, " +
			"except the period, which moves to the current month unless --mes/--ano are set.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := opts.state(cmd)
			if err != nil {
				return err
			}
			rec, err := st.Find(args[0])
			if err != nil {
				return err
			}

			now := opts.Now()
			f := form.New(now)
			f.BeginEdit(rec, now)
			rf.apply(cmd, f)
			intent, err := f.Submit(now)
			if err != nil {
				return submitError(err)
			}

			updated, err := st.Update(cmd.Context(), intent.Record)
			if err != nil {
				return err
			}
			return opts.printRecord(cmd, "Registro atualizado", updated)
		},
	}
	rf.register(cmd)
	return cmd
}

func newDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a record",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.newState().Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Registro %s excluído.\n", args[0])
			return err
		},
	}
}

func (o *RootOptions) printRecord(cmd *cobra.Command, title string, r core.Record) error {
	w := cmd.OutOrStdout()
	if o.Format == "json" {
		return o.writeJSON(w, r)
	}
	_, err := fmt.Fprintf(w, "%s: %s\n  %d %s, setor %s, %d x %s = %s (%02d/%d)\n",
		title, r.ID, r.ProductID, r.Name, r.Sector, r.Quantity,
		core.FormatCurrency(r.UnitPrice), core.FormatCurrency(r.Total), r.Month, r.Year)
	return err
}

func nonNil(records []core.Record) []core.Record {
	if records == nil {
		return []core.Record{}
	}
	return records
}
