package main

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Simplici0/fishcost/internal/costing"
	"github.com/Simplici0/fishcost/internal/deal"
)

func newEvaluateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "evaluate",
		Short: "Run the full cost chain for a scenario",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.loadScenario()
			if err != nil {
				return err
			}
			res, err := costing.Evaluate(s)
			if err != nil {
				return err
			}
			opts.logger().Info("scenario evaluated", zap.Float64("margin_per_kg", res.MarginPerKg))
			return printResult(cmd.OutOrStdout(), res)
		},
	}
}

func printResult(out io.Writer, res costing.Result) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	rows := []struct {
		label string
		value string
	}{
		{"yield", fmt.Sprintf("%.2f%%", res.Yield*100)},
		{"reported yield (" + string(res.YieldDefinition) + ")", fmt.Sprintf("%.2f%%", res.ReportedYield*100)},
		{"glazing factor", fmt.Sprintf("%.4f", res.GlazingFactor)},
		{"clean unit cost", money(res.CleanUnitCost)},
		{"final unit cost", money(res.FinalUnitCost)},
		{"variable cost / kg", money(res.TotalVariableCost)},
		{"margin / kg", money(res.MarginPerKg)},
		{"margin / box", money(res.MarginPerBox)},
		{"fixed cost / day", money(res.FixedCost)},
		{"break-even kg", volume(res.BreakEven.Kg, res.BreakEven.Reachable)},
		{"break-even boxes", volume(res.BreakEven.Units, res.BreakEven.Reachable)},
		{"capacity kg / shift", fmt.Sprintf("%.1f", res.CapacityKg)},
		{"daily profit", money(res.DailyProfit)},
	}
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\n", r.label, r.value)
	}
	if res.YieldAlert.BelowFloor {
		fmt.Fprintf(tw, "WARNING\tyield %.2f%% below floor %.2f%%\n", res.YieldAlert.Yield*100, res.YieldAlert.Threshold*100)
	}
	return tw.Flush()
}

func newMatrixCmd(opts *rootOptions) *cobra.Command {
	var (
		spread float64
		steps  int
	)
	cmd := &cobra.Command{
		Use:   "matrix",
		Short: "Print a buy x sell margin grid around the scenario prices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps < 1 {
				return fmt.Errorf("--steps must be at least 1")
			}
			s, err := opts.loadScenario()
			if err != nil {
				return err
			}
			m, err := costing.ScenarioMatrix(s, spread, steps)
			if err != nil {
				return err
			}
			return printMatrix(cmd.OutOrStdout(), m)
		},
	}
	cmd.Flags().Float64Var(&spread, "spread", 0.5, "price distance from the centre on each side")
	cmd.Flags().IntVar(&steps, "steps", 5, "prices per axis")
	return cmd
}

func printMatrix(out io.Writer, m costing.Matrix) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(tw, "buy \\ sell\t")
	for _, s := range m.Sell {
		fmt.Fprintf(tw, "%.2f\t", s)
	}
	fmt.Fprintln(tw)
	bands := m.Bands()
	for i, b := range m.Buy {
		fmt.Fprintf(tw, "%.2f\t", b)
		for j, margin := range m.Margins[i] {
			fmt.Fprintf(tw, "%.3f%s\t", margin, bandMark(bands[i][j]))
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

func bandMark(b costing.MarginBand) string {
	switch b {
	case costing.BandLoss:
		return "-"
	case costing.BandThin:
		return "~"
	default:
		return "+"
	}
}

func newReverseCmd(opts *rootOptions) *cobra.Command {
	var units float64
	cmd := &cobra.Command{
		Use:   "reverse",
		Short: "Plan raw purchase and crew hours for an order of boxes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.loadScenario()
			if err != nil {
				return err
			}
			plan, err := costing.Reverse(s, units)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "boxes\t%.0f\n", plan.TargetUnits)
			fmt.Fprintf(tw, "final kg\t%.2f\n", plan.TargetFinalKg)
			fmt.Fprintf(tw, "clean kg\t%.2f\n", plan.CleanKg)
			fmt.Fprintf(tw, "raw kg to buy\t%.2f\n", plan.RequiredRawKg)
			fmt.Fprintf(tw, "crew hours\t%.2f\n", plan.RequiredHours)
			fmt.Fprintf(tw, "estimated cost\t%s\n", money(plan.EstimatedCost))
			return tw.Flush()
		},
	}
	cmd.Flags().Float64Var(&units, "units", 0, "boxes ordered")
	_ = cmd.MarkFlagRequired("units")
	return cmd
}

func newDealCmd(opts *rootOptions) *cobra.Command {
	var (
		in   deal.Input
		term string
	)
	cmd := &cobra.Command{
		Use:   "deal",
		Short: "Simulate the profit of a bulk sale including payment delay",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				res deal.Result
				err error
			)
			if term != "" {
				terms, tErr := deal.NewTerms(deal.DefaultTerms())
				if tErr != nil {
					return tErr
				}
				if in.FinanceRate, err = terms.Rate(term); err != nil {
					return err
				}
				res, err = terms.SimulateWithTerm(in, term)
			} else {
				res, err = deal.Simulate(in)
			}
			if err != nil {
				return err
			}
			opts.logger().Info("deal simulated", zap.Float64("net_profit", res.NetProfit))

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "revenue\t%s\n", money(res.Revenue))
			fmt.Fprintf(tw, "cost of goods\t%s\n", money(res.CostOfGoods))
			fmt.Fprintf(tw, "finance cost\t%s\n", money(res.FinanceCost))
			fmt.Fprintf(tw, "net profit\t%s\n", money(res.NetProfit))
			fmt.Fprintf(tw, "margin\t%.2f%%\n", res.MarginPct)
			fmt.Fprintf(tw, "break-even price\t%s\n", money(deal.BreakEvenPrice(in)))
			verdict := "REJECT"
			if res.Profitable {
				verdict = "ACCEPT"
			}
			fmt.Fprintf(tw, "verdict\t%s\n", verdict)
			return tw.Flush()
		},
	}
	f := cmd.Flags()
	f.Float64Var(&in.QtyKg, "qty", 0, "quantity in kg")
	f.Float64Var(&in.PricePerKg, "price", 0, "selling price per kg")
	f.Float64Var(&in.BaseCostPerKg, "base-cost", 0, "production cost per kg")
	f.Float64Var(&in.OverheadPerKg, "overhead", 0, "overhead per kg")
	f.Float64Var(&in.FinanceRate, "finance-rate", 0, "finance cost as a fraction of revenue")
	f.StringVar(&term, "term", "", "payment term code (cash, net30, net60, net90); overrides --finance-rate")
	_ = cmd.MarkFlagRequired("qty")
	_ = cmd.MarkFlagRequired("price")
	return cmd
}

func money(v float64) string {
	return fmt.Sprintf("%.3f", v)
}

func volume(v float64, reachable bool) string {
	if !reachable || math.IsInf(v, 0) {
		return "unreachable"
	}
	return fmt.Sprintf("%.1f", v)
}
