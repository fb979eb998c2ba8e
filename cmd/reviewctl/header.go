package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/ReviewSheet/internal/headers"
	"github.com/JonMunkholm/ReviewSheet/internal/textnorm"
)

func newHeaderCmd() *cobra.Command {
	var (
		domain      string
		year        int
		noNormalize bool
	)

	cmd := &cobra.Command{
		Use:   "header HEADER...",
		Short: "Decode column headers against a domain grammar",
		Long: `Decode each HEADER as the build stage would: normalized, then
matched against the grammar of --domain
(program, budget, fund_flow, expenditure). --year is the review year the
budget grammar resolves fiscal years against.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := headers.ParseDomain(domain)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, raw := range args {
				h := raw
				if !noNormalize {
					h = textnorm.Normalize(h)
				}

				m, ok := headers.Decode(d, h, year)
				if !ok {
					fmt.Fprintf(out, "%s\tno %s match\n", h, d)
					continue
				}
				fmt.Fprintf(out, "%s\titem=%s field=%s", h, m.Item, m.Field)
				if m.Block != "" || m.Sequence != "" {
					fmt.Fprintf(out, " block=%s sequence=%s", m.Block, m.Sequence)
				}
				if d == headers.Budget {
					fmt.Fprintf(out, " offset=%d", m.Offset)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&domain, "domain", "budget", "header grammar: program, budget, fund_flow, expenditure")
	cmd.Flags().IntVar(&year, "year", 0, "review year for budget headers")
	cmd.Flags().BoolVar(&noNormalize, "no-normalize", false, "decode the header as given")
	return cmd
}
