package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"isoplan/adapters/excel"
	"isoplan/adapters/registry"
	"isoplan/app"
	"isoplan/domain/core"
	"isoplan/domain/priority"
	"isoplan/internal/config"
	"isoplan/internal/container"
	"isoplan/internal/report"
	"isoplan/ports"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:          "isoplan-cli",
		Short:        "Isoplan CLI for evaluating and ranking isotope production routes",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newRoutesCmd(),
		newEvaluateCmd(),
		newScoreCmd(),
		newBatchCmd(),
		newChainCmd(),
		newReportCmd(),
		newExportCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newContainer builds the service graph from the environment.
func newContainer(ctx context.Context) (*container.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	c, err := container.New(cfg)
	if err != nil {
		return nil, err
	}
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func withService(ctx context.Context, fn func(*app.PlanningService) error) error {
	c, err := newContainer(ctx)
	if err != nil {
		return err
	}
	defer c.Shutdown(ctx)
	return fn(c.Planning)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newRoutesCmd() *cobra.Command {
	var product string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List registered production routes",
		Long: `List the route registry (embedded, ROUTES_FILE or DATABASE_URL).

Example: isoplan-cli routes --product Lu-177`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withService(ctx, func(s *app.PlanningService) error {
				routes, err := s.Routes(ctx, product)
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(routes)
				}
				tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tTARGET\tREACTION\tPRODUCT\tT½ (d)\tREGULATORY")
				for _, d := range routes {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.4g\t%s\n", d.ID, d.Target, d.Reaction, d.Product, d.HalfLifeDays, d.Regulatory)
				}
				if err := tw.Flush(); err != nil {
					return err
				}
				fingerprint, err := s.RegistryFingerprint(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("\n%d routes, registry %s\n", len(routes), fingerprint)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&product, "product", "", "Only routes producing this isotope")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print descriptors as JSON")

	return cmd
}

func newEvaluateCmd() *cobra.Command {
	var flags conditionFlags

	cmd := &cobra.Command{
		Use:   "evaluate [route-id]",
		Short: "Evaluate one route and print the full result",
		Long: `Evaluate a registered route under the given operating conditions.

Conditions come from --conditions (YAML or JSON) and are overridden by
individual flags.

Example: isoplan-cli evaluate lu177-direct --flux 1e14 --mass 0.001 --enrichment 0.75 --irradiation-hours 120 --application medical`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := flags.conditions(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			return withService(ctx, func(s *app.PlanningService) error {
				ev, err := s.Evaluate(ctx, core.RouteID(args[0]), c)
				if err != nil {
					return err
				}
				return printJSON(ev)
			})
		},
	}

	flags.register(cmd)
	return cmd
}

func newScoreCmd() *cobra.Command {
	var flags conditionFlags

	cmd := &cobra.Command{
		Use:   "score [route-id...]",
		Short: "Score routes and rank them by total",
		Long: `Evaluate each route under the same conditions and print the six-category
score breakdown, highest total first.

Example: isoplan-cli score lu177-direct lu177-indirect --conditions medical.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := flags.conditions(cmd)
			if err != nil {
				return err
			}
			items := make([]app.BatchItem, len(args))
			for i, id := range args {
				items[i] = app.BatchItem{RouteID: core.RouteID(id), Conditions: c}
			}
			ctx := cmd.Context()
			return withService(ctx, func(s *app.PlanningService) error {
				res, err := s.EvaluateBatch(ctx, items)
				if err != nil {
					return err
				}
				printScores(res)
				return nil
			})
		},
	}

	flags.register(cmd)
	return cmd
}

func printScores(res app.BatchResult) {
	evs := res.Evaluations()
	sortByTotal(evs)

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	header := append([]string{"ROUTE"}, priority.CategoryNames[:]...)
	header = append(header, "TOTAL", "CLASS")
	fmt.Fprintln(tw, strings.ToUpper(strings.Join(header, "\t")))
	for _, ev := range evs {
		fmt.Fprintf(tw, "%s", ev.Score.RouteID)
		for _, v := range ev.Score.Categories() {
			fmt.Fprintf(tw, "\t%.2f", v)
		}
		fmt.Fprintf(tw, "\t%.2f\t%s\n", ev.Score.Total, ev.Score.Class)
	}
	_ = tw.Flush()

	for _, o := range res.Outcomes {
		if o.Error != "" {
			fmt.Fprintf(os.Stderr, "%s: %s\n", o.RouteID, o.Error)
		}
	}
}

func newBatchCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "batch [items-file]",
		Short: "Evaluate a batch of route/conditions pairs concurrently",
		Long: `Evaluate every item of a YAML or JSON file shaped as
  items: [{route_id: ..., conditions: {...}}, ...]

Results print as JSON, or are written to an xlsx workbook with --output.

Example: isoplan-cli batch campaign.yaml --output campaign.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var file struct {
				Items []app.BatchItem `yaml:"items"`
			}
			if err := readInput(args[0], &file); err != nil {
				return err
			}
			ctx := cmd.Context()
			return withService(ctx, func(s *app.PlanningService) error {
				res, err := s.EvaluateBatchWithProgress(ctx, "", file.Items, func(p app.BatchProgress) {
					status := "ok"
					if p.Outcome.Error != "" {
						status = p.Outcome.Error
					}
					fmt.Fprintf(os.Stderr, "[%d/%d] %s: %s\n", p.Done, p.Total, p.Outcome.RouteID, status)
				})
				if err != nil {
					return err
				}
				if output == "" {
					return printJSON(res)
				}
				if err := excel.SaveResults(output, res.Evaluations()); err != nil {
					return err
				}
				fmt.Printf("%d evaluations (%d failed) written to %s\n", len(res.Outcomes)-res.Failed(), res.Failed(), output)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write results to this xlsx file")

	return cmd
}

func newChainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chain [network-file]",
		Short: "Solve a decay network with the Bateman solver",
		Long: `Solve populations of a decay network described in YAML or JSON:
  isotopes: [{name: Mo-99}, {name: Tc-99m, parents: [{parent: Mo-99, branching_ratio: 0.876}]}]
  initial: {Mo-99: 1.0e15}
  times_s: [0, 86400]

Half-lives missing from the file are taken from the nuclear data.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req app.ChainRequest
			if err := readInput(args[0], &req); err != nil {
				return err
			}
			ctx := cmd.Context()
			return withService(ctx, func(s *app.PlanningService) error {
				res, err := s.SolveChain(ctx, req)
				if err != nil {
					return err
				}
				return printJSON(res)
			})
		},
	}

	return cmd
}

func newReportCmd() *cobra.Command {
	var flags conditionFlags
	var asHTML bool
	var output string

	cmd := &cobra.Command{
		Use:   "report [route-id]",
		Short: "Evaluate a route and render a markdown or HTML report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := flags.conditions(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			return withService(ctx, func(s *app.PlanningService) error {
				ev, err := s.Evaluate(ctx, core.RouteID(args[0]), c)
				if err != nil {
					return err
				}
				out := []byte(report.Markdown(ev))
				if asHTML {
					out = report.HTML(string(out))
				}
				if output == "" {
					_, err = os.Stdout.Write(out)
					return err
				}
				return os.WriteFile(output, out, 0644)
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&asHTML, "html", false, "Render HTML instead of markdown")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the report to this file")

	return cmd
}

func newExportCmd() *cobra.Command {
	var flags conditionFlags
	var routesOnly bool

	cmd := &cobra.Command{
		Use:   "export [output.xlsx]",
		Short: "Export the registry, or its evaluation under common conditions, to xlsx",
		Long: `Without --routes, every registered route is evaluated under the given
conditions and the workbook gets a Results and a Scores sheet.

Example: isoplan-cli export ranking.xlsx --conditions medical.yaml
         isoplan-cli export registry.xlsx --routes`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			ctx := cmd.Context()
			if routesOnly {
				return withService(ctx, func(s *app.PlanningService) error {
					routes, err := s.Routes(ctx, "")
					if err != nil {
						return err
					}
					records := make([]registry.Record, len(routes))
					for i, d := range routes {
						records[i] = registry.FromDescriptor(d)
					}
					if err := excel.SaveRoutes(path, records); err != nil {
						return err
					}
					fmt.Printf("%d routes written to %s\n", len(records), path)
					return nil
				})
			}

			c, err := flags.conditions(cmd)
			if err != nil {
				return err
			}
			return withService(ctx, func(s *app.PlanningService) error {
				routes, err := s.Routes(ctx, "")
				if err != nil {
					return err
				}
				items := make([]app.BatchItem, len(routes))
				for i, d := range routes {
					items[i] = app.BatchItem{RouteID: d.ID, Conditions: c}
				}
				res, err := s.EvaluateBatch(ctx, items)
				if err != nil {
					return err
				}
				evs := res.Evaluations()
				sortByTotal(evs)
				if err := excel.SaveResults(path, evs); err != nil {
					return err
				}
				fmt.Printf("%d evaluations written to %s\n", len(evs), path)
				return nil
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&routesOnly, "routes", false, "Export route descriptors only")

	return cmd
}

// sortByTotal orders evaluations by descending total score, then route ID.
func sortByTotal(evs []ports.Evaluation) {
	sort.SliceStable(evs, func(i, j int) bool {
		if evs[i].Score.Total != evs[j].Score.Total {
			return evs[i].Score.Total > evs[j].Score.Total
		}
		return evs[i].Score.RouteID < evs[j].Score.RouteID
	})
}
