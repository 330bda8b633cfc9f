package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arnavshah/vetclinic-scheduler-api/pkg/models"
	"github.com/arnavshah/vetclinic-scheduler-api/pkg/scheduler"
)

type suggestOptions struct {
	input     string
	top       int
	noAdjust  bool
	timezone  string
	jsonOut   bool
	breakdown bool
}

func newSuggestCmd(c *cli) *cobra.Command {
	opts := &suggestOptions{}
	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Rank appointment times for a visit",
		Long: `Read a suggestion request (the same JSON body POST /api/suggest accepts)
and print the best appointment times.

Examples:
  # Rank times from a file
  vetsched suggest --input request.json

  # Read stdin, show five results with per-factor points
  cat request.json | vetsched suggest --top 5 --breakdown

  # Plain base scores
  vetsched suggest --input request.json --no-adjust
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSuggest(cmd.InOrStdin(), cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVarP(&opts.input, "input", "i", "-", "Request JSON file (- for stdin)")
	cmd.Flags().IntVarP(&opts.top, "top", "n", scheduler.DefaultTop, "Number of suggestions to print")
	cmd.Flags().BoolVar(&opts.noAdjust, "no-adjust", false, "Disable the recommended-duration bonus and off-hours penalty")
	cmd.Flags().StringVar(&opts.timezone, "timezone", "", "Clinic time zone (overrides CLINIC_TIMEZONE)")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Print the full result as JSON")
	cmd.Flags().BoolVar(&opts.breakdown, "breakdown", false, "Print per-factor points for each suggestion")
	return cmd
}

func (c *cli) runSuggest(stdin io.Reader, out io.Writer, opts *suggestOptions) error {
	var r io.Reader = stdin
	if opts.input != "-" {
		f, err := os.Open(opts.input)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	var in models.SuggestInput
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}

	loc, err := c.cfg.Location()
	if err != nil {
		return err
	}
	if opts.timezone != "" {
		if loc, err = time.LoadLocation(opts.timezone); err != nil {
			return fmt.Errorf("timezone %q: %w", opts.timezone, err)
		}
	}

	var defaults scheduler.Adjustments
	if c.cfg.ScoreAdjustments && !opts.noAdjust {
		defaults = scheduler.DefaultAdjustments
	}
	req, err := scheduler.RequestFromInput(in, loc, defaults)
	if err != nil {
		return err
	}
	if opts.noAdjust {
		req.Adjustments = scheduler.Adjustments{}
	}

	s := scheduler.NewScheduler(nil)
	res := s.Suggest(req, opts.top)
	c.logger.Debug("scored candidates",
		zap.String("visit_type", string(req.VisitType)),
		zap.Int("candidates", len(res.Scored)),
		zap.Int("examined", res.Rejections.Examined))

	if opts.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Best)
	}

	if len(res.Best) == 0 {
		fmt.Fprintf(out, "No times available for %s:\n", req.VisitType)
		reasons := res.Rejections.Reasons()
		if req.Candidates != nil {
			reasons = []string{"no candidate times were supplied"}
		}
		for _, reason := range reasons {
			fmt.Fprintf(out, "  - %s\n", reason)
		}
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tSTART\tEND\tSCORE\tSTAFF\tKEY FACTORS")
	for i, sc := range res.Best {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.1f\t%s\t%s\n",
			i+1,
			sc.Start.Format("Mon 2006-01-02 15:04"),
			sc.End.Format("15:04"),
			sc.Score,
			strings.Join(sc.Breakdown.AvailableStaff, ","),
			strings.Join(sc.Breakdown.KeyFactors(), "; "))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if opts.breakdown {
		for i, sc := range res.Best {
			fmt.Fprintf(out, "\n#%d %s\n", i+1, sc.Start.Format("Mon 15:04"))
			for _, f := range sc.Breakdown.Factors {
				fmt.Fprintf(out, "  %-28s %5.1f / %.0f\n", f.Label, f.Points, f.Max)
			}
			fmt.Fprintf(out, "  %-28s %5.1f\n", "Adjustment", sc.Breakdown.Adjustment)
		}
	}
	return nil
}
