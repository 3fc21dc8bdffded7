package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/drugsafe/dilictl/pkg/data"
	"github.com/drugsafe/dilictl/pkg/score"
)

var (
	symbolFlag = &cli.StringFlag{
		Name:     "symbol",
		Usage:    "Target gene symbol (case-insensitive, e.g. CYP3A4)",
		Required: true,
	}

	suggestQueryFlag = &cli.StringFlag{
		Name:     "like",
		Usage:    "Substring to match against target symbols",
		Required: true,
	}

	binsFlag = &cli.IntFlag{
		Name:  "bins",
		Usage: "Number of histogram bins (default: from config)",
	}

	reportFileFlag = &cli.StringFlag{
		Name:  "report",
		Usage: "Write the validation report to a file instead of stdout",
	}

	snapshotFileFlag = &cli.StringFlag{
		Name:  "file",
		Usage: "Load scores from a JSON snapshot instead of the database",
	}

	queryCmd = &cli.Command{
		Name:    "query",
		Aliases: []string{"q"},
		Usage:   "Query scored drug targets",
		Flags: []cli.Flag{
			snapshotFileFlag,
		},
		Subcommands: []*cli.Command{
			{
				Name:    "target",
				Usage:   "Get the score record for one target symbol",
				Aliases: []string{"t"},
				Action:  cmdQueryTarget,
				Flags: []cli.Flag{
					symbolFlag,
				},
			},
			{
				Name:    "suggest",
				Usage:   "Suggest targets whose symbol contains the given substring",
				Aliases: []string{"s"},
				Action:  cmdQuerySuggest,
				Flags: []cli.Flag{
					suggestQueryFlag,
				},
			},
			{
				Name:    "list",
				Usage:   "List all scored targets",
				Aliases: []string{"l"},
				Action:  cmdQueryList,
			},
			{
				Name:   "thresholds",
				Usage:  "Show the low/medium risk category boundaries",
				Action: cmdQueryThresholds,
			},
			{
				Name:   "histogram",
				Usage:  "Show the score distribution histogram",
				Action: cmdQueryHistogram,
				Flags: []cli.Flag{
					binsFlag,
				},
			},
		},
	}

	validateCmd = &cli.Command{
		Name:   "validate",
		Usage:  "Validate scores against drug approval and withdrawal outcomes",
		Action: cmdValidate,
		Flags: []cli.Flag{
			reportFileFlag,
		},
	}
)

// notFoundResult is returned when an exact target lookup misses.
type notFoundResult struct {
	Error       string   `json:"error" yaml:"error"`
	Suggestions []string `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`
}

func loadStore(c *cli.Context) (*score.Store, error) {
	if path := c.String(snapshotFileFlag.Name); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening snapshot file: %w", err)
		}
		defer f.Close()

		records, err := score.DecodeRecords(f)
		if err != nil {
			return nil, fmt.Errorf("decoding snapshot file %s: %w", path, err)
		}
		return score.NewStore(records), nil
	}

	records, err := data.GetTargetScores(getConfig(c).DB)
	if err != nil {
		return nil, fmt.Errorf("loading target scores: %w", err)
	}
	return score.NewStore(records), nil
}

func cmdQueryTarget(c *cli.Context) error {
	symbol := c.String(symbolFlag.Name)
	if symbol == "" {
		return cli.ShowSubcommandHelp(c)
	}

	store, err := loadStore(c)
	if err != nil {
		return err
	}

	rec, err := store.FindExact(symbol)
	if err != nil {
		if errors.Is(err, score.ErrNotFound) {
			res := &notFoundResult{Error: fmt.Sprintf("target %q not found", symbol)}
			for _, s := range store.Suggest(symbol) {
				res.Suggestions = append(res.Suggestions, s.Symbol)
			}
			return encode(res)
		}
		return fmt.Errorf("failed to query target: %w", err)
	}

	return encode(rec)
}

func cmdQuerySuggest(c *cli.Context) error {
	q := c.String(suggestQueryFlag.Name)
	if q == "" {
		return cli.ShowSubcommandHelp(c)
	}

	store, err := loadStore(c)
	if err != nil {
		return err
	}

	return encode(store.Suggest(q))
}

func cmdQueryList(c *cli.Context) error {
	store, err := loadStore(c)
	if err != nil {
		return err
	}

	return encode(store.Records())
}

func cmdQueryThresholds(c *cli.Context) error {
	store, err := loadStore(c)
	if err != nil {
		return err
	}

	th, err := score.ComputeThresholds(store.Scores())
	if err != nil {
		if errors.Is(err, score.ErrNoScores) {
			return fmt.Errorf("no scores imported yet, run import first")
		}
		return fmt.Errorf("failed to compute thresholds: %w", err)
	}

	return encode(th)
}

func cmdQueryHistogram(c *cli.Context) error {
	cfg := getConfig(c)

	bins := c.Int(binsFlag.Name)
	if bins == 0 {
		bins = cfg.Conf.HistogramBins
	}

	store, err := loadStore(c)
	if err != nil {
		return err
	}

	th, err := score.ComputeThresholds(store.Scores())
	if err != nil {
		if errors.Is(err, score.ErrNoScores) {
			return fmt.Errorf("no scores imported yet, run import first")
		}
		return fmt.Errorf("failed to compute thresholds: %w", err)
	}

	hist, err := score.BuildHistogram(store.Scores(), th, bins)
	if err != nil {
		return fmt.Errorf("failed to build histogram: %w", err)
	}

	return encode(hist)
}

func cmdValidate(c *cli.Context) error {
	cfg := getConfig(c)

	summary, err := data.ValidateScores(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to validate scores: %w", err)
	}

	if path := c.String(reportFileFlag.Name); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating report file: %w", err)
		}
		defer f.Close()
		if err := data.WriteValidationReport(f, summary); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		fmt.Printf("Report written to %s\n", path)
		return nil
	}

	return data.WriteValidationReport(os.Stdout, summary)
}
