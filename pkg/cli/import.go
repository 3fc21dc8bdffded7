package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/drugsafe/dilictl/pkg/data"
	"github.com/drugsafe/dilictl/pkg/score"
)

const (
	pathwayFileName = "pc-hgnc.sif.gz"
)

var (
	mappingFlag = &cli.StringFlag{
		Name:     "mapping",
		Usage:    "Path to the drug to target mapping JSON file",
		Required: true,
	}

	alphaFlag = &cli.Float64Flag{
		Name:  "alpha",
		Usage: "Network score contribution weight [0..1] (default: from config)",
		Value: -1,
	}

	openFDAFileFlag = &cli.StringFlag{
		Name:  "openfda",
		Usage: "Path to the openFDA drugsfda bulk JSON file",
	}

	skipAcquireFlag = &cli.BoolFlag{
		Name:  "skip-acquire",
		Usage: "Skip remote acquisition and reuse previously imported source data",
	}

	outFlag = &cli.StringFlag{
		Name:  "out",
		Usage: "Path of the JSON score snapshot to write after import",
	}

	importCmd = &cli.Command{
		Name:    "import",
		Aliases: []string{"i"},
		Usage:   "Acquire source data, build the evidence table, and score targets",
		UsageText: `dilictl import --mapping targets.json                       # full pipeline
   dilictl import --mapping targets.json --openfda drugsfda.json
   dilictl import --mapping targets.json --skip-acquire         # re-score from cached sources
   dilictl import --mapping targets.json --alpha 0.7 --out data.json`,
		Action: cmdImport,
		Flags: []cli.Flag{
			mappingFlag,
			alphaFlag,
			openFDAFileFlag,
			skipAcquireFlag,
			outFlag,
		},
	}
)

// ImportResult summarizes one pipeline run.
type ImportResult struct {
	Compounds    int     `json:"dilirank_compounds" yaml:"dilirank_compounds"`
	DrugTargets  int     `json:"drug_target_rows" yaml:"drug_target_rows"`
	NetworkRows  int     `json:"network_rows" yaml:"network_rows"`
	Targets      int     `json:"targets_scored" yaml:"targets_scored"`
	Alpha        float64 `json:"alpha" yaml:"alpha"`
	Correlation  float64 `json:"score_withdrawal_correlation" yaml:"score_withdrawal_correlation"`
	ExportedFile string  `json:"exported_file,omitempty" yaml:"exported_file,omitempty"`
	Duration     string  `json:"duration" yaml:"duration"`
}

func cmdImport(c *cli.Context) error {
	start := time.Now()
	cfg := getConfig(c)
	conf := cfg.Conf

	mappingPath := c.String(mappingFlag.Name)
	if mappingPath == "" {
		return cli.ShowSubcommandHelp(c)
	}

	alpha := c.Float64(alphaFlag.Name)
	if alpha < 0 {
		alpha = conf.Alpha
	}

	sifPath := path.Join(getHomeDir(), pathwayFileName)
	bulkPath := c.String(openFDAFileFlag.Name)
	if bulkPath == "" {
		bulkPath = conf.OpenFDABulkPath
	}

	var statuses map[string]string
	g := new(errgroup.Group)
	if !c.Bool(skipAcquireFlag.Name) {
		g.Go(func() error {
			_, err := data.ImportDILIRank(cfg.DB, conf.DILIRankURL)
			return err
		})
		g.Go(func() error {
			return data.DownloadPathwayFile(conf.PathwayURL, sifPath)
		})
	}
	g.Go(func() error {
		if bulkPath == "" {
			return nil
		}
		f, err := os.Open(bulkPath)
		if err != nil {
			return fmt.Errorf("opening openFDA bulk file: %w", err)
		}
		defer f.Close()
		statuses, err = data.ParseDrugsFDA(f)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("acquiring source data: %w", err)
	}

	dilirank, err := data.GetDILIRank(cfg.DB)
	if err != nil {
		return fmt.Errorf("loading DILIrank compounds: %w", err)
	}
	if len(dilirank) == 0 {
		return fmt.Errorf("no DILIrank compounds available, run import without --skip-acquire first")
	}

	if statuses == nil {
		statuses = lookupStatuses(conf.OpenFDAURL, dilirank)
	}

	mapping, err := data.LoadDrugTargetMapping(mappingPath)
	if err != nil {
		return fmt.Errorf("loading drug target mapping: %w", err)
	}

	rows := data.BuildDrugTargets(mapping, dilirank, statuses)
	if len(rows) == 0 {
		return fmt.Errorf("no mapping drugs matched DILIrank compounds")
	}
	if err := data.SaveDrugTargets(cfg.DB, rows); err != nil {
		return fmt.Errorf("saving evidence rows: %w", err)
	}
	slog.Info("built drug target evidence", "rows", len(rows))

	networkRows, err := importNetwork(cfg, sifPath, rows)
	if err != nil {
		return err
	}

	pairs := data.ScorePairs(rows)
	evidence := score.DirectEvidence(pairs)

	network, err := data.GetNetworkRows(cfg.DB)
	if err != nil {
		return fmt.Errorf("loading network rows: %w", err)
	}
	score.ApplyNetworkScores(evidence, network)

	calc := score.NewCalculator(alpha)
	records, err := calc.Score(evidence)
	if err != nil {
		return fmt.Errorf("scoring targets: %w", err)
	}
	if err := data.SaveTargetScores(cfg.DB, records); err != nil {
		return fmt.Errorf("saving target scores: %w", err)
	}
	slog.Info("scored targets", "count", len(records), "alpha", calc.Alpha())

	summary, err := data.ValidateScores(cfg.DB)
	if err != nil {
		return fmt.Errorf("validating scores: %w", err)
	}

	result := &ImportResult{
		Compounds:   len(dilirank),
		DrugTargets: len(rows),
		NetworkRows: networkRows,
		Targets:     len(records),
		Alpha:       calc.Alpha(),
		Correlation: summary.ScoreWithdrawalCorr,
		Duration:    time.Since(start).String(),
	}

	if out := c.String(outFlag.Name); out != "" {
		if err := data.WriteTargetScores(out, records); err != nil {
			return fmt.Errorf("exporting score snapshot: %w", err)
		}
		result.ExportedFile = out
	}

	return encode(result)
}

// lookupStatuses resolves approval statuses per compound over the
// openFDA REST API when no bulk file was provided. Lookup failures
// degrade to unknown so one flaky call does not sink the import.
func lookupStatuses(apiURL string, dilirank []data.DILIRankRecord) map[string]string {
	key := getAPIKey()
	statuses := make(map[string]string, len(dilirank))

	slog.Info("no openFDA bulk file, using per-drug REST lookups", "compounds", len(dilirank))
	for _, rec := range dilirank {
		status, err := data.LookupApprovalStatus(apiURL, key, rec.CompoundName)
		if err != nil {
			slog.Debug("openFDA lookup failed", "compound", rec.CompoundName, "error", err)
			status = data.StatusUnknown
		}
		statuses[data.NormalizeDrugName(rec.CompoundName)] = status
	}

	return statuses
}

func importNetwork(cfg *appConfig, sifPath string, rows []data.DrugTargetRow) (int, error) {
	if _, err := os.Stat(sifPath); err != nil {
		slog.Warn("pathway file not available, network scores will be zero", "path", sifPath)
		return 0, nil
	}

	seen := make(map[string]bool, len(rows))
	riskTargets := make([]string, 0, len(rows))
	for _, row := range rows {
		if !seen[row.TargetSymbol] {
			seen[row.TargetSymbol] = true
			riskTargets = append(riskTargets, row.TargetSymbol)
		}
	}

	n, err := data.ImportPathwayFile(cfg.DB, sifPath, riskTargets)
	if err != nil {
		return 0, fmt.Errorf("importing pathway network: %w", err)
	}
	return n, nil
}
