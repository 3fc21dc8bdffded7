package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	configFileName = "config.yaml"
	dirMode        = 0700
	fileMode       = 0600

	defaultDILIRankURL = "https://www.fda.gov/science-research/liver-toxicity-knowledge-base-ltkb/drug-induced-liver-injury-rank-dilirank-dataset"
	defaultPathwayURL  = "https://download.baderlab.org/PathwayCommons/PC2/v12/PathwayCommons12.All.hgnc.sif.gz"
	defaultOpenFDAURL  = "https://api.fda.gov/drug/drugsfda.json"

	defaultAlpha         = 0.5
	defaultHistogramBins = 30
)

// Config holds the source locations and scoring parameters of the app.
type Config struct {
	DILIRankURL     string  `yaml:"dilirank_url"`
	PathwayURL      string  `yaml:"pathway_url"`
	OpenFDAURL      string  `yaml:"openfda_url"`
	OpenFDABulkPath string  `yaml:"openfda_bulk_path"`
	Alpha           float64 `yaml:"alpha"`
	HistogramBins   int     `yaml:"histogram_bins"`
}

func getDefaultConfig() *Config {
	return &Config{
		DILIRankURL:   defaultDILIRankURL,
		PathwayURL:    defaultPathwayURL,
		OpenFDAURL:    defaultOpenFDAURL,
		Alpha:         defaultAlpha,
		HistogramBins: defaultHistogramBins,
	}
}

// Save writes the config file into the given directory.
func Save(dirPath string, c *Config) error {
	if dirPath == "" {
		return errors.New("config directory required")
	}
	if c == nil {
		return errors.New("config required")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	path := filepath.Join(dirPath, configFileName)
	if err := os.WriteFile(path, b, fileMode); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

// ReadOrCreate reads app config from directory or creates a new one
// with defaults.
func ReadOrCreate(dirPath string) (*Config, error) {
	if dirPath == "" {
		return nil, errors.New("config directory required")
	}

	if _, err := os.Stat(dirPath); errors.Is(err, os.ErrNotExist) {
		if err := os.Mkdir(dirPath, dirMode); err != nil {
			return nil, fmt.Errorf("failed to create dir %s: %w", dirPath, err)
		}
	}

	path := filepath.Join(dirPath, configFileName)

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := Save(dirPath, getDefaultConfig()); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("error unmarshalling config file %s: %w", path, err)
	}

	// older config files may predate individual fields
	if c.Alpha == 0 {
		c.Alpha = defaultAlpha
	}
	if c.HistogramBins == 0 {
		c.HistogramBins = defaultHistogramBins
	}

	return &c, nil
}

// GetOrCreateHomeDir returns the app home directory for the current
// user. The create flag is set to true if the directory was created.
func GetOrCreateHomeDir(name string) (path string, created bool, err error) {
	if name == "" {
		return "", false, errors.New("name cannot be empty")
	}

	if !strings.HasPrefix(name, ".") {
		name = "." + name
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", false, fmt.Errorf("failed to get user home dir: %w", err)
	}

	dir := filepath.Join(home, name)
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		slog.Debug("creating home dir", "dir", dir)
		if err := os.Mkdir(dir, dirMode); err != nil {
			return "", false, fmt.Errorf("failed to create dir %s: %w", dir, err)
		}
		created = true
	}
	return dir, created, nil
}
