package data

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/drugsafe/dilictl/pkg/net"
)

// Approval status values recorded for each drug.
const (
	StatusApproved  = "approved"
	StatusWithdrawn = "withdrawn"
	StatusOther     = "other"
	StatusUnknown   = "unknown"
	StatusNotFound  = "not_found"
)

// drugsFDAFile mirrors the shape of the openFDA drugsfda bulk export.
type drugsFDAFile struct {
	Results []drugsFDAResult `json:"results"`
}

type drugsFDAResult struct {
	ApplicationNumber string            `json:"application_number"`
	Products          []drugsFDAProduct `json:"products"`
}

type drugsFDAProduct struct {
	BrandName         string               `json:"brand_name"`
	MarketingStatus   string               `json:"marketing_status"`
	ActiveIngredients []drugsFDAIngredient `json:"active_ingredients"`
}

type drugsFDAIngredient struct {
	Name string `json:"name"`
}

// ParseDrugsFDA reads the openFDA drugsfda bulk JSON and returns a map
// of normalized drug name to approval status. Brand names and active
// ingredients both key into the map. When a drug appears with several
// marketing statuses, withdrawn wins over approved wins over other.
func ParseDrugsFDA(r io.Reader) (map[string]string, error) {
	var file drugsFDAFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("error decoding drugsfda JSON: %w", err)
	}

	statuses := make(map[string]string)
	record := func(name, status string) {
		key := NormalizeDrugName(name)
		if key == "" {
			return
		}
		statuses[key] = mergeStatus(statuses[key], status)
	}

	for _, result := range file.Results {
		for _, product := range result.Products {
			status := mapMarketingStatus(product.MarketingStatus)
			record(product.BrandName, status)
			for _, ing := range product.ActiveIngredients {
				record(ing.Name, status)
			}
		}
	}

	return statuses, nil
}

// mapMarketingStatus folds openFDA marketing status values into the
// approval status vocabulary.
func mapMarketingStatus(status string) string {
	switch s := strings.ToLower(strings.TrimSpace(status)); {
	case s == "":
		return StatusUnknown
	case strings.Contains(s, "discontinued"), strings.Contains(s, "withdrawn"):
		return StatusWithdrawn
	case strings.Contains(s, "prescription"), strings.Contains(s, "over-the-counter"),
		strings.Contains(s, "otc"), strings.Contains(s, "approved"):
		return StatusApproved
	default:
		return StatusOther
	}
}

// statusRank orders statuses so the most safety-relevant one wins a merge.
func statusRank(status string) int {
	switch status {
	case StatusWithdrawn:
		return 4
	case StatusApproved:
		return 3
	case StatusOther:
		return 2
	case StatusUnknown:
		return 1
	default:
		return 0
	}
}

func mergeStatus(current, candidate string) string {
	if statusRank(candidate) > statusRank(current) {
		return candidate
	}
	return current
}

// MatchApprovalStatus resolves a drug name against the parsed status
// map: normalized exact match first, then a substring scan for
// multi-ingredient entries. Unmatched names report unknown.
func MatchApprovalStatus(name string, statuses map[string]string) string {
	normalized := NormalizeDrugName(name)
	if normalized == "" {
		return StatusUnknown
	}

	for _, v := range NameVariations(name) {
		if status, ok := statuses[v]; ok {
			return status
		}
	}

	best := StatusUnknown
	found := false
	for key, status := range statuses {
		if strings.Contains(key, normalized) || strings.Contains(normalized, key) {
			if !found || statusRank(status) > statusRank(best) {
				best = status
				found = true
			}
		}
	}
	if found {
		return best
	}

	return StatusUnknown
}

// openFDAResponse is the REST lookup response shape.
type openFDAResponse struct {
	Results []drugsFDAResult `json:"results"`
}

// LookupApprovalStatus queries the openFDA REST API for a single drug.
// Drugs absent from the API report not_found rather than an error so a
// batch of lookups keeps going.
func LookupApprovalStatus(baseURL, apiKey, name string) (string, error) {
	q := url.Values{}
	q.Set("search", fmt.Sprintf("products.brand_name:%q", name))
	q.Set("limit", "5")
	if apiKey != "" {
		q.Set("api_key", apiKey)
	}

	var resp openFDAResponse
	if err := net.GetJSON(fmt.Sprintf("%s?%s", baseURL, q.Encode()), &resp); err != nil {
		if errors.Is(err, net.ErrURLNotFound) {
			return StatusNotFound, nil
		}
		return "", fmt.Errorf("error querying openFDA for %s: %w", name, err)
	}

	status := StatusNotFound
	for _, result := range resp.Results {
		for _, product := range result.Products {
			status = mergeStatus(status, mapMarketingStatus(product.MarketingStatus))
		}
	}

	return status, nil
}
