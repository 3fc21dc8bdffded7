package data

import (
	"sort"
	"strings"
)

const (
	// similarityThreshold is the minimum ratio for a fuzzy name match.
	similarityThreshold = 0.8

	// earlyExitSimilarity lets the fuzzy scan stop on a near-perfect hit.
	earlyExitSimilarity = 0.95

	// maxLengthDiff prefilters fuzzy candidates whose lengths differ too much.
	maxLengthDiff = 5
)

// saltSuffixes are dosage-form and salt qualifiers stripped during
// drug name normalization.
var saltSuffixes = []string{
	"hydrochloride", "hcl", "sodium", "potassium", "calcium", "sulfate",
	"sulphate", "phosphate", "citrate", "tartrate", "maleate", "mesylate",
	"besylate", "succinate", "fumarate", "acetate", "dihydrate",
	"monohydrate", "anhydrous",
}

// drugSynonyms maps common alternate names to their DILIrank form.
var drugSynonyms = map[string]string{
	"paracetamol":                   "acetaminophen",
	"acetylsalicylic acid":          "aspirin",
	"6-mercaptopurine":              "mercaptopurine",
	"glibenclamide":                 "glyburide",
	"adrenaline":                    "epinephrine",
	"salbutamol":                    "albuterol",
	"ciclosporin":                   "cyclosporine",
	"frusemide":                     "furosemide",
	"phenobarbitone":                "phenobarbital",
	"rifampin":                      "rifampicin",
	"valproate":                     "valproic acid",
	"thyroxine":                     "levothyroxine",
	"isophane insulin":              "insulin nph",
	"lignocaine":                    "lidocaine",
	"pethidine":                     "meperidine",
	"colecalciferol":                "cholecalciferol",
	"amoxycillin":                   "amoxicillin",
	"sulphasalazine":                "sulfasalazine",
	"beclometasone":                 "beclomethasone",
	"dextropropoxyphene":            "propoxyphene",
	"glyceryl trinitrate":           "nitroglycerin",
	"oestradiol":                    "estradiol",
	"cephalexin":                    "cefalexin",
	"trimethoprim-sulfamethoxazole": "sulfamethoxazole",
}

// NormalizeDrugName lowercases a drug name and strips trailing salt
// and hydrate qualifiers so "Metformin Hydrochloride" and "metformin"
// compare equal.
func NormalizeDrugName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.Join(strings.Fields(n), " ")

	changed := true
	for changed {
		changed = false
		for _, suffix := range saltSuffixes {
			if strings.HasSuffix(n, " "+suffix) {
				n = strings.TrimSpace(strings.TrimSuffix(n, " "+suffix))
				changed = true
			}
		}
	}

	return n
}

// NameVariations returns the candidate forms of a drug name used for
// matching: the normalized name plus any known synonym.
func NameVariations(name string) []string {
	normalized := NormalizeDrugName(name)
	variations := []string{normalized}

	if syn, ok := drugSynonyms[normalized]; ok {
		variations = append(variations, syn)
	}
	for alt, canonical := range drugSynonyms {
		if canonical == normalized {
			variations = append(variations, alt)
		}
	}

	sort.Strings(variations[1:])
	return variations
}

// Similarity computes a ratio in [0,1] between two strings: twice the
// number of matching characters over the total length, the same measure
// difflib's SequenceMatcher uses.
func Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	total := len(a) + len(b)
	if total == 0 {
		return 1.0
	}
	return 2.0 * float64(matchingChars(a, b)) / float64(total)
}

// matchingChars counts characters in the longest matching blocks found
// by recursive longest-common-substring decomposition.
func matchingChars(a, b string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	bestLen, bestA, bestB := 0, 0, 0
	for i := 0; i < len(a); i++ {
		for j := 0; j < len(b); j++ {
			k := 0
			for i+k < len(a) && j+k < len(b) && a[i+k] == b[j+k] {
				k++
			}
			if k > bestLen {
				bestLen, bestA, bestB = k, i, j
			}
		}
	}
	if bestLen == 0 {
		return 0
	}

	return bestLen +
		matchingChars(a[:bestA], b[:bestB]) +
		matchingChars(a[bestA+bestLen:], b[bestB+bestLen:])
}

// MatchDrugName resolves a drug name against a set of candidate names.
// It tries exact normalized matches and synonyms first, then falls back
// to a fuzzy scan. Returns the matched candidate and true on success.
func MatchDrugName(name string, candidates []string) (string, bool) {
	index := make(map[string]string, len(candidates))
	for _, c := range candidates {
		index[NormalizeDrugName(c)] = c
	}

	for _, v := range NameVariations(name) {
		if c, ok := index[v]; ok {
			return c, true
		}
	}

	normalized := NormalizeDrugName(name)
	bestScore := 0.0
	bestMatch := ""
	for candidateNorm, candidate := range index {
		diff := len(candidateNorm) - len(normalized)
		if diff > maxLengthDiff || diff < -maxLengthDiff {
			continue
		}
		score := Similarity(normalized, candidateNorm)
		if score > bestScore {
			bestScore = score
			bestMatch = candidate
			if score >= earlyExitSimilarity {
				break
			}
		}
	}

	if bestScore >= similarityThreshold {
		return bestMatch, true
	}
	return "", false
}
