package ocr

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reQtyUnit = regexp.MustCompile(`\b\d+(\.\d+)?\s*(kg|g|gm|l|ltr|ml|pc|pcs|dz|doz|nos|pkt)\b`)
	reRupee   = regexp.MustCompile(`₹|\brs\.?\s*\d|\binr\b`)
	reAtRate  = regexp.MustCompile(`(@|\bper\b|\bx\b)\s*\d`)
)

// heuristicConfidence scores how much the text looks like an order note.
func heuristicConfidence(txt string) float32 {
	txtL := strings.ToLower(txt)
	score := float32(0.2) // base
	if reQtyUnit.MatchString(txtL) {
		score += 0.2
	}
	if reRupee.MatchString(txtL) {
		score += 0.15
	}
	if reAtRate.MatchString(txtL) {
		score += 0.15
	}
	if strings.Count(strings.TrimSpace(txt), "\n") >= 2 {
		score += 0.1
	} // several lines
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// tsvMeanConfidence returns the mean word confidence of tesseract TSV output in 0..1.
func tsvMeanConfidence(tsv string) float32 {
	var sum, n float64
	for i, ln := range strings.Split(tsv, "\n") {
		if i == 0 || len(ln) == 0 {
			continue
		} // skip header
		cols := strings.Split(ln, "\t")
		if len(cols) < 12 {
			continue
		}
		confStr := cols[10]
		if confStr == "" || confStr == "-1" {
			continue
		}
		if v, err := strconv.ParseFloat(confStr, 64); err == nil {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float32(sum / n / 100.0)
}
