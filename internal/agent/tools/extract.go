package tools

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gemlight/diamond-agent/internal/agent/model"
	errx "github.com/gemlight/diamond-agent/internal/core/error"
)

// maxExtractLen bounds extractor input to keep pathological messages cheap.
const maxExtractLen = 8 * 1024

type ExtractPreferencesInput struct {
	Message string `json:"message"`
}

func decodeExtractInput(raw json.RawMessage) (*ExtractPreferencesInput, error) {
	var in ExtractPreferencesInput
	if err := decodeStrict(raw, &in); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Message) == "" {
		return nil, fmt.Errorf("%w: message is required", errx.ErrToolArguments)
	}
	return &in, nil
}

var (
	caratPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)[\s-]*carat`)
	pricePattern = regexp.MustCompile(`\$(\d{1,3}(?:,\d{3})*(?:\.\d+)?|\d+)`)
)

// ExtractPreferences pulls diamond preferences out of a free-text customer
// message. The result is a partial mapping: a key appears only when the
// message mentions it, so an absent key means "not mentioned", never
// "explicitly none".
func ExtractPreferences(message string) map[string]any {
	if len(message) > maxExtractLen {
		message = message[:maxExtractLen]
	}

	prefs := make(map[string]any, 6)

	if m := caratPattern.FindStringSubmatch(message); m != nil {
		if carat, err := strconv.ParseFloat(m[1], 64); err == nil {
			prefs["carat"] = carat
		}
	}

	if m := pricePattern.FindStringSubmatch(message); m != nil {
		cleaned := strings.ReplaceAll(m[1], ",", "")
		if budget, err := strconv.ParseFloat(cleaned, 64); err == nil {
			prefs["budget"] = budget
		}
	}

	// Color grades are single capital letters; require word boundaries so a
	// "D" inside a word never counts. Grade I is only recognized with an
	// explicit "color" qualifier, since a bare " I " is almost always the
	// pronoun.
	padded := " " + message + " "
	var colors []string
	for _, c := range model.Colors {
		standalone := c != "I" && strings.Contains(padded, " "+c+" ")
		if standalone || strings.Contains(padded, " color "+c) {
			colors = append(colors, c)
		}
	}
	if len(colors) > 0 {
		prefs["color"] = colors
	}

	upper := strings.ToUpper(message)
	var clarities []string
	for _, c := range model.Clarities {
		if strings.Contains(upper, c) {
			clarities = append(clarities, c)
		}
	}
	if len(clarities) > 0 {
		prefs["clarity"] = clarities
	}

	lower := strings.ToLower(message)
	var cuts []string
	for _, c := range model.Cuts {
		if strings.Contains(lower, strings.ToLower(c)) {
			cuts = append(cuts, c)
		}
	}
	if len(cuts) > 0 {
		prefs["cut"] = cuts
	}

	var shapes []string
	for _, s := range model.Shapes {
		if strings.Contains(lower, strings.ToLower(s)) {
			shapes = append(shapes, s)
		}
	}
	if len(shapes) > 0 {
		prefs["shape"] = shapes
	}

	return prefs
}
