// Package config builds the parser, analysis, and report configurations
// from command-line flag values.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"av7-gap-analyzer/internal/analyzer"
	"av7-gap-analyzer/internal/models"
	"av7-gap-analyzer/internal/parsers"
	"av7-gap-analyzer/internal/reporter"
)

// CreateReceiptParserConfig creates the receipt parser configuration.
// The standard AV7 log layout needs no column aliases.
func CreateReceiptParserConfig() *parsers.ReceiptParserConfig {
	return parsers.DefaultReceiptParserConfig()
}

// CreateScheduleParserConfig creates the schedule parser configuration
func CreateScheduleParserConfig() *parsers.ScheduleParserConfig {
	return parsers.DefaultScheduleParserConfig()
}

// CreateAnalysisConfig creates an analysis configuration from CLI flag
// values, normalizing the exclusion lists the same way the analysis
// normalizes its inputs.
func CreateAnalysisConfig(slackMinutes int, maxGapSize int64, ignoreAV7, ignoreFlights, ignorePrefixes []string) (*analyzer.Config, error) {
	config := analyzer.DefaultConfig()
	config.SlackMinutes = slackMinutes
	config.MaxGapSize = maxGapSize

	ids, err := ParseIgnoredReceiptIDs(ignoreAV7)
	if err != nil {
		return nil, err
	}
	config.IgnoredReceiptIDs = ids
	config.IgnoredFlightIDs = ParseIgnoredFlightIDs(ignoreFlights)
	config.IgnoredPrefixes = ParseIgnoredPrefixes(ignorePrefixes)

	return config, nil
}

// ParseIgnoredReceiptIDs converts raw receipt-id tokens into a lookup
// set. Tokens are cleaned to their digits so values pasted from
// spreadsheets ("#100234", "100234.0") still resolve. Blank tokens are
// skipped; tokens with no digits at all are an error.
func ParseIgnoredReceiptIDs(tokens []string) (map[int64]bool, error) {
	ids := make(map[int64]bool, len(tokens))

	for _, token := range tokens {
		trimmed := strings.TrimSpace(token)
		if trimmed == "" {
			continue
		}

		if id, ok := models.ParseReceiptID(trimmed); ok {
			ids[id] = true
			continue
		}

		digits := keepDigits(trimmed)
		if digits == "" {
			return nil, fmt.Errorf("ignored receipt id %q contains no digits", token)
		}
		id, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ignored receipt id %q is not a valid number: %w", token, err)
		}
		ids[id] = true
	}

	return ids, nil
}

// ParseIgnoredFlightIDs normalizes flight-id tokens into a lookup set
// using the same normalization the analysis applies to flight ids.
func ParseIgnoredFlightIDs(tokens []string) map[string]bool {
	ids := make(map[string]bool, len(tokens))
	for _, token := range tokens {
		clean := models.CleanFlightID(token)
		if clean == "" {
			continue
		}
		ids[clean] = true
	}
	return ids
}

// ParseIgnoredPrefixes trims prefix tokens and drops blank ones.
func ParseIgnoredPrefixes(tokens []string) []string {
	var prefixes []string
	for _, token := range tokens {
		trimmed := strings.TrimSpace(token)
		if trimmed == "" {
			continue
		}
		prefixes = append(prefixes, trimmed)
	}
	return prefixes
}

// CreateReportConfig creates a report configuration for the specified output format
func CreateReportConfig(format string) *reporter.ReportConfig {
	config := reporter.DefaultReportConfig()

	switch format {
	case "console":
		config.Format = reporter.FormatConsole
		config.IncludeDiagnostics = true
	case "json":
		config.Format = reporter.FormatJSON
		config.IncludeDiagnostics = true
	case "csv":
		config.Format = reporter.FormatCSV
		config.CSVHeaders = true
		config.CSVDelimiter = ','
		config.IncludeDiagnostics = false // CSV is for finding rows only
	case "xlsx":
		config.Format = reporter.FormatXLSX
		config.IncludeDiagnostics = false
	}

	return config
}

func keepDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
