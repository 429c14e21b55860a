// Package analyzer implements the AV7 gap analysis.
//
// The analysis reconciles two tables: the refueling record, whose AV7
// receipt numbers are expected to form a gapless ascending sequence, and
// the flight schedule. It walks the sorted receipt sequence, finds numeric
// discontinuities, classifies each as a genuine gap or a series/book
// boundary, builds a slack-padded time window from the timestamps on
// either side of the gap, and matches scheduled flights without a receipt
// whose departure time falls inside the window.
//
// The pipeline, in order:
//  1. prefix exclusion over raw receipt-id text
//  2. sequence validation (numeric coercion, ascending sort)
//  3. unmatched-flight pool construction from the schedule
//  4. gap detection over adjacent receipt pairs
//  5. window matching against the pool
//  6. report assembly, one finding per missing receipt number
//
// The whole run is a single synchronous batch over immutable in-memory
// tables; all knobs live in Config and nothing is cached between runs.
//
// Example usage:
//
//	cfg := analyzer.DefaultConfig()
//	cfg.SlackMinutes = 90
//
//	engine := analyzer.NewEngine(cfg)
//	engine.LoadReceipts(receiptRows)
//	engine.LoadSchedule(scheduleRows)
//
//	result, err := engine.Analyze()
package analyzer

import (
	"fmt"
	"sort"
	"strings"
)

// Config holds the analysis parameters. The caller builds one Config per
// run and the engine never consults anything else.
type Config struct {
	// SlackMinutes is the buffer added to both ends of a gap's time
	// window to tolerate clock and logging imprecision.
	SlackMinutes int `json:"slack_minutes"`

	// MaxGapSize is the series-jump threshold: a gap larger than this is
	// assumed to be a switch to a new receipt book rather than missing
	// receipts, and produces no findings.
	MaxGapSize int64 `json:"max_gap_size"`

	// IgnoredReceiptIDs are receipt numbers known to be cancelled or
	// otherwise accounted for; they are never reported as missing.
	IgnoredReceiptIDs map[int64]bool `json:"ignored_receipt_ids,omitempty"`

	// IgnoredFlightIDs are normalized flight ids excluded from the
	// unmatched-flight pool. They never affect which receipts count as
	// recorded.
	IgnoredFlightIDs map[string]bool `json:"ignored_flight_ids,omitempty"`

	// IgnoredPrefixes excludes receipt rows whose raw AV7 text starts
	// with any of these strings. Matching is textual, not numeric: the
	// prefix "10" matches both "10" and "100234".
	IgnoredPrefixes []string `json:"ignored_prefixes,omitempty"`
}

// DefaultConfig returns the analysis defaults: an hour of slack and a
// series-jump threshold of 1000.
func DefaultConfig() *Config {
	return &Config{
		SlackMinutes:      60,
		MaxGapSize:        1000,
		IgnoredReceiptIDs: make(map[int64]bool),
		IgnoredFlightIDs:  make(map[string]bool),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.SlackMinutes < 0 {
		return fmt.Errorf("slack minutes cannot be negative: %d", c.SlackMinutes)
	}

	if c.MaxGapSize < 1 {
		return fmt.Errorf("max gap size must be at least 1: %d", c.MaxGapSize)
	}

	for _, prefix := range c.IgnoredPrefixes {
		if strings.TrimSpace(prefix) == "" {
			return fmt.Errorf("ignored prefixes cannot be blank")
		}
	}

	return nil
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}

	clone := &Config{
		SlackMinutes:      c.SlackMinutes,
		MaxGapSize:        c.MaxGapSize,
		IgnoredReceiptIDs: make(map[int64]bool, len(c.IgnoredReceiptIDs)),
		IgnoredFlightIDs:  make(map[string]bool, len(c.IgnoredFlightIDs)),
	}

	for id, v := range c.IgnoredReceiptIDs {
		clone.IgnoredReceiptIDs[id] = v
	}
	for id, v := range c.IgnoredFlightIDs {
		clone.IgnoredFlightIDs[id] = v
	}
	if len(c.IgnoredPrefixes) > 0 {
		clone.IgnoredPrefixes = append([]string(nil), c.IgnoredPrefixes...)
	}

	return clone
}

// String returns a human-readable description of the configuration
func (c *Config) String() string {
	ignored := make([]string, 0, len(c.IgnoredReceiptIDs))
	for id := range c.IgnoredReceiptIDs {
		ignored = append(ignored, fmt.Sprintf("%d", id))
	}
	sort.Strings(ignored)

	return fmt.Sprintf("Config{Slack: %d min, MaxGap: %d, IgnoredReceipts: [%s], IgnoredFlights: %d, IgnoredPrefixes: %v}",
		c.SlackMinutes, c.MaxGapSize, strings.Join(ignored, ","), len(c.IgnoredFlightIDs), c.IgnoredPrefixes)
}
