package analyzer

import (
	"sort"
	"strings"

	"av7-gap-analyzer/internal/models"
	"av7-gap-analyzer/pkg/errors"
	"av7-gap-analyzer/pkg/logger"
)

// Receipt is a refueling record row that survived sequence validation.
// ID is the coerced receipt number, FlightClean the normalized flight id.
type Receipt struct {
	ID          int64
	FlightRaw   string
	FlightClean string
	Time        models.ClockTime
}

// PoolFlight is a scheduled flight with no matching receipt. STDMinutes
// caches the departure time as minutes since midnight, -1 when the STD
// could not be parsed.
type PoolFlight struct {
	FlightRaw   string
	FlightClean string
	STD         models.ClockTime
	STDMinutes  int
}

// Diagnostics counts what happened to the input rows during a run. The
// reporter uses these to explain empty reports.
type Diagnostics struct {
	RowsRead             int `json:"rows_read"`
	RowsExcludedByPrefix int `json:"rows_excluded_by_prefix"`
	RowsValid            int `json:"rows_valid"`
	ReceiptsDropped      int `json:"receipts_dropped"`
	ScheduleRows         int `json:"schedule_rows"`
	PoolSize             int `json:"pool_size"`
	GapsAnalyzed         int `json:"gaps_analyzed"`
	GapsSkippedJump      int `json:"gaps_skipped_jump"`
	GapsSkippedNoTime    int `json:"gaps_skipped_no_time"`
}

// Result is the outcome of one analysis run.
type Result struct {
	Findings    []*GapFinding `json:"findings"`
	Diagnostics Diagnostics   `json:"diagnostics"`
}

// Engine runs the gap analysis over loaded receipt and schedule tables.
type Engine struct {
	config   *Config
	receipts []models.ReceiptRow
	schedule []models.ScheduleRow
	loaded   struct {
		receipts bool
		schedule bool
	}
	logger logger.Logger
}

// NewEngine creates an analysis engine with the given configuration.
// A nil config gets the defaults.
func NewEngine(config *Config) *Engine {
	if config == nil {
		config = DefaultConfig()
	}

	return &Engine{
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("analyzer"),
	}
}

// LoadReceipts sets the receipt table for the next Analyze call. The
// slice is not copied; the caller must not mutate it during analysis.
func (e *Engine) LoadReceipts(rows []models.ReceiptRow) {
	e.receipts = rows
	e.loaded.receipts = true
}

// LoadSchedule sets the flight schedule for the next Analyze call.
func (e *Engine) LoadSchedule(rows []models.ScheduleRow) {
	e.schedule = rows
	e.loaded.schedule = true
}

// Analyze runs the full pipeline and returns the findings in ascending
// missing-receipt order. It fails if the configuration is invalid or
// either table was never loaded; empty tables are fine and produce an
// empty report.
func (e *Engine) Analyze() (*Result, error) {
	if err := e.config.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "analysis", e.config.String(), err)
	}
	if !e.loaded.receipts {
		return nil, errors.AnalysisError(errors.CodeProcessingError, "gap analysis: no receipt table loaded", nil)
	}
	if !e.loaded.schedule {
		return nil, errors.AnalysisError(errors.CodeProcessingError, "gap analysis: no schedule table loaded", nil)
	}

	result := &Result{Findings: []*GapFinding{}}
	result.Diagnostics.RowsRead = len(e.receipts)
	result.Diagnostics.ScheduleRows = len(e.schedule)

	e.logger.WithFields(logger.Fields{
		"receipt_rows":  len(e.receipts),
		"schedule_rows": len(e.schedule),
		"slack_minutes": e.config.SlackMinutes,
		"max_gap_size":  e.config.MaxGapSize,
	}).Info("Starting gap analysis")

	kept, excluded := applyPrefixExclusions(e.receipts, e.config.IgnoredPrefixes)
	result.Diagnostics.RowsExcludedByPrefix = excluded

	receipts := validateSequence(kept)
	result.Diagnostics.RowsValid = len(receipts)
	result.Diagnostics.ReceiptsDropped = len(kept) - len(receipts)

	pool := buildFlightPool(e.schedule, receipts, e.config.IgnoredFlightIDs)
	result.Diagnostics.PoolSize = len(pool)

	result.Findings = e.detectGaps(receipts, pool, &result.Diagnostics)

	e.logger.WithFields(logger.Fields{
		"findings":       len(result.Findings),
		"rows_valid":     result.Diagnostics.RowsValid,
		"pool_size":      result.Diagnostics.PoolSize,
		"gaps_analyzed":  result.Diagnostics.GapsAnalyzed,
		"gaps_jump_skip": result.Diagnostics.GapsSkippedJump,
	}).Info("Gap analysis complete")

	return result, nil
}

// Analyze is a convenience wrapper that runs one analysis over the given
// tables without keeping an engine around.
func Analyze(receipts []models.ReceiptRow, schedule []models.ScheduleRow, config *Config) (*Result, error) {
	engine := NewEngine(config)
	engine.LoadReceipts(receipts)
	engine.LoadSchedule(schedule)
	return engine.Analyze()
}

// applyPrefixExclusions drops rows whose raw AV7 text, after trimming,
// starts with any excluded prefix. It runs before numeric coercion so
// that textual annotations like "VOID-1002" can be excluded wholesale.
func applyPrefixExclusions(rows []models.ReceiptRow, prefixes []string) ([]models.ReceiptRow, int) {
	if len(prefixes) == 0 {
		return rows, 0
	}

	kept := make([]models.ReceiptRow, 0, len(rows))
	excluded := 0
	for _, row := range rows {
		raw := strings.TrimSpace(row.AV7)
		skip := false
		for _, prefix := range prefixes {
			if strings.HasPrefix(raw, prefix) {
				skip = true
				break
			}
		}
		if skip {
			excluded++
			continue
		}
		kept = append(kept, row)
	}
	return kept, excluded
}

// validateSequence coerces raw rows into receipts and sorts them by
// receipt number. Rows whose AV7 text is not an integral number are
// dropped; the sort is stable so duplicate numbers keep their input
// order. Flight ids and refuel times are normalized here, once, so the
// gap walk never touches raw text.
func validateSequence(rows []models.ReceiptRow) []Receipt {
	receipts := make([]Receipt, 0, len(rows))
	for _, row := range rows {
		id, ok := models.ParseReceiptID(row.AV7)
		if !ok {
			continue
		}
		receipts = append(receipts, Receipt{
			ID:          id,
			FlightRaw:   strings.TrimSpace(row.Flight),
			FlightClean: models.CleanFlightID(row.Flight),
			Time:        models.ParseClockTime(row.RefuelTime),
		})
	}

	sort.SliceStable(receipts, func(i, j int) bool {
		return receipts[i].ID < receipts[j].ID
	})

	return receipts
}

// buildFlightPool returns the scheduled flights that have no receipt,
// in schedule order. A flight is matched when its normalized id equals
// the normalized id of any validated receipt, regardless of time.
// Ignored flight ids are filtered from the pool only; they still count
// as recorded for matching purposes.
func buildFlightPool(schedule []models.ScheduleRow, receipts []Receipt, ignored map[string]bool) []PoolFlight {
	recorded := make(map[string]bool, len(receipts))
	for _, r := range receipts {
		recorded[r.FlightClean] = true
	}

	pool := make([]PoolFlight, 0, len(schedule))
	for _, row := range schedule {
		clean := models.CleanFlightID(row.Flight)
		if recorded[clean] {
			continue
		}
		if ignored[clean] {
			continue
		}
		std := models.ParseScheduleTime(row.STD)
		pool = append(pool, PoolFlight{
			FlightRaw:   strings.TrimSpace(row.Flight),
			FlightClean: clean,
			STD:         std,
			STDMinutes:  std.Minutes(),
		})
	}
	return pool
}
