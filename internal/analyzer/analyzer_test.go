package analyzer

import (
	"reflect"
	"testing"

	"av7-gap-analyzer/internal/models"
)

func receiptRow(av7, flight, refuelTime string) models.ReceiptRow {
	return models.ReceiptRow{AV7: av7, Flight: flight, RefuelTime: refuelTime}
}

func scheduleRow(flight, std string) models.ScheduleRow {
	return models.ScheduleRow{Flight: flight, STD: std}
}

func runAnalysis(t *testing.T, receipts []models.ReceiptRow, schedule []models.ScheduleRow, config *Config) *Result {
	t.Helper()

	result, err := Analyze(receipts, schedule, config)
	if err != nil {
		t.Fatalf("Analyze() failed: %v", err)
	}
	return result
}

func missingIDs(result *Result) []int64 {
	ids := make([]int64, 0, len(result.Findings))
	for _, f := range result.Findings {
		ids = append(ids, f.MissingID)
	}
	return ids
}

func TestAnalyzeBasicGap(t *testing.T) {
	config := DefaultConfig()
	config.SlackMinutes = 60
	config.MaxGapSize = 10

	receipts := []models.ReceiptRow{
		receiptRow("100", "AB1", "09:00:00"),
		receiptRow("103", "AB2", "10:00:00"),
	}
	schedule := []models.ScheduleRow{
		scheduleRow("AB3", "0930"),
		scheduleRow("AB4", "1400"),
	}

	result := runAnalysis(t, receipts, schedule, config)

	if got := missingIDs(result); !reflect.DeepEqual(got, []int64{101, 102}) {
		t.Fatalf("missing ids = %v, want [101 102]", got)
	}

	for _, f := range result.Findings {
		if f.WindowStartText() != "08:00" || f.WindowEndText() != "11:00" {
			t.Errorf("finding %d window = %s-%s, want 08:00-11:00",
				f.MissingID, f.WindowStartText(), f.WindowEndText())
		}
		if f.WindowLogic != WindowNormal {
			t.Errorf("finding %d logic = %v, want Normal", f.MissingID, f.WindowLogic)
		}
		if !reflect.DeepEqual(f.Candidates, []string{"AB3 (09:30)"}) {
			t.Errorf("finding %d candidates = %v, want [AB3 (09:30)]", f.MissingID, f.Candidates)
		}
		if f.CandidateText != "AB3 (09:30)" {
			t.Errorf("finding %d candidate text = %q", f.MissingID, f.CandidateText)
		}
	}

	diag := result.Diagnostics
	if diag.RowsRead != 2 || diag.RowsValid != 2 || diag.PoolSize != 2 || diag.GapsAnalyzed != 1 {
		t.Errorf("diagnostics = %+v", diag)
	}
}

func TestAnalyzeGapRules(t *testing.T) {
	tests := []struct {
		name     string
		config   func(*Config)
		receipts []models.ReceiptRow
		wantIDs  []int64
		wantJump int
		wantNoTS int
	}{
		{
			name: "consecutive numbers produce nothing",
			receipts: []models.ReceiptRow{
				receiptRow("100", "AB1", "09:00:00"),
				receiptRow("101", "AB2", "09:30:00"),
			},
			wantIDs: []int64{},
		},
		{
			name: "duplicate numbers produce nothing",
			receipts: []models.ReceiptRow{
				receiptRow("100", "AB1", "09:00:00"),
				receiptRow("100", "AB2", "09:30:00"),
			},
			wantIDs: []int64{},
		},
		{
			name:   "series jump is suppressed",
			config: func(c *Config) { c.MaxGapSize = 1000 },
			receipts: []models.ReceiptRow{
				receiptRow("100", "AB1", "09:00:00"),
				receiptRow("5000", "AB2", "10:00:00"),
			},
			wantIDs:  []int64{},
			wantJump: 1,
		},
		{
			name:   "gap exactly at threshold is analyzed",
			config: func(c *Config) { c.MaxGapSize = 3 },
			receipts: []models.ReceiptRow{
				receiptRow("100", "AB1", "09:00:00"),
				receiptRow("103", "AB2", "10:00:00"),
			},
			wantIDs: []int64{101, 102},
		},
		{
			name: "missing refuel time skips the gap",
			receipts: []models.ReceiptRow{
				receiptRow("100", "AB1", ""),
				receiptRow("103", "AB2", "10:00:00"),
			},
			wantIDs:  []int64{},
			wantNoTS: 1,
		},
		{
			name: "unsorted input is sorted before the walk",
			receipts: []models.ReceiptRow{
				receiptRow("103", "AB2", "10:00:00"),
				receiptRow("100", "AB1", "09:00:00"),
			},
			wantIDs: []int64{101, 102},
		},
		{
			name: "non-numeric receipt ids are dropped",
			receipts: []models.ReceiptRow{
				receiptRow("100", "AB1", "09:00:00"),
				receiptRow("CANCELLED", "AB9", "09:15:00"),
				receiptRow("103", "AB2", "10:00:00"),
			},
			wantIDs: []int64{101, 102},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			if tt.config != nil {
				tt.config(config)
			}

			result := runAnalysis(t, tt.receipts, nil, config)

			if got := missingIDs(result); !reflect.DeepEqual(got, tt.wantIDs) {
				t.Errorf("missing ids = %v, want %v", got, tt.wantIDs)
			}
			if result.Diagnostics.GapsSkippedJump != tt.wantJump {
				t.Errorf("GapsSkippedJump = %d, want %d", result.Diagnostics.GapsSkippedJump, tt.wantJump)
			}
			if result.Diagnostics.GapsSkippedNoTime != tt.wantNoTS {
				t.Errorf("GapsSkippedNoTime = %d, want %d", result.Diagnostics.GapsSkippedNoTime, tt.wantNoTS)
			}
		})
	}
}

func TestAnalyzeSwappedWindow(t *testing.T) {
	config := DefaultConfig()
	config.SlackMinutes = 0

	receipts := []models.ReceiptRow{
		receiptRow("200", "CD1", "10:00:00"),
		receiptRow("202", "CD2", "09:30:00"),
	}

	result := runAnalysis(t, receipts, nil, config)

	if len(result.Findings) != 1 {
		t.Fatalf("findings = %d, want 1", len(result.Findings))
	}
	f := result.Findings[0]
	if f.MissingID != 201 {
		t.Errorf("missing id = %d, want 201", f.MissingID)
	}
	if f.WindowLogic != WindowSwappedReverse {
		t.Errorf("logic = %v, want Swapped (Reverse)", f.WindowLogic)
	}
	if f.WindowStartText() != "09:30" || f.WindowEndText() != "10:00" {
		t.Errorf("window = %s-%s, want 09:30-10:00", f.WindowStartText(), f.WindowEndText())
	}
}

func TestAnalyzeWindowBoundsInclusive(t *testing.T) {
	config := DefaultConfig()
	config.SlackMinutes = 0

	receipts := []models.ReceiptRow{
		receiptRow("100", "AB1", "08:00:00"),
		receiptRow("102", "AB2", "10:10:00"),
	}
	schedule := []models.ScheduleRow{
		scheduleRow("EDGE1", "0800"),
		scheduleRow("EARLY", "0759"),
		scheduleRow("MID", "0930"),
		scheduleRow("EDGE2", "1010"),
		scheduleRow("LATE", "1011"),
	}

	result := runAnalysis(t, receipts, schedule, config)

	if len(result.Findings) != 1 {
		t.Fatalf("findings = %d, want 1", len(result.Findings))
	}
	want := []string{"EDGE1 (08:00)", "MID (09:30)", "EDGE2 (10:10)"}
	if got := result.Findings[0].Candidates; !reflect.DeepEqual(got, want) {
		t.Errorf("candidates = %v, want %v", got, want)
	}
}

func TestAnalyzeWindowIncludesSlack(t *testing.T) {
	config := DefaultConfig()
	config.SlackMinutes = 60

	receipts := []models.ReceiptRow{
		receiptRow("100", "AB1", "09:00:00"),
		receiptRow("102", "AB2", "09:10:00"),
	}
	schedule := []models.ScheduleRow{
		scheduleRow("IN", "0830"),
		scheduleRow("OUT", "0700"),
	}

	result := runAnalysis(t, receipts, schedule, config)

	if len(result.Findings) != 1 {
		t.Fatalf("findings = %d, want 1", len(result.Findings))
	}
	f := result.Findings[0]
	if f.WindowStartText() != "08:00" || f.WindowEndText() != "10:10" {
		t.Errorf("window = %s-%s, want 08:00-10:10", f.WindowStartText(), f.WindowEndText())
	}
	if want := []string{"IN (08:30)"}; !reflect.DeepEqual(f.Candidates, want) {
		t.Errorf("candidates = %v, want %v", f.Candidates, want)
	}
}

func TestAnalyzeWindowNoMidnightWrap(t *testing.T) {
	config := DefaultConfig()
	config.SlackMinutes = 60

	receipts := []models.ReceiptRow{
		receiptRow("100", "AB1", "00:10:00"),
		receiptRow("102", "AB2", "00:20:00"),
	}
	schedule := []models.ScheduleRow{
		scheduleRow("LATE", "2350"),
		scheduleRow("EARLY", "0005"),
		scheduleRow("EDGE", "0120"),
		scheduleRow("PAST", "0121"),
	}

	result := runAnalysis(t, receipts, schedule, config)

	if len(result.Findings) != 1 {
		t.Fatalf("findings = %d, want 1", len(result.Findings))
	}
	f := result.Findings[0]

	// The padded start runs below midnight and is kept literally, so the
	// previous evening's 23:50 departure never matches.
	if f.WindowStartText() != "-00:50" || f.WindowEndText() != "01:20" {
		t.Errorf("window = %s-%s, want -00:50-01:20", f.WindowStartText(), f.WindowEndText())
	}
	want := []string{"EARLY (00:05)", "EDGE (01:20)"}
	if !reflect.DeepEqual(f.Candidates, want) {
		t.Errorf("candidates = %v, want %v", f.Candidates, want)
	}
}

func TestAnalyzeNoCandidatesSentinel(t *testing.T) {
	config := DefaultConfig()
	config.SlackMinutes = 0

	receipts := []models.ReceiptRow{
		receiptRow("100", "AB1", "09:00:00"),
		receiptRow("102", "AB2", "09:30:00"),
	}
	schedule := []models.ScheduleRow{
		scheduleRow("FAR", "2300"),
	}

	result := runAnalysis(t, receipts, schedule, config)

	if len(result.Findings) != 1 {
		t.Fatalf("findings = %d, want 1", len(result.Findings))
	}
	f := result.Findings[0]
	if len(f.Candidates) != 0 {
		t.Errorf("candidates = %v, want none", f.Candidates)
	}
	if f.CandidateText != NoCandidatesText {
		t.Errorf("candidate text = %q, want %q", f.CandidateText, NoCandidatesText)
	}
}

func TestAnalyzeIgnoredReceiptIDs(t *testing.T) {
	config := DefaultConfig()
	config.IgnoredReceiptIDs[101] = true

	receipts := []models.ReceiptRow{
		receiptRow("100", "AB1", "09:00:00"),
		receiptRow("103", "AB2", "10:00:00"),
	}

	result := runAnalysis(t, receipts, nil, config)

	if got := missingIDs(result); !reflect.DeepEqual(got, []int64{102}) {
		t.Errorf("missing ids = %v, want [102]", got)
	}
}

func TestAnalyzeIgnoredFlightsFilterPoolOnly(t *testing.T) {
	config := DefaultConfig()
	config.IgnoredFlightIDs["AB3"] = true

	receipts := []models.ReceiptRow{
		receiptRow("100", "AB1", "09:00:00"),
		receiptRow("103", "AB2", "10:00:00"),
	}
	schedule := []models.ScheduleRow{
		scheduleRow("AB3", "0930"),
		scheduleRow("AB5", "0945"),
	}

	result := runAnalysis(t, receipts, schedule, config)

	if result.Diagnostics.PoolSize != 1 {
		t.Errorf("pool size = %d, want 1", result.Diagnostics.PoolSize)
	}
	if len(result.Findings) == 0 {
		t.Fatal("expected findings for the gap")
	}
	want := []string{"AB5 (09:45)"}
	if got := result.Findings[0].Candidates; !reflect.DeepEqual(got, want) {
		t.Errorf("candidates = %v, want %v", got, want)
	}
}

func TestAnalyzePrefixExclusion(t *testing.T) {
	config := DefaultConfig()
	config.IgnoredPrefixes = []string{"9"}

	receipts := []models.ReceiptRow{
		receiptRow("100", "AB1", "09:00:00"),
		receiptRow("9001", "TEST1", "09:15:00"),
		receiptRow("103", "AB2", "10:00:00"),
	}

	result := runAnalysis(t, receipts, nil, config)

	if result.Diagnostics.RowsExcludedByPrefix != 1 {
		t.Errorf("RowsExcludedByPrefix = %d, want 1", result.Diagnostics.RowsExcludedByPrefix)
	}
	if got := missingIDs(result); !reflect.DeepEqual(got, []int64{101, 102}) {
		t.Errorf("missing ids = %v, want [101 102]", got)
	}
}

func TestAnalyzePoolMatchesByNormalizedID(t *testing.T) {
	receipts := []models.ReceiptRow{
		receiptRow("100", "6e-456", "09:00:00"),
		receiptRow("101", "AB1", "09:30:00"),
	}
	schedule := []models.ScheduleRow{
		scheduleRow("6E 456", "0900"),
		scheduleRow("CD9", "1000"),
	}

	result := runAnalysis(t, receipts, schedule, nil)

	if result.Diagnostics.PoolSize != 1 {
		t.Errorf("pool size = %d, want 1: recorded flight should match regardless of formatting", result.Diagnostics.PoolSize)
	}
}

func TestAnalyzeIdempotent(t *testing.T) {
	receipts := []models.ReceiptRow{
		receiptRow("100", "AB1", "09:00:00"),
		receiptRow("103", "AB2", "10:00:00"),
	}
	schedule := []models.ScheduleRow{
		scheduleRow("AB3", "0930"),
	}

	engine := NewEngine(DefaultConfig())
	engine.LoadReceipts(receipts)
	engine.LoadSchedule(schedule)

	first, err := engine.Analyze()
	if err != nil {
		t.Fatalf("first Analyze() failed: %v", err)
	}
	second, err := engine.Analyze()
	if err != nil {
		t.Fatalf("second Analyze() failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("repeated analysis over the same inputs differed")
	}
}

func TestAnalyzeEmptyInputs(t *testing.T) {
	result := runAnalysis(t, []models.ReceiptRow{}, []models.ScheduleRow{}, nil)

	if len(result.Findings) != 0 {
		t.Errorf("findings = %v, want none", result.Findings)
	}
}

func TestAnalyzeRequiresLoadedTables(t *testing.T) {
	engine := NewEngine(nil)
	if _, err := engine.Analyze(); err == nil {
		t.Error("expected error when no tables are loaded")
	}

	engine.LoadReceipts(nil)
	if _, err := engine.Analyze(); err == nil {
		t.Error("expected error when schedule is not loaded")
	}

	engine.LoadSchedule(nil)
	if _, err := engine.Analyze(); err != nil {
		t.Errorf("Analyze() with empty loaded tables failed: %v", err)
	}
}

func TestAnalyzeInvalidConfig(t *testing.T) {
	config := DefaultConfig()
	config.SlackMinutes = -5

	if _, err := Analyze(nil, nil, config); err == nil {
		t.Error("expected error for negative slack")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults are valid"},
		{name: "negative slack", mutate: func(c *Config) { c.SlackMinutes = -1 }, wantErr: true},
		{name: "zero slack is valid", mutate: func(c *Config) { c.SlackMinutes = 0 }},
		{name: "zero max gap", mutate: func(c *Config) { c.MaxGapSize = 0 }, wantErr: true},
		{name: "blank prefix", mutate: func(c *Config) { c.IgnoredPrefixes = []string{" "} }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			if tt.mutate != nil {
				tt.mutate(config)
			}
			err := config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigClone(t *testing.T) {
	config := DefaultConfig()
	config.IgnoredReceiptIDs[101] = true
	config.IgnoredReceiptIDs[202] = false
	config.IgnoredFlightIDs["AB3"] = true
	config.IgnoredPrefixes = []string{"9"}

	clone := config.Clone()
	clone.IgnoredReceiptIDs[999] = true
	clone.IgnoredFlightIDs["ZZ9"] = true
	clone.IgnoredPrefixes[0] = "8"

	if config.IgnoredReceiptIDs[999] || config.IgnoredFlightIDs["ZZ9"] || config.IgnoredPrefixes[0] != "9" {
		t.Error("Clone() shares state with the original")
	}
	if v, ok := clone.IgnoredReceiptIDs[202]; !ok || v {
		t.Error("Clone() did not preserve a stored false value")
	}
}

func TestWindowLogicString(t *testing.T) {
	if got := WindowNormal.String(); got != "Normal" {
		t.Errorf("WindowNormal = %q", got)
	}
	if got := WindowSwappedReverse.String(); got != "Swapped (Reverse)" {
		t.Errorf("WindowSwappedReverse = %q", got)
	}
}
