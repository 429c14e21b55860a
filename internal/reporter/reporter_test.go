package reporter

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"av7-gap-analyzer/internal/analyzer"

	"github.com/xuri/excelize/v2"
)

func testReport() *analyzer.Report {
	return &analyzer.Report{
		Result: &analyzer.Result{
			Findings: []*analyzer.GapFinding{
				{
					MissingID:          101,
					WindowStartMinutes: 8 * 60,
					WindowEndMinutes:   11 * 60,
					WindowLogic:        analyzer.WindowNormal,
					Candidates:         []string{"AB3 (09:30)"},
					CandidateText:      "AB3 (09:30)",
				},
				{
					MissingID:          102,
					WindowStartMinutes: 8 * 60,
					WindowEndMinutes:   11 * 60,
					WindowLogic:        analyzer.WindowSwappedReverse,
					Candidates:         nil,
					CandidateText:      analyzer.NoCandidatesText,
				},
			},
			Diagnostics: analyzer.Diagnostics{
				RowsRead:     2,
				RowsValid:    2,
				PoolSize:     1,
				GapsAnalyzed: 1,
			},
		},
		ProcessedAt: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
	}
}

func emptyReport(diag analyzer.Diagnostics) *analyzer.Report {
	return &analyzer.Report{
		Result: &analyzer.Result{
			Findings:    []*analyzer.GapFinding{},
			Diagnostics: diag,
		},
	}
}

func generate(t *testing.T, config *ReportConfig, report *analyzer.Report) string {
	t.Helper()

	generator, err := NewReportGenerator(config)
	if err != nil {
		t.Fatalf("NewReportGenerator() failed: %v", err)
	}

	var buf bytes.Buffer
	if err := generator.GenerateReport(report, &buf); err != nil {
		t.Fatalf("GenerateReport() failed: %v", err)
	}
	return buf.String()
}

func TestConsoleReport(t *testing.T) {
	output := generate(t, DefaultReportConfig(), testReport())

	for _, want := range []string{
		"MISSING RECEIPTS (2)",
		"101",
		"102",
		"Normal",
		"Swapped (Reverse)",
		"08:00",
		"11:00",
		"AB3 (09:30)",
		analyzer.NoCandidatesText,
		"RUN DIAGNOSTICS",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("console report missing %q\noutput:\n%s", want, output)
		}
	}
}

func TestConsoleReportNoFindings(t *testing.T) {
	tests := []struct {
		name string
		diag analyzer.Diagnostics
		want string
	}{
		{
			name: "sequential",
			diag: analyzer.Diagnostics{RowsRead: 5, RowsValid: 5},
			want: "perfectly sequential",
		},
		{
			name: "jump suppressed",
			diag: analyzer.Diagnostics{RowsRead: 5, RowsValid: 5, GapsSkippedJump: 2},
			want: "series-jump threshold",
		},
		{
			name: "prefix exclusions",
			diag: analyzer.Diagnostics{RowsRead: 5, RowsValid: 3, RowsExcludedByPrefix: 2},
			want: "excluded by prefix filters",
		},
		{
			name: "missing times",
			diag: analyzer.Diagnostics{RowsRead: 5, RowsValid: 5, GapsSkippedNoTime: 1},
			want: "no parsable refuel time",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := generate(t, DefaultReportConfig(), emptyReport(tt.diag))

			if !strings.Contains(output, "No missing AV7 receipts found") {
				t.Errorf("missing no-findings banner:\n%s", output)
			}
			if !strings.Contains(output, tt.want) {
				t.Errorf("missing reason %q:\n%s", tt.want, output)
			}
		})
	}
}

func TestJSONReport(t *testing.T) {
	config := DefaultReportConfig()
	config.Format = FormatJSON

	output := generate(t, config, testReport())

	var decoded struct {
		Findings []struct {
			MissingAV7       int64    `json:"missing_av7"`
			WindowLogic      string   `json:"window_logic"`
			WindowStart      string   `json:"window_start"`
			WindowEnd        string   `json:"window_end"`
			Candidates       []string `json:"candidates"`
			PotentialFlights string   `json:"potential_flights"`
		} `json:"findings"`
		Diagnostics *analyzer.Diagnostics `json:"diagnostics"`
	}
	if err := json.Unmarshal([]byte(output), &decoded); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, output)
	}

	if len(decoded.Findings) != 2 {
		t.Fatalf("findings = %d, want 2", len(decoded.Findings))
	}
	first := decoded.Findings[0]
	if first.MissingAV7 != 101 || first.WindowLogic != "Normal" ||
		first.WindowStart != "08:00" || first.WindowEnd != "11:00" {
		t.Errorf("first finding = %+v", first)
	}
	if decoded.Findings[1].PotentialFlights != analyzer.NoCandidatesText {
		t.Errorf("second finding potential flights = %q", decoded.Findings[1].PotentialFlights)
	}
	if decoded.Diagnostics == nil || decoded.Diagnostics.GapsAnalyzed != 1 {
		t.Errorf("diagnostics = %+v", decoded.Diagnostics)
	}
}

func TestCSVReport(t *testing.T) {
	config := DefaultReportConfig()
	config.Format = FormatCSV

	output := generate(t, config, testReport())

	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3 (header + 2 findings)\n%s", len(lines), output)
	}
	if lines[0] != "Missing_AV7,Window_Logic,Window_Start,Window_End,POTENTIAL_FLIGHTS" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "101,Normal,08:00,11:00,AB3 (09:30)") {
		t.Errorf("first record = %q", lines[1])
	}
	if !strings.Contains(lines[2], `"Swapped (Reverse)"`) && !strings.Contains(lines[2], "Swapped (Reverse)") {
		t.Errorf("second record = %q", lines[2])
	}
}

func TestCSVReportDelimiterAndHeaders(t *testing.T) {
	config := DefaultReportConfig()
	config.Format = FormatCSV
	config.CSVDelimiter = ';'
	config.CSVHeaders = false

	output := generate(t, config, testReport())

	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2 findings without header\n%s", len(lines), output)
	}
	if !strings.Contains(lines[0], "101;Normal;08:00;11:00") {
		t.Errorf("first record = %q", lines[0])
	}
}

func TestXLSXReport(t *testing.T) {
	config := DefaultReportConfig()
	config.Format = FormatXLSX

	generator, err := NewReportGenerator(config)
	if err != nil {
		t.Fatalf("NewReportGenerator() failed: %v", err)
	}

	var buf bytes.Buffer
	if err := generator.GenerateReport(testReport(), &buf); err != nil {
		t.Fatalf("GenerateReport() failed: %v", err)
	}

	file, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("failed to reopen workbook: %v", err)
	}
	defer file.Close()

	rows, err := file.GetRows(config.SheetName)
	if err != nil {
		t.Fatalf("failed to read sheet %q: %v", config.SheetName, err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3 (header + 2 findings)", len(rows))
	}
	if rows[0][0] != "Missing_AV7" || rows[0][4] != "POTENTIAL_FLIGHTS" {
		t.Errorf("header row = %v", rows[0])
	}
	if rows[1][0] != "101" || rows[1][4] != "AB3 (09:30)" {
		t.Errorf("first finding row = %v", rows[1])
	}
}

func TestReportConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ReportConfig)
		wantErr bool
	}{
		{name: "defaults are valid"},
		{name: "json format", mutate: func(c *ReportConfig) { c.Format = FormatJSON }},
		{name: "unknown format", mutate: func(c *ReportConfig) { c.Format = "yaml" }, wantErr: true},
		{name: "empty sheet name", mutate: func(c *ReportConfig) { c.SheetName = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultReportConfig()
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

func TestSafeReportGenerator(t *testing.T) {
	safe, err := NewSafeReportGenerator(DefaultReportConfig(), nil)
	if err != nil {
		t.Fatalf("NewSafeReportGenerator() failed: %v", err)
	}

	var buf bytes.Buffer
	if err := safe.GenerateReportSafely(testReport(), &buf); err != nil {
		t.Fatalf("GenerateReportSafely() failed: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("expected report output")
	}

	if err := safe.GenerateReportSafely(nil, &buf); err == nil {
		t.Error("expected error for nil report")
	}
}
