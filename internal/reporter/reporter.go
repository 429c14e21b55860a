// Package reporter renders gap analysis results in the supported output
// formats.
//
// Supported output formats:
//   - Console: human-readable tabular output for terminal display
//   - JSON: structured data format for programmatic consumption
//   - CSV: comma-separated format for spreadsheet applications
//   - XLSX: Excel workbook, one row per finding
//
// Every tabular format emits the same row per finding: the missing AV7
// number, the window orientation, the window bounds, and the candidate
// flights. The console format additionally explains an empty report
// using the run diagnostics so that "no findings" never reads as "the
// tool did nothing".
//
// Example usage:
//
//	generator, err := reporter.NewReportGenerator(reporter.DefaultReportConfig())
//	err = generator.GenerateReport(report, os.Stdout)
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"av7-gap-analyzer/internal/analyzer"

	"github.com/xuri/excelize/v2"
)

// OutputFormat represents the supported report output formats.
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
	FormatXLSX    OutputFormat = "xlsx"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatCSV, FormatXLSX:
		return true
	default:
		return false
	}
}

// findingHeaders are the column names shared by the CSV and XLSX
// formats, matching the console table order.
var findingHeaders = []string{
	"Missing_AV7",
	"Window_Logic",
	"Window_Start",
	"Window_End",
	"POTENTIAL_FLIGHTS",
}

// ReportConfig holds configuration options for report generation
type ReportConfig struct {
	// Output format
	Format OutputFormat `json:"format"`

	// Detail level options
	IncludeDiagnostics bool `json:"include_diagnostics"`
	IncludeParseStats  bool `json:"include_parse_stats"`

	// CSV options
	CSVDelimiter rune `json:"csv_delimiter"`
	CSVHeaders   bool `json:"csv_headers"`

	// XLSX options
	SheetName string `json:"sheet_name"`
}

// DefaultReportConfig returns a default report configuration
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:             FormatConsole,
		IncludeDiagnostics: true,
		IncludeParseStats:  false,
		CSVDelimiter:       ',',
		CSVHeaders:         true,
		SheetName:          "Gap Analysis",
	}
}

// Validate validates the report configuration
func (c *ReportConfig) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}

	if c.SheetName == "" {
		return fmt.Errorf("sheet name cannot be empty")
	}

	return nil
}

// ReportGenerator generates gap analysis reports in various formats
type ReportGenerator struct {
	config *ReportConfig
}

// NewReportGenerator creates a new report generator with the specified configuration
func NewReportGenerator(config *ReportConfig) (*ReportGenerator, error) {
	if config == nil {
		config = DefaultReportConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report configuration: %w", err)
	}

	return &ReportGenerator{
		config: config,
	}, nil
}

// GenerateReport renders the analysis report and writes it to the provided writer
func (rg *ReportGenerator) GenerateReport(report *analyzer.Report, writer io.Writer) error {
	if report == nil || report.Result == nil {
		return fmt.Errorf("analysis report cannot be nil")
	}

	switch rg.config.Format {
	case FormatConsole:
		return rg.generateConsoleReport(report, writer)
	case FormatJSON:
		return rg.generateJSONReport(report, writer)
	case FormatCSV:
		return rg.generateCSVReport(report, writer)
	case FormatXLSX:
		return rg.generateXLSXReport(report, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", rg.config.Format)
	}
}

// generateConsoleReport generates a human-readable console report
func (rg *ReportGenerator) generateConsoleReport(report *analyzer.Report, writer io.Writer) error {
	fmt.Fprintf(writer, "AV7 GAP ANALYSIS REPORT\n")
	if !report.ProcessedAt.IsZero() {
		fmt.Fprintf(writer, "Generated: %s\n", report.ProcessedAt.Format(time.RFC3339))
	}
	fmt.Fprintf(writer, "\n")

	if len(report.Findings) == 0 {
		rg.printNoFindings(&report.Diagnostics, writer)
	} else {
		fmt.Fprintf(writer, "=== MISSING RECEIPTS (%d) ===\n", len(report.Findings))
		rg.printFindingsTable(report.Findings, writer)
	}

	if rg.config.IncludeDiagnostics {
		fmt.Fprintf(writer, "\n=== RUN DIAGNOSTICS ===\n")
		rg.printDiagnostics(&report.Diagnostics, writer)
	}

	if rg.config.IncludeParseStats {
		if report.ReceiptStats != nil {
			fmt.Fprintf(writer, "\nReceipts:  %s\n", report.ReceiptStats.String())
		}
		if report.ScheduleStats != nil {
			fmt.Fprintf(writer, "Schedule:  %s\n", report.ScheduleStats.String())
		}
	}

	return nil
}

func (rg *ReportGenerator) printFindingsTable(findings []*analyzer.GapFinding, writer io.Writer) {
	fmt.Fprintf(writer, "%-12s %-18s %-8s %-8s %s\n",
		"Missing_AV7", "Window_Logic", "Start", "End", "Potential Flights")

	for _, f := range findings {
		fmt.Fprintf(writer, "%-12d %-18s %-8s %-8s %s\n",
			f.MissingID,
			f.WindowLogic.String(),
			f.WindowStartText(),
			f.WindowEndText(),
			f.CandidateText)
	}
}

// printNoFindings explains an empty report from the run diagnostics.
func (rg *ReportGenerator) printNoFindings(diag *analyzer.Diagnostics, writer io.Writer) {
	fmt.Fprintf(writer, "No missing AV7 receipts found.\n\n")
	fmt.Fprintf(writer, "Possible reasons:\n")

	if diag.GapsSkippedJump > 0 {
		fmt.Fprintf(writer, "  - %d gap(s) exceeded the series-jump threshold and were treated as book changes\n",
			diag.GapsSkippedJump)
	}
	if diag.GapsSkippedNoTime > 0 {
		fmt.Fprintf(writer, "  - %d gap(s) were skipped because a bounding receipt had no parsable refuel time\n",
			diag.GapsSkippedNoTime)
	}
	if diag.RowsExcludedByPrefix > 0 {
		fmt.Fprintf(writer, "  - %d receipt row(s) were excluded by prefix filters\n",
			diag.RowsExcludedByPrefix)
	}
	if diag.GapsSkippedJump == 0 && diag.GapsSkippedNoTime == 0 && diag.RowsExcludedByPrefix == 0 {
		fmt.Fprintf(writer, "  - the receipt sequence is perfectly sequential\n")
	}
}

func (rg *ReportGenerator) printDiagnostics(diag *analyzer.Diagnostics, writer io.Writer) {
	fmt.Fprintf(writer, "Receipt rows read:        %d\n", diag.RowsRead)
	fmt.Fprintf(writer, "Excluded by prefix:       %d\n", diag.RowsExcludedByPrefix)
	fmt.Fprintf(writer, "Valid receipts:           %d\n", diag.RowsValid)
	fmt.Fprintf(writer, "Dropped (non-numeric):    %d\n", diag.ReceiptsDropped)
	fmt.Fprintf(writer, "Schedule rows:            %d\n", diag.ScheduleRows)
	fmt.Fprintf(writer, "Unmatched flight pool:    %d\n", diag.PoolSize)
	fmt.Fprintf(writer, "Gaps analyzed:            %d\n", diag.GapsAnalyzed)
	fmt.Fprintf(writer, "Gaps skipped (jump):      %d\n", diag.GapsSkippedJump)
	fmt.Fprintf(writer, "Gaps skipped (no time):   %d\n", diag.GapsSkippedNoTime)
}

// jsonFinding is the JSON shape of one finding, using the same field
// names as the tabular headers.
type jsonFinding struct {
	MissingAV7       int64    `json:"missing_av7"`
	WindowLogic      string   `json:"window_logic"`
	WindowStart      string   `json:"window_start"`
	WindowEnd        string   `json:"window_end"`
	Candidates       []string `json:"candidates"`
	PotentialFlights string   `json:"potential_flights"`
}

// generateJSONReport generates a structured JSON report
func (rg *ReportGenerator) generateJSONReport(report *analyzer.Report, writer io.Writer) error {
	findings := make([]jsonFinding, 0, len(report.Findings))
	for _, f := range report.Findings {
		findings = append(findings, jsonFinding{
			MissingAV7:       f.MissingID,
			WindowLogic:      f.WindowLogic.String(),
			WindowStart:      f.WindowStartText(),
			WindowEnd:        f.WindowEndText(),
			Candidates:       f.Candidates,
			PotentialFlights: f.CandidateText,
		})
	}

	output := map[string]interface{}{
		"findings": findings,
	}
	if !report.ProcessedAt.IsZero() {
		output["processed_at"] = report.ProcessedAt
	}
	if rg.config.IncludeDiagnostics {
		output["diagnostics"] = report.Diagnostics
	}
	if rg.config.IncludeParseStats {
		if report.ReceiptStats != nil {
			output["receipt_stats"] = report.ReceiptStats
		}
		if report.ScheduleStats != nil {
			output["schedule_stats"] = report.ScheduleStats
		}
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")

	return encoder.Encode(output)
}

// generateCSVReport generates a CSV report with one row per finding
func (rg *ReportGenerator) generateCSVReport(report *analyzer.Report, writer io.Writer) error {
	csvWriter := csv.NewWriter(writer)
	csvWriter.Comma = rg.config.CSVDelimiter
	defer csvWriter.Flush()

	if rg.config.CSVHeaders {
		if err := csvWriter.Write(findingHeaders); err != nil {
			return fmt.Errorf("failed to write CSV headers: %w", err)
		}
	}

	for _, f := range report.Findings {
		record := []string{
			strconv.FormatInt(f.MissingID, 10),
			f.WindowLogic.String(),
			f.WindowStartText(),
			f.WindowEndText(),
			f.CandidateText,
		}
		if err := csvWriter.Write(record); err != nil {
			return fmt.Errorf("failed to write finding record: %w", err)
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// generateXLSXReport generates an Excel workbook with one row per finding
func (rg *ReportGenerator) generateXLSXReport(report *analyzer.Report, writer io.Writer) error {
	file := excelize.NewFile()
	defer file.Close()

	sheet := rg.config.SheetName
	if err := file.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", sheet, err)
	}

	header := make([]interface{}, len(findingHeaders))
	for i, h := range findingHeaders {
		header[i] = h
	}
	if err := file.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	for i, f := range report.Findings {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", i+2, err)
		}
		row := []interface{}{
			f.MissingID,
			f.WindowLogic.String(),
			f.WindowStartText(),
			f.WindowEndText(),
			f.CandidateText,
		}
		if err := file.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write finding row %d: %w", i+2, err)
		}
	}

	if _, err := file.WriteTo(writer); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	return nil
}

// UpdateConfiguration updates the report generator configuration
func (rg *ReportGenerator) UpdateConfiguration(config *ReportConfig) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid report configuration: %w", err)
	}

	rg.config = config
	return nil
}

// GetConfiguration returns the current configuration
func (rg *ReportGenerator) GetConfiguration() *ReportConfig {
	return rg.config
}
