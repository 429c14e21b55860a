package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"av7-gap-analyzer/cmd/av7gap/config"
	"av7-gap-analyzer/internal/analyzer"
	"av7-gap-analyzer/internal/reporter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the analyze command
var (
	receiptsFile string
	scheduleFile string
	outputFormat string
	outputFile   string

	slackMinutes int
	maxGapSize   int64

	ignoreAV7      []string
	ignoreFlights  []string
	ignorePrefixes []string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Find missing AV7 receipts and their likely flights",
	Long: `Analyze compares the AV7 refueling receipt log with the flight schedule
to find missing receipt numbers.

Receipt numbers are expected to run sequentially; each hole in the
sequence is reported unless it exceeds the series-jump threshold, which
marks a switch to a new receipt book. For every missing number the tool
builds a time window from the refuel times on either side of the gap,
pads it with slack, and lists the scheduled flights without a receipt
that depart inside that window.

This command requires:
- A receipt log file with AV7, Flight, and Refuel_Time columns
- A schedule file with Flight and STD columns

Both files are tab-separated by default.

Examples:
  # Basic analysis to the console
  av7gap analyze --receipts-file av7.tsv --schedule-file schedule.tsv

  # Wider search window and a tighter book-change threshold
  av7gap analyze -r av7.tsv -s schedule.tsv --slack-minutes 90 --max-gap 500

  # Skip known cancelled receipts and test flights
  av7gap analyze -r av7.tsv -s schedule.tsv \
    --ignore-av7 100234,100251 --ignore-flights TEST1 --ignore-prefixes 9

  # Excel report for the audit file
  av7gap analyze -r av7.tsv -s schedule.tsv --output-format xlsx -o report.xlsx`,

	PreRunE: validateAnalyzeFlags,
	RunE:    runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Required flags
	analyzeCmd.Flags().StringVarP(&receiptsFile, "receipts-file", "r", "", "path to the AV7 receipt log file (required)")
	analyzeCmd.Flags().StringVarP(&scheduleFile, "schedule-file", "s", "", "path to the flight schedule file (required)")

	// Output flags
	analyzeCmd.Flags().StringVarP(&outputFormat, "output-format", "f", "console", "output format: console, json, csv, xlsx")
	analyzeCmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "output file path (default: stdout)")

	// Analysis configuration flags
	analyzeCmd.Flags().IntVar(&slackMinutes, "slack-minutes", 60, "minutes of slack added to both ends of each gap's time window")
	analyzeCmd.Flags().Int64Var(&maxGapSize, "max-gap", 1000, "gaps larger than this are treated as receipt book changes")

	// Exclusion flags
	analyzeCmd.Flags().StringSliceVar(&ignoreAV7, "ignore-av7", []string{}, "comma-separated receipt numbers to never report as missing")
	analyzeCmd.Flags().StringSliceVar(&ignoreFlights, "ignore-flights", []string{}, "comma-separated flight ids to exclude from candidate matching")
	analyzeCmd.Flags().StringSliceVar(&ignorePrefixes, "ignore-prefixes", []string{}, "comma-separated AV7 prefixes to exclude from the log")

	// Mark required flags
	analyzeCmd.MarkFlagRequired("receipts-file")
	analyzeCmd.MarkFlagRequired("schedule-file")

	// Bind flags to viper
	viper.BindPFlag("receipts-file", analyzeCmd.Flags().Lookup("receipts-file"))
	viper.BindPFlag("schedule-file", analyzeCmd.Flags().Lookup("schedule-file"))
	viper.BindPFlag("output-format", analyzeCmd.Flags().Lookup("output-format"))
	viper.BindPFlag("output-file", analyzeCmd.Flags().Lookup("output-file"))
	viper.BindPFlag("slack-minutes", analyzeCmd.Flags().Lookup("slack-minutes"))
	viper.BindPFlag("max-gap", analyzeCmd.Flags().Lookup("max-gap"))
	viper.BindPFlag("ignore-av7", analyzeCmd.Flags().Lookup("ignore-av7"))
	viper.BindPFlag("ignore-flights", analyzeCmd.Flags().Lookup("ignore-flights"))
	viper.BindPFlag("ignore-prefixes", analyzeCmd.Flags().Lookup("ignore-prefixes"))
}

func validateAnalyzeFlags(cmd *cobra.Command, args []string) error {
	// Get values from viper (allows override from config file)
	receiptsFile = viper.GetString("receipts-file")
	scheduleFile = viper.GetString("schedule-file")
	outputFormat = viper.GetString("output-format")
	outputFile = viper.GetString("output-file")
	slackMinutes = viper.GetInt("slack-minutes")
	maxGapSize = viper.GetInt64("max-gap")
	ignoreAV7 = viper.GetStringSlice("ignore-av7")
	ignoreFlights = viper.GetStringSlice("ignore-flights")
	ignorePrefixes = viper.GetStringSlice("ignore-prefixes")

	// Validate required flags
	if receiptsFile == "" {
		return fmt.Errorf("receipts-file is required")
	}
	if scheduleFile == "" {
		return fmt.Errorf("schedule-file is required")
	}

	// Validate file existence
	if err := validateFileExists(receiptsFile, "receipt log file"); err != nil {
		return err
	}
	if err := validateFileExists(scheduleFile, "schedule file"); err != nil {
		return err
	}

	// Validate output format
	if !reporter.OutputFormat(outputFormat).IsValid() {
		return fmt.Errorf("invalid output format '%s'. Valid formats: console, json, csv, xlsx", outputFormat)
	}

	// Validate analysis parameters
	if slackMinutes < 0 {
		return fmt.Errorf("slack minutes cannot be negative")
	}
	if maxGapSize < 1 {
		return fmt.Errorf("max gap must be at least 1")
	}

	// Validate output file directory exists if specified
	if outputFile != "" {
		dir := filepath.Dir(outputFile)
		if dir != "." {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				return fmt.Errorf("output directory does not exist: %s", dir)
			}
		}
	}

	return nil
}

func validateFileExists(filePath, description string) error {
	if filePath == "" {
		return fmt.Errorf("%s path cannot be empty", description)
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist: %s", description, filePath)
	}
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", description, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%s is a directory, expected a file: %s", description, filePath)
	}

	// Check if file is readable
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("%s is not readable: %w", description, err)
	}
	file.Close()

	return nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Starting gap analysis...\n")
		fmt.Fprintf(os.Stderr, "Receipt log: %s\n", receiptsFile)
		fmt.Fprintf(os.Stderr, "Schedule: %s\n", scheduleFile)
		fmt.Fprintf(os.Stderr, "Output format: %s\n", outputFormat)
		if outputFile != "" {
			fmt.Fprintf(os.Stderr, "Output file: %s\n", outputFile)
		}
	}

	// Create configurations
	analysisConfig, err := config.CreateAnalysisConfig(slackMinutes, maxGapSize, ignoreAV7, ignoreFlights, ignorePrefixes)
	if err != nil {
		return fmt.Errorf("failed to create analysis config: %w", err)
	}

	// Create analysis service
	service, err := analyzer.NewService(
		config.CreateReceiptParserConfig(),
		config.CreateScheduleParserConfig(),
		analysisConfig,
	)
	if err != nil {
		return fmt.Errorf("failed to create analysis service: %w", err)
	}

	// Run the analysis
	report, err := service.Run(&analyzer.Request{
		ReceiptsFile: receiptsFile,
		ScheduleFile: scheduleFile,
	})
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	// Generate report
	reportConfig := config.CreateReportConfig(outputFormat)
	reportGenerator, err := reporter.NewSafeReportGenerator(reportConfig, nil)
	if err != nil {
		return fmt.Errorf("failed to create report generator: %w", err)
	}

	// Determine output destination
	var output *os.File
	if outputFile != "" {
		output, err = os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer output.Close()
	} else {
		output = os.Stdout
	}

	if err := reportGenerator.GenerateReportSafely(report, output); err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	// Show completion message
	if viper.GetBool("verbose") {
		diag := report.Diagnostics
		fmt.Fprintf(os.Stderr, "\nAnalysis completed successfully.\n")
		fmt.Fprintf(os.Stderr, "Read %d receipt rows (%d valid) and %d schedule rows.\n",
			diag.RowsRead, diag.RowsValid, diag.ScheduleRows)
		fmt.Fprintf(os.Stderr, "Found %d missing receipt(s) across %d gap(s).\n",
			len(report.Findings), diag.GapsAnalyzed)
		fmt.Fprintf(os.Stderr, "Processing time: %v\n", report.Duration)
	}

	return nil
}
