package analyzer

import (
	"fmt"
	"time"

	"av7-gap-analyzer/internal/parsers"
	"av7-gap-analyzer/pkg/logger"
)

// Service orchestrates a complete analysis run: parse both input files,
// feed the tables to the engine, and wrap the outcome with parse
// statistics for reporting.
type Service struct {
	receiptParser  *parsers.ReceiptParser
	scheduleParser *parsers.ScheduleParser
	config         *Config
	logger         logger.Logger
}

// Request identifies the input files for one analysis run.
type Request struct {
	ReceiptsFile string
	ScheduleFile string
}

// Validate validates the analysis request
func (r *Request) Validate() error {
	if r.ReceiptsFile == "" {
		return fmt.Errorf("receipts file path is required")
	}
	if r.ScheduleFile == "" {
		return fmt.Errorf("schedule file path is required")
	}
	return nil
}

// Report is the complete outcome of a service run: the analysis result
// plus per-file parse statistics and timing metadata.
type Report struct {
	*Result

	ReceiptStats  *parsers.ParseStats `json:"receipt_stats,omitempty"`
	ScheduleStats *parsers.ParseStats `json:"schedule_stats,omitempty"`

	ProcessedAt time.Time     `json:"processed_at"`
	Duration    time.Duration `json:"duration"`
}

// NewService creates an analysis service from the parser and analysis
// configurations. Nil configurations get the defaults.
func NewService(
	receiptConfig *parsers.ReceiptParserConfig,
	scheduleConfig *parsers.ScheduleParserConfig,
	analysisConfig *Config,
) (*Service, error) {

	if receiptConfig == nil {
		receiptConfig = parsers.DefaultReceiptParserConfig()
	}
	if scheduleConfig == nil {
		scheduleConfig = parsers.DefaultScheduleParserConfig()
	}
	if analysisConfig == nil {
		analysisConfig = DefaultConfig()
	}

	if err := analysisConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid analysis configuration: %w", err)
	}

	receiptParser, err := parsers.NewReceiptParser(receiptConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create receipt parser: %w", err)
	}

	scheduleParser, err := parsers.NewScheduleParser(scheduleConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create schedule parser: %w", err)
	}

	return &Service{
		receiptParser:  receiptParser,
		scheduleParser: scheduleParser,
		config:         analysisConfig,
		logger:         logger.GetGlobalLogger().WithComponent("service"),
	}, nil
}

// Run parses both input files and performs the gap analysis.
func (s *Service) Run(request *Request) (*Report, error) {
	if err := request.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	startTime := time.Now()

	s.logger.WithFields(logger.Fields{
		"receipts_file": request.ReceiptsFile,
		"schedule_file": request.ScheduleFile,
	}).Info("Starting analysis run")

	receipts, receiptStats, err := s.receiptParser.ParseReceipts(request.ReceiptsFile)
	if err != nil {
		return nil, err
	}

	schedule, scheduleStats, err := s.scheduleParser.ParseSchedule(request.ScheduleFile)
	if err != nil {
		return nil, err
	}

	result, err := Analyze(receipts, schedule, s.config)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Result:        result,
		ReceiptStats:  receiptStats,
		ScheduleStats: scheduleStats,
		ProcessedAt:   startTime,
		Duration:      time.Since(startTime),
	}

	s.logger.WithFields(logger.Fields{
		"findings": len(result.Findings),
		"duration": report.Duration.String(),
	}).Info("Analysis run complete")

	return report, nil
}
