package parsers

import (
	"encoding/csv"
	"io"

	"av7-gap-analyzer/internal/models"
	"av7-gap-analyzer/pkg/errors"
	"av7-gap-analyzer/pkg/logger"
)

// ScheduleParser reads the flight schedule table into raw schedule rows.
type ScheduleParser struct {
	*BaseParser
	config *ScheduleParserConfig
	logger logger.Logger
}

// NewScheduleParser creates a new ScheduleParser with the given configuration
func NewScheduleParser(config *ScheduleParserConfig) (*ScheduleParser, error) {
	if config == nil {
		config = DefaultScheduleParserConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(
			errors.CodeInvalidConfig,
			"schedule_parser_config",
			config,
			err,
		).WithSuggestion("Check the schedule parser column settings")
	}

	parseConfig := &ParseConfig{
		HasHeader:        config.HasHeader,
		Delimiter:        config.Delimiter,
		TrimLeadingSpace: true,
		SkipEmptyRows:    true,
		ValidateEncoding: true,
	}

	return &ScheduleParser{
		BaseParser: NewBaseParser(parseConfig),
		config:     config,
		logger:     logger.GetGlobalLogger().WithComponent("schedule_parser"),
	}, nil
}

// ParseSchedule parses a flight schedule file into raw schedule rows
func (sp *ScheduleParser) ParseSchedule(filePath string) ([]models.ScheduleRow, *ParseStats, error) {
	file, reader, err := sp.OpenFile(filePath)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	return sp.parse(reader, filePath)
}

// ParseScheduleFrom parses a flight schedule table from a reader
func (sp *ScheduleParser) ParseScheduleFrom(r io.Reader, source string) ([]models.ScheduleRow, *ParseStats, error) {
	return sp.parse(sp.NewReader(r), source)
}

func (sp *ScheduleParser) parse(reader *csv.Reader, source string) ([]models.ScheduleRow, *ParseStats, error) {
	sp.logger.WithFields(logger.Fields{
		"source":    source,
		"operation": "parse_schedule",
	}).Info("Starting flight schedule parsing")

	parseCtx := NewParseContext(source)
	stats := NewParseStats()

	requiredHeaders := sp.getRequiredHeaders()
	if err := sp.ReadHeaders(reader, parseCtx, requiredHeaders); err != nil {
		sp.logger.WithError(err).WithFields(logger.Fields{
			"source":           source,
			"required_headers": requiredHeaders,
		}).Error("Failed to read or validate flight schedule headers")
		return nil, stats, err
	}

	var rows []models.ScheduleRow

	for {
		record, err := sp.ReadRecord(reader, parseCtx)
		if err != nil {
			if err == io.EOF {
				break
			}

			stats.AddError(&ParseError{
				Line:    parseCtx.LineNumber,
				Message: "failed to read row",
				Err:     err,
			})
			continue
		}

		stats.RecordsParsed++

		flight, ferr := sp.GetFieldValue(record, parseCtx, sp.config.GetColumnName("flight"))
		if ferr != nil {
			stats.AddError(&ParseError{
				Line:    parseCtx.LineNumber,
				Field:   sp.config.GetColumnName("flight"),
				Message: "missing flight value",
				Err:     ferr,
			})
			continue
		}

		std, serr := sp.GetFieldValue(record, parseCtx, sp.config.GetColumnName("std"))
		if serr != nil {
			stats.AddError(&ParseError{
				Line:    parseCtx.LineNumber,
				Field:   sp.config.GetColumnName("std"),
				Message: "missing STD value",
				Err:     serr,
			})
			continue
		}

		rows = append(rows, models.ScheduleRow{Flight: flight, STD: std})
		stats.RecordsValid++
	}

	stats.TotalLines = parseCtx.LineNumber

	sp.logger.WithFields(logger.Fields{
		"source":      source,
		"total_lines": stats.TotalLines,
		"rows_parsed": stats.RecordsParsed,
		"rows_valid":  stats.RecordsValid,
		"error_count": stats.ErrorCount,
	}).Info("Flight schedule parsing completed")

	if stats.HasErrors() {
		sp.logger.WithField("sample_errors", stats.GetSampleErrors(3)).Warn("Encountered errors during parsing")
	}

	return rows, stats, nil
}

// getRequiredHeaders returns the required flight schedule column names
func (sp *ScheduleParser) getRequiredHeaders() []string {
	return []string{
		sp.config.GetColumnName("flight"),
		sp.config.GetColumnName("std"),
	}
}
