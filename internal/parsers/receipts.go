package parsers

import (
	"encoding/csv"
	"io"

	"av7-gap-analyzer/internal/models"
	"av7-gap-analyzer/pkg/errors"
	"av7-gap-analyzer/pkg/logger"
)

// ReceiptParser reads the refueling record table into raw receipt rows.
//
// Only the table shape is validated here; receipt ids and refuel times are
// carried as raw text because unparseable values exclude single rows from
// analysis rather than failing the run.
type ReceiptParser struct {
	*BaseParser
	config *ReceiptParserConfig
	logger logger.Logger
}

// NewReceiptParser creates a new ReceiptParser with the given configuration
func NewReceiptParser(config *ReceiptParserConfig) (*ReceiptParser, error) {
	if config == nil {
		config = DefaultReceiptParserConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(
			errors.CodeInvalidConfig,
			"receipt_parser_config",
			config,
			err,
		).WithSuggestion("Check the receipt parser column settings")
	}

	parseConfig := &ParseConfig{
		HasHeader:        config.HasHeader,
		Delimiter:        config.Delimiter,
		TrimLeadingSpace: true,
		SkipEmptyRows:    true,
		ValidateEncoding: true,
	}

	return &ReceiptParser{
		BaseParser: NewBaseParser(parseConfig),
		config:     config,
		logger:     logger.GetGlobalLogger().WithComponent("receipt_parser"),
	}, nil
}

// ParseReceipts parses a refueling record file into raw receipt rows
func (rp *ReceiptParser) ParseReceipts(filePath string) ([]models.ReceiptRow, *ParseStats, error) {
	file, reader, err := rp.OpenFile(filePath)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	return rp.parse(reader, filePath)
}

// ParseReceiptsFrom parses a refueling record table from a reader. The
// source name is used only in error messages and logs.
func (rp *ReceiptParser) ParseReceiptsFrom(r io.Reader, source string) ([]models.ReceiptRow, *ParseStats, error) {
	return rp.parse(rp.NewReader(r), source)
}

func (rp *ReceiptParser) parse(reader *csv.Reader, source string) ([]models.ReceiptRow, *ParseStats, error) {
	rp.logger.WithFields(logger.Fields{
		"source":    source,
		"operation": "parse_receipts",
	}).Info("Starting refueling record parsing")

	parseCtx := NewParseContext(source)
	stats := NewParseStats()

	requiredHeaders := rp.getRequiredHeaders()
	if err := rp.ReadHeaders(reader, parseCtx, requiredHeaders); err != nil {
		rp.logger.WithError(err).WithFields(logger.Fields{
			"source":           source,
			"required_headers": requiredHeaders,
		}).Error("Failed to read or validate refueling record headers")
		return nil, stats, err
	}

	var rows []models.ReceiptRow

	for {
		record, err := rp.ReadRecord(reader, parseCtx)
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

		row, parseErr := rp.rowFromRecord(record, parseCtx)
		if parseErr != nil {
			stats.AddError(parseErr)
			continue
		}

		rows = append(rows, row)
		stats.RecordsValid++
	}

	stats.TotalLines = parseCtx.LineNumber

	rp.logger.WithFields(logger.Fields{
		"source":      source,
		"total_lines": stats.TotalLines,
		"rows_parsed": stats.RecordsParsed,
		"rows_valid":  stats.RecordsValid,
		"error_count": stats.ErrorCount,
	}).Info("Refueling record parsing completed")

	if stats.HasErrors() {
		rp.logger.WithField("sample_errors", stats.GetSampleErrors(3)).Warn("Encountered errors during parsing")
	}

	return rows, stats, nil
}

// getRequiredHeaders returns the required refueling record column names
func (rp *ReceiptParser) getRequiredHeaders() []string {
	return []string{
		rp.config.GetColumnName("av7"),
		rp.config.GetColumnName("flight"),
		rp.config.GetColumnName("refuel_time"),
	}
}

// rowFromRecord extracts the raw field values of one receipt row
func (rp *ReceiptParser) rowFromRecord(record []string, parseCtx *ParseContext) (models.ReceiptRow, *ParseError) {
	av7, err := rp.GetFieldValue(record, parseCtx, rp.config.GetColumnName("av7"))
	if err != nil {
		return models.ReceiptRow{}, &ParseError{
			Line:    parseCtx.LineNumber,
			Field:   rp.config.GetColumnName("av7"),
			Message: "missing AV7 value",
			Err:     err,
		}
	}

	flight, err := rp.GetFieldValue(record, parseCtx, rp.config.GetColumnName("flight"))
	if err != nil {
		return models.ReceiptRow{}, &ParseError{
			Line:    parseCtx.LineNumber,
			Field:   rp.config.GetColumnName("flight"),
			Message: "missing flight value",
			Err:     err,
		}
	}

	refuelTime, err := rp.GetFieldValue(record, parseCtx, rp.config.GetColumnName("refuel_time"))
	if err != nil {
		return models.ReceiptRow{}, &ParseError{
			Line:    parseCtx.LineNumber,
			Field:   rp.config.GetColumnName("refuel_time"),
			Message: "missing refuel time value",
			Err:     err,
		}
	}

	return models.ReceiptRow{
		AV7:        av7,
		Flight:     flight,
		RefuelTime: refuelTime,
	}, nil
}
