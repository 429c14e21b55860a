package parsers

import (
	"fmt"
	"strings"
)

// ReceiptParserConfig holds configuration for parsing the refueling record
type ReceiptParserConfig struct {
	AV7Column        string            `json:"av7_column"`
	FlightColumn     string            `json:"flight_column"`
	RefuelTimeColumn string            `json:"refuel_time_column"`
	HasHeader        bool              `json:"has_header"`
	Delimiter        rune              `json:"delimiter"`
	ColumnAliases    map[string]string `json:"column_aliases,omitempty"`
}

// Validate checks if the receipt parser configuration is valid
func (rpc *ReceiptParserConfig) Validate() error {
	if strings.TrimSpace(rpc.AV7Column) == "" {
		return fmt.Errorf("AV7 column cannot be empty")
	}

	if strings.TrimSpace(rpc.FlightColumn) == "" {
		return fmt.Errorf("flight column cannot be empty")
	}

	if strings.TrimSpace(rpc.RefuelTimeColumn) == "" {
		return fmt.Errorf("refuel time column cannot be empty")
	}

	return nil
}

// GetColumnName returns the actual column name, checking aliases first
func (rpc *ReceiptParserConfig) GetColumnName(standardName string) string {
	if alias, exists := rpc.ColumnAliases[standardName]; exists {
		return alias
	}

	switch standardName {
	case "av7":
		return rpc.AV7Column
	case "flight":
		return rpc.FlightColumn
	case "refuel_time":
		return rpc.RefuelTimeColumn
	default:
		return standardName
	}
}

// DefaultReceiptParserConfig returns the standard refueling record layout
func DefaultReceiptParserConfig() *ReceiptParserConfig {
	return &ReceiptParserConfig{
		AV7Column:        "AV7",
		FlightColumn:     "Flight",
		RefuelTimeColumn: "Refuel_Time",
		HasHeader:        true,
		Delimiter:        '\t',
		ColumnAliases:    make(map[string]string),
	}
}

// ScheduleParserConfig holds configuration for parsing the flight schedule
type ScheduleParserConfig struct {
	FlightColumn  string            `json:"flight_column"`
	STDColumn     string            `json:"std_column"`
	HasHeader     bool              `json:"has_header"`
	Delimiter     rune              `json:"delimiter"`
	ColumnAliases map[string]string `json:"column_aliases,omitempty"`
}

// Validate checks if the schedule parser configuration is valid
func (spc *ScheduleParserConfig) Validate() error {
	if strings.TrimSpace(spc.FlightColumn) == "" {
		return fmt.Errorf("flight column cannot be empty")
	}

	if strings.TrimSpace(spc.STDColumn) == "" {
		return fmt.Errorf("STD column cannot be empty")
	}

	return nil
}

// GetColumnName returns the actual column name, checking aliases first
func (spc *ScheduleParserConfig) GetColumnName(standardName string) string {
	if alias, exists := spc.ColumnAliases[standardName]; exists {
		return alias
	}

	switch standardName {
	case "flight":
		return spc.FlightColumn
	case "std":
		return spc.STDColumn
	default:
		return standardName
	}
}

// DefaultScheduleParserConfig returns the standard flight schedule layout
func DefaultScheduleParserConfig() *ScheduleParserConfig {
	return &ScheduleParserConfig{
		FlightColumn:  "Flight",
		STDColumn:     "STD",
		HasHeader:     true,
		Delimiter:     '\t',
		ColumnAliases: make(map[string]string),
	}
}
