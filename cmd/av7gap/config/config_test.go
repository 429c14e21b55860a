package config

import (
	"reflect"
	"testing"

	"av7-gap-analyzer/internal/reporter"
)

func TestParseIgnoredReceiptIDs(t *testing.T) {
	tests := []struct {
		name    string
		tokens  []string
		want    map[int64]bool
		wantErr bool
	}{
		{
			name:   "plain numbers",
			tokens: []string{"100234", " 100235 "},
			want:   map[int64]bool{100234: true, 100235: true},
		},
		{
			name:   "spreadsheet formatting",
			tokens: []string{"100236.0", "#100237"},
			want:   map[int64]bool{100236: true, 100237: true},
		},
		{
			name:   "blank tokens skipped",
			tokens: []string{"", "  ", "100238"},
			want:   map[int64]bool{100238: true},
		},
		{
			name:   "empty input",
			tokens: nil,
			want:   map[int64]bool{},
		},
		{
			name:    "no digits",
			tokens:  []string{"abc"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIgnoredReceiptIDs(tt.tokens)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ids = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseIgnoredFlightIDs(t *testing.T) {
	got := ParseIgnoredFlightIDs([]string{"6e-456", " ab1 ", "", "TEST 9"})

	want := map[string]bool{"6E456": true, "AB1": true, "TEST9": true}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ids = %v, want %v", got, want)
	}
}

func TestParseIgnoredPrefixes(t *testing.T) {
	got := ParseIgnoredPrefixes([]string{" 9 ", "", "TEST"})

	want := []string{"9", "TEST"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("prefixes = %v, want %v", got, want)
	}
}

func TestCreateAnalysisConfig(t *testing.T) {
	config, err := CreateAnalysisConfig(90, 500,
		[]string{"100234"}, []string{"test1"}, []string{"9"})
	if err != nil {
		t.Fatalf("CreateAnalysisConfig() failed: %v", err)
	}

	if config.SlackMinutes != 90 || config.MaxGapSize != 500 {
		t.Errorf("config = %+v", config)
	}
	if !config.IgnoredReceiptIDs[100234] {
		t.Error("receipt 100234 not ignored")
	}
	if !config.IgnoredFlightIDs["TEST1"] {
		t.Error("flight TEST1 not normalized into the ignore set")
	}
	if len(config.IgnoredPrefixes) != 1 || config.IgnoredPrefixes[0] != "9" {
		t.Errorf("prefixes = %v", config.IgnoredPrefixes)
	}

	if _, err := CreateAnalysisConfig(60, 1000, []string{"nope"}, nil, nil); err == nil {
		t.Error("expected error for unparsable receipt id")
	}
}

func TestCreateReportConfig(t *testing.T) {
	tests := []struct {
		format string
		want   reporter.OutputFormat
	}{
		{"console", reporter.FormatConsole},
		{"json", reporter.FormatJSON},
		{"csv", reporter.FormatCSV},
		{"xlsx", reporter.FormatXLSX},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			config := CreateReportConfig(tt.format)
			if config.Format != tt.want {
				t.Errorf("format = %v, want %v", config.Format, tt.want)
			}
			if err := config.Validate(); err != nil {
				t.Errorf("Validate() failed: %v", err)
			}
		})
	}
}

func TestCreateParserConfigs(t *testing.T) {
	receiptConfig := CreateReceiptParserConfig()
	if err := receiptConfig.Validate(); err != nil {
		t.Errorf("receipt config invalid: %v", err)
	}
	if receiptConfig.GetColumnName("av7") != "AV7" {
		t.Errorf("av7 column = %q", receiptConfig.GetColumnName("av7"))
	}

	scheduleConfig := CreateScheduleParserConfig()
	if err := scheduleConfig.Validate(); err != nil {
		t.Errorf("schedule config invalid: %v", err)
	}
	if scheduleConfig.GetColumnName("std") != "STD" {
		t.Errorf("std column = %q", scheduleConfig.GetColumnName("std"))
	}
}
