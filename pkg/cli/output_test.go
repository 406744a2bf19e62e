package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

type resultTable [][]string

func (t resultTable) Header() []string { return []string{"RULE", "STATUS", "MESSAGE"} }
func (t resultTable) Rows() [][]string { return t }

var sampleTable = resultTable{
	{"R1", "ALERT", "LTV above 95"},
	{"R22", "PASS", ""},
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{"csv", FormatCSV, false},
		{"junit", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTextFormatter(t *testing.T) {
	formatter := &TextFormatter{}

	output, err := formatter.Format("catalog ok")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if string(output) != "catalog ok\n" {
		t.Errorf("Format() = %q", output)
	}
}

func TestTextFormatter_Table(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := (&TextFormatter{}).FormatTo(buf, sampleTable); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	want := "RULE  STATUS  MESSAGE\n" +
		"R1    ALERT   LTV above 95\n" +
		"R22   PASS    \n"
	if buf.String() != want {
		t.Errorf("FormatTo() =\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestJSONFormatter(t *testing.T) {
	tests := []struct {
		name   string
		data   interface{}
		indent bool
	}{
		{
			name:   "simple string",
			data:   "test",
			indent: false,
		},
		{
			name: "map with indent",
			data: map[string]string{
				"key": "value",
			},
			indent: true,
		},
		{
			name: "struct",
			data: struct {
				RuleID string `json:"rule_id"`
				Status string `json:"status"`
			}{
				RuleID: "R1",
				Status: "ALERT",
			},
			indent: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatter := &JSONFormatter{Indent: tt.indent}
			output, err := formatter.Format(tt.data)
			if err != nil {
				t.Fatalf("Format() error = %v", err)
			}

			var result interface{}
			if err := json.Unmarshal(output, &result); err != nil {
				t.Errorf("Format() produced invalid JSON: %v", err)
			}
		})
	}
}

func TestCSVFormatter(t *testing.T) {
	output, err := (&CSVFormatter{}).Format(sampleTable)
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	want := "RULE,STATUS,MESSAGE\nR1,ALERT,LTV above 95\nR22,PASS,\n"
	if string(output) != want {
		t.Errorf("Format() = %q, want %q", output, want)
	}
}

func TestCSVFormatter_NotTabular(t *testing.T) {
	_, err := (&CSVFormatter{}).Format(map[string]string{"a": "b"})
	if !errors.Is(err, ErrNotTabular) {
		t.Errorf("Format() error = %v, want ErrNotTabular", err)
	}
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		name   string
		format OutputFormat
		want   string
	}{
		{"text formatter", FormatText, "*cli.TextFormatter"},
		{"json formatter", FormatJSON, "*cli.JSONFormatter"},
		{"csv formatter", FormatCSV, "*cli.CSVFormatter"},
		{"default to text", "unknown", "*cli.TextFormatter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fmt.Sprintf("%T", NewFormatter(tt.format))
			if got != tt.want {
				t.Errorf("NewFormatter(%q) type = %v, want %v", tt.format, got, tt.want)
			}
		})
	}
}
