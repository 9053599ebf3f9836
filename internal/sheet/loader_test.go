package sheet

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestParseCSV(t *testing.T) {
	in := "Number , Message\n+91 98765-43210,Hi there\n,\n123, hello \n"

	contacts, err := ParseCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if len(contacts) != 2 {
		t.Fatalf("got %d contacts, want 2 (blank row skipped)", len(contacts))
	}
	if contacts[0].Number != "+91 98765-43210" || contacts[0].Message != "Hi there" {
		t.Fatalf("row 0 = %+v", contacts[0])
	}
	if contacts[1].Message != "hello" {
		t.Fatalf("cells should be trimmed, got %q", contacts[1].Message)
	}
}

func TestParseCSVMissingColumns(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "wrong message header", header: "Number,Msg", want: "Message"},
		{name: "wrong number header", header: "Phone,Message", want: "Number"},
		{name: "both missing", header: "Phone,Msg", want: "Number, Message"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV(strings.NewReader(tt.header + "\n1,hi\n"))
			if err == nil {
				t.Fatal("expected refusal")
			}
			if !strings.Contains(err.Error(), "missing required columns") ||
				!strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error must cite %q, got %q", tt.want, err)
			}
		})
	}
}

func TestParseCSVEmpty(t *testing.T) {
	if _, err := ParseCSV(strings.NewReader("")); err == nil {
		t.Fatal("expected error for empty dataset")
	}
}

func TestExportURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "edit url rewritten",
			in:   "https://docs.google.com/spreadsheets/d/abc123/edit#gid=0",
			want: "https://docs.google.com/spreadsheets/d/abc123/export?format=csv",
		},
		{
			name: "export url untouched",
			in:   "https://docs.google.com/spreadsheets/d/abc123/export?format=csv",
			want: "https://docs.google.com/spreadsheets/d/abc123/export?format=csv",
		},
		{
			name: "bare id no trailing path",
			in:   "https://docs.google.com/spreadsheets/d/abc123",
			want: "https://docs.google.com/spreadsheets/d/abc123/export?format=csv",
		},
		{
			name: "non google url untouched",
			in:   "https://example.org/contacts.csv",
			want: "https://example.org/contacts.csv",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExportURL(tt.in); got != tt.want {
				t.Fatalf("ExportURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	_ = f.SetSheetRow("Sheet1", "A1", &[]any{"Number", "Message"})
	_ = f.SetSheetRow("Sheet1", "A2", &[]any{"919876543210", "Hi there"})

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("build workbook: %v", err)
	}

	contacts, err := ParseXLSX(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("ParseXLSX: %v", err)
	}
	if len(contacts) != 1 {
		t.Fatalf("got %d contacts, want 1", len(contacts))
	}
	if contacts[0].Number != "919876543210" || contacts[0].Message != "Hi there" {
		t.Fatalf("row 0 = %+v", contacts[0])
	}
}

func TestFromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("Number,Message\n123,hi\n"))
	}))
	defer srv.Close()

	contacts, err := NewLoader(srv.Client()).FromURL(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FromURL: %v", err)
	}
	if len(contacts) != 1 || contacts[0].Number != "123" {
		t.Fatalf("contacts = %+v", contacts)
	}
}

func TestFromURLBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	if _, err := NewLoader(srv.Client()).FromURL(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}
