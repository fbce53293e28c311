package core

import (
	"reflect"
	"testing"
	"time"
)

func TestParseDateTime(t *testing.T) {
	plusTwo := time.FixedZone("UTC+2", 2*60*60)

	got, err := ParseDateTime("2024-12-20", "14:30", plusTwo)
	if err != nil {
		t.Fatalf("ParseDateTime: %v", err)
	}
	if want := mustTime("2024-12-20T12:30:00Z"); !got.Equal(want) || got.Location() != time.UTC {
		t.Errorf("got %v, want %v in UTC", got, want)
	}

	midnight, err := ParseDateTime("2024-12-20", "", time.UTC)
	if err != nil {
		t.Fatalf("ParseDateTime: %v", err)
	}
	if !midnight.Equal(mustTime("2024-12-20T00:00:00Z")) {
		t.Errorf("empty clock = %v, want midnight", midnight)
	}

	for _, in := range [][2]string{{"", "10:00"}, {"20-12-2024", "10:00"}, {"2024-12-20", "25:00"}, {"2024-02-30", ""}} {
		if _, err := ParseDateTime(in[0], in[1], time.UTC); !IsValidation(err) {
			t.Errorf("ParseDateTime(%q, %q) error = %v, want ValidationError", in[0], in[1], err)
		}
	}
}

func TestParseInstant(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-12-20T14:30:00Z", mustTime("2024-12-20T14:30:00Z")},
		{"2024-12-20T14:30:00+02:00", mustTime("2024-12-20T12:30:00Z")},
		{"2024-12-20T14:30", mustTime("2024-12-20T14:30:00Z")},
		{"2024-12-20 14:30", mustTime("2024-12-20T14:30:00Z")},
		{"2024-12-20", mustTime("2024-12-20T00:00:00Z")},
	}
	for _, tt := range tests {
		got, err := ParseInstant(tt.in, time.UTC)
		if err != nil {
			t.Errorf("ParseInstant(%q): %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseInstant(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := ParseInstant("next tuesday", time.UTC); !IsValidation(err) {
		t.Errorf("ParseInstant(garbage) error = %v, want ValidationError", err)
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"a@x.io, b@x.io", []string{"a@x.io", "b@x.io"}},
		{" , ,", []string{}},
		{"", []string{}},
		{"  +1-555-0101  ", []string{"+1-555-0101"}},
	}
	for _, tt := range tests {
		if got := SplitList(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitList(%q) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}
