package shared

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/charmbracelet/log"
)

func TestMask(t *testing.T) {
	tc := []struct {
		name       string
		in         string
		start, end int
		want       string
	}{
		{name: "phone number", in: "U1234567X", start: 3, end: 7, want: "U12****7X"},
		{name: "eleven digits", in: "13812345678", start: 3, end: 7, want: "138****5678"},
		{name: "shorter than range", in: "abcde", start: 3, end: 7, want: "abc**"},
		{name: "shorter than start", in: "ab", start: 3, end: 7, want: "ab"},
		{name: "empty", in: "", start: 3, end: 7, want: ""},
		{name: "multibyte", in: "用户名字很长的", start: 3, end: 7, want: "用户名****"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := Mask(tt.in, tt.start, tt.end)
			if got != tt.want {
				t.Errorf("Mask() = %q, want %q", got, tt.want)
			}
			if utf8.RuneCountInString(got) != utf8.RuneCountInString(tt.in) {
				t.Errorf("Mask() changed length: %d -> %d", utf8.RuneCountInString(tt.in), utf8.RuneCountInString(got))
			}
		})
	}
}

func TestFormatGiB(t *testing.T) {
	tc := []struct {
		in   int64
		want string
	}{
		{0, "0.00"},
		{1 << 30, "1.00"},
		{3 << 29, "1.50"},
		{-(1 << 30), "-1.00"},
		{50 * 1024 * 1024, "0.05"},
	}
	for _, tt := range tc {
		if got := FormatGiB(tt.in); got != tt.want {
			t.Errorf("FormatGiB(%d) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := WithLogger(NewLogger(&buf), "run_id", "abc")
	SetLogLevel(logger, log.DebugLevel)
	logger.Debug("hello")

	if !strings.Contains(buf.String(), "run_id=abc") {
		t.Errorf("expected child logger fields in output, got %q", buf.String())
	}
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == b || len(a) != 36 {
		t.Errorf("unexpected ids %q %q", a, b)
	}
}
