package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"reflect"
	"strings"
	"syscall"
	"testing"
	"unicode/utf8"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

type BadGatewayError struct{}

func (*BadGatewayError) Error() string { return "bad gateway" }

func TestErrorLabel(t *testing.T) {
	refused := &url.Error{Op: "Get", URL: "http://127.0.0.1:1", Err: &net.OpError{
		Op:  "dial",
		Net: "tcp",
		Err: os.NewSyscallError("connect", syscall.ECONNREFUSED),
	}}
	dns := &url.Error{Op: "Get", URL: "http://nope.invalid", Err: &net.OpError{
		Op:  "dial",
		Net: "tcp",
		Err: &net.DNSError{Err: "no such host", Name: "nope.invalid"},
	}}

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "Unknown error"},
		{"deadline", fmt.Errorf("wrapped: %w", context.DeadlineExceeded), "Context deadline exceeded"},
		{"timeout", &url.Error{Op: "Get", URL: "http://x", Err: timeoutErr{}}, "Timeout"},
		{"refused", refused, "Connection refused"},
		{"dns", dns, "DNS lookup failed"},
		{"op error", &net.OpError{Op: "read", Net: "tcp", Err: errors.New("weird")}, "Network error (read)"},
		{"plain message", errors.New("server closed connection"), "server closed connection"},
		{"typed", &BadGatewayError{}, "Bad Gateway Error (metrics)"},
		{"url wraps plain", &url.Error{Op: "Get", URL: "http://x", Err: errors.New("EOF-ish")}, "EOF-ish"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorLabel(tt.err); got != tt.want {
				t.Errorf("ErrorLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorLabelTruncatesLongMessages(t *testing.T) {
	got := ErrorLabel(errors.New(strings.Repeat("x", 200)))
	if len(got) != maxLabelLen {
		t.Errorf("len(ErrorLabel()) = %d, want %d", len(got), maxLabelLen)
	}
}

func TestErrorLabelKeepsMultiByteRunesWhole(t *testing.T) {
	// The two-byte "é" straddles the cut point.
	msg := strings.Repeat("a", maxLabelLen-1) + "é tail"
	got := ErrorLabel(errors.New(msg))
	if !utf8.ValidString(got) {
		t.Fatalf("ErrorLabel() = %q, not valid UTF-8", got)
	}
	if got != strings.Repeat("a", maxLabelLen-1) {
		t.Errorf("ErrorLabel() = %q, want the ASCII prefix only", got)
	}

	wide := strings.Repeat("界", 40)
	got = ErrorLabel(errors.New(wide))
	if !utf8.ValidString(got) || len(got) > maxLabelLen || !strings.HasPrefix(wide, got) {
		t.Errorf("ErrorLabel(%d CJK runes) = %q (len %d)", 40, got, len(got))
	}
}

func TestFriendlyErrorName(t *testing.T) {
	tests := map[string]string{
		"":                               "Unknown error",
		"*url.Error":                     "Request URL error",
		"*context.deadlineExceededError": "Context deadline exceeded",
		"*net.OpError":                   "Op Error (net)",
		"*main.customErr":                "Custom Err",
		"*runner.FatalError":             "Fatal exchange error",
	}
	for in, want := range tests {
		if got := FriendlyErrorName(in); got != want {
			t.Errorf("FriendlyErrorName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFlattenErrorCounts(t *testing.T) {
	if rows := FlattenErrorCounts(nil); rows != nil {
		t.Errorf("FlattenErrorCounts(nil) = %v, want nil", rows)
	}

	got := FlattenErrorCounts(map[string]int64{"b": 2, "a": 2, "c": 5})
	want := []ErrorCount{{"c", 5}, {"a", 2}, {"b", 2}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FlattenErrorCounts() = %v, want %v", got, want)
	}
}

func TestFlattenStatusCounts(t *testing.T) {
	if rows := FlattenStatusCounts(nil); rows != nil {
		t.Errorf("FlattenStatusCounts(nil) = %v, want nil", rows)
	}

	got := FlattenStatusCounts(map[string]int64{"500": 3, "200": 7, "404": 3})
	want := []StatusCount{{"200", 7}, {"404", 3}, {"500", 3}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FlattenStatusCounts() = %v, want %v", got, want)
	}
}
