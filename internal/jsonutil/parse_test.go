package jsonutil

import (
	"errors"
	"testing"
	"unicode/utf8"
)

type verdict struct {
	OK       bool   `json:"ok"`
	Feedback string `json:"feedback"`
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fences", `  {"ok":true} `, `{"ok":true}`},
		{"json fence", "```json\n{\"ok\":true}\n```", `{"ok":true}`},
		{"bare fence", "```\n{\"ok\":true}\n```", `{"ok":true}`},
		{"unclosed fence", "```json\n{\"ok\":true}", `{"ok":true}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripFences(tt.in); got != tt.want {
				t.Errorf("StripFences() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractObject(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"prose around", `Sure! {"ok":true} Hope that helps.`, `{"ok":true}`, false},
		{"nested", `{"a":{"b":1}} trailing {"c":2}`, `{"a":{"b":1}}`, false},
		{"brace in string", `{"feedback":"use } carefully"}`, `{"feedback":"use } carefully"}`, false},
		{"escaped quote", `{"feedback":"say \"hi}\""}`, `{"feedback":"say \"hi}\""}`, false},
		{"none", `no json here`, "", true},
		{"unterminated", `{"ok":true`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractObject(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ExtractObject() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ExtractObject() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseObject(t *testing.T) {
	v, err := ParseObject[verdict]("```json\n{\"ok\": true, \"feedback\": \"fine\"}\n```")
	if err != nil {
		t.Fatalf("ParseObject() error = %v", err)
	}
	if !v.OK || v.Feedback != "fine" {
		t.Errorf("ParseObject() = %+v", v)
	}

	_, err = ParseObject[verdict]("I cannot help with that.")
	if !errors.Is(err, ErrNoJSON) {
		t.Errorf("ParseObject() error = %v, want ErrNoJSON", err)
	}

	if _, err := ParseObject[verdict](`{"ok": "yes"}`); err == nil {
		t.Error("ParseObject() expected type error")
	}
}

func TestPreview(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"abcdef", 3, "abc..."},
		{"abc", 3, "abc"},
		// Multi-byte runes are never split.
		{"héllo", 2, "h..."},
		{"日本語", 4, "日..."},
		{"日本語", 6, "日本..."},
		{"日本語", 1, "..."},
	}
	for _, tt := range tests {
		got := Preview(tt.in, tt.n)
		if got != tt.want {
			t.Errorf("Preview(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("Preview(%q, %d) = %q is not valid UTF-8", tt.in, tt.n, got)
		}
	}
}
