package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{" error ", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestStartupLogger_Log(t *testing.T) {
	t.Setenv(LevelEnv, "info")
	var buf bytes.Buffer
	InitJSON(&buf)
	defer func() { log.Logger = zerolog.Nop() }()

	NewStartupLogger("portrait-lambda").
		S3Bucket("media", "photos-bucket").
		DynamoTable("jobs", "jobs-table").
		SSMParam("geminiKey", "/portrait/gemini-api-key").
		Model("edit", "gemini-image").
		Feature("rateLimit", true).
		Config("variations", "3").
		Log()

	var doc map[string]any
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if doc["message"] != "Cold start complete" {
		t.Errorf("message = %v", doc["message"])
	}
	res, ok := doc["resources"].(map[string]any)
	if !ok {
		t.Fatalf("resources missing: %v", doc)
	}
	buckets := res["s3Buckets"].(map[string]any)
	if buckets["media"] != "photos-bucket" {
		t.Errorf("s3Buckets.media = %v", buckets["media"])
	}
	if _, ok := doc["models"]; !ok {
		t.Error("models missing")
	}
	if ssm := res["ssmParams"].(map[string]any); ssm["geminiKey"] != "/portrait/gemini-api-key" {
		t.Errorf("ssmParams.geminiKey = %v", ssm["geminiKey"])
	}
}

func TestEnvOrDefault(t *testing.T) {
	t.Setenv("PORTRAIT_TEST_VALUE", "")
	if got := EnvOrDefault("PORTRAIT_TEST_VALUE", "fallback"); got != "fallback" {
		t.Errorf("EnvOrDefault() = %q", got)
	}
	t.Setenv("PORTRAIT_TEST_VALUE", "set")
	if got := EnvOrDefault("PORTRAIT_TEST_VALUE", "fallback"); got != "set" {
		t.Errorf("EnvOrDefault() = %q", got)
	}
}
