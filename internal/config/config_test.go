package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.OpenAI.Model != "gpt-4.1-mini" {
		t.Errorf("default model = %q", cfg.OpenAI.Model)
	}
	if cfg.Chat.MaxTranscriptTurns != 30 {
		t.Errorf("default transcript bound = %d", cfg.Chat.MaxTranscriptTurns)
	}
	if cfg.Upload.MaxUploadMB != 25 {
		t.Errorf("default upload limit = %d", cfg.Upload.MaxUploadMB)
	}
}

func TestLoad_FileThenEnvPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[openai]
api_key = "from-file"
model = "file-model"

[chat]
max_transcript_turns = 12
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("WINK_MODEL", "env-model")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.OpenAI.APIKey != "from-file" {
		t.Errorf("api key = %q, want the file value", cfg.OpenAI.APIKey)
	}
	if cfg.OpenAI.Model != "env-model" {
		t.Errorf("model = %q, env should win over the file", cfg.OpenAI.Model)
	}
	if cfg.Chat.MaxTranscriptTurns != 12 {
		t.Errorf("transcript bound = %d, want the file value", cfg.Chat.MaxTranscriptTurns)
	}
}

func TestValidate_RequiresAPIKey(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("err = %v, want ErrMissingAPIKey", err)
	}

	cfg.OpenAI.APIKey = "sk-x"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate with a key failed: %v", err)
	}

	// The shared store stays optional.
	if cfg.OpenAI.CommonVectorStoreID != "" {
		t.Fatalf("default common store = %q, want unset", cfg.OpenAI.CommonVectorStoreID)
	}
}

func TestMySQLDSN(t *testing.T) {
	cfg := defaultConfig()
	cfg.MySQL = MySQLConfig{
		Host: "db", Port: 3307, User: "wink", Password: "pw", DB: "winkclass", Params: "parseTime=true",
	}
	want := "wink:pw@tcp(db:3307)/winkclass?parseTime=true"
	if got := cfg.MySQLDSN(); got != want {
		t.Errorf("DSN = %q, want %q", got, want)
	}
}
