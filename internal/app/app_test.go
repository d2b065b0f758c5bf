package app

import (
	"os"
	"path/filepath"
	"testing"
)

func writeEnv(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestLoadEnvFilesSkipsMissingFile(t *testing.T) {
	dir := t.TempDir()
	writeEnv(t, filepath.Join(dir, ".env"), "EVENTHUB_ENV_ONLY=from-dotenv\n")
	t.Setenv("EVENTHUB_ENV_ONLY", "")
	os.Unsetenv("EVENTHUB_ENV_ONLY")

	LoadEnvFiles(filepath.Join(dir, ".env.local"), filepath.Join(dir, ".env"))

	if got := os.Getenv("EVENTHUB_ENV_ONLY"); got != "from-dotenv" {
		t.Errorf("EVENTHUB_ENV_ONLY = %q, want from-dotenv", got)
	}
}

func TestLoadEnvFilesEarlierFileWins(t *testing.T) {
	dir := t.TempDir()
	writeEnv(t, filepath.Join(dir, ".env.local"), "EVENTHUB_ENV_BOTH=local\n")
	writeEnv(t, filepath.Join(dir, ".env"), "EVENTHUB_ENV_BOTH=shared\nEVENTHUB_ENV_SHARED=shared\n")
	t.Setenv("EVENTHUB_ENV_BOTH", "")
	t.Setenv("EVENTHUB_ENV_SHARED", "")
	os.Unsetenv("EVENTHUB_ENV_BOTH")
	os.Unsetenv("EVENTHUB_ENV_SHARED")

	LoadEnvFiles(filepath.Join(dir, ".env.local"), filepath.Join(dir, ".env"))

	if got := os.Getenv("EVENTHUB_ENV_BOTH"); got != "local" {
		t.Errorf("EVENTHUB_ENV_BOTH = %q, want local", got)
	}
	if got := os.Getenv("EVENTHUB_ENV_SHARED"); got != "shared" {
		t.Errorf("EVENTHUB_ENV_SHARED = %q, want shared", got)
	}
}
