package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"

	"stickermaker/internal/core/domain"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{APIKeyVar, "REMOVEBG_ENDPOINT", "REMOVEBG_TIMEOUT",
		"REMOVEBG_MAX_ATTEMPTS", "STICKER_MAX_SIDE", "STICKER_QUALITY"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RemoveBG.APIKey != "" {
		t.Errorf("APIKey = %q", cfg.RemoveBG.APIKey)
	}
	if cfg.Sticker.MaxSide != 512 || cfg.Sticker.Quality != 90 {
		t.Errorf("Sticker = %+v", cfg.Sticker)
	}
	if cfg.RemoveBG.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d", cfg.RemoveBG.MaxAttempts)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoad_FromEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("REMOVEBG_API_KEY=abc123\nSTICKER_QUALITY=80\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RemoveBG.APIKey != "abc123" {
		t.Errorf("APIKey = %q", cfg.RemoveBG.APIKey)
	}
	if cfg.Sticker.Quality != 80 {
		t.Errorf("Quality = %d", cfg.Sticker.Quality)
	}
}

func TestRequireAPIKey(t *testing.T) {
	cfg := &Config{}
	for _, m := range domain.Modes {
		err := cfg.RequireAPIKey(m)
		if m.RemoveBackground() && !errors.Is(err, domain.ErrMissingAPIKey) {
			t.Errorf("%s: err = %v, want ErrMissingAPIKey", m, err)
		}
		if !m.RemoveBackground() && err != nil {
			t.Errorf("%s: err = %v, want nil", m, err)
		}
	}
	cfg.RemoveBG.APIKey = "k"
	if err := cfg.RequireAPIKey(domain.ModeStickerRemoveBG); err != nil {
		t.Errorf("with key: %v", err)
	}
}

func TestValidate_Ranges(t *testing.T) {
	cfg := &Config{Sticker: StickerConfig{MaxSide: 512, Quality: 101}}
	cfg.RemoveBG.MaxAttempts = 1
	if err := cfg.Validate(); err == nil {
		t.Error("quality 101 accepted")
	}
	cfg.Sticker.Quality = 90
	cfg.Sticker.MaxSide = 0
	if err := cfg.Validate(); err == nil {
		t.Error("max side 0 accepted")
	}
}

func TestSaveAPIKey_PreservesOtherEntries(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("STICKER_QUALITY=75\nREMOVEBG_API_KEY=old\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := SaveAPIKey(path, "  new-key "); err != nil {
		t.Fatalf("SaveAPIKey: %v", err)
	}
	env, err := godotenv.Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if env[APIKeyVar] != "new-key" {
		t.Errorf("%s = %q", APIKeyVar, env[APIKeyVar])
	}
	if env["STICKER_QUALITY"] != "75" {
		t.Errorf("STICKER_QUALITY = %q", env["STICKER_QUALITY"])
	}
	if os.Getenv(APIKeyVar) != "new-key" {
		t.Errorf("process env not updated")
	}
}

func TestSaveAPIKey_CreatesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	if err := SaveAPIKey(path, "k"); err != nil {
		t.Fatalf("SaveAPIKey: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("env file not created: %v", err)
	}
}

func TestSaveAPIKey_Empty(t *testing.T) {
	if err := SaveAPIKey(filepath.Join(t.TempDir(), ".env"), "   "); err == nil {
		t.Fatal("expected error for empty key")
	}
}
