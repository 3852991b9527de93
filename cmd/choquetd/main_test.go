package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("PORT", "9090")
	t.Setenv("API_KEY", "k")
	t.Setenv("STORAGE_BACKEND", "s3")
	t.Setenv("S3_BUCKET", "results")
	t.Setenv("S3_REGION", "eu-west-1")
	t.Setenv("DATABASE_URL", "postgres://db/choquet")

	cfg, dbURL, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Server.APIKey != "k" {
		t.Errorf("api key = %q, want k", cfg.Server.APIKey)
	}
	if cfg.Storage.Backend != "s3" || cfg.Storage.Bucket != "results" || cfg.Storage.Region != "eu-west-1" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if dbURL != "postgres://db/choquet" {
		t.Errorf("database url = %q", dbURL)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"CONFIG_PATH", "PORT", "API_KEY", "STORAGE_BACKEND", "DATABASE_URL", "LOCAL_STORAGE_PATH"} {
		t.Setenv(k, "")
	}

	cfg, dbURL, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Storage.Dir != "/tmp/choquet-data" {
		t.Errorf("storage dir = %q", cfg.Storage.Dir)
	}
	if dbURL != "" {
		t.Errorf("database url = %q, want empty", dbURL)
	}
}

func TestReadyHandlerWithoutDatabase(t *testing.T) {
	rec := httptest.NewRecorder()
	readyHandler(nil)(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
