package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	// Guard against ambient env leaking into the assertions
	for _, key := range []string{
		"DATABASE_URL", "PG_DSN", "PG_DATABASE",
		"SEARCH_PREVIEW_LIMIT", "SEARCH_FINAL_LIMIT",
		"SEARCH_DIMENSION_TOLERANCE_CM", "OPENAI_API_KEY",
		"CONV_CAPACITY_REFINE_EXPERIMENT", "CONV_ASK_DIMENSIONS_EXPERIMENT",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Search.PreviewLimit != 3 {
		t.Errorf("PreviewLimit = %d, want 3", cfg.Search.PreviewLimit)
	}
	if cfg.Search.FinalLimit != 5 {
		t.Errorf("FinalLimit = %d, want 5", cfg.Search.FinalLimit)
	}
	if cfg.Search.DimensionToleranceCm != 1.0 {
		t.Errorf("DimensionToleranceCm = %v, want 1.0", cfg.Search.DimensionToleranceCm)
	}
	if cfg.Search.CandidateFetchFactor != 4 || cfg.Search.CandidateFetchMin != 40 {
		t.Errorf("candidate fetch = %d/%d, want 4/40",
			cfg.Search.CandidateFetchFactor, cfg.Search.CandidateFetchMin)
	}
	if cfg.Conversation.CapacityRefineExperiment {
		t.Error("CapacityRefineExperiment = true, want false by default")
	}
	if !cfg.Conversation.AskDimensionsExperiment {
		t.Error("AskDimensionsExperiment = false, want true by default")
	}
	if cfg.OpenAI.Enabled {
		t.Error("OpenAI.Enabled = true, want false without an API key")
	}
}

func TestGetPostgreSQLDSN(t *testing.T) {
	cfg := &Config{PostgreSQL: PostgreSQLConfig{
		Host: "db", Port: 5432, User: "u", Password: "p",
		Database: "washfinder", SSLMode: "disable",
	}}
	want := "host=db port=5432 user=u password=p dbname=washfinder sslmode=disable"
	if got := cfg.GetPostgreSQLDSN(); got != want {
		t.Errorf("GetPostgreSQLDSN() = %q, want %q", got, want)
	}

	cfg.PostgreSQL.DSN = "postgres://x"
	if got := cfg.GetPostgreSQLDSN(); got != "postgres://x" {
		t.Errorf("GetPostgreSQLDSN() = %q, want the explicit DSN", got)
	}
}
