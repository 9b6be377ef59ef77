package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Feedback.NominationQuota != 4 {
		t.Errorf("Default quota should be 4, got %d", cfg.Feedback.NominationQuota)
	}
	if cfg.Feedback.SweepPolicy != SweepPolicyAutoApprove {
		t.Errorf("Default sweep policy should be auto_approve, got %s", cfg.Feedback.SweepPolicy)
	}
	if cfg.Scheduler.SweepCron != "0 1 * * *" {
		t.Errorf("Unexpected default sweep cron: %s", cfg.Scheduler.SweepCron)
	}
	if cfg.Server.TimeoutRead != 15*time.Second {
		t.Errorf("Unexpected default read timeout: %v", cfg.Server.TimeoutRead)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("NOMINATION_QUOTA", "6")
	t.Setenv("SWEEP_POLICY", "expire")
	t.Setenv("SERVER_TIMEOUT_READ", "30s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("ADMIN_DESIGNATIONS", "HRBP, Head of People")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Feedback.NominationQuota != 6 {
		t.Errorf("Quota override not applied, got %d", cfg.Feedback.NominationQuota)
	}
	if cfg.Feedback.SweepPolicy != SweepPolicyExpire {
		t.Errorf("Policy override not applied, got %s", cfg.Feedback.SweepPolicy)
	}
	if cfg.Server.TimeoutRead != 30*time.Second {
		t.Errorf("Timeout override not applied, got %v", cfg.Server.TimeoutRead)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("Origin list not parsed, got %v", cfg.CORS.AllowedOrigins)
	}
	if len(cfg.Feedback.AdminDesignations) != 2 || cfg.Feedback.AdminDesignations[0] != "HRBP" {
		t.Errorf("Admin designation list not parsed, got %v", cfg.Feedback.AdminDesignations)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			JWT:      JWTConfig{Secret: "test-secret"},
			App:      AppConfig{Env: "development"},
			Feedback: FeedbackConfig{
				NominationQuota:   4,
				SweepPolicy:       SweepPolicyAutoApprove,
				AdminDesignations: []string{"HR Manager"},
			},
		}
	}

	if err := base().Validate(); err != nil {
		t.Errorf("Valid config should pass: %v", err)
	}

	cfg := base()
	cfg.JWT.Secret = ""
	if err := cfg.Validate(); err == nil {
		t.Error("Missing JWT secret should fail validation")
	}

	cfg = base()
	cfg.App.Env = "production"
	if err := cfg.Validate(); err == nil {
		t.Error("Missing DB password in production should fail validation")
	}

	cfg = base()
	cfg.Feedback.NominationQuota = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Zero quota should fail validation")
	}

	cfg = base()
	cfg.Feedback.SweepPolicy = "discard"
	if err := cfg.Validate(); err == nil {
		t.Error("Unknown sweep policy should fail validation")
	}

	cfg = base()
	cfg.Feedback.AdminDesignations = nil
	if err := cfg.Validate(); err == nil {
		t.Error("Empty admin list should fail validation")
	}
}
