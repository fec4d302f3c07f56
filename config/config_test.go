package config

import (
	"os"
	"testing"
	"time"
)

const testMerchantID = "1344b5d4-0048-11e8-94db-005056a205be"

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("setenv %s failed: %v", key, err)
	}
	t.Cleanup(func() {
		if had {
			_ = os.Setenv(key, old)
		} else {
			_ = os.Unsetenv(key)
		}
	})
}

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	_ = os.Unsetenv(key)
	t.Cleanup(func() {
		if had {
			_ = os.Setenv(key, old)
		}
	})
}

func TestLoadRequiresMerchantID(t *testing.T) {
	unsetEnv(t, "ZARINPAL_MERCHANT_ID")
	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing ZARINPAL_MERCHANT_ID")
	}
}

func TestLoadRejectsMalformedMerchantID(t *testing.T) {
	setEnv(t, "ZARINPAL_MERCHANT_ID", "not-a-merchant")
	_, err := Load()
	if err == nil {
		t.Fatal("expected error for malformed ZARINPAL_MERCHANT_ID")
	}
}

func TestLoadDefaults(t *testing.T) {
	setEnv(t, "ZARINPAL_MERCHANT_ID", testMerchantID)
	unsetEnv(t, "ZARINPAL_SANDBOX")
	unsetEnv(t, "ZARINPAL_ZARINGATE")
	unsetEnv(t, "ZARINPAL_HTTP_TIMEOUT_SECONDS")
	unsetEnv(t, "UNVERIFIED_POLL_INTERVAL_MINUTES")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Zarinpal.Sandbox || cfg.Zarinpal.ZarinGate {
		t.Fatalf("unexpected zarinpal flags: %+v", cfg.Zarinpal)
	}
	if cfg.Zarinpal.HTTPTimeout != 10*time.Second {
		t.Fatalf("unexpected http timeout: %v", cfg.Zarinpal.HTTPTimeout)
	}
	if cfg.Jobs.UnverifiedPollInterval != 15*time.Minute {
		t.Fatalf("unexpected poll interval: %v", cfg.Jobs.UnverifiedPollInterval)
	}
}

func TestLoadDefaultsAndOverrides(t *testing.T) {
	setEnv(t, "ZARINPAL_MERCHANT_ID", " "+testMerchantID+" ")
	setEnv(t, "APP_SERVICE_NAME", "zarinpal-test")
	setEnv(t, "HTTP_PORT", "8181")
	setEnv(t, "GRPC_PORT", "9191")
	setEnv(t, "LOG_LEVEL", "debug")
	setEnv(t, "ZARINPAL_SANDBOX", "true")
	setEnv(t, "ZARINPAL_ZARINGATE", "1")
	setEnv(t, "ZARINPAL_HTTP_TIMEOUT_SECONDS", "4")
	setEnv(t, "ZARINPAL_CALLBACK_URL", "https://shop.example/callbacks/zarinpal")
	setEnv(t, "UNVERIFIED_POLL_INTERVAL_MINUTES", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.App.ServiceName != "zarinpal-test" {
		t.Fatalf("unexpected app service name: %s", cfg.App.ServiceName)
	}
	if cfg.HTTP.Port != "8181" || cfg.GRPC.Port != "9191" {
		t.Fatalf("unexpected ports: http=%s grpc=%s", cfg.HTTP.Port, cfg.GRPC.Port)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("unexpected log level: %s", cfg.Log.Level)
	}
	if cfg.Zarinpal.MerchantID != testMerchantID {
		t.Fatalf("unexpected merchant id: %q", cfg.Zarinpal.MerchantID)
	}
	if !cfg.Zarinpal.Sandbox || !cfg.Zarinpal.ZarinGate {
		t.Fatalf("unexpected zarinpal flags: %+v", cfg.Zarinpal)
	}
	if cfg.Zarinpal.HTTPTimeout != 4*time.Second {
		t.Fatalf("unexpected http timeout: %v", cfg.Zarinpal.HTTPTimeout)
	}
	if cfg.Zarinpal.CallbackURL != "https://shop.example/callbacks/zarinpal" {
		t.Fatalf("unexpected callback url: %s", cfg.Zarinpal.CallbackURL)
	}
	if cfg.Jobs.UnverifiedPollInterval != 3*time.Minute {
		t.Fatalf("unexpected poll interval: %v", cfg.Jobs.UnverifiedPollInterval)
	}
}
