package config

import (
	"strings"
	"testing"
)

func TestShowAll_MasksSecrets(t *testing.T) {
	cfg := defaults()
	cfg.HubSpot.APIToken = "super-secret"

	var tokenRow *KeyInfo
	for _, row := range ShowAll(cfg) {
		if row.Key == "hubspot.api_token" {
			r := row
			tokenRow = &r
		}
		if strings.Contains(row.Value, "super-secret") {
			t.Errorf("secret leaked into %s = %q", row.Key, row.Value)
		}
	}
	if tokenRow == nil {
		t.Fatal("token key missing from ShowAll")
	}
	if tokenRow.Value != "(set)" {
		t.Errorf("set token should mask as (set), got %q", tokenRow.Value)
	}

	cfg.HubSpot.APIToken = ""
	for _, row := range ShowAll(cfg) {
		if row.Key == "hubspot.api_token" && row.Value != "(unset)" {
			t.Errorf("empty token should show (unset), got %q", row.Value)
		}
	}
}

func TestSetKey_Refusals(t *testing.T) {
	if err := SetKey("no.such.key", "x"); err == nil {
		t.Error("expected an error for an unknown key")
	}
	err := SetKey("hubspot.api_token", "x")
	if err == nil {
		t.Fatal("expected an error for a secret key")
	}
	if !strings.Contains(err.Error(), "CRMSCOPE_HUBSPOT_TOKEN") {
		t.Errorf("refusal should name the env var: %v", err)
	}
}

func TestValidKeys_ExcludesSecrets(t *testing.T) {
	keys := ValidKeys()
	if len(keys) == 0 {
		t.Fatal("no keys")
	}
	for _, k := range keys {
		if k == "hubspot.api_token" {
			t.Error("secret key listed as settable")
		}
	}
}
