package auth

import (
	"encoding/base64"
	"strings"
	"testing"
)

func isolateHome(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv(EnvToken, "")
}

func TestTokenLifecycle(t *testing.T) {
	isolateHome(t)

	ti, err := GetToken()
	if err != nil {
		t.Fatalf("GetToken: %v", err)
	}
	if ti != nil {
		t.Fatalf("expected not logged in, got %+v", ti)
	}

	if err := SetToken("Bearer abc123", nil); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	ti, err = GetToken()
	if err != nil {
		t.Fatalf("GetToken: %v", err)
	}
	if ti == nil || ti.Token != "abc123" || ti.Source != "file" {
		t.Errorf("got %+v, want token abc123 from file", ti)
	}

	if err := DeleteToken(); err != nil {
		t.Fatalf("DeleteToken: %v", err)
	}
	if ti, _ = GetToken(); ti != nil {
		t.Errorf("still logged in after delete: %+v", ti)
	}
	// deleting again is fine
	if err := DeleteToken(); err != nil {
		t.Errorf("second delete: %v", err)
	}
}

func TestEnvTokenOverridesFile(t *testing.T) {
	isolateHome(t)
	if err := SetToken("filetoken", nil); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvToken, "envtoken")

	ti, err := GetToken()
	if err != nil {
		t.Fatalf("GetToken: %v", err)
	}
	if ti == nil || ti.Token != "envtoken" || ti.Source != "env" {
		t.Errorf("got %+v, want env token", ti)
	}
}

func TestSetTokenRejectsEmpty(t *testing.T) {
	isolateHome(t)
	if err := SetToken("   ", nil); err == nil {
		t.Error("expected error for empty token")
	}
}

func TestDecodeJWTPayload(t *testing.T) {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none"}`))
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"me"}`))
	token := header + "." + payload + ".sig"

	p, ok := DecodeJWTPayload(token)
	if !ok {
		t.Fatal("expected ok for a three-part token")
	}
	if !strings.Contains(p, `"sub":"me"`) {
		t.Errorf("payload = %q", p)
	}

	if _, ok := DecodeJWTPayload("opaque-token"); ok {
		t.Error("opaque token decoded as JWT")
	}
}
