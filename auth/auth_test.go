package auth

import (
	"encoding/base64"
	"encoding/json"
	"testing"
)

func makeToken(t *testing.T, claims map[string]interface{}) string {
	t.Helper()

	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"RS256","typ":"JWT"}`))
	payload, err := json.Marshal(claims)
	if err != nil {
		t.Fatalf("marshal claims: %v", err)
	}
	body := base64.RawURLEncoding.EncodeToString(payload)
	sig := base64.RawURLEncoding.EncodeToString([]byte("sig"))
	return header + "." + body + "." + sig
}

func TestVerify(t *testing.T) {
	token := makeToken(t, map[string]interface{}{
		"email":   "a@x.com",
		"name":    "Alice",
		"picture": "https://img/a.png",
	})

	user, ok := Verify(token, "")
	if !ok {
		t.Fatal("expected token to verify")
	}
	if user.Name != "Alice" || user.Email != "a@x.com" {
		t.Errorf("user = %+v", user)
	}
	if user.ImageURL == nil || *user.ImageURL != "https://img/a.png" {
		t.Errorf("image url = %v", user.ImageURL)
	}
}

func TestVerifyNameFallsBackToEmail(t *testing.T) {
	token := makeToken(t, map[string]interface{}{"email": "a@x.com"})

	user, ok := Verify(token, "")
	if !ok {
		t.Fatal("expected token to verify")
	}
	if user.Name != "a@x.com" {
		t.Errorf("name = %q, want email fallback", user.Name)
	}
	if user.ImageURL != nil {
		t.Errorf("image url = %v, want nil", user.ImageURL)
	}
}

func TestVerifyAudience(t *testing.T) {
	token := makeToken(t, map[string]interface{}{
		"email": "a@x.com",
		"aud":   "client-123",
	})

	if _, ok := Verify(token, "client-123"); !ok {
		t.Error("expected matching audience to verify")
	}
	if _, ok := Verify(token, "client-456"); ok {
		t.Error("expected mismatched audience to fail")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	for _, token := range []string{
		"",
		"not-a-token",
		"a.b",
		makeToken(t, map[string]interface{}{"name": "no email"}),
	} {
		if _, ok := Verify(token, ""); ok {
			t.Errorf("token %q verified, want rejection", token)
		}
	}
}

func TestFromHeader(t *testing.T) {
	token := makeToken(t, map[string]interface{}{"email": "a@x.com"})

	if _, ok := FromHeader("Bearer "+token, ""); !ok {
		t.Error("expected Bearer header to verify")
	}
	if _, ok := FromHeader("bearer "+token, ""); !ok {
		t.Error("expected lowercase bearer to verify")
	}
	if _, ok := FromHeader(token, ""); ok {
		t.Error("expected bare token to fail")
	}
	if _, ok := FromHeader("", ""); ok {
		t.Error("expected empty header to fail")
	}
	if _, ok := FromHeader("Basic dXNlcjpwYXNz", ""); ok {
		t.Error("expected non-bearer scheme to fail")
	}
}
