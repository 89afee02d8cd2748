package security

import (
	"errors"
	"testing"
	"time"
)

func TestIssueAndParseUserToken(t *testing.T) {
	token, errIssue := IssueUserToken("test-secret", 42, time.Hour)
	if errIssue != nil {
		t.Fatalf("issue: %v", errIssue)
	}

	claims, errParse := ParseUserToken("test-secret", token)
	if errParse != nil {
		t.Fatalf("parse: %v", errParse)
	}
	if claims.UserID != 42 {
		t.Fatalf("expected uid=42, got %d", claims.UserID)
	}
}

func TestParseUserTokenRejectsWrongSecret(t *testing.T) {
	token, errIssue := IssueUserToken("secret-a", 42, time.Hour)
	if errIssue != nil {
		t.Fatalf("issue: %v", errIssue)
	}
	if _, errParse := ParseUserToken("secret-b", token); !errors.Is(errParse, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", errParse)
	}
}

func TestParseUserTokenRejectsExpired(t *testing.T) {
	token, errIssue := IssueUserToken("test-secret", 42, -time.Minute)
	if errIssue != nil {
		t.Fatalf("issue: %v", errIssue)
	}
	if _, errParse := ParseUserToken("test-secret", token); !errors.Is(errParse, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", errParse)
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hashed, errHash := HashPassword("moonstone")
	if errHash != nil {
		t.Fatalf("hash: %v", errHash)
	}
	if !CheckPassword(hashed, "moonstone") {
		t.Fatal("expected password to match")
	}
	if CheckPassword(hashed, "obsidian") {
		t.Fatal("expected mismatch to fail")
	}
}

func TestVerifyTOTPEmptyInputs(t *testing.T) {
	if VerifyTOTP("", "123456") {
		t.Fatal("expected empty secret to fail")
	}
	if VerifyTOTP("SECRET", "") {
		t.Fatal("expected empty code to fail")
	}
}
