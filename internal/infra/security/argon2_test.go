package security

import (
	"strings"
	"testing"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("Sup3r!SecurePass#7890")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	if !strings.HasPrefix(hash, "argon2id$v=19$") {
		t.Fatalf("unexpected hash format: %s", hash)
	}

	ok, err := VerifyPassword("Sup3r!SecurePass#7890", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected password to verify")
	}
}

func TestVerifyPassword_WrongPassword(t *testing.T) {
	hash, err := HashPassword("Sup3r!SecurePass#7890")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	ok, err := VerifyPassword("not-the-password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error: %v", err)
	}
	if ok {
		t.Fatalf("expected mismatch for wrong password")
	}
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	if _, err := VerifyPassword("whatever", "not-an-argon2-hash"); err == nil {
		t.Fatalf("expected error for malformed hash")
	}
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	first, err := HashPassword("Sup3r!SecurePass#7890")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	second, err := HashPassword("Sup3r!SecurePass#7890")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct hashes for the same password")
	}
}

func TestConfigureArgon2_RejectsWeakParams(t *testing.T) {
	cfg := CurrentArgon2Config()
	cfg.Memory = 1024

	if err := ConfigureArgon2(cfg); err == nil {
		t.Fatalf("expected error for too little memory")
	}
}
