package accounts

import (
	"testing"
	"time"
)

func TestHashPasswordDeterministicPerSalt(t *testing.T) {
	h1 := hashPassword("hunter2", "salt-a")
	h2 := hashPassword("hunter2", "salt-a")
	if h1 != h2 {
		t.Error("same password and salt must hash identically")
	}
	if hashPassword("hunter2", "salt-b") == h1 {
		t.Error("different salts must produce different hashes")
	}
	if hashPassword("hunter3", "salt-a") == h1 {
		t.Error("different passwords must produce different hashes")
	}
}

func TestNewSaltVaries(t *testing.T) {
	s1, err := newSalt()
	if err != nil {
		t.Fatalf("newSalt: %v", err)
	}
	s2, err := newSalt()
	if err != nil {
		t.Fatalf("newSalt: %v", err)
	}
	if s1 == s2 {
		t.Error("salts should differ across calls")
	}
	if len(s1) != 32 {
		t.Errorf("salt length = %d, want 32 hex characters", len(s1))
	}
}

func TestTTLForRemember(t *testing.T) {
	if ttlFor(false) != 24*time.Hour {
		t.Errorf("default ttl = %v", ttlFor(false))
	}
	if ttlFor(true) != 30*24*time.Hour {
		t.Errorf("remember ttl = %v", ttlFor(true))
	}
}

func TestKeyNamespaces(t *testing.T) {
	if userKey("a@b.com") != "accounts:user:a@b.com" {
		t.Errorf("userKey = %q", userKey("a@b.com"))
	}
	if sessionKey("tok") != "accounts:session:tok" {
		t.Errorf("sessionKey = %q", sessionKey("tok"))
	}
}
