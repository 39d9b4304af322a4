package auth

import (
	"strings"
	"testing"
)

// =========================================================================
// Hash TESTS
// =========================================================================

func TestHash_ReturnsNonEmptyHash(t *testing.T) {
	ps := NewPasswordServiceForTest()

	hash, err := ps.Hash("my-secret-password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if hash == "" {
		t.Error("Hash() returned empty string")
	}
}

func TestHash_OutputLooksBcrypt(t *testing.T) {
	ps := NewPasswordServiceForTest()

	hash, err := ps.Hash("password123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	// bcrypt hashes always start with $2a$ or $2b$
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("Hash() does not look like a bcrypt hash: %q", hash)
	}
}

func TestHash_NeverStoresPlaintext(t *testing.T) {
	ps := NewPasswordServiceForTest()

	const password = "hunter2-hunter2"
	hash, err := ps.Hash(password)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if hash == password || strings.Contains(hash, password) {
		t.Error("Hash() output contains the plaintext password")
	}
}

func TestHash_SamePasswordProducesDifferentHashes(t *testing.T) {
	ps := NewPasswordServiceForTest()

	// bcrypt generates a random salt each time, so two hashes for the
	// same password must differ — otherwise rainbow tables would work.
	hash1, _ := ps.Hash("same-password")
	hash2, _ := ps.Hash("same-password")

	if hash1 == hash2 {
		t.Error("Hash() produced identical hashes for the same password (salt must be random)")
	}
}

func TestHash_RejectsPasswordOver72Bytes(t *testing.T) {
	ps := NewPasswordServiceForTest()

	// bcrypt silently truncates at 72 bytes — we reject it explicitly.
	longPassword := strings.Repeat("a", 73)
	_, err := ps.Hash(longPassword)
	if err == nil {
		t.Fatal("Hash() should return an error for passwords longer than 72 bytes")
	}
}

// =========================================================================
// Verify TESTS
// =========================================================================

func TestVerify_CorrectPassword(t *testing.T) {
	ps := NewPasswordServiceForTest()

	hash, err := ps.Hash("correct-horse-battery")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	ok, err := ps.Verify(hash, "correct-horse-battery")
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if !ok {
		t.Error("Verify() = false for the correct password")
	}
}

func TestVerify_WrongPassword(t *testing.T) {
	ps := NewPasswordServiceForTest()

	hash, _ := ps.Hash("correct-horse-battery")

	// A mismatch is an expected outcome: false, no error.
	ok, err := ps.Verify(hash, "wrong-password")
	if err != nil {
		t.Fatalf("Verify() returned error for a plain mismatch: %v", err)
	}
	if ok {
		t.Error("Verify() = true for a wrong password")
	}
}

func TestVerify_GarbageHash(t *testing.T) {
	ps := NewPasswordServiceForTest()

	_, err := ps.Verify("not-a-bcrypt-hash", "anything")
	if err == nil {
		t.Fatal("Verify() should return an error for a malformed hash")
	}
}

func TestVerify_OnlyComparisonRecoversMatch(t *testing.T) {
	ps := NewPasswordServiceForTest()

	const password = "s3cret-passphrase"
	hash, _ := ps.Hash(password)

	// Equality against the stored value never matches the plaintext; the
	// only way to confirm a password is the comparison function.
	if hash == password {
		t.Fatal("stored hash equals the plaintext password")
	}
	ok, err := ps.Verify(hash, password)
	if err != nil || !ok {
		t.Fatalf("Verify() = (%v, %v), want (true, nil)", ok, err)
	}
}
