package password

import (
	"strings"
	"testing"
)

// テストではbcryptの最小コストを使用して実行時間を抑える。
const testCost = 4

func TestHash_ThenVerify_ReturnsTrue(t *testing.T) {
	h := NewBcryptHasher(testCost)

	digest, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if digest == "" || digest == "secret1" {
		t.Fatalf("digest should be a non-empty hash, got %q", digest)
	}

	if !h.Verify("secret1", digest) {
		t.Error("Verify should succeed for the original plaintext")
	}
}

func TestVerify_WrongPassword_ReturnsFalse(t *testing.T) {
	h := NewBcryptHasher(testCost)

	digest, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	if h.Verify("wrong-password", digest) {
		t.Error("Verify should fail for a different plaintext")
	}
}

func TestVerify_MalformedDigest_ReturnsFalse(t *testing.T) {
	h := NewBcryptHasher(testCost)

	for _, digest := range []string{"", "not-a-bcrypt-hash", "$2a$broken"} {
		if h.Verify("secret1", digest) {
			t.Errorf("Verify(%q) = true, want false", digest)
		}
	}
}

func TestHash_SamePlaintext_ProducesDifferentDigests(t *testing.T) {
	h := NewBcryptHasher(testCost)

	d1, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	d2, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	// ソルトにより同じ平文でもダイジェストは異なる
	if d1 == d2 {
		t.Error("two hashes of the same plaintext should differ")
	}
}

func TestNewBcryptHasher_OutOfRangeCost_FallsBackToDefault(t *testing.T) {
	h := NewBcryptHasher(100)

	digest, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash failed with fallback cost: %v", err)
	}
	if !strings.HasPrefix(digest, "$2") {
		t.Errorf("digest does not look like bcrypt: %q", digest)
	}
}
