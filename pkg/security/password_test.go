package security_test

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/dealeros/dealeros-backend/pkg/config"
	"github.com/dealeros/dealeros-backend/pkg/security"
)

var testCfg = config.PasswordConfig{
	ArgonMemoryKB:    32768,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     16,
	ArgonKeyLen:      32,
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := security.HashPassword("very-secure-password", testCfg)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=32768,t=1,p=1$") {
		t.Fatalf("unexpected hash layout %q", hash)
	}

	ok, err := security.VerifyPassword("very-secure-password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error for valid hash: %v", err)
	}
	if !ok {
		t.Fatal("VerifyPassword failed for the correct password")
	}

	ok, err = security.VerifyPassword("bogus-password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error for invalid password: %v", err)
	}
	if ok {
		t.Fatal("VerifyPassword returned true for incorrect password")
	}
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	if _, err := security.HashPassword("", testCfg); err == nil {
		t.Fatal("expected error for empty password")
	}
}

func TestVerifyPasswordBadHash(t *testing.T) {
	for _, encoded := range []string{
		"not-a-hash",
		"$argon2id$v=18$m=8,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdA$a2V5",
		"$bcrypt$v=19$m=8,t=1,p=1$c2FsdA$a2V5",
	} {
		if _, err := security.VerifyPassword("irrelevant", encoded); err == nil {
			t.Fatalf("expected error for malformed hash %q", encoded)
		}
	}
}

func TestGenerateInvitationToken(t *testing.T) {
	a, err := security.GenerateInvitationToken()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
	if _, err := hex.DecodeString(a); err != nil {
		t.Fatalf("token is not hex: %v", err)
	}
	b, _ := security.GenerateInvitationToken()
	if a == b {
		t.Fatal("tokens should not repeat")
	}
	if _, err := security.GenerateToken(0); err == nil {
		t.Fatal("expected error for zero length")
	}
}

func TestNeedsRehash(t *testing.T) {
	hash, err := security.HashPassword("very-secure-password", testCfg)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if security.NeedsRehash(hash, testCfg) {
		t.Fatal("hash made with current params should not need a rehash")
	}

	stronger := testCfg
	stronger.ArgonTime = 2
	if !security.NeedsRehash(hash, stronger) {
		t.Fatal("expected rehash after the time cost changed")
	}
	if !security.NeedsRehash("garbage", testCfg) {
		t.Fatal("malformed hashes should always need a rehash")
	}
}
