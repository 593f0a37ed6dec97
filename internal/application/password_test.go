package application

import (
	"errors"
	"strings"
	"testing"
)

var cheapHashParams = HashParams{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16}

func TestHashAndVerifyPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPasswordWith("correct horse", cheapHashParams)
	if err != nil {
		t.Fatalf("HashPasswordWith returned error: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$") {
		t.Fatalf("unexpected hash encoding %q", hash)
	}

	if err := VerifyPassword(hash, "correct horse"); err != nil {
		t.Fatalf("expected password to verify, got %v", err)
	}
	if err := VerifyPassword(hash, "wrong horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestHashPasswordUsesFreshSalt(t *testing.T) {
	t.Parallel()

	a, _ := HashPasswordWith("same password", cheapHashParams)
	b, _ := HashPasswordWith("same password", cheapHashParams)
	if a == b {
		t.Fatalf("expected distinct hashes for the same password")
	}
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	t.Parallel()

	for _, hash := range []string{"", "plain", "$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$a2V5", "$argon2id$v=19$m=x$salt$key"} {
		if err := VerifyPassword(hash, "pw"); !errors.Is(err, ErrMalformedHash) {
			t.Fatalf("VerifyPassword(%q) = %v, want ErrMalformedHash", hash, err)
		}
	}

	if err := VerifyPassword("$argon2id$v=16$m=1024,t=1,p=1$c2FsdA$a2V5", "pw"); !errors.Is(err, ErrHashVersion) {
		t.Fatalf("expected ErrHashVersion, got %v", err)
	}
}
