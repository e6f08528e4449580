package utils

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// argon2id parameters for host passwords. The encoded hash carries its own
// parameters, so retuning these only affects newly registered hosts; stored
// hashes stay verifiable.
const (
	argonMemory      uint32 = 64 * 1024 // KiB
	argonIterations  uint32 = 3
	argonParallelism uint8  = 2
	argonSaltLength         = 16
	argonKeyLength   uint32 = 32
)

// argonParams are the tunables recovered from an encoded hash
type argonParams struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
}

// HashPassword derives an argon2id hash of a host password. The result is
// self-describing: $argon2id$v=19$m=<mem>,t=<iter>,p=<par>$<salt>$<key>.
func HashPassword(password string) (string, error) {
	salt := make([]byte, argonSaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, argonIterations, argonMemory, argonParallelism, argonKeyLength)

	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		argonMemory, argonIterations, argonParallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key)), nil
}

// VerifyPassword reports whether password matches an encoded hash. The
// comparison is constant time; the error is only for malformed hashes.
func VerifyPassword(password, encoded string) (bool, error) {
	params, salt, key, err := decodeHash(encoded)
	if err != nil {
		return false, fmt.Errorf("failed to parse hash: %w", err)
	}

	candidate := argon2.IDKey([]byte(password), salt, params.iterations, params.memory, params.parallelism, uint32(len(key)))

	return subtle.ConstantTimeCompare(key, candidate) == 1, nil
}

// decodeHash recovers the parameters, salt and derived key from an encoded
// argon2id hash.
func decodeHash(encoded string) (argonParams, []byte, []byte, error) {
	var params argonParams

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return params, nil, nil, fmt.Errorf("malformed hash: expected 6 segments, got %d", len(parts))
	}
	if parts[1] != "argon2id" || parts[2] != "v=19" {
		return params, nil, nil, fmt.Errorf("malformed hash: unsupported variant %q", parts[1])
	}

	n, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.memory, &params.iterations, &params.parallelism)
	if err != nil || n != 3 {
		return params, nil, nil, fmt.Errorf("malformed hash: bad parameter segment %q", parts[3])
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return params, nil, nil, fmt.Errorf("failed to decode salt: %w", err)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return params, nil, nil, fmt.Errorf("failed to decode key: %w", err)
	}

	return params, salt, key, nil
}

// GenerateSecureToken returns a URL-safe random token built from length
// random bytes. Used to mint widget API credentials (APP_API_KEY).
func GenerateSecureToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure token: %w", err)
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}
