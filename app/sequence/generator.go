package sequence

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

// Kind selects the alphabet a generated code is drawn from.
type Kind string

const (
	// KindNumber draws from digits 1-9. Used for account and channel numbers.
	KindNumber Kind = "number"
	// KindGeneral draws from uppercase letters and digits. Used for channel
	// codes, invite codes and payment request ids.
	KindGeneral Kind = "general"
	// KindHash produces a 40-char hex digest for high-entropy codes.
	KindHash Kind = "hash"
)

const (
	numberChars  = "123456789"
	generalChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	DefaultMaxAttempts = 10
)

// ErrExhausted is returned when every candidate within the attempt cap was
// already taken. It signals alphabet/length exhaustion, not a bad request.
var ErrExhausted = errors.New("sequence generator exhausted candidate attempts")

// TakenFunc reports whether a candidate code already exists for the target
// column. It must run on the same transaction as the owning insert so the
// check is consistent with concurrent inserts; a unique index on the column
// remains the hard backstop if the check races.
type TakenFunc func(ctx context.Context, candidate string) (bool, error)

// Generator mints collision-checked public codes.
type Generator struct {
	maxAttempts int
}

func NewGenerator(maxAttempts int) *Generator {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Generator{maxAttempts: maxAttempts}
}

// Generate produces a prefixed code of the requested kind and length that the
// taken check does not report as existing. Attempts are capped; exhausting
// them returns ErrExhausted.
func (g *Generator) Generate(ctx context.Context, kind Kind, prefix string, length int, taken TakenFunc) (string, error) {
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		candidate, err := mint(kind, length)
		if err != nil {
			return "", err
		}
		candidate = prefix + candidate

		exists, err := taken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: kind=%s length=%d", ErrExhausted, kind, length)
}

func mint(kind Kind, length int) (string, error) {
	switch kind {
	case KindHash:
		return hashSequence()
	case KindGeneral:
		return randomString(generalChars, length)
	default:
		return randomString(numberChars, length)
	}
}

func randomString(alphabet string, length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("invalid sequence length %d", length)
	}
	max := big.NewInt(int64(len(alphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = alphabet[n.Int64()]
	}
	return string(out), nil
}

func hashSequence() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	mac := hmac.New(sha1.New, id[:])
	return hex.EncodeToString(mac.Sum(nil)), nil
}
