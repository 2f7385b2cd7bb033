package rooms

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"
)

// Codes are read off a shared screen, so the alphabet leaves out 0, O, 1, I and L.
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const (
	codeLength   = 4
	codeAttempts = 10
)

var ErrRoomCodeExhausted = errors.New("no unused room code available")

// NormalizeCode upper-cases and trims a client supplied room code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// GenerateCode draws random codes until taken reports one as free. A nil
// taken accepts the first draw.
func GenerateCode(taken func(code string) bool) (string, error) {
	return generateCode(rand.Reader, taken)
}

func generateCode(src io.Reader, taken func(code string) bool) (string, error) {
	for range codeAttempts {
		code, err := drawCode(src)
		if err != nil {
			return "", fmt.Errorf("generating room code: %w", err)
		}
		if taken == nil || !taken(code) {
			return code, nil
		}
	}
	return "", fmt.Errorf("after %d attempts: %w", codeAttempts, ErrRoomCodeExhausted)
}

func drawCode(src io.Reader) (string, error) {
	limit := big.NewInt(int64(len(codeAlphabet)))
	var b strings.Builder
	b.Grow(codeLength)
	for range codeLength {
		n, err := rand.Int(src, limit)
		if err != nil {
			return "", err
		}
		b.WriteByte(codeAlphabet[n.Int64()])
	}
	return b.String(), nil
}
