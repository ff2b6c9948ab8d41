package totpx

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
)

const (
	// DefaultBackupCodeCount is the size of a freshly issued batch.
	DefaultBackupCodeCount = 10

	// BackupCodeLength is the number of characters in a backup code.
	BackupCodeLength = 8

	backupAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// GenerateBackupCodes returns count pairwise-distinct codes. count <= 0
// yields DefaultBackupCodeCount codes.
func GenerateBackupCodes(count int) ([]string, error) {
	if count <= 0 {
		count = DefaultBackupCodeCount
	}

	seen := make(map[string]struct{}, count)
	codes := make([]string, 0, count)
	for len(codes) < count {
		code, err := randomCode(BackupCodeLength)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	return codes, nil
}

func randomCode(n int) (string, error) {
	limit := big.NewInt(int64(len(backupAlphabet)))
	buf := make([]byte, n)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("failed to generate backup code: %w", err)
		}
		buf[i] = backupAlphabet[idx.Int64()]
	}
	return string(buf), nil
}

// RedemptionResult is the outcome of Redeem.
type RedemptionResult struct {
	OK bool
	// Remaining is the code set after redemption. On a miss it is the input
	// slice itself.
	Remaining []string
}

// Redeem looks code up in codes by exact match. A hit returns a new slice
// without that code; the input slice is never modified.
func Redeem(code string, codes []string) RedemptionResult {
	hit := -1
	for i, c := range codes {
		// keep scanning after a hit so timing does not depend on position
		if subtle.ConstantTimeCompare([]byte(c), []byte(code)) == 1 && hit < 0 {
			hit = i
		}
	}

	if code == "" || hit < 0 {
		return RedemptionResult{OK: false, Remaining: codes}
	}

	remaining := make([]string, 0, len(codes)-1)
	remaining = append(remaining, codes[:hit]...)
	remaining = append(remaining, codes[hit+1:]...)
	return RedemptionResult{OK: true, Remaining: remaining}
}
