package totpx

import (
	"crypto/subtle"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// CodeLength is the number of digits in a TOTP code.
const CodeLength = 6

// VerifyOptions tune the acceptance window.
type VerifyOptions struct {
	// Period is the time step. Zero means 30 seconds.
	Period time.Duration
	// Window is how many steps either side of the current one are accepted.
	Window uint
}

// DefaultVerifyOptions accepts the current 30s step plus or minus one.
var DefaultVerifyOptions = VerifyOptions{Period: 30 * time.Second, Window: 1}

func (o VerifyOptions) validateOpts() totp.ValidateOpts {
	period := o.Period
	if period <= 0 {
		period = 30 * time.Second
	}
	return totp.ValidateOpts{
		Period:    uint(period / time.Second),
		Skew:      o.Window,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	}
}

// WellFormed reports whether token is exactly six ASCII digits.
func WellFormed(token string) bool {
	if len(token) != CodeLength {
		return false
	}
	for i := 0; i < len(token); i++ {
		if token[i] < '0' || token[i] > '9' {
			return false
		}
	}
	return true
}

// Verify reports whether token is the RFC 6238 code for secret at any step
// within the window around at. Malformed tokens are rejected before any HMAC
// is computed. Candidate codes are compared in constant time. An invalid
// secret never verifies.
func Verify(token, secret string, at time.Time, opts VerifyOptions) bool {
	if !WellFormed(token) || secret == "" {
		return false
	}

	ok, err := totp.ValidateCustom(token, secret, at.UTC(), opts.validateOpts())
	if err != nil {
		return false
	}
	return ok
}

// Match is Verify that also reports which time step token belongs to, so a
// caller can refuse a step it has already accepted. When token matches more
// than one step in the window the latest one is reported. Every step in the
// window is computed and compared in constant time.
func Match(token, secret string, at time.Time, opts VerifyOptions) (int64, bool) {
	if !WellFormed(token) || secret == "" {
		return 0, false
	}

	vo := opts.validateOpts()
	period := int64(vo.Period)
	counter := at.Unix() / period

	var (
		step    int64
		matched bool
	)
	for d := -int64(vo.Skew); d <= int64(vo.Skew); d++ {
		candidate := counter + d
		code, err := totp.GenerateCodeCustom(secret, time.Unix(candidate*period, 0).UTC(), vo)
		if err != nil {
			return 0, false
		}
		if subtle.ConstantTimeCompare([]byte(code), []byte(token)) == 1 {
			step, matched = candidate, true
		}
	}
	return step, matched
}

// Step returns the time step at falls into.
func Step(at time.Time, opts VerifyOptions) int64 {
	return at.Unix() / int64(opts.validateOpts().Period)
}

// Code returns the code for secret at instant at. Used by tests and tooling
// that need to act as an authenticator.
func Code(secret string, at time.Time, opts VerifyOptions) (string, error) {
	return totp.GenerateCodeCustom(secret, at.UTC(), opts.validateOpts())
}
