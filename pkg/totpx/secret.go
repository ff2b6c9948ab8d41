package totpx

import (
	"bytes"
	"crypto/rand"
	"encoding/base32"
	"encoding/base64"
	"fmt"
	"image/png"
	"strings"

	"github.com/pquerna/otp"
)

const (
	// SecretBytes is the amount of entropy in a shared secret (160 bits, the
	// HMAC-SHA1 block-size recommendation from RFC 4226).
	SecretBytes = 20

	// SecretLength is the encoded length of a secret.
	SecretLength = 32

	// DefaultQRSize is the edge length in pixels of generated QR codes.
	DefaultQRSize = 200
)

var b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

// GenerateSecret returns a fresh base32 shared secret.
func GenerateSecret() (string, error) {
	buf := make([]byte, SecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate totp secret: %w", err)
	}
	return b32.EncodeToString(buf), nil
}

// BuildProvisioningURI formats the otpauth URI authenticator apps scan:
//
//	otpauth://totp/{issuer}:{accountLabel}?secret={secret}&issuer={issuer}
//
// accountLabel and issuer are percent-encoded the way browsers'
// encodeURIComponent does it, so "IFRS Console" becomes "IFRS%20Console".
func BuildProvisioningURI(secret, accountLabel, issuer string) string {
	iss := encodeComponent(issuer)
	return "otpauth://totp/" + iss + ":" + encodeComponent(accountLabel) +
		"?secret=" + secret + "&issuer=" + iss
}

// encodeComponent escapes everything except A-Z a-z 0-9 and - _ . ! ~ * ' ( ).
func encodeComponent(s string) string {
	const hex = "0123456789ABCDEF"

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}

// QRCodeDataURL renders uri as a PNG QR code and returns it as a data URL
// suitable for an <img src>. size <= 0 uses DefaultQRSize.
func QRCodeDataURL(uri string, size int) (string, error) {
	if size <= 0 {
		size = DefaultQRSize
	}

	key, err := otp.NewKeyFromURL(uri)
	if err != nil {
		return "", fmt.Errorf("failed to parse provisioning uri: %w", err)
	}

	img, err := key.Image(size, size)
	if err != nil {
		return "", fmt.Errorf("failed to render qr code: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode qr code: %w", err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
