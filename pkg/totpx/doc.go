// Package totpx implements the primitives behind console two-factor
// authentication: shared-secret generation, otpauth provisioning URIs,
// RFC 6238 code verification and single-use backup codes.
//
// Everything here is pure. Lockout accounting and persistence live in the
// gateway's two-factor service; this package only answers "is this code
// right for this secret at this instant".
//
// # Secrets
//
// A secret is 20 bytes from crypto/rand encoded as unpadded RFC 4648 base32,
// which always yields 32 characters from A-Z and 2-7:
//
//	secret, err := totpx.GenerateSecret()
//	uri := totpx.BuildProvisioningURI(secret, "alice@example.com", "IFRS Console")
//
// # Verification
//
// Verify accepts exactly six ASCII digits and checks the code for the
// current 30 second step plus one step either side:
//
//	ok := totpx.Verify(token, secret, time.Now(), totpx.DefaultVerifyOptions)
//
// # Backup codes
//
// GenerateBackupCodes returns pairwise-distinct uppercase codes; Redeem
// consumes one of them:
//
//	res := totpx.Redeem(input, record.BackupCodes)
//	if res.OK {
//		record.BackupCodes = res.Remaining
//	}
package totpx
