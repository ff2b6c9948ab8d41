package domain

import "errors"

var ErrVerifiedNotEnabled = errors.New("domain: enrollment verified without being enabled")

// EnrollmentRecord is the persisted two-factor state of one identity. The JSON
// shape is the durable blob format and must keep round-tripping.
type EnrollmentRecord struct {
	Enabled     bool     `json:"enabled"`
	Verified    bool     `json:"verified"`
	Secret      string   `json:"secret"`      // base32 shared secret
	BackupCodes []string `json:"backupCodes"` // unused recovery codes, only ever shrinks

	// LastUsedStep is the TOTP time step of the last accepted code. A code is
	// only accepted for a later step, so one code never opens two sessions.
	LastUsedStep int64 `json:"lastUsedStep,omitempty"`
}

func (r EnrollmentRecord) Validate() error {
	if r.Verified && !r.Enabled {
		return ErrVerifiedNotEnabled
	}
	return nil
}

// Active reports whether the record demands a second factor at login.
func (r *EnrollmentRecord) Active() bool {
	return r != nil && r.Enabled
}

// SetupMaterial is handed to the user when enrollment starts. None of it is
// persisted until the first code is confirmed.
type SetupMaterial struct {
	Secret          string   `json:"secret"`
	ProvisioningURI string   `json:"provisioning_uri"`
	QRCode          string   `json:"qr_code"` // PNG data URL of ProvisioningURI
	BackupCodes     []string `json:"backup_codes"`
}
