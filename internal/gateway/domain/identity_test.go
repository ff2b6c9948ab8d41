package domain_test

import (
	"testing"

	"github.com/ifrsconsole/console/internal/gateway/domain"
	"github.com/stretchr/testify/require"
)

func TestResolveIdentityKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		id      domain.Identity
		want    domain.IdentityKey
		wantErr bool
	}{
		{"user id wins", domain.Identity{UserID: "42", Email: "a@x.io", Username: "alice"}, "42", false},
		{"email before username", domain.Identity{Email: "Alice@X.io", Username: "alice"}, "alice@x.io", false},
		{"username last", domain.Identity{Username: "alice"}, "alice", false},
		{"whitespace ignored", domain.Identity{UserID: "  ", Username: " bob "}, "bob", false},
		{"nothing usable", domain.Identity{Tenant: "acme"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := domain.ResolveIdentityKey(tt.id)
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrNoIdentity)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestScopedKey(t *testing.T) {
	t.Parallel()

	acme := domain.Scope(" acme ", "1")
	globex := domain.Scope("globex", "1")

	require.NotEqual(t, acme, globex)
	require.Equal(t, domain.ScopedKey{Tenant: "acme", Key: "1"}, acme)
	require.Equal(t, "acme/1", acme.String())
	require.Equal(t, "a%2Fb/c", domain.Scope("a/b", "c").String())
	require.NotEqual(t, domain.Scope("a/b", "c").String(), domain.Scope("a", "b/c").String())

	sess := domain.Session{Key: "1", Identity: domain.Identity{Tenant: "globex"}}
	require.Equal(t, globex, sess.Scope())
}

func TestIdentityKeyNumeric(t *testing.T) {
	t.Parallel()

	require.True(t, domain.IdentityKey("42").Numeric())
	require.False(t, domain.IdentityKey("alice").Numeric())
	require.False(t, domain.IdentityKey("4a2").Numeric())
	require.False(t, domain.IdentityKey("").Numeric())
}

func TestEnrollmentRecordValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, domain.EnrollmentRecord{Enabled: true, Verified: true}.Validate())
	require.NoError(t, domain.EnrollmentRecord{}.Validate())
	require.ErrorIs(t, domain.EnrollmentRecord{Verified: true}.Validate(), domain.ErrVerifiedNotEnabled)

	var none *domain.EnrollmentRecord
	require.False(t, none.Active())
}
