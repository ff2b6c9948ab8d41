package cryptox

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSealer_RoundTrip(t *testing.T) {
	s, err := NewSealer([]byte("master-key-material"))
	require.NoError(t, err)

	plaintext := []byte(`{"enabled":true,"verified":true}`)
	sealed, err := s.Seal(plaintext, []byte("2fa_42"))
	require.NoError(t, err)
	require.NotContains(t, string(sealed), "enabled")

	opened, err := s.Open(sealed, []byte("2fa_42"))
	require.NoError(t, err)
	require.Equal(t, plaintext, opened)
}

func TestSealer_NoncesDiffer(t *testing.T) {
	s, err := NewSealer([]byte("k"))
	require.NoError(t, err)

	a, err := s.Seal([]byte("same"), nil)
	require.NoError(t, err)
	b, err := s.Seal([]byte("same"), nil)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestSealer_RejectsTampering(t *testing.T) {
	s, err := NewSealer([]byte("k"))
	require.NoError(t, err)

	sealed, err := s.Seal([]byte("secret"), []byte("2fa_alice"))
	require.NoError(t, err)

	t.Run("wrong aad", func(t *testing.T) {
		_, err := s.Open(sealed, []byte("2fa_bob"))
		require.Error(t, err)
	})

	t.Run("flipped byte", func(t *testing.T) {
		bad := append([]byte(nil), sealed...)
		bad[len(bad)-1] ^= 0xff
		_, err := s.Open(bad, []byte("2fa_alice"))
		require.Error(t, err)
	})

	t.Run("too short", func(t *testing.T) {
		_, err := s.Open([]byte{1, 2, 3}, nil)
		require.ErrorIs(t, err, ErrCiphertextTooShort)
	})

	t.Run("other key", func(t *testing.T) {
		other, err := NewSealer([]byte("different"))
		require.NoError(t, err)
		_, err = other.Open(sealed, []byte("2fa_alice"))
		require.Error(t, err)
	})
}

func TestNewSealer_EmptyMaterial(t *testing.T) {
	_, err := NewSealer(nil)
	require.Error(t, err)
}

func TestLoadKeyMaterial(t *testing.T) {
	t.Run("file wins", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "master.key")
		require.NoError(t, os.WriteFile(path, []byte("from-file\n"), 0o600))
		t.Setenv("TEST_CONSOLE_MASTER_KEY", "from-env")

		m, eph, err := LoadKeyMaterial(path, "TEST_CONSOLE_MASTER_KEY")
		require.NoError(t, err)
		require.False(t, eph)
		require.Equal(t, "from-file", string(m))
	})

	t.Run("env fallback", func(t *testing.T) {
		t.Setenv("TEST_CONSOLE_MASTER_KEY", "from-env")

		m, eph, err := LoadKeyMaterial("", "TEST_CONSOLE_MASTER_KEY")
		require.NoError(t, err)
		require.False(t, eph)
		require.Equal(t, "from-env", string(m))
	})

	t.Run("ephemeral", func(t *testing.T) {
		t.Setenv("TEST_CONSOLE_MASTER_KEY", "")

		m, eph, err := LoadKeyMaterial("", "TEST_CONSOLE_MASTER_KEY")
		require.NoError(t, err)
		require.True(t, eph)
		require.Len(t, m, 32)
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := LoadKeyMaterial(filepath.Join(t.TempDir(), "nope"), "X")
		require.Error(t, err)
	})
}
