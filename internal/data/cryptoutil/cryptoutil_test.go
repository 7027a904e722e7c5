package cryptoutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSigner_SignVerify(t *testing.T) {
	s, err := NewSigner([]byte("k3y"))
	require.NoError(t, err)

	body := []byte(`{"job_no":"J-1001","amount":637.92}`)
	sig := s.Sign(body)
	assert.Contains(t, sig, SignaturePrefix)
	assert.Len(t, sig, len(SignaturePrefix)+64)
	assert.True(t, s.Verify(body, sig))

	assert.False(t, s.Verify([]byte(`{}`), sig), "different body")
	assert.False(t, s.Verify(body, sig[len(SignaturePrefix):]), "missing prefix")
	assert.False(t, s.Verify(body, SignaturePrefix+"zz"), "not hex")

	other, err := NewSigner([]byte("other"))
	require.NoError(t, err)
	assert.False(t, other.Verify(body, sig), "different key")
}

func TestNewSigner_RequiresKey(t *testing.T) {
	_, err := NewSigner(nil)
	require.Error(t, err)
}

func TestSecretEqual(t *testing.T) {
	assert.True(t, SecretEqual("abc", "abc"))
	assert.False(t, SecretEqual("abc", "abd"))
	assert.False(t, SecretEqual("abc", "ab"))
	assert.False(t, SecretEqual("", ""))
}
