package security_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hbnb-dev/hbnb-backend/pkg/config"
	"github.com/hbnb-dev/hbnb-backend/pkg/security"
)

var testParams = config.PasswordConfig{
	ArgonMemoryKB:    32768,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     16,
	ArgonKeyLen:      32,
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := security.HashPassword("very-secure-password", testParams)
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))
	assert.NotContains(t, hash, "very-secure-password")

	ok, err := security.VerifyPassword("very-secure-password", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = security.VerifyPassword("bogus-password", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPasswordUsesFreshSalt(t *testing.T) {
	first, err := security.HashPassword("same", testParams)
	require.NoError(t, err)
	second, err := security.HashPassword("same", testParams)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	_, err := security.HashPassword("", testParams)
	assert.Error(t, err)
}

func TestVerifyPasswordBadHash(t *testing.T) {
	_, err := security.VerifyPassword("irrelevant", "not-a-hash")
	assert.ErrorIs(t, err, security.ErrInvalidHash)
}

func TestArgon2Hasher(t *testing.T) {
	hasher := security.NewArgon2Hasher(testParams)
	digest, err := hasher.Hash("hunter22")
	require.NoError(t, err)

	ok, err := hasher.Verify("hunter22", digest)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyPasswordRejectsTamperedDigests(t *testing.T) {
	hash, err := security.HashPassword("pw-12345678", testParams)
	require.NoError(t, err)

	for name, digest := range map[string]string{
		"wrong version": strings.Replace(hash, "v=19", "v=16", 1),
		"wrong algo":    strings.Replace(hash, "argon2id", "argon2i", 1),
		"zero memory":   strings.Replace(hash, "m=32768", "m=0", 1),
		"extra segment": hash + "$extra",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := security.VerifyPassword("pw-12345678", digest)
			assert.ErrorIs(t, err, security.ErrInvalidHash)
		})
	}
}

func TestNeedsRehashTracksParameters(t *testing.T) {
	hasher := security.NewArgon2Hasher(testParams)
	digest, err := hasher.Hash("hunter22")
	require.NoError(t, err)
	assert.False(t, hasher.NeedsRehash(digest))

	stronger := testParams
	stronger.ArgonTime = 2
	assert.True(t, security.NewArgon2Hasher(stronger).NeedsRehash(digest))
	assert.True(t, hasher.NeedsRehash("not-a-hash"))
}

func TestParamsFromConfigClamps(t *testing.T) {
	p := security.ParamsFromConfig(config.PasswordConfig{ArgonMemoryKB: 1, ArgonTime: 99, ArgonParallelism: 0, ArgonSaltLen: 4, ArgonKeyLen: 1000})
	assert.Equal(t, uint32(8), p.Memory)
	assert.Equal(t, uint32(10), p.Time)
	assert.Equal(t, uint8(1), p.Parallelism)
	assert.Equal(t, uint32(8), p.SaltLen)
	assert.Equal(t, uint32(64), p.KeyLen)
}
