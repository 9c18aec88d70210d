package hash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// small parameters keep the suite fast
func testHasher() *Hasher {
	return NewHasher(1024, 1)
}

func TestHasher_HashAndVerify(t *testing.T) {
	h := testHasher()

	encoded, err := h.Hash("correct horse battery")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$m=1024,t=1,p=2$"))

	ok, err := h.Verify("correct horse battery", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify("wrong", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasher_SaltsDiffer(t *testing.T) {
	h := testHasher()
	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHasher_VerifyInvalid(t *testing.T) {
	h := testHasher()

	_, err := h.Verify("x", "not-a-hash")
	assert.ErrorIs(t, err, ErrInvalidHash)

	_, err = h.Verify("x", "$bcrypt$v=19$m=1,t=1,p=1$AAAA$AAAA")
	assert.ErrorIs(t, err, ErrInvalidHash)

	_, err = h.Verify("x", "$argon2id$v=16$m=1,t=1,p=1$AAAA$AAAA")
	assert.ErrorIs(t, err, ErrIncompatibleVersion)
}

func TestHasher_NeedsRehash(t *testing.T) {
	weak := testHasher()
	encoded, err := weak.Hash("pw")
	require.NoError(t, err)

	assert.False(t, weak.NeedsRehash(encoded))
	assert.True(t, NewHasher(0, 0).NeedsRehash(encoded))
	assert.True(t, weak.NeedsRehash("garbage"))
}
