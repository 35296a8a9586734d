package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// Tests use a low iteration count; the production default would make the
// suite needlessly slow.
const testIterations = 100

func TestPasswordHashMatches(t *testing.T) {
	h, err := NewPasswordHash("s3cret", testIterations, "sha256")
	require.NoError(t, err)
	require.True(t, h.Equal("s3cret"))
	require.False(t, h.Equal("S3cret"))
	require.False(t, h.Equal(""))
}

func TestPasswordHashFreshSalt(t *testing.T) {
	a, err := NewPasswordHash("same", testIterations, "sha256")
	require.NoError(t, err)
	b, err := NewPasswordHash("same", testIterations, "sha256")
	require.NoError(t, err)
	require.NotEqual(t, a.Salt, b.Salt)
	require.NotEqual(t, a.Hash, b.Hash)
}

func TestPasswordHashAlgorithms(t *testing.T) {
	for _, alg := range []string{"sha1", "sha256", "sha512"} {
		h, err := NewPasswordHash("pw", testIterations, alg)
		require.NoError(t, err, alg)
		require.True(t, h.Equal("pw"), alg)
	}
	_, err := NewPasswordHash("pw", testIterations, "md5")
	require.Error(t, err)
}

func TestPasswordHashDefaults(t *testing.T) {
	h, err := NewPasswordHash("pw", 0, "")
	require.NoError(t, err)
	require.Equal(t, DefaultIterations, h.Iterations)
	require.Equal(t, DefaultAlgorithm, h.Algorithm)
	require.Len(t, h.Salt, 16)
}

func TestHasherCompare(t *testing.T) {
	h, err := NewPasswordHash("pw", testIterations, "sha256")
	require.NoError(t, err)

	hasher := NewHasher(2)
	match, err := hasher.Compare(context.Background(), h, "pw")
	require.NoError(t, err)
	require.True(t, match)

	match, err = hasher.Compare(context.Background(), h, "wrong")
	require.NoError(t, err)
	require.False(t, match)
}

func TestHasherCancelledContext(t *testing.T) {
	h, err := NewPasswordHash("pw", testIterations, "sha256")
	require.NoError(t, err)

	hasher := NewHasher(1)
	require.NoError(t, hasher.sem.Acquire(context.Background(), 1))
	defer hasher.sem.Release(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = hasher.Compare(ctx, h, "pw")
	require.ErrorIs(t, err, context.Canceled)
}
