package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sha256("admin123"), as stored by deployments that predate bcrypt.
const legacyAdminHash = "240be518fabd2724ddb6f04eeb1da5967448d7e831c08c8fa822809f74c720a9"

// Cost 4 is the bcrypt minimum and keeps each hash in the millisecond range.
func newTestPasswordService() *PasswordService {
	return newPasswordServiceWithCost(4)
}

// =========================================================================
// Hash
// =========================================================================

func TestHash(t *testing.T) {
	ps := newTestPasswordService()

	first, err := ps.Hash("correct horse battery")
	require.NoError(t, err)
	second, err := ps.Hash("correct horse battery")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(first, "$2"), "not a bcrypt hash: %q", first)
	assert.NotEqual(t, first, second, "every hash gets a fresh salt")
	assert.False(t, isLegacyHash(first))
}

func TestHash_LengthLimit(t *testing.T) {
	ps := newTestPasswordService()

	_, err := ps.Hash(strings.Repeat("a", 72))
	assert.NoError(t, err)

	// bcrypt would silently truncate this one.
	_, err = ps.Hash(strings.Repeat("a", 73))
	assert.Error(t, err)
}

// =========================================================================
// Verify
// =========================================================================

func TestVerify(t *testing.T) {
	ps := newTestPasswordService()
	bcryptHash, err := ps.Hash("admin123")
	require.NoError(t, err)

	tests := []struct {
		name      string
		hash      string
		password  string
		wantErr   error
		wantOther bool
	}{
		{name: "bcrypt match", hash: bcryptHash, password: "admin123"},
		{name: "bcrypt mismatch", hash: bcryptHash, password: "admin124", wantErr: ErrInvalidPassword},
		{name: "bcrypt empty password", hash: bcryptHash, password: "", wantErr: ErrInvalidPassword},
		{name: "legacy match", hash: legacyAdminHash, password: "admin123"},
		{name: "legacy upper-case digest", hash: strings.ToUpper(legacyAdminHash), password: "admin123"},
		{name: "legacy mismatch", hash: legacyAdminHash, password: "admin124", wantErr: ErrInvalidPassword},
		{name: "garbage hash", hash: "not-a-hash", password: "admin123", wantOther: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ps.Verify(tt.hash, tt.password)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantOther:
				require.Error(t, err)
				assert.NotErrorIs(t, err, ErrInvalidPassword)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

// =========================================================================
// NeedsRehash
// =========================================================================

func TestNeedsRehash(t *testing.T) {
	ps := newTestPasswordService()
	fresh, err := ps.Hash("pw")
	require.NoError(t, err)

	assert.True(t, ps.NeedsRehash(legacyAdminHash), "legacy digests are upgraded")
	assert.False(t, ps.NeedsRehash(fresh))
	assert.True(t, newPasswordServiceWithCost(5).NeedsRehash(fresh), "hashes below the configured cost are upgraded")
	assert.True(t, ps.NeedsRehash("garbage"))
}

func TestIsLegacyHash(t *testing.T) {
	assert.True(t, isLegacyHash(legacyAdminHash))
	assert.False(t, isLegacyHash(legacyAdminHash[:63]))
	assert.False(t, isLegacyHash(strings.Repeat("z", 64)))
}
