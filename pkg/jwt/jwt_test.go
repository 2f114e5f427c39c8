package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignParse(t *testing.T) {
	s := Signer{Secret: "s3cr3t", Issuer: "flota-api", TTL: time.Hour}
	want := Identity{UserID: "u-1", CompanyID: "co-1", Role: RoleBodeguero}

	tok, err := s.Sign(want)
	require.NoError(t, err)

	got, err := Parse("s3cr3t", tok)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestParse_Rechaza(t *testing.T) {
	good := Signer{Secret: "s3cr3t", TTL: time.Hour}
	expired := Signer{Secret: "s3cr3t", TTL: -time.Minute}

	tok, err := good.Sign(Identity{UserID: "u-1", Role: RoleAdmin})
	require.NoError(t, err)
	old, err := expired.Sign(Identity{UserID: "u-1", Role: RoleAdmin})
	require.NoError(t, err)

	_, err = Parse("otro", tok)
	assert.Error(t, err, "secret incorrecto")
	_, err = Parse("s3cr3t", old)
	assert.Error(t, err, "expirado")
	_, err = Parse("", tok)
	assert.ErrorIs(t, err, ErrEmptySecret)
	_, err = Parse("s3cr3t", "no.es.jwt")
	assert.Error(t, err)
}

func TestSign_Validaciones(t *testing.T) {
	_, err := Signer{}.Sign(Identity{Role: RoleAdmin})
	assert.ErrorIs(t, err, ErrEmptySecret)

	_, err = Signer{Secret: "x", TTL: time.Hour}.Sign(Identity{Role: "root"})
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestValidRole(t *testing.T) {
	for _, r := range []string{RoleAdmin, RoleBodeguero, RoleConsulta} {
		assert.True(t, ValidRole(r), r)
	}
	assert.False(t, ValidRole(""))
	assert.False(t, ValidRole("Admin"))
}
