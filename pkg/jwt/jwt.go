package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Roles reconocidos por el middleware RBAC.
const (
	RoleAdmin     = "admin"     // todo
	RoleBodeguero = "bodeguero" // registra entradas, consumos y traslados
	RoleConsulta  = "consulta"  // solo lectura: costos, valorización, libro
)

var (
	ErrEmptySecret = errors.New("jwt: secret vacío")
	ErrUnknownRole = errors.New("jwt: rol desconocido")
)

// ValidRole indica si role es uno de los roles de planta.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleBodeguero, RoleConsulta:
		return true
	}
	return false
}

// Identity quién opera: usuario, empresa y rol.
type Identity struct {
	UserID    string
	CompanyID string
	Role      string
}

// Signer firma tokens HS256.
type Signer struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

type claims struct {
	jwt.RegisteredClaims
	UserID    string `json:"user_id"`
	CompanyID string `json:"company_id"`
	Role      string `json:"role"`
}

// Sign emite el token de id. Un rol vacío se firma tal cual: RequireRole lo rechaza después.
func (s Signer) Sign(id Identity) (string, error) {
	if s.Secret == "" {
		return "", ErrEmptySecret
	}
	if id.Role != "" && !ValidRole(id.Role) {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, id.Role)
	}
	now := time.Now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.Issuer,
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.TTL)),
		},
		UserID:    id.UserID,
		CompanyID: id.CompanyID,
		Role:      id.Role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(s.Secret))
}

// Parse valida firma y expiración y devuelve la identidad del token.
func Parse(secret, tokenString string) (Identity, error) {
	if secret == "" {
		return Identity{}, ErrEmptySecret
	}
	var c claims
	_, err := jwt.ParseWithClaims(tokenString, &c, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return Identity{}, err
	}
	return Identity{UserID: c.UserID, CompanyID: c.CompanyID, Role: c.Role}, nil
}
