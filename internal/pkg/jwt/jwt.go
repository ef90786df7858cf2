package jwt

import (
	"errors"
	"time"

	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const TokenTypeAccess = "access"

var ErrInvalidClaims = errors.New("token claims do not identify a principal")

// Service verifies access tokens at the HTTP boundary. Issuance belongs to
// the identity provider; GenerateAccessToken exists for tooling and tests and
// signs with the same shared secret.
type Service interface {
	GenerateAccessToken(principal user.Principal) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) Service {
	return &JWTService{
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) GenerateAccessToken(principal user.Principal) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = time.Now().Add(expDuration).Unix()

	claims := map[string]interface{}{
		"user_id": principal.UserID,
		"role":    string(principal.Role),
		"type":    TokenTypeAccess,
		"exp":     expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

// PrincipalFromClaims reads the authenticated principal out of verified
// access-token claims.
func PrincipalFromClaims(claims map[string]interface{}) (user.Principal, error) {
	tokenType, ok := claims["type"].(string)
	if !ok || tokenType != TokenTypeAccess {
		return user.Principal{}, ErrInvalidClaims
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return user.Principal{}, ErrInvalidClaims
	}

	roleStr, ok := claims["role"].(string)
	if !ok {
		return user.Principal{}, ErrInvalidClaims
	}
	role := user.Role(roleStr)
	if !role.IsValid() {
		return user.Principal{}, user.ErrInvalidRole
	}

	return user.Principal{UserID: userID, Role: role}, nil
}
