package identity

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"vertexcore-storefront/models"
)

const TokenDuration = 30 * 24 * time.Hour

var (
	ErrTokenExpired = errors.New("identity token expired")
	ErrInvalidToken = errors.New("invalid identity token")
)

// Claims carry the identity captured from the commerce provider's auth
// callback. Signing keeps the cookie tamper-proof; there is nothing secret
// in it.
type Claims struct {
	Username   string `json:"username,omitempty"`
	UsernameID string `json:"username_id,omitempty"`
	jwt.RegisteredClaims
}

type Service struct {
	secretKey []byte
	issuer    string
}

func NewService(secretKey, issuer string) *Service {
	return &Service{
		secretKey: []byte(secretKey),
		issuer:    issuer,
	}
}

// IssueToken signs an identity token for the given user.
func (s *Service) IssueToken(user models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		Username:   user.Username,
		UsernameID: user.UsernameID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenDuration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

// ValidateToken parses a token and returns the identity it carries.
func (s *Service) ValidateToken(tokenString string) (models.User, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secretKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.User{}, ErrTokenExpired
		}
		return models.User{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return models.User{}, ErrInvalidToken
	}

	return models.User{
		Username:   claims.Username,
		UsernameID: claims.UsernameID,
	}, nil
}
