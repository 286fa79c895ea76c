package jwt

import (
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	jw "github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	UserID    uint
	Username  string
	TokenID   string
	ExpiresAt time.Time
}

type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if secret == "" {
		secret = "replace-this-with-a-strong-secret"
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (i *Issuer) Make(userID uint, username string) (string, error) {
	now := i.now()
	claims := jw.MapClaims{
		"sub":  strconv.FormatUint(uint64(userID), 10),
		"name": username,
		"jti":  uuid.NewString(),
		"iat":  now.Unix(),
		"exp":  now.Add(i.ttl).Unix(),
	}
	return jw.NewWithClaims(jw.SigningMethodHS256, claims).SignedString(i.secret)
}

func (i *Issuer) Parse(tok string) (Claims, error) {
	t, err := jw.Parse(tok, func(t *jw.Token) (any, error) { return i.secret, nil },
		jw.WithValidMethods([]string{jw.SigningMethodHS256.Alg()}),
		jw.WithTimeFunc(i.now),
	)
	if err != nil || !t.Valid {
		return Claims{}, ErrInvalidToken
	}
	mc, ok := t.Claims.(jw.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	sub, _ := mc["sub"].(string)
	uid, err := strconv.ParseUint(sub, 10, 64)
	if err != nil || uid == 0 {
		return Claims{}, ErrInvalidToken
	}
	exp, err := mc.GetExpirationTime()
	if err != nil || exp == nil {
		return Claims{}, ErrInvalidToken
	}
	name, _ := mc["name"].(string)
	jti, _ := mc["jti"].(string)
	return Claims{UserID: uint(uid), Username: name, TokenID: jti, ExpiresAt: exp.Time}, nil
}
