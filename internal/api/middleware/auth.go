package middleware

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	apierrors "github.com/feral-file/ff-collectibles/internal/api/errors"
	"github.com/feral-file/ff-collectibles/internal/logger"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const CALLER_KEY contextKey = "caller"

const (
	AUTH_METHOD_JWT    = "jwt"
	AUTH_METHOD_APIKEY = "apikey"
)

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTPublicKey string // RSA public key in PEM format
	APIKeys      []string
}

// Enabled reports whether any credential is configured
func (c AuthConfig) Enabled() bool {
	return c.JWTPublicKey != "" || len(c.APIKeys) > 0
}

// Claims are the JWT claims a collectibles caller may present.
// MaxWallets narrows the number of wallets a single request may query.
type Claims struct {
	MaxWallets int `json:"max_wallets,omitempty"`
	jwt.RegisteredClaims
}

// Caller is the authenticated identity of a request
type Caller struct {
	Method     string
	Subject    string
	MaxWallets int // 0 means the server limit applies
}

// WalletLimit returns the effective wallet limit for the caller given the server limit.
// A limit of 0 means unlimited.
func (c Caller) WalletLimit(serverMax int) int {
	if c.MaxWallets <= 0 {
		return serverMax
	}
	if serverMax <= 0 || c.MaxWallets < serverMax {
		return c.MaxWallets
	}
	return serverMax
}

// CallerFrom returns the caller stored by Auth, if any
func CallerFrom(c *gin.Context) (Caller, bool) {
	v, ok := c.Get(CALLER_KEY)
	if !ok {
		return Caller{}, false
	}
	caller, ok := v.(Caller)
	return caller, ok
}

// Authenticate validates the Authorization header against the configured credentials
func Authenticate(authHeader string, cfg AuthConfig) (Caller, error) {
	if authHeader == "" {
		return Caller{}, errors.New("missing Authorization header")
	}

	scheme, credentials, ok := strings.Cut(authHeader, " ")
	if !ok || credentials == "" {
		return Caller{}, errors.New("invalid Authorization header format")
	}

	switch strings.ToLower(scheme) {
	case "bearer":
		claims, err := validateJWT(credentials, cfg.JWTPublicKey)
		if err != nil {
			return Caller{}, err
		}
		if claims.MaxWallets < 0 {
			return Caller{}, errors.New("max_wallets claim must not be negative")
		}
		return Caller{
			Method:     AUTH_METHOD_JWT,
			Subject:    claims.Subject,
			MaxWallets: claims.MaxWallets,
		}, nil
	case "apikey":
		if !slices.Contains(cfg.APIKeys, credentials) {
			return Caller{}, errors.New("invalid API key")
		}
		return Caller{Method: AUTH_METHOD_APIKEY}, nil
	default:
		return Caller{}, fmt.Errorf("unsupported authorization type: %s", scheme)
	}
}

// Auth returns a gin middleware accepting a Bearer JWT or an ApiKey credential.
// The authenticated Caller is stored under CALLER_KEY.
func Auth(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, err := Authenticate(c.GetHeader("Authorization"), cfg)
		if err != nil {
			logger.WarnCtx(c.Request.Context(), "Authentication failed",
				zap.Error(err),
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
			)
			apiErr := apierrors.NewUnauthorizedError("Authentication failed", err.Error())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": apiErr})
			return
		}

		logger.DebugCtx(c.Request.Context(), "Authenticated",
			zap.String("method", caller.Method),
			zap.String("subject", caller.Subject),
			zap.Int("max_wallets", caller.MaxWallets),
		)
		c.Set(CALLER_KEY, caller)
		c.Next()
	}
}

// validateJWT verifies an RS* signed token. Expiry and not-before are checked by the parser.
func validateJWT(tokenString string, publicKeyPEM string) (*Claims, error) {
	if publicKeyPEM == "" {
		return nil, errors.New("JWT public key not configured")
	}

	publicKey, err := parseRSAPublicKey(publicKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RSA public key: %w", err)
	}

	claims := &Claims{}
	_, err = jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (interface{}, error) { return publicKey, nil },
		jwt.WithValidMethods([]string{"RS256", "RS384", "RS512"}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	return claims, nil
}

func parseRSAPublicKey(publicKeyPEM string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(publicKeyPEM))
	if block == nil {
		return nil, errors.New("failed to parse PEM block containing public key")
	}

	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return x509.ParsePKCS1PublicKey(block.Bytes)
	}

	rsaKey, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("public key is not an RSA key")
	}
	return rsaKey, nil
}
