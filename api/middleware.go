package api

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shaj13/go-guardian/auth"
	"github.com/shaj13/go-guardian/auth/strategies/basic"
	"github.com/shaj13/go-guardian/store"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/alumnihub/alumni-api/config"
	"github.com/alumnihub/alumni-api/databases"
	"github.com/alumnihub/alumni-api/models"
)

var (
	// ErrMissingToken is returned when no bearer token was sent
	ErrMissingToken = errors.New("missing bearer token")
	// ErrInvalidToken is returned for tokens that fail signature or expiry checks
	ErrInvalidToken = errors.New("invalid token")
)

// Claims are the verified contents of an access token
type Claims struct {
	UserID string
	Email  string
	Type   models.UserType
}

// MiddlewareDB is a struct that holds the database
type MiddlewareDB struct {
	DB     databases.UserDatabase
	Secret []byte
	TTL    time.Duration

	authenticator auth.Authenticator
	now           func() time.Time
}

// NewMiddlewareDB wires go-guardian's basic strategy to the user collection
func NewMiddlewareDB(db databases.UserDatabase, conf *config.Config) *MiddlewareDB {
	m := &MiddlewareDB{DB: db, Secret: []byte(conf.JWTSecret), TTL: conf.TokenTTL, now: time.Now}
	if m.TTL <= 0 {
		m.TTL = 24 * time.Hour
	}
	m.SetupGoGuardian()
	return m
}

// SetupGoGuardian sets up the go-guardian middleware
func (m *MiddlewareDB) SetupGoGuardian() {
	m.authenticator = auth.New()
	cache := store.NewFIFO(context.Background(), 5*time.Minute)
	basicStrategy := basic.New(m.ValidateUser, cache)
	m.authenticator.EnableStrategy(basic.StrategyKey, basicStrategy)
}

// ValidateUser validates a user
func (m *MiddlewareDB) ValidateUser(ctx context.Context, r *http.Request, email, password string) (auth.Info, error) {
	usernameHash := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))

	user, err := m.DB.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("no matching email found")
	}

	expectedUsernameHash := sha256.Sum256([]byte(user.Email))
	usernameMatch := subtle.ConstantTimeCompare(usernameHash[:], expectedUsernameHash[:]) == 1

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, fmt.Errorf("failed to compare password")
	}
	if !usernameMatch {
		return nil, fmt.Errorf("invalid credentials")
	}
	return auth.NewDefaultUser(user.Email, user.ID.Hex(), []string{string(user.Type)}, nil), nil
}

// IssueToken signs an access token for the given identity
func (m *MiddlewareDB) IssueToken(userID, email string, userType models.UserType) (string, time.Time, error) {
	if len(m.Secret) == 0 {
		return "", time.Time{}, fmt.Errorf("JWT_SECRET is not configured")
	}
	now := m.clock()
	exp := now.Add(m.TTL)
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"type":  string(userType),
		"typ":   "access",
		"iat":   now.Unix(),
		"exp":   exp.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// ParseToken verifies signature and expiry and returns the claims
func (m *MiddlewareDB) ParseToken(raw string) (*Claims, error) {
	if len(m.Secret) == 0 {
		return nil, ErrInvalidToken
	}
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return m.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.clock))
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	sub, _ := mc["sub"].(string)
	email, _ := mc["email"].(string)
	typ, _ := mc["type"].(string)
	if sub == "" {
		return nil, ErrInvalidToken
	}
	return &Claims{UserID: sub, Email: email, Type: models.UserType(typ)}, nil
}

func bearerToken(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return "", ErrMissingToken
	}
	t := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	if t == "" {
		return "", ErrMissingToken
	}
	return t, nil
}

// Authenticate requires a valid bearer token and stores its claims on the context
func (m *MiddlewareDB) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := bearerToken(r)
		if err != nil {
			config.ErrorStatus("unauthorized", http.StatusUnauthorized, w, err)
			return
		}
		claims, err := m.ParseToken(raw)
		if err != nil {
			zap.S().Warnw("rejected token", "url", r.URL.Path, "error", err)
			config.ErrorStatus("unauthorized", http.StatusUnauthorized, w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// RequireAdmin lets only admin tokens through
func (m *MiddlewareDB) RequireAdmin(next http.Handler) http.Handler {
	return m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, _ := ClaimsFromContext(r.Context())
		if claims.Type != models.UserTypeAdmin {
			config.ErrorStatus("forbidden", http.StatusForbidden, w, fmt.Errorf("admin access required"))
			return
		}
		next.ServeHTTP(w, r)
	}))
}

// CreateToken exchanges basic credentials for a signed access token
func (m *MiddlewareDB) CreateToken(w http.ResponseWriter, r *http.Request) {
	info, err := m.authenticator.Authenticate(r)
	if err != nil {
		config.ErrorStatus("invalid credentials", http.StatusUnauthorized, w, err)
		return
	}

	userType := models.UserTypeStudent
	if groups := info.Groups(); len(groups) > 0 {
		userType = models.UserType(groups[0])
	}
	token, exp, err := m.IssueToken(info.ID(), info.UserName(), userType)
	if err != nil {
		config.ErrorStatus("failed to issue token", http.StatusInternalServerError, w, err)
		return
	}

	zap.S().Debugw("issued token", "user", info.ID())
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(models.Response{
		Success: true,
		Data:    models.TokenResponse{Token: token, ExpiresAt: exp, UserID: info.ID(), Type: userType},
	})
}

func (m *MiddlewareDB) clock() time.Time {
	if m.now == nil {
		return time.Now()
	}
	return m.now()
}
