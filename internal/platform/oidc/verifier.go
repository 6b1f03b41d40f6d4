package oidc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kiwiz-app/kiwiz-backend/internal/platform/ctxutil"
)

type Identity = ctxutil.Identity

var ErrInvalidToken = errors.New("invalid token")

type Config struct {
	// Issuer is the provider base URL, e.g. https://kiwiz.kinde.com.
	Issuer string
	// Audience is checked only when non-empty.
	Audience string
	Leeway   time.Duration
}

// Verifier validates RS256 bearer tokens against the issuer's published keys.
type Verifier struct {
	httpClient *http.Client
	issuer     string
	audience   string
	leeway     time.Duration
	jwks       *jwksCache

	mu           sync.Mutex
	discoveredAt time.Time
}

type discovery struct {
	Issuer  string `json:"issuer"`
	JWKSURI string `json:"jwks_uri"`
}

func NewVerifier(httpClient *http.Client, cfg Config) (*Verifier, error) {
	issuer := strings.TrimRight(strings.TrimSpace(cfg.Issuer), "/")
	if issuer == "" {
		return nil, fmt.Errorf("oidc issuer is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	leeway := cfg.Leeway
	if leeway <= 0 {
		leeway = 30 * time.Second
	}
	return &Verifier{
		httpClient: httpClient,
		issuer:     issuer,
		audience:   strings.TrimSpace(cfg.Audience),
		leeway:     leeway,
		jwks:       newJWKSCache(httpClient),
	}, nil
}

// ensureDiscovery resolves jwks_uri once. Failures are not cached so a
// provider outage at boot does not stick.
func (v *Verifier) ensureDiscovery(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.discoveredAt.IsZero() {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.issuer+"/.well-known/openid-configuration", nil)
	if err != nil {
		return err
	}
	res, err := v.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("discovery request failed: %s", res.Status)
	}
	var d discovery
	if err := json.NewDecoder(res.Body).Decode(&d); err != nil {
		return err
	}
	if strings.TrimSpace(d.JWKSURI) == "" {
		return fmt.Errorf("discovery missing jwks_uri")
	}
	v.jwks.setURL(d.JWKSURI)
	v.discoveredAt = time.Now()
	return nil
}

func (v *Verifier) Verify(ctx context.Context, rawToken string) (*Identity, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidToken)
	}
	if err := v.ensureDiscovery(ctx); err != nil {
		return nil, fmt.Errorf("oidc discovery error: %w", err)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(v.leeway),
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}
	claims := jwt.MapClaims{}
	tok, err := jwt.NewParser(opts...).ParseWithClaims(rawToken, claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if strings.TrimSpace(kid) == "" {
			return nil, fmt.Errorf("missing kid")
		}
		return v.jwks.getKey(ctx, kid)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if tok == nil || !tok.Valid {
		return nil, ErrInvalidToken
	}

	iss, _ := claims.GetIssuer()
	if strings.TrimRight(iss, "/") != v.issuer {
		return nil, fmt.Errorf("%w: issuer mismatch %q", ErrInvalidToken, iss)
	}
	sub, _ := claims.GetSubject()
	if strings.TrimSpace(sub) == "" {
		return nil, fmt.Errorf("%w: missing sub", ErrInvalidToken)
	}
	return claimsToIdentity(claims), nil
}

func claimsToIdentity(c jwt.MapClaims) *Identity {
	str := func(k string) string {
		s, _ := c[k].(string)
		return strings.TrimSpace(s)
	}
	return &Identity{
		Subject:    str("sub"),
		Email:      str("email"),
		GivenName:  str("given_name"),
		FamilyName: str("family_name"),
		Picture:    str("picture"),
	}
}
