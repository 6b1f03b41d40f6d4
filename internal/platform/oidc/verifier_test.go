package oidc

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type provider struct {
	srv       *httptest.Server
	key       *rsa.PrivateKey
	jwksHits  atomic.Int32
	discovery atomic.Int32
}

func newProvider(t *testing.T) *provider {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	p := &provider{key: key}
	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		p.discovery.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]string{"issuer": p.srv.URL, "jwks_uri": p.srv.URL + "/.well-known/jwks.json"})
	})
	mux.HandleFunc("/.well-known/jwks.json", func(w http.ResponseWriter, r *http.Request) {
		p.jwksHits.Add(1)
		pub := p.key.PublicKey
		_ = json.NewEncoder(w).Encode(map[string]any{"keys": []map[string]string{{
			"kty": "RSA",
			"kid": "k1",
			"use": "sig",
			"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		}}})
	})
	p.srv = httptest.NewServer(mux)
	t.Cleanup(p.srv.Close)
	return p
}

func (p *provider) sign(t *testing.T, kid string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = kid
	s, err := tok.SignedString(p.key)
	require.NoError(t, err)
	return s
}

func (p *provider) claims(overrides jwt.MapClaims) jwt.MapClaims {
	now := time.Now()
	c := jwt.MapClaims{
		"iss":         p.srv.URL,
		"sub":         "kp_abc",
		"aud":         []string{"kiwiz-api"},
		"email":       "parent@example.com",
		"given_name":  "Sam",
		"family_name": "Lee",
		"iat":         now.Unix(),
		"exp":         now.Add(time.Hour).Unix(),
	}
	for k, v := range overrides {
		if v == nil {
			delete(c, k)
			continue
		}
		c[k] = v
	}
	return c
}

func TestVerifyValidToken(t *testing.T) {
	p := newProvider(t)
	v, err := NewVerifier(p.srv.Client(), Config{Issuer: p.srv.URL + "/", Audience: "kiwiz-api"})
	require.NoError(t, err)

	id, err := v.Verify(context.Background(), p.sign(t, "k1", p.claims(nil)))
	require.NoError(t, err)
	assert.Equal(t, &Identity{Subject: "kp_abc", Email: "parent@example.com", GivenName: "Sam", FamilyName: "Lee"}, id)

	_, err = v.Verify(context.Background(), p.sign(t, "k1", p.claims(nil)))
	require.NoError(t, err)
	assert.EqualValues(t, 1, p.discovery.Load())
	assert.EqualValues(t, 1, p.jwksHits.Load())
}

func TestVerifyRejects(t *testing.T) {
	p := newProvider(t)
	v, err := NewVerifier(p.srv.Client(), Config{Issuer: p.srv.URL, Audience: "kiwiz-api"})
	require.NoError(t, err)
	ctx := context.Background()

	cases := map[string]string{
		"empty":         "",
		"garbage":       "not.a.jwt",
		"expired":       p.sign(t, "k1", p.claims(jwt.MapClaims{"exp": time.Now().Add(-time.Hour).Unix()})),
		"no exp":        p.sign(t, "k1", p.claims(jwt.MapClaims{"exp": nil})),
		"wrong issuer":  p.sign(t, "k1", p.claims(jwt.MapClaims{"iss": "https://evil.example.com"})),
		"wrong aud":     p.sign(t, "k1", p.claims(jwt.MapClaims{"aud": "someone-else"})),
		"no sub":        p.sign(t, "k1", p.claims(jwt.MapClaims{"sub": nil})),
		"unknown kid":   p.sign(t, "k2", p.claims(nil)),
		"not yet valid": p.sign(t, "k1", p.claims(jwt.MapClaims{"nbf": time.Now().Add(time.Hour).Unix()})),
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(ctx, tok)
			require.ErrorIs(t, err, ErrInvalidToken)
		})
	}

	hs := jwt.NewWithClaims(jwt.SigningMethodHS256, p.claims(nil))
	hs.Header["kid"] = "k1"
	raw, err := hs.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = v.Verify(ctx, raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyWithoutAudience(t *testing.T) {
	p := newProvider(t)
	v, err := NewVerifier(p.srv.Client(), Config{Issuer: p.srv.URL})
	require.NoError(t, err)
	_, err = v.Verify(context.Background(), p.sign(t, "k1", p.claims(jwt.MapClaims{"aud": nil})))
	require.NoError(t, err)
}

func TestNewVerifierRequiresIssuer(t *testing.T) {
	_, err := NewVerifier(nil, Config{})
	require.Error(t, err)
}
