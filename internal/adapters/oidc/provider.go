// Package oidc authenticates subjects against an OpenID Connect identity provider.
package oidc

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	domainauth "github.com/crimetracker/crimetracker-api/internal/domain/auth"
	"github.com/crimetracker/crimetracker-api/internal/ports"
)

// Provider implements ports.AuthProvider with the authorization code flow.
// It only establishes who the subject is; roles come from the profile store.
type Provider struct {
	config       *oauth2.Config
	httpClient   *http.Client
	oidcProvider *gooidc.Provider
	verifier     *gooidc.IDTokenVerifier
	now          func() time.Time
}

// ProviderConfig holds configuration for the OIDC provider.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scope        string
	// IssuerURL may be the issuer or its discovery document URL.
	IssuerURL  string
	HTTPClient *http.Client // Optional, defaults to a 30s client
}

func (c ProviderConfig) validate() error {
	switch {
	case c.ClientID == "":
		return errors.New("client ID is required")
	case c.ClientSecret == "":
		return errors.New("client secret is required")
	case c.RedirectURL == "":
		return errors.New("redirect URL is required")
	case c.IssuerURL == "":
		return errors.New("issuer URL is required")
	}
	return nil
}

// issuerFromURL strips a trailing discovery path.
func issuerFromURL(raw string) string {
	issuer := strings.TrimSuffix(raw, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")
	return strings.TrimSuffix(issuer, "/")
}

// NewProvider discovers the issuer and builds the provider.
func NewProvider(ctx context.Context, config ProviderConfig) (*Provider, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	op, err := gooidc.NewProvider(gooidc.ClientContext(ctx, httpClient), issuerFromURL(config.IssuerURL))
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}

	scopes := strings.Fields(config.Scope)
	if !slices.Contains(scopes, gooidc.ScopeOpenID) {
		scopes = append([]string{gooidc.ScopeOpenID}, scopes...)
	}

	return &Provider{
		config: &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RedirectURL:  config.RedirectURL,
			Scopes:       scopes,
			Endpoint:     op.Endpoint(),
		},
		httpClient:   httpClient,
		oidcProvider: op,
		verifier:     op.Verifier(&gooidc.Config{ClientID: config.ClientID}),
		now:          time.Now,
	}, nil
}

// Begin returns the provider URL plus the state and nonce the caller must keep.
func (p *Provider) Begin(_ context.Context, in ports.BeginInput) (string, string, string, error) {
	if in.RedirectURL == "" {
		return "", "", "", errors.New("redirect URL is required")
	}

	state, err := generateRandomString(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := generateRandomString(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}

	authURL := p.config.AuthCodeURL(state,
		gooidc.Nonce(nonce),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
	return authURL, state, nonce, nil
}

// Exchange trades the code for tokens and returns the verified subject.
func (p *Provider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.ProviderIdentity, error) {
	switch {
	case in.Code == "":
		return domainauth.ProviderIdentity{}, errors.New("authorization code is required")
	case in.State == "":
		return domainauth.ProviderIdentity{}, errors.New("state is required")
	case in.Nonce == "":
		return domainauth.ProviderIdentity{}, errors.New("nonce is required")
	}

	ctx = gooidc.ClientContext(ctx, p.httpClient)
	token, err := p.config.Exchange(ctx, in.Code)
	if err != nil {
		return domainauth.ProviderIdentity{}, fmt.Errorf("exchange code for token: %w", err)
	}

	c, err := p.verifyIDToken(ctx, token, in.Nonce)
	if err != nil {
		return domainauth.ProviderIdentity{}, err
	}

	if c.Email == "" || c.Name == "" {
		if ui, uiErr := p.userInfo(ctx, token); uiErr == nil {
			c.fillFrom(ui)
		} else if c.Email == "" {
			return domainauth.ProviderIdentity{}, fmt.Errorf("get user info: %w", uiErr)
		}
	}

	expiresAt := p.now().Add(time.Hour)
	if !token.Expiry.IsZero() {
		expiresAt = token.Expiry
	}

	return domainauth.ProviderIdentity{
		SubjectID:   c.Subject,
		Email:       c.Email,
		DisplayName: c.Name,
		ExpiresAt:   expiresAt,
	}, nil
}

// claims is the subset of standard OIDC claims used to identify a subject.
type claims struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Nonce   string `json:"nonce"`
}

func (c *claims) fillFrom(o claims) {
	if c.Email == "" {
		c.Email = o.Email
	}
	if c.Name == "" {
		c.Name = o.Name
	}
}

func (p *Provider) verifyIDToken(ctx context.Context, tok *oauth2.Token, nonce string) (claims, error) {
	var c claims
	rawID, err := idTokenFrom(tok)
	if err != nil {
		return c, err
	}
	idTok, err := p.verifier.Verify(ctx, rawID)
	if err != nil {
		return c, fmt.Errorf("verify id_token: %w", err)
	}
	if err := idTok.Claims(&c); err != nil {
		return c, fmt.Errorf("parse id_token claims: %w", err)
	}
	if c.Nonce != nonce {
		return c, errors.New("invalid nonce")
	}
	if c.Subject == "" {
		c.Subject = idTok.Subject
	}
	if c.Subject == "" {
		return c, errors.New("id_token has no subject")
	}
	return c, nil
}

func (p *Provider) userInfo(ctx context.Context, tok *oauth2.Token) (claims, error) {
	var c claims
	ui, err := p.oidcProvider.UserInfo(ctx, oauth2.StaticTokenSource(tok))
	if err != nil {
		return c, fmt.Errorf("fetch user info: %w", err)
	}
	if err := ui.Claims(&c); err != nil {
		return c, fmt.Errorf("decode user info: %w", err)
	}
	if c.Email == "" {
		c.Email = ui.Email
	}
	return c, nil
}

// generateRandomString generates a URL-safe random string of exactly length characters.
func generateRandomString(length int) (string, error) {
	if length <= 0 {
		return "", nil
	}
	b := make([]byte, (length*3+3)/4+1)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:length], nil
}

func idTokenFrom(tok *oauth2.Token) (string, error) {
	if tok == nil {
		return "", errors.New("nil token")
	}
	s, ok := tok.Extra("id_token").(string)
	if !ok || s == "" {
		return "", errors.New("missing id_token in token response")
	}
	return s, nil
}

var _ ports.AuthProvider = (*Provider)(nil)
