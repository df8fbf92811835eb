package netatmo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// Grant is the outcome of one refresh-token exchange.
type Grant struct {
	AccessToken  string
	RefreshToken string
	Scope        string
	TTL          time.Duration
}

// Refresher exchanges refresh tokens at the vendor token endpoint.
type Refresher struct {
	config     oauth2.Config
	httpClient *http.Client
}

func NewRefresher(clientID, clientSecret, tokenURL string, httpClient *http.Client) *Refresher {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Refresher{
		config: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient: httpClient,
	}
}

// Refresh runs the refresh_token grant. The previous refresh token is kept when the vendor does not rotate it.
func (r *Refresher) Refresh(ctx context.Context, refreshToken string) (Grant, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, r.httpClient)

	tok, err := r.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil {
			return Grant{}, &UpstreamError{Status: re.Response.StatusCode, Body: excerpt(re.Body)}
		}
		return Grant{}, fmt.Errorf("refresh grant: %w", err)
	}
	if tok.AccessToken == "" || tok.Expiry.IsZero() {
		return Grant{}, fmt.Errorf("%w: token response without access_token or expires_in", ErrMalformed)
	}

	grant := Grant{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Scope:        scopeOf(tok),
		TTL:          time.Until(tok.Expiry),
	}
	if grant.RefreshToken == "" {
		grant.RefreshToken = refreshToken
	}
	return grant, nil
}

// scopeOf reads scope, which Netatmo sends as a JSON array.
func scopeOf(tok *oauth2.Token) string {
	switch v := tok.Extra("scope").(type) {
	case string:
		return v
	case []any:
		parts := make([]string, 0, len(v))
		for _, s := range v {
			if str, ok := s.(string); ok {
				parts = append(parts, str)
			}
		}
		return strings.Join(parts, " ")
	default:
		return ""
	}
}
