package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	domainauth "github.com/crimetracker/crimetracker-api/internal/domain/auth"
)

const (
	defaultTicketTTL = 60 * time.Second
	ticketIssuer     = "crimetracker"
	ticketAudience   = "ws"
	minTicketSecret  = 32
)

// ErrInvalidTicket is returned for tickets that fail verification.
var ErrInvalidTicket = errors.New("invalid websocket ticket")

// TicketClaims is the payload of a websocket ticket.
type TicketClaims struct {
	Email     string `json:"email"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// TicketIssuerOptions configures TicketIssuer.
type TicketIssuerOptions struct {
	Secret []byte
	TTL    time.Duration
}

// TicketIssuer mints short-lived HS256 tokens that authenticate websocket
// handshakes, where browsers cannot attach custom headers.
type TicketIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTicketIssuer constructs a TicketIssuer.
func NewTicketIssuer(opts TicketIssuerOptions) (*TicketIssuer, error) {
	if len(opts.Secret) < minTicketSecret {
		return nil, fmt.Errorf("ticket secret must be at least %d bytes", minTicketSecret)
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = defaultTicketTTL
	}
	return &TicketIssuer{secret: opts.Secret, ttl: ttl, now: time.Now}, nil
}

// Issue returns a signed ticket for the session's subject.
func (t *TicketIssuer) Issue(sess domainauth.Session) (string, time.Time, error) {
	if sess.SubjectID == "" {
		return "", time.Time{}, errors.New("session has no subject")
	}
	now := t.now()
	exp := now.Add(t.ttl)
	claims := TicketClaims{
		Email:     sess.Email,
		SessionID: sess.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ticketIssuer,
			Subject:   sess.SubjectID,
			Audience:  jwt.ClaimStrings{ticketAudience},
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign ticket: %w", err)
	}
	return signed, exp, nil
}

// Verify parses a ticket and returns the subject it was issued for.
func (t *TicketIssuer) Verify(token string) (*TicketClaims, error) {
	claims := &TicketClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(ticketIssuer),
		jwt.WithAudience(ticketAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTicket, err)
	}
	if claims.Subject == "" {
		return nil, ErrInvalidTicket
	}
	return claims, nil
}

// SubjectOf returns the subject a verified ticket names.
func (c *TicketClaims) SubjectOf() domainauth.Subject {
	return domainauth.Subject{ID: c.Subject, Email: c.Email}
}
