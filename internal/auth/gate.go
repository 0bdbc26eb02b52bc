// Package auth gates the "write standings" capability. Three callers
// with different trust contexts share it: the scheduled cron job, a
// human administrator, and out-of-band automation pushing pre-fetched
// data. Nothing is fetched or written before a gate passes.
package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// Kind classifies an authorized caller.
type Kind string

const (
	KindCronJob    Kind = "cron"
	KindAdmin      Kind = "admin"
	KindAutomation Kind = "automation"
)

// Principal is the runtime classification of an authorized caller.
type Principal struct {
	Kind Kind
}

// AuthorizationError means the caller presented a wrong or missing
// credential. Maps to 401.
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string {
	return "unauthorized: " + e.Reason
}

// ConfigurationError means the service itself has no credential
// configured for this gate, which is an operator problem, not a caller
// problem. Maps to 503 so the two are distinguishable.
type ConfigurationError struct {
	Setting string
}

func (e *ConfigurationError) Error() string {
	return "service misconfigured: " + e.Setting + " is not set"
}

// Gate holds the configured credentials for all three schemes.
type Gate struct {
	cronSecret    string
	adminPassword string
	ingestSecret  string
}

// NewGate creates a gate from configured credentials. Any of them may
// be empty; the corresponding scheme then reports misconfiguration.
func NewGate(cronSecret, adminPassword, ingestSecret string) *Gate {
	return &Gate{
		cronSecret:    cronSecret,
		adminPassword: adminPassword,
		ingestSecret:  ingestSecret,
	}
}

// AuthorizeCron checks the long-lived shared secret the scheduler
// presents as a bearer token.
func (g *Gate) AuthorizeCron(r *http.Request) (*Principal, error) {
	if g.cronSecret == "" {
		return nil, &ConfigurationError{Setting: "CRON_SECRET"}
	}
	if err := checkBearer(r, g.cronSecret); err != nil {
		return nil, err
	}
	return &Principal{Kind: KindCronJob}, nil
}

// AuthorizeAdmin checks the admin password, presented in the
// X-Admin-Password header or as a password field in the body (the
// caller extracts the body field).
func (g *Gate) AuthorizeAdmin(r *http.Request, bodyPassword string) (*Principal, error) {
	if g.adminPassword == "" {
		return nil, &ConfigurationError{Setting: "ADMIN_PASSWORD"}
	}

	password := r.Header.Get("X-Admin-Password")
	if password == "" {
		password = bodyPassword
	}
	if password == "" {
		return nil, &AuthorizationError{Reason: "missing admin password"}
	}
	if !equal(password, g.adminPassword) {
		return nil, &AuthorizationError{Reason: "invalid admin password"}
	}
	return &Principal{Kind: KindAdmin}, nil
}

// AuthorizeAutomation checks the ingest secret presented by external
// batch jobs as a bearer token. Distinct from the cron secret.
func (g *Gate) AuthorizeAutomation(r *http.Request) (*Principal, error) {
	if g.ingestSecret == "" {
		return nil, &ConfigurationError{Setting: "STANDINGS_INGEST_SECRET"}
	}
	if err := checkBearer(r, g.ingestSecret); err != nil {
		return nil, err
	}
	return &Principal{Kind: KindAutomation}, nil
}

func checkBearer(r *http.Request, secret string) error {
	header := r.Header.Get("Authorization")
	if header == "" {
		return &AuthorizationError{Reason: "missing Authorization header"}
	}

	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return &AuthorizationError{Reason: "Authorization header is not a bearer token"}
	}
	if !equal(token, secret) {
		return &AuthorizationError{Reason: "invalid token"}
	}
	return nil
}

// equal compares credentials in constant time.
func equal(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
