package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func request(headers map[string]string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/api/standings/update-now", nil)
	for k, v := range headers {
		r.Header.Set(k, v)
	}
	return r
}

func TestAuthorizeCron(t *testing.T) {
	gate := NewGate("cron-secret", "", "")

	p, err := gate.AuthorizeCron(request(map[string]string{"Authorization": "Bearer cron-secret"}))
	require.NoError(t, err, "Correct bearer secret should pass")
	assert.Equal(t, KindCronJob, p.Kind)

	_, err = gate.AuthorizeCron(request(map[string]string{"Authorization": "Bearer wrong"}))
	var authErr *AuthorizationError
	require.True(t, errors.As(err, &authErr), "Wrong secret should be an AuthorizationError")

	_, err = gate.AuthorizeCron(request(nil))
	require.True(t, errors.As(err, &authErr), "Missing header should be an AuthorizationError")

	_, err = gate.AuthorizeCron(request(map[string]string{"Authorization": "Basic cron-secret"}))
	require.True(t, errors.As(err, &authErr), "Non-bearer scheme should be rejected")
}

func TestAuthorizeCronMisconfigured(t *testing.T) {
	gate := NewGate("", "pw", "ingest")

	_, err := gate.AuthorizeCron(request(map[string]string{"Authorization": "Bearer anything"}))
	require.Error(t, err)

	var configErr *ConfigurationError
	var authErr *AuthorizationError
	assert.True(t, errors.As(err, &configErr), "Unset secret is a ConfigurationError")
	assert.False(t, errors.As(err, &authErr), "Misconfiguration must be distinct from unauthorized")
}

func TestAuthorizeAdmin(t *testing.T) {
	gate := NewGate("", "hunter", "")

	p, err := gate.AuthorizeAdmin(request(map[string]string{"X-Admin-Password": "hunter"}), "")
	require.NoError(t, err, "Header password should pass")
	assert.Equal(t, KindAdmin, p.Kind)

	p, err = gate.AuthorizeAdmin(request(nil), "hunter")
	require.NoError(t, err, "Body password should pass")
	assert.Equal(t, KindAdmin, p.Kind)

	var authErr *AuthorizationError
	_, err = gate.AuthorizeAdmin(request(map[string]string{"X-Admin-Password": "guess"}), "")
	assert.True(t, errors.As(err, &authErr), "Wrong password should be an AuthorizationError")

	_, err = gate.AuthorizeAdmin(request(nil), "")
	assert.True(t, errors.As(err, &authErr), "Missing password should be an AuthorizationError")
}

func TestAuthorizeAdminHeaderTakesPrecedence(t *testing.T) {
	gate := NewGate("", "hunter", "")

	_, err := gate.AuthorizeAdmin(request(map[string]string{"X-Admin-Password": "wrong"}), "hunter")
	assert.Error(t, err, "A wrong header password is not rescued by the body field")
}

func TestAuthorizeAdminMisconfigured(t *testing.T) {
	gate := NewGate("cron", "", "ingest")

	_, err := gate.AuthorizeAdmin(request(map[string]string{"X-Admin-Password": "hunter"}), "")
	var configErr *ConfigurationError
	assert.True(t, errors.As(err, &configErr), "Unset admin password is a ConfigurationError")
}

func TestAuthorizeAutomation(t *testing.T) {
	gate := NewGate("cron-secret", "", "ingest-secret")

	p, err := gate.AuthorizeAutomation(request(map[string]string{"Authorization": "Bearer ingest-secret"}))
	require.NoError(t, err)
	assert.Equal(t, KindAutomation, p.Kind)

	// The cron secret must not open the automation gate.
	_, err = gate.AuthorizeAutomation(request(map[string]string{"Authorization": "Bearer cron-secret"}))
	var authErr *AuthorizationError
	assert.True(t, errors.As(err, &authErr), "Secrets are not interchangeable across gates")
}

func TestAuthorizeAutomationMisconfigured(t *testing.T) {
	gate := NewGate("cron", "pw", "")

	_, err := gate.AuthorizeAutomation(request(map[string]string{"Authorization": "Bearer anything"}))
	var configErr *ConfigurationError
	assert.True(t, errors.As(err, &configErr))
}
