// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InstancesDoNotCollide(t *testing.T) {
	require.NotPanics(t, func() {
		New()
		New()
	})
}

func TestObserveHTTPRequest(t *testing.T) {
	m := New()

	m.ObserveHTTPRequest(http.MethodPost, "/auth/login", http.StatusOK, 20*time.Millisecond)
	m.ObserveHTTPRequest(http.MethodPost, "/auth/login", http.StatusOK, 30*time.Millisecond)
	m.ObserveHTTPRequest(http.MethodPost, "/auth/login", http.StatusBadRequest, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("POST", "/auth/login", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("POST", "/auth/login", "400")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.httpDuration))
}

func TestObserveAuthOperation(t *testing.T) {
	m := New()

	m.ObserveAuthOperation("login", ResultSuccess)
	m.ObserveAuthOperation("login", ResultRejected)
	m.ObserveAuthOperation("login", ResultRejected)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.authOperations.WithLabelValues("login", ResultSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.authOperations.WithLabelValues("login", ResultRejected)))
}

func TestAddSweptTokens_IgnoresZero(t *testing.T) {
	m := New()

	m.AddSweptTokens(0)
	m.AddSweptTokens(3)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.sweptTokens))
}

func TestIncRateLimitedAndNotifications(t *testing.T) {
	m := New()

	m.IncRateLimited()
	m.ObserveResetNotification("amqp", ResultError)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.rateLimited))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.resetsPublished.WithLabelValues("amqp", ResultError)))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveAuthOperation("signup", ResultSuccess)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `auth_operations_total{operation="signup",result="success"} 1`))
	assert.Contains(t, string(body), "go_goroutines")
}
