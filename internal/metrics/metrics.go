// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package metrics holds the Prometheus collectors of the auth service and
// the handler exposing them on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "auth"

// Result labels of auth operations.
const (
	ResultSuccess  = "success"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// Metrics owns a private registry so that several instances (one per test)
// never collide.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	authOperations  *prometheus.CounterVec
	sweptTokens     prometheus.Counter
	rateLimited     prometheus.Counter
	resetsPublished *prometheus.CounterVec
}

// New creates and registers every collector, together with the Go runtime
// and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		authOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Auth operations by outcome.",
		}, []string{"operation", "result"}),
		sweptTokens: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expired_tokens_swept_total",
			Help:      "Expired refresh and reset token pairs cleared by the sweeper.",
		}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_rate_limited_total",
			Help:      "Login attempts rejected by the rate limiter.",
		}),
		resetsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reset_notifications_total",
			Help:      "Password reset notifications by channel and outcome.",
		}, []string{"channel", "result"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.authOperations,
		m.sweptTokens,
		m.rateLimited,
		m.resetsPublished,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveHTTPRequest(method, route string, status int, took time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(took.Seconds())
}

func (m *Metrics) ObserveAuthOperation(operation, result string) {
	m.authOperations.WithLabelValues(operation, result).Inc()
}

func (m *Metrics) AddSweptTokens(n int64) {
	if n > 0 {
		m.sweptTokens.Add(float64(n))
	}
}

func (m *Metrics) IncRateLimited() {
	m.rateLimited.Inc()
}

func (m *Metrics) ObserveResetNotification(channel, result string) {
	m.resetsPublished.WithLabelValues(channel, result).Inc()
}
