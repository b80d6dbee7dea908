// Package metrics declares the domain counters exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GraphMutations counts successful writes to the story graph.
	GraphMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storyhub_graph_mutations_total",
		Help: "Story graph writes by entity and action.",
	}, []string{"entity", "action"})

	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storyhub_events_published_total",
		Help: "Content events published by type and outcome.",
	}, []string{"type", "outcome"})

	EventsConsumed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storyhub_events_consumed_total",
		Help: "Content events handled by the web tier, by type and outcome.",
	}, []string{"type", "outcome"})

	PlaySessionsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storyhub_play_sessions_started_total",
		Help: "Play starts, split by whether a saved cursor was resumed.",
	}, []string{"resumed"})

	PlaysCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storyhub_plays_completed_total",
		Help: "Playthroughs that reached an ending and were recorded.",
	})

	RatingsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storyhub_ratings_submitted_total",
		Help: "Ratings created or updated.",
	})

	ReportsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storyhub_reports_created_total",
		Help: "Moderation reports filed.",
	})

	Registrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storyhub_registrations_total",
		Help: "Account registrations by role.",
	}, []string{"role"})

	ContentRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storyhub_content_client_requests_total",
		Help: "Calls from the web tier to the content API by outcome.",
	}, []string{"outcome"})

	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "storyhub_circuit_breaker_state",
		Help: "Circuit breaker state (0=closed, 1=half-open, 2=open).",
	}, []string{"name"})
)
