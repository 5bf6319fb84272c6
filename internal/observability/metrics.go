package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by command.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "speaksfer_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// FollowEvents counts follow graph transitions by action and outcome.
	FollowEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "speaksfer_follow_events_total",
		Help: "Follow graph operations by action and result",
	}, []string{"action", "result"})

	// TokenChecks counts emailed token redemptions by purpose and outcome.
	TokenChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "speaksfer_token_checks_total",
		Help: "Verification and reset token checks by purpose and result",
	}, []string{"purpose", "result"})

	// MailsSent counts outgoing mails by template and outcome.
	MailsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "speaksfer_mails_sent_total",
		Help: "Outgoing mails by template and result",
	}, []string{"template", "result"})

	// ArticleReactions counts favourite/unfavourite toggles by resulting state.
	ArticleReactions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "speaksfer_article_reactions_total",
		Help: "Article favourite/unfavourite toggles by resulting reaction",
	}, []string{"reaction"})

	// WebSocketConnections is the gauge of open notification sockets.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "speaksfer_websocket_connections",
		Help: "Number of open notification WebSocket connections",
	})

	// WebSocketDrops counts notifications dropped because a client buffer was full.
	WebSocketDrops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "speaksfer_websocket_backpressure_drops_total",
		Help: "Notifications dropped due to slow WebSocket clients",
	})
)

// Result label values.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// ResultOf maps an error to a result label.
func ResultOf(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}
