// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ハンドラーやワーカーから利用する。
type MetricsCollector interface {
	RecordHTTPRequest(method, path string, statusCode int, duration time.Duration)
	RecordMembershipTransition(toStatus string)
	RecordVerification(isRenewal bool)
	RecordNotificationFailure()
	RecordCleanupDeleted(target string, count int64)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpRequests          *prometheus.CounterVec
	httpLatency           prometheus.Histogram
	membershipTransitions *prometheus.CounterVec
	verifications         *prometheus.CounterVec
	notificationFailures  prometheus.Counter
	cleanupDeleted        *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "telofundi_http_requests_total",
			Help: "HTTPリクエストの合計数（メソッド・パス・ステータス別）",
		}, []string{"method", "path", "status_code"}),
		httpLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "telofundi_http_latency_seconds",
			Help:    "HTTPリクエストのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		membershipTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "telofundi_membership_transitions_total",
			Help: "メンバーシップ状態遷移の合計数（遷移先状態別）",
		}, []string{"to_status"}),
		verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "telofundi_verifications_total",
			Help: "エスコート認証の合計数（初回・更新別）",
		}, []string{"kind"}),
		notificationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "telofundi_notification_failures_total",
			Help: "通知作成失敗の合計数",
		}),
		cleanupDeleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "telofundi_cleanup_deleted_total",
			Help: "クリーンアップジョブで削除されたレコードの合計数（対象別）",
		}, []string{"target"}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpLatency,
		c.membershipTransitions,
		c.verifications,
		c.notificationFailures,
		c.cleanupDeleted,
	)

	return c
}

// RecordHTTPRequest はHTTPリクエストの完了を記録する。
func (c *Collector) RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	c.httpLatency.Observe(duration.Seconds())
}

// RecordMembershipTransition はメンバーシップの状態遷移を記録する。
func (c *Collector) RecordMembershipTransition(toStatus string) {
	c.membershipTransitions.WithLabelValues(toStatus).Inc()
}

// RecordVerification はエスコート認証の実行を記録する。
func (c *Collector) RecordVerification(isRenewal bool) {
	kind := "initial"
	if isRenewal {
		kind = "renewal"
	}
	c.verifications.WithLabelValues(kind).Inc()
}

// RecordNotificationFailure は通知作成失敗を記録する。
func (c *Collector) RecordNotificationFailure() {
	c.notificationFailures.Inc()
}

// RecordCleanupDeleted はクリーンアップジョブの削除件数を記録する。
func (c *Collector) RecordCleanupDeleted(target string, count int64) {
	c.cleanupDeleted.WithLabelValues(target).Add(float64(count))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
