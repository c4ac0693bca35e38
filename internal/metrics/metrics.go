// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder はメトリクス収集のインターフェース。
// ハンドラーやイベント層から利用する。
type Recorder interface {
	RecordLogin(success bool)
	RecordRegistration()
	RecordTokenIssued()
	RecordTokenRefreshed()
	RecordEventPublished(channel string)
	RecordEventConsumed(channel string)
	RecordHTTPStatus(statusCode int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	login           *prometheus.CounterVec
	registrations   prometheus.Counter
	tokensIssued    prometheus.Counter
	tokensRefreshed prometheus.Counter
	eventsPublished *prometheus.CounterVec
	eventsConsumed  *prometheus.CounterVec
	httpStatus      *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		login: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "usersvc_login_total",
			Help: "ログイン試行の結果別合計数",
		}, []string{"outcome"}),
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "usersvc_registrations_total",
			Help: "ユーザー登録成功の合計数",
		}),
		tokensIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "usersvc_tokens_issued_total",
			Help: "発行されたトークンの合計数",
		}),
		tokensRefreshed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "usersvc_tokens_refreshed_total",
			Help: "リフレッシュされたトークンの合計数",
		}),
		eventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "usersvc_events_published_total",
			Help: "チャンネル別の発行イベント数",
		}, []string{"channel"}),
		eventsConsumed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "usersvc_events_consumed_total",
			Help: "チャンネル別の受信イベント数",
		}, []string{"channel"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "usersvc_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.login,
		c.registrations,
		c.tokensIssued,
		c.tokensRefreshed,
		c.eventsPublished,
		c.eventsConsumed,
		c.httpStatus,
	)

	return c
}

// RecordLogin はログイン試行の結果を記録する。
func (c *Collector) RecordLogin(success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	c.login.WithLabelValues(outcome).Inc()
}

// RecordRegistration はユーザー登録成功を記録する。
func (c *Collector) RecordRegistration() {
	c.registrations.Inc()
}

// RecordTokenIssued はトークン発行を記録する。
func (c *Collector) RecordTokenIssued() {
	c.tokensIssued.Inc()
}

// RecordTokenRefreshed はトークンリフレッシュを記録する。
func (c *Collector) RecordTokenRefreshed() {
	c.tokensRefreshed.Inc()
}

// RecordEventPublished はイベント発行を記録する。
func (c *Collector) RecordEventPublished(channel string) {
	c.eventsPublished.WithLabelValues(channel).Inc()
}

// RecordEventConsumed はイベント受信を記録する。
func (c *Collector) RecordEventConsumed(channel string) {
	c.eventsConsumed.WithLabelValues(channel).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
