package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// CalculationsTotal counts landed-cost calculations by outcome.
	CalculationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "landed_cost_calculations_total",
			Help: "Total landed cost calculations by status",
		},
		[]string{"status"},
	)

	// PriceStageTotal counts which extraction stage produced the item price.
	PriceStageTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "landed_cost_price_stage_total",
			Help: "Price extraction wins by fallback-chain stage",
		},
		[]string{"stage"},
	)

	// ExchangeFallbackTotal counts substitutions of the fixed fallback rate.
	ExchangeFallbackTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "landed_cost_exchange_fallback_total",
			Help: "Times the fallback exchange rate was used",
		},
	)
)

func Register() {
	prometheus.MustRegister(CalculationsTotal, PriceStageTotal, ExchangeFallbackTotal)
}

func Handler() http.Handler {
	return promhttp.Handler()
}
