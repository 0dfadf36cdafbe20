package stubcatalog

import (
	"net/http"

	"github.com/ginzapet/storefront/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter mounts the stub API surface.
func NewRouter(server *Server, logg *logger.Logger, registry *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	r.Use(requestID(logg))
	r.Use(requestLogger(logg))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Get("/categories", server.handleCategories)
	r.Get("/category/{slug}", server.handleCategory)
	r.Get("/products", server.handleProducts)
	r.Get("/product/{slug}", server.handleProduct)
	r.Post("/check-booking", server.handleCheckBooking)
	r.Post("/order-transaction", server.handleOrderTransaction)

	return r
}
