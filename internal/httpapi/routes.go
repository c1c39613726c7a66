package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/DoyleJ11/quiz-buzzer-backend/internal/lobby"
	"github.com/DoyleJ11/quiz-buzzer-backend/internal/results"
	"github.com/DoyleJ11/quiz-buzzer-backend/internal/ws"
)

type Deps struct {
	Lobby *lobby.Lobby
	WS    ws.Options
	// Results is nil when win history is disabled.
	Results   results.Lister
	PublicURL string
	Log       *zap.Logger
}

func SetupRoutes(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(d.Log))
	r.Use(middleware.Recoverer)

	// Public routes
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(d.Lobby, d.WS, d.Log))
	r.Get("/qr", JoinQR(d.PublicURL))
	r.Get("/results", RecentResults(d.Results))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}
