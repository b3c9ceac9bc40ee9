package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radieske/odds-cache-service/internal/odds-service/dto"
	"github.com/radieske/odds-cache-service/internal/odds-service/model"
	"github.com/radieske/odds-cache-service/internal/odds-service/service"
)

// OddsService é o que a API precisa do service de odds
type OddsService interface {
	GetByID(ctx context.Context, id int64) (dto.OddsView, error)
	GetByIDWithMargin(ctx context.Context, id int64) (dto.OddsView, error)
	Create(ctx context.Context, in model.CreateInput) (dto.OddsView, error)
	Update(ctx context.Context, id int64, in model.UpdateInput) (dto.OddsView, error)
	Deactivate(ctx context.Context, id int64) (dto.OddsView, error)
	Delete(ctx context.Context, id int64) error
	ListWithCreators(ctx context.Context, f model.Filter) ([]dto.OddsView, error)
}

// API expõe os endpoints REST de odds
type API struct {
	Log     *zap.Logger
	Service OddsService

	// Middlewares extras (ex.: métricas), aplicados depois do request id
	Middlewares []func(http.Handler) http.Handler
}

// Router retorna o roteador HTTP com os endpoints REST
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(a.logRequests)
	r.Use(middleware.Timeout(10 * time.Second))
	for _, mw := range a.Middlewares {
		r.Use(mw)
	}

	r.Route("/v1/odds", func(r chi.Router) {
		r.Get("/", a.listOdds)                        // Lista odds com criador e margem
		r.Post("/", a.createOdds)                     // Cria odd (ativa)
		r.Get("/{id}", a.getOdds)                     // Odd por id (?margin=true)
		r.Put("/{id}", a.updateOdds)                  // Atualiza e renova o cache
		r.Patch("/{id}/deactivate", a.deactivateOdds) // Desativa e invalida o cache
		r.Delete("/{id}", a.deleteOdds)               // Remove e invalida o cache
	})
	return r
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, dto.ErrorResponse{Error: msg})
}

// writeServiceError traduz os erros do service para status HTTP
func (a *API) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrInvalidOdds), errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrCollaboratorFailure):
		a.Log.Error("store unavailable", zap.String("request_id", middleware.GetReqID(r.Context())), zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "storage unavailable")
	default:
		a.Log.Error("unexpected error", zap.String("request_id", middleware.GetReqID(r.Context())), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// requestID reaproveita X-Request-Id do gateway ou gera um uuid novo.
// Guardado na chave do chi para middleware.GetReqID funcionar
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(middleware.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(middleware.RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// logRequests registra cada requisição com status e latência
func (a *API) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		a.Log.Debug("http request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	})
}
