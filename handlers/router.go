package handlers

import (
	"io"
	"net/http"
	"time"

	"bnta-demo/microservices/tasks-service/config"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

const RequestIdHeader = "X-Request-Id"

// NewRouter wires the task routes and wraps them, outermost first, in
// request id, access log, panic recovery and CORS handlers.
func NewRouter(h *TaskHandler, cfg config.HTTPConfig, logger *log.Logger) http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/healthz", h.Healthz).Methods(http.MethodGet)

	taskRouter := router.NewRoute().Subrouter()
	taskRouter.Use(h.MiddlewareContentTypeSet)

	getRouter := taskRouter.Methods(http.MethodGet).Subrouter()
	getRouter.HandleFunc("/tasks", h.GetAll)

	postRouter := taskRouter.Methods(http.MethodPost).Subrouter()
	postRouter.HandleFunc("/tasks", h.Create)

	putRouter := taskRouter.Methods(http.MethodPut).Subrouter()
	putRouter.HandleFunc("/tasks/{id}", h.Update)

	cors := gorillahandlers.CORS(
		gorillahandlers.AllowedOrigins(cfg.AllowedOrigins),
		gorillahandlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions}),
		gorillahandlers.AllowedHeaders([]string{"Content-Type", RequestIdHeader}),
		gorillahandlers.ExposedHeaders([]string{RequestIdHeader}),
	)

	recovery := gorillahandlers.RecoveryHandler(
		gorillahandlers.RecoveryLogger(logger.StandardLog(log.StandardLogOptions{ForceLevel: log.ErrorLevel})),
	)

	var handler http.Handler = cors(router)
	handler = recovery(handler)
	handler = gorillahandlers.CustomLoggingHandler(io.Discard, handler, accessLogFormatter(logger))
	return MiddlewareRequestId(handler)
}

// MiddlewareRequestId keeps a client supplied request id or generates one,
// and sets it on both the request and the response.
func MiddlewareRequestId(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIdHeader)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(RequestIdHeader, id)
		}
		rw.Header().Set(RequestIdHeader, id)

		next.ServeHTTP(rw, r)
	})
}

func accessLogFormatter(logger *log.Logger) gorillahandlers.LogFormatter {
	return func(_ io.Writer, p gorillahandlers.LogFormatterParams) {
		logger.Info("request",
			"method", p.Request.Method,
			"path", p.URL.Path,
			"status", p.StatusCode,
			"size", p.Size,
			"duration", time.Since(p.TimeStamp).Round(time.Microsecond),
			"request_id", p.Request.Header.Get(RequestIdHeader),
		)
	}
}
