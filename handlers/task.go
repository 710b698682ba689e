package handlers

import (
	"net/http"
	"strconv"

	"bnta-demo/microservices/tasks-service/domain"
	"bnta-demo/microservices/tasks-service/services"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type TaskHandler struct {
	tasks  *services.TaskService
	logger *log.Logger
	tracer trace.Tracer
	// bindPathId makes PUT /tasks/{id} target the path id rather than the body id.
	bindPathId bool
}

func NewTaskHandler(s *services.TaskService, logger *log.Logger, t trace.Tracer, bindPathId bool) *TaskHandler {
	return &TaskHandler{tasks: s, logger: logger, tracer: t, bindPathId: bindPathId}
}

func (h *TaskHandler) GetAll(rw http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "TasksHandler.GetAll")
	defer span.End()

	tasks, err := h.tasks.FindAll(ctx)
	if err != nil {
		writeErrorResp(err, rw, h.logger)
		return
	}

	rw.WriteHeader(http.StatusOK)
	if err := tasks.ToJSON(rw); err != nil {
		h.logger.Error("unable to convert to json", "err", err)
	}
}

// Create stores the body as a new task. Any id in the body is ignored.
func (h *TaskHandler) Create(rw http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "TasksHandler.Create")
	defer span.End()

	task := &domain.Task{}
	if err := readReq(task, r, rw); err != nil {
		h.logger.Debug("bad create request", "err", err)
		return
	}
	task.Id = 0

	created, err := h.tasks.Save(ctx, *task)
	if err != nil {
		writeErrorResp(err, rw, h.logger)
		return
	}
	span.SetAttributes(attribute.Int64("task.id", created.Id))

	writeResp(&created, http.StatusCreated, rw, h.logger)
}

// Update saves the body as sent. The path id must parse as an integer but,
// unless path binding is enabled, the body's id decides which record is
// written and any path value is accepted.
func (h *TaskHandler) Update(rw http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "TasksHandler.Update")
	defer span.End()

	pathId, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeErrorResp(domain.ErrInvalidTaskId(), rw, h.logger)
		return
	}
	span.SetAttributes(attribute.Int64("task.path_id", pathId))

	task := &domain.Task{}
	if err := readReq(task, r, rw); err != nil {
		h.logger.Debug("bad update request", "err", err)
		return
	}
	if h.bindPathId {
		if pathId <= 0 {
			writeErrorResp(domain.ErrInvalidTaskId(), rw, h.logger)
			return
		}
		task.Id = pathId
	} else if task.Id != pathId {
		h.logger.Debug("path id differs from body id", "path_id", pathId, "body_id", task.Id)
	}

	saved, err := h.tasks.Save(ctx, *task)
	if err != nil {
		writeErrorResp(err, rw, h.logger)
		return
	}

	writeResp(&saved, http.StatusOK, rw, h.logger)
}

func (h *TaskHandler) Healthz(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Content-Type", "text/plain; charset=utf-8")
	rw.WriteHeader(http.StatusOK)
	_, _ = rw.Write([]byte("ok"))
}

func (h *TaskHandler) MiddlewareContentTypeSet(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Add("Content-Type", "application/json")

		next.ServeHTTP(rw, r)
	})
}
