package services

import (
	"context"
	"errors"
	"fmt"

	"bnta-demo/microservices/tasks-service/domain"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type TaskService struct {
	tasks  domain.TaskRepository
	logger *log.Logger
	tracer trace.Tracer
}

func NewTaskService(tasks domain.TaskRepository, logger *log.Logger, tracer trace.Tracer) *TaskService {
	return &TaskService{tasks: tasks, logger: logger, tracer: tracer}
}

func (s TaskService) FindAll(ctx context.Context) (domain.Tasks, error) {
	ctx, span := s.tracer.Start(ctx, "TasksService.FindAll")
	defer span.End()

	tasks, err := s.tasks.FindAll(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Save inserts a task without an id and overwrites every field of an
// existing one. An id the store does not know is not adopted: the task is
// inserted under a freshly assigned id.
func (s TaskService) Save(ctx context.Context, task domain.Task) (domain.Task, error) {
	ctx, span := s.tracer.Start(ctx, "TasksService.Save")
	defer span.End()
	span.SetAttributes(attribute.Int64("task.id", task.Id))

	if task.Id == 0 {
		return s.insert(ctx, task)
	}

	_, err := s.tasks.FindById(ctx, task.Id)
	switch {
	case errors.Is(err, domain.ErrTaskNotFound()):
		s.logger.Debug("unknown task id, inserting as new", "id", task.Id)
		task.Id = 0
		return s.insert(ctx, task)
	case err != nil:
		span.RecordError(err)
		return domain.Task{}, fmt.Errorf("look up task %d: %w", task.Id, err)
	}

	updated, err := s.tasks.Update(ctx, task)
	if errors.Is(err, domain.ErrTaskNotFound()) {
		task.Id = 0
		return s.insert(ctx, task)
	}
	if err != nil {
		span.RecordError(err)
		return domain.Task{}, fmt.Errorf("update task %d: %w", task.Id, err)
	}
	return updated, nil
}

func (s TaskService) insert(ctx context.Context, task domain.Task) (domain.Task, error) {
	created, err := s.tasks.Insert(ctx, task)
	if err != nil {
		return domain.Task{}, fmt.Errorf("insert task: %w", err)
	}
	s.logger.Debug("task created", "id", created.Id)
	return created, nil
}
