package repositories

import (
	"context"
	"sort"
	"sync"

	"bnta-demo/microservices/tasks-service/domain"

	"go.opentelemetry.io/otel/trace"
)

type taskDao struct {
	Id        int64
	Name      string
	Priority  string
	Completed bool
}

type taskInMemRepository struct {
	mu     sync.RWMutex
	tasks  map[int64]taskDao
	lastId int64
	tracer trace.Tracer
}

func NewTaskInMem(tracer trace.Tracer) domain.TaskRepository {
	return &taskInMemRepository{
		tasks:  make(map[int64]taskDao),
		tracer: tracer,
	}
}

func (r *taskInMemRepository) Insert(ctx context.Context, task domain.Task) (domain.Task, error) {
	_, span := r.tracer.Start(ctx, "TaskInMem.Insert")
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastId++
	task.Id = r.lastId
	r.tasks[task.Id] = toDao(task)
	return task, nil
}

func (r *taskInMemRepository) Update(ctx context.Context, task domain.Task) (domain.Task, error) {
	_, span := r.tracer.Start(ctx, "TaskInMem.Update")
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[task.Id]; !ok {
		return domain.Task{}, domain.ErrTaskNotFound()
	}
	r.tasks[task.Id] = toDao(task)
	return task, nil
}

func (r *taskInMemRepository) FindAll(ctx context.Context) (domain.Tasks, error) {
	_, span := r.tracer.Start(ctx, "TaskInMem.FindAll")
	defer span.End()

	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := make(domain.Tasks, 0, len(r.tasks))
	for _, dao := range r.tasks {
		task := fromDao(dao)
		tasks = append(tasks, &task)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Id < tasks[j].Id })
	return tasks, nil
}

func (r *taskInMemRepository) FindById(ctx context.Context, id int64) (*domain.Task, error) {
	_, span := r.tracer.Start(ctx, "TaskInMem.FindById")
	defer span.End()

	r.mu.RLock()
	defer r.mu.RUnlock()

	dao, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound()
	}
	task := fromDao(dao)
	return &task, nil
}

func toDao(task domain.Task) taskDao {
	return taskDao{
		Id:        task.Id,
		Name:      task.Name,
		Priority:  task.Priority,
		Completed: task.Completed,
	}
}

func fromDao(dao taskDao) domain.Task {
	return domain.Task{
		Id:        dao.Id,
		Name:      dao.Name,
		Priority:  dao.Priority,
		Completed: dao.Completed,
	}
}
