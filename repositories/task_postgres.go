package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bnta-demo/microservices/tasks-service/domain"

	"github.com/charmbracelet/log"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.opentelemetry.io/otel/trace"
)

const postgresOpTimeout = 5 * time.Second

const createTasksTable = `
CREATE TABLE IF NOT EXISTS tasks (
	id        BIGSERIAL PRIMARY KEY,
	name      TEXT NOT NULL DEFAULT '',
	priority  TEXT NOT NULL DEFAULT '',
	completed BOOLEAN NOT NULL DEFAULT FALSE
);`

type TaskPostgresRepo struct {
	db     *sql.DB
	logger *log.Logger
	tracer trace.Tracer
}

// NewTaskPostgresRepo opens the pgx driver, pings the server and makes sure
// the tasks table exists.
func NewTaskPostgresRepo(ctx context.Context, dbURL string, logger *log.Logger, tracer trace.Tracer) (*TaskPostgresRepo, error) {
	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, createTasksTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tasks table: %w", err)
	}

	logger.Info("connected to postgres")
	return &TaskPostgresRepo{db: db, logger: logger, tracer: tracer}, nil
}

func (r *TaskPostgresRepo) Close() error {
	return r.db.Close()
}

func (r *TaskPostgresRepo) Insert(ctx context.Context, task domain.Task) (domain.Task, error) {
	ctx, span := r.tracer.Start(ctx, "TaskPostgresRepo.Insert")
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, postgresOpTimeout)
	defer cancel()

	const q = `
INSERT INTO tasks (name, priority, completed)
VALUES ($1, $2, $3)
RETURNING id;
`
	err := r.db.QueryRowContext(ctx, q, task.Name, task.Priority, task.Completed).Scan(&task.Id)
	if err != nil {
		r.logger.Error("insert failed", "err", err)
		return domain.Task{}, fmt.Errorf("insert task: %w", err)
	}

	r.logger.Debug("task inserted", "id", task.Id)
	return task, nil
}

func (r *TaskPostgresRepo) Update(ctx context.Context, task domain.Task) (domain.Task, error) {
	ctx, span := r.tracer.Start(ctx, "TaskPostgresRepo.Update")
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, postgresOpTimeout)
	defer cancel()

	const q = `
UPDATE tasks
SET name = $2, priority = $3, completed = $4
WHERE id = $1;
`
	res, err := r.db.ExecContext(ctx, q, task.Id, task.Name, task.Priority, task.Completed)
	if err != nil {
		r.logger.Error("update failed", "id", task.Id, "err", err)
		return domain.Task{}, fmt.Errorf("update task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Task{}, fmt.Errorf("update task: %w", err)
	}
	if n == 0 {
		return domain.Task{}, domain.ErrTaskNotFound()
	}

	r.logger.Debug("task updated", "id", task.Id)
	return task, nil
}

func (r *TaskPostgresRepo) FindAll(ctx context.Context) (domain.Tasks, error) {
	ctx, span := r.tracer.Start(ctx, "TaskPostgresRepo.FindAll")
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, postgresOpTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT id, name, priority, completed FROM tasks ORDER BY id;`)
	if err != nil {
		r.logger.Error("find all failed", "err", err)
		return nil, fmt.Errorf("find tasks: %w", err)
	}
	defer rows.Close()

	tasks := domain.Tasks{}
	for rows.Next() {
		var task domain.Task
		if err := rows.Scan(&task.Id, &task.Name, &task.Priority, &task.Completed); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, &task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskPostgresRepo) FindById(ctx context.Context, id int64) (*domain.Task, error) {
	ctx, span := r.tracer.Start(ctx, "TaskPostgresRepo.FindById")
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, postgresOpTimeout)
	defer cancel()

	var task domain.Task
	err := r.db.QueryRowContext(ctx, `SELECT id, name, priority, completed FROM tasks WHERE id = $1;`, id).
		Scan(&task.Id, &task.Name, &task.Priority, &task.Completed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTaskNotFound()
		}
		r.logger.Error("find by id failed", "id", id, "err", err)
		return nil, fmt.Errorf("find task %d: %w", id, err)
	}
	return &task, nil
}
