package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"bnta-demo/microservices/tasks-service/domain"

	"github.com/charmbracelet/log"
	"github.com/gocql/gocql"
	"go.opentelemetry.io/otel/trace"
)

// Lightweight transactions can lose races under concurrent inserts; each
// loss re-reads the sequence row.
const maxSequenceAttempts = 16

type TaskCassandraRepo struct {
	session *gocql.Session
	logger  *log.Logger
	tracer  trace.Tracer
}

// NewTaskCassandraRepo connects to the cluster, creates the keyspace and
// tables when missing and returns a repository bound to the keyspace.
func NewTaskCassandraRepo(ctx context.Context, hosts []string, keyspace string, logger *log.Logger, tracer trace.Tracer) (*TaskCassandraRepo, error) {
	cluster := gocql.NewCluster(hosts...)
	cluster.Keyspace = "system"
	cluster.Consistency = gocql.Quorum
	cluster.Timeout = 5 * time.Second

	logger.Info("connecting to cassandra", "hosts", hosts)

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("connect to cassandra: %w", err)
	}
	err = ensureKeyspaceExists(ctx, session, keyspace)
	session.Close()
	if err != nil {
		return nil, fmt.Errorf("ensure keyspace %s: %w", keyspace, err)
	}

	cluster.Keyspace = keyspace
	session, err = cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("connect to keyspace %s: %w", keyspace, err)
	}

	if err := ensureTablesExist(ctx, session); err != nil {
		session.Close()
		return nil, fmt.Errorf("ensure tables: %w", err)
	}

	logger.Info("connected to cassandra", "keyspace", keyspace)
	return &TaskCassandraRepo{session: session, logger: logger, tracer: tracer}, nil
}

func (r *TaskCassandraRepo) Close() {
	r.session.Close()
}

func ensureKeyspaceExists(ctx context.Context, session *gocql.Session, keyspace string) error {
	query := fmt.Sprintf(`
	CREATE KEYSPACE IF NOT EXISTS %s
	WITH replication = {
		'class': 'SimpleStrategy',
		'replication_factor': 1
	};`, keyspace)
	return session.Query(query).WithContext(ctx).Exec()
}

func ensureTablesExist(ctx context.Context, session *gocql.Session) error {
	tasks := `
	CREATE TABLE IF NOT EXISTS tasks (
		id BIGINT PRIMARY KEY,
		name TEXT,
		priority TEXT,
		completed BOOLEAN
	);`
	if err := session.Query(tasks).WithContext(ctx).Exec(); err != nil {
		return err
	}

	sequences := `
	CREATE TABLE IF NOT EXISTS task_ids (
		name TEXT PRIMARY KEY,
		last_id BIGINT
	);`
	return session.Query(sequences).WithContext(ctx).Exec()
}

// nextId advances the sequence row with compare-and-set and returns the new value.
func (r *TaskCassandraRepo) nextId(ctx context.Context) (int64, error) {
	for attempt := 0; attempt < maxSequenceAttempts; attempt++ {
		var last int64
		err := r.session.Query(`SELECT last_id FROM task_ids WHERE name = ?`, taskSequenceName).
			WithContext(ctx).
			Scan(&last)

		if errors.Is(err, gocql.ErrNotFound) {
			applied, err := r.session.Query(`INSERT INTO task_ids (name, last_id) VALUES (?, ?) IF NOT EXISTS`, taskSequenceName, int64(1)).
				WithContext(ctx).
				MapScanCAS(map[string]interface{}{})
			if err != nil {
				return 0, err
			}
			if applied {
				return 1, nil
			}
			continue
		}
		if err != nil {
			return 0, err
		}

		applied, err := r.session.Query(`UPDATE task_ids SET last_id = ? WHERE name = ? IF last_id = ?`, last+1, taskSequenceName, last).
			WithContext(ctx).
			MapScanCAS(map[string]interface{}{})
		if err != nil {
			return 0, err
		}
		if applied {
			return last + 1, nil
		}
	}
	return 0, fmt.Errorf("allocate task id: gave up after %d attempts", maxSequenceAttempts)
}

func (r *TaskCassandraRepo) Insert(ctx context.Context, task domain.Task) (domain.Task, error) {
	ctx, span := r.tracer.Start(ctx, "TaskCassandraRepo.Insert")
	defer span.End()

	id, err := r.nextId(ctx)
	if err != nil {
		r.logger.Error("insert failed", "err", err)
		return domain.Task{}, fmt.Errorf("insert task: %w", err)
	}
	task.Id = id

	err = r.session.Query(
		`INSERT INTO tasks (id, name, priority, completed) VALUES (?, ?, ?, ?)`,
		task.Id, task.Name, task.Priority, task.Completed,
	).WithContext(ctx).Exec()
	if err != nil {
		r.logger.Error("insert failed", "id", task.Id, "err", err)
		return domain.Task{}, fmt.Errorf("insert task: %w", err)
	}

	r.logger.Debug("task inserted", "id", task.Id)
	return task, nil
}

func (r *TaskCassandraRepo) Update(ctx context.Context, task domain.Task) (domain.Task, error) {
	ctx, span := r.tracer.Start(ctx, "TaskCassandraRepo.Update")
	defer span.End()

	applied, err := r.session.Query(
		`UPDATE tasks SET name = ?, priority = ?, completed = ? WHERE id = ? IF EXISTS`,
		task.Name, task.Priority, task.Completed, task.Id,
	).WithContext(ctx).MapScanCAS(map[string]interface{}{})
	if err != nil {
		r.logger.Error("update failed", "id", task.Id, "err", err)
		return domain.Task{}, fmt.Errorf("update task: %w", err)
	}
	if !applied {
		return domain.Task{}, domain.ErrTaskNotFound()
	}

	r.logger.Debug("task updated", "id", task.Id)
	return task, nil
}

func (r *TaskCassandraRepo) FindAll(ctx context.Context) (domain.Tasks, error) {
	ctx, span := r.tracer.Start(ctx, "TaskCassandraRepo.FindAll")
	defer span.End()

	iter := r.session.Query(`SELECT id, name, priority, completed FROM tasks`).WithContext(ctx).Iter()

	tasks := domain.Tasks{}
	var task domain.Task
	for iter.Scan(&task.Id, &task.Name, &task.Priority, &task.Completed) {
		t := task
		tasks = append(tasks, &t)
	}
	if err := iter.Close(); err != nil {
		r.logger.Error("find all failed", "err", err)
		return nil, fmt.Errorf("find tasks: %w", err)
	}

	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Id < tasks[j].Id })
	return tasks, nil
}

func (r *TaskCassandraRepo) FindById(ctx context.Context, id int64) (*domain.Task, error) {
	ctx, span := r.tracer.Start(ctx, "TaskCassandraRepo.FindById")
	defer span.End()

	var task domain.Task
	err := r.session.Query(`SELECT id, name, priority, completed FROM tasks WHERE id = ?`, id).
		WithContext(ctx).
		Scan(&task.Id, &task.Name, &task.Priority, &task.Completed)
	if err != nil {
		if errors.Is(err, gocql.ErrNotFound) {
			return nil, domain.ErrTaskNotFound()
		}
		r.logger.Error("find by id failed", "id", id, "err", err)
		return nil, fmt.Errorf("find task %d: %w", id, err)
	}
	return &task, nil
}
