package repositories

import (
	"context"
	"errors"
	"time"

	"bnta-demo/microservices/tasks-service/domain"

	"github.com/charmbracelet/log"
	"github.com/sony/gobreaker/v2"
)

type breakerRepository struct {
	next domain.TaskRepository
	cb   *gobreaker.CircuitBreaker[interface{}]
}

// WithBreaker guards a backend with a circuit breaker. A missing task is an
// answer, not a failure, so it never counts against the breaker.
func WithBreaker(next domain.TaskRepository, logger *log.Logger) domain.TaskRepository {
	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        "TaskStoreCB",
		MaxRequests: 1,
		Timeout:     2 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, domain.ErrTaskNotFound())
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})
	return &breakerRepository{next: next, cb: cb}
}

func (b *breakerRepository) Insert(ctx context.Context, task domain.Task) (domain.Task, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Insert(ctx, task)
	})
	if err != nil {
		return domain.Task{}, err
	}
	return res.(domain.Task), nil
}

func (b *breakerRepository) Update(ctx context.Context, task domain.Task) (domain.Task, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Update(ctx, task)
	})
	if err != nil {
		return domain.Task{}, err
	}
	return res.(domain.Task), nil
}

func (b *breakerRepository) FindAll(ctx context.Context) (domain.Tasks, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.FindAll(ctx)
	})
	if err != nil {
		return nil, err
	}
	return res.(domain.Tasks), nil
}

func (b *breakerRepository) FindById(ctx context.Context, id int64) (*domain.Task, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.FindById(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return res.(*domain.Task), nil
}
