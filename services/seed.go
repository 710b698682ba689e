package services

import (
	"context"
	"fmt"

	"bnta-demo/microservices/tasks-service/domain"
)

// SeedTasks are inserted by Seed, in this order.
var SeedTasks = []domain.Task{
	domain.NewTask("Walk dog", domain.PriorityMedium, false),
	domain.NewTask("Buy milk", domain.PriorityHigh, false),
	domain.NewTask("Clean desk", domain.PriorityLow, false),
}

// Seed inserts the sample tasks. It is not idempotent: running it against a
// store that already holds them adds another copy of each.
func (s TaskService) Seed(ctx context.Context) (domain.Tasks, error) {
	ctx, span := s.tracer.Start(ctx, "TasksService.Seed")
	defer span.End()

	seeded := make(domain.Tasks, 0, len(SeedTasks))
	for _, task := range SeedTasks {
		created, err := s.tasks.Insert(ctx, task)
		if err != nil {
			span.RecordError(err)
			return seeded, fmt.Errorf("seed %q: %w", task.Name, err)
		}
		seeded = append(seeded, &created)
	}

	s.logger.Info("seeded sample tasks", "count", len(seeded))
	return seeded, nil
}
