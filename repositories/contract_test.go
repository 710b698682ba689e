package repositories

import (
	"context"
	"errors"
	"math"
	"testing"

	"bnta-demo/microservices/tasks-service/domain"
	"bnta-demo/microservices/tasks-service/tracing"
)

// checkRepositoryContract exercises behaviour every backend shares. It only
// relies on records it creates, so it can run against a non-empty database.
func checkRepositoryContract(t *testing.T, repo domain.TaskRepository) {
	t.Helper()
	ctx := context.Background()

	before, err := repo.FindAll(ctx)
	if err != nil {
		t.Fatalf("find all: %v", err)
	}

	a, err := repo.Insert(ctx, domain.NewTask("Test", domain.PriorityLow, false))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	b, err := repo.Insert(ctx, domain.NewTask("Test", domain.PriorityLow, false))
	if err != nil {
		t.Fatalf("insert duplicate: %v", err)
	}
	if a.Id == 0 || b.Id == 0 || a.Id == b.Id {
		t.Fatalf("ids not distinct: %d %d", a.Id, b.Id)
	}
	for _, old := range before {
		if old.Id == a.Id || old.Id == b.Id {
			t.Fatalf("id %d reused", old.Id)
		}
	}

	after, err := repo.FindAll(ctx)
	if err != nil {
		t.Fatalf("find all: %v", err)
	}
	if len(after) != len(before)+2 {
		t.Fatalf("len=%d want %d", len(after), len(before)+2)
	}

	a.Name = "Test updated"
	a.Priority = domain.PriorityHigh
	a.Completed = true
	if _, err := repo.Update(ctx, a); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := repo.FindById(ctx, a.Id)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if *got != a {
		t.Fatalf("got %+v want %+v", *got, a)
	}

	missing := domain.Task{Id: math.MaxInt64, Name: "ghost"}
	if _, err := repo.Update(ctx, missing); !errors.Is(err, domain.ErrTaskNotFound()) {
		t.Fatalf("update missing: err=%v", err)
	}
	if _, err := repo.FindById(ctx, math.MaxInt64); !errors.Is(err, domain.ErrTaskNotFound()) {
		t.Fatalf("find missing: err=%v", err)
	}
}

func TestInMem_Contract(t *testing.T) {
	checkRepositoryContract(t, NewTaskInMem(tracing.Noop()))
}
