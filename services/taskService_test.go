package services

import (
	"context"
	"errors"
	"testing"

	"bnta-demo/microservices/tasks-service/domain"
	"bnta-demo/microservices/tasks-service/logging"
	"bnta-demo/microservices/tasks-service/repositories"
	"bnta-demo/microservices/tasks-service/tracing"
)

func newTestService() *TaskService {
	repo := repositories.NewTaskInMem(tracing.Noop())
	return NewTaskService(repo, logging.Discard(), tracing.Noop())
}

func TestFindAll_Empty(t *testing.T) {
	s := newTestService()

	tasks, err := s.FindAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 0 {
		t.Fatalf("expected no tasks before seeding, got %d", len(tasks))
	}
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	s := newTestService()

	seeded, err := s.Seed(ctx)
	if err != nil {
		t.Fatal(err)
	}

	tasks, err := s.FindAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 3 || len(seeded) != 3 {
		t.Fatalf("tasks=%d seeded=%d want 3", len(tasks), len(seeded))
	}

	want := []struct{ name, priority string }{
		{"Walk dog", "medium"},
		{"Buy milk", "high"},
		{"Clean desk", "low"},
	}
	for i, w := range want {
		got := tasks[i]
		if got.Name != w.name || got.Priority != w.priority || got.Completed {
			t.Fatalf("task %d = %+v, want %s/%s not completed", i, got, w.name, w.priority)
		}
		if got.Id != seeded[i].Id {
			t.Fatalf("task %d id=%d seeded id=%d", i, got.Id, seeded[i].Id)
		}
	}
}

func TestSeed_NotIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestService()

	if _, err := s.Seed(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Seed(ctx); err != nil {
		t.Fatal(err)
	}

	tasks, _ := s.FindAll(ctx)
	if len(tasks) != 6 {
		t.Fatalf("len=%d want 6", len(tasks))
	}
}

func TestSeed_DoesNotMutateTemplates(t *testing.T) {
	s := newTestService()
	if _, err := s.Seed(context.Background()); err != nil {
		t.Fatal(err)
	}
	for _, task := range SeedTasks {
		if task.Id != 0 {
			t.Fatalf("seed template %q got id %d", task.Name, task.Id)
		}
	}
}

func TestSave_InsertWithoutId(t *testing.T) {
	ctx := context.Background()
	s := newTestService()

	created, err := s.Save(ctx, domain.NewTask("Test", domain.PriorityLow, false))
	if err != nil {
		t.Fatal(err)
	}
	if created.Id == 0 {
		t.Fatalf("expected assigned id")
	}
}

func TestSave_DuplicateNamesGetDistinctIds(t *testing.T) {
	ctx := context.Background()
	s := newTestService()

	a, err := s.Save(ctx, domain.NewTask("Test", domain.PriorityLow, false))
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.Save(ctx, domain.NewTask("Test", domain.PriorityLow, false))
	if err != nil {
		t.Fatal(err)
	}
	if a.Id == b.Id {
		t.Fatalf("duplicate ids %d", a.Id)
	}
}

func TestSave_OverwritesExisting(t *testing.T) {
	ctx := context.Background()
	s := newTestService()
	created, _ := s.Save(ctx, domain.NewTask("Walk dog", domain.PriorityMedium, false))

	updated, err := s.Save(ctx, domain.Task{Id: created.Id, Name: "Walk cat", Priority: "", Completed: true})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Id != created.Id {
		t.Fatalf("id changed: %d -> %d", created.Id, updated.Id)
	}

	tasks, _ := s.FindAll(ctx)
	if len(tasks) != 1 {
		t.Fatalf("len=%d want 1", len(tasks))
	}
	// full replacement: the empty priority is stored as sent
	if got := *tasks[0]; got.Name != "Walk cat" || got.Priority != "" || !got.Completed {
		t.Fatalf("stored=%+v", got)
	}
}

func TestSave_UnknownIdInsertsFresh(t *testing.T) {
	ctx := context.Background()
	s := newTestService()
	first, _ := s.Save(ctx, domain.NewTask("Buy milk", domain.PriorityHigh, false))

	created, err := s.Save(ctx, domain.Task{Id: 99, Name: "Clean desk", Priority: domain.PriorityLow})
	if err != nil {
		t.Fatal(err)
	}
	if created.Id == 99 || created.Id == first.Id || created.Id == 0 {
		t.Fatalf("unexpected id %d", created.Id)
	}
}

type brokenRepo struct{ domain.TaskRepository }

var errStoreDown = errors.New("store down")

func (brokenRepo) FindAll(context.Context) (domain.Tasks, error) {
	return nil, errStoreDown
}

func (brokenRepo) FindById(context.Context, int64) (*domain.Task, error) {
	return nil, errStoreDown
}

func (brokenRepo) Insert(context.Context, domain.Task) (domain.Task, error) {
	return domain.Task{}, errStoreDown
}

func TestStoreErrorsPropagate(t *testing.T) {
	ctx := context.Background()
	s := NewTaskService(brokenRepo{}, logging.Discard(), tracing.Noop())

	if _, err := s.FindAll(ctx); !errors.Is(err, errStoreDown) {
		t.Fatalf("find all err=%v", err)
	}
	if _, err := s.Save(ctx, domain.Task{Id: 1}); !errors.Is(err, errStoreDown) {
		t.Fatalf("save err=%v", err)
	}
	if _, err := s.Seed(ctx); !errors.Is(err, errStoreDown) {
		t.Fatalf("seed err=%v", err)
	}
}
