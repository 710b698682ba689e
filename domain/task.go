package domain

import (
	"context"
	"encoding/json"
	"io"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Task is the only persisted entity. Priority is free text; the constants
// above are the values the seed data and the web client use.
type Task struct {
	Id        int64  `bson:"_id" json:"id"`
	Name      string `bson:"name" json:"name"`
	Priority  string `bson:"priority" json:"priority"`
	Completed bool   `bson:"completed" json:"completed"`
}

type Tasks []*Task

// TaskRepository is implemented by every storage backend.
type TaskRepository interface {
	Insert(ctx context.Context, task Task) (Task, error)
	Update(ctx context.Context, task Task) (Task, error)
	FindAll(ctx context.Context) (Tasks, error)
	FindById(ctx context.Context, id int64) (*Task, error)
}

func NewTask(name, priority string, completed bool) Task {
	return Task{Name: name, Priority: priority, Completed: completed}
}

func (t *Tasks) ToJSON(w io.Writer) error {
	if *t == nil {
		*t = Tasks{}
	}
	encoder := json.NewEncoder(w)
	return encoder.Encode(t)
}

func (t *Task) ToJSON(w io.Writer) error {
	e := json.NewEncoder(w)
	return e.Encode(t)
}

func (t *Task) FromJSON(r io.Reader) error {
	d := json.NewDecoder(r)
	return d.Decode(t)
}
