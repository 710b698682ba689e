package domain

import (
	"bytes"
	"strings"
	"testing"
)

func TestTaskFromJSON_NullId(t *testing.T) {
	var task Task
	err := task.FromJSON(strings.NewReader(`{"id":null,"name":"Test","priority":"low","completed":false}`))
	if err != nil {
		t.Fatal(err)
	}
	if task.Id != 0 || task.Name != "Test" || task.Priority != PriorityLow {
		t.Fatalf("task=%+v", task)
	}
}

func TestTaskToJSON_Shape(t *testing.T) {
	var buf bytes.Buffer
	task := Task{Id: 3, Name: "Clean desk", Priority: PriorityLow}
	if err := task.ToJSON(&buf); err != nil {
		t.Fatal(err)
	}
	want := `{"id":3,"name":"Clean desk","priority":"low","completed":false}`
	if got := strings.TrimSpace(buf.String()); got != want {
		t.Fatalf("got %s want %s", got, want)
	}
}

func TestTasksToJSON_NilIsEmptyArray(t *testing.T) {
	var buf bytes.Buffer
	var tasks Tasks
	if err := tasks.ToJSON(&buf); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Fatalf("got %s want []", got)
	}
}
