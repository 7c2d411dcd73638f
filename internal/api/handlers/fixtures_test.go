package handlers

import (
	"strconv"

	"github.com/haseebdoesdev/go-task-scheduler/internal/task"
)

func taskSpecFixture() task.Spec {
	return task.Spec{
		Name:            "render-frame",
		Priority:        task.PriorityHigh,
		ExecutionTimeMs: 100,
	}
}

func itoa(id int) string {
	return strconv.Itoa(id)
}
