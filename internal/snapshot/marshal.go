package snapshot

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/roach88/arcade/internal/record"
)

// marshalTasks converts a task list to JSON TEXT for storage.
func marshalTasks(tasks []record.Task) (string, error) {
	if tasks == nil {
		tasks = []record.Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return "", fmt.Errorf("marshal tasks: %w", err)
	}
	return string(data), nil
}

func unmarshalTasks(data string) ([]record.Task, error) {
	tasks := []record.Task{}
	if data == "" {
		return tasks, nil
	}
	if err := json.Unmarshal([]byte(data), &tasks); err != nil {
		return nil, fmt.Errorf("unmarshal tasks: %w", err)
	}
	return tasks, nil
}

// marshalActions converts a session action list to JSON TEXT.
func marshalActions(actions []string) (string, error) {
	if actions == nil {
		actions = []string{}
	}
	data, err := json.Marshal(actions)
	if err != nil {
		return "", fmt.Errorf("marshal actions: %w", err)
	}
	return string(data), nil
}

func unmarshalActions(data string) ([]string, error) {
	actions := []string{}
	if data == "" {
		return actions, nil
	}
	if err := json.Unmarshal([]byte(data), &actions); err != nil {
		return nil, fmt.Errorf("unmarshal actions: %w", err)
	}
	return actions, nil
}
