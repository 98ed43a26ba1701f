// Package builtin has the task handlers available out of the box for the
// in-process task queue backend.
package builtin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/slok/flowtrack/internal/queue"
)

const (
	TaskEcho  = "echo"
	TaskSleep = "sleep"
	TaskFail  = "fail"
	TaskCount = "count"
)

// Registry returns the registry with all the builtin tasks.
func Registry() queue.Registry {
	return queue.Registry{
		TaskEcho:  Echo,
		TaskSleep: Sleep,
		TaskFail:  Fail,
		TaskCount: Count,
	}
}

// Echo returns the `message` argument.
func Echo(ctx context.Context, t queue.TaskContext) (any, error) {
	return t.Args["message"], nil
}

// Sleep waits for the `duration` argument (Go duration string or seconds).
func Sleep(ctx context.Context, t queue.TaskContext) (any, error) {
	d, err := durationArg(t.Args, "duration", time.Second)
	if err != nil {
		return nil, err
	}

	t.Progress(map[string]any{"sleeping": d.String()})

	select {
	case <-time.After(d):
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Fail always fails with the `message` argument.
func Fail(ctx context.Context, t queue.TaskContext) (any, error) {
	msg, _ := t.Args["message"].(string)
	if msg == "" {
		msg = "task failed"
	}
	return nil, errors.New(msg)
}

// Count counts up to the `total` argument waiting `interval` between steps, reporting
// the progress on each step.
func Count(ctx context.Context, t queue.TaskContext) (any, error) {
	total, err := intArg(t.Args, "total", 10)
	if err != nil {
		return nil, err
	}
	interval, err := durationArg(t.Args, "interval", 100*time.Millisecond)
	if err != nil {
		return nil, err
	}

	for i := 1; i <= total; i++ {
		select {
		case <-time.After(interval):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		t.Progress(map[string]any{"done": i, "total": total})
	}

	return total, nil
}

func durationArg(args map[string]any, key string, def time.Duration) (time.Duration, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return def, nil
	}

	switch tv := v.(type) {
	case string:
		d, err := time.ParseDuration(tv)
		if err != nil {
			return 0, fmt.Errorf("invalid %q argument: %w", key, err)
		}
		return d, nil
	case int:
		return time.Duration(tv) * time.Second, nil
	case float64:
		return time.Duration(tv * float64(time.Second)), nil
	default:
		return 0, fmt.Errorf("invalid %q argument type %T", key, v)
	}
}

func intArg(args map[string]any, key string, def int) (int, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return def, nil
	}

	switch tv := v.(type) {
	case int:
		return tv, nil
	case float64:
		return int(tv), nil
	default:
		return 0, fmt.Errorf("invalid %q argument type %T", key, v)
	}
}
