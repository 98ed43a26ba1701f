package builtin_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/flowtrack/internal/queue"
	"github.com/slok/flowtrack/internal/queue/builtin"
)

func TestRegistry(t *testing.T) {
	r := builtin.Registry()

	for _, name := range []string{builtin.TaskEcho, builtin.TaskSleep, builtin.TaskFail, builtin.TaskCount} {
		assert.Contains(t, r, name)
	}
}

func TestHandlers(t *testing.T) {
	tests := map[string]struct {
		handler     queue.Handler
		args        map[string]any
		cancel      bool
		expResult   any
		expErr      string
		expProgress []map[string]any
	}{
		"Echo should return the message.": {
			handler:   builtin.Echo,
			args:      map[string]any{"message": "hello"},
			expResult: "hello",
		},

		"Sleep should wait and report the duration.": {
			handler:     builtin.Sleep,
			args:        map[string]any{"duration": "1ms"},
			expProgress: []map[string]any{{"sleeping": "1ms"}},
		},

		"Sleep should accept seconds as floats.": {
			handler:     builtin.Sleep,
			args:        map[string]any{"duration": 0.001},
			expProgress: []map[string]any{{"sleeping": "1ms"}},
		},

		"Sleep should stop on cancellation.": {
			handler:     builtin.Sleep,
			args:        map[string]any{"duration": "1h"},
			cancel:      true,
			expErr:      "context canceled",
			expProgress: []map[string]any{{"sleeping": "1h0m0s"}},
		},

		"Sleep with an invalid duration should fail.": {
			handler: builtin.Sleep,
			args:    map[string]any{"duration": "forever"},
			expErr:  `invalid "duration" argument: time: invalid duration "forever"`,
		},

		"Fail should fail with the message.": {
			handler: builtin.Fail,
			args:    map[string]any{"message": "division by zero"},
			expErr:  "division by zero",
		},

		"Fail without message should fail with the default one.": {
			handler: builtin.Fail,
			expErr:  "task failed",
		},

		"Count should report every step.": {
			handler:   builtin.Count,
			args:      map[string]any{"total": 3, "interval": "1ms"},
			expResult: 3,
			expProgress: []map[string]any{
				{"done": 1, "total": 3},
				{"done": 2, "total": 3},
				{"done": 3, "total": 3},
			},
		},

		"Count with an invalid total should fail.": {
			handler: builtin.Count,
			args:    map[string]any{"total": "many"},
			expErr:  `invalid "total" argument type string`,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)
			assert := assert.New(t)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if test.cancel {
				go func() {
					time.Sleep(10 * time.Millisecond)
					cancel()
				}()
			}

			var progress []map[string]any
			res, err := test.handler(ctx, queue.TaskContext{
				ID:       "t1",
				Name:     "test",
				Args:     test.args,
				Progress: func(info map[string]any) { progress = append(progress, info) },
			})

			if test.expErr != "" {
				require.Error(err)
				assert.Equal(test.expErr, err.Error())
			} else {
				require.NoError(err)
				assert.Equal(test.expResult, res)
			}
			assert.Equal(test.expProgress, progress)
		})
	}
}
