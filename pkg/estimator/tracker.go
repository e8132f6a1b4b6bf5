package estimator

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// RunEvent is one line of the Moser-Tardos run trace
type RunEvent struct {
	Run       int   `json:"run"`
	Worker    int   `json:"worker"`
	Rounds    int   `json:"rounds"`
	Resamples int   `json:"resamples"`
	Converged bool  `json:"converged"`
	Timestamp int64 `json:"timestamp"`
}

// RunTracker writes RunEvents as JSON lines. A nil tracker discards events.
// The first write error is kept and reported by Close.
type RunTracker struct {
	mu      sync.Mutex
	file    *os.File
	encoder *json.Encoder
	err     error
	dropped int
}

func NewRunTracker(filename string) (*RunTracker, error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("could not create run trace %s: %w", filename, err)
	}

	return &RunTracker{
		file:    file,
		encoder: json.NewEncoder(file),
	}, nil
}

func (rt *RunTracker) LogRun(run, worker int, r LLLRun) {
	if rt == nil {
		return
	}

	event := RunEvent{
		Run:       run,
		Worker:    worker,
		Rounds:    r.Rounds,
		Resamples: r.Resamples,
		Converged: r.Converged,
		Timestamp: time.Now().Unix(),
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.err != nil {
		rt.dropped++
		return
	}
	if err := rt.encoder.Encode(event); err != nil {
		rt.err = fmt.Errorf("writing run %d: %w", run, err)
		rt.dropped++
	}
}

// Close closes the trace file and returns the first write or close error
func (rt *RunTracker) Close() error {
	if rt == nil || rt.file == nil {
		return nil
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()
	closeErr := rt.file.Close()
	rt.file = nil
	if rt.err != nil {
		return fmt.Errorf("run trace lost %d events: %w", rt.dropped, rt.err)
	}
	return closeErr
}
