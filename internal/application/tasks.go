package application

import (
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
	"golang.org/x/exp/slog"
)

// backgroundTasks runs the detached legs of event handling.
// A panicking task is logged and does not take the process down.
type backgroundTasks struct {
	wg  conc.WaitGroup
	log *slog.Logger
}

func newBackgroundTasks(log *slog.Logger) *backgroundTasks {
	return &backgroundTasks{log: log}
}

func (t *backgroundTasks) Go(name string, fn func()) {
	t.wg.Go(func() {
		var catcher panics.Catcher
		catcher.Try(fn)
		if r := catcher.Recovered(); r != nil {
			t.log.Error("Background task panicked",
				slog.String("task", name),
				slog.String("panic", r.String()),
			)
		}
	})
}

// Wait blocks until every started task has finished
func (t *backgroundTasks) Wait() {
	t.wg.Wait()
}
