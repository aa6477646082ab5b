package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

type phase int

const (
	phaseBefore phase = iota
	phaseMain
	phaseAfter
)

// step is either an action or, when action is nil, a join point.
type step struct {
	action Action
}

// SubTest is one segment of a Test with before, main and after
// phases that run strictly in that order.
type SubTest struct {
	phases [3][]step
}

func (s *SubTest) add(p phase, action Action, wait bool) {
	if wait {
		s.phases[p] = append(s.phases[p],
			step{}, step{action: action}, step{})
		return
	}
	s.phases[p] = append(s.phases[p], step{action: action})
}

func (s *SubTest) pushSyncWait(p phase) {
	s.phases[p] = append(s.phases[p], step{})
}

func (s *SubTest) execute(ctx context.Context) error {
	for _, steps := range s.phases {
		if err := runPhase(ctx, steps); err != nil {
			return err
		}
	}
	return nil
}

// runPhase starts consecutive actions together and joins them at
// every join point and at the end of the phase. A failed batch
// stops the phase; its siblings see a cancelled context.
func runPhase(ctx context.Context, steps []step) error {
	g, gctx := errgroup.WithContext(ctx)
	pending := 0

	for _, s := range steps {
		if s.action == nil {
			if pending == 0 {
				continue
			}
			if err := g.Wait(); err != nil {
				return err
			}
			g, gctx = errgroup.WithContext(ctx)
			pending = 0
			continue
		}

		action, actx := s.action, gctx
		g.Go(func() error {
			return call(actx, action)
		})
		pending++
	}

	// Wait also releases the group's context when nothing is
	// pending.
	return g.Wait()
}

// call runs an action and turns a panic into an error so a broken
// action fails its case instead of the whole process.
func call(ctx context.Context, action Action) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("action panicked: %v", r)
		}
	}()
	return action(ctx)
}
