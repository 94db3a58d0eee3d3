package framework

import (
	"context"
	"fmt"
	"time"

	"github.com/golang/glog"
)

// PanicError carries a value recovered from a panicking iteration.
type PanicError struct {
	Value interface{}
}

// Error implements error.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Supervise runs fn repeatedly, one call per interval, until ctx is done.
// An error or a panic from one call is logged and the next call proceeds
// as usual, so the supervised task only stops through ctx.
func Supervise(ctx context.Context, name string, interval time.Duration, fn func(context.Context) error) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := supervisedCall(ctx, fn); err != nil {
			glog.Errorf("%s: %v", name, err)
		}
		if err := Sleep(ctx, interval); err != nil {
			return err
		}
	}
}

func supervisedCall(ctx context.Context, fn func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()
	return fn(ctx)
}

// Sleep waits for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
