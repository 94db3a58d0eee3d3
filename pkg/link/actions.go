package link

import (
	"context"
	"fmt"
	"strings"

	"github.com/golang/glog"

	fx "github.com/robotalks/vscp/pkg/framework"
)

// Operations reported in ActionError.
const (
	OpQuery   = "query"
	OpRecover = "recover"
	OpPublish = "publish"
)

// ActionError is a failed query, recovery or publish.
type ActionError struct {
	Op  string
	Err error
}

// Error implements error.
func (e *ActionError) Error() string {
	return fmt.Sprintf("link %s: %v", e.Op, e.Err)
}

// Unwrap returns the cause.
func (e *ActionError) Unwrap() error {
	return e.Err
}

// Recoverer restarts the modem connection.
type Recoverer interface {
	Recover(ctx context.Context) error
}

// Publisher announces a newly connected link.
type Publisher interface {
	Publish(ctx context.Context, status Status) error
}

// PublishFunc is the func form of Publisher.
type PublishFunc func(ctx context.Context, status Status) error

// Publish implements Publisher.
func (f PublishFunc) Publish(ctx context.Context, status Status) error {
	return f(ctx, status)
}

// CommandRecoverer stops then starts the modem connection with external
// commands. Start is attempted even if stop fails.
type CommandRecoverer struct {
	Runner Runner
	Stop   CommandLine
	Start  CommandLine
}

// Recover implements Recoverer.
func (r *CommandRecoverer) Recover(ctx context.Context) error {
	var errs fx.AggregatedError
	for _, cmd := range []CommandLine{r.Stop, r.Start} {
		if len(cmd) == 0 {
			continue
		}
		errs.Add(runLogged(ctx, r.Runner, cmd))
	}
	return errs.Aggregate()
}

// CommandPublisher runs an external publish command.
type CommandPublisher struct {
	Runner  Runner
	Command CommandLine
}

// Publish implements Publisher.
func (p *CommandPublisher) Publish(ctx context.Context, status Status) error {
	return runLogged(ctx, p.Runner, p.Command)
}

// Publishers publishes to all and aggregates errors.
type Publishers []Publisher

// Publish implements Publisher.
func (p Publishers) Publish(ctx context.Context, status Status) error {
	var errs fx.AggregatedError
	for _, pub := range p {
		errs.Add(pub.Publish(ctx, status))
	}
	return errs.Aggregate()
}

func runLogged(ctx context.Context, r Runner, cmd CommandLine) error {
	out, err := cmd.Run(ctx, r)
	if text := strings.TrimSpace(string(out)); text != "" {
		glog.Infof("link: %s: %s", cmd, text)
	}
	return err
}
