// Package sh provides the interactive operator shell.
package sh

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"

	"github.com/robotalks/vscp/pkg/sender"
	"github.com/robotalks/vscp/pkg/vscp"
)

const shellKey = "$shell"

var (
	evalOnly bool
	target   = "127.0.0.1:50001"
	rate     = sender.DefaultInterval
)

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.StringVar(&target, "target", target, "Vehicle command address.")
	flag.DurationVar(&rate, "rate", rate, "Command send interval while driving.")
}

// Shell is an ishell backed operator shell. A driven command is resent
// at Rate until stopped, otherwise the vehicle fails safe.
type Shell struct {
	Interactive bool
	Rate        time.Duration

	Shell  *ishell.Shell
	Sender *sender.Sender

	lock    sync.Mutex
	current vscp.Command
	cancel  func()
	done    chan struct{}
}

// New creates a shell sending with s.
func New(s *sender.Sender) *Shell {
	sh := &Shell{
		Interactive: !evalOnly,
		Rate:        rate,
		Shell:       ishell.New(),
		Sender:      s,
	}
	sh.Shell.Set(shellKey, sh)
	sh.updatePrompt()
	for _, cmd := range []*ishell.Cmd{&TargetCmd, &DriveCmd, &HoldCmd, &StopCmd, &StatusCmd} {
		sh.Shell.AddCmd(cmd)
	}
	return sh
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// ParseCommand parses FB LR.
func ParseCommand(args []string) (vscp.Command, error) {
	if len(args) < 2 {
		return vscp.Neutral, fmt.Errorf("FB LR required")
	}
	var vals [2]float32
	for n, arg := range args[:2] {
		val, err := strconv.ParseFloat(arg, 32)
		if err != nil {
			return vscp.Neutral, fmt.Errorf("invalid value %q: %v", arg, err)
		}
		if val < -1 || val > 1 {
			return vscp.Neutral, fmt.Errorf("value %v out of [-1, 1]", val)
		}
		vals[n] = float32(val)
	}
	return vscp.Command{ForwardBackward: vals[0], LeftRight: vals[1]}, nil
}

func (s *Shell) updatePrompt() {
	addr := "none"
	if t := s.Sender.Target(); t != nil {
		addr = t.String()
	}
	s.Shell.SetPrompt(fmt.Sprintf("[%s] > ", addr))
}

// SetTarget changes the vehicle address.
func (s *Shell) SetTarget(addr string) error {
	if err := s.Sender.SetTarget(addr); err != nil {
		return err
	}
	s.updatePrompt()
	return nil
}

// Current returns the command being streamed, neutral if stopped.
func (s *Shell) Current() vscp.Command {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.current
}

func (s *Shell) source() vscp.Command {
	return s.Current()
}

// Drive starts streaming cmd, replacing the current command.
func (s *Shell) Drive(cmd vscp.Command) error {
	if err := s.Sender.Send(cmd); err != nil {
		return err
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	s.current = cmd
	if s.cancel == nil {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		s.cancel, s.done = cancel, done
		go func() {
			defer close(done)
			s.Sender.Stream(ctx, s.Rate, s.source)
		}()
	}
	return nil
}

// Hold streams cmd for d then stops.
func (s *Shell) Hold(ctx context.Context, cmd vscp.Command, d time.Duration) error {
	if err := s.Drive(cmd); err != nil {
		return err
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
	return s.Stop()
}

// Stop stops streaming and sends neutral.
func (s *Shell) Stop() error {
	s.lock.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.current = vscp.Neutral
	s.lock.Unlock()
	if cancel != nil {
		cancel()
		<-done
		return nil
	}
	return s.Sender.Send(vscp.Neutral)
}

// Run runs args as one command, or the interactive shell.
func (s *Shell) Run(args ...string) error {
	defer s.Stop()
	if len(args) > 0 {
		return s.Shell.Process(args...)
	}
	if !s.Interactive {
		return fmt.Errorf("command expected")
	}
	s.Shell.Run()
	return nil
}

var (
	// TargetCmd sets the vehicle address.
	TargetCmd = ishell.Cmd{
		Name:    "target",
		Aliases: []string{"t"},
		Help:    "HOST:PORT",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("HOST:PORT required"))
				return
			}
			if err := ShellFrom(c).SetTarget(c.Args[0]); err != nil {
				c.Err(err)
			}
		},
	}

	// DriveCmd streams a command until stop.
	DriveCmd = ishell.Cmd{
		Name:    "drive",
		Aliases: []string{"d"},
		Help:    "FB LR, each in [-1, 1]",
		Func: func(c *ishell.Context) {
			cmd, err := ParseCommand(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			if err := ShellFrom(c).Drive(cmd); err != nil {
				c.Err(err)
			}
		},
	}

	// HoldCmd streams a command for a duration.
	HoldCmd = ishell.Cmd{
		Name:    "hold",
		Aliases: []string{"h"},
		Help:    "FB LR DURATION",
		Func: func(c *ishell.Context) {
			cmd, err := ParseCommand(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			if len(c.Args) < 3 {
				c.Err(fmt.Errorf("DURATION required"))
				return
			}
			d, err := time.ParseDuration(c.Args[2])
			if err != nil {
				c.Err(err)
				return
			}
			if err := ShellFrom(c).Hold(context.Background(), cmd, d); err != nil {
				c.Err(err)
			}
		},
	}

	// StopCmd stops streaming.
	StopCmd = ishell.Cmd{
		Name:    "stop",
		Aliases: []string{"s"},
		Help:    "",
		Func: func(c *ishell.Context) {
			if err := ShellFrom(c).Stop(); err != nil {
				c.Err(err)
			}
		},
	}

	// StatusCmd prints the target and current command.
	StatusCmd = ishell.Cmd{
		Name: "status",
		Help: "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			c.Printf("target %v, command %s\n", s.Sender.Target(), s.Current())
		},
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	s, err := sender.Dial(target)
	if err != nil {
		glog.Fatalf("target %s: %v", target, err)
	}
	defer s.Close()
	if err := New(s).Run(flag.Args()...); err != nil {
		glog.Fatal(err)
	}
}
