package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"

	"github.com/golang/glog"

	fx "github.com/robotalks/vscp/pkg/framework"
	"github.com/robotalks/vscp/pkg/joystick"
	"github.com/robotalks/vscp/pkg/sender"
)

func init() {
	joystick.SetupFlags()
}

func main() {
	flag.Parse()
	defer glog.Flush()

	conf := joystick.NewConfig()
	ctl := conf.NewController()
	s, err := sender.Dial(conf.Target)
	if err != nil {
		glog.Fatalf("target %s: %v", conf.Target, err)
	}
	defer s.Close()

	stream := fx.RunFunc(func(ctx context.Context) error {
		return s.Stream(ctx, conf.Rate, ctl.Command)
	})
	err = fx.NewRunner().
		HandleSignals().
		Go(ctl, fx.NamedRun("sender", stream)).
		Wait()
	if err != nil {
		glog.Error(err)
	}
}
