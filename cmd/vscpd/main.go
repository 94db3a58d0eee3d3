package main

import (
	"context"
	"flag"

	"github.com/golang/glog"

	"github.com/robotalks/vscp/pkg/config"
	"github.com/robotalks/vscp/pkg/env"
	fx "github.com/robotalks/vscp/pkg/framework"
	"github.com/robotalks/vscp/pkg/intake"
	"github.com/robotalks/vscp/pkg/link"
	"github.com/robotalks/vscp/pkg/mqtt"
	"github.com/robotalks/vscp/pkg/pca9685"
	"github.com/robotalks/vscp/pkg/vehicle"
)

func init() {
	config.SetupFlags()
}

func main() {
	flag.Parse()
	defer glog.Flush()

	conf, err := config.NewConfig()
	if err != nil {
		glog.Fatalf("config: %v", err)
	}

	src, err := intake.ListenUDP(conf.Listen)
	if err != nil {
		glog.Fatalf("listen %s: %v", conf.Listen, err)
	}
	defer src.Close()
	glog.Infof("listening on %v", src.LocalAddr())

	dev, err := pca9685.Open(conf.I2CDevice, uint16(conf.I2CAddress))
	if err != nil {
		glog.Fatalf("open %s: %v", conf.I2CDevice, err)
	}
	defer dev.Close()

	v, err := vehicle.New(conf, src, dev)
	if err != nil {
		glog.Fatal(err)
	}
	if conf.Link.Enabled {
		var publisher link.Publisher
		if conf.MQTTURL != "" {
			id, err := env.VehicleID(conf.VehicleID)
			if err != nil {
				glog.Fatalf("vehicle id: %v", err)
			}
			q, err := mqtt.NewQueueFromURL(conf.MQTTURL)
			if err != nil {
				glog.Fatalf("mqtt: %v", err)
			}
			defer q.Close()
			publisher = mqtt.NewStatusPublisher(q, id)
			glog.Infof("link status published as %s", id)
		}
		v.Monitor = conf.Link.NewMonitor(nil, publisher)
	}

	if err := v.Setup(context.Background()); err != nil {
		glog.Fatalf("actuator setup: %v", err)
	}

	loop := fx.NewLoop().Add(v)
	loop.Interval = conf.TickInterval
	runner := fx.NewRunner().HandleSignals().Go(fx.NamedRun("control-loop", loop))
	if err := runner.Wait(); err != nil {
		glog.Errorf("stopped: %v", err)
	}
	if err := v.Shutdown(context.Background()); err != nil {
		glog.Errorf("shutdown: %v", err)
	}
}
