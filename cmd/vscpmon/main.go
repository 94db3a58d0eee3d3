package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/vscp/pkg/config"
	fx "github.com/robotalks/vscp/pkg/framework"
	"github.com/robotalks/vscp/pkg/mqtt"
	"github.com/robotalks/vscp/pkg/msgs"
)

var (
	mqttURL = config.Defaults().MQTTURL
)

func init() {
	if val := os.Getenv(config.EnvMQTTURL); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func main() {
	flag.Parse()
	defer glog.Flush()

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		glog.Fatal(err)
	}
	defer q.Close()

	q.Sub("+/"+mqtt.TopicLink, func(topic string, payload []byte) {
		status, err := msgs.DecodeLinkStatus(payload)
		if err != nil {
			glog.Warningf("%s: bad message: %v", topic, err)
			return
		}
		at := time.Unix(0, status.Timestamp*int64(time.Millisecond))
		fmt.Printf("%s %s: %s %s %s\n", at.Format(time.RFC3339),
			strings.TrimSuffix(topic, "/"+mqtt.TopicLink),
			status.Interface, status.State, status.Address)
	})
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		glog.Fatalf("connect %s: %v", mqttURL, token.Error())
	}

	wait := fx.RunFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	fx.NewRunner().HandleSignals().Go(wait).Wait()
}
