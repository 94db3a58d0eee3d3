package mqtt

import (
	"context"
	"errors"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/robotalks/vscp/pkg/link"
	"github.com/robotalks/vscp/pkg/msgs"
)

// TopicLink is the per-vehicle topic carrying msgs.LinkStatus.
const TopicLink = "link"

// DefaultPublishTimeout bounds connecting and publishing.
const DefaultPublishTimeout = 10 * time.Second

// ErrTimeout is returned when the broker does not acknowledge in time.
var ErrTimeout = errors.New("mqtt timeout")

// StatusPublisher announces the link address as a retained message on
// <vehicle-id>/link. It implements link.Publisher.
type StatusPublisher struct {
	Queue     *Queue
	VehicleID string
	Timeout   time.Duration
	Now       func() time.Time
}

// NewStatusPublisher creates a StatusPublisher.
func NewStatusPublisher(q *Queue, vehicleID string) *StatusPublisher {
	return &StatusPublisher{
		Queue:     q,
		VehicleID: vehicleID,
		Timeout:   DefaultPublishTimeout,
		Now:       time.Now,
	}
}

// Topic returns the topic, without the queue prefix, status goes to.
func (p *StatusPublisher) Topic() string {
	return p.VehicleID + "/" + TopicLink
}

// Message builds the message for status.
func (p *StatusPublisher) Message(status link.Status) *msgs.LinkStatus {
	m := &msgs.LinkStatus{
		VehicleId: p.VehicleID,
		Interface: status.Interface,
		State:     link.Connected.String(),
		Timestamp: p.Now().UnixNano() / int64(time.Millisecond),
	}
	if status.Address != nil {
		m.Address = status.Address.String()
	}
	return m
}

// Publish implements link.Publisher.
func (p *StatusPublisher) Publish(ctx context.Context, status link.Status) error {
	payload, err := p.Message(status).Encode()
	if err != nil {
		return err
	}
	if !p.Queue.Client.IsConnected() {
		if err := p.wait(ctx, p.Queue.Connect()); err != nil {
			return fmt.Errorf("connect: %w", err)
		}
	}
	return p.wait(ctx, p.Queue.PubWith(p.Topic(), payload, 1, true))
}

func (p *StatusPublisher) wait(ctx context.Context, token paho.Token) error {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}
	if deadline, ok := ctx.Deadline(); ok {
		if d := time.Until(deadline); d < timeout {
			timeout = d
		}
	}
	if !token.WaitTimeout(timeout) {
		return ErrTimeout
	}
	return token.Error()
}
