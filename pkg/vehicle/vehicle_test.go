package vehicle

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/vscp/pkg/config"
	fx "github.com/robotalks/vscp/pkg/framework"
	"github.com/robotalks/vscp/pkg/intake"
	"github.com/robotalks/vscp/pkg/vscp"
)

var operator = &net.UDPAddr{IP: net.IPv4(192, 168, 1, 10), Port: 40000}

type datagram struct {
	data []byte
	from net.Addr
}

type queueSource struct {
	queue []datagram
}

func (s *queueSource) push(cmd vscp.Command) {
	s.queue = append(s.queue, datagram{cmd.Bytes(), operator})
}

func (s *queueSource) Recv(buf []byte) (int, net.Addr, error) {
	if len(s.queue) == 0 {
		return 0, nil, intake.ErrWouldBlock
	}
	d := s.queue[0]
	s.queue = s.queue[1:]
	return copy(buf, d.data), d.from, nil
}

type write struct {
	channel int
	off     uint16
}

type fakeDriver struct {
	ops    []string
	writes []write
	fail   map[int]error
}

func (d *fakeDriver) SetChannel(channel int, on, off uint16) error {
	d.writes = append(d.writes, write{channel, off})
	return d.fail[channel]
}

func (d *fakeDriver) op(name string) error {
	d.ops = append(d.ops, name)
	return nil
}

func (d *fakeDriver) Reset() error                   { return d.op("reset") }
func (d *fakeDriver) Configure(freqHz float64) error { return d.op("configure") }
func (d *fakeDriver) SetAll(on, off uint16) error    { return d.op("set-all") }
func (d *fakeDriver) Wake() error                    { return d.op("wake") }
func (d *fakeDriver) Sleep() error                   { return d.op("sleep") }

func (d *fakeDriver) take() []write {
	w := d.writes
	d.writes = nil
	return w
}

type fixture struct {
	src     *queueSource
	drv     *fakeDriver
	vehicle *Vehicle
	loop    *fx.Loop
	clock   time.Time
}

func newFixture(t *testing.T, conf config.Config) *fixture {
	conf.Actuator.WriteDelay = 0
	f := &fixture{
		src:   &queueSource{},
		drv:   &fakeDriver{},
		clock: time.Unix(1000, 0),
	}
	v, err := New(&conf, f.src, f.drv)
	require.NoError(t, err)
	f.vehicle = v
	f.loop = fx.NewLoop()
	f.loop.Now = func() time.Time { return f.clock }
	f.loop.Add(v)
	return f
}

func (f *fixture) step(advance time.Duration) []write {
	f.clock = f.clock.Add(advance)
	f.loop.Step(context.Background())
	return f.drv.take()
}

func TestVehicleFailSafe(t *testing.T) {
	f := newFixture(t, config.Defaults())
	neutral := []write{{3, 614}, {1, 614}}
	driving := []write{{3, 511}, {1, 716}}

	// no command yet.
	require.Equal(t, neutral, f.step(0))

	f.src.push(vscp.Command{ForwardBackward: 0.5, LeftRight: -0.5})
	require.Equal(t, driving, f.step(20*time.Millisecond))
	require.Equal(t, driving, f.step(100*time.Millisecond))
	require.Equal(t, driving, f.step(100*time.Millisecond))
	require.Equal(t, neutral, f.step(100*time.Millisecond))

	state := f.vehicle.State()
	require.True(t, state.Active.IsNeutral())
	require.Equal(t, time.Unix(1000, 0).Add(20*time.Millisecond), state.LastUpdate)

	f.src.push(vscp.Command{ForwardBackward: 1, LeftRight: 1})
	require.Equal(t, []write{{3, 819}, {1, 819}}, f.step(time.Second))
}

func TestVehicleDrainUsesLatest(t *testing.T) {
	f := newFixture(t, config.Defaults())
	f.src.push(vscp.Command{ForwardBackward: 1})
	f.src.queue = append(f.src.queue, datagram{[]byte{1, 2, 3, 4, 5}, operator})
	f.src.push(vscp.Command{ForwardBackward: -1})
	f.src.queue = append(f.src.queue, datagram{[]byte("garbage-datagram"), operator})

	require.Equal(t, []write{{3, 614}, {1, 409}}, f.step(0))
	require.Empty(t, f.src.queue)
	stats := f.vehicle.Intake.Stats()
	require.Equal(t, uint64(4), stats.Received)
	require.Equal(t, uint64(2), stats.Valid)
}

func TestVehiclePeerFilter(t *testing.T) {
	conf := config.Defaults()
	conf.Peer = "192.168.1.99"
	f := newFixture(t, conf)
	f.src.push(vscp.Command{ForwardBackward: 1})
	require.Equal(t, []write{{3, 614}, {1, 614}}, f.step(0))

	conf.Peer = "not-an-ip"
	_, err := New(&conf, f.src, f.drv)
	require.Error(t, err)
}

func TestVehicleWriteFailureKeepsLoop(t *testing.T) {
	f := newFixture(t, config.Defaults())
	f.drv.fail = map[int]error{3: errors.New("i2c: remote I/O error")}
	f.src.push(vscp.Command{ForwardBackward: 0.5})
	require.Equal(t, []write{{3, 614}, {1, 716}}, f.step(0))
	require.Equal(t, []write{{3, 614}, {1, 716}}, f.step(20*time.Millisecond))
}

func TestVehicleSetupShutdown(t *testing.T) {
	f := newFixture(t, config.Defaults())
	require.NoError(t, f.vehicle.Setup(context.Background()))
	require.Equal(t, []string{"reset", "configure"}, f.drv.ops)

	require.NoError(t, f.vehicle.Shutdown(context.Background()))
	require.Equal(t, []write{{3, 614}, {1, 614}}, f.drv.take())
	require.Equal(t, []string{"reset", "configure", "sleep"}, f.drv.ops)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Equal(t, context.Canceled, f.vehicle.Setup(ctx))
}

type countingRunnable struct {
	runs int32
}

func (r *countingRunnable) Run(ctx context.Context) error {
	atomic.AddInt32(&r.runs, 1)
	<-ctx.Done()
	return ctx.Err()
}

func TestVehicleMonitorRunsWithLoop(t *testing.T) {
	f := newFixture(t, config.Defaults())
	mon := &countingRunnable{}
	f.vehicle.Monitor = mon
	loop := fx.NewLoop()
	loop.Interval = time.Millisecond
	loop.Add(f.vehicle)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.Equal(t, context.DeadlineExceeded, loop.Run(ctx))
	require.Equal(t, int32(1), atomic.LoadInt32(&mon.runs))
	require.NotEmpty(t, f.drv.writes)
}
