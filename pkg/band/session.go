package band

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/buger/jsonparser"
	"github.com/sirupsen/logrus"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/srg/neuroband/internal/packet"
	"github.com/srg/neuroband/internal/replay"
	"github.com/srg/neuroband/internal/ring"
)

// State is the session lifecycle state. Transitions cycle strictly
// Disconnected → Connecting → Connected → Disconnected.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Defaults applied by Options.withDefaults.
const (
	DefaultDetectTimeout  = 2 * time.Second
	DefaultBufferCapacity = 256
	DefaultQueueSize      = 256
)

// Options configures a session. The zero value of any field selects its
// default; a negative BufferCapacity fails construction.
type Options struct {
	// DetectTimeout bounds the wait for identifying control data before
	// the baseline variant is assumed.
	DetectTimeout time.Duration

	// BufferCapacity is the fixed capacity of each per-channel sample
	// buffer.
	BufferCapacity int

	// QueueSize is the capacity of the notification queue between the
	// transport callbacks and the decode loop. When saturated the oldest
	// pending event is dropped, never the writer blocked.
	QueueSize int

	// MockDataset is the CSV dataset path for mock-mode sessions.
	MockDataset string
}

func (o *Options) withDefaults() Options {
	out := Options{}
	if o != nil {
		out = *o
	}
	if out.DetectTimeout == 0 {
		out.DetectTimeout = DefaultDetectTimeout
	}
	if out.BufferCapacity == 0 {
		out.BufferCapacity = DefaultBufferCapacity
	}
	if out.QueueSize <= 0 {
		out.QueueSize = DefaultQueueSize
	}
	return out
}

var (
	eegIndex = indexMap(EEGUUIDs[:])
	ppgIndex = indexMap(PPGUUIDs[:])
)

func indexMap(ids []string) map[string]int {
	m := make(map[string]int, len(ids))
	for i, id := range ids {
		m[id] = i
	}
	return m
}

// Session owns one connection to the headband: the transport link, the
// per-channel sample buffers, the control info accumulator and the decode
// loop. It is safe for concurrent use by one connecting/disconnecting
// caller plus any number of snapshot readers.
type Session struct {
	logger *logrus.Logger

	transport Transport
	hooks     Hooks
	opts      Options
	mock      bool

	state atomic.Int32

	mu             sync.Mutex // guards the per-connection fields below
	link           Link
	loopCancel     context.CancelFunc
	replayer       *replay.Engine
	disconnectOnce *sync.Once
	det            *detector
	records        []replay.Record

	loopWg sync.WaitGroup
	events chan SampleEvent

	infoMu sync.Mutex
	info   *orderedmap.OrderedMap[string, string]
	frag   bytes.Buffer

	eegBufs   [5]*ring.Buffer
	ppgBufs   [3]*ring.Buffer
	accelBufs [3]*ring.Buffer
	gyroBufs  [3]*ring.Buffer
}

// NewSession creates a session driving live hardware through the given
// transport.
func NewSession(transport Transport, hooks Hooks, opts *Options, logger *logrus.Logger) (*Session, error) {
	if transport == nil {
		return nil, fmt.Errorf("transport is required; use NewMockSession for hardware-free sessions")
	}
	return newSession(transport, hooks, opts, logger, false)
}

// NewMockSession creates a session that replays the recorded dataset at
// the given path instead of talking to hardware. The dataset is loaded
// on the first Connect.
func NewMockSession(datasetPath string, hooks Hooks, opts *Options, logger *logrus.Logger) (*Session, error) {
	o := Options{}
	if opts != nil {
		o = *opts
	}
	o.MockDataset = datasetPath
	return newSession(nil, hooks, &o, logger, true)
}

func newSession(transport Transport, hooks Hooks, opts *Options, logger *logrus.Logger, mock bool) (*Session, error) {
	if logger == nil {
		logger = logrus.New()
	}
	o := opts.withDefaults()

	s := &Session{
		logger:    logger,
		transport: transport,
		hooks:     hooks,
		opts:      o,
		mock:      mock,
		events:    make(chan SampleEvent, o.QueueSize),
		info:      orderedmap.New[string, string](),
		det:       newDetector(logger),
	}

	alloc := func(bufs []*ring.Buffer) error {
		for i := range bufs {
			b, err := ring.New(o.BufferCapacity)
			if err != nil {
				return err
			}
			bufs[i] = b
		}
		return nil
	}
	for _, bufs := range [][]*ring.Buffer{s.eegBufs[:], s.ppgBufs[:], s.accelBufs[:], s.gyroBufs[:]} {
		if err := alloc(bufs); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// Capabilities reports what the detected hardware variant supports.
// Before detection resolves it reflects the unknown model's baseline
// decoding profile.
func (s *Session) Capabilities() Capabilities {
	m := s.variant()
	return Capabilities{
		Model:   m,
		EEGBits: m.EEGBits(),
		HasPPG:  m.HasPPG(),
		Preset:  m.Preset(),
		Mock:    s.mock,
	}
}

// Info returns a copy of the accumulated control info map.
func (s *Session) Info() map[string]string {
	s.infoMu.Lock()
	defer s.infoMu.Unlock()
	out := make(map[string]string, s.info.Len())
	for pair := s.info.Oldest(); pair != nil; pair = pair.Next() {
		out[pair.Key] = pair.Value
	}
	return out
}

// EEGSamples returns an oldest-to-newest snapshot of the buffered samples
// for one EEG channel (0..4).
func (s *Session) EEGSamples(channel int) ([]float64, error) {
	if channel < 0 || channel >= len(s.eegBufs) {
		return nil, fmt.Errorf("eeg channel %d out of range [0,%d)", channel, len(s.eegBufs))
	}
	return s.eegBufs[channel].Snapshot(), nil
}

// PPGSamples returns a snapshot of the buffered samples for one PPG
// channel (0..2).
func (s *Session) PPGSamples(channel int) ([]float64, error) {
	if channel < 0 || channel >= len(s.ppgBufs) {
		return nil, fmt.Errorf("ppg channel %d out of range [0,%d)", channel, len(s.ppgBufs))
	}
	return s.ppgBufs[channel].Snapshot(), nil
}

// AccelSamples returns a snapshot of the buffered accelerometer samples
// for one axis (AxisX, AxisY, AxisZ).
func (s *Session) AccelSamples(axis int) ([]float64, error) {
	if axis < 0 || axis >= len(s.accelBufs) {
		return nil, fmt.Errorf("axis %d out of range [0,%d)", axis, len(s.accelBufs))
	}
	return s.accelBufs[axis].Snapshot(), nil
}

// GyroSamples returns a snapshot of the buffered gyroscope samples for
// one axis.
func (s *Session) GyroSamples(axis int) ([]float64, error) {
	if axis < 0 || axis >= len(s.gyroBufs) {
		return nil, fmt.Errorf("axis %d out of range [0,%d)", axis, len(s.gyroBufs))
	}
	return s.gyroBufs[axis].Snapshot(), nil
}

// Connect runs the full connection sequence: link establishment, the
// control-first subscription, the bounded model-detection wait,
// best-effort data subscriptions and the streaming handshake. It is a
// no-op unless the session is currently Disconnected. On a fatal error
// the state reverts to Disconnected and the error is returned; there is
// no automatic retry.
func (s *Session) Connect(ctx context.Context) error {
	if !s.state.CompareAndSwap(int32(StateDisconnected), int32(StateConnecting)) {
		return nil
	}

	s.mu.Lock()
	s.det = newDetector(s.logger)
	s.disconnectOnce = new(sync.Once)
	s.mu.Unlock()

	if s.mock {
		return s.connectMock()
	}

	s.logger.WithField("service", ServiceUUID).Info("Connecting to headband...")
	link, err := s.transport.Discover(ctx, ServiceUUID)
	if err != nil {
		s.state.Store(int32(StateDisconnected))
		return fmt.Errorf("%w: %v", ErrTransportUnavailable, err)
	}
	link.SetDisconnectHandler(func() { s.teardown(true) })
	s.logger.WithField("endpoints", len(link.Endpoints())).Debug("Link established")

	cancel := s.startDecodeLoop()
	s.mu.Lock()
	s.link = link
	s.loopCancel = cancel
	s.mu.Unlock()

	// The control endpoint streams first: model detection feeds on it,
	// so its subscription failure is fatal.
	if err := link.Subscribe(ControlUUID, s.notifyFunc(ControlUUID)); err != nil {
		s.abort(link, cancel)
		return fmt.Errorf("%w: control endpoint subscription: %v", ErrTransportUnavailable, err)
	}

	det := s.detectorRef()
	if err := det.Wait(s.opts.DetectTimeout); err != nil {
		s.logger.WithField("timeout", s.opts.DetectTimeout).Warn("No identifying control data; assuming baseline variant")
	}
	model := det.Model()

	for _, id := range s.optionalEndpoints(model) {
		if err := link.Subscribe(id, s.notifyFunc(id)); err != nil {
			s.logger.WithFields(logrus.Fields{
				"endpoint": id,
				"error":    err,
			}).Warn("Optional endpoint unavailable")
		}
	}

	if err := s.handshake(link, model); err != nil {
		s.abort(link, cancel)
		return err
	}

	s.state.Store(int32(StateConnected))
	s.logger.WithField("model", model.String()).Info("Session connected")
	return nil
}

// Disconnect tears down the session: the replay timer (mock mode), the
// decode loop and the transport link, in that order, then fires the
// OnDisconnected hook. Idempotent: while already Disconnected it does
// nothing and never re-fires the hook.
func (s *Session) Disconnect() {
	s.teardown(false)
}

func (s *Session) teardown(unsolicited bool) {
	if !s.state.CompareAndSwap(int32(StateConnected), int32(StateDisconnected)) {
		return
	}

	s.mu.Lock()
	link := s.link
	s.link = nil
	cancel := s.loopCancel
	s.loopCancel = nil
	rep := s.replayer
	s.replayer = nil
	once := s.disconnectOnce
	s.mu.Unlock()

	if rep != nil {
		rep.Stop()
	}
	if cancel != nil {
		cancel()
	}
	s.loopWg.Wait()
	if link != nil {
		if err := link.Close(); err != nil {
			s.logger.WithError(err).Warn("Link close failed during teardown")
		}
	}

	if unsolicited {
		s.logger.Warn("Transport dropped the link; session disconnected")
	} else {
		s.logger.Info("Session disconnected")
	}

	if once != nil && s.hooks.OnDisconnected != nil {
		once.Do(s.hooks.OnDisconnected)
	}
}

// abort reverts a partially established connection without firing the
// disconnect observer: the session never reached Connected.
func (s *Session) abort(link Link, cancel context.CancelFunc) {
	s.mu.Lock()
	s.link = nil
	s.loopCancel = nil
	s.mu.Unlock()

	cancel()
	s.loopWg.Wait()
	if err := link.Close(); err != nil {
		s.logger.WithError(err).Debug("Link close failed during connect abort")
	}
	s.state.Store(int32(StateDisconnected))
}

func (s *Session) connectMock() error {
	s.mu.Lock()
	records := s.records
	s.mu.Unlock()

	if records == nil {
		recs, err := replay.LoadDataset(s.opts.MockDataset)
		if err != nil {
			s.state.Store(int32(StateDisconnected))
			return fmt.Errorf("%w: %v", ErrMockDataUnavailable, err)
		}
		records = recs
	}

	// No control stream to observe: resolve straight to the baseline.
	s.detectorRef().lockDefault()

	cancel := s.startDecodeLoop()
	eng := replay.NewEngine(records, s.feedReplay, s.replayActive, s.logger)

	s.mu.Lock()
	s.records = records
	s.loopCancel = cancel
	s.replayer = eng
	s.mu.Unlock()

	s.state.Store(int32(StateConnected))
	eng.Start()
	s.logger.WithField("rows", len(records)).Info("Mock session connected")
	return nil
}

func (s *Session) feedReplay(channel int, payload []byte) {
	s.enqueue(SampleEvent{EndpointID: EEGUUIDs[channel], Data: payload})
}

func (s *Session) replayActive() bool {
	return s.mock && s.State() == StateConnected
}

func (s *Session) detectorRef() *detector {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.det
}

func (s *Session) variant() Model {
	return s.detectorRef().Model()
}

// optionalEndpoints lists the data endpoints subscribed on a best-effort
// basis, PPG omitted entirely on the PPG-less baseline.
func (s *Session) optionalEndpoints(model Model) []string {
	ids := []string{TelemetryUUID, AccelerometerUUID, GyroscopeUUID}
	if model.HasPPG() {
		ids = append(ids, PPGUUIDs[:]...)
	}
	return append(ids, EEGUUIDs[:]...)
}

// handshake bootstraps streaming: halt, model preset, start, resume,
// then the protocol-version request. Any write failure is fatal.
func (s *Session) handshake(link Link, model Model) error {
	for _, cmd := range []string{CmdHalt, model.Preset(), CmdStart, CmdResume, CmdVersion} {
		if err := link.Write(ControlUUID, packet.Command(cmd)); err != nil {
			return fmt.Errorf("%w: handshake command %q: %v", ErrTransportUnavailable, cmd, err)
		}
	}
	return nil
}

// notifyFunc adapts an endpoint's notifications into queued events. The
// payload is copied: transport buffers are only valid for the duration
// of the callback.
func (s *Session) notifyFunc(endpointID string) func([]byte) {
	return func(data []byte) {
		buf := make([]byte, len(data))
		copy(buf, data)
		s.enqueue(SampleEvent{EndpointID: endpointID, Data: buf})
	}
}

// enqueue never blocks the transport callback: when the queue is
// saturated the oldest pending event is dropped to make room.
func (s *Session) enqueue(ev SampleEvent) {
	select {
	case s.events <- ev:
		return
	default:
	}
	select {
	case <-s.events:
	default:
	}
	select {
	case s.events <- ev:
	default:
	}
}

// startDecodeLoop drains any events left over from a previous connection
// and starts the single consumer goroutine.
func (s *Session) startDecodeLoop() context.CancelFunc {
	for {
		select {
		case <-s.events:
			continue
		default:
		}
		break
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.loopWg.Add(1)
	go s.runDecodeLoop(ctx)
	return cancel
}

func (s *Session) runDecodeLoop(ctx context.Context) {
	defer s.loopWg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-s.events:
			s.dispatch(ev)
		}
	}
}

func (s *Session) dispatch(ev SampleEvent) {
	switch ev.EndpointID {
	case TelemetryUUID:
		if pct, ok := packet.Battery(ev.Data); ok && s.hooks.OnBattery != nil {
			s.hooks.OnBattery(pct)
		}
	case AccelerometerUUID:
		s.dispatchMotion(ev.Data, packet.AccelScale, s.accelBufs[:], s.hooks.OnAccelerometer)
	case GyroscopeUUID:
		s.dispatchMotion(ev.Data, packet.GyroScale, s.gyroBufs[:], s.hooks.OnGyroscope)
	case ControlUUID:
		s.handleControl(ev.Data)
	default:
		if ch, ok := eegIndex[ev.EndpointID]; ok {
			s.dispatchEEG(ch, ev.Data)
		} else if ch, ok := ppgIndex[ev.EndpointID]; ok {
			s.dispatchPPG(ch, ev.Data)
		} else {
			s.logger.WithField("endpoint", ev.EndpointID).Debug("Dropping notification from unknown endpoint")
		}
	}
}

func (s *Session) dispatchMotion(data []byte, scale float64, bufs []*ring.Buffer, hook func(Triple)) {
	for _, t := range packet.Motion(data, scale) {
		bufs[AxisX].Write(t.X)
		bufs[AxisY].Write(t.Y)
		bufs[AxisZ].Write(t.Z)
		if hook != nil {
			hook(t)
		}
	}
}

func (s *Session) dispatchEEG(channel int, data []byte) {
	var samples []uint16
	if s.variant().EEGBits() == 14 {
		samples = packet.EEG14(data)
	} else {
		samples = packet.EEG12(data)
	}
	if len(samples) == 0 {
		return
	}
	for _, v := range samples {
		s.eegBufs[channel].Write(float64(v))
	}
	if s.hooks.OnEEG != nil {
		s.hooks.OnEEG(channel, samples)
	}
}

func (s *Session) dispatchPPG(channel int, data []byte) {
	samples := packet.PPG(data)
	if len(samples) == 0 {
		return
	}
	for _, v := range samples {
		s.ppgBufs[channel].Write(float64(v))
	}
	if s.hooks.OnPPG != nil {
		s.hooks.OnPPG(channel, samples)
	}
}

// handleControl accumulates the control text stream and completes a
// fragment at every closing brace, tolerating objects split across
// notifications and multiple objects within one notification.
func (s *Session) handleControl(data []byte) {
	for _, b := range packet.ControlChunk(data) {
		s.frag.WriteByte(b)
		if b == '}' {
			s.completeFragment()
		}
	}
}

// completeFragment parses the accumulated fragment as one JSON object
// and merges it key-wise into the info map. A malformed fragment is
// discarded without surfacing an error; accumulation restarts from empty
// either way.
func (s *Session) completeFragment() {
	frag := append([]byte(nil), s.frag.Bytes()...)
	s.frag.Reset()

	err := jsonparser.ObjectEach(frag, func(key, value []byte, _ jsonparser.ValueType, _ int) error {
		s.infoMu.Lock()
		s.info.Set(string(key), string(value))
		s.infoMu.Unlock()
		return nil
	})
	if err != nil {
		s.logger.WithError(err).Debug("Discarding malformed control fragment")
		return
	}

	s.detectorRef().Observe(s.infoValues())
	if s.hooks.OnControl != nil {
		s.hooks.OnControl(string(frag))
	}
}

func (s *Session) infoValues() []string {
	s.infoMu.Lock()
	defer s.infoMu.Unlock()
	values := make([]string, 0, s.info.Len())
	for pair := s.info.Oldest(); pair != nil; pair = pair.Next() {
		values = append(values, pair.Value)
	}
	return values
}
