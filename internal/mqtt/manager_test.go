package mqtt

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

type fakeToken struct {
	err  error
	done chan struct{}
}

func doneToken(err error) *fakeToken {
	t := &fakeToken{err: err, done: make(chan struct{})}
	close(t.done)
	return t
}

func (t *fakeToken) Wait() bool                     { <-t.done; return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{}          { return t.done }
func (t *fakeToken) Error() error                   { return t.err }

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 0 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 1 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

type published struct {
	topic   string
	payload []byte
}

type fakeClient struct {
	opts       *paho.ClientOptions
	connectErr error
	connectTok paho.Token

	mu           sync.Mutex
	connected    bool
	disconnected bool
	subs         map[string]paho.MessageHandler
	pubs         []published
}

func (f *fakeClient) Connect() paho.Token {
	if f.connectTok != nil {
		return f.connectTok
	}
	if f.connectErr != nil {
		return doneToken(f.connectErr)
	}
	f.mu.Lock()
	f.connected = true
	f.mu.Unlock()
	if f.opts.OnConnect != nil {
		f.opts.OnConnect(nil)
	}
	return doneToken(nil)
}

func (f *fakeClient) Disconnect(uint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = false
	f.disconnected = true
}

func (f *fakeClient) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakeClient) Publish(topic string, _ byte, _ bool, payload interface{}) paho.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pubs = append(f.pubs, published{topic: topic, payload: payload.([]byte)})
	return doneToken(nil)
}

func (f *fakeClient) Subscribe(topic string, _ byte, cb paho.MessageHandler) paho.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs[topic] = cb
	return doneToken(nil)
}

func (f *fakeClient) Unsubscribe(topics ...string) paho.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range topics {
		delete(f.subs, t)
	}
	return doneToken(nil)
}

func (f *fakeClient) deliver(topic, payload string) {
	f.mu.Lock()
	cb := f.subs[topic]
	f.mu.Unlock()
	if cb != nil {
		cb(nil, fakeMessage{topic: topic, payload: []byte(payload)})
	}
}

func newFakeManager(opts Options, fallback Handler) (*Manager, *fakeClient) {
	fc := &fakeClient{subs: map[string]paho.MessageHandler{}}
	m := New(opts, fallback)
	m.newClient = func(o *paho.ClientOptions) client {
		fc.opts = o
		return fc
	}
	return m, fc
}

func TestOpenSubscribesDefaultTopic(t *testing.T) {
	var got []string
	m, fc := newFakeManager(Options{Broker: "tcp://localhost:1883", Topic: "iot/#"}, func(topic string, payload []byte) {
		got = append(got, topic+"="+string(payload))
	})

	if err := m.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, ok := fc.subs["iot/#"]; !ok {
		t.Fatalf("default topic was not subscribed: %v", fc.subs)
	}
	fc.deliver("iot/#", "21.5")
	if len(got) != 1 || got[0] != "iot/#=21.5" {
		t.Errorf("handler calls: got %v", got)
	}

	if err := m.Close(); err != nil {
		t.Fatal(err)
	}
	if !fc.disconnected {
		t.Error("Close should disconnect")
	}
}

func TestPublish(t *testing.T) {
	m, fc := newFakeManager(Options{Broker: "tcp://localhost:1883"}, nil)
	ctx := context.Background()

	if err := m.Publish(ctx, ButtonTopic, []byte("True")); !errors.Is(err, ErrNotOpen) {
		t.Errorf("before Open: got %v, want ErrNotOpen", err)
	}
	if err := m.Open(ctx); err != nil {
		t.Fatal(err)
	}
	if err := m.Publish(ctx, ButtonTopic, []byte("True")); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(fc.pubs) != 1 || fc.pubs[0].topic != ButtonTopic || string(fc.pubs[0].payload) != "True" {
		t.Errorf("published: got %+v", fc.pubs)
	}
}

func TestSubscribeBeforeAndAfterOpen(t *testing.T) {
	m, fc := newFakeManager(Options{Broker: "tcp://localhost:1883"}, nil)
	ctx := context.Background()

	var early, late int
	m.Subscribe(ctx, "a", func(string, []byte) { early++ })
	if len(fc.subs) != 0 {
		t.Fatal("subscribing before Open should wait for the connection")
	}
	m.Open(ctx)
	m.Subscribe(ctx, "b", func(string, []byte) { late++ })

	fc.deliver("a", "x")
	fc.deliver("b", "y")
	if early != 1 || late != 1 {
		t.Errorf("handler calls: early=%d late=%d", early, late)
	}

	m.Unsubscribe(ctx, "b")
	fc.deliver("b", "y")
	if late != 1 {
		t.Error("unsubscribed topic still delivered")
	}
}

func TestOpenFailure(t *testing.T) {
	m, fc := newFakeManager(Options{Broker: "tcp://localhost:1883"}, nil)
	fc.connectErr = errors.New("refused")
	if err := m.Open(context.Background()); err == nil {
		t.Fatal("expected connect error")
	}
	if err := m.Publish(context.Background(), "t", nil); !errors.Is(err, ErrNotOpen) {
		t.Errorf("after failed Open: got %v", err)
	}

	empty, _ := newFakeManager(Options{}, nil)
	if err := empty.Open(context.Background()); err == nil {
		t.Error("a missing broker should fail")
	}
}

func TestOpenCancelledWhileConnecting(t *testing.T) {
	m, fc := newFakeManager(Options{Broker: "tcp://localhost:1883"}, nil)
	fc.connectTok = &fakeToken{done: make(chan struct{})}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := m.Open(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Open: got %v, want context.Canceled", err)
	}
	if !fc.disconnected {
		t.Error("an abandoned connect should be torn down")
	}
	if err := m.Publish(context.Background(), "t", nil); !errors.Is(err, ErrNotOpen) {
		t.Errorf("after cancelled Open: got %v", err)
	}
}

func TestWaitHonorsContext(t *testing.T) {
	tok := &fakeToken{done: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := wait(ctx, tok); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestNeedsTLS(t *testing.T) {
	tests := []struct {
		opts Options
		want bool
	}{
		{Options{Broker: "tcp://localhost:1883"}, false},
		{Options{Broker: "ssl://abc.iot.us-east-1.amazonaws.com:8883"}, true},
		{Options{Broker: "mqtts://broker:8883"}, true},
		{Options{Broker: "tcp://broker:1883", CAFile: "ca.pem"}, true},
	}
	for _, tt := range tests {
		if got := needsTLS(tt.opts); got != tt.want {
			t.Errorf("needsTLS(%+v): got %v, want %v", tt.opts, got, tt.want)
		}
	}
}

func TestTLSConfigErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := tlsConfig(Options{CertFile: "cert.pem"}); err == nil {
		t.Error("certificate without key should fail")
	}
	if _, err := tlsConfig(Options{CAFile: filepath.Join(dir, "missing.pem")}); err == nil {
		t.Error("missing CA file should fail")
	}
	bad := filepath.Join(dir, "bad.pem")
	os.WriteFile(bad, []byte("not a certificate"), 0644)
	if _, err := tlsConfig(Options{CAFile: bad}); err == nil {
		t.Error("CA file without certificates should fail")
	}
	tc, err := tlsConfig(Options{})
	if err != nil || tc == nil {
		t.Errorf("plain TLS: got (%v, %v)", tc, err)
	}
}
