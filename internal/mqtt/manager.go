// Package mqtt connects to an MQTT broker, publishes messages and routes
// subscriptions to handlers.
package mqtt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/nibzard/portfolio-go/internal/logging"
)

// ButtonTopic receives the state of dashboard button widgets.
const ButtonTopic = "iot/button"

// ErrNotOpen is returned when the manager is used before Open.
var ErrNotOpen = errors.New("mqtt manager is not open")

// Handler receives a message.
type Handler func(topic string, payload []byte)

// Options configures a Manager.
type Options struct {
	Broker   string
	ClientID string
	Username string
	Password string
	QoS      byte

	// Topic is subscribed on every connect and routed to the default
	// handler. Empty subscribes nothing.
	Topic string

	CAFile   string
	CertFile string
	KeyFile  string

	Logger *log.Logger
}

// client is the part of paho.Client the manager uses.
type client interface {
	Connect() paho.Token
	Disconnect(quiesce uint)
	IsConnected() bool
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
	Unsubscribe(topics ...string) paho.Token
}

// Manager owns one broker connection. Subscriptions survive reconnects.
type Manager struct {
	opts      Options
	logger    *log.Logger
	newClient func(*paho.ClientOptions) client

	mu       sync.Mutex
	client   client
	handlers map[string]Handler
}

// New returns a manager. Messages on opts.Topic go to fallback, or are
// logged when fallback is nil.
func New(opts Options, fallback Handler) *Manager {
	m := &Manager{
		opts:      opts,
		logger:    opts.Logger,
		newClient: func(o *paho.ClientOptions) client { return paho.NewClient(o) },
		handlers:  make(map[string]Handler),
	}
	if m.logger == nil {
		m.logger = logging.Discard()
	}
	if fallback == nil {
		fallback = m.logMessage
	}
	if opts.Topic != "" {
		m.handlers[opts.Topic] = fallback
	}
	return m
}

func (m *Manager) logMessage(topic string, payload []byte) {
	m.logger.Info("message received", "topic", topic, "payload", string(payload))
}

// Open connects to the broker and subscribes every registered topic.
func (m *Manager) Open(ctx context.Context) error {
	co, err := m.clientOptions()
	if err != nil {
		return err
	}
	c := m.newClient(co)

	m.mu.Lock()
	m.client = c
	m.mu.Unlock()

	if err := wait(ctx, c.Connect()); err != nil {
		m.mu.Lock()
		m.client = nil
		m.mu.Unlock()
		// paho keeps dialing after an abandoned wait.
		c.Disconnect(0)
		return fmt.Errorf("connect to %s: %w", m.opts.Broker, err)
	}
	m.logger.Info("connected to broker", "broker", m.opts.Broker)
	return nil
}

// Close disconnects from the broker.
func (m *Manager) Close() error {
	m.mu.Lock()
	c := m.client
	m.client = nil
	m.mu.Unlock()
	if c == nil {
		return nil
	}
	c.Disconnect(250)
	m.logger.Info("disconnected from broker", "broker", m.opts.Broker)
	return nil
}

// Publish sends payload to topic and waits for the broker to accept it.
func (m *Manager) Publish(ctx context.Context, topic string, payload []byte) error {
	c, err := m.current()
	if err != nil {
		return err
	}
	if err := wait(ctx, c.Publish(topic, m.opts.QoS, false, payload)); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	m.logger.Debug("published", "topic", topic, "bytes", len(payload))
	return nil
}

// Subscribe routes messages on topic to h. When connected the subscription
// is made right away, otherwise on the next connect.
func (m *Manager) Subscribe(ctx context.Context, topic string, h Handler) error {
	m.mu.Lock()
	m.handlers[topic] = h
	c := m.client
	m.mu.Unlock()

	if c == nil || !c.IsConnected() {
		return nil
	}
	return m.subscribe(ctx, c, topic, h)
}

// Unsubscribe stops routing topic.
func (m *Manager) Unsubscribe(ctx context.Context, topic string) error {
	m.mu.Lock()
	delete(m.handlers, topic)
	c := m.client
	m.mu.Unlock()

	if c == nil || !c.IsConnected() {
		return nil
	}
	return wait(ctx, c.Unsubscribe(topic))
}

func (m *Manager) subscribe(ctx context.Context, c client, topic string, h Handler) error {
	cb := func(_ paho.Client, msg paho.Message) {
		h(msg.Topic(), msg.Payload())
	}
	if err := wait(ctx, c.Subscribe(topic, m.opts.QoS, cb)); err != nil {
		return fmt.Errorf("subscribe to %s: %w", topic, err)
	}
	m.logger.Debug("subscribed", "topic", topic)
	return nil
}

// onConnect restores every subscription after a (re)connect.
func (m *Manager) onConnect() {
	m.mu.Lock()
	c := m.client
	handlers := make(map[string]Handler, len(m.handlers))
	for t, h := range m.handlers {
		handlers[t] = h
	}
	m.mu.Unlock()
	if c == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for topic, h := range handlers {
		if err := m.subscribe(ctx, c, topic, h); err != nil {
			m.logger.Error("subscribe failed", "topic", topic, "err", err)
		}
	}
}

func (m *Manager) current() (client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client == nil {
		return nil, ErrNotOpen
	}
	return m.client, nil
}

func (m *Manager) clientOptions() (*paho.ClientOptions, error) {
	if strings.TrimSpace(m.opts.Broker) == "" {
		return nil, errors.New("mqtt broker is not configured")
	}
	co := paho.NewClientOptions().
		AddBroker(m.opts.Broker).
		SetClientID(m.opts.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(false).
		SetOrderMatters(false).
		SetOnConnectHandler(func(paho.Client) { m.onConnect() }).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			m.logger.Warn("connection lost", "broker", m.opts.Broker, "err", err)
		})
	if m.opts.Username != "" {
		co.SetUsername(m.opts.Username)
		co.SetPassword(m.opts.Password)
	}

	if needsTLS(m.opts) {
		tc, err := tlsConfig(m.opts)
		if err != nil {
			return nil, err
		}
		co.SetTLSConfig(tc)
	}
	return co, nil
}

func needsTLS(o Options) bool {
	if o.CertFile != "" || o.KeyFile != "" || o.CAFile != "" {
		return true
	}
	u, err := url.Parse(o.Broker)
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "ssl", "tls", "mqtts", "tcps":
		return true
	}
	return false
}

// tlsConfig builds the client TLS settings. AWS IoT needs the device
// certificate and key plus the Amazon root CA.
func tlsConfig(o Options) (*tls.Config, error) {
	tc := &tls.Config{MinVersion: tls.VersionTLS12}

	if o.CAFile != "" {
		pem, err := os.ReadFile(o.CAFile)
		if err != nil {
			return nil, fmt.Errorf("read CA file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates in %s", o.CAFile)
		}
		tc.RootCAs = pool
	}

	if o.CertFile != "" || o.KeyFile != "" {
		if o.CertFile == "" || o.KeyFile == "" {
			return nil, errors.New("mqtt certificate and key must be set together")
		}
		cert, err := tls.LoadX509KeyPair(o.CertFile, o.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("load client certificate: %w", err)
		}
		tc.Certificates = []tls.Certificate{cert}
	}
	return tc, nil
}

// wait blocks until the token completes or ctx is done.
func wait(ctx context.Context, t paho.Token) error {
	select {
	case <-t.Done():
		return t.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}
