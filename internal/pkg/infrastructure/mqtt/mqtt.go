package mqtt

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/diwise/iot-bin-telemetry/internal/pkg/infrastructure/logging"
	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
)

var ErrSubscriberStopped = errors.New("subscriber stopped")

// MessageHandler is called once per message received on the subscribed topic.
type MessageHandler func(ctx context.Context, payload []byte) error

type Config struct {
	Broker   string
	Topic    string
	ClientID string
	Username string
	Password string
}

type Subscriber struct {
	client  paho.Client
	cfg     Config
	log     zerolog.Logger
	handler MessageHandler

	mu        sync.RWMutex
	connected bool

	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewSubscriber(log zerolog.Logger, cfg Config, handler MessageHandler) *Subscriber {
	s := &Subscriber{
		cfg:     cfg,
		log:     log.With().Str("broker", cfg.Broker).Str("topic", cfg.Topic).Logger(),
		handler: handler,
		stopCh:  make(chan struct{}),
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)
	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	opts.SetOnConnectHandler(func(c paho.Client) {
		s.setConnected(true)
		s.log.Info().Msg("mqtt connected")

		// the session is clean so every reconnect needs a new subscription
		if err := s.subscribe(c); err != nil {
			s.log.Error().Err(err).Msg("failed to subscribe")
		}
	})

	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		s.setConnected(false)
		s.log.Warn().Err(err).Msg("mqtt connection lost")
	})

	s.client = paho.NewClient(opts)

	return s
}

// Connect blocks until the broker accepts the connection, ctx is done or the
// subscriber is stopped.
func (s *Subscriber) Connect(ctx context.Context) error {
	select {
	case <-s.stopCh:
		return ErrSubscriberStopped
	default:
	}

	if s.IsConnected() {
		return nil
	}

	token := s.client.Connect()

	const poll = 200 * time.Millisecond
	for !token.WaitTimeout(poll) {
		select {
		case <-ctx.Done():
			s.client.Disconnect(0)
			return ctx.Err()
		case <-s.stopCh:
			s.client.Disconnect(0)
			return ErrSubscriberStopped
		default:
		}
	}

	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}

	return nil
}

func (s *Subscriber) subscribe(c paho.Client) error {
	const qos byte = 1

	token := c.Subscribe(s.cfg.Topic, qos, func(_ paho.Client, msg paho.Message) {
		s.handleMessage(msg.Topic(), msg.Payload())
	})
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("subscribe timeout for topic %s", s.cfg.Topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe to %s: %w", s.cfg.Topic, err)
	}

	s.log.Info().Msg("subscribed to mqtt topic")

	return nil
}

func (s *Subscriber) handleMessage(topic string, payload []byte) {
	logger := s.log.With().Str("message_topic", topic).Logger()
	ctx := logging.NewContextWithLogger(context.Background(), logger)

	logger.Debug().Int("size", len(payload)).Msg("received mqtt message")

	if s.handler == nil {
		return
	}

	if err := s.handler(ctx, payload); err != nil {
		logger.Error().Err(err).Msg("message handler failed")
	}
}

func (s *Subscriber) IsConnected() bool {
	s.mu.RLock()
	connected := s.connected
	s.mu.RUnlock()
	return connected && s.client.IsConnected()
}

// Disconnect stops the subscriber. It is safe to call more than once.
func (s *Subscriber) Disconnect() {
	s.stopOnce.Do(func() { close(s.stopCh) })

	if s.IsConnected() {
		s.client.Unsubscribe(s.cfg.Topic).WaitTimeout(2 * time.Second)
	}

	s.client.Disconnect(250)
	s.setConnected(false)

	s.log.Info().Msg("mqtt subscriber disconnected")
}

func (s *Subscriber) setConnected(v bool) {
	s.mu.Lock()
	s.connected = v
	s.mu.Unlock()
}
