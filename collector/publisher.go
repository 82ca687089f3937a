package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/avast/retry-go"
	"github.com/raymondelooff/fermentation-monitor/reading"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// AMQPConfig represents the config of the Publisher; an empty DSN disables it
type AMQPConfig struct {
	Exchange string `yaml:"exchange"`
	DSN      string `yaml:"dsn"`
	TLS      bool   `yaml:"tls"`
}

// Publisher fans readings out to an AMQP topic exchange
type Publisher struct {
	config     AMQPConfig
	connection *amqp.Connection
	channel    *amqp.Channel
	mu         sync.Mutex
	logger     *zap.SugaredLogger
}

// Connect with the configured AMQP broker
func (p *Publisher) dial() error {
	var err error

	if p.config.TLS {
		p.connection, err = amqp.DialTLS(p.config.DSN, nil)
	} else {
		p.connection, err = amqp.Dial(p.config.DSN)
	}
	if err != nil {
		return fmt.Errorf("Publisher: %v", err)
	}

	p.logger.Info("Publisher: connection established")

	return nil
}

// Get a Channel for publishing
func (p *Publisher) getChannel() error {
	var err error

	p.channel, err = p.connection.Channel()
	if err != nil {
		p.logger.Errorf("Publisher: %s", err)

		return fmt.Errorf("Publisher: failed to get Channel")
	}

	p.logger.Info("Publisher: got Channel")

	return nil
}

// Declare the durable topic Exchange readings are published to
func (p *Publisher) declareExchange() error {
	p.logger.Infof("Publisher: declaring Exchange %v", p.config.Exchange)

	err := p.channel.ExchangeDeclare(
		p.config.Exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // autoDelete
		false, // internal
		false, // noWait
		nil,   // arguments
	)
	if err != nil {
		p.logger.Errorf("Publisher: %s", err)

		return fmt.Errorf("Publisher: failed to declare Exchange")
	}

	return nil
}

// Connect dials the broker and prepares the Exchange
func (p *Publisher) Connect() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.dial(); err != nil {
		return err
	}

	return retry.Do(
		func() error {
			if err := p.getChannel(); err != nil {
				return err
			}

			return p.declareExchange()
		},
		retry.Attempts(3),
		retry.LastErrorOnly(true),
	)
}

// Name identifies the Publisher in logs and metrics
func (p *Publisher) Name() string {
	return "amqp"
}

// Forward publishes the JSON record of r under the sensor's routing key
func (p *Publisher) Forward(_ context.Context, r reading.Reading, measuredAt time.Time) error {
	body, err := reading.EncodeJSON(r)
	if err != nil {
		return err
	}

	topic := NewTopic(r.SensorID)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel == nil {
		return fmt.Errorf("Publisher: %w", ErrNotConnected)
	}

	err = p.channel.Publish(
		p.config.Exchange,
		topic.Value,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Transient,
			Timestamp:    measuredAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("Publisher: %v", err)
	}

	p.logger.Debugf("Publisher: published reading to %s with key %s", p.config.Exchange, topic.Value)

	return nil
}

// Shutdown the Publisher
func (p *Publisher) Shutdown() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.logger.Info("Publisher: shutting down")

	if p.connection == nil {
		p.logger.Info("Publisher: shutdown OK")

		return nil
	}

	if err := p.connection.Close(); err != nil {
		return fmt.Errorf("AMQP connection close error: %s", err)
	}

	p.connection = nil
	p.channel = nil

	p.logger.Info("Publisher: shutdown OK")

	return nil
}

// NewPublisher creates a new Publisher
func NewPublisher(config AMQPConfig, logger *zap.SugaredLogger) *Publisher {
	return &Publisher{
		config: config,
		logger: logger,
	}
}
