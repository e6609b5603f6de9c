// Package mqtt publishes monitored results to an MQTT broker.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"cloudeng.io/logging/ctxlog"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/thurmanmarka/sunwindow"
)

type Publisher struct {
	client      mqtt.Client
	topicPrefix string
	enabled     bool
}

type PublisherConfig struct {
	Broker      string
	ClientID    string // a random "sunwindow-<uuid>" when empty
	Username    string
	Password    string
	TopicPrefix string
	Enabled     bool

	// ConnectTimeout bounds the initial connection, DefaultConnectTimeout
	// when zero. Reconnects after that run in the background.
	ConnectTimeout time.Duration
}

const DefaultConnectTimeout = 10 * time.Second

// State is the retained JSON document published under <prefix>/<location>/state.
type State struct {
	Location  string            `json:"location"`
	Latitude  float64           `json:"latitude"`
	Longitude float64           `json:"longitude"`
	Result    sunwindow.Result  `json:"result"`
	Next      []sunwindow.Event `json:"next,omitempty"`
	Updated   time.Time         `json:"updated"`
}

// ClientID returns id, or a fresh unique id if it is empty.
func ClientID(id string) string {
	if id != "" {
		return id
	}
	return "sunwindow-" + uuid.NewString()
}

func NewPublisher(ctx context.Context, cfg PublisherConfig) (*Publisher, error) {
	if !cfg.Enabled {
		return &Publisher{enabled: false}, nil
	}
	logger := ctxlog.Logger(ctx).With("broker", cfg.Broker)
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(ClientID(cfg.ClientID)).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetConnectTimeout(timeout).
		SetConnectionLostHandler(func(c mqtt.Client, err error) {
			logger.Warn("mqtt connection lost", "error", err)
		}).
		SetOnConnectHandler(func(c mqtt.Client) {
			logger.Info("mqtt connected")
		})

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()

	// With connect retry the token only completes once connected.
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-token.Done():
	case <-timer.C:
		client.Disconnect(0)
		return nil, fmt.Errorf("failed to connect to MQTT broker %s: no connection after %v", cfg.Broker, timeout)
	case <-ctx.Done():
		client.Disconnect(0)
		return nil, fmt.Errorf("failed to connect to MQTT broker %s: %w", cfg.Broker, ctx.Err())
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}

	return &Publisher{
		client:      client,
		topicPrefix: cfg.TopicPrefix,
		enabled:     true,
	}, nil
}

// Topics returns the per-field topics and payloads for a result. Fields for
// events that were not found are omitted.
func Topics(prefix, location string, r sunwindow.Result) map[string]string {
	base := prefix + "/" + location + "/"
	out := map[string]string{
		base + "visible":    strconv.FormatBool(r.IsVisible),
		base + "query_time": strconv.FormatInt(r.QueryTime, 10),
	}
	if r.HasRise {
		out[base+"rise_time"] = strconv.FormatInt(r.RiseTime, 10)
		out[base+"rise_azimuth"] = strconv.FormatFloat(r.RiseAz, 'f', 2, 64)
	}
	if r.HasSet {
		out[base+"set_time"] = strconv.FormatInt(r.SetTime, 10)
		out[base+"set_azimuth"] = strconv.FormatFloat(r.SetAz, 'f', 2, 64)
	}
	return out
}

// NewState builds the retained state document for a result.
func NewState(location string, c sunwindow.Coordinates, r sunwindow.Result) State {
	return State{
		Location:  location,
		Latitude:  c.Lat,
		Longitude: c.Lon,
		Result:    r,
		Next:      r.Succeeding(),
		Updated:   time.Unix(r.QueryTime, 0).UTC(),
	}
}

// Publish sends the per-field values and the retained JSON state.
func (p *Publisher) Publish(ctx context.Context, location string, c sunwindow.Coordinates, r sunwindow.Result) error {
	if !p.enabled {
		return nil
	}
	logger := ctxlog.Logger(ctx)

	for topic, payload := range Topics(p.topicPrefix, location, r) {
		token := p.client.Publish(topic, 0, false, payload)
		token.Wait()
		if token.Error() != nil {
			logger.Warn("mqtt publish failed", "topic", topic, "error", token.Error())
		}
	}

	state, err := json.Marshal(NewState(location, c, r))
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	token := p.client.Publish(p.topicPrefix+"/"+location+"/state", 0, true, state)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("failed to publish state: %w", token.Error())
	}
	return nil
}

func (p *Publisher) IsConnected() bool {
	if !p.enabled {
		return false
	}
	return p.client.IsConnected()
}

func (p *Publisher) Close() {
	if p.enabled && p.client != nil {
		p.client.Disconnect(1000)
	}
}
