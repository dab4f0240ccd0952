package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jgoulah/chargerdash/internal/config"
	"github.com/jgoulah/chargerdash/internal/pivot"
)

// Publisher pushes all-time meter totals to MQTT and/or Home Assistant
type Publisher struct {
	client      mqtt.Client
	topicPrefix string
	haConfig    config.HAConfig
	httpClient  *http.Client
	logger      *zap.Logger
}

// New creates a publisher for whichever of MQTT and Home Assistant are enabled
func New(mqttCfg config.MQTTConfig, haCfg config.HAConfig, logger *zap.Logger) (*Publisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !mqttCfg.Enabled && !haCfg.Enabled {
		return nil, fmt.Errorf("neither MQTT nor Home Assistant is enabled in config")
	}

	if haCfg.Enabled {
		if haCfg.URL == "" {
			return nil, fmt.Errorf("Home Assistant URL is required when enabled")
		}
		if haCfg.Token == "" {
			return nil, fmt.Errorf("Home Assistant token is required when enabled")
		}
	}

	var client mqtt.Client
	if mqttCfg.Enabled {
		if mqttCfg.Broker == "" {
			return nil, fmt.Errorf("MQTT broker address is required when enabled")
		}

		opts := mqtt.NewClientOptions()
		opts.AddBroker(fmt.Sprintf("tcp://%s", mqttCfg.Broker))
		opts.SetClientID("chargerdash-" + uuid.NewString()[:8])
		opts.SetAutoReconnect(true)
		opts.SetConnectRetry(false)
		opts.SetConnectTimeout(10 * time.Second)
		if mqttCfg.Username != "" {
			opts.SetUsername(mqttCfg.Username)
		}
		if mqttCfg.Password != "" {
			opts.SetPassword(mqttCfg.Password)
		}

		client = mqtt.NewClient(opts)
		if token := client.Connect(); token.Wait() && token.Error() != nil {
			return nil, fmt.Errorf("connecting to MQTT broker: %w", token.Error())
		}
	}

	return &Publisher{
		client:      client,
		topicPrefix: mqttCfg.GetTopicPrefix(),
		haConfig:    haCfg,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		logger:      logger.With(zap.String("component", "publisher")),
	}, nil
}

var unsafeChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slug turns a meter name into a topic and entity id segment
func Slug(meter string) string {
	return strings.Trim(unsafeChars.ReplaceAllString(strings.ToLower(meter), "_"), "_")
}

// Message is one retained MQTT publication
type Message struct {
	Topic   string
	Payload string
}

// Messages returns the MQTT publications for a set of meter totals
func Messages(prefix string, metrics []pivot.MeterMetric) []Message {
	var out []Message
	for _, m := range metrics {
		base := prefix + "/" + Slug(m.Meter)
		for _, metric := range pivot.Metrics {
			out = append(out, Message{
				Topic:   base + "/" + string(metric),
				Payload: m.Display(metric),
			})
		}
	}
	return out
}

// HAState is the body of a Home Assistant state update
type HAState struct {
	State      string            `json:"state"`
	Attributes map[string]string `json:"attributes"`
}

// States returns the Home Assistant entity states for a set of meter totals,
// keyed by entity id
func States(entityPrefix string, metrics []pivot.MeterMetric) map[string]HAState {
	out := make(map[string]HAState, len(metrics)*len(pivot.Metrics))
	for _, m := range metrics {
		slug := Slug(m.Meter)
		out[entityPrefix+"_"+slug+"_total_usage_kwh"] = HAState{
			State: m.Display(pivot.TotalUsageKWh),
			Attributes: map[string]string{
				"friendly_name":       m.Meter + " " + pivot.TotalUsageKWh.Label(),
				"unit_of_measurement": "kWh",
				"device_class":        "energy",
				"state_class":         "total_increasing",
			},
		}
		out[entityPrefix+"_"+slug+"_charging_events"] = HAState{
			State: strconv.Itoa(m.ChargingEvents),
			Attributes: map[string]string{
				"friendly_name": m.Meter + " " + pivot.ChargingEvents.Label(),
				"state_class":   "total_increasing",
			},
		}
	}
	return out
}

// Publish sends every meter's totals to the enabled targets. It returns the
// number of values delivered.
func (p *Publisher) Publish(ctx context.Context, metrics []pivot.MeterMetric) (int, error) {
	sent := 0

	if p.client != nil {
		for _, msg := range Messages(p.topicPrefix, metrics) {
			token := p.client.Publish(msg.Topic, 1, true, msg.Payload)
			if !token.WaitTimeout(10 * time.Second) {
				return sent, fmt.Errorf("publishing %s: timed out", msg.Topic)
			}
			if err := token.Error(); err != nil {
				return sent, fmt.Errorf("publishing %s: %w", msg.Topic, err)
			}
			p.logger.Debug("published", zap.String("topic", msg.Topic), zap.String("payload", msg.Payload))
			sent++
		}
	}

	if p.haConfig.Enabled {
		for entity, state := range States(p.haConfig.GetEntityPrefix(), metrics) {
			if err := p.postState(ctx, entity, state); err != nil {
				return sent, fmt.Errorf("updating %s: %w", entity, err)
			}
			p.logger.Debug("updated state", zap.String("entity_id", entity), zap.String("state", state.State))
			sent++
		}
	}

	return sent, nil
}

func (p *Publisher) postState(ctx context.Context, entity string, state HAState) error {
	apiURL := fmt.Sprintf("%s/api/states/%s", strings.TrimRight(p.haConfig.URL, "/"), entity)

	body, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.haConfig.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request error: %w", err)
	}
	defer resp.Body.Close()

	// 201 when the entity is created, 200 when it is updated
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("HTTP error: status %d, response: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// Close disconnects from the MQTT broker
func (p *Publisher) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}
