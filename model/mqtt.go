package model

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	defaultMQTTPort        = 1883
	defaultMQTTTopicPrefix = "/binky/l298/"
)

// MQTTConfig holds the connection settings of an MQTT broker.
// All fields can be overridden by environment variables.
type MQTTConfig struct {
	Host     string `yaml:"host" env:"L298_MQTT_HOST"`
	Port     int    `yaml:"port,omitempty" env:"L298_MQTT_PORT"`
	UserName string `yaml:"username,omitempty" env:"L298_MQTT_USERNAME"`
	Password string `yaml:"password,omitempty" env:"L298_MQTT_PASSWORD"`
	ClientID string `yaml:"client-id,omitempty" env:"L298_MQTT_CLIENT_ID"`
	// Prefix of the command & state topics
	TopicPrefix string `yaml:"topic-prefix,omitempty" env:"L298_MQTT_TOPIC_PREFIX"`
}

// IsEmpty returns true when no broker is configured.
func (c *MQTTConfig) IsEmpty() bool {
	return c == nil || c.Host == ""
}

// BrokerURL returns the URL of the broker as used by MQTT clients.
func (c MQTTConfig) BrokerURL() string {
	port := c.Port
	if port == 0 {
		port = defaultMQTTPort
	}
	return "tcp://" + net.JoinHostPort(c.Host, strconv.Itoa(port))
}

// GetTopicPrefix returns the topic prefix, ending with a '/'.
func (c MQTTConfig) GetTopicPrefix() string {
	if c.TopicPrefix == "" {
		return defaultMQTTTopicPrefix
	}
	return strings.TrimSuffix(c.TopicPrefix, "/") + "/"
}

// GetClientID returns the client ID, derived from the given suffix
// when no client ID is configured.
func (c MQTTConfig) GetClientID(suffix string) string {
	if c.ClientID == "" {
		return fmt.Sprintf("l298-worker-%s", suffix)
	}
	return fmt.Sprintf("%s-%s", c.ClientID, suffix)
}

// Validate the given configuration, returning nil on ok,
// or an error upon validation issues.
func (c MQTTConfig) Validate() error {
	if c.Host == "" {
		return errors.Wrap(ValidationError, "mqtt host is empty")
	}
	if c.Port < 0 || c.Port > 65535 {
		return errors.Wrapf(ValidationError, "mqtt port %d out of range", c.Port)
	}
	return nil
}
