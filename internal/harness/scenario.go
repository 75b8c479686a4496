package harness

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/msgstore/internal/message"
	"github.com/roach88/msgstore/internal/serializer"
)

// Scenario is a store conformance case: a set of messages to record and
// the queries that must select them.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	Description string `yaml:"description"`

	// Serializer is json, yaml or gob. Defaults to json.
	Serializer string `yaml:"serializer,omitempty"`

	// Messages are inserted in order. The first message is number 1.
	Messages []MessageStep `yaml:"messages"`

	Queries []QueryStep `yaml:"queries"`
}

// MessageStep describes one stored message. Times are offsets from
// testutil.Epoch so scenarios stay reproducible.
type MessageStep struct {
	Type        string            `yaml:"type"`
	ContentType string            `yaml:"content_type"`
	Content     any               `yaml:"content"`
	Data        map[string]string `yaml:"data,omitempty"`
	Status      string            `yaml:"status,omitempty"`
	Error       *ErrorStep        `yaml:"error,omitempty"`
	Created     time.Duration     `yaml:"created"`
	Duration    time.Duration     `yaml:"duration"`
}

// ErrorStep is the failure recorded with a message.
type ErrorStep struct {
	Type    string `yaml:"type"`
	Message string `yaml:"message"`
}

// QueryStep runs one filter and lists the message numbers it must return,
// in order.
type QueryStep struct {
	Name   string `yaml:"name"`
	Filter Filter `yaml:"filter"`
	Expect []int  `yaml:"expect"`
}

// Filter is the YAML form of message.Query. Unset fields do not constrain.
type Filter struct {
	// Message selects by the content id of the numbered message.
	Message       int            `yaml:"message,omitempty"`
	CreatedFrom   *time.Duration `yaml:"created_from,omitempty"`
	CreatedTo     *time.Duration `yaml:"created_to,omitempty"`
	ContentType   *string        `yaml:"content_type,omitempty"`
	ErrorType     *string        `yaml:"error_type,omitempty"`
	Status        string         `yaml:"status,omitempty"`
	Type          string         `yaml:"type,omitempty"`
	DurationAbove *time.Duration `yaml:"duration_above,omitempty"`
	DurationBelow *time.Duration `yaml:"duration_below,omitempty"`
	Skip          int            `yaml:"skip,omitempty"`
	Take          int            `yaml:"take,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields are rejected so typos fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates a scenario document.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Serializer == "" {
		scenario.Serializer = "json"
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if _, err := serializer.ByName(s.Serializer); err != nil {
		return err
	}
	if len(s.Queries) == 0 {
		return fmt.Errorf("queries list is required and must be non-empty")
	}

	for i, m := range s.Messages {
		if _, err := message.ParseType(m.Type); err != nil {
			return fmt.Errorf("messages[%d]: %w", i, err)
		}
		if m.ContentType == "" {
			return fmt.Errorf("messages[%d]: content_type is required", i)
		}
		if m.Status != "" {
			if _, err := message.ParseStatus(m.Status); err != nil {
				return fmt.Errorf("messages[%d]: %w", i, err)
			}
		}
		if m.Error != nil && m.Error.Type == "" {
			return fmt.Errorf("messages[%d].error: type is required", i)
		}
	}

	for i, q := range s.Queries {
		if q.Name == "" {
			return fmt.Errorf("queries[%d]: name is required", i)
		}
		if q.Filter.Message < 0 || q.Filter.Message > len(s.Messages) {
			return fmt.Errorf("queries[%d]: message %d does not exist", i, q.Filter.Message)
		}
		for _, n := range q.Expect {
			if n < 1 || n > len(s.Messages) {
				return fmt.Errorf("queries[%d]: expected message %d does not exist", i, n)
			}
		}
	}

	return nil
}
