package gravity

import (
	"encoding/json"
	"log"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTSource receives gravity samples published on an MQTT topic by one of
// the producers (gravity_producer, nmea_producer). It keeps only the most
// recent sample; Next hands it out once and then reports "no reading" until
// the next message arrives, so a stalled producer never replays stale tilt.
type MQTTSource struct {
	client mqtt.Client

	mu     sync.Mutex
	latest *Sample
}

// NewMQTTSource connects to the broker and subscribes to the gravity topic.
func NewMQTTSource(broker, clientID, topic string) (*MQTTSource, error) {
	src := &MQTTSource{}

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}

	token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var s Sample
		if err := json.Unmarshal(msg.Payload(), &s); err != nil {
			log.Printf("gravity: sample unmarshal error: %v", err)
			return
		}
		src.mu.Lock()
		src.latest = &s
		src.mu.Unlock()
	})
	token.Wait()
	if token.Error() != nil {
		client.Disconnect(250)
		return nil, token.Error()
	}

	src.client = client
	return src, nil
}

// Next returns the most recent unseen sample, or nil if none arrived since
// the previous call.
func (s *MQTTSource) Next() (*Sample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.latest
	s.latest = nil
	return out, nil
}

// Close disconnects from the broker.
func (s *MQTTSource) Close() {
	if s.client != nil {
		s.client.Disconnect(250)
	}
}
