package app

import (
	"encoding/json"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/videolevel/internal/config"
	"github.com/relabs-tech/videolevel/internal/gravity"
)

// RunNMEAProducer opens the serial IMU port, parses XDR gravity sentences,
// and publishes them as JSON samples to the gravity topic.
func RunNMEAProducer() error {
	cfg := config.Get()

	// ---- 1) Connect to MQTT broker ----
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDNMEA)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)
	log.Printf("NMEA producer connected to MQTT broker at %s", cfg.MQTTBroker)

	// ---- 2) Open serial IMU port ----
	src, err := gravity.NewSerialSource(cfg.IMUSerialPort, uint(cfg.IMUBaudRate))
	if err != nil {
		return err
	}
	defer src.Close()
	log.Printf("serial IMU port opened on %s at %d baud", cfg.IMUSerialPort, cfg.IMUBaudRate)

	for {
		sample, err := src.Next()
		if err != nil {
			log.Printf("serial IMU read error: %v", err)
			return err
		}
		if sample == nil {
			continue
		}

		payload, err := json.Marshal(sample)
		if err != nil {
			log.Printf("gravity JSON marshal error: %v", err)
			continue
		}

		token := client.Publish(cfg.TopicGravity, 0, true, payload)
		token.Wait()
		if token.Error() != nil {
			log.Printf("gravity publish error: %v", token.Error())
			continue
		}
	}
}
