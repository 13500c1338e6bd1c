// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package app

import (
	"encoding/json"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/videolevel/internal/config"
	"github.com/relabs-tech/videolevel/internal/gravity"
)

// RunGravityProducer reads the MPU9250 accelerometer at the configured
// sample interval and publishes screen-plane gravity samples to MQTT. With
// no SPI device configured it falls back to the mock source, which is handy
// on a desk without hardware.
func RunGravityProducer() error {
	log.Println("starting videolevel gravity producer")

	cfg := config.Get()

	var src gravity.Source
	if cfg.IMUSPIDevice == "" {
		log.Println("no IMU_SPI_DEVICE configured, using mock gravity source")
		src = gravity.NewMockSource()
	} else {
		var err error
		src, err = gravity.NewMPU9250Source(cfg.IMUSPIDevice, cfg.IMUCSPin)
		if err != nil {
			log.Fatalf("failed to initialize MPU9250: %v", err)
			return err
		}
		log.Printf("MPU9250 initialized on %s (CS %s)", cfg.IMUSPIDevice, cfg.IMUCSPin)
	}

	// --- connect to MQTT ---
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDProducer)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalf("MQTT connect error: %v", token.Error())
		return token.Error()
	}
	defer client.Disconnect(250)

	log.Println("connected to MQTT, starting publish loop")

	// main tick
	ticker := time.NewTicker(time.Duration(cfg.SampleInterval) * time.Millisecond)
	defer ticker.Stop()

	for t := range ticker.C {
		sample, err := src.Next()
		if err != nil {
			log.Printf("gravity read error: %v", err)
			continue
		}
		if sample == nil {
			continue
		}

		payload, err := json.Marshal(sample)
		if err != nil {
			log.Printf("json marshal error (gravity): %v", err)
			continue
		}
		if token := client.Publish(cfg.TopicGravity, 0, true, payload); token.Wait() && token.Error() != nil {
			log.Printf("MQTT publish error (gravity): %v", token.Error())
			continue
		}

		log.Printf("%s tick: gravity x=%.3f y=%.3f", t.Format(time.RFC3339), sample.X, sample.Y)
	}
	return nil
}
