package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/videolevel/internal/config"
	"github.com/relabs-tech/videolevel/internal/diag"
	"github.com/relabs-tech/videolevel/internal/gravity"
)

// RunConsole subscribes to the gravity, transform, and diagnostics topics and
// prints them, mostly for eyeballing the pipeline end to end.
func RunConsole() error {
	cfg := config.Get()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	// Subscribe to gravity samples
	gravToken := client.Subscribe(cfg.TopicGravity, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var s gravity.Sample
		if err := json.Unmarshal(msg.Payload(), &s); err != nil {
			log.Printf("console: gravity unmarshal error: %v", err)
			return
		}

		fmt.Printf("[GRAV]  x=%7.3f  y=%7.3f\n", s.X, s.Y)
	})
	gravToken.Wait()
	if gravToken.Error() != nil {
		return gravToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicGravity)

	// Subscribe to transforms
	tfToken := client.Subscribe(cfg.TopicTransform, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var m TransformMsg
		if err := json.Unmarshal(msg.Payload(), &m); err != nil {
			log.Printf("console: transform unmarshal error: %v", err)
			return
		}

		fmt.Printf(
			"[TF  ]  SCALE=%6.3f  ROT=%7.3f  STATE=%s\n",
			m.ScaleX, m.Rotation, m.State,
		)
	})
	tfToken.Wait()
	if tfToken.Error() != nil {
		return tfToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicTransform)

	// Subscribe to diagnostics snapshots
	if cfg.TopicDiagnostics != "" {
		diagToken := client.Subscribe(cfg.TopicDiagnostics, 0, func(_ mqtt.Client, msg mqtt.Message) {
			var snap diag.Snapshot
			if err := json.Unmarshal(msg.Payload(), &snap); err != nil {
				log.Printf("console: diagnostics unmarshal error: %v", err)
				return
			}

			fmt.Printf(
				"[DIAG]  samples=%d  mean=%6.1f°  hist=%v\n",
				snap.SampleCount, snap.MeanAngleDeg, snap.Histogram,
			)
		})
		diagToken.Wait()
		if diagToken.Error() != nil {
			return diagToken.Error()
		}
		log.Printf("console: subscribed to %s", cfg.TopicDiagnostics)
	}

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
