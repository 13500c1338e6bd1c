package app

import (
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/videolevel/internal/config"
	"github.com/relabs-tech/videolevel/internal/diag"
	"github.com/relabs-tech/videolevel/internal/gravity"
	"github.com/relabs-tech/videolevel/internal/stabilizer"
	"github.com/relabs-tech/videolevel/internal/transform"
)

// TransformMsg is the wire form of an emitted transform.
type TransformMsg struct {
	ScaleX   float64 `json:"scale_x"`
	ScaleY   float64 `json:"scale_y"`
	Rotation float64 `json:"rotation"`
	State    string  `json:"state"`
	Time     string  `json:"time"`
}

// paramsFromConfig merges the config file's stabilizer tuning over the
// built-in defaults. Absent keys keep their default value; an explicit 0 in
// the file is honored.
func paramsFromConfig(cfg *config.Config) stabilizer.Params {
	p := stabilizer.DefaultParams()
	if cfg.MinDecay != nil {
		p.MinDecay = *cfg.MinDecay
	}
	if cfg.FlatThreshold != nil {
		p.FlatThreshold = *cfg.FlatThreshold
	}
	if cfg.MinLockAngle != nil {
		p.MinLockAngle = *cfg.MinLockAngle
	}
	if cfg.MaxLockAngle != nil {
		p.MaxLockAngle = *cfg.MaxLockAngle
	}
	if cfg.UnlockDurationS != nil {
		p.UnlockDuration = time.Duration(*cfg.UnlockDurationS * float64(time.Second))
	}
	if cfg.SampleInterval != 0 {
		p.SampleInterval = time.Duration(cfg.SampleInterval) * time.Millisecond
	}
	if cfg.FrameInterval != 0 {
		p.FrameInterval = time.Duration(cfg.FrameInterval) * time.Millisecond
	}
	return p
}

// RunStabilizer runs the stabilization engine over the MQTT gravity topic,
// republishing every emitted transform and answering lock/unlock requests on
// the control topic.
func RunStabilizer() error {
	log.Println("starting videolevel stabilizer")

	cfg := config.Get()
	params := paramsFromConfig(cfg)

	src, err := gravity.NewMQTTSource(cfg.MQTTBroker, cfg.MQTTClientIDStabilizer+"-gravity", cfg.TopicGravity)
	if err != nil {
		return err
	}
	defer src.Close()

	// Separate client for publishing transforms and receiving control.
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDStabilizer)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)
	log.Printf("stabilizer: connected to MQTT broker at %s", cfg.MQTTBroker)

	counter := &diag.Counter{}
	engine := stabilizer.NewEngine(params, src, counter)

	onTransform := func(tf transform.Affine) {
		msg := TransformMsg{
			ScaleX:   tf.ScaleX,
			ScaleY:   tf.ScaleY,
			Rotation: tf.Rotation,
			State:    engine.State().String(),
			Time:     time.Now().Format(time.RFC3339Nano),
		}
		payload, err := json.Marshal(msg)
		if err != nil {
			log.Printf("stabilizer: transform marshal error: %v", err)
			return
		}
		client.Publish(cfg.TopicTransform, 0, true, payload)
	}

	if err := engine.Start(cfg.VideoWidth, cfg.VideoHeight, cfg.ViewWidth, cfg.ViewHeight, onTransform); err != nil {
		return err
	}
	defer engine.Stop()

	// Publish the baseline transform so subscribers can lay out before the
	// first sensor tick.
	if tf, err := engine.ZeroRotationTransform(); err == nil {
		if payload, err := json.Marshal(TransformMsg{
			ScaleX:   tf.ScaleX,
			ScaleY:   tf.ScaleY,
			Rotation: tf.Rotation,
			State:    engine.State().String(),
			Time:     time.Now().Format(time.RFC3339Nano),
		}); err == nil {
			client.Publish(cfg.TopicTransform, 0, true, payload)
		}
	}

	// Control topic: plain "lock" / "unlock" payloads.
	if cfg.TopicControl != "" {
		token := client.Subscribe(cfg.TopicControl, 0, func(_ mqtt.Client, msg mqtt.Message) {
			switch cmd := strings.TrimSpace(string(msg.Payload())); cmd {
			case "lock":
				engine.Lock()
				log.Println("stabilizer: locked")
			case "unlock":
				engine.Unlock()
				log.Println("stabilizer: unlocking")
			default:
				log.Printf("stabilizer: unknown control command %q", cmd)
			}
		})
		token.Wait()
		if token.Error() != nil {
			return token.Error()
		}
		log.Printf("stabilizer: subscribed to control topic %s", cfg.TopicControl)
	}

	// Periodic diagnostics snapshot. Reading resets the counter.
	var diagTicker *time.Ticker
	if cfg.TopicDiagnostics != "" && cfg.DiagInterval > 0 {
		diagTicker = time.NewTicker(time.Duration(cfg.DiagInterval) * time.Millisecond)
		defer diagTicker.Stop()
		go func() {
			for range diagTicker.C {
				snap := engine.TakeDiagnostics()
				payload, err := json.Marshal(snap)
				if err != nil {
					log.Printf("stabilizer: diagnostics marshal error: %v", err)
					continue
				}
				client.Publish(cfg.TopicDiagnostics, 0, false, payload)
			}
		}()
	}

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("stabilizer: shutting down")
	return nil
}
