package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"

	"github.com/relabs-tech/videolevel/internal/config"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// RunWeb subscribes to the transform topic and serves it to browsers: a JSON
// snapshot endpoint, a websocket push stream, and lock/unlock controls that
// republish to the control topic.
func RunWeb() error {
	var (
		mu      sync.RWMutex
		lastMsg TransformMsg
		haveMsg bool
		wsMu    sync.Mutex
		wsConns = map[*websocket.Conn]struct{}{}
	)

	cfg := config.Get()

	// 1) Connect to MQTT broker
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDWeb)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("connected to MQTT broker at %s", cfg.MQTTBroker)

	// 2) Subscribe to transform topic, remember the latest and fan out to
	// websocket clients.
	token := client.Subscribe(cfg.TopicTransform, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var m TransformMsg
		if err := json.Unmarshal(msg.Payload(), &m); err != nil {
			log.Printf("MQTT payload unmarshal error: %v", err)
			return
		}
		mu.Lock()
		lastMsg = m
		haveMsg = true
		mu.Unlock()

		wsMu.Lock()
		for conn := range wsConns {
			conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
			if err := conn.WriteJSON(m); err != nil {
				conn.Close()
				delete(wsConns, conn)
			}
		}
		wsMu.Unlock()
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("subscribed to MQTT topic %s", cfg.TopicTransform)

	// 3) JSON API endpoint: latest transform
	http.HandleFunc("/api/transform", func(w http.ResponseWriter, r *http.Request) {
		mu.RLock()
		defer mu.RUnlock()

		if !haveMsg {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(lastMsg); err != nil {
			log.Printf("json encode error: %v", err)
		}
	})

	// 4) Lock/unlock controls, republished to the control topic
	control := func(cmd string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				http.Error(w, "POST required", http.StatusMethodNotAllowed)
				return
			}
			if tok := client.Publish(cfg.TopicControl, 0, false, cmd); tok.Wait() && tok.Error() != nil {
				http.Error(w, tok.Error().Error(), http.StatusBadGateway)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		}
	}
	http.HandleFunc("/api/lock", control("lock"))
	http.HandleFunc("/api/unlock", control("unlock"))

	// 5) Websocket push stream of live transforms
	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("websocket upgrade error: %v", err)
			return
		}

		mu.RLock()
		m, have := lastMsg, haveMsg
		mu.RUnlock()
		if have {
			// New subscribers get an immediate sample.
			conn.WriteJSON(m)
		}

		wsMu.Lock()
		wsConns[conn] = struct{}{}
		wsMu.Unlock()

		// Drain (and discard) client messages so closes are noticed.
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					wsMu.Lock()
					delete(wsConns, conn)
					wsMu.Unlock()
					conn.Close()
					return
				}
			}
		}()
	})

	// 6) Static files from ./web as the root
	fs := http.FileServer(http.Dir("web"))
	http.Handle("/", fs)

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web server listening on %s", addr)
	return http.ListenAndServe(addr, nil)
}
