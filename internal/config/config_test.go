package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const validConfig = `
# comment
MQTT_BROKER=tcp://localhost:1883
TOPIC_GRAVITY=videolevel/gravity
TOPIC_TRANSFORM=videolevel/transform
VIDEO_WIDTH=1280
VIDEO_HEIGHT=720
VIEW_WIDTH=390
VIEW_HEIGHT=200
SAMPLE_INTERVAL=33
MIN_LOCK_ANGLE=-3.135
MAX_LOCK_ANGLE=-2.09
DISPLAY_UPDATE_INTERVAL=250
`

func TestLoadValid(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.MQTTBroker != "tcp://localhost:1883" {
		t.Errorf("MQTTBroker = %q", cfg.MQTTBroker)
	}
	if cfg.VideoWidth != 1280 || cfg.ViewHeight != 200 {
		t.Errorf("geometry not parsed: %+v", cfg)
	}
	if cfg.MinLockAngle == nil || *cfg.MinLockAngle != -3.135 ||
		cfg.MaxLockAngle == nil || *cfg.MaxLockAngle != -2.09 {
		t.Errorf("lock angles not parsed: %v, %v", cfg.MinLockAngle, cfg.MaxLockAngle)
	}
	if cfg.MinDecay != nil {
		t.Errorf("MinDecay = %v, want nil for an absent key", *cfg.MinDecay)
	}
	if cfg.SampleInterval != 33 {
		t.Errorf("SampleInterval = %d", cfg.SampleInterval)
	}
	if cfg.DisplayUpdateInterval != 250 {
		t.Errorf("DisplayUpdateInterval = %d", cfg.DisplayUpdateInterval)
	}
}

func TestLoadRejectsUnknownKey(t *testing.T) {
	_, err := Load(writeConfig(t, validConfig+"BOGUS_KEY=1\n"))
	if err == nil || !strings.Contains(err.Error(), "unknown config key") {
		t.Errorf("err = %v, want unknown key error", err)
	}
}

func TestLoadRejectsMalformedLine(t *testing.T) {
	_, err := Load(writeConfig(t, validConfig+"NOT A PAIR\n"))
	if err == nil || !strings.Contains(err.Error(), "invalid config line") {
		t.Errorf("err = %v, want invalid line error", err)
	}
}

func TestValidateRequiredFields(t *testing.T) {
	cases := []struct {
		name   string
		drop   string
		errHas string
	}{
		{"broker", "MQTT_BROKER", "MQTT_BROKER is required"},
		{"gravity topic", "TOPIC_GRAVITY", "TOPIC_GRAVITY is required"},
		{"video size", "VIDEO_WIDTH", "VIDEO_WIDTH"},
		{"sample interval", "SAMPLE_INTERVAL", "SAMPLE_INTERVAL is required"},
	}

	for _, c := range cases {
		var kept []string
		for _, line := range strings.Split(validConfig, "\n") {
			if !strings.HasPrefix(line, c.drop+"=") {
				kept = append(kept, line)
			}
		}
		_, err := Load(writeConfig(t, strings.Join(kept, "\n")))
		if err == nil || !strings.Contains(err.Error(), c.errHas) {
			t.Errorf("%s: err = %v, want %q", c.name, err, c.errHas)
		}
	}
}

func TestValidateLockBandOrdering(t *testing.T) {
	bad := strings.Replace(validConfig, "MIN_LOCK_ANGLE=-3.135", "MIN_LOCK_ANGLE=-1.0", 1)
	_, err := Load(writeConfig(t, bad))
	if err == nil || !strings.Contains(err.Error(), "MIN_LOCK_ANGLE must be less than MAX_LOCK_ANGLE") {
		t.Errorf("err = %v, want lock band ordering error", err)
	}
}

func TestLoadKeepsExplicitZeroTuning(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig+"MIN_DECAY=0\nFLAT_THRESHOLD=0\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MinDecay == nil || *cfg.MinDecay != 0 {
		t.Errorf("MinDecay = %v, want explicit 0", cfg.MinDecay)
	}
	if cfg.FlatThreshold == nil || *cfg.FlatThreshold != 0 {
		t.Errorf("FlatThreshold = %v, want explicit 0", cfg.FlatThreshold)
	}
}

func TestLoadRejectsBadMinDecay(t *testing.T) {
	_, err := Load(writeConfig(t, validConfig+"MIN_DECAY=1.5\n"))
	if err == nil || !strings.Contains(err.Error(), "MIN_DECAY must be in [0, 1]") {
		t.Errorf("err = %v, want MIN_DECAY range error", err)
	}
}
