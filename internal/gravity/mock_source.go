// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package gravity

import (
	"math"
	"time"
)

type mockSource struct {
	start time.Time
}

// NewMockSource creates a mock gravity source that sweeps the device
// smoothly between landscape-ish tilts. Useful without hardware.
func NewMockSource() Source {
	return &mockSource{start: time.Now()}
}

func (m *mockSource) Next() (*Sample, error) {
	elapsed := time.Since(m.start).Seconds()

	// Orbit around a 45° tilt so the readings never go flat.
	return &Sample{
		X: 0.7 + 0.25*math.Sin(elapsed),
		Y: 0.7 + 0.25*math.Cos(elapsed*0.7),
	}, nil
}

// ScriptedSource replays a fixed sequence of samples and then keeps
// returning nil readings. Intended for deterministic tests and replays.
type ScriptedSource struct {
	Samples []Sample
	pos     int
}

func (s *ScriptedSource) Next() (*Sample, error) {
	if s.pos >= len(s.Samples) {
		return nil, nil
	}
	out := s.Samples[s.pos]
	s.pos++
	return &out, nil
}
