// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package gravity

import (
	"fmt"
	"math"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/devices/v3/mpu9250"
	"periph.io/x/host/v3"
)

type mpu9250Source struct {
	imu *mpu9250.MPU9250
}

// NewMPU9250Source initializes an MPU9250 over SPI and returns a Source that
// reads screen-plane gravity components from the accelerometer. The gyro and
// magnetometer are left untouched; tilt only needs the accel ratios.
func NewMPU9250Source(spiDev, csPin string) (Source, error) {
	// Initialize periph host once.
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}

	cs := gpioreg.ByName(csPin)
	if cs == nil {
		return nil, fmt.Errorf("IMU CS pin %q not found", csPin)
	}

	tr, err := mpu9250.NewSpiTransport(spiDev, cs)
	if err != nil {
		return nil, fmt.Errorf("IMU SPI transport (%s): %w", spiDev, err)
	}

	imu, err := mpu9250.New(tr)
	if err != nil {
		return nil, fmt.Errorf("IMU new device: %w", err)
	}

	if err := imu.Init(); err != nil {
		return nil, fmt.Errorf("IMU init: %w", err)
	}

	if _, err := imu.SelfTest(); err != nil {
		return nil, fmt.Errorf("IMU self-test: %w", err)
	}
	if err := imu.Calibrate(); err != nil {
		return nil, fmt.Errorf("IMU calibrate: %w", err)
	}

	return &mpu9250Source{imu: imu}, nil
}

// Next reads the accelerometer and projects the gravity vector onto the
// device's screen plane. The raw counts are normalized by the full vector
// magnitude, so the components come out in [-1, 1] without caring about the
// configured accel range.
func (s *mpu9250Source) Next() (*Sample, error) {
	ax, err := s.imu.GetAccelerationX()
	if err != nil {
		return nil, fmt.Errorf("IMU acc X: %w", err)
	}
	ay, err := s.imu.GetAccelerationY()
	if err != nil {
		return nil, fmt.Errorf("IMU acc Y: %w", err)
	}
	az, err := s.imu.GetAccelerationZ()
	if err != nil {
		return nil, fmt.Errorf("IMU acc Z: %w", err)
	}

	fx := float64(ax)
	fy := float64(ay)
	fz := float64(az)

	norm := math.Sqrt(fx*fx + fy*fy + fz*fz)
	if norm == 0 {
		// Free fall or a dead sensor; skip the tick.
		return nil, nil
	}

	return &Sample{
		X: fx / norm,
		Y: fy / norm,
	}, nil
}
