// Zaparoo Ambience
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Zaparoo Ambience.
//
// Zaparoo Ambience is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Zaparoo Ambience is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Zaparoo Ambience.  If not, see <http://www.gnu.org/licenses/>.

package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/gen2brain/malgo"
	"github.com/gopxl/beep/v2"
	"github.com/rs/zerolog/log"
)

const outputChannels = 2

// device feeds a streamer to the default playback device until closed.
type device struct {
	malgoCtx *malgo.AllocatedContext
	dev      *malgo.Device
}

func openDevice(src beep.Streamer) (*device, error) {
	malgoCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize malgo context: %w", err)
	}
	if malgoCtx == nil {
		return nil, errors.New("malgo context is nil after initialization")
	}

	// F32 format avoids buggy S16->S32 conversion in miniaudio on PulseAudio
	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatF32
	deviceConfig.Playback.Channels = outputChannels
	deviceConfig.SampleRate = uint32(SampleRate)
	deviceConfig.Alsa.NoMMap = 1

	var samples [][2]float64
	onSamples := func(pOutputSample, _ []byte, frameCount uint32) {
		if len(samples) < int(frameCount) {
			samples = make([][2]float64, frameCount)
		}

		n, ok := src.Stream(samples[:frameCount])
		if !ok {
			n = 0
		}
		offset := writeF32(pOutputSample, samples[:n])
		for i := offset; i < len(pOutputSample); i++ {
			pOutputSample[i] = 0
		}
	}

	dev, err := malgo.InitDevice(malgoCtx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: onSamples,
	})
	if err != nil {
		freeContext(malgoCtx)
		return nil, fmt.Errorf("failed to initialize audio device: %w", err)
	}

	if err := dev.Start(); err != nil {
		dev.Uninit()
		freeContext(malgoCtx)
		return nil, fmt.Errorf("failed to start audio device: %w", err)
	}

	return &device{malgoCtx: malgoCtx, dev: dev}, nil
}

func (d *device) close() {
	if err := d.dev.Stop(); err != nil {
		log.Warn().Err(err).Msg("audio: failed to stop device")
	}
	d.dev.Uninit()
	freeContext(d.malgoCtx)
}

func freeContext(ctx *malgo.AllocatedContext) {
	_ = ctx.Uninit()
	ctx.Free()
}

// writeF32 converts beep's [][2]float64 samples to interleaved F32 PCM and
// returns the number of bytes written.
func writeF32(out []byte, samples [][2]float64) int {
	offset := 0
	for i := range samples {
		if offset+8 > len(out) {
			break
		}
		binary.LittleEndian.PutUint32(out[offset:], math.Float32bits(float32(samples[i][0])))
		binary.LittleEndian.PutUint32(out[offset+4:], math.Float32bits(float32(samples[i][1])))
		offset += 8
	}
	return offset
}
