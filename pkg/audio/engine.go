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
	"bytes"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZaparooProject/zaparoo-ambience/pkg/helpers/syncutil"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// SampleRate is the output rate of the mix. 48000 Hz keeps HDMI audio happy.
const SampleRate = beep.SampleRate(48000)

const (
	resampleQuality = 4
	minSpeed        = 0.01
)

// readSeekNopCloser keeps the Seek method visible to decoders which take an
// io.ReadCloser, so mp3 and ogg files stay seekable.
type readSeekNopCloser struct {
	*bytes.Reader
}

func (readSeekNopCloser) Close() error { return nil }

// MixerEngine implements Engine on top of a beep mixer. The mix is pulled by
// an output device opened with Open; without one the engine can still be
// streamed manually, which is what the tests do.
type MixerEngine struct {
	fs          afero.Fs
	fileCache   map[string][]byte
	players     map[*mixerPlayer]struct{}
	mixer       *beep.Mixer
	master      *effects.Volume
	ctrl        *beep.Ctrl
	device      *device
	masterLevel float64
	fileCacheMu syncutil.RWMutex
	// mu guards the whole mix graph and is held by the device callback.
	mu syncutil.Mutex
}

// NewMixerEngine creates an engine reading sound files from fs.
func NewMixerEngine(fs afero.Fs) *MixerEngine {
	mixer := &beep.Mixer{}
	master := &effects.Volume{Streamer: mixer, Base: 2}
	e := &MixerEngine{
		fs:        fs,
		fileCache: make(map[string][]byte),
		players:   make(map[*mixerPlayer]struct{}),
		mixer:     mixer,
		master:    master,
		ctrl:      &beep.Ctrl{Streamer: master},
	}
	e.SetMasterVolume(1)
	return e
}

// Open starts the audio output device.
func (e *MixerEngine) Open() error {
	d, err := openDevice(e)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.device = d
	e.mu.Unlock()
	log.Info().Int("sample_rate", int(SampleRate)).Msg("audio: output device started")
	return nil
}

// Close stops every player and releases the output device.
func (e *MixerEngine) Close() error {
	e.StopAll()

	e.mu.Lock()
	d := e.device
	e.device = nil
	e.mu.Unlock()

	if d != nil {
		d.close()
	}
	return nil
}

// Stream pulls the next block of mixed samples.
func (e *MixerEngine) Stream(samples [][2]float64) (n int, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ctrl.Stream(samples)
}

// Err always returns nil; decode errors are reported per player.
func (*MixerEngine) Err() error {
	return nil
}

// PlayerFor decodes the sound's file and returns a paused player for it.
func (e *MixerEngine) PlayerFor(sound Sound) (Player, error) {
	data, err := e.readFileWithCache(sound.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio file: %w", err)
	}

	source, format, err := decode(sound.Path, data)
	if err != nil {
		return nil, err
	}

	resampler := beep.Resample(resampleQuality, format.SampleRate, SampleRate, source)
	ctrl := &beep.Ctrl{Streamer: resampler, Paused: true}
	volume := &effects.Volume{Streamer: ctrl, Base: 2}
	p := &mixerPlayer{
		engine:    e,
		source:    source,
		format:    format,
		resampler: resampler,
		ctrl:      ctrl,
		volume:    volume,
		pan:       &effects.Pan{Streamer: volume},
		level:     1,
		speed:     1,
	}

	e.mu.Lock()
	e.players[p] = struct{}{}
	e.mu.Unlock()

	log.Debug().
		Str("path", sound.Path).
		Dur("length", p.Length()).
		Int("source_rate", int(format.SampleRate)).
		Msg("audio: created player")
	return p, nil
}

// SetAllPaused pauses or resumes the whole mix without touching players.
func (e *MixerEngine) SetAllPaused(paused bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ctrl.Paused = paused
}

// SetMasterVolume sets the linear volume applied on top of every player.
func (e *MixerEngine) SetMasterVolume(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.masterLevel = Clamp(v, 0, 1)
	setLinearVolume(e.master, e.masterLevel)
}

// MasterVolume returns the linear master volume.
func (e *MixerEngine) MasterVolume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.masterLevel
}

// StopAll stops every player created by this engine.
func (e *MixerEngine) StopAll() {
	e.mu.Lock()
	players := make([]*mixerPlayer, 0, len(e.players))
	for p := range e.players {
		players = append(players, p)
	}
	e.mu.Unlock()

	for _, p := range players {
		p.Stop()
	}
}

// ActivePlayers returns the number of players which have not been stopped.
func (e *MixerEngine) ActivePlayers() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.players)
}

// ClearFileCache forces subsequent players to re-read their files.
func (e *MixerEngine) ClearFileCache() {
	e.fileCacheMu.Lock()
	defer e.fileCacheMu.Unlock()
	e.fileCache = make(map[string][]byte)
}

// readFileWithCache returns file bytes, using an in-memory cache so sounds
// restarted by repeat or chaining are not read from disk every time.
func (e *MixerEngine) readFileWithCache(path string) ([]byte, error) {
	e.fileCacheMu.RLock()
	if cached, ok := e.fileCache[path]; ok {
		e.fileCacheMu.RUnlock()
		return cached, nil
	}
	e.fileCacheMu.RUnlock()

	data, err := afero.ReadFile(e.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	e.fileCacheMu.Lock()
	e.fileCache[path] = data
	e.fileCacheMu.Unlock()

	return data, nil
}

func decode(path string, data []byte) (beep.StreamSeekCloser, beep.Format, error) {
	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
		err      error
	)

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".wav":
		streamer, format, err = wav.Decode(bytes.NewReader(data))
	case ".mp3":
		streamer, format, err = mp3.Decode(readSeekNopCloser{bytes.NewReader(data)})
	case ".ogg":
		streamer, format, err = vorbis.Decode(readSeekNopCloser{bytes.NewReader(data)})
	case ".flac":
		streamer, format, err = flac.Decode(bytes.NewReader(data))
	default:
		return nil, beep.Format{}, fmt.Errorf(
			"%w: %s (supported: .wav, .mp3, .ogg, .flac)", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("failed to decode audio file: %w", err)
	}
	return streamer, format, nil
}

// setLinearVolume maps a linear level onto beep's exponential volume.
func setLinearVolume(v *effects.Volume, level float64) {
	if level <= 0 {
		v.Silent = true
		return
	}
	v.Silent = false
	v.Volume = math.Log2(level)
}

// mixerPlayer is one decoded sound in the mix. Every field is guarded by the
// engine's mutex.
type mixerPlayer struct {
	engine    *MixerEngine
	source    beep.StreamSeekCloser
	format    beep.Format
	resampler *beep.Resampler
	ctrl      *beep.Ctrl
	volume    *effects.Volume
	pan       *effects.Pan
	level     float64
	speed     float64
	added     bool
	finished  bool
	stopped   bool
}

func (p *mixerPlayer) Play() {
	p.engine.mu.Lock()
	defer p.engine.mu.Unlock()
	if p.stopped {
		return
	}
	p.ctrl.Paused = false
	if !p.added {
		p.added = true
		// the callback runs inside Stream, with the engine lock already held
		p.engine.mixer.Add(beep.Seq(p.pan, beep.Callback(func() {
			p.finished = true
		})))
	}
}

func (p *mixerPlayer) Pause() {
	p.engine.mu.Lock()
	defer p.engine.mu.Unlock()
	p.ctrl.Paused = true
}

func (p *mixerPlayer) Stop() {
	p.engine.mu.Lock()
	defer p.engine.mu.Unlock()
	if p.stopped {
		return
	}
	p.stopped = true
	p.finished = true
	// a nil streamer drains the control, so the mixer drops it on its next pass
	p.ctrl.Streamer = nil
	delete(p.engine.players, p)
	if err := p.source.Close(); err != nil {
		log.Warn().Err(err).Msg("audio: failed to close streamer")
	}
}

func (p *mixerPlayer) Volume() float64 {
	p.engine.mu.Lock()
	defer p.engine.mu.Unlock()
	return p.level
}

func (p *mixerPlayer) SetVolume(v float64) {
	p.engine.mu.Lock()
	defer p.engine.mu.Unlock()
	p.level = Clamp(v, 0, 1)
	setLinearVolume(p.volume, p.level)
}

func (p *mixerPlayer) Pan() float64 {
	p.engine.mu.Lock()
	defer p.engine.mu.Unlock()
	return p.pan.Pan
}

func (p *mixerPlayer) SetPan(pan float64) {
	p.engine.mu.Lock()
	defer p.engine.mu.Unlock()
	p.pan.Pan = Clamp(pan, -1, 1)
}

func (p *mixerPlayer) Finished() bool {
	p.engine.mu.Lock()
	defer p.engine.mu.Unlock()
	return p.finished
}

func (p *mixerPlayer) Position() time.Duration {
	p.engine.mu.Lock()
	defer p.engine.mu.Unlock()
	if p.stopped {
		return 0
	}
	return p.format.SampleRate.D(p.source.Position())
}

func (p *mixerPlayer) SetPosition(pos time.Duration) {
	p.engine.mu.Lock()
	defer p.engine.mu.Unlock()
	if p.stopped {
		return
	}
	n := p.format.SampleRate.N(pos)
	if n < 0 {
		n = 0
	}
	if n > p.source.Len() {
		n = p.source.Len()
	}
	if err := p.source.Seek(n); err != nil {
		log.Warn().Err(err).Dur("position", pos).Msg("audio: failed to seek")
	}
}

func (p *mixerPlayer) Speed() float64 {
	p.engine.mu.Lock()
	defer p.engine.mu.Unlock()
	return p.speed
}

func (p *mixerPlayer) SetSpeed(s float64) {
	p.engine.mu.Lock()
	defer p.engine.mu.Unlock()
	if s < minSpeed {
		s = minSpeed
	}
	p.speed = s
	p.resampler.SetRatio(float64(p.format.SampleRate) / float64(SampleRate) * s)
}

func (p *mixerPlayer) Length() time.Duration {
	p.engine.mu.Lock()
	defer p.engine.mu.Unlock()
	return p.format.SampleRate.D(p.source.Len())
}
