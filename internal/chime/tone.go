package chime

import (
	"bytes"
	"encoding/binary"
	"math"
	"time"

	"notification_center/internal/config"
)

const (
	DefaultSampleRate = 44100
	floor             = 0.0001
)

// Tone is a short sine chime with an exponential attack to Peak followed by
// an exponential decay to silence at Duration.
type Tone struct {
	Frequency float64
	Duration  time.Duration
	Attack    time.Duration
	Peak      float64
}

func DefaultTone() Tone {
	return Tone{
		Frequency: 880,
		Duration:  250 * time.Millisecond,
		Attack:    10 * time.Millisecond,
		Peak:      0.2,
	}
}

func ToneFromConfig(cfg *config.Config) Tone {
	tone := DefaultTone()
	if cfg.ChimeFrequency > 0 {
		tone.Frequency = cfg.ChimeFrequency
	}
	if cfg.ChimeDuration > 0 {
		tone.Duration = cfg.ChimeDuration
	}
	if tone.Attack >= tone.Duration {
		tone.Attack = tone.Duration / 10
	}
	return tone
}

// Gain returns the envelope value at offset t.
func (t Tone) Gain(at time.Duration) float64 {
	switch {
	case at <= 0 || at >= t.Duration:
		return 0
	case at < t.Attack:
		progress := float64(at) / float64(t.Attack)
		return floor * math.Pow(t.Peak/floor, progress)
	default:
		progress := float64(at-t.Attack) / float64(t.Duration-t.Attack)
		return t.Peak * math.Pow(floor/t.Peak, progress)
	}
}

// Samples renders the tone as mono samples in [-1, 1].
func (t Tone) Samples(rate int) []float64 {
	if rate <= 0 {
		rate = DefaultSampleRate
	}
	n := int(t.Duration.Seconds() * float64(rate))
	samples := make([]float64, n)
	for i := range samples {
		offset := time.Duration(float64(i) / float64(rate) * float64(time.Second))
		samples[i] = t.Gain(offset) * math.Sin(2*math.Pi*t.Frequency*float64(i)/float64(rate))
	}
	return samples
}

// WAV encodes the tone as 16-bit mono PCM.
func (t Tone) WAV(rate int) []byte {
	if rate <= 0 {
		rate = DefaultSampleRate
	}
	samples := t.Samples(rate)
	dataSize := uint32(len(samples) * 2)

	var buf bytes.Buffer
	buf.Grow(44 + int(dataSize))
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, 36+dataSize)
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	_ = binary.Write(&buf, binary.LittleEndian, uint32(rate))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(rate*2))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(2))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, dataSize)
	for _, s := range samples {
		_ = binary.Write(&buf, binary.LittleEndian, int16(math.Round(s*math.MaxInt16)))
	}
	return buf.Bytes()
}

type descriptor struct {
	Waveform   string  `json:"waveform"`
	Frequency  float64 `json:"frequency_hz"`
	DurationMS int64   `json:"duration_ms"`
	AttackMS   int64   `json:"attack_ms"`
	Peak       float64 `json:"peak"`
}

func (t Tone) descriptor() descriptor {
	return descriptor{
		Waveform:   "sine",
		Frequency:  t.Frequency,
		DurationMS: t.Duration.Milliseconds(),
		AttackMS:   t.Attack.Milliseconds(),
		Peak:       t.Peak,
	}
}
