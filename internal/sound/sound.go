// Package sound plays short feedback tones when a child taps the page.
package sound

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

type Player interface {
	// PlayFill is played after a region was colored.
	PlayFill()
	// PlayDenied is played when a tap colored nothing, e.g. on an outline.
	PlayDenied()
	Close()
}

type NoopPlayer struct{}

func (NoopPlayer) PlayFill()   {}
func (NoopPlayer) PlayDenied() {}
func (NoopPlayer) Close()      {}

// BeepPlayer mixes tones into the system speaker.
type BeepPlayer struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
}

// NewBeepPlayer opens the speaker. Without an audio device it returns an error and the
// caller should fall back to NoopPlayer.
func NewBeepPlayer() (*BeepPlayer, error) {
	p := &BeepPlayer{mixer: &beep.Mixer{}}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return nil, err
	}
	speaker.Play(p.mixer)
	p.initialized = true
	return p, nil
}

func (p *BeepPlayer) add(s beep.Streamer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return
	}
	speaker.Lock()
	p.mixer.Add(s)
	speaker.Unlock()
}

// PlayFill plays a rising two-note chime.
func (p *BeepPlayer) PlayFill() {
	low, err := generators.SineTone(sampleRate, 660)
	if err != nil {
		return
	}
	high, err := generators.SineTone(sampleRate, 990)
	if err != nil {
		return
	}
	note := sampleRate.N(60 * time.Millisecond)
	p.add(beep.Seq(
		&Envelope{Streamer: beep.Take(note, low), Total: note},
		&Envelope{Streamer: beep.Take(note*2, high), Total: note * 2},
	))
}

// PlayDenied plays a short low buzz.
func (p *BeepPlayer) PlayDenied() {
	p.add(beep.Take(sampleRate.N(120*time.Millisecond), NewBuzzGenerator(sampleRate, 140)))
}

func (p *BeepPlayer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return
	}
	speaker.Lock()
	p.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	p.initialized = false
}

// Envelope fades a streamer in and out over Total samples to avoid clicks.
type Envelope struct {
	Streamer beep.Streamer
	Total    int
	pos      int
}

func (e *Envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.Streamer.Stream(samples)
	for i := 0; i < n; i++ {
		gain := envelopeGain(e.pos, e.Total)
		samples[i][0] *= gain * 0.3
		samples[i][1] *= gain * 0.3
		e.pos++
	}
	return n, ok
}

func (e *Envelope) Err() error { return e.Streamer.Err() }

// envelopeGain ramps up over the first and down over the last 10% of total samples.
func envelopeGain(pos, total int) float64 {
	if total <= 0 {
		return 0
	}
	ramp := total / 10
	if ramp < 1 {
		ramp = 1
	}
	switch {
	case pos < ramp:
		return float64(pos) / float64(ramp)
	case pos > total-ramp:
		return math.Max(0, float64(total-pos)/float64(ramp))
	default:
		return 1
	}
}

// BuzzGenerator generates a harsh low buzz with a short fade in.
type BuzzGenerator struct {
	sr   beep.SampleRate
	freq float64
	pos  int
}

func NewBuzzGenerator(sr beep.SampleRate, freq float64) *BuzzGenerator {
	return &BuzzGenerator{sr: sr, freq: freq}
}

func (g *BuzzGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)

		sample := 0.3 * math.Sin(2*math.Pi*g.freq*t)
		sample += 0.15 * math.Sin(2*math.Pi*g.freq*2*t)
		sample += 0.075 * math.Sin(2*math.Pi*g.freq*3*t)

		envelope := math.Min(t/0.02, 1.0)
		sample *= envelope * 0.2

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *BuzzGenerator) Err() error { return nil }
