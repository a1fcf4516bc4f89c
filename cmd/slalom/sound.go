package main

import (
	"context"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"github.com/opd-ai/go-slalom/pkg/event"
	"github.com/opd-ai/go-slalom/pkg/logging"
)

const sampleRate = beep.SampleRate(44100)

// tone is a short sine beep.
type tone struct {
	freq     float64
	duration time.Duration
}

var (
	toneGate    = tone{freq: 880, duration: 60 * time.Millisecond}
	tonePenalty = tone{freq: 220, duration: 180 * time.Millisecond}
	toneFinish  = tone{freq: 660, duration: 400 * time.Millisecond}
)

// soundBoard plays a cue for gate crossings, penalties and the finish.
type soundBoard struct {
	enabled bool
	subs    []*event.Subscription
	logger  *logging.Logger
}

// newSoundBoard opens the speaker and subscribes to bus. Sound is optional:
// if the speaker cannot be opened the board stays silent.
func newSoundBoard(ctx context.Context, bus *event.Bus, logger *logging.Logger) *soundBoard {
	sb := &soundBoard{logger: logger}

	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		logger.Warn(ctx, "Audio initialization failed, running without sound", "error", err.Error())
		return sb
	}
	sb.enabled = true

	sb.subs = append(sb.subs,
		bus.Subscribe(event.GateCrossed, func(event.Event) { sb.play(toneGate) }),
		bus.Subscribe(event.PenaltyApplied, func(event.Event) { sb.play(tonePenalty) }),
		bus.Subscribe(event.RunFinished, func(event.Event) { sb.play(toneFinish) }),
	)
	return sb
}

func (sb *soundBoard) play(t tone) {
	if !sb.enabled {
		return
	}
	sine, err := generators.SineTone(sampleRate, t.freq)
	if err != nil {
		sb.logger.Debug(context.Background(), "Tone unavailable", "freq", t.freq, "error", err.Error())
		return
	}
	speaker.Play(beep.Take(sampleRate.N(t.duration), sine))
}

// Close unsubscribes and releases the speaker.
func (sb *soundBoard) Close() {
	for _, s := range sb.subs {
		s.Cancel()
	}
	sb.subs = nil
	if sb.enabled {
		speaker.Close()
		sb.enabled = false
	}
}
