package tagfile

import (
	"time"

	"github.com/soundfold/tagbridge/errors"
)

// AudioProperties is a non-owning wrapper around the audio-properties
// sub-object of a File. The four fields are lifted out of guest memory once,
// when the wrapper is materialized; accessors still refuse to answer after
// the owning File closes, keeping wrapper validity aligned with handle
// state.
type AudioProperties struct {
	file *File
	ref  uint32
	dead bool

	lengthMs   uint32
	bitrate    uint32
	sampleRate uint32
	channels   uint32
}

// Invalidate implements lifecycle.Wrapper.
func (p *AudioProperties) Invalidate() {
	p.dead = true
}

func (p *AudioProperties) guard(op string) error {
	if p.dead || p.file.closed {
		return errors.InvalidState(op)
	}
	return nil
}

// Length returns the audio duration.
func (p *AudioProperties) Length() (time.Duration, error) {
	if err := p.guard("audioproperties.length"); err != nil {
		return 0, err
	}
	return time.Duration(p.lengthMs) * time.Millisecond, nil
}

// Bitrate returns the bitrate in kb/s.
func (p *AudioProperties) Bitrate() (int, error) {
	if err := p.guard("audioproperties.bitrate"); err != nil {
		return 0, err
	}
	return int(p.bitrate), nil
}

// SampleRate returns the sample rate in Hz.
func (p *AudioProperties) SampleRate() (int, error) {
	if err := p.guard("audioproperties.samplerate"); err != nil {
		return 0, err
	}
	return int(p.sampleRate), nil
}

// Channels returns the channel count.
func (p *AudioProperties) Channels() (int, error) {
	if err := p.guard("audioproperties.channels"); err != nil {
		return 0, err
	}
	return int(p.channels), nil
}
