package tagfile

import (
	tagbridge "github.com/soundfold/tagbridge"
)

type openOptions struct {
	readProps bool
	style     tagbridge.ReadStyle
}

func defaultOptions() *openOptions {
	return &openOptions{
		readProps: true,
		style:     tagbridge.ReadStyleAverage,
	}
}

// Option customizes how a file is opened.
type Option func(*openOptions)

// WithoutAudioProperties skips audio-property scanning at open time.
// AudioProperties then reports absent for the handle's whole lifetime.
func WithoutAudioProperties() Option {
	return func(o *openOptions) {
		o.readProps = false
	}
}

// WithAudioPropertiesStyle selects how thoroughly the engine scans for audio
// properties. The default is tagbridge.ReadStyleAverage.
func WithAudioPropertiesStyle(style tagbridge.ReadStyle) Option {
	return func(o *openOptions) {
		o.readProps = true
		o.style = style
	}
}
