package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/soundfold/tagbridge/engine"
	"github.com/soundfold/tagbridge/tagfile"
)

type setFlags []string

func (s *setFlags) String() string { return strings.Join(*s, ",") }

func (s *setFlags) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func main() {
	var sets setFlags
	var (
		wasmFile    = flag.String("wasm", "", "Path to the tag engine wasm file")
		audioFile   = flag.String("file", "", "Audio file to inspect")
		mount       = flag.String("mount", "", "Directory mount (host:guest, default /:/)")
		save        = flag.Bool("save", false, "Persist edits back to the file")
		jsonOut     = flag.Bool("json", false, "Print metadata as JSON")
		verbose     = flag.Bool("v", false, "Verbose engine logging")
		interactive = flag.Bool("i", false, "Interactive tag editor (TUI)")
	)
	flag.Var(&sets, "set", "Set a tag field (field=value, repeatable)")
	flag.Parse()

	if *wasmFile == "" || *audioFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: tagread -wasm <engine.wasm> -file <audio>")
		fmt.Fprintln(os.Stderr, "       tagread -wasm <engine.wasm> -file <audio> -set title=... -save")
		fmt.Fprintln(os.Stderr, "       tagread -wasm <engine.wasm> -file <audio> -i  (interactive mode)")
		os.Exit(1)
	}

	if *verbose {
		if logger, err := zap.NewDevelopment(); err == nil {
			engine.SetLogger(logger)
			defer logger.Sync()
		}
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: -i requires a terminal")
			os.Exit(1)
		}
		if err := runInteractive(*wasmFile, *audioFile, *mount); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*wasmFile, *audioFile, *mount, sets, *save, *jsonOut); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newEngine(ctx context.Context, wasmFile, mount string) (*engine.Engine, error) {
	data, err := os.ReadFile(wasmFile)
	if err != nil {
		return nil, fmt.Errorf("read engine: %w", err)
	}

	var opts []engine.Option
	if mount != "" {
		parts := strings.SplitN(mount, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("bad -mount %q, want host:guest", mount)
		}
		opts = append(opts, engine.WithDirMount(parts[0], parts[1]))
	}

	return engine.New(ctx, data, opts...)
}

type metadata struct {
	Title      string              `json:"title"`
	Artist     string              `json:"artist"`
	Album      string              `json:"album"`
	Comment    string              `json:"comment,omitempty"`
	Genre      string              `json:"genre,omitempty"`
	Year       uint                `json:"year,omitempty"`
	Track      uint                `json:"track,omitempty"`
	Length     string              `json:"length,omitempty"`
	Bitrate    int                 `json:"bitrate,omitempty"`
	SampleRate int                 `json:"sample_rate,omitempty"`
	Channels   int                 `json:"channels,omitempty"`
	Properties map[string][]string `json:"properties,omitempty"`
}

func run(wasmFile, audioFile, mount string, sets []string, save, jsonOut bool) error {
	ctx := context.Background()

	eng, err := newEngine(ctx, wasmFile, mount)
	if err != nil {
		return err
	}
	defer eng.Close(ctx)

	md, err := tagfile.With(ctx, eng, audioFile, func(f *tagfile.File) (*metadata, error) {
		if f.IsNull() {
			return nil, fmt.Errorf("%s: not a recognized audio file", audioFile)
		}

		tag, err := f.Tag(ctx)
		if err != nil {
			return nil, err
		}

		for _, kv := range sets {
			parts := strings.SplitN(kv, "=", 2)
			if len(parts) != 2 {
				return nil, fmt.Errorf("bad -set %q, want field=value", kv)
			}
			if err := applyEdit(ctx, tag, parts[0], parts[1]); err != nil {
				return nil, err
			}
		}
		if save {
			ok, err := f.Save(ctx)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, fmt.Errorf("%s: engine refused to save", audioFile)
			}
		}

		return readMetadata(ctx, f, tag)
	})
	if err != nil {
		return err
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(md)
	}
	printMetadata(audioFile, md)
	return nil
}

func applyEdit(ctx context.Context, tag *tagfile.Tag, field, value string) error {
	switch strings.ToLower(field) {
	case "title":
		return tag.SetTitle(ctx, value)
	case "artist":
		return tag.SetArtist(ctx, value)
	case "album":
		return tag.SetAlbum(ctx, value)
	case "comment":
		return tag.SetComment(ctx, value)
	case "genre":
		return tag.SetGenre(ctx, value)
	case "year":
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return fmt.Errorf("bad year %q: %w", value, err)
		}
		return tag.SetYear(ctx, uint(n))
	case "track":
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return fmt.Errorf("bad track %q: %w", value, err)
		}
		return tag.SetTrack(ctx, uint(n))
	}
	// Anything else is a free-form property; values are ;-separated.
	return tag.SetProperty(ctx, strings.ToUpper(field), strings.Split(value, ";"))
}

func readMetadata(ctx context.Context, f *tagfile.File, tag *tagfile.Tag) (*metadata, error) {
	md := &metadata{}

	fields := []struct {
		dst *string
		get func(context.Context) (string, error)
	}{
		{&md.Title, tag.Title},
		{&md.Artist, tag.Artist},
		{&md.Album, tag.Album},
		{&md.Comment, tag.Comment},
		{&md.Genre, tag.Genre},
	}
	for _, fl := range fields {
		v, err := fl.get(ctx)
		if err != nil {
			return nil, err
		}
		*fl.dst = v
	}

	var err error
	if md.Year, err = tag.Year(ctx); err != nil {
		return nil, err
	}
	if md.Track, err = tag.Track(ctx); err != nil {
		return nil, err
	}

	props, err := f.AudioProperties(ctx)
	if err != nil {
		return nil, err
	}
	if props != nil {
		length, err := props.Length()
		if err != nil {
			return nil, err
		}
		md.Length = length.Round(time.Second).String()
		if md.Bitrate, err = props.Bitrate(); err != nil {
			return nil, err
		}
		if md.SampleRate, err = props.SampleRate(); err != nil {
			return nil, err
		}
		if md.Channels, err = props.Channels(); err != nil {
			return nil, err
		}
	}

	return md, nil
}

func printMetadata(path string, md *metadata) {
	fmt.Printf("File: %s\n", path)
	rows := []struct {
		label, value string
	}{
		{"Title", md.Title},
		{"Artist", md.Artist},
		{"Album", md.Album},
		{"Comment", md.Comment},
		{"Genre", md.Genre},
		{"Year", itoa(md.Year)},
		{"Track", itoa(md.Track)},
		{"Length", md.Length},
	}
	for _, r := range rows {
		if r.value != "" {
			fmt.Printf("  %-8s %s\n", r.label, r.value)
		}
	}
	if md.Bitrate > 0 {
		fmt.Printf("  %-8s %d kb/s, %d Hz, %d ch\n", "Audio", md.Bitrate, md.SampleRate, md.Channels)
	}
}

func itoa(v uint) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatUint(uint64(v), 10)
}
