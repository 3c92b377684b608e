package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/soundfold/tagbridge/engine"
	"github.com/soundfold/tagbridge/tagfile"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	dirtyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD580"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type fieldKind int

const (
	fieldText fieldKind = iota
	fieldNumber
)

type tagField struct {
	label string
	kind  fieldKind
	value string
	dirty bool
}

type modelState int

const (
	stateBrowse modelState = iota
	stateEdit
)

type editorModel struct {
	wasmFile  string
	audioFile string
	mount     string

	eng  *engine.Engine
	file *tagfile.File
	tag  *tagfile.Tag

	fields   []tagField
	audio    string
	selected int
	input    textinput.Model
	state    modelState
	status   string
	err      error
}

func newEditorModel(wasmFile, audioFile, mount string) *editorModel {
	return &editorModel{
		wasmFile:  wasmFile,
		audioFile: audioFile,
		mount:     mount,
		state:     stateBrowse,
	}
}

type loadedMsg struct {
	err    error
	eng    *engine.Engine
	file   *tagfile.File
	tag    *tagfile.Tag
	fields []tagField
	audio  string
}

type savedMsg struct {
	err error
	ok  bool
}

func (m *editorModel) Init() tea.Cmd {
	return m.loadFile
}

func (m *editorModel) loadFile() tea.Msg {
	ctx := context.Background()

	eng, err := newEngine(ctx, m.wasmFile, m.mount)
	if err != nil {
		return loadedMsg{err: err}
	}

	f, err := tagfile.Open(ctx, eng, m.audioFile)
	if err != nil {
		eng.Close(ctx)
		return loadedMsg{err: err}
	}
	if f.IsNull() {
		f.Close(ctx)
		eng.Close(ctx)
		return loadedMsg{err: fmt.Errorf("%s: not a recognized audio file", m.audioFile)}
	}

	tag, err := f.Tag(ctx)
	if err != nil {
		f.Close(ctx)
		eng.Close(ctx)
		return loadedMsg{err: err}
	}

	md, err := readMetadata(ctx, f, tag)
	if err != nil {
		f.Close(ctx)
		eng.Close(ctx)
		return loadedMsg{err: err}
	}

	fields := []tagField{
		{label: "Title", kind: fieldText, value: md.Title},
		{label: "Artist", kind: fieldText, value: md.Artist},
		{label: "Album", kind: fieldText, value: md.Album},
		{label: "Comment", kind: fieldText, value: md.Comment},
		{label: "Genre", kind: fieldText, value: md.Genre},
		{label: "Year", kind: fieldNumber, value: itoa(md.Year)},
		{label: "Track", kind: fieldNumber, value: itoa(md.Track)},
	}

	audio := ""
	if md.Bitrate > 0 {
		audio = fmt.Sprintf("%s, %d kb/s, %d Hz, %d ch", md.Length, md.Bitrate, md.SampleRate, md.Channels)
	}

	return loadedMsg{eng: eng, file: f, tag: tag, fields: fields, audio: audio}
}

func (m *editorModel) shutdown() {
	ctx := context.Background()
	if m.file != nil {
		m.file.Close(ctx)
	}
	if m.eng != nil {
		m.eng.Close(ctx)
	}
}

func (m *editorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.shutdown()
			return m, tea.Quit

		case "q":
			if m.state == stateBrowse {
				m.shutdown()
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateBrowse && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateBrowse && m.selected < len(m.fields)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateBrowse:
				if len(m.fields) == 0 {
					break
				}
				f := m.fields[m.selected]
				ti := textinput.New()
				ti.Prompt = f.label + ": "
				ti.SetValue(f.value)
				ti.CursorEnd()
				ti.Width = 48
				ti.Focus()
				m.input = ti
				m.state = stateEdit

			case stateEdit:
				return m, m.applyField(m.selected, m.input.Value())
			}

		case "ctrl+s":
			if m.state == stateBrowse {
				return m, m.saveFile
			}

		case "esc":
			if m.state == stateEdit {
				m.state = stateBrowse
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.eng = msg.eng
		m.file = msg.file
		m.tag = msg.tag
		m.fields = msg.fields
		m.audio = msg.audio

	case fieldAppliedMsg:
		if msg.err != nil {
			m.status = errorStyle.Render(msg.err.Error())
		} else {
			m.fields[msg.index].value = msg.value
			m.fields[msg.index].dirty = true
			m.status = ""
		}
		m.state = stateBrowse

	case savedMsg:
		switch {
		case msg.err != nil:
			m.status = errorStyle.Render(msg.err.Error())
		case !msg.ok:
			m.status = errorStyle.Render("engine refused to save")
		default:
			for i := range m.fields {
				m.fields[i].dirty = false
			}
			m.status = statusStyle.Render("saved")
		}
	}

	if m.state == stateEdit {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	return m, nil
}

type fieldAppliedMsg struct {
	err   error
	index int
	value string
}

func (m *editorModel) applyField(index int, value string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		f := m.fields[index]

		if f.kind == fieldNumber {
			if value == "" {
				value = "0"
			}
			if _, err := strconv.ParseUint(value, 10, 32); err != nil {
				return fieldAppliedMsg{err: fmt.Errorf("%s must be a number", f.label), index: index}
			}
		}
		if err := applyEdit(ctx, m.tag, f.label, value); err != nil {
			return fieldAppliedMsg{err: err, index: index}
		}
		return fieldAppliedMsg{index: index, value: value}
	}
}

func (m *editorModel) saveFile() tea.Msg {
	ok, err := m.file.Save(context.Background())
	return savedMsg{err: err, ok: ok}
}

func (m *editorModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if len(m.fields) == 0 {
		return "Loading file..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Tag Editor"))
	b.WriteString(" ")
	b.WriteString(m.audioFile)
	b.WriteString("\n\n")

	switch m.state {
	case stateBrowse:
		for i, f := range m.fields {
			mark := " "
			if f.dirty {
				mark = dirtyStyle.Render("*")
			}
			line := fmt.Sprintf("%-8s %s", f.label, valueStyle.Render(f.value))
			if i == m.selected {
				b.WriteString("> " + mark + selectedStyle.Render(line))
			} else {
				b.WriteString("  " + mark + line)
			}
			b.WriteString("\n")
		}
		if m.audio != "" {
			b.WriteString("\n")
			b.WriteString(labelStyle.Render("Audio") + "    " + m.audio)
			b.WriteString("\n")
		}
		if m.status != "" {
			b.WriteString("\n")
			b.WriteString(m.status)
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter edit • ctrl+s save • q quit"))

	case stateEdit:
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter apply • esc cancel"))
	}

	return b.String()
}

func runInteractive(wasmFile, audioFile, mount string) error {
	p := tea.NewProgram(newEditorModel(wasmFile, audioFile, mount), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
