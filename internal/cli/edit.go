package cli

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pinboard/pkg/board"
	"github.com/matzehuels/pinboard/pkg/geom"
	"github.com/matzehuels/pinboard/pkg/interact"
	boardio "github.com/matzehuels/pinboard/pkg/io"
	"github.com/matzehuels/pinboard/pkg/viewport"
)

func (c *CLI) editCommand() *cobra.Command {
	var (
		resources string
		noSave    bool
	)

	cmd := &cobra.Command{
		Use:   "edit <board.json>",
		Short: "Edit a board in the terminal",
		Long: `Edit opens the board in a full-screen terminal view driven by mouse and
keyboard. A missing file starts an empty board. Changes are written back
when the editor is closed with q or ctrl+c.

  v c n        select, connect and note tool
  e / enter    edit the text of the selected note
  a            add a resource by id at the centre of the view
  + - 0        zoom in, out, reset; arrows pan
  g            toggle grid snap
  del          remove the selection
  ctrl+z/y     undo / redo
  alt+l/t/h/v/f align the selected item to the view`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := c.openSession(ctx, args[0], resources)
			if err != nil {
				return err
			}
			defer sess.Close()

			initial := sess.history.State()
			m := interact.New(sess.history, viewport.New(c.Config.Viewport), c.Config.Board.Config, sess.resolver)
			ed := newEditor(ctx, m, args[0])
			ed.resolveTimeout = c.Config.Cache.Timeout

			p := tea.NewProgram(ed, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))
			if _, err := p.Run(); err != nil && ctx.Err() == nil {
				return err
			}

			final := sess.history.State()
			if noSave || board.Equal(final, initial) {
				return nil
			}
			if err := boardio.ExportJSON(final, args[0]); err != nil {
				return err
			}
			c.printSuccess("Saved board")
			c.printFile(args[0])
			c.printStats(len(final.Items), len(final.Connections), 0)
			return nil
		},
	}

	cmd.Flags().StringVar(&resources, "resources", "", "JSON file of known resource descriptors")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "discard changes on exit")
	return cmd
}

// =============================================================================
// Editor Model
// =============================================================================

// Each terminal cell stands for a cellW×cellH block of screen pixels, so
// the interaction machine works in the same units as a graphical client.
const (
	cellW = 8.0
	cellH = 16.0

	doubleClickWindow = 400 * time.Millisecond
	panStep           = 4
	chromeRows        = 2
)

type promptKind int

const (
	promptNone promptKind = iota
	promptNote
	promptResource
)

// editorModel is the bubbletea model of the terminal editor.
type editorModel struct {
	ctx     context.Context
	machine *interact.Machine
	title   string

	width, height int

	prompt promptKind
	input  textinput.Model
	noteID string

	lastUp     time.Time
	lastUpCell [2]int
	message    string

	resolveTimeout time.Duration
	now            func() time.Time
}

func newEditor(ctx context.Context, m *interact.Machine, title string) *editorModel {
	in := textinput.New()
	in.CharLimit = 2000
	return &editorModel{
		ctx:            ctx,
		input:          in,
		machine:        m,
		title:          title,
		width:          80,
		height:         24,
		resolveTimeout: 10 * time.Second,
		now:            time.Now,
	}
}

func (e *editorModel) Init() tea.Cmd { return nil }

func (e *editorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		e.width, e.height = msg.Width, msg.Height
		e.machine.SetScreen(float64(e.width)*cellW, float64(e.boardRows())*cellH)
	case tea.MouseMsg:
		e.mouse(msg)
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return e, tea.Quit
		}
		if e.prompt != promptNone {
			return e, e.promptKey(msg)
		}
		return e, e.key(msg)
	default:
		if e.prompt != promptNone {
			var cmd tea.Cmd
			e.input, cmd = e.input.Update(msg)
			return e, cmd
		}
	}
	return e, nil
}

func (e *editorModel) boardRows() int { return max(e.height-chromeRows, 1) }

// cellCenter is the screen position a terminal cell stands for.
func cellCenter(col, row int) geom.Point {
	return geom.Pt((float64(col)+0.5)*cellW, (float64(row)+0.5)*cellH)
}

func (e *editorModel) mouse(msg tea.MouseMsg) {
	if msg.Y >= e.boardRows() && msg.Action == tea.MouseActionPress {
		return
	}
	ev := interact.Event{
		Screen: cellCenter(msg.X, msg.Y),
		Mods:   interact.Mods{Shift: msg.Shift, Alt: msg.Alt, Ctrl: msg.Ctrl},
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
		ev.Kind, ev.Delta = interact.Wheel, 1
		if msg.Button == tea.MouseButtonWheelUp {
			ev.Delta = -1
		}
		e.machine.Handle(ev)
		return
	case tea.MouseButtonMiddle:
		ev.Button = interact.ButtonMiddle
	case tea.MouseButtonRight:
		ev.Button = interact.ButtonSecondary
	}

	switch msg.Action {
	case tea.MouseActionPress:
		ev.Kind = interact.PointerDown
	case tea.MouseActionRelease:
		ev.Kind = interact.PointerUp
	default:
		ev.Kind = interact.PointerMove
	}
	e.machine.Handle(ev)
	e.message = ""

	if ev.Kind != interact.PointerUp {
		return
	}
	cell, now := [2]int{msg.X, msg.Y}, e.now()
	if cell == e.lastUpCell && now.Sub(e.lastUp) < doubleClickWindow {
		ev.Kind = interact.DoubleClick
		e.machine.Handle(ev)
		e.lastUp = time.Time{}
		return
	}
	e.lastUp, e.lastUpCell = now, cell
}

func (e *editorModel) key(msg tea.KeyMsg) tea.Cmd {
	vp := e.machine.Viewport
	switch msg.String() {
	case "q":
		return tea.Quit
	case "+", "=":
		vp.ZoomIn()
	case "-":
		vp.ZoomOut()
	case "0":
		vp.Reset()
	case "up":
		vp.Pan(0, panStep*cellH)
	case "down":
		vp.Pan(0, -panStep*cellH)
	case "left":
		vp.Pan(panStep*cellW, 0)
	case "right":
		vp.Pan(-panStep*cellW, 0)
	case "e", "enter":
		return e.editNote()
	case "a":
		return e.openPrompt(promptResource, "resource id: ", "")
	default:
		if ev, ok := keyEvent(msg); ok {
			e.machine.Handle(ev)
		}
	}
	return nil
}

// editNote opens the text prompt on the selected note. The prompt is a
// single line, so newlines in the note become spaces once it is saved.
func (e *editorModel) editNote() tea.Cmd {
	id := e.machine.Selection().ItemID
	it, ok := e.machine.Store.State().Item(id)
	if !ok || !it.IsNote() {
		e.message = "select a note to edit"
		return nil
	}
	e.noteID = id
	return e.openPrompt(promptNote, "note: ", it.Text())
}

func (e *editorModel) openPrompt(kind promptKind, label, value string) tea.Cmd {
	e.prompt, e.message = kind, ""
	e.input.Reset()
	e.input.Prompt = label
	e.input.SetValue(value)
	e.input.CursorEnd()
	return e.input.Focus()
}

func (e *editorModel) closePrompt() string {
	text := e.input.Value()
	e.prompt = promptNone
	e.input.Blur()
	e.input.Reset()
	return text
}

func (e *editorModel) promptKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		e.closePrompt()
		return nil
	case tea.KeyEnter:
		e.commitPrompt()
		return nil
	}
	var cmd tea.Cmd
	e.input, cmd = e.input.Update(msg)
	return cmd
}

func (e *editorModel) commitPrompt() {
	kind := e.prompt
	text := e.closePrompt()

	switch kind {
	case promptNote:
		id := e.noteID
		e.machine.Store.Apply("edit note", func(s board.State) board.State { return s.SetNoteText(id, text) })
	case promptResource:
		text = strings.TrimSpace(text)
		if text == "" {
			return
		}
		ctx, cancel := context.WithTimeout(e.ctx, e.resolveTimeout)
		defer cancel()
		center := cellCenter(e.width/2, e.boardRows()/2)
		id := e.machine.Drop(ctx, text, center)
		if it, ok := e.machine.Store.State().Item(id); ok && it.IsPlaceholder() {
			e.message = "could not resolve " + text + ", added a placeholder"
		}
	}
}

// keyEvent translates a terminal key into a key-down event. Terminals send
// no key-up, so space (held to pan) is not forwarded.
func keyEvent(msg tea.KeyMsg) (interact.Event, bool) {
	mods := interact.Mods{Alt: msg.Alt}
	s := strings.TrimPrefix(msg.String(), "alt+")
	if rest, ok := strings.CutPrefix(s, "ctrl+"); ok {
		mods.Ctrl, s = true, rest
	}
	if rest, ok := strings.CutPrefix(s, "shift+"); ok {
		mods.Shift, s = true, rest
	}

	switch s {
	case "esc":
		s = "Escape"
	case "delete":
		s = "Delete"
	case "backspace":
		s = "Backspace"
	case "}":
		s, mods.Shift = "]", true
	case "{":
		s, mods.Shift = "[", true
	default:
		r := []rune(s)
		if len(r) != 1 || unicode.IsSpace(r[0]) {
			return interact.Event{}, false
		}
		if unicode.IsUpper(r[0]) {
			mods.Shift = true
		}
	}
	return interact.Key(s, mods), true
}

// =============================================================================
// View
// =============================================================================

func (e *editorModel) View() string {
	g := drawBoard(e.machine, e.width, e.boardRows())
	return g.String() + "\n" + e.statusLine() + "\n" + e.footer()
}

func (e *editorModel) statusLine() string {
	m := e.machine
	parts := []string{
		styleTitle.Render(e.title),
		"tool " + styleValue.Render(m.Tool().String()),
		fmt.Sprintf("zoom %.0f%%", m.Viewport.Scale*100),
	}
	if m.Viewport.GridSnap() {
		parts = append(parts, "grid")
	}
	s := m.Store.State()
	sel := m.Selection()
	switch {
	case sel.ItemID != "":
		it, _ := s.Item(sel.ItemID)
		parts = append(parts, "selected "+itemName(it))
	case sel.ConnID != "":
		parts = append(parts, "selected connection "+shortID(sel.ConnID))
	}
	if m.Store.CanUndo() {
		parts = append(parts, "undo")
	}
	if m.Store.CanRedo() {
		parts = append(parts, "redo")
	}
	parts = append(parts, plural(len(s.Items), "item"))
	return strings.Join(parts, styleDim.Render(" · "))
}

func (e *editorModel) footer() string {
	switch e.prompt {
	case promptNote:
		return e.input.View() + styleDim.Render("  ⏎ save  esc cancel")
	case promptResource:
		return e.input.View() + styleDim.Render("  ⏎ add  esc cancel")
	}
	if e.message != "" {
		return styleWarning.Render(e.message)
	}
	return styleDim.Render("v c n tools  e edit  a add  +/- zoom  ctrl+z undo  q quit")
}
