package layout

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/jroimartin/gocui"

	"github.com/pocketcoin/pocketcoin/commands"
)

type cmd struct {
	str   string
	ready bool
	m     sync.RWMutex
}

var command cmd = cmd{}

// PastCmd is the ViewManager that echoes the last entered command.
type PastCmd struct {
	name string
}

// Input box for commands.
type Input struct {
	name string
	cmd  chan commands.Command
}

// Logger is the scrolling output view the engine writes into.
type Logger struct {
	name string
}

// Manual renders the usage text.
type Manual struct {
	name string
	path string
}

func (pc *PastCmd) Layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	// Bottom left corner.
	v, _ := g.SetView(pc.name, 1, maxY*2/3, maxX/3, maxY-6)
	v.Autoscroll = true
	v.Wrap = true

	command.m.RLock()
	defer command.m.RUnlock()
	if command.ready {
		fmt.Fprintln(v, "> "+command.str)
	}
	command.ready = false

	return nil
}

func (i *Input) Layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	// Bottom of the screen.
	v, err := g.SetView(i.name, 1, maxY-5, maxX-1, maxY-1)
	if err != nil && err != gocui.ErrUnknownView {
		return err
	}
	v.Wrap = true
	v.Autoscroll = true
	v.Editor = i
	v.Editable = true
	return nil
}

func (l *Logger) Layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	v, _ := g.SetView(l.name, maxX/3+1, 1, maxX-1, maxY-6)
	v.Autoscroll = true
	v.Wrap = true
	return nil
}

func (m *Manual) Layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	v, _ := g.SetView(m.name, 1, 1, maxX/3, maxY*2/3-1)
	v.Autoscroll = true
	v.Wrap = true
	v.Clear()
	dat, err := os.ReadFile(m.path)
	if err != nil {
		g.Close()
		log.Fatal(err)
	}
	fmt.Fprintln(v, string(dat))
	return nil
}

func (i *Input) Edit(v *gocui.View, key gocui.Key, ch rune, mod gocui.Modifier) {
	switch {
	case key == gocui.KeyEnter:
		// Read buffer and strip the newline.
		s := v.Buffer()
		s = strings.Replace(s, "\n", "", -1)
		op, err := commands.CreateCommand(s)
		command.m.Lock()
		command.str = s
		if err != nil {
			command.str = s + "\n" + err.Error()
		}
		command.ready = true
		command.m.Unlock()
		if err == nil {
			// A valid command, hand it to the engine loop.
			i.cmd <- op
		}

		// Reset cursor.
		v.Clear()
		v.SetOrigin(0, 0)
		v.SetCursor(0, 0)

	case ch != 0 && mod == 0:
		v.EditWrite(ch)
	case key == gocui.KeySpace:
		v.EditWrite(' ')
	case key == gocui.KeyBackspace || key == gocui.KeyBackspace2:
		v.EditDelete(true)
	}
}

func SetFocus(name string) func(g *gocui.Gui) error {
	return func(g *gocui.Gui) error {
		_, err := g.SetCurrentView(name)
		return err
	}
}

// Log writes a line into the logger view, or falls back to stdlib log when
// running without a GUI.
func Log(g *gocui.Gui, format string, args ...interface{}) {
	if g == nil {
		log.Printf(format, args...)
		return
	}
	g.Update(func(gui *gocui.Gui) error {
		v, err := gui.View("logger")
		if err != nil {
			return err
		}
		fmt.Fprintf(v, format+"\n", args...)
		return nil
	})
}

// CreateGui builds the TUI, using the command channel to pass parsed
// commands to the engine loop.
func CreateGui(cmd chan commands.Command, manualPath string) (*gocui.Gui, error) {
	g, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		return nil, err
	}

	g.Cursor = true

	pc := &PastCmd{name: "pastcommand"}
	l := &Logger{name: "logger"}
	m := &Manual{name: "manual", path: manualPath}
	input := &Input{name: "input", cmd: cmd}
	focus := gocui.ManagerFunc(SetFocus("input"))
	g.SetManager(pc, input, l, m, focus)

	if err := g.SetKeybinding("", gocui.KeyCtrlC, gocui.ModNone, quit); err != nil {
		log.Panicln(err)
	}

	return g, err
}

func quit(g *gocui.Gui, v *gocui.View) error {
	return gocui.ErrQuit
}
