// Package tui is the terminal front end: a scrollback of room traffic and a
// single input line for commands and chat.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dkeye/bubble/internal/app/orch"
	"github.com/dkeye/bubble/internal/domain"
)

const (
	maxLines       = 100
	commandTimeout = 10 * time.Second
	helpText       = "commands: /join <room> [servers...] /rooms /leave /name <name> /quit"
)

// Controller is the part of the room controller the terminal drives.
type Controller interface {
	EnterRoom(ctx context.Context, req orch.EnterRequest) error
	SendMessage(ctx context.Context, name, body string) error
	ListRooms(ctx context.Context) (domain.PresenceSet, error)
	LeaveRoom(ctx context.Context) error
	Current() (domain.RoomID, orch.State)
}

// doneMsg reports a finished controller call. Failures are already surfaced
// as notices by the controller, so only successes carry a line. room is the
// controller's active room after the call.
type doneMsg struct {
	line string
	room domain.RoomID
	err  error
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("247"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	nameStyle   = lipgloss.NewStyle().Bold(true)
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1)
)

type model struct {
	ctx    context.Context
	ctrl   Controller
	events <-chan tea.Msg

	input    textinput.Model
	viewport viewport.Model
	lines    []string

	name string
	room domain.RoomID

	width  int
	height int
}

func newModel(ctx context.Context, ctrl Controller, sink *Sink, name string) model {
	in := textinput.New()
	in.Placeholder = "type a message or /help"
	in.CharLimit = 512
	in.Focus()

	m := model{
		ctx:      ctx,
		ctrl:     ctrl,
		events:   sink.events,
		input:    in,
		viewport: viewport.New(80, 20),
		name:     strings.TrimSpace(name),
	}
	if m.name == "" {
		m.addLine(statusStyle.Render("Set a name with /name <name>, then /join <room>."))
	} else {
		m.addLine(statusStyle.Render(helpText))
	}
	return m
}

// Run starts the terminal program and blocks until the user quits or ctx ends.
func Run(ctx context.Context, ctrl Controller, sink *Sink, name string) error {
	p := tea.NewProgram(newModel(ctx, ctrl, sink, name), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m model) Init() tea.Cmd {
	return tea.Batch(waitEvent(m.events), textinput.Blink)
}

func (m *model) addLine(line string) {
	m.lines = append(m.lines, line)
	if len(m.lines) > maxLines {
		m.lines = m.lines[len(m.lines)-maxLines:]
	}
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	m.viewport.GotoBottom()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = max(msg.Width-4, 10)
		m.viewport.Height = max(msg.Height-7, 3)
		m.input.Width = max(msg.Width-6, 10)
		m.viewport.SetContent(strings.Join(m.lines, "\n"))
		m.viewport.GotoBottom()
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEnter:
			line := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			if line == "" {
				return m, nil
			}
			if strings.HasPrefix(line, "/") {
				return m, m.handleCommand(line)
			}
			return m, m.send(line)
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	case messageMsg:
		m.addLine(statusStyle.Render(msg.at.Format("15:04:05")) + " " + nameStyle.Render(msg.Name+":") + " " + msg.Message)
		return m, waitEvent(m.events)
	case noticeMsg:
		m.addLine(noticeStyle.Render("! " + msg.Message))
		return m, waitEvent(m.events)
	case roomsMsg:
		if len(msg) == 0 {
			m.addLine(statusStyle.Render("no active rooms"))
		} else {
			ids := make([]string, 0, len(msg))
			for _, r := range msg {
				ids = append(ids, string(r))
			}
			m.addLine(statusStyle.Render("rooms: " + strings.Join(ids, ", ")))
		}
		return m, waitEvent(m.events)
	case closedMsg:
		return m, nil
	case doneMsg:
		// A failed switch leaves the controller idle, so the room always
		// follows the controller.
		m.room = msg.room
		if msg.err == nil && msg.line != "" {
			m.addLine(statusStyle.Render(msg.line))
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) handleCommand(line string) tea.Cmd {
	parts := strings.Fields(line)
	ctrl := m.ctrl
	switch parts[0] {
	case "/help":
		m.addLine(statusStyle.Render(helpText))
		return nil
	case "/quit":
		return tea.Quit
	case "/name":
		if len(parts) < 2 {
			m.addLine(statusStyle.Render("usage: /name <name>"))
			return nil
		}
		name, err := domain.NormalizeUsername(strings.TrimSpace(strings.TrimPrefix(line, parts[0])))
		if err != nil {
			m.addLine(noticeStyle.Render("! " + domain.ErrorInvalidArgument.Notice()))
			return nil
		}
		m.name = name
		m.addLine(statusStyle.Render("name set: " + name))
		return nil
	case "/join":
		if len(parts) < 2 {
			m.addLine(statusStyle.Render("usage: /join <room> [servers...]"))
			return nil
		}
		if m.name == "" {
			m.addLine(statusStyle.Render("Set a name with /name <name> first."))
			return nil
		}
		req := orch.EnterRequest{Room: parts[1], Endpoints: parts[2:], User: m.name}
		return m.call(func(ctx context.Context) doneMsg {
			if err := ctrl.EnterRoom(ctx, req); err != nil {
				return doneMsg{err: err}
			}
			return doneMsg{line: "joined " + req.Room}
		})
	case "/rooms":
		return m.call(func(ctx context.Context) doneMsg {
			_, err := ctrl.ListRooms(ctx)
			return doneMsg{err: err}
		})
	case "/leave":
		return m.call(func(ctx context.Context) doneMsg {
			if err := ctrl.LeaveRoom(ctx); err != nil {
				return doneMsg{err: err}
			}
			return doneMsg{line: "left the room"}
		})
	default:
		m.addLine(statusStyle.Render(fmt.Sprintf("unknown command %s, try /help", parts[0])))
		return nil
	}
}

func (m *model) send(body string) tea.Cmd {
	name, ctrl := m.name, m.ctrl
	return m.call(func(ctx context.Context) doneMsg {
		return doneMsg{err: ctrl.SendMessage(ctx, name, body)}
	})
}

func (m *model) call(fn func(ctx context.Context) doneMsg) tea.Cmd {
	parent, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, commandTimeout)
		defer cancel()
		done := fn(ctx)
		done.room, _ = ctrl.Current()
		return done
	}
}

func (m model) View() string {
	room := string(m.room)
	if room == "" {
		room = "-"
	}
	name := m.name
	if name == "" {
		name = "-"
	}
	header := headerStyle.Render("bubble") + "  " + statusStyle.Render("room="+room+" name="+name)
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		boxStyle.Render(m.viewport.View()),
		m.input.View(),
	)
}
