package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/qforge/qtopo/pkg/live"
)

// maxWatchRows bounds the event backlog held by the watch TUI.
const maxWatchRows = 500

// watchCommand creates the watch command, which streams live simulation
// events from the server's websocket channel in a terminal UI.
func (c *CLI) watchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stream live simulation events from the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cl, _, err := c.newClient(ctx)
			if err != nil {
				return err
			}
			wsURL, err := cl.ChannelURL()
			if err != nil {
				return err
			}

			channel := live.NewChannel(c.Logger)
			if err := channel.Connect(ctx, wsURL); err != nil {
				return err
			}
			defer channel.Disconnect()

			// Handlers run on the channel's read loop; a full buffer
			// drops the event rather than stalling the socket.
			msgs := make(chan tea.Msg, 256)
			forward := func(event string) live.Handler {
				return func(data json.RawMessage) {
					select {
					case msgs <- liveEventMsg{event: event, data: data}:
					default:
					}
				}
			}
			for _, event := range []string{
				live.EventSimulation,
				"server_response",
				"simulation_summary",
				"topology_saved",
			} {
				channel.Subscribe(event, forward(event))
			}

			model := newWatchModel(wsURL, msgs)
			p := tea.NewProgram(model, tea.WithContext(ctx))
			_, err = p.Run()
			return err
		},
	}
}

// =============================================================================
// WatchModel - Live event stream
// =============================================================================

// liveEventMsg carries one websocket event into the TUI.
type liveEventMsg struct {
	event string
	data  json.RawMessage
}

type watchRow struct {
	at    time.Time
	event string
	text  string
}

// watchModel is the bubbletea model for the live event stream.
type watchModel struct {
	URL    string
	Rows   []watchRow
	Height int
	msgs   chan tea.Msg
}

func newWatchModel(url string, msgs chan tea.Msg) watchModel {
	return watchModel{
		URL:    url,
		Height: 20,
		msgs:   msgs,
	}
}

// waitEvent re-arms the bridge from the websocket channel into bubbletea.
func (m watchModel) waitEvent() tea.Cmd {
	return func() tea.Msg {
		return <-m.msgs
	}
}

func (m watchModel) Init() tea.Cmd {
	return m.waitEvent()
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "c":
			m.Rows = nil
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	case liveEventMsg:
		m.Rows = append(m.Rows, watchRow{
			at:    time.Now(),
			event: msg.event,
			text:  formatLiveEvent(msg.event, msg.data),
		})
		if len(m.Rows) > maxWatchRows {
			m.Rows = m.Rows[len(m.Rows)-maxWatchRows:]
		}
		return m, m.waitEvent()
	}
	return m, nil
}

func (m watchModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Simulation Events"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render(m.URL))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("q quit  c clear"))
	b.WriteString("\n\n")

	start := 0
	if len(m.Rows) > m.Height {
		start = len(m.Rows) - m.Height
	}
	for _, row := range m.Rows[start:] {
		b.WriteString(StyleDim.Render(row.at.Format("15:04:05.00")))
		b.WriteString(" ")
		b.WriteString(eventStyle(row.event).Render(fmt.Sprintf("%-18s", row.event)))
		b.WriteString(" ")
		b.WriteString(StyleValue.Render(row.text))
		b.WriteString("\n")
	}
	if len(m.Rows) == 0 {
		b.WriteString(StyleDim.Render("  waiting for events..."))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("  [%d events]", len(m.Rows))))
	return b.String()
}

func eventStyle(event string) lipgloss.Style {
	switch event {
	case live.EventSimulation:
		return StyleHighlight
	case "server_response":
		return StyleSuccess
	case "simulation_summary":
		return StyleWarning
	default:
		return StyleDim
	}
}

// formatLiveEvent renders the payload of a known event as a one-line
// summary, falling back to compact JSON.
func formatLiveEvent(event string, data json.RawMessage) string {
	switch event {
	case live.EventSimulation:
		var ev struct {
			Step int    `json:"step"`
			From string `json:"from"`
			To   string `json:"to"`
		}
		if err := json.Unmarshal(data, &ev); err == nil && ev.From != "" {
			return fmt.Sprintf("step %d  %s %s %s", ev.Step, ev.From, iconArrow, ev.To)
		}
	case "server_response":
		var ev struct {
			From    string `json:"from_node_name"`
			To      string `json:"to_node_name"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(data, &ev); err == nil && ev.From != "" {
			return fmt.Sprintf("%s %s %s: %s", ev.From, iconArrow, ev.To, ev.Message)
		}
	case "simulation_summary":
		var ev struct {
			Steps int `json:"steps"`
		}
		if err := json.Unmarshal(data, &ev); err == nil {
			return fmt.Sprintf("finished after %d steps", ev.Steps)
		}
	}
	return string(data)
}
