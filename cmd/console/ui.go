package main

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/jwebster45206/console-university/pkg/chat"
	"github.com/jwebster45206/console-university/pkg/dialogue"
	"github.com/jwebster45206/console-university/pkg/presenter"
	"github.com/jwebster45206/console-university/pkg/state"
	"github.com/muesli/reflow/wordwrap"
)

const (
	Title           = "CONSOLE UNIVERSITY"
	PlaceHolderText = "Say something..."
)

// orientationChoices are the buttons on the orientation modal.
var orientationChoices = []dialogue.MenuOption{
	{Label: "Go to the Quad", Action: dialogue.Action{Kind: dialogue.ActionGoToQuad}},
	{Label: "Drop Out", Action: dialogue.Action{Kind: dialogue.ActionDropOut}},
	{Label: "Close", Action: dialogue.Action{Kind: dialogue.ActionCloseOrientation}},
}

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config   *ConsoleConfig
	client   *http.Client
	gameID   uuid.UUID
	screen   state.Screen
	location string

	view    *sceneView
	runner  *presenter.Runner
	pending []dialogue.Step

	chatViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	status       string
	err          error
	selected     int

	showQuitModal bool
}

type turnMsg struct {
	resp *chat.TurnResponse
	err  error
}

type copiedMsg struct {
	err error
}

type menuMsg struct {
	options []dialogue.MenuOption
	err     error
}

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	sceneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	bubbleStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("86")).
			Padding(0, 1)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

// NewConsoleUI builds the model for a freshly created game. The first turn's
// steps are played from Init.
func NewConsoleUI(cfg *ConsoleConfig, client *http.Client, runner *presenter.Runner, view *sceneView, first *chat.TurnResponse) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = chat.MaxMessageLength
	ta.SetWidth(50)
	ta.SetHeight(2)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	return ConsoleUI{
		config:       cfg,
		client:       client,
		gameID:       first.GameStateID,
		screen:       first.Screen,
		location:     first.Location,
		view:         view,
		runner:       runner,
		pending:      first.Steps,
		textarea:     ta,
		chatViewport: chatVp,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return m.play(m.pending)
}

// play hands a schedule to the runner. The runner feeds directives back as
// viewOp messages, so it must not run on the event loop goroutine.
func (m ConsoleUI) play(steps []dialogue.Step) tea.Cmd {
	runner := m.runner
	return func() tea.Msg {
		runner.Play(steps)
		return nil
	}
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		return m, vpCmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		chatWidth := m.chatWidth()
		m.chatViewport.Width = chatWidth - 2
		m.chatViewport.Height = m.height - 14
		if m.chatViewport.Height < 3 {
			m.chatViewport.Height = 3
		}
		m.textarea.SetWidth(chatWidth - 4)
		m.ready = true
		m.writeChatContent()

	case viewOp:
		msg(m.view)
		if m.selected >= len(m.view.menu) {
			m.selected = 0
		}
		m.syncFocus()
		m.writeChatContent()
		return m, nil

	case turnMsg:
		if msg.err != nil {
			if isBusy(msg.err) {
				m.status = "Hold on, they're still talking."
			} else {
				m.err = msg.err
			}
			return m, nil
		}
		m.err = nil
		m.status = ""
		m.screen = msg.resp.Screen
		m.location = msg.resp.Location
		return m, m.play(msg.resp.Steps)

	case menuMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.view.ShowMenu(msg.options)
		m.selected = 0
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			m.err = fmt.Errorf("copy transcript: %w", msg.err)
		} else {
			m.status = "Transcript copied."
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			m.showQuitModal = true
			return m, nil
		case tea.KeyCtrlY:
			return m, copyTranscript(m.view.transcript())
		}
		if model, cmd, handled := m.handleKey(msg); handled {
			return model, cmd
		}
		if !m.view.inConversation() {
			return m, nil
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd)
}

// handleKey routes a key press to whatever currently has focus. It reports
// false when the key should fall through to the text input.
func (m ConsoleUI) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	v := m.view
	switch {
	case v.gameOver():
		switch msg.String() {
		case "r", "R", "enter":
			return m, m.restart(), true
		case "q", "Q", "esc":
			m.showQuitModal = true
		}
		return m, nil, true

	case v.startScreen:
		switch msg.String() {
		case "enter":
			return m, m.perform(dialogue.Action{Kind: dialogue.ActionEnroll}), true
		case "q", "Q", "esc":
			m.showQuitModal = true
		}
		return m, nil, true

	case v.placeholderOpen():
		if msg.Type == tea.KeyEnter || msg.Type == tea.KeyEsc {
			v.closePlaceholder()
			m.writeChatContent()
		}
		return m, nil, true

	case v.modalOpen():
		if m.moveSelection(msg, len(orientationChoices)) {
			return m, nil, true
		}
		if msg.Type == tea.KeyEnter {
			choice := orientationChoices[m.selected]
			v.closeModal()
			m.selected = 0
			m.writeChatContent()
			return m, m.perform(choice.Action), true
		}
		return m, nil, true

	case v.inConversation():
		switch msg.Type {
		case tea.KeyEsc:
			return m, m.perform(dialogue.Action{Kind: dialogue.ActionCancel}), true
		case tea.KeyEnter:
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil, true
			}
			m.textarea.Reset()
			m.status = ""
			return m, m.sendChatMessage(input), true
		}
		return m, nil, false

	case v.menuVisible:
		if m.moveSelection(msg, len(v.menu)) {
			m.writeChatContent()
			return m, nil, true
		}
		if msg.Type == tea.KeyEnter && m.selected < len(v.menu) {
			return m, m.perform(v.menu[m.selected].Action), true
		}
		if msg.String() == "esc" {
			m.showQuitModal = true
		}
		return m, nil, true
	}

	switch msg.String() {
	case "esc":
		m.showQuitModal = true
	case "enter", "m", "M":
		// Nothing on screen to act on; ask the server what is available.
		return m, m.refreshMenu(), true
	}
	return m, nil, true
}

// moveSelection handles arrow and number keys for a list of n options.
func (m *ConsoleUI) moveSelection(msg tea.KeyMsg, n int) bool {
	if n == 0 {
		return false
	}
	switch msg.Type {
	case tea.KeyUp:
		m.selected = (m.selected - 1 + n) % n
		return true
	case tea.KeyDown, tea.KeyTab:
		m.selected = (m.selected + 1) % n
		return true
	}
	if s := msg.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
		if i := int(s[0] - '1'); i < n {
			m.selected = i
			return true
		}
	}
	return false
}

func (m *ConsoleUI) syncFocus() {
	if m.view.inConversation() && !m.view.modalOpen() && !m.view.gameOver() {
		m.textarea.Focus()
	} else {
		m.textarea.Blur()
	}
}

func (m ConsoleUI) sendChatMessage(message string) tea.Cmd {
	client, baseURL, id := m.client, m.config.APIBaseURL, m.gameID
	return func() tea.Msg {
		resp, err := sendChat(client, baseURL, id, message)
		return turnMsg{resp: resp, err: err}
	}
}

func (m ConsoleUI) perform(action dialogue.Action) tea.Cmd {
	client, baseURL, id := m.client, m.config.APIBaseURL, m.gameID
	return func() tea.Msg {
		resp, err := sendAction(client, baseURL, id, action)
		return turnMsg{resp: resp, err: err}
	}
}

func (m ConsoleUI) restart() tea.Cmd {
	client, baseURL, id := m.client, m.config.APIBaseURL, m.gameID
	return func() tea.Msg {
		resp, err := restartGame(client, baseURL, id)
		return turnMsg{resp: resp, err: err}
	}
}

func (m ConsoleUI) refreshMenu() tea.Cmd {
	client, baseURL, id := m.client, m.config.APIBaseURL, m.gameID
	return func() tea.Msg {
		options, err := getMenu(client, baseURL, id)
		return menuMsg{options: options, err: err}
	}
}

func copyTranscript(text string) tea.Cmd {
	return func() tea.Msg {
		return copiedMsg{err: clipboard.WriteAll(text)}
	}
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case viewOp:
		// Keep the scene current underneath the modal.
		msg(m.view)
		m.writeChatContent()

	case turnMsg:
		if msg.err == nil {
			m.screen = msg.resp.Screen
			m.location = msg.resp.Location
			return m, m.play(msg.resp.Steps)
		}

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEnter:
			// main stops the runner after Run returns. Stop must not run on
			// this loop while a directive is waiting to be delivered to it.
			return m, tea.Quit
		case tea.KeyEsc:
			m.showQuitModal = false
			return m, nil
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.syncFocus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) chatWidth() int {
	w := int(float64(m.width)*0.72) - 4
	if w < 20 {
		w = 20
	}
	return w
}

// writeChatContent re-renders the conversation into the viewport.
func (m *ConsoleUI) writeChatContent() {
	m.chatViewport.SetContent(formatLines(m.view.lines, m.chatViewport.Width-2))
	m.chatViewport.GotoBottom()
}

// formatLines renders speech lines, NPC lines on the left and the player's
// on the right.
func formatLines(lines []state.Line, width int) string {
	if width < 10 {
		width = 10
	}
	var content strings.Builder
	for _, l := range lines {
		text := wordwrap.String(l.Text, width-2)
		if l.Side == state.SidePlayer {
			block := userStyle.Render(l.Speaker+":") + "\n" + text
			content.WriteString(lipgloss.NewStyle().Width(width).Align(lipgloss.Right).Render(block))
		} else {
			content.WriteString(speakerStyle.Render(l.Speaker+":") + "\n" + text)
		}
		content.WriteString("\n\n")
	}
	return content.String()
}

// renderMenu lists options with the cursor on selected.
func renderMenu(options []dialogue.MenuOption, selected int) string {
	var content strings.Builder
	for i, opt := range options {
		label := fmt.Sprintf("%d. %s", i+1, opt.Label)
		if i == selected {
			content.WriteString(modalSelectedItemStyle.Render("▶ " + label))
		} else {
			content.WriteString(modalItemStyle.Render("  " + label))
		}
		content.WriteString("\n")
	}
	return content.String()
}

func imageName(image string) string {
	if image == "" {
		return "(no image)"
	}
	return filepath.Base(image)
}

func (m ConsoleUI) renderMeta() string {
	v := m.view
	var content strings.Builder
	content.WriteString(titleStyle.Render("STATUS") + "\n\n")
	fmt.Fprintf(&content, "Screen:   %s\n", m.screen)
	if m.location != "" {
		fmt.Fprintf(&content, "Location: %s\n", m.location)
	}
	if v.conversationName != "" {
		fmt.Fprintf(&content, "Talking:  %s\n", v.conversationName)
	}
	if v.portraitNPC != "" {
		fmt.Fprintf(&content, "Portrait: %s (%s)\n", v.portraitVariant, imageName(v.portraitImage))
	}
	content.WriteString("\n" + separatorStyle.Render(fmt.Sprintf("Game %s", m.gameID.String()[:8])) + "\n\n")

	content.WriteString(promptStyle.Render(strings.Join([]string{
		"↑/↓ or 1-9  choose",
		"Enter       confirm / send",
		"Esc         leave conversation",
		"Ctrl+Y      copy transcript",
		"Ctrl+C      quit",
	}, "\n")))
	return content.String()
}

func (m ConsoleUI) renderQuitModal() string {
	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit Game?"))
	content.WriteString("\n\n")
	content.WriteString("Are you sure you want to leave campus?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))
	return m.centered(modalStyle.Width(50).Render(content.String()))
}

func (m ConsoleUI) renderStartScreen() string {
	var content strings.Builder
	content.WriteString(modalTitleStyle.Render(Title))
	content.WriteString("\n\n")
	content.WriteString(sceneStyle.Render(imageName(m.view.startImage)))
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Enter to enroll, Q to quit"))
	return m.centered(modalStyle.Width(50).Render(content.String()))
}

func (m ConsoleUI) renderOrientation() string {
	v := m.view
	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Orientation"))
	content.WriteString("\n\n")
	content.WriteString(wordwrap.String(v.modalText, 52))
	content.WriteString("\n\n")
	content.WriteString(renderMenu(orientationChoices, m.selected))
	return m.centered(modalStyle.Width(60).Render(content.String()))
}

func (m ConsoleUI) renderGameOver() string {
	v := m.view
	var content strings.Builder
	content.WriteString(modalTitleStyle.Render(v.gameOverTitle))
	content.WriteString("\n\n")
	content.WriteString(wordwrap.String(v.gameOverMessage, 44))
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press R to play again, Q to quit"))
	return m.centered(modalStyle.Width(50).Render(content.String()))
}

func (m ConsoleUI) renderPlaceholder() string {
	v := m.view
	var content strings.Builder
	content.WriteString(modalTitleStyle.Render(v.placeholderTitle))
	content.WriteString("\n\n")
	content.WriteString(v.placeholderLabel)
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Enter to continue"))
	return m.centered(modalStyle.Width(50).Render(content.String()))
}

func (m ConsoleUI) centered(modal string) string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if !m.ready || m.width == 0 || m.height == 0 {
		return "\n  Initializing..."
	}
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	v := m.view
	switch {
	case v.gameOver():
		return m.renderGameOver()
	case v.startScreen:
		return m.renderStartScreen()
	case v.modalOpen():
		return m.renderOrientation()
	case v.placeholderOpen():
		return m.renderPlaceholder()
	}

	chatWidth := m.chatWidth()
	metaWidth := m.width - chatWidth - 6

	header := titleStyle.Render(Title) + "  " + sceneStyle.Render(imageName(v.scene))
	parts := []string{header, separatorStyle.Render(strings.Repeat("─", chatWidth-4))}
	if v.bubbleTitle != "" {
		bubble := titleStyle.Render(v.bubbleTitle) + "\n" + wordwrap.String(v.bubbleText, chatWidth-10)
		parts = append(parts, bubbleStyle.Render(bubble))
	}
	parts = append(parts, m.chatViewport.View(), "")

	switch {
	case v.inConversation():
		parts = append(parts, separatorStyle.Render(strings.Repeat("─", chatWidth-4)), m.textarea.View())
	case v.menuVisible:
		parts = append(parts, renderMenu(v.menu, m.selected))
	}

	if m.err != nil {
		parts = append(parts, errorStyle.Render("Error: "+m.err.Error()))
	} else if m.status != "" {
		parts = append(parts, statusStyle.Render(m.status))
	}

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left, parts...),
	)
	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(m.renderMeta())

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}
