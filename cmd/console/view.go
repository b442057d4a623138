package main

import (
	"github.com/jwebster45206/console-university/pkg/dialogue"
	"github.com/jwebster45206/console-university/pkg/presenter"
	"github.com/jwebster45206/console-university/pkg/state"
)

// sceneView is everything the terminal shows. It implements
// presenter.Adapter directly; the UI applies directives to it on the Bubble
// Tea goroutine only.
type sceneView struct {
	startScreen bool
	startImage  string

	scene string

	portraitNPC     string
	portraitVariant string
	portraitImage   string

	conversationNPC  string
	conversationName string
	lines            []state.Line

	menu        []dialogue.MenuOption
	menuVisible bool

	bubbleTitle string
	bubbleText  string

	modalKind  string
	modalText  string
	modalImage string

	placeholderTitle string
	placeholderLabel string

	gameOverTitle   string
	gameOverMessage string

	detached map[string]string // location id → npc that left
}

var _ presenter.Adapter = (*sceneView)(nil)

func newSceneView() *sceneView {
	return &sceneView{detached: make(map[string]string)}
}

func (v *sceneView) inConversation() bool { return v.conversationNPC != "" }
func (v *sceneView) modalOpen() bool      { return v.modalKind != "" }
func (v *sceneView) gameOver() bool       { return v.gameOverTitle != "" }
func (v *sceneView) placeholderOpen() bool {
	return v.placeholderTitle != ""
}

func (v *sceneView) DisplayLine(speaker, text string, side state.Side) {
	v.lines = append(v.lines, state.Line{Speaker: speaker, Text: text, Side: side})
}

func (v *sceneView) SetScene(image string) {
	v.startScreen = false
	v.scene = image
}

func (v *sceneView) SetPortrait(npcID, variant, image string) {
	v.portraitNPC = npcID
	v.portraitVariant = variant
	v.portraitImage = image
}

func (v *sceneView) ShowMenu(options []dialogue.MenuOption) {
	v.menu = options
	v.menuVisible = len(options) > 0
}

func (v *sceneView) HideMenu() {
	v.menuVisible = false
}

func (v *sceneView) ShowModal(kind, text, image string) {
	v.modalKind = kind
	v.modalText = text
	v.modalImage = image
}

func (v *sceneView) closeModal() {
	v.modalKind, v.modalText, v.modalImage = "", "", ""
}

func (v *sceneView) ShowGameOver(title, message string) {
	v.gameOverTitle = title
	v.gameOverMessage = message
	v.menuVisible = false
}

func (v *sceneView) ShowActionBubble(title, text string) {
	v.bubbleTitle = title
	v.bubbleText = text
}

func (v *sceneView) ClearActionBubble() {
	v.bubbleTitle, v.bubbleText = "", ""
}

func (v *sceneView) ClearSpeech() {
	v.lines = nil
}

func (v *sceneView) StartConversation(npcID, name string) {
	v.conversationNPC = npcID
	v.conversationName = name
	v.lines = nil
}

func (v *sceneView) EndConversation() {
	v.conversationNPC = ""
	v.conversationName = ""
	v.portraitNPC, v.portraitVariant, v.portraitImage = "", "", ""
}

func (v *sceneView) DetachNPC(locationID, npcID string) {
	v.detached[locationID] = npcID
}

func (v *sceneView) ShowPlaceholder(title, label string) {
	v.placeholderTitle = title
	v.placeholderLabel = label
}

func (v *sceneView) closePlaceholder() {
	v.placeholderTitle, v.placeholderLabel = "", ""
}

// ShowStartScreen resets the view to a fresh start screen.
func (v *sceneView) ShowStartScreen(image string) {
	*v = *newSceneView()
	v.startScreen = true
	v.startImage = image
}

// transcript renders the conversation as plain text for the clipboard.
func (v *sceneView) transcript() string {
	var out []byte
	for _, l := range v.lines {
		out = append(out, l.Speaker...)
		out = append(out, ": "...)
		out = append(out, l.Text...)
		out = append(out, '\n')
	}
	return string(out)
}

// viewOp is a change to the view, delivered to the Bubble Tea loop as a message.
type viewOp func(v *sceneView)

// programAdapter forwards adapter calls from the runner's timers into the
// Bubble Tea event loop, so the view is only ever mutated by Update.
type programAdapter struct {
	send func(msg any)
}

var _ presenter.Adapter = programAdapter{}

func (a programAdapter) op(f viewOp) { a.send(f) }

func (a programAdapter) DisplayLine(speaker, text string, side state.Side) {
	a.op(func(v *sceneView) { v.DisplayLine(speaker, text, side) })
}
func (a programAdapter) SetScene(image string) {
	a.op(func(v *sceneView) { v.SetScene(image) })
}
func (a programAdapter) SetPortrait(npcID, variant, image string) {
	a.op(func(v *sceneView) { v.SetPortrait(npcID, variant, image) })
}
func (a programAdapter) ShowMenu(options []dialogue.MenuOption) {
	a.op(func(v *sceneView) { v.ShowMenu(options) })
}
func (a programAdapter) HideMenu() {
	a.op(func(v *sceneView) { v.HideMenu() })
}
func (a programAdapter) ShowModal(kind, text, image string) {
	a.op(func(v *sceneView) { v.ShowModal(kind, text, image) })
}
func (a programAdapter) ShowGameOver(title, message string) {
	a.op(func(v *sceneView) { v.ShowGameOver(title, message) })
}
func (a programAdapter) ShowActionBubble(title, text string) {
	a.op(func(v *sceneView) { v.ShowActionBubble(title, text) })
}
func (a programAdapter) ClearActionBubble() {
	a.op(func(v *sceneView) { v.ClearActionBubble() })
}
func (a programAdapter) ClearSpeech() {
	a.op(func(v *sceneView) { v.ClearSpeech() })
}
func (a programAdapter) StartConversation(npcID, name string) {
	a.op(func(v *sceneView) { v.StartConversation(npcID, name) })
}
func (a programAdapter) EndConversation() {
	a.op(func(v *sceneView) { v.EndConversation() })
}
func (a programAdapter) DetachNPC(locationID, npcID string) {
	a.op(func(v *sceneView) { v.DetachNPC(locationID, npcID) })
}
func (a programAdapter) ShowPlaceholder(title, label string) {
	a.op(func(v *sceneView) { v.ShowPlaceholder(title, label) })
}
func (a programAdapter) ShowStartScreen(image string) {
	a.op(func(v *sceneView) { v.ShowStartScreen(image) })
}
