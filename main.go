// insight TUI - terminal client for the Health Insight service.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/healthinsight/insight-tui/internal/api"
	"github.com/healthinsight/insight-tui/internal/auth"
	"github.com/healthinsight/insight-tui/internal/classify"
	"github.com/healthinsight/insight-tui/internal/cli"
	"github.com/healthinsight/insight-tui/internal/config"
	"github.com/healthinsight/insight-tui/internal/model"
	"github.com/healthinsight/insight-tui/internal/storage"
	"github.com/healthinsight/insight-tui/internal/ui/chat"
	"github.com/healthinsight/insight-tui/internal/ui/components"
	"github.com/healthinsight/insight-tui/internal/ui/event"
	"github.com/healthinsight/insight-tui/internal/ui/sidebar"
	"github.com/healthinsight/insight-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Global program reference for async sends into the event loop
var (
	programRef *tea.Program
	programMu  sync.Mutex
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	args, err := cli.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cli.Usage()
		os.Exit(2)
	}

	if args.Command == cli.CmdTUI {
		runTUI()
		return
	}
	os.Exit(cli.Run(args))
}

func runTUI() {
	cfg := config.Global()
	theme := styles.NewTheme()

	dir, err := config.Dir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	store := storage.NewTokenStore(dir)
	token, err := store.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not read stored token: %v\n", err)
	}

	session := api.NewSessionContext(token, store)
	client := api.NewClient(cfg.Backend.BaseURL, session).WithTimeout(cfg.Timeout())

	// Any authenticated request answered with 401 funnels through this one
	// callback: token already cleared, UI told to fall back to the gate.
	session.SetAuthFailureCallback(func() {
		programMu.Lock()
		p := programRef
		programMu.Unlock()
		if p != nil {
			p.Send(event.AuthExpiredMsg{})
		}
	})

	m := newAppModel(theme, cfg, client, session, store)

	// Config edits on disk apply live where they can.
	watcher, err := config.Watch(func(updated *config.Config) {
		programMu.Lock()
		p := programRef
		programMu.Unlock()
		if p != nil {
			p.Send(configReloadedMsg{cfg: updated})
		}
	})
	if err == nil {
		defer watcher.Close()
	}

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
	)

	programMu.Lock()
	programRef = p
	programMu.Unlock()

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running insight: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// APPLICATION MODEL
// =============================================================================

// State represents the current application state.
type State int

const (
	StateLogin State = iota
	StateRegister
	StateChat
	StateError
)

// focusArea selects which pane receives keys in StateChat.
type focusArea int

const (
	focusChat focusArea = iota
	focusSidebar
)

// configReloadedMsg carries a live config reload into the event loop.
type configReloadedMsg struct {
	cfg *config.Config
}

// Internal messages for account actions.
type (
	accountDeletedMsg struct{ err error }
	hcApplicationMsg  struct {
		app *model.HCApplication
		err error
	}
	hcSubmitDoneMsg struct{ err error }
	hcCancelDoneMsg struct{ err error }
)

// appModel is the root Bubble Tea model.
type appModel struct {
	state State
	theme *styles.Theme
	cfg   *config.Config

	width  int
	height int

	client  *api.Client
	session *api.SessionContext
	store   *storage.TokenStore

	toasts *components.ToastManager

	// Gate forms
	gate gateForm

	// Chat state
	chatModel    chat.Model
	sidebarModel sidebar.Model
	focus        focusArea

	userMenu *components.UserMenu
	hcForm   *components.HCForm
	hcOpen   bool
	confirm  *components.ConfirmPrompt

	poller  *auth.Poller
	profile model.Profile

	errorMsg string
}

func newAppModel(theme *styles.Theme, cfg *config.Config, client *api.Client, session *api.SessionContext, store *storage.TokenStore) appModel {
	toasts := components.NewToastManager()

	m := appModel{
		state:        StateLogin,
		theme:        theme,
		cfg:          cfg,
		client:       client,
		session:      session,
		store:        store,
		toasts:       toasts,
		gate:         newGateForm(),
		chatModel:    chat.New(theme, client, classify.NewKeywordClassifier(), toasts, cfg.Export.OutputDir),
		sidebarModel: sidebar.New(theme, client, toasts),
		userMenu:     components.NewUserMenu(),
		hcForm:       components.NewHCForm(),
		confirm:      components.NewConfirmPrompt(),
		poller:       auth.NewPoller(client, cfg.PollInterval()),
	}

	// A persisted token skips the gate; the first profile fetch validates
	// it, and a 401 drops straight back to login through the session hook.
	if session.Authenticated() {
		m.state = StateChat
	}

	// A config broken beyond the loader's repair (bad base URL, zero
	// timeout) has no usable backend; surface it instead of a dead gate.
	if err := cfg.Validate(); err != nil {
		m.state = StateError
		m.errorMsg = err.Error()
	}
	return m
}

// Init starts the toast ticker and, when already signed in, the initial
// loads and the poll loop.
func (m appModel) Init() tea.Cmd {
	cmds := []tea.Cmd{components.ToastTickCmd(), textinput.Blink}
	if m.state == StateChat {
		cmds = append(cmds,
			auth.FetchProfileCmd(m.client),
			m.sidebarModel.Init(),
			m.chatModel.Init(),
			m.poller.TickCmd(),
		)
	}
	return tea.Batch(cmds...)
}

// =============================================================================
// UPDATE
// =============================================================================

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		sidebarWidth := m.cfg.UI.SidebarWidth
		if sidebarWidth >= m.width {
			sidebarWidth = m.width / 3
		}
		m.sidebarModel.SetSize(sidebarWidth, m.height-2)
		m.chatModel.SetSize(m.width-sidebarWidth-1, m.height-2)
		return m, nil

	case components.ToastTickMsg:
		m.toasts.Tick(msg.Time)
		return m, components.ToastTickCmd()

	case configReloadedMsg:
		m.cfg = msg.cfg
		m.poller.SetInterval(msg.cfg.PollInterval())
		return m, nil

	case event.AuthExpiredMsg:
		return m.handleAuthExpired()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	switch m.state {
	case StateLogin, StateRegister:
		return m.updateGate(msg)
	case StateChat:
		return m.updateChat(msg)
	default:
		if key, ok := msg.(tea.KeyMsg); ok && key.String() == "q" {
			return m, tea.Quit
		}
		return m, nil
	}
}

// handleAuthExpired drops to the login gate from anywhere. The token is
// already cleared by the session context.
func (m appModel) handleAuthExpired() (tea.Model, tea.Cmd) {
	m.state = StateLogin
	m.gate = newGateForm()
	m.poller.Pause()
	m.hcOpen = false
	m.userMenu.Close()
	m.chatModel.Reset()
	m.sidebarModel.Reset()
	m.profile = model.Profile{}
	m.toasts.Push(components.ToastWarning, "Session expired. Please sign in again.")
	return m, textinput.Blink
}

// =============================================================================
// CHAT STATE UPDATE
// =============================================================================

func (m appModel) updateChat(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleChatKey(msg)

	case auth.PollTickMsg:
		return m, m.poller.HandleTick()

	case auth.ProfileLoadedMsg:
		if msg.Err != nil {
			// A 401 already routed through the session hook; anything else
			// keeps the last known role.
			return m, nil
		}
		m.profile = msg.Profile
		m.userMenu.SetProfile(msg.Profile)
		m.chatModel.SetViewerRole(msg.Profile.Role)
		return m, nil

	case sidebar.DeleteRequestedMsg:
		id := msg.ID
		m.confirm.Show(fmt.Sprintf("Delete \"%s\"? This cannot be undone.", msg.Title),
			func() tea.Msg { return sidebar.DeleteConfirmedMsg{ID: id} })
		return m, nil

	case components.OpenHCApplicationMsg:
		m.hcOpen = true
		return m, m.loadHCApplicationCmd()

	case components.CloseHCViewMsg:
		m.hcOpen = false
		return m, m.chatModel.Focus()

	case components.HCSubmitMsg:
		return m, m.submitHCApplicationCmd(msg.Form)

	case components.HCCancelApplicationMsg:
		m.confirm.Show("Withdraw your healthcare credential application?",
			func() tea.Msg { return hcCancelConfirmedMsg{} })
		return m, nil

	case hcCancelConfirmedMsg:
		return m, m.cancelHCApplicationCmd()

	case hcApplicationMsg:
		if msg.err != nil {
			m.toasts.Push(components.ToastError, api.UserMessage(msg.err))
			return m, nil
		}
		m.hcForm.SetApplication(msg.app)
		return m, nil

	case hcSubmitDoneMsg:
		if msg.err != nil {
			m.toasts.Push(components.ToastError, api.UserMessage(msg.err))
			return m, nil
		}
		m.toasts.Push(components.ToastSuccess, "Application submitted for review")
		return m, m.loadHCApplicationCmd()

	case hcCancelDoneMsg:
		if msg.err != nil {
			m.toasts.Push(components.ToastError, api.UserMessage(msg.err))
			return m, nil
		}
		m.hcForm.SetApplication(nil)
		m.toasts.Push(components.ToastStatus, "Application withdrawn")
		return m, nil

	case components.LogoutRequestMsg:
		return m.logout("Signed out.")

	case components.DeleteAccountRequestMsg:
		m.confirm.Show("Delete your account and all conversations? This cannot be undone.",
			func() tea.Msg { return deleteAccountConfirmedMsg{} })
		return m, nil

	case deleteAccountConfirmedMsg:
		return m, m.deleteAccountCmd()

	case accountDeletedMsg:
		if msg.err != nil {
			m.toasts.Push(components.ToastError, api.UserMessage(msg.err))
			return m, nil
		}
		return m.logout("Account deleted.")
	}

	// Everything else fans out to both panes so cross-pane events (list
	// changed, selection, cleared active) reach whoever cares.
	return m.broadcast(msg)
}

type (
	deleteAccountConfirmedMsg struct{}
	hcCancelConfirmedMsg      struct{}
)

// broadcast routes a message to both the chat pane and the sidebar.
func (m appModel) broadcast(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	m.chatModel, cmd = m.chatModel.Update(msg)
	cmds = append(cmds, cmd)
	m.sidebarModel, cmd = m.sidebarModel.Update(msg)
	cmds = append(cmds, cmd)

	// Keep the sidebar's active marker in sync with the chat pane.
	cmds = append(cmds, m.sidebarModel.SetActive(m.chatModel.ActiveID()))

	return m, tea.Batch(cmds...)
}

func (m appModel) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Modal layers swallow keys in priority order: confirm, HC view, user
	// menu. Opening one closes the others, so at most one is ever visible.
	if m.confirm.Visible() {
		cmd, handled := m.confirm.HandleKey(msg)
		if handled {
			return m, cmd
		}
	}

	if m.hcOpen {
		return m, m.hcForm.Update(msg)
	}

	if m.userMenu.Visible() {
		cmd, handled := m.userMenu.HandleKey(msg)
		if handled {
			return m, cmd
		}
	}

	switch msg.String() {
	case "ctrl+u":
		// Menus are exclusive: the sidebar's context menu closes first.
		m.sidebarModel.CloseMenu()
		m.userMenu.Toggle()
		return m, nil
	case "tab":
		if m.focus == focusChat {
			m.focus = focusSidebar
		} else {
			m.focus = focusChat
		}
		return m, nil
	}

	var cmd tea.Cmd
	if m.focus == focusSidebar {
		m.sidebarModel, cmd = m.sidebarModel.Update(msg)
		return m, cmd
	}
	m.chatModel, cmd = m.chatModel.Update(msg)
	return m, cmd
}

// =============================================================================
// SESSION COMMANDS
// =============================================================================

// logout clears local session state and returns to the gate.
func (m appModel) logout(note string) (tea.Model, tea.Cmd) {
	if err := m.session.Clear(); err != nil {
		m.toasts.Push(components.ToastError, "Could not clear stored session: "+err.Error())
	}
	m.state = StateLogin
	m.gate = newGateForm()
	m.poller.Pause()
	m.hcOpen = false
	m.userMenu.Close()
	m.chatModel.Reset()
	m.sidebarModel.Reset()
	m.profile = model.Profile{}
	m.toasts.Push(components.ToastStatus, note)
	return m, textinput.Blink
}

func (m appModel) deleteAccountCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		err := client.DeleteAccount(context.Background())
		return accountDeletedMsg{err: err}
	}
}

func (m appModel) loadHCApplicationCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		app, err := client.MyHCApplication(context.Background())
		return hcApplicationMsg{app: app, err: err}
	}
}

func (m appModel) submitHCApplicationCmd(form api.HCApplicationForm) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		err := client.SubmitHCApplication(context.Background(), form)
		return hcSubmitDoneMsg{err: err}
	}
}

func (m appModel) cancelHCApplicationCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		err := client.CancelHCApplication(context.Background())
		return hcCancelDoneMsg{err: err}
	}
}

// =============================================================================
// VIEW
// =============================================================================

func (m appModel) View() string {
	var body string
	switch m.state {
	case StateLogin, StateRegister:
		body = m.gateView()
	case StateChat:
		body = m.chatView()
	default:
		body = m.theme.ErrorText.Render("Error: " + m.errorMsg + "\n\nPress q to quit.")
	}

	if m.confirm.Visible() {
		// The prompt overlays the body so the conversation it is about
		// to act on stays visible behind it.
		body = overlayCenter(body, m.confirm.Render(m.theme, m.width, m.height))
	}

	if toastLayer := m.toasts.RenderToastStack(m.theme, m.width, m.height); toastLayer != "" {
		// The toast stack overlays the bottom-right corner.
		return overlayBottom(body, toastLayer, m.height)
	}
	return body
}

// overlayCenter writes the populated rows of a centered layer over the
// same rows of body, leaving the rest of the body visible around it.
func overlayCenter(body, layer string) string {
	bodyLines := strings.Split(body, "\n")
	layerLines := strings.Split(layer, "\n")

	for i, line := range layerLines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if i < len(bodyLines) {
			bodyLines[i] = line
		} else {
			bodyLines = append(bodyLines, line)
		}
	}
	return strings.Join(bodyLines, "\n")
}

// overlayBottom replaces the trailing rows of body with the non-empty
// trailing rows of layer, approximating a bottom-anchored overlay.
func overlayBottom(body, layer string, height int) string {
	bodyLines := strings.Split(body, "\n")
	layerLines := strings.Split(layer, "\n")

	// Trim the layer to its populated bottom rows.
	start := 0
	for i, line := range layerLines {
		if strings.TrimSpace(line) != "" {
			start = i
			break
		}
	}
	layerLines = layerLines[start:]

	if height > 0 && len(bodyLines) > height {
		bodyLines = bodyLines[:height]
	}
	if len(layerLines) >= len(bodyLines) {
		return strings.Join(layerLines, "\n")
	}
	copy(bodyLines[len(bodyLines)-len(layerLines):], layerLines)
	return strings.Join(bodyLines, "\n")
}

func (m appModel) chatView() string {
	if m.hcOpen {
		return m.theme.App.Render(m.hcForm.Render(m.theme, m.width))
	}

	header := m.theme.Header.Render("Health Insight")
	if m.profile.Name != "" {
		badge := ""
		if m.profile.Role.Elevated() {
			badge = " " + m.theme.RoleBadge.Render(string(m.profile.Role))
		}
		header = m.theme.Header.Render("Health Insight · " + m.profile.Name + badge + "  (ctrl+u menu)")
	}

	columns := lipgloss.JoinHorizontal(lipgloss.Top,
		m.theme.Sidebar.Render(m.sidebarModel.View()),
		m.chatModel.View(),
	)

	view := lipgloss.JoinVertical(lipgloss.Left, header, columns)
	if m.userMenu.Visible() {
		view = lipgloss.JoinVertical(lipgloss.Left, header, m.userMenu.Render(m.theme), columns)
	}
	return view
}

// =============================================================================
// GATE (LOGIN / REGISTER)
// =============================================================================

// gateField indices for the register form; login uses email and password.
const (
	gateFieldName = iota
	gateFieldEmail
	gateFieldPassword
	gateFieldCount
)

// gateForm holds the login and register inputs.
type gateForm struct {
	inputs     [gateFieldCount]textinput.Model
	focus      int
	submitting bool
	errMsg     string
	notice     string
}

func newGateForm() gateForm {
	g := gateForm{}
	for i := range g.inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 256
		g.inputs[i] = ti
	}
	g.inputs[gateFieldName].Placeholder = "Name"
	g.inputs[gateFieldEmail].Placeholder = "Email"
	g.inputs[gateFieldPassword].Placeholder = "Password"
	g.inputs[gateFieldPassword].EchoMode = textinput.EchoPassword
	g.inputs[gateFieldPassword].EchoCharacter = '*'
	g.focus = gateFieldEmail
	g.inputs[gateFieldEmail].Focus()
	return g
}

// fields returns the active field indices for the current state.
func (m appModel) gateFields() []int {
	if m.state == StateRegister {
		return []int{gateFieldName, gateFieldEmail, gateFieldPassword}
	}
	return []int{gateFieldEmail, gateFieldPassword}
}

func (m *appModel) gateSetFocus(idx int) {
	m.gate.focus = idx
	for i := range m.gate.inputs {
		if i == idx {
			m.gate.inputs[i].Focus()
		} else {
			m.gate.inputs[i].Blur()
		}
	}
}

func (m appModel) updateGate(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case auth.LoginResultMsg:
		m.gate.submitting = false
		if msg.Err != nil {
			m.gate.errMsg = api.UserMessage(msg.Err)
			return m, nil
		}
		m.state = StateChat
		m.focus = focusChat
		m.poller.Resume()
		return m, tea.Batch(
			auth.FetchProfileCmd(m.client),
			m.sidebarModel.Init(),
			m.chatModel.Focus(),
			m.poller.TickCmd(),
		)

	case auth.RegisterResultMsg:
		m.gate.submitting = false
		if msg.Err != nil {
			m.gate.errMsg = api.UserMessage(msg.Err)
			return m, nil
		}
		m.state = StateLogin
		m.gate = newGateForm()
		m.gate.notice = "Account created. Sign in to continue."
		return m, textinput.Blink

	case tea.KeyMsg:
		return m.handleGateKey(msg)
	}

	var cmd tea.Cmd
	m.gate.inputs[m.gate.focus], cmd = m.gate.inputs[m.gate.focus].Update(msg)
	return m, cmd
}

func (m appModel) handleGateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.gate.submitting {
		return m, nil
	}

	fields := m.gateFields()
	pos := 0
	for i, f := range fields {
		if f == m.gate.focus {
			pos = i
		}
	}

	switch msg.String() {
	case "tab", "down":
		m.gateSetFocus(fields[(pos+1)%len(fields)])
		return m, nil
	case "shift+tab", "up":
		m.gateSetFocus(fields[(pos+len(fields)-1)%len(fields)])
		return m, nil
	case "ctrl+r":
		// Switch between sign-in and create-account.
		if m.state == StateLogin {
			m.state = StateRegister
			m.gateSetFocus(gateFieldName)
		} else {
			m.state = StateLogin
			m.gateSetFocus(gateFieldEmail)
		}
		m.gate.errMsg = ""
		return m, nil
	case "enter":
		if pos < len(fields)-1 {
			m.gateSetFocus(fields[pos+1])
			return m, nil
		}
		return m.submitGate()
	}

	var cmd tea.Cmd
	m.gate.inputs[m.gate.focus], cmd = m.gate.inputs[m.gate.focus].Update(msg)
	return m, cmd
}

func (m appModel) submitGate() (tea.Model, tea.Cmd) {
	email := strings.TrimSpace(m.gate.inputs[gateFieldEmail].Value())
	password := m.gate.inputs[gateFieldPassword].Value()

	if email == "" || password == "" {
		m.gate.errMsg = "Email and password are required."
		return m, nil
	}

	if m.state == StateRegister {
		name := strings.TrimSpace(m.gate.inputs[gateFieldName].Value())
		if name == "" {
			m.gate.errMsg = "Name is required."
			return m, nil
		}
		m.gate.submitting = true
		m.gate.errMsg = ""
		return m, auth.RegisterCmd(m.client, name, email, password)
	}

	// Admin accounts never sign in here; they are pointed at the console
	// and the attempt stops before any network call.
	if consoleURL, redirect := auth.AdminRedirect(m.cfg, email); redirect {
		m.gate.errMsg = "Admin accounts use the web console: " + consoleURL
		if err := openBrowser(consoleURL); err == nil {
			m.toasts.Push(components.ToastStatus, "Opened the admin console in your browser")
		}
		return m, nil
	}

	m.gate.submitting = true
	m.gate.errMsg = ""
	return m, auth.LoginCmd(m.client, email, password)
}

// openBrowser opens a URL in the default browser. Best effort; callers
// always show the URL as text too.
func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", `""`, url)
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return cmd.Start()
}

func (m appModel) gateView() string {
	title := "Sign in to Health Insight"
	hint := "enter submit · tab next field · ctrl+r create account · ctrl+c quit"
	if m.state == StateRegister {
		title = "Create your Health Insight account"
		hint = "enter submit · tab next field · ctrl+r back to sign-in · ctrl+c quit"
	}

	var rows []string
	rows = append(rows, m.theme.Header.Render(title), "")
	if m.gate.notice != "" {
		rows = append(rows, m.theme.SuccessText.Render(m.gate.notice), "")
	}
	for _, f := range m.gateFields() {
		label := m.theme.FormLabel.Render(m.gate.inputs[f].Placeholder)
		rows = append(rows, label, m.gate.inputs[f].View(), "")
	}
	if m.gate.submitting {
		rows = append(rows, "Signing in...")
	}
	if m.gate.errMsg != "" {
		rows = append(rows, m.theme.FormError.Render(m.gate.errMsg))
	}
	rows = append(rows, "", m.theme.StatusBar.Render(hint))

	form := lipgloss.JoinVertical(lipgloss.Left, rows...)
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, form)
	}
	return form
}
