// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/healthinsight/insight-tui/internal/api"
	"github.com/healthinsight/insight-tui/internal/model"
	"github.com/healthinsight/insight-tui/internal/ui/styles"
)

// Messages dispatched by the form.
type (
	// HCSubmitMsg carries a validated application to the root model.
	HCSubmitMsg struct {
		Form api.HCApplicationForm
	}
	// HCCancelApplicationMsg withdraws the pending application.
	HCCancelApplicationMsg struct{}
	// CloseHCViewMsg closes the application view.
	CloseHCViewMsg struct{}
)

// form field indices
const (
	hcFieldFullName = iota
	hcFieldQualification
	hcFieldCompany
	hcFieldPicture
	hcFieldDocument
	hcFieldCount
)

var hcFieldLabels = [hcFieldCount]string{
	"Full name",
	"Qualification",
	"Company / hospital",
	"Profile picture path",
	"ID document path",
}

// HCForm is the healthcare credential application view. With an existing
// application it shows read-only status; otherwise it shows the form.
// All validation runs client-side before any network call.
type HCForm struct {
	inputs      [hcFieldCount]textinput.Model
	focus       int
	fieldErrors [hcFieldCount]string

	// application, when non-nil, switches the view to status mode.
	application *model.HCApplication
}

// NewHCForm creates the form with empty fields.
func NewHCForm() *HCForm {
	f := &HCForm{}
	for i := range f.inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = hcFieldLabels[i]
		ti.CharLimit = 256
		f.inputs[i] = ti
	}
	f.inputs[0].Focus()
	return f
}

// SetApplication switches between form mode (nil) and status mode.
func (f *HCForm) SetApplication(app *model.HCApplication) {
	f.application = app
}

// Application returns the currently displayed application, if any.
func (f *HCForm) Application() *model.HCApplication {
	return f.application
}

// Update handles key input for the active mode.
func (f *HCForm) Update(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return f.updateInputs(msg)
	}

	// Status mode: only cancel/close.
	if f.application != nil {
		switch key.String() {
		case "c":
			if f.application.Status == model.HCStatusPending {
				return func() tea.Msg { return HCCancelApplicationMsg{} }
			}
			return nil
		case "esc", "q":
			return func() tea.Msg { return CloseHCViewMsg{} }
		default:
			return nil
		}
	}

	switch key.String() {
	case "esc":
		return func() tea.Msg { return CloseHCViewMsg{} }
	case "tab", "down":
		f.setFocus((f.focus + 1) % hcFieldCount)
		return nil
	case "shift+tab", "up":
		f.setFocus((f.focus + hcFieldCount - 1) % hcFieldCount)
		return nil
	case "enter":
		if f.focus < hcFieldCount-1 {
			f.setFocus(f.focus + 1)
			return nil
		}
		return f.submit()
	default:
		return f.updateInputs(msg)
	}
}

func (f *HCForm) updateInputs(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *HCForm) setFocus(i int) {
	f.inputs[f.focus].Blur()
	f.focus = i
	f.inputs[f.focus].Focus()
}

// submit validates every field and either reports errors inline or emits
// HCSubmitMsg. No network call happens on validation failure.
func (f *HCForm) submit() tea.Cmd {
	f.fieldErrors = [hcFieldCount]string{}
	ok := true

	for i := hcFieldFullName; i <= hcFieldCompany; i++ {
		if strings.TrimSpace(f.inputs[i].Value()) == "" {
			f.fieldErrors[i] = "required"
			ok = false
		}
	}
	for _, i := range []int{hcFieldPicture, hcFieldDocument} {
		path := strings.TrimSpace(f.inputs[i].Value())
		if path == "" {
			f.fieldErrors[i] = "required"
			ok = false
			continue
		}
		if info, err := os.Stat(path); err != nil || info.IsDir() {
			f.fieldErrors[i] = "file not found"
			ok = false
		}
	}
	if !ok {
		return nil
	}

	form := api.HCApplicationForm{
		FullName:           strings.TrimSpace(f.inputs[hcFieldFullName].Value()),
		Qualification:      strings.TrimSpace(f.inputs[hcFieldQualification].Value()),
		CompanyName:        strings.TrimSpace(f.inputs[hcFieldCompany].Value()),
		ProfilePicturePath: strings.TrimSpace(f.inputs[hcFieldPicture].Value()),
		IDDocumentPath:     strings.TrimSpace(f.inputs[hcFieldDocument].Value()),
	}
	return func() tea.Msg { return HCSubmitMsg{Form: form} }
}

// Validate exposes the submit-time check for tests.
func (f *HCForm) Validate() bool {
	return f.submit() != nil
}

// Render draws the active mode.
func (f *HCForm) Render(theme *styles.Theme, width int) string {
	if f.application != nil {
		return f.renderStatus(theme, width)
	}

	lines := []string{theme.Header.Render("Healthcare credential application"), ""}
	for i := range f.inputs {
		label := theme.FormLabel.Render(hcFieldLabels[i] + ":")
		line := label + " " + f.inputs[i].View()
		if f.fieldErrors[i] != "" {
			line += "  " + theme.FormError.Render(f.fieldErrors[i])
		}
		lines = append(lines, line)
	}
	lines = append(lines, "", theme.FormLabel.Render("enter submit · tab next field · esc back"))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (f *HCForm) renderStatus(theme *styles.Theme, width int) string {
	app := f.application

	var statusStyle lipgloss.Style
	switch app.Status {
	case model.HCStatusApproved:
		statusStyle = theme.SuccessText
	case model.HCStatusRejected:
		statusStyle = theme.ErrorText
	default:
		statusStyle = theme.WarningText
	}

	lines := []string{
		theme.Header.Render("Healthcare credential application"),
		"",
		theme.FormLabel.Render("Status: ") + statusStyle.Render(string(app.Status)),
		theme.FormLabel.Render("Name: ") + app.FullName,
		theme.FormLabel.Render("Qualification: ") + app.Qualification,
		theme.FormLabel.Render("Company: ") + app.CompanyName,
	}
	if !app.AppliedAt.IsZero() {
		lines = append(lines, theme.FormLabel.Render("Applied: ")+app.AppliedAt.Format("2006-01-02"))
	}
	if app.Status == model.HCStatusRejected && app.RejectionReason != "" {
		lines = append(lines, theme.ErrorText.Render("Reason: "+app.RejectionReason))
	}
	lines = append(lines, "")
	if app.Status == model.HCStatusPending {
		lines = append(lines, theme.FormLabel.Render("c cancel application · esc back"))
	} else {
		lines = append(lines, theme.FormLabel.Render("esc back"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
