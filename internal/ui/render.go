package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"tiertrack/internal/config"
	"tiertrack/internal/task"
	"tiertrack/internal/urgency"
	"tiertrack/internal/view"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	faintStyle   = lipgloss.NewStyle().Faint(true)
	doneStyle    = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	bannerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#D32F2F")).Bold(true)
	reflectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF9800"))

	countdownStyles = map[urgency.Style]lipgloss.Style{
		urgency.StyleUrgent:  lipgloss.NewStyle().Foreground(lipgloss.Color("#F57C00")),
		urgency.StyleSafe:    lipgloss.NewStyle().Foreground(lipgloss.Color("#388E3C")),
		urgency.StyleOverdue: lipgloss.NewStyle().Foreground(lipgloss.Color("#D32F2F")).Bold(true),
	}

	tierStyles = map[urgency.Tier]lipgloss.Style{
		urgency.Critical:  lipgloss.NewStyle().Foreground(lipgloss.Color("#D32F2F")),
		urgency.Important: lipgloss.NewStyle().Foreground(lipgloss.Color("#F57C00")),
		urgency.Urgent:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FBC02D")),
		urgency.Low:       lipgloss.NewStyle().Foreground(lipgloss.Color("#388E3C")),
	}
)

const overdueBanner = "This task is overdue. Please add a reflection."

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Tasks by urgency"))
	b.WriteString("\n")
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	if len(m.cards) == 0 {
		heading, hint := view.EmptyState(m.ctrl.State().View)
		b.WriteString(heading)
		b.WriteString("\n")
		b.WriteString(faintStyle.Render(hint))
		b.WriteString("\n")
	} else {
		b.WriteString(m.renderTaskList())
	}

	b.WriteString("\n---\n")

	if m.form != nil {
		b.WriteString(m.renderFormBox())
		b.WriteString("\n")
		b.WriteString("Field: " + m.form.labels[m.form.index])
		b.WriteString("\n")
		b.WriteString(m.input.View())
	} else {
		b.WriteString(m.renderDetailPanel())
	}

	b.WriteString("\n\n")
	b.WriteString(m.status)
	b.WriteString("\n")
	b.WriteString(faintStyle.Render(renderHelp(m.cfg.Keys, m.ctrl.State().View)))

	return b.String()
}

func (m Model) renderHeader() string {
	st := m.ctrl.State()
	team := "Not currently in a team"
	if st.Identity.Joined() {
		team = fmt.Sprintf("%s @ %s", st.Identity.User, st.Identity.Team)
	}
	shown := "all"
	if st.View.CompletedOnly {
		shown = "completed"
	}
	return faintStyle.Render(fmt.Sprintf("%s • filter: %s • showing: %s", team, filterName(st.View.Filter), shown))
}

func renderHelp(k config.Keymap, vs view.State) string {
	return fmt.Sprintf("%s/%s move • %s add • %s edit • %s toggle • %s delete • %s reflect • %s detail • %s/%s-%s filter • %s %s • %s team • %s leave • %s quit",
		k.Up, k.Down, k.Add, k.Edit, keyName(k.Toggle), k.Delete, k.Reflect, k.Detail,
		k.FilterAll, k.Filter1, k.Filter4, k.Completed, view.CompletedToggleLabel(vs), k.Team, k.Leave, k.Quit)
}

func (m Model) renderTaskList() string {
	var b strings.Builder
	for i, c := range m.cards {
		cursor := " "
		if m.cursor == i && m.mode == modeList {
			cursor = ">"
		}

		checkbox := "○"
		title := c.Task.Title
		if c.Task.Done {
			checkbox = "✓"
			title = doneStyle.Render(title)
		}

		tier := tierStyles[c.Tier].Render(c.Label)
		countdown := countdownStyles[c.CountdownStyle].Render(c.Countdown)
		b.WriteString(fmt.Sprintf("%s %s %s  %s  %s %s\n", cursor, checkbox, title, tier, task.FormatDate(c.Task.Due), countdown))

		if c.Task.Description != "" {
			b.WriteString("      " + faintStyle.Render(c.Task.Description) + "\n")
		}
		if c.Task.CreatedBy != "" {
			b.WriteString("      Created by: " + c.Task.CreatedBy + "\n")
		}
		if c.NeedsReflection {
			b.WriteString("      " + bannerStyle.Render(overdueBanner) + "\n")
		}
		if r := c.Task.Reflection; r != nil {
			b.WriteString(fmt.Sprintf("      %s %s\n", reflectStyle.Render("Reflection ("+task.FormatDate(r.RecordedAt.Local())+"):"), r.Text))
		}
	}
	return b.String()
}

func (m Model) renderFormBox() string {
	if m.form == nil {
		return ""
	}
	var b strings.Builder
	for i, name := range m.form.labels {
		prefix := " "
		if i == m.form.index {
			prefix = ">"
		}
		val := m.form.values[i]
		if i == m.form.index {
			val = m.input.Value()
		}
		if strings.TrimSpace(val) == "" {
			val = "(empty)"
		}
		b.WriteString(fmt.Sprintf("%s %-22s : %s\n", prefix, name, val))
	}
	return b.String()
}

func (m Model) renderDetailPanel() string {
	c, ok := m.selected()
	if !ok {
		return "No task selected"
	}
	var b strings.Builder
	b.WriteString("Details\n")
	b.WriteString(fmt.Sprintf("Title      : %s\n", c.Task.Title))
	b.WriteString(fmt.Sprintf("Status     : %s\n", humanDone(c.Task.Done)))
	b.WriteString(fmt.Sprintf("Due        : %s (%s)\n", task.FormatDate(c.Task.Due), c.Countdown))
	b.WriteString(fmt.Sprintf("Priority   : %s\n", c.Label))
	b.WriteString(fmt.Sprintf("Created by : %s\n", emptyPlaceholder(c.Task.CreatedBy)))
	if action := c.ReflectionAction(); action != "" {
		b.WriteString(fmt.Sprintf("Press %s to %s reflection\n", m.cfg.Keys.Reflect, strings.ToLower(action)))
	}
	return b.String()
}

func emptyPlaceholder(v string) string {
	if strings.TrimSpace(v) == "" {
		return "(empty)"
	}
	return v
}
