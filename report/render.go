package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultWidth is the report width when the terminal width is unknown.
const DefaultWidth = 100

var (
	sepStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	modelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	goodStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	badStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	overallStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
)

// Report renders collected run statistics as the performance table.
type Report struct {
	// Title labels the report, normally the base directory's name.
	Title string

	// GeneratedAt is stamped into the report header.
	GeneratedAt time.Time

	// Stats in the order Collect returned them.
	Stats []RunStats

	// Width of the rendered table. Default: DefaultWidth.
	Width int

	// HumanizeAgents renders "rewrite_agent" as "Rewrite Agent".
	HumanizeAgents bool
}

// Render returns the full report text.
func (r Report) Render() string {
	width := r.Width
	if width < 1 {
		width = DefaultWidth
	}
	sep := sepStyle.Render(strings.Repeat("=", width))

	title := fmt.Sprintf("RUN PERFORMANCE REPORT - %s (Generated at %s)",
		r.Title, r.GeneratedAt.Format("2006-01-02 15:04:05"))
	lines := []string{
		sep,
		center(title, width),
		sep,
		headerStyle.Render(fmt.Sprintf("%-50s %-25s %-10s %-10s %-10s",
			"Model/Run", "Agent Type", "Tasks", "Success", "Rate")),
		strings.Repeat("-", width),
	}

	totalTasks, totalSuccess := 0, 0
	for _, group := range groupByModel(r.Stats) {
		named := len(group.runs) > 1 || (len(group.runs) == 1 && group.runs[0].Run != "")
		if named {
			lines = append(lines, "", modelStyle.Render("Model: "+group.model))
		}
		for _, s := range group.runs {
			name := group.model
			if named && s.Run != "" {
				name = "  " + s.Run
			}
			agent := s.AgentType
			if r.HumanizeAgents {
				agent = humanizeAgent(agent)
			}
			rate := s.Rate()
			row := fmt.Sprintf("%-50s %-25s %-10d %-10d %.2f%%",
				name, agent, s.Total, s.Successful, rate)
			lines = append(lines, rateStyle(rate).Render(row))

			totalTasks += s.Total
			totalSuccess += s.Successful
		}
	}

	overallRate := 0.0
	if totalTasks > 0 {
		overallRate = float64(totalSuccess) / float64(totalTasks) * 100
	}
	overall := fmt.Sprintf("OVERALL PERFORMANCE: %d/%d tasks successful (%.2f%%)",
		totalSuccess, totalTasks, overallRate)
	lines = append(lines, sep, overallStyle.Render(center(overall, width)), sep)
	return strings.Join(lines, "\n")
}

type modelGroup struct {
	model string
	runs  []RunStats
}

// groupByModel splits already-sorted stats into per-model groups,
// preserving order.
func groupByModel(stats []RunStats) []modelGroup {
	var groups []modelGroup
	for _, s := range stats {
		if len(groups) == 0 || groups[len(groups)-1].model != s.Model {
			groups = append(groups, modelGroup{model: s.Model})
		}
		groups[len(groups)-1].runs = append(groups[len(groups)-1].runs, s)
	}
	return groups
}

// rateStyle colors a row by its success rate: green from 70%, yellow from
// 40%, red below.
func rateStyle(rate float64) lipgloss.Style {
	switch {
	case rate >= 70:
		return goodStyle
	case rate >= 40:
		return warnStyle
	default:
		return badStyle
	}
}

func humanizeAgent(agent string) string {
	return cases.Title(language.Und).String(strings.ReplaceAll(agent, "_", " "))
}

func center(text string, width int) string {
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, text)
}
