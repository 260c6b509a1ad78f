// File path: cmd/wellbeing/summary.go
package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/nicodishanthj/spinyleaf/internal/metrics"
	"github.com/nicodishanthj/spinyleaf/internal/results"
	"github.com/nicodishanthj/spinyleaf/internal/simulation"
	"github.com/nicodishanthj/spinyleaf/internal/sqlite"
	"github.com/nicodishanthj/spinyleaf/internal/viewer"
	"github.com/nicodishanthj/spinyleaf/internal/workflow"
)

var (
	headStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#E5C07B"))
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
)

func renderReport(result workflow.Result) string {
	lines := []string{headStyle.Render("WELLBEING REPORT · " + result.RunID)}
	for _, section := range result.Sections {
		status := section.Status
		if status == sqlite.SectionSkipped {
			status = warnStyle.Render(status)
		}
		worst := strings.Join(section.WorstFactors, ", ")
		if worst == "" {
			worst = "-"
		}
		lines = append(lines, fmt.Sprintf("%-10s %-10s issues %-3d worst %s", section.Title, status, section.IssueCount, worst))
	}
	lines = append(lines, "", mutedStyle.Render(fmt.Sprintf("mean wellbeing %s across %d rooms", metrics.FormatScore(result.Inputs.Wellbeing.Mean), result.Inputs.Wellbeing.Rooms)))
	for _, format := range []string{"docx", "md"} {
		if path, ok := result.Outputs[format]; ok {
			lines = append(lines, mutedStyle.Render(format+": "+path))
		}
	}
	for _, warning := range result.Warnings {
		lines = append(lines, warnStyle.Render("! "+warning))
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

// renderStudies aligns columns to the widest name and unit.
func renderStudies(studies []viewer.Study) string {
	nameWidth, unitWidth := len("STUDY"), len("UNIT")
	for _, s := range studies {
		nameWidth = max(nameWidth, lipgloss.Width(s.Name))
		unitWidth = max(unitWidth, lipgloss.Width(studyUnit(s)))
	}
	name := lipgloss.NewStyle().Width(nameWidth + 2)
	unit := lipgloss.NewStyle().Width(unitWidth + 2)
	lines := []string{
		headStyle.Render(fmt.Sprintf("STUDIES · %d", len(studies))),
		mutedStyle.Render(name.Render("STUDY") + unit.Render("UNIT") + "RANGE"),
	}
	for _, s := range studies {
		lines = append(lines, name.Render(s.Name)+unit.Render(studyUnit(s))+
			fmt.Sprintf("[%s, %s] %s", metrics.FormatScore(s.Min()), metrics.FormatScore(s.Max()), mutedStyle.Render(s.ColorSet)))
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func studyUnit(s viewer.Study) string {
	if s.Unit == "" {
		return "-"
	}
	return s.Unit
}

func renderSimulation(name string, outcome simulation.Outcome) string {
	lines := []string{
		headStyle.Render("SIMULATION · " + name),
		mutedStyle.Render(fmt.Sprintf("%s in %s", outcome.Dir, outcome.Duration.Round(time.Second))),
	}
	groups := []struct {
		label  string
		series []results.Series
	}{
		{"operative temperature", outcome.Comfort.OperativeTemperature},
		{"relative humidity", outcome.Comfort.RelativeHumidity},
		{"co2", outcome.Comfort.CO2},
	}
	for _, group := range groups {
		sorted := append([]results.Series(nil), group.series...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Zone < sorted[j].Zone })
		for _, s := range sorted {
			lines = append(lines, fmt.Sprintf("%-22s %-24s %s %s", group.label, s.Zone, metrics.FormatScore(s.Mean()), s.Units))
		}
	}
	if len(lines) == 2 {
		lines = append(lines, warnStyle.Render("no comfort variables reported"))
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func renderNote(title, detail string) string {
	return headStyle.Render(title) + " " + mutedStyle.Render(detail)
}

func renderError(err error) string {
	return errorStyle.Render("error: ") + err.Error()
}
