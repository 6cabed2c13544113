package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lox/pokerbots/sdk"
	"github.com/lox/pokerbots/sdk/config"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Width(14)

	winStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	lossStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	categoryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("14"))
)

func chips(n int64) string {
	s := fmt.Sprintf("%+d", n)
	if n < 0 {
		return lossStyle.Render(s)
	}
	return winStyle.Render(s)
}

func printOutcome(w io.Writer, cfg *config.BotConfig, out sdk.Outcome) {
	rows := [][2]string{
		{"run", out.RunID.String()},
		{"server", cfg.Server},
		{"strategy", cfg.Strategy},
		{"rounds", fmt.Sprint(out.Rounds)},
		{"bankroll", chips(out.Bankroll)},
		{"decisions", fmt.Sprint(out.Decisions)},
		{"forced folds", fmt.Sprint(out.ForcedFolds)},
		{"errors", fmt.Sprint(out.HandlerErrors)},
		{"elapsed", out.Elapsed.Round(1e6).String()},
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("Match summary"))
	b.WriteByte('\n')
	for _, r := range rows {
		b.WriteString(labelStyle.Render(r[0]))
		b.WriteString(r[1])
		b.WriteByte('\n')
	}
	fmt.Fprint(w, b.String())
}
