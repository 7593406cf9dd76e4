package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/siege-spider/spider-backend/internal/models"
)

// PrintGroups 팀별 그룹 테이블
func PrintGroups(w io.Writer, result *models.GroupingResult) {
	fmt.Fprintf(w, "Match %s\n", result.MatchID)

	table := tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
	table.Header("TEAM", "PLAYERS", "MATCHES_TOGETHER")

	rows := 0
	for _, team := range []struct {
		label    string
		grouping models.TeamGrouping
	}{
		{"0", result.Team0},
		{"1", result.Team1},
	} {
		for _, g := range team.grouping.Groups {
			table.Append(team.label, strings.Join(g.Players, ", "), strconv.Itoa(g.MatchesTogether))
			rows++
		}
	}

	if rows == 0 {
		fmt.Fprintln(w, "No recurring groups found.")
		return
	}
	table.Render()
}

// PrintHistory 매치 기록 + 집계
func PrintHistory(w io.Writer, h *models.PlayerHistory) {
	s := h.Summary
	fmt.Fprintf(w, "Player %s: %d matches, %d wins, %d losses, %d unknown (team 0: %d, team 1: %d)\n",
		h.PlayerID, s.TotalMatches, s.Wins, s.Losses, s.UnknownResults,
		s.TeamDistribution.Team0, s.TeamDistribution.Team1)

	if len(h.Matches) == 0 {
		fmt.Fprintln(w, "No matches on this page.")
		return
	}

	table := tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
	table.Header("MATCH", "CREATED", "TEAM", "RESULT")

	for _, m := range h.Matches {
		team, _ := m.Teams.TeamOf(h.PlayerID)
		table.Append(m.ID, m.CreatedAt.UTC().Format(time.RFC3339), teamLabel(team), resultLabel(m, team))
	}
	table.Render()

	p := h.Pagination
	fmt.Fprintf(w, "page %d/%d (%d per page, %d total)\n", p.Page, p.Pages, p.Limit, p.Total)
}

func teamLabel(team int) string {
	if team == models.TeamUnknown {
		return "?"
	}
	return strconv.Itoa(team)
}

func resultLabel(m *models.Match, team int) string {
	switch {
	case m.WinningTeam == nil || team == models.TeamUnknown:
		return "unknown"
	case *m.WinningTeam == team:
		return "win"
	default:
		return "loss"
	}
}
