package cli

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Share-text rendering for messaging apps. The layout matches the text
// the scoreboard has always shared, so copy-pasted results look the same
// regardless of where they were generated.

type shareLine struct {
	name   string
	number int
	score  int
	total  int
	gross  int
	tax    int
	net    int
}

// formatRoundShareText renders the last completed round's results as a
// shareable message. Returns an error message line when no round is
// complete yet.
func formatRoundShareText(g GameState) string {
	if g.Snapshot == nil {
		return "No rounds completed yet. Complete a round to share results!"
	}
	round := g.Snapshot.lastCompletedRound()
	if round == 0 {
		return "No rounds completed yet. Complete a round to share results!"
	}

	lines := make([]shareLine, len(g.Snapshot.Players))
	for i := range g.Snapshot.Players {
		p := &g.Snapshot.Players[i]
		lines[i] = shareLine{
			name:   p.Name,
			number: p.DisplayNumber,
			score:  p.Scores[round-1],
		}
	}
	sort.SliceStable(lines, func(a, b int) bool {
		return lines[a].score < lines[b].score
	})

	var b strings.Builder
	fmt.Fprintf(&b, "🎯 *ROUND %d RESULTS* 🎯\n\n", round)
	fmt.Fprintf(&b, "Game ID: %s\n", g.GameID)
	fmt.Fprintf(&b, "Point Value: ₹%v\n\n", g.Snapshot.PointValue)
	for i, l := range lines {
		scoreText := fmt.Sprintf("%d", l.score)
		if l.score == notPlayedScore {
			scoreText = "Not played"
		}
		var emoji string
		switch {
		case l.score == notPlayedScore:
			emoji = "⏳"
		case i == 0:
			emoji = "🥇"
		case i == 1:
			emoji = "🥈"
		case i == 2:
			emoji = "🥉"
		default:
			emoji = "📊"
		}
		fmt.Fprintf(&b, "%s %s: %s\n", emoji, displayName(l.name, l.number), scoreText)
	}
	if g.RoundLabel == "GAME OVER" {
		b.WriteString("\n🏁 GAME COMPLETED! 🏁")
	} else {
		b.WriteString("\n🎮 Keep playing!")
	}
	return b.String()
}

// formatLeaderboardShareText renders the full settlement as a shareable
// leaderboard message.
func formatLeaderboardShareText(g GameState) string {
	if g.Snapshot == nil {
		return ""
	}
	snap := g.Snapshot
	n := len(snap.Players)

	lines := make([]shareLine, n)
	sum := 0
	for i := range snap.Players {
		p := &snap.Players[i]
		total := p.total()
		sum += total
		lines[i] = shareLine{name: p.Name, number: p.DisplayNumber, total: total}
	}
	sort.SliceStable(lines, func(a, b int) bool {
		return lines[a].total < lines[b].total
	})

	totalTax := 0
	for i := range lines {
		gross := int(math.Round(float64(sum-lines[i].total*n) * snap.PointValue))
		lines[i].gross = gross
		if gross > 0 {
			lines[i].tax = int(math.Round(float64(gross) * snap.GSTPercent / 100))
			lines[i].net = gross - lines[i].tax
		} else {
			lines[i].tax = 0
			lines[i].net = gross
		}
		totalTax += lines[i].tax
	}

	var b strings.Builder
	b.WriteString("🏆 *FINAL LEADERBOARD* 🏆\n\n")
	fmt.Fprintf(&b, "Game ID: %s\n", g.GameID)
	fmt.Fprintf(&b, "Point Value: ₹%v\n", snap.PointValue)
	fmt.Fprintf(&b, "GST: %v%%\n\n", snap.GSTPercent)
	for i, l := range lines {
		var rank string
		switch i {
		case 0:
			rank = "🥇"
		case 1:
			rank = "🥈"
		case 2:
			rank = "🥉"
		default:
			rank = fmt.Sprintf("%d.", i+1)
		}
		amount := fmt.Sprintf("₹%d", l.net)
		if l.net > 0 {
			amount = fmt.Sprintf("+₹%d", l.net)
		}
		var marker string
		switch {
		case l.net > 0:
			marker = "🟢"
		case l.net < 0:
			marker = "🔴"
		default:
			marker = "⚪"
		}
		fmt.Fprintf(&b, "%s %s\n   Score: %d\n   %s %s\n\n", rank, displayName(l.name, l.number), l.total, marker, amount)
	}
	fmt.Fprintf(&b, "💰 Total GST Collected: ₹%d\n\n", totalTax)
	b.WriteString("🎉 Thanks for playing! 🎉")
	return b.String()
}
