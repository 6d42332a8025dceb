package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case GameCreated:
		o.printGameCreated(v)
	case GameState:
		o.printGameState(v)
	case PinVerification:
		o.printPinVerification(v)
	case Standings:
		o.printStandings(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	Name          string `json:"name"`
	Scores        []int  `json:"scores"`
	DisplayNumber int    `json:"displayNumber,omitempty"`
}

// Snapshot response type
type Snapshot struct {
	NumPlayers int      `json:"numPlayers"`
	PointValue float64  `json:"pointValue"`
	GSTPercent float64  `json:"gstPercent"`
	Players    []Player `json:"players"`
}

// GameCreated response type
type GameCreated struct {
	GameID     string    `json:"gameId"`
	Pin        string    `json:"pin"`
	Snapshot   *Snapshot `json:"snapshot"`
	RoundLabel string    `json:"roundLabel"`
}

// GameState response type
type GameState struct {
	GameID      string    `json:"gameId"`
	Snapshot    *Snapshot `json:"snapshot"`
	RoundLabel  string    `json:"roundLabel"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// PinVerification response type
type PinVerification struct {
	Mode string `json:"mode"`
}

// SettlementEntry response type
type SettlementEntry struct {
	Name          string `json:"name"`
	DisplayNumber int    `json:"displayNumber,omitempty"`
	Total         int    `json:"total"`
	Gross         int    `json:"gross"`
	Tax           int    `json:"tax"`
	Net           int    `json:"net"`
}

// Settlement response type
type Settlement struct {
	Entries  []SettlementEntry `json:"entries"`
	TotalTax int               `json:"totalTax"`
}

// Standings response type
type Standings struct {
	GameID     string     `json:"gameId"`
	RoundLabel string     `json:"roundLabel"`
	Settlement Settlement `json:"settlement"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

// notPlayedScore marks a round the player has not recorded
const notPlayedScore = -1

// displayName renders a player name with its table number when one is
// assigned (games of more than two players).
func displayName(name string, number int) string {
	if number > 0 {
		return fmt.Sprintf("%s (#%d)", name, number)
	}
	return name
}

// total sums a player's scores, counting unplayed rounds as 0
func (p *Player) total() int {
	total := 0
	for _, s := range p.Scores {
		if s != notPlayedScore {
			total += s
		}
	}
	return total
}

// lastCompletedRound returns the highest 1-based round every player has
// recorded, or 0 when none is complete.
func (s *Snapshot) lastCompletedRound() int {
	last := 0
	for r := 0; r < numRoundsFor(s); r++ {
		for i := range s.Players {
			if r >= len(s.Players[i].Scores) || s.Players[i].Scores[r] == notPlayedScore {
				return last
			}
		}
		last = r + 1
	}
	return last
}

func numRoundsFor(s *Snapshot) int {
	if len(s.Players) == 0 {
		return 0
	}
	return len(s.Players[0].Scores)
}

func (o *Output) printGameCreated(g GameCreated) {
	fmt.Printf("Game: %s\n", g.GameID)
	fmt.Printf("PIN: %s\n", g.Pin)
	fmt.Printf("Round: %s\n", g.RoundLabel)
	if g.Snapshot != nil {
		o.printScoreboard(g.Snapshot)
	}
}

func (o *Output) printGameState(g GameState) {
	fmt.Printf("Game: %s\n", g.GameID)
	fmt.Printf("Round: %s\n", g.RoundLabel)
	if !g.LastUpdated.IsZero() {
		fmt.Printf("Updated: %s\n", g.LastUpdated.Format(time.RFC3339))
	}
	if g.Snapshot != nil {
		fmt.Printf("Point Value: %v\n", g.Snapshot.PointValue)
		fmt.Printf("GST: %v%%\n", g.Snapshot.GSTPercent)
		o.printScoreboard(g.Snapshot)
	}
}

func (o *Output) printScoreboard(s *Snapshot) {
	fmt.Printf("\nPlayers (%d):\n", s.NumPlayers)
	for i := range s.Players {
		p := &s.Players[i]
		fmt.Printf("  %-24s", displayName(p.Name, p.DisplayNumber))
		for _, score := range p.Scores {
			if score == notPlayedScore {
				fmt.Print("   -")
			} else {
				fmt.Printf(" %3d", score)
			}
		}
		fmt.Printf("  = %d\n", p.total())
	}
}

func (o *Output) printPinVerification(p PinVerification) {
	fmt.Printf("Mode: %s\n", p.Mode)
}

func (o *Output) printStandings(s Standings) {
	fmt.Printf("Game: %s\n", s.GameID)
	fmt.Printf("Round: %s\n\n", s.RoundLabel)
	for i, e := range s.Settlement.Entries {
		net := fmt.Sprintf("%d", e.Net)
		if e.Net > 0 {
			net = "+" + net
		}
		fmt.Printf("%2d. %-24s total %3d  gross %4d  tax %3d  net %s\n",
			i+1, displayName(e.Name, e.DisplayNumber), e.Total, e.Gross, e.Tax, net)
	}
	fmt.Printf("\nTotal GST collected: %d\n", s.Settlement.TotalTax)
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
