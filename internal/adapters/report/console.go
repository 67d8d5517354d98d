package report

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/adsim/internal/domain"
)

// Console implementa ports.Reporter.
type Console struct {
	out io.Writer
}

// NewConsole crea un reporter que escribe a stdout.
func NewConsole() *Console {
	return &Console{out: os.Stdout}
}

// NewConsoleWriter crea un reporter para tests.
func NewConsoleWriter(w io.Writer) *Console {
	return &Console{out: w}
}

// PrintAggregate imprime el informe completo de un experimento multi-run:
// tabla por arm, comparativa de estrategias y veredicto de uplift.
func (c *Console) PrintAggregate(result domain.AggregateResult, arms []domain.Arm) {
	now := time.Now().Format("15:04:05")
	fmt.Fprintf(c.out, "\n[%s] experiment %s — %d runs × %d impressions (seed %d)\n\n",
		now, shortID(result.ID), result.Runs, result.Impressions, result.Seed)

	table := tablewriter.NewWriter(c.out)
	table.Header("Arm", "Creative", "True CTR", "Avg Impr", "Share", "Avg Clicks", "Post. CTR")

	for _, a := range arms {
		table.Append(
			fmt.Sprintf("%d", a.ID),
			truncate(a.Name, 28),
			fmt.Sprintf("%.4f", a.Rate),
			fmt.Sprintf("%.1f", result.BanditImpressions[a.ID]),
			fmt.Sprintf("%.1f%%", result.BanditShare(a.ID)*100),
			fmt.Sprintf("%.1f", result.BanditClicks[a.ID]),
			fmt.Sprintf("%.4f", result.Beliefs[a.ID].Mean()),
		)
	}
	table.Render()

	fmt.Fprintln(c.out, "  Avg Impr / Avg Clicks = medias por run bajo el bandit")
	fmt.Fprintln(c.out, "  Share = fracción del tráfico bandit | Post. CTR = media posterior al cierre")

	fmt.Fprintf(c.out, "\n=== STRATEGY FACE-OFF (means over %d runs) ===\n", result.Runs)

	tbl := tablewriter.NewWriter(c.out)
	tbl.Header("Strategy", "Clicks", "CTR")
	tbl.Append("Thompson bandit", fmt.Sprintf("%.1f", result.BanditFinal), fmt.Sprintf("%.4f", result.BanditCTR))
	tbl.Append("A/B round-robin", fmt.Sprintf("%.1f", result.ABFinal), fmt.Sprintf("%.4f", result.ABCTR))
	tbl.Render()

	switch {
	case result.UpliftPct > 0:
		fmt.Fprintf(c.out, "\n  >>> BANDIT WINS: +%.1f%% clicks vs fixed split\n\n", result.UpliftPct)
	case result.UpliftPct < 0:
		fmt.Fprintf(c.out, "\n  >>> FIXED SPLIT WINS: bandit down %.1f%% vs round-robin\n\n",
			math.Abs(result.UpliftPct))
	default:
		fmt.Fprintf(c.out, "\n  >>> DEAD HEAT: no measurable uplift\n\n")
	}
}

// PrintRun imprime el detalle de un run individual, lado a lado por arm.
func (c *Console) PrintRun(result domain.RunResult, arms []domain.Arm) {
	now := time.Now().Format("15:04:05")
	impressions := len(result.BanditCumClicks)
	fmt.Fprintf(c.out, "\n[%s] single run — %d impressions\n\n", now, impressions)

	table := tablewriter.NewWriter(c.out)
	table.Header("Arm", "Creative", "True CTR", "Bandit Impr", "Bandit Clicks", "A/B Impr", "A/B Clicks")

	for _, a := range arms {
		table.Append(
			fmt.Sprintf("%d", a.ID),
			truncate(a.Name, 28),
			fmt.Sprintf("%.4f", a.Rate),
			fmt.Sprintf("%d", result.BanditImpressions[a.ID]),
			fmt.Sprintf("%d", result.BanditClicks[a.ID]),
			fmt.Sprintf("%d", result.ABImpressions[a.ID]),
			fmt.Sprintf("%d", result.ABClicks[a.ID]),
		)
	}
	table.Render()

	banditFinal := result.BanditFinal()
	abFinal := result.ABFinal()
	fmt.Fprintf(c.out, "  Bandit: %d clicks (CTR %.4f) | A/B: %d clicks (CTR %.4f)\n\n",
		banditFinal, domain.CTR(float64(banditFinal), impressions),
		abFinal, domain.CTR(float64(abFinal), impressions))
}

// PrintScenarios prints the stored catalog, newest first.
func (c *Console) PrintScenarios(scenarios []domain.Scenario) {
	now := time.Now().Format("15:04:05")
	if len(scenarios) == 0 {
		fmt.Fprintf(c.out, "[%s] scenario catalog is empty\n", now)
		return
	}

	fmt.Fprintf(c.out, "\n[%s] %d scenario(s) in catalog\n\n", now, len(scenarios))

	table := tablewriter.NewWriter(c.out)
	table.Header("Name", "Arms", "Rates", "Impressions", "Runs", "Created")

	for _, sc := range scenarios {
		table.Append(
			sc.Name,
			fmt.Sprintf("%d", len(sc.Arms)),
			rateList(sc.Arms),
			fmt.Sprintf("%d", sc.Impressions),
			fmt.Sprintf("%d", sc.Runs),
			sc.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	table.Render()
	fmt.Fprintln(c.out)
}

// --- helpers ---

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// rateList compacta los true rates de un escenario en una celda: "0.015/0.021/0.018".
func rateList(arms []domain.ArmConfig) string {
	parts := make([]string, len(arms))
	for i, a := range arms {
		parts[i] = fmt.Sprintf("%.3f", a.Rate)
	}
	return strings.Join(parts, "/")
}
