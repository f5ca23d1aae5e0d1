// Command whatif runs a what-if scenario through the keyword interpreter and
// prints the projected balance without a server.
//
//	whatif -income 80000 -expenses 50000 -savings 300000 "buy a car for 8L"
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/finpersona/backend/internal/domain"
	"github.com/finpersona/backend/internal/scenario"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	income   = flag.Float64("income", 50000, "Monthly income.")
	expenses = flag.Float64("expenses", 35000, "Monthly expenses.")
	savings  = flag.Float64("savings", 200000, "Current savings.")
	months   = flag.Int("months", 12, "Projection length in months.")
	currency = flag.String("c", "₹", "Currency symbol.")
)

var title = cases.Title(language.English)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: whatif [flags] <scenario>\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	text := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if text == "" {
		flag.Usage()
		os.Exit(2)
	}

	snapshot := domain.FinancialSnapshot{
		MonthlyIncome:   *income,
		MonthlyExpenses: *expenses,
		CurrentSavings:  *savings,
	}

	interpreter := scenario.NewFallbackInterpreter(*currency)
	analysis, err := interpreter.Interpret(context.Background(), scenario.Request{
		Scenario:  text,
		Snapshot:  snapshot,
		Timeframe: *months,
	})
	if err != nil {
		color.Red("interpret: %v", err)
		os.Exit(1)
	}

	result, err := scenario.Simulate(snapshot, analysis, *months, time.Now())
	if err != nil {
		color.Red("simulate: %v", err)
		os.Exit(1)
	}

	printAnalysis(analysis)
	printProjection(result)
}

func printAnalysis(a *domain.ScenarioAnalysis) {
	color.New(color.Bold).Println(a.Description)
	fmt.Printf("  type: %s\n", title.String(strings.ReplaceAll(string(a.ScenarioType), "_", " ")))
	fmt.Printf("  risk: ")
	riskColor(a.RiskLevel).Println(title.String(string(a.RiskLevel)))
	for _, r := range a.Recommendations {
		fmt.Printf("  - %s\n", r)
	}
	fmt.Println()
}

func printProjection(r *domain.SimulationResult) {
	header := color.New(color.BgBlue, color.FgWhite).PrintfFunc()
	header(" %5s  %-10s  %14s  %14s ", "Month", "Date", "Net", "Balance")
	fmt.Println()

	for _, p := range r.MonthlyData {
		fmt.Printf(" %5d  %-10s  %14s  ", p.Month, p.Date, money(p.NetChange))
		balance := color.New(color.FgGreen).PrintfFunc()
		if p.Balance < 0 {
			balance = color.New(color.FgRed).PrintfFunc()
		}
		balance("%14s", money(p.Balance))
		fmt.Println()
	}

	s := r.Summary
	fmt.Println()
	fmt.Printf("  final balance: %s (change %s, %s/month)\n", money(s.FinalBalance), money(s.TotalChange), money(s.AverageMonthlyChange))
	if s.Feasible {
		color.Green("  feasible")
	} else {
		color.Red("  not feasible: savings run out")
	}
}

func riskColor(r domain.RiskLevel) *color.Color {
	switch r {
	case domain.RiskHigh:
		return color.New(color.FgRed, color.Bold)
	case domain.RiskMedium:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgGreen)
	}
}

func money(v float64) string {
	if v < 0 {
		return fmt.Sprintf("-%s%.0f", *currency, -v)
	}
	return fmt.Sprintf("%s%.0f", *currency, v)
}
