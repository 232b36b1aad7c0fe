package cli

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/AlecAivazis/survey/v2"

	"github.com/quantview/tickersheet/config"
	"github.com/quantview/tickersheet/pkg/ticker"
)

var symbolPattern = regexp.MustCompile(`^[A-Z0-9.\-^]+$`)

// promptForSymbol prompts the user to enter a stock ticker symbol.
func promptForSymbol() (string, error) {
	var symbol string
	prompt := &survey.Input{
		Message: "Enter the stock ticker symbol (e.g., AAPL, MSFT, GOOGL):",
		Help:    "Please enter a valid stock ticker symbol",
	}

	err := survey.AskOne(prompt, &symbol, survey.WithValidator(func(val interface{}) error {
		str := strings.TrimSpace(strings.ToUpper(val.(string)))
		if len(str) == 0 {
			return fmt.Errorf("ticker symbol cannot be empty")
		}
		if len(str) > 10 {
			return fmt.Errorf("ticker symbol too long (max 10 characters)")
		}
		if !symbolPattern.MatchString(str) {
			return fmt.Errorf("invalid ticker format (use letters, numbers, dots, and hyphens only)")
		}
		return nil
	}))
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(strings.ToUpper(symbol)), nil
}

// promptForAction prompts the user to pick what to fetch.
func promptForAction() (string, error) {
	var action string
	prompt := &survey.Select{
		Message: "What would you like to fetch?",
		Options: []string{
			"Price history",
			"Income statement",
			"Balance sheet",
			"Cash flow",
			"Company profile",
			"Quit",
		},
	}
	err := survey.AskOne(prompt, &action)
	return action, err
}

// runInteractiveMode starts the interactive fetch loop.
func runInteractiveMode(cfg *config.Config) error {
	fmt.Println(titleStyle.Render("Tickersheet - market data at your fingertips"))
	fmt.Println()

	for {
		action, err := promptForAction()
		if err != nil || action == "Quit" {
			fmt.Println("👋 Bye!")
			return nil
		}

		symbol, err := promptForSymbol()
		if err != nil {
			return err
		}

		switch action {
		case "Price history":
			err = runHistoryCommand(cfg, symbol, ticker.DefaultHistoryOptions(), false)
		case "Income statement":
			err = runFinancialsCommand(cfg, symbol, "income", false, false)
		case "Balance sheet":
			err = runFinancialsCommand(cfg, symbol, "balance", false, false)
		case "Cash flow":
			err = runFinancialsCommand(cfg, symbol, "cashflow", false, false)
		case "Company profile":
			err = runProfileCommand(cfg, symbol)
		}
		if err != nil {
			fmt.Println(errorStyle.Render("❌ " + err.Error()))
		}

		fmt.Println("\n" + strings.Repeat("-", 60))
		fmt.Println()
	}
}
