package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Global flags
	apiURL := "http://localhost:8080"
	if envURL := os.Getenv("API_URL"); envURL != "" {
		apiURL = envURL
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "climb":
		climbCmd(apiURL, args)
	case "prestige":
		prestigeCmd(apiURL, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Ladder Simulator - Development tool for exercising the progression ladder

USAGE:
  simulator <command> [options]

COMMANDS:
  climb     Register a player and replay a batch of match outcomes
  prestige  Register a player, climb past the prestige threshold, and reset
  help      Show this help message

ENVIRONMENT:
  API_URL   Backend API URL (default: http://localhost:8080)

EXAMPLES:
  # Register a player and play 50 matches at a 60% win rate
  simulator climb --matches=50 --winrate=60

  # Climb to the prestige threshold and execute a prestige reset
  simulator prestige`)
}

func climbCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("climb", flag.ExitOnError)
	matches := fs.Int("matches", 50, "Number of matches to replay")
	winrate := fs.Int("winrate", 60, "Win percentage (0-100)")
	fs.Parse(args)

	if *winrate < 0 || *winrate > 100 {
		fmt.Println("Error: --winrate must be between 0 and 100")
		os.Exit(1)
	}

	client := NewAPIClient(apiURL)

	fmt.Println("=== Ladder Simulator: Climb ===")
	fmt.Println()

	fmt.Print("Registering player... ")
	player, token, err := client.RegisterPlayer("Runner")
	if err != nil {
		fmt.Printf("FAILED\n  Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("OK (player: %s)\n", player.DisplayName)

	season, err := client.GetSeason(token)
	if err != nil {
		fmt.Printf("Failed to fetch season: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("  Season: %s (%ds remaining)\n", season.Name, season.RemainingSeconds)

	fmt.Println()
	fmt.Printf("Replaying %d matches at %d%% win rate:\n", *matches, *winrate)

	var prog *Progression
	lastTier := ""
	for i := 0; i < *matches; i++ {
		won := rand.Intn(100) < *winrate
		delta := 20 + rand.Intn(11) // 20-30 trophies per match
		if !won {
			delta = -delta
		}

		prog, err = client.ReportMatch(token, delta, won)
		if err != nil {
			fmt.Printf("  [%d/%d] FAILED: %v\n", i+1, *matches, err)
			os.Exit(1)
		}

		if prog.Tier != lastTier {
			fmt.Printf("  [%d/%d] reached %s %s (%d trophies)\n", i+1, *matches, prog.TierEmoji, prog.Tier, prog.Trophies)
			lastTier = prog.Tier
		}
	}

	fmt.Println()
	fmt.Println("=========================================")
	fmt.Println("  CLIMB COMPLETE")
	fmt.Println("=========================================")
	fmt.Println()
	fmt.Printf("  Player:    %s\n", player.DisplayName)
	fmt.Printf("  Trophies:  %d\n", prog.Trophies)
	fmt.Printf("  Tier:      %s %s\n", prog.TierEmoji, prog.Tier)
	fmt.Printf("  Peak:      %d\n", prog.SeasonPeak)
	fmt.Printf("  Prestige:  %d (available: %v)\n", prog.PrestigeLevel, prog.CanPrestige)
	fmt.Println()
}

func prestigeCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("prestige", flag.ExitOnError)
	fs.Parse(args)

	client := NewAPIClient(apiURL)

	fmt.Println("=== Ladder Simulator: Prestige ===")
	fmt.Println()

	fmt.Print("Registering player... ")
	player, token, err := client.RegisterPlayer("Prestiger")
	if err != nil {
		fmt.Printf("FAILED\n  Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("OK (player: %s)\n", player.DisplayName)

	fmt.Print("Climbing to the prestige threshold... ")
	var prog *Progression
	for i := 0; i < 300; i++ {
		prog, err = client.ReportMatch(token, 25, true)
		if err != nil {
			fmt.Printf("FAILED\n  Error: %v\n", err)
			os.Exit(1)
		}
		if prog.CanPrestige {
			break
		}
	}
	if !prog.CanPrestige {
		fmt.Println("FAILED: never became eligible")
		os.Exit(1)
	}
	fmt.Printf("OK (%d trophies, tier %s)\n", prog.Trophies, prog.Tier)

	fmt.Print("Executing prestige... ")
	result, err := client.ExecutePrestige(token)
	if err != nil {
		fmt.Printf("FAILED\n  Error: %v\n", err)
		os.Exit(1)
	}
	if !result.Executed {
		fmt.Println("FAILED: server declined the reset")
		os.Exit(1)
	}
	fmt.Println("OK")

	fmt.Println()
	fmt.Println("=========================================")
	fmt.Println("  PRESTIGE COMPLETE")
	fmt.Println("=========================================")
	fmt.Println()
	fmt.Printf("  Player:    %s\n", player.DisplayName)
	fmt.Printf("  Trophies:  %d\n", result.Progression.Trophies)
	fmt.Printf("  Tier:      %s\n", result.Progression.Tier)
	fmt.Printf("  Prestige:  %d\n", result.Progression.PrestigeLevel)
	fmt.Println()
}
