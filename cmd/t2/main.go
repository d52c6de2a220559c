package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/talktotext/t2/internal/app"
	"github.com/talktotext/t2/internal/config"
	"github.com/talktotext/t2/internal/metrics"
	"github.com/talktotext/t2/internal/version"
)

func main() {
	isValid, newVersion := version.CheckVersion()
	if !isValid {
		fmt.Printf(`The newest version of T2 is %v but the installed version on your system is %v.

%v

To get the latest features and likely bugfixes, please install the latest version by running 'go install github.com/talktotext/t2/cmd/t2@main'.`+"\n", newVersion, version.VERSION, version.UPDATE_MESSAGE)
		return
	}

	var (
		resetKey       = flag.Bool("reset-key", false, "Reset/reconfigure the on-disk config file")
		showConfig     = flag.Bool("show-config", false, "Show current configuration location")
		showVersion    = flag.Bool("version", false, "Show current version")
		showStats      = flag.Bool("stats", false, "Show usage statistics and productivity metrics")
		resetStats     = flag.Bool("reset-stats", false, "Clear all usage statistics")
		setTypingSpeed = flag.String("set-typing-speed", "", "Set your typing speed in words per minute (e.g., --set-typing-speed=65)")
	)
	flag.Parse()

	if *showVersion {
		handleShowVersion()
		return
	}

	if *showConfig {
		handleShowConfig()
		return
	}

	if *showStats {
		handleShowStats()
		return
	}

	if *resetStats {
		handleResetStats()
		return
	}

	if *setTypingSpeed != "" {
		handleSetTypingSpeed(*setTypingSpeed)
		return
	}

	if *resetKey {
		handleResetConfig()
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	daemon := app.NewDaemon(cfg)
	if err := daemon.Initialize(); err != nil {
		log.Fatalf("Failed to initialize daemon: %v", err)
	}

	if err := daemon.Run(); err != nil {
		log.Fatalf("Daemon error: %v", err)
	}
}

func handleShowConfig() {
	configPath, err := config.GetConfigPath()
	if err != nil {
		fmt.Printf("Error getting config path: %v\n", err)
		os.Exit(1)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		fmt.Println("Config file does not exist yet; daemon defaults will be used")
		return
	}

	fmt.Printf("Config file location: %s\n\n", configPath)
	content, err := os.ReadFile(configPath)
	if err != nil {
		fmt.Printf("Error reading config file: %v\n", err)
		return
	}
	fmt.Println(string(content))
}

func handleResetConfig() {
	configPath, _ := config.GetConfigPath()
	if err := os.Remove(configPath); err != nil && !os.IsNotExist(err) {
		fmt.Printf("Warning: failed to remove existing config: %v\n", err)
	}
	fmt.Println("Configuration reset. Defaults will be used until reconfigured.")
}

func handleShowVersion() {
	fmt.Printf("T2 (Talk to Text) %s\n", version.VERSION)
}

func handleShowStats() {
	metricsDir, err := config.MetricsDir()
	if err != nil {
		fmt.Printf("Error getting metrics directory: %v\n", err)
		os.Exit(1)
	}

	metricsManager, err := metrics.NewMetricsManager(metricsDir)
	if err != nil {
		fmt.Printf("Error initializing metrics: %v\n", err)
		os.Exit(1)
	}

	totalMetrics, err := metricsManager.GetTotalMetrics()
	if err != nil {
		fmt.Printf("Error getting total metrics: %v\n", err)
		os.Exit(1)
	}

	recentDays, err := metricsManager.GetRecentDays(7)
	if err != nil {
		fmt.Printf("Warning: failed to get recent metrics: %v\n", err)
	}

	formatter := metrics.NewStatsFormatter()

	fmt.Println(formatter.FormatTotalStats(totalMetrics))
	fmt.Println()

	if len(recentDays) > 0 {
		fmt.Println(formatter.FormatWeeklyStats(recentDays))
		fmt.Println()
	}

	typingSpeed := metricsManager.GetTypingSpeed()
	fmt.Printf("Current typing speed setting: %d WPM\n", typingSpeed)
	fmt.Println("Use --set-typing-speed to update for more accurate time savings")
}

func handleResetStats() {
	metricsDir, err := config.MetricsDir()
	if err != nil {
		fmt.Printf("Error getting metrics directory: %v\n", err)
		os.Exit(1)
	}

	metricsManager, err := metrics.NewMetricsManager(metricsDir)
	if err != nil {
		fmt.Printf("Error initializing metrics: %v\n", err)
		os.Exit(1)
	}

	if err := metricsManager.ClearAllMetrics(); err != nil {
		fmt.Printf("Error clearing metrics: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("All usage statistics have been cleared")
}

func handleSetTypingSpeed(speedStr string) {
	speed, err := strconv.Atoi(speedStr)
	if err != nil {
		fmt.Printf("Invalid typing speed: %s (must be a number)\n", speedStr)
		os.Exit(1)
	}

	if speed < 10 || speed > 200 {
		fmt.Printf("Typing speed must be between 10 and 200 WPM (got %d)\n", speed)
		os.Exit(1)
	}

	metricsDir, err := config.MetricsDir()
	if err != nil {
		fmt.Printf("Error getting metrics directory: %v\n", err)
		os.Exit(1)
	}

	metricsManager, err := metrics.NewMetricsManager(metricsDir)
	if err != nil {
		fmt.Printf("Error initializing metrics: %v\n", err)
		os.Exit(1)
	}

	if err := metricsManager.SetTypingSpeed(speed); err != nil {
		fmt.Printf("Error setting typing speed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Typing speed updated to %d WPM\n", speed)
	fmt.Println("This will be used to calculate more accurate time savings in future sessions")
}
