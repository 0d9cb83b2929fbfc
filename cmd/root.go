package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"aimon-cli/agent"
	"aimon-cli/custody"
	"aimon-cli/logs"
	"aimon-cli/storage"

	"github.com/AlecAivazis/survey/v2"
	figure "github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "aimon-cli",
	Short: "aimon is an AI agent with its own blockchain wallet.",
	Long: `An interactive command-line AI agent that provisions a wallet on first
run, persists its credentials, and resumes the same wallet on every run after.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

// run is the main entry point for the interactive CLI.
func run(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	logs.SetDebug(cfg.LogDebug)
	logger := logs.New()

	myFigure := figure.NewFigure("AI-MON", "larry3d", true)
	fmt.Println(titleStyle.Render(myFigure.String()))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	provisioner := selectProvisioner(cfg)
	store := storage.NewCredentialStore(provisioner, cfg.NetworkID)

	record, wallet, err := store.LoadOrCreate(ctx, cfg.WalletDataFile)
	if err != nil {
		// Never fall back to an ephemeral wallet here: a run that cannot
		// read or persist credentials must stop before provisioning keys
		// that would be lost on exit.
		fmt.Println(warningStyle.Render(fmt.Sprintf("❌ Wallet setup failed: %v", err)))
		return err
	}

	logger.Info("wallet ready",
		"outcome", record.Outcome.String(),
		"storage_key", record.StorageKey,
		"network", record.NetworkID,
	)
	switch record.Outcome {
	case storage.Created:
		fmt.Println(titleStyle.Render("✅ New wallet created and saved."))
	case storage.Restored:
		fmt.Println(titleStyle.Render("✅ Existing wallet restored."))
	}
	fmt.Println(promptStyle.Render("   Address: " + wallet.Address()))
	fmt.Println(promptStyle.Render("   Network: " + record.NetworkID))

	llm := agent.NewOpenAIClient(cfg.OpenAIAPIURL, cfg.OpenAIAPIKey, cfg.OpenAIModel)
	bot := agent.New(llm, wallet.Address(), record.NetworkID, logger)

	for {
		mode := ""
		prompt := &survey.Select{
			Message: promptStyle.Render("Choose a mode:"),
			Options: []string{"Chat mode", "Autonomous mode", "Exit"},
			Help:    "Chat talks to the agent interactively; autonomous mode lets it act on a timer.",
		}
		if err := survey.AskOne(prompt, &mode); err != nil {
			return nil
		}

		switch mode {
		case "Chat mode":
			runChat(ctx, bot)
		case "Autonomous mode":
			runAutonomous(ctx, bot, time.Duration(cfg.AutoInterval)*time.Second)
		case "Exit":
			fmt.Println("Goodbye Agent!")
			return nil
		}

		if ctx.Err() != nil {
			fmt.Println("\nGoodbye Agent!")
			return nil
		}
	}
}

// selectProvisioner picks the custody collaborator: the CDP API when
// credentials are configured, a local keypair otherwise.
func selectProvisioner(cfg *Config) custody.Provisioner {
	if cfg.HasCDPCredentials() {
		fmt.Println(promptStyle.Render("Using CDP custody API for wallet provisioning."))
		return custody.NewCDPClient(cfg.CDPAPIURL, cfg.CDPAPIKeyName, cfg.CDPAPIKeyPrivateKey)
	}
	fmt.Println(promptStyle.Render("No CDP credentials found, using a local keypair wallet."))
	return custody.NewKeypairProvisioner()
}

// runChat drives the agent interactively until the user types exit.
func runChat(ctx context.Context, bot *agent.Agent) {
	fmt.Println(promptStyle.Render("\nStarting chat mode... Type 'exit' to end."))

	for {
		input := ""
		prompt := &survey.Input{Message: "User:"}
		if err := survey.AskOne(prompt, &input); err != nil {
			return
		}
		if strings.EqualFold(strings.TrimSpace(input), "exit") {
			return
		}
		if strings.TrimSpace(input) == "" {
			continue
		}

		reply, err := bot.Step(ctx, input)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			fmt.Println(warningStyle.Render(fmt.Sprintf("❌ Agent error: %v", err)))
			continue
		}
		fmt.Println(agentStyle.Render(reply))
		fmt.Println("-------------------")
	}
}

// runAutonomous lets the agent act on a fixed interval until interrupted.
func runAutonomous(ctx context.Context, bot *agent.Agent, interval time.Duration) {
	fmt.Println(promptStyle.Render("\nStarting autonomous mode... Press Ctrl+C to stop."))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		reply, err := bot.Step(ctx, agent.AutonomousThought)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			fmt.Println(warningStyle.Render(fmt.Sprintf("❌ Agent error: %v", err)))
		} else {
			fmt.Println(agentStyle.Render(reply))
			fmt.Println("-------------------")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
