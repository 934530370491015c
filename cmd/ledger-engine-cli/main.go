// Package main provides the Ledger Engine CLI entrypoint.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/app"
	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/config"
	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/observability"
	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/storage"
)

const version = "0.1.0"

var (
	// Global flags
	cfgFile    string
	outputJSON bool
	verbose    bool
	noColor    bool

	// Configuration and logger
	cfg    *config.Config
	logger *observability.Logger
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "ledger-engine-cli",
	Short: "Answer business questions about the converted ledger",
	Long: `Ledger Engine CLI answers plain-English business questions about the
converted ledger database: outstanding balances, purchases, sales, expenses,
inventory and aged receivables.

Data questions the engine does not recognise get example questions;
anything else gets a polite refusal.

All commands support --json for automation.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logFormat := cfg.Observability.LogFormat
		if outputJSON {
			logFormat = "json"
		}
		level := cfg.Observability.LogLevel
		if verbose {
			level = "debug"
		}

		logger = observability.NewLogger(observability.LogConfig{
			Level:       level,
			Format:      logFormat,
			ServiceName: "ledger-engine-cli",
		})

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: uses env vars)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(newAskCmd())
	rootCmd.AddCommand(newBatchCmd())
	rootCmd.AddCommand(newRulesCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// askResult is the JSON shape of one answered question.
type askResult struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Handled  bool   `json:"handled"`
	Rule     string `json:"rule,omitempty"`
	Source   string `json:"source"`
	Latency  string `json:"latency"`
}

func buildApp() (*app.App, error) {
	engine, err := app.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := engine.CheckStore(); err != nil && !errors.Is(err, storage.ErrNoStore) {
		return nil, err
	}
	return engine, nil
}

func ask(ctx context.Context, engine *app.App, question string) (askResult, error) {
	start := time.Now()
	reply, err := engine.Ask(ctx, question)
	if err != nil {
		return askResult{}, err
	}
	return askResult{
		Question: question,
		Answer:   reply.Text,
		Handled:  reply.Handled,
		Rule:     reply.Rule,
		Source:   reply.Source,
		Latency:  FormatDuration(time.Since(start)),
	}, nil
}

// newAskCmd creates the ask subcommand.
func newAskCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   `ask "<question>"`,
		Short: "Answer a single business question",
		Example: `  ledger-engine-cli ask "total outstanding in Bihar"
  ledger-engine-cli ask "show me purchase of PIPE from STEEL for 2024" --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			ui := NewUI(outputJSON, noColor)
			defer ui.Close()

			engine, err := buildApp()
			if err != nil {
				return err
			}

			stop := ui.Spinner("Querying ledger...")
			result, err := ask(ctx, engine, strings.Join(args, " "))
			stop()
			if err != nil {
				ui.Error("Question failed: %v", err)
				return err
			}

			if outputJSON {
				return json.NewEncoder(os.Stdout).Encode(result)
			}

			if !result.Handled {
				ui.Warning("No business rule matched this question")
			}
			ui.Answer(result.Answer)
			if verbose {
				ui.KeyValue("Rule", result.Rule)
				ui.KeyValue("Source", result.Source)
				ui.KeyValue("Latency", result.Latency)
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "maximum time to answer")
	return cmd
}

// newBatchCmd creates the batch subcommand.
func newBatchCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Answer every question in a file, one per line",
		Long: `Batch reads questions from a file (one per line, blank lines and lines
starting with # are skipped) and answers each of them in order.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()

			questions, err := readQuestions(file)
			if err != nil {
				return err
			}

			ui := NewUI(outputJSON, noColor)
			engine, err := buildApp()
			if err != nil {
				ui.Close()
				return err
			}

			bar := ui.ProgressBar("Answering", int64(len(questions)))
			results := make([]askResult, 0, len(questions))
			for _, q := range questions {
				result, err := ask(ctx, engine, q)
				if err != nil {
					if bar != nil {
						bar.Abort(false)
					}
					ui.Close()
					return fmt.Errorf("answer %q: %w", q, err)
				}
				results = append(results, result)
				if bar != nil {
					bar.Increment()
				}
			}
			ui.Close()

			if outputJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}

			handled := 0
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				if r.Handled {
					handled++
				}
				rows = append(rows, []string{r.Question, r.Rule, r.Latency})
			}

			ui.Section("Answers")
			for _, r := range results {
				ui.Info("%s", r.Question)
				ui.Answer(r.Answer)
				fmt.Println()
			}
			ui.Table([]string{"Question", "Rule", "Latency"}, rows)
			ui.Success("Answered %d of %d questions", handled, len(results))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "file with one question per line (required)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func readQuestions(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open questions file: %w", err)
	}
	defer f.Close()

	var questions []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		questions = append(questions, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read questions file: %w", err)
	}
	return questions, nil
}

// newRulesCmd creates the rules subcommand.
func newRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the recognised question shapes in priority order",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := app.New(cfg, logger)
			if err != nil {
				return err
			}
			rules := engine.Classifier.Rules()

			if outputJSON {
				out := make([]map[string]string, 0, len(rules))
				for _, r := range rules {
					out = append(out, map[string]string{"rule": r.Name, "example": r.Example})
				}
				return json.NewEncoder(os.Stdout).Encode(out)
			}

			ui := NewUI(outputJSON, noColor)
			defer ui.Close()
			rows := make([][]string, 0, len(rules))
			for i, r := range rules {
				rows = append(rows, []string{fmt.Sprintf("%d", i+1), r.Name, r.Example})
			}
			ui.Table([]string{"#", "Rule", "Example"}, rows)
			return nil
		},
	}
}

// newCheckCmd creates the check subcommand.
func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the configured ledger store is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			ui := NewUI(outputJSON, noColor)
			defer ui.Close()

			engine, err := app.New(cfg, logger)
			if err != nil {
				return err
			}

			status := "ok"
			checkErr := engine.Store.Check()
			if checkErr == nil {
				var s storage.Session
				if s, checkErr = engine.Store.Open(ctx); checkErr == nil {
					checkErr = s.Close()
				}
			}
			if checkErr != nil {
				status = checkErr.Error()
			}

			if outputJSON {
				if err := json.NewEncoder(os.Stdout).Encode(map[string]string{
					"driver": cfg.Database.Driver,
					"status": status,
				}); err != nil {
					return err
				}
				return checkErr
			}

			ui.KeyValue("Driver", cfg.Database.Driver)
			if checkErr != nil {
				ui.Error("Ledger store unavailable: %v", checkErr)
				return checkErr
			}
			ui.Success("Ledger store reachable")
			return nil
		},
	}
}

// newVersionCmd creates the version subcommand.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			if outputJSON {
				_ = json.NewEncoder(os.Stdout).Encode(map[string]string{"version": version})
				return
			}
			fmt.Printf("ledger-engine-cli %s\n", version)
		},
	}
}
