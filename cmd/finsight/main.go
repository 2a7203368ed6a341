// Command finsight runs the self-improving finance research agent from the
// command line.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/finsight/finsight-go/pkg/agent"
	"github.com/finsight/finsight-go/pkg/config"
	"github.com/finsight/finsight-go/pkg/llm"
	"github.com/finsight/finsight-go/pkg/logging"
	"github.com/finsight/finsight-go/pkg/memory"
	"github.com/finsight/finsight-go/pkg/tools"
)

type cliOptions struct {
	configPath string
	memoryPath string
	backend    string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	rootCmd := &cobra.Command{
		Use:   "finsight",
		Short: "Self-improving finance research agent",
		Long: "finsight researches companies with web search and LLM tools,\n" +
			"evaluates its own tool usage after every run, and learns rules\n" +
			"from repeated mistakes that harden its behavior on later runs.",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&opts.memoryPath, "memory", "", "override the memory store path")
	rootCmd.PersistentFlags().StringVar(&opts.backend, "backend", "", "override the memory backend (file or sqlite)")

	rootCmd.AddCommand(newRunCmd(opts))
	rootCmd.AddCommand(newStatusCmd(opts))
	rootCmd.AddCommand(newResetCmd(opts))
	return rootCmd
}

// loadConfig resolves the effective configuration from file, environment and
// command-line overrides, in that order of increasing precedence.
func loadConfig(opts *cliOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.memoryPath != "" {
		cfg.Memory.Path = opts.memoryPath
	}
	if opts.backend != "" {
		cfg.Memory.Backend = opts.backend
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func setupLogging(cfg *config.Config) error {
	outputs := []logging.Output{logging.NewConsoleOutput(true)}
	if cfg.Logging.File != "" {
		fileOutput, err := logging.NewFileOutput(cfg.Logging.File)
		if err != nil {
			return err
		}
		outputs = append(outputs, fileOutput)
	}
	logging.SetLogger(logging.NewLogger(logging.Config{
		Severity: logging.ParseSeverity(cfg.Logging.Level),
		Outputs:  outputs,
	}))
	return nil
}

func openMemory(cfg *config.Config) (*memory.Memory, error) {
	switch cfg.Memory.Backend {
	case "sqlite":
		store, err := memory.NewSQLiteStore(cfg.Memory.Path)
		if err != nil {
			return nil, err
		}
		return memory.New(store), nil
	default:
		return memory.New(memory.NewFileStore(cfg.Memory.Path)), nil
	}
}

func newRunCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run \"QUERY\"",
		Short: "Research a company and record the run in memory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if err := setupLogging(cfg); err != nil {
				return err
			}
			return runAgent(cmd.Context(), cfg, args[0])
		},
	}
}

func runAgent(ctx context.Context, cfg *config.Config, query string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	mem, err := openMemory(cfg)
	if err != nil {
		return err
	}
	defer mem.Close()

	client, err := llm.NewClient(cfg.LLM.APIKey, cfg.LLM.ModelID)
	if err != nil {
		return err
	}

	var searchOpts []tools.TavilyOption
	if cfg.Search.BaseURL != "" {
		searchOpts = append(searchOpts, tools.WithBaseURL(cfg.Search.BaseURL))
	}
	search, err := tools.NewTavilyClient(cfg.Search.APIKey, searchOpts...)
	if err != nil {
		return err
	}

	registry := tools.NewRegistry()
	for _, tool := range []tools.Tool{
		tools.NewCompanyOverviewTool(search),
		tools.NewStockPriceTool(search),
		tools.NewRecentNewsTool(search),
		tools.NewFinancialMetricsTool(search),
		tools.NewSentimentTool(client),
		tools.NewReportTool(client),
	} {
		if err := registry.Register(tool); err != nil {
			return err
		}
	}

	selector, err := cfg.Selector()
	if err != nil {
		return err
	}

	orch := agent.New(mem, agent.NewLLMPlanner(client, registry), selector)
	result, err := orch.Run(ctx, query)
	if err != nil {
		return err
	}

	printResult(result)
	return nil
}

func printResult(result *agent.Result) {
	fmt.Printf("Run #%d (%s)\n", result.RunNumber, result.TraceID)
	fmt.Printf("Guidance: %s\n", result.GuidanceVariant)
	fmt.Printf("Tools: %s\n\n", strings.Join(result.ToolsUsed, " -> "))
	fmt.Println(result.Report)
	fmt.Println()

	if result.Success {
		fmt.Println("Verdict: success")
	} else {
		fmt.Printf("Verdict: %s\n", result.Mistake)
		fmt.Printf("  %s\n", result.Explanation)
	}
	fmt.Printf("Learned rules: %d\n", result.LearnedRules)
}

func newStatusCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show memory totals, success rate and learned rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			mem, err := openMemory(cfg)
			if err != nil {
				return err
			}
			defer mem.Close()

			printStatus(mem.Load())
			return nil
		},
	}
}

func printStatus(snap *memory.Snapshot) {
	successes, total := snap.SuccessRate()
	fmt.Printf("Total runs: %d\n", snap.TotalRuns)
	if total > 0 {
		fmt.Printf("Success rate: %d/%d (%.0f%%)\n", successes, total, 100*float64(successes)/float64(total))
	}
	fmt.Printf("Mistakes recorded: %d\n", len(snap.Mistakes))

	if len(snap.LearnedRules) == 0 {
		fmt.Println("Learned rules: none")
	} else {
		fmt.Println("Learned rules:")
		for _, rule := range snap.LearnedRules {
			fmt.Printf("  - %s: %s\n", rule.ID, rule.Description)
		}
	}

	for _, insight := range snap.AnalyzePatterns() {
		fmt.Printf("Insight: %s\n", insight)
	}
}

func newResetCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Erase all memory: runs, mistakes and learned rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			mem, err := openMemory(cfg)
			if err != nil {
				return err
			}
			defer mem.Close()

			if err := mem.Reset(); err != nil {
				return err
			}
			fmt.Println("Memory reset.")
			return nil
		},
	}
}
