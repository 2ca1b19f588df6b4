package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	rag_http "sheetqa/internal/adapter/rag_http"
	"sheetqa/internal/di"
	"sheetqa/internal/infra/config"
	"sheetqa/internal/infra/logger"
	"sheetqa/internal/usecase"
)

var (
	version = "dev"

	// Global flags
	verbose   bool
	colorMode string

	// ask flags
	serverURL  string
	askTimeout time.Duration

	// rank flags
	top int
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "sheetqactl",
		Short:         "Query a sheetqa deployment from the command line",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging on stderr")
	rootCmd.PersistentFlags().StringVar(&colorMode, "color", "auto", "color output: auto, always or never")

	askCmd := &cobra.Command{
		Use:   "ask QUESTION",
		Short: "Ask a running server a question",
		Long: `Send QUESTION to POST /generateAnswer on a running server and print the answer.

Examples:
  sheetqactl ask "What is X?"
  sheetqactl ask --server http://qa.internal:8080 "What is X?"`,
		Args: cobra.ExactArgs(1),
		RunE: runAsk,
	}
	askCmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "base URL of the sheetqa server")
	askCmd.Flags().DurationVar(&askTimeout, "timeout", 60*time.Second, "request timeout")

	rankCmd := &cobra.Command{
		Use:   "rank QUESTION",
		Short: "Load the documents and print them ranked against QUESTION",
		Long: `Load the document snapshot with the server's environment configuration,
embed QUESTION and print the documents ordered by similarity.`,
		Args: cobra.ExactArgs(1),
		RunE: runRank,
	}
	rankCmd.Flags().IntVar(&top, "top", 10, "number of documents to show (0 for all)")

	promptCmd := &cobra.Command{
		Use:   "prompt QUESTION",
		Short: "Print the prompt that would be sent for QUESTION",
		Long: `Load the document snapshot, rank it against QUESTION and print the exact
prompt the server would send. The completion model is not called.`,
		Args: cobra.ExactArgs(1),
		RunE: runPrompt,
	}

	rootCmd.AddCommand(askCmd, rankCmd, promptCmd)
	return rootCmd
}

func newLogger(w io.Writer) *slog.Logger {
	level := "warn"
	if verbose {
		level = "debug"
	}
	return logger.New(logger.Options{Level: level, ServiceName: "sheetqactl", Output: w})
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	printer, err := newPrinter(cmd)
	if err != nil {
		return err
	}

	answer, err := rag_http.NewAnswerClient(serverURL, askTimeout).Ask(ctx, args[0])
	if err != nil {
		return err
	}
	if strings.TrimSpace(answer) == "" {
		printer.Warn("the server returned an empty answer")
		return nil
	}
	printer.Println(strings.TrimSpace(answer))
	return nil
}

// loadApplication wires the same components as the server, loading the snapshot.
func loadApplication(ctx context.Context, cmd *cobra.Command) (*di.ApplicationComponents, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return di.NewApplicationComponents(ctx, cfg, newLogger(cmd.ErrOrStderr()))
}

func runRank(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	printer, err := newPrinter(cmd)
	if err != nil {
		return err
	}

	app, err := loadApplication(ctx, cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	ranked, err := app.RankUsecase.Execute(ctx, args[0], app.Snapshot)
	if err != nil {
		return err
	}
	printer.Header(fmt.Sprintf("%d documents ranked", len(ranked)))
	renderRanking(cmd.OutOrStdout(), app.Snapshot, ranked, top)
	return nil
}

func runPrompt(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	printer, err := newPrinter(cmd)
	if err != nil {
		return err
	}

	app, err := loadApplication(ctx, cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	out, err := app.AnswerUsecase.BuildPrompt(ctx, usecase.AnswerQuestionInput{Question: args[0]})
	if err != nil {
		return err
	}
	printer.Println(out.Prompt)
	printer.Info("included %d documents, %d context words: %s",
		len(out.IncludedTitles), out.ContextWords, strings.Join(out.IncludedTitles, ", "))
	return nil
}
