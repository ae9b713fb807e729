// Package main provides the CLI entrypoint for keydrill.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/mtln/keydrill/internal/config"
	"github.com/mtln/keydrill/internal/corpus"
	"github.com/mtln/keydrill/internal/model"
	"github.com/mtln/keydrill/internal/results"
	"github.com/mtln/keydrill/internal/stats"
	"github.com/mtln/keydrill/internal/statsui"
	"github.com/mtln/keydrill/internal/store"
	"github.com/mtln/keydrill/internal/tui"
)

const (
	defaultVariant     = "standard"
	defaultSeqLength   = 100
	defaultWrapWidth   = 80
	defaultCurveWindow = 10
	defaultHistBins    = 10
	plainPlotHeight    = 10
)

var (
	practiceVariant string
	practiceTrain   bool
	practiceLength  int
	practiceWrap    int

	statsMode        string
	statsVariant     string
	statsRuns        string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsPlain       bool

	textsEdit bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "keydrill",
		Short:         "TUI typing and keyboard drill trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.Flags().StringVar(&practiceVariant, "variant", defaultVariant, "run variant: standard, sudden, or blind")
	rootCmd.Flags().BoolVar(&practiceTrain, "training", false, "mark runs as training runs")
	rootCmd.Flags().IntVar(&practiceLength, "length", defaultSeqLength, "characters per drill sequence")
	rootCmd.Flags().IntVar(&practiceWrap, "wrap-width", defaultWrapWidth, "maximum text width in the practice view")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newTextsCmd())
	rootCmd.AddCommand(newStatsCmd())

	return rootCmd
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "variant", &practiceVariant, fileCfg.Practice.Variant)
	applyBoolConfig(cmd, "training", &practiceTrain, fileCfg.Practice.Training)
	applyIntConfig(cmd, "length", &practiceLength, fileCfg.Practice.SequenceLength)
	applyIntConfig(cmd, "wrap-width", &practiceWrap, fileCfg.Practice.WrapWidth)

	cfg := model.Config{
		Variant:        model.Variant(practiceVariant),
		Training:       practiceTrain,
		SequenceLength: practiceLength,
		WrapWidth:      practiceWrap,
	}

	if err := validateConfig(cfg); err != nil {
		return err
	}

	texts, err := corpus.LoadOrCreate(config.DefaultCorpusPath())
	if err != nil {
		return fmt.Errorf("failed to load typing texts: %w", err)
	}

	rs := results.NewStore(config.DefaultDataDir())

	db, err := store.Open(config.DefaultDBPath())
	if err != nil {
		logErrf("failed to open session db, character stats disabled: %v\n", err)
		db = nil
	}
	defer func() {
		if db == nil {
			return
		}
		if cerr := db.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	model := tui.NewModel(cfg, texts, rs, db)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}
	return openInEditor(path)
}

func newTextsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "texts",
		Short: "List or edit the typing texts",
		Args:  cobra.NoArgs,
		RunE:  runTextsCmd,
	}
	cmd.Flags().BoolVar(&textsEdit, "edit", false, "open the texts file in $EDITOR")
	return cmd
}

func runTextsCmd(cmd *cobra.Command, _ []string) error {
	path := config.DefaultCorpusPath()
	texts, err := corpus.LoadOrCreate(path)
	if err != nil {
		return fmt.Errorf("failed to prepare typing texts: %w", err)
	}
	if textsEdit {
		return openInEditor(path)
	}
	for i, text := range texts {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, corpus.Preview(text, 70)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func openInEditor(path string) error {
	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsMode, "mode", "typing", "mode: typing, letter, special, or number")
	cmd.Flags().StringVar(&statsVariant, "variant", defaultVariant, "variant: standard, sudden, or blind")
	cmd.Flags().StringVar(&statsRuns, "runs", "regular", "runs to include: regular, training, or all")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N runs")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print stats to stdout instead of the TUI")
	return cmd
}

func runStatsCmd(_ *cobra.Command, _ []string) error {
	cfg, err := buildStatsConfig()
	if err != nil {
		return err
	}

	rs := results.NewStore(config.DefaultDataDir())

	db, err := store.Open(config.DefaultDBPath())
	if err != nil {
		logErrf("failed to open session db, character stats disabled: %v\n", err)
		db = nil
	}
	defer func() {
		if db == nil {
			return
		}
		if cerr := db.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if statsPlain {
		return printPlainStats(rs, db, cfg)
	}

	model := statsui.NewModel(rs, db, cfg)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func buildStatsConfig() (model.StatsConfig, error) {
	mode := model.Mode(statsMode)
	switch mode {
	case model.ModeTyping, model.ModeLetter, model.ModeSpecial, model.ModeNumber:
	default:
		return model.StatsConfig{}, fmt.Errorf("invalid --mode value %q", statsMode)
	}

	variant := model.Variant(statsVariant)
	switch variant {
	case model.VariantStandard, model.VariantSudden, model.VariantBlind:
	default:
		return model.StatsConfig{}, fmt.Errorf("invalid --variant value %q", statsVariant)
	}

	filter := model.RunFilter(statsRuns)
	switch filter {
	case model.FilterRegular, model.FilterTraining, model.FilterAll:
	default:
		return model.StatsConfig{}, fmt.Errorf("invalid --runs value %q", statsRuns)
	}

	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsLast < 0 {
		return model.StatsConfig{}, fmt.Errorf("--last must be >= 0")
	}
	if statsCurveWindow < 1 {
		return model.StatsConfig{}, fmt.Errorf("--curve-window must be >= 1")
	}

	return model.StatsConfig{
		Mode:        mode,
		Variant:     variant,
		Filter:      filter,
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
	}, nil
}

func printPlainStats(rs *results.Store, db *store.Store, cfg model.StatsConfig) error {
	report, err := stats.BuildReport(context.Background(), rs, db, cfg)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	if len(report.Results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	out := os.Stdout
	width := stats.TerminalWidth()
	useColor := stats.ShouldUseColor(out, false)

	if err := stats.RenderSummary(out, cfg.Mode, cfg.Variant, report.Results); err != nil {
		return fmt.Errorf("failed to render summary: %w", err)
	}
	if err := stats.RenderSpeedCurve(out, cfg.Mode, cfg.Variant, report.Results,
		cfg.CurveWindow, width, plainPlotHeight, useColor); err != nil {
		return fmt.Errorf("failed to render curve: %w", err)
	}
	if weak := stats.WeakestChars(report.CharAggsWindow, 8); len(weak) > 0 {
		fmt.Fprintf(out, "Weakest chars (recent runs): %s\n\n", strings.Join(weak, " "))
	}
	if err := stats.RenderHistogram(out, cfg.Mode, report.Results, defaultHistBins); err != nil {
		return fmt.Errorf("failed to render histogram: %w", err)
	}
	if err := stats.RenderDaily(out, cfg.Mode, report.Results, width, plainPlotHeight, useColor); err != nil {
		return fmt.Errorf("failed to render daily plot: %w", err)
	}
	if db != nil && len(report.CharAggsAll) > 0 {
		if top := stats.TopCharsByFrequency(report.CharAggsAll, 8); len(top) > 0 {
			fmt.Fprintf(out, "Most typed chars: %s\n\n", strings.Join(top, " "))
		}
		if err := stats.RenderCharTable(out, report.CharAggsAll); err != nil {
			return fmt.Errorf("failed to render char table: %w", err)
		}
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# keydrill configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# variant = %q         # Run variant: standard, sudden, or blind
# training = false     # Mark runs as training runs
# sequence-length = %d # Characters per drill sequence
# wrap-width = %d      # Maximum text width in the practice view
`,
		defaultVariant,
		defaultSeqLength,
		defaultWrapWidth,
	)
}

func validateConfig(cfg model.Config) error {
	switch cfg.Variant {
	case model.VariantStandard, model.VariantSudden, model.VariantBlind:
	default:
		return fmt.Errorf("--variant must be standard, sudden, or blind")
	}
	if cfg.SequenceLength <= 0 {
		return fmt.Errorf("--length must be > 0")
	}
	if cfg.WrapWidth <= 0 {
		return fmt.Errorf("--wrap-width must be > 0")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
