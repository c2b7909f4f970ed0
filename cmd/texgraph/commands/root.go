package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/DrSkyle/texgraph/internal/app"
	"github.com/DrSkyle/texgraph/pkg/config"
	"github.com/DrSkyle/texgraph/pkg/version"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "texgraph",
	Short: "Texture-packed graph editor",
	Long: `texgraph - graph documents packed for GPU texture upload

Edit. Undo. Ship it to the shader.`,
	Version:       version.Current,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	def := config.Default()
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file (default $HOME/.texgraph.yaml)")
	pf.Bool("directed", def.Directed, "Create directed documents")
	pf.Float64("jitter-radius", def.JitterRadius, "Radius of the random offset for unplaced vertices")
	pf.Int("initial-capacity", def.InitialCapacity, "Records preallocated per packed array")
	pf.Int("texture-width", def.TextureWidth, "Row width of mirror buffers")
	pf.Int("history-limit", def.HistoryLimit, "Maximum undo depth (0 keeps everything)")
	pf.Uint64("seed", def.Seed, "Seed for position jitter (0 is random)")
	pf.Bool("json-logs", def.JSONLogs, "Emit logs as JSON")
	pf.BoolP("verbose", "v", def.Verbose, "Log every tick")
	pf.String("otel-endpoint", def.OtelEndpoint, "OTLP/HTTP endpoint for traces")
	pf.Bool("skip-telemetry", def.SkipTelemetry, "Disable tracing")
	pf.Bool("compress-wire", def.CompressWire, "Snappy-compress saved files")
	pf.String("s3-region", def.S3Region, "AWS region for s3:// locations")
	pf.String("s3-endpoint", def.S3Endpoint, "Custom S3 endpoint URL (LocalStack, MinIO)")
	pf.MarkHidden("seed")

	pf.VisitAll(func(f *pflag.Flag) {
		if f.Name == "config" {
			return
		}
		viper.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
	})

	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		renderHelp(cmd)
	})

	rootCmd.AddCommand(ReplCmd)
	rootCmd.AddCommand(BenchCmd)
	rootCmd.AddCommand(InspectCmd)
	rootCmd.AddCommand(ConvertCmd)
	rootCmd.AddCommand(ListCmd)
	rootCmd.AddCommand(ViewCmd)
	rootCmd.AddCommand(VersionCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.SetConfigFile(filepath.Join(home, ".texgraph.yaml"))
			viper.SetConfigType("yaml")
		}
	}
	viper.SetEnvPrefix("TEXGRAPH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
	// A missing config file is fine; flags and env still apply.
	viper.ReadInConfig()
}

// loadConfig merges defaults, config file, env and flags.
func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func startApp(ctx context.Context) (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg, os.Stderr)
}

func renderHelp(cmd *cobra.Command) {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00FF99")).
		MarginBottom(1)

	flagStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA"))

	fmt.Println(titleStyle.Render(fmt.Sprintf("TEXGRAPH %s", version.Current)))
	fmt.Println(cmd.Short)

	fmt.Println(titleStyle.Render("USAGE"))
	fmt.Printf("  %s\n\n", cmd.UseLine())

	if cmd.HasAvailableSubCommands() {
		fmt.Println(titleStyle.Render("COMMANDS"))
		for _, c := range cmd.Commands() {
			if c.IsAvailableCommand() {
				fmt.Printf("  %-12s %s\n", c.Name(), c.Short)
			}
		}
		fmt.Println("")
	}

	if cmd.Example != "" {
		fmt.Println(titleStyle.Render("EXAMPLES"))
		fmt.Println(cmd.Example)
		fmt.Println("")
	}

	fmt.Println(titleStyle.Render("FLAGS"))
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		output := fmt.Sprintf("  --%-18s %s", f.Name, f.Usage)
		if f.DefValue != "" && f.DefValue != "false" && f.DefValue != "0" {
			output += fmt.Sprintf(" (default %s)", f.DefValue)
		}
		fmt.Println(flagStyle.Render(output))
	})
	fmt.Println("")
}
