package main

import (
	"errors"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/reoring/goshadow/i18n"
)

// errIssuesFound is returned by --fail-on-issues when any input carries
// errors in its Meta. The report has already been written.
var errIssuesFound = errors.New("issues found")

// app is the state shared by all subcommands of one root command.
type app struct {
	v       *viper.Viper
	cfg     *config
	log     *zap.Logger
	cfgFile string
	verbose bool

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{v: viper.New(), log: zap.NewNop(), stdin: stdin, stdout: stdout, stderr: stderr}

	rootCmd := &cobra.Command{
		Use:   "goshadow",
		Short: "Parse, validate and scrub documents while keeping their shadow metadata",
		Long: `goshadow reads JSON or YAML into annotated values. Every node may carry
errors, remarks about rewrites and the original value it replaced; the
metadata travels next to the clean payload under "_meta" or as a separate
document.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.log.Sync()
		},
	}
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default ./goshadow.yaml when present)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "log processing details to stderr")
	pf.String("schema", "", "YAML schema file to validate inputs against")
	pf.String("rules", "", "TOML or YAML scrubbing rules file")
	pf.String("lang", "en", "message language (en, ja)")
	pf.Bool("no-color", false, "disable colored output")
	pf.Int("workers", 4, "inputs processed in parallel")
	pf.StringP("format", "f", "auto", "input format (auto, json, yaml)")
	pf.String("duplicates", "warn", "duplicate object keys (ignore, warn, error)")
	pf.Bool("allow-nan", false, "keep NaN and infinities instead of recording errors")
	pf.Int("max-depth", 0, "maximum nesting depth (0 = unlimited)")
	pf.Int64("max-bytes", 0, "maximum input size (0 = unlimited)")

	for key, name := range map[string]string{
		"schema":           "schema",
		"rules":            "rules",
		"lang":             "lang",
		"no_color":         "no-color",
		"workers":          "workers",
		"input.format":     "format",
		"input.duplicates": "duplicates",
		"input.allow_nan":  "allow-nan",
		"input.max_depth":  "max-depth",
		"input.max_bytes":  "max-bytes",
	} {
		_ = a.v.BindPFlag(key, pf.Lookup(name))
	}

	rootCmd.AddCommand(newParseCmd(a))
	rootCmd.AddCommand(newExplainCmd(a))
	rootCmd.AddCommand(newSchemaCmd(a))
	rootCmd.AddCommand(newServeCmd(a))
	rootCmd.AddCommand(newVersionCmd(a))
	return rootCmd
}

// init resolves configuration and the logger once flags are parsed.
func (a *app) init() error {
	cfg, err := loadConfig(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = newLogger(a.stderr, a.verbose)
	i18n.SetLanguage(cfg.Lang)
	return nil
}

func newLogger(w io.Writer, verbose bool) *zap.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), level)).Named("goshadow")
}
