package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/mehrguard/url-security/internal/adapters/storage"
	"github.com/mehrguard/url-security/internal/application"
	"github.com/mehrguard/url-security/internal/config"
	"github.com/mehrguard/url-security/internal/domain/analysis"
	"github.com/mehrguard/url-security/internal/domain/intel"
	"github.com/mehrguard/url-security/internal/ports"
)

const version = "1.1.0"

var (
	configFlag = cli.StringFlag{
		Name:  "config, c",
		Usage: "load static configuration from `FILE`",
		Value: "",
	}
	jsonFlag = cli.BoolFlag{
		Name:  "json, j",
		Usage: "print machine-readable JSON instead of tables",
	}
	calibrationFlag = cli.StringFlag{
		Name:  "calibration",
		Usage: "pin a specific risk calibration `VERSION`",
		Value: "",
	}
)

func main() {
	app := cli.NewApp()
	app.Name = "urlguard"
	app.Usage = "score URLs for phishing and malware risk"
	app.Version = version
	app.Commands = []cli.Command{
		scanCommand(),
		historyCommand(),
		checkIntelCommand(),
		showConfigCommand(),
		versionsCommand(),
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func scanCommand() cli.Command {
	return cli.Command{
		Name:      "scan",
		Usage:     "Score one or more URLs and print the assessment",
		ArgsUsage: "<url> [url...]",
		Flags: []cli.Flag{
			configFlag,
			jsonFlag,
			calibrationFlag,
			cli.BoolFlag{
				Name:  "save, s",
				Usage: "persist results to the configured scan history",
			},
			cli.BoolFlag{
				Name:  "explain, e",
				Usage: "include counterfactual hints for reducing the score",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return cli.NewExitError("specify at least one URL", 1)
			}
			env, err := buildEnv(c)
			if err != nil {
				return cli.NewExitError(err.Error(), 1)
			}
			defer env.close()

			ctx := context.Background()
			for _, raw := range c.Args() {
				record, err := env.service.Scan(ctx, raw, c.Bool("save"))
				if err != nil {
					env.log.WithError(err).Warn("scan history not updated")
				}
				if c.Bool("json") {
					if err := printJSON(record); err != nil {
						return cli.NewExitError(err.Error(), 1)
					}
					continue
				}
				printAssessment(record.Assessment)
				if c.Bool("explain") {
					fmt.Println(analysis.SummarizeHints(env.service.Explain(record.Assessment)))
					fmt.Println()
				}
			}
			return nil
		},
	}
}

func historyCommand() cli.Command {
	return cli.Command{
		Name:  "history",
		Usage: "Print recent scans from the configured history store",
		Flags: []cli.Flag{
			configFlag,
			jsonFlag,
			cli.IntFlag{
				Name:  "limit, n",
				Usage: "maximum number of rows",
				Value: 20,
			},
			cli.BoolFlag{
				Name:  "high-risk",
				Usage: "only show MALICIOUS and SUSPICIOUS scans, highest score first",
			},
		},
		Action: func(c *cli.Context) error {
			env, err := buildEnv(c)
			if err != nil {
				return cli.NewExitError(err.Error(), 1)
			}
			defer env.close()

			ctx := context.Background()
			fetch := env.service.History
			if c.Bool("high-risk") {
				fetch = env.service.HighRisk
			}
			records, err := fetch(ctx, c.Int("limit"))
			if err != nil {
				return cli.NewExitError(err.Error(), 1)
			}
			if c.Bool("json") {
				return printJSON(records)
			}
			printHistory(records)
			return nil
		},
	}
}

func checkIntelCommand() cli.Command {
	return cli.Command{
		Name:      "check-intel",
		Usage:     "Look up domains against the threat-intel deny list",
		ArgsUsage: "<domain> [domain...]",
		Flags:     []cli.Flag{configFlag, jsonFlag},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return cli.NewExitError("specify at least one domain", 1)
			}
			env, err := buildEnv(c)
			if err != nil {
				return cli.NewExitError(err.Error(), 1)
			}
			defer env.close()

			if c.Bool("json") {
				results := make([]intel.Result, 0, c.NArg())
				for _, d := range c.Args() {
					results = append(results, env.bundle.Lookup(d))
				}
				return printJSON(results)
			}
			printIntelResults(env.bundle, c.Args())
			return nil
		},
	}
}

func showConfigCommand() cli.Command {
	return cli.Command{
		Name:  "show-config",
		Usage: "Print the active risk calibration as JSON",
		Flags: []cli.Flag{configFlag, calibrationFlag},
		Action: func(c *cli.Context) error {
			env, err := buildEnv(c)
			if err != nil {
				return cli.NewExitError(err.Error(), 1)
			}
			defer env.close()

			data, err := env.analyzer.Config().ToJSON()
			if err != nil {
				return cli.NewExitError(err.Error(), 1)
			}
			fmt.Println(string(data))
			return nil
		},
	}
}

func versionsCommand() cli.Command {
	return cli.Command{
		Name:  "versions",
		Usage: "List all registered risk calibration versions",
		Action: func(c *cli.Context) error {
			latest := config.Latest().Version
			for _, v := range config.Versions() {
				if v == latest {
					fmt.Printf("%s (latest)\n", v)
				} else {
					fmt.Println(v)
				}
			}
			return nil
		},
	}
}

// env holds the wired-up pipeline shared by all commands
type env struct {
	service  *application.ScanService
	analyzer *analysis.Analyzer
	bundle   *intel.Bundle
	store    ports.AssessmentStore
	log      *logrus.Logger
}

func (e *env) close() {
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			e.log.WithError(err).Warn("failed to close store")
		}
	}
}

// buildEnv wires the analyzer, intel bundle, optional history store, and
// scan service from the static configuration and command-line overrides.
func buildEnv(c *cli.Context) (*env, error) {
	static, err := config.LoadStaticConfig(c.String("config"))
	if err != nil {
		return nil, err
	}
	if v := c.String("calibration"); v != "" {
		static.CalibrationVersion = v
	}

	log := logrus.New()
	log.SetOutput(os.Stderr)
	level, err := logrus.ParseLevel(static.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", static.LogLevel, err)
	}
	log.SetLevel(level)

	riskCfg, err := static.RiskConfigFor()
	if err != nil {
		return nil, err
	}

	bundle := intel.DefaultBundle()
	if static.IntelFeedPath != "" {
		bundle, err = intel.DefaultBundleWithExtra(static.IntelFeedPath)
		if err != nil {
			return nil, err
		}
	}

	var store ports.AssessmentStore
	if static.DatabaseURI != "" {
		pg, err := storage.NewPostgresStore(static.DatabaseURI)
		if err != nil {
			return nil, fmt.Errorf("connect to scan history: %w", err)
		}
		if err := pg.InitSchema(); err != nil {
			pg.Close()
			return nil, err
		}
		store = pg
	}

	analyzer := analysis.NewAnalyzer(riskCfg, bundle)
	return &env{
		service:  application.NewScanService(analyzer, store, log),
		analyzer: analyzer,
		bundle:   bundle,
		store:    store,
		log:      log,
	}, nil
}
