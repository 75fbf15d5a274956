package main

import (
	"flag"
	"net/http"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/mehrguard/url-security/internal/adapters/httpapi"
	"github.com/mehrguard/url-security/internal/adapters/storage"
	"github.com/mehrguard/url-security/internal/application"
	"github.com/mehrguard/url-security/internal/config"
	"github.com/mehrguard/url-security/internal/domain/analysis"
	"github.com/mehrguard/url-security/internal/domain/intel"
	"github.com/mehrguard/url-security/internal/ports"
)

func main() {
	configPath := flag.String("config", "", "path to static YAML configuration")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	static, err := config.LoadStaticConfig(*configPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}
	level, err := logrus.ParseLevel(static.LogLevel)
	if err != nil {
		log.WithError(err).Fatal("invalid log level")
	}
	log.SetLevel(level)

	riskCfg, err := static.RiskConfigFor()
	if err != nil {
		log.WithError(err).Fatal("failed to resolve risk calibration")
	}

	bundle := intel.DefaultBundle()
	if static.IntelFeedPath != "" {
		bundle, err = intel.DefaultBundleWithExtra(static.IntelFeedPath)
		if err != nil {
			log.WithError(err).Fatal("failed to load intel feed")
		}
	}

	var store ports.AssessmentStore
	if static.DatabaseURI != "" {
		pg, err := storage.NewPostgresStore(static.DatabaseURI)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to scan history")
		}
		defer pg.Close()
		if err := pg.InitSchema(); err != nil {
			log.WithError(err).Fatal("failed to initialize schema")
		}
		store = pg
	}

	analyzer := analysis.NewAnalyzer(riskCfg, bundle)
	service := application.NewScanService(analyzer, store, log)
	server := httpapi.New(service, log)

	log.WithFields(logrus.Fields{
		"addr":        static.ListenAddr,
		"calibration": riskCfg.Version,
		"intel_feed":  bundle.Version,
	}).Info("starting URL scanning API")

	if err := http.ListenAndServe(static.ListenAddr, server.Routes()); err != nil {
		log.WithError(err).Error("server stopped")
		os.Exit(1)
	}
}
