// SNOOZE WEB - Tablón de historias estilo Hack or Snooze
// =====================================================
//
// CARACTERÍSTICAS:
// - Página renderizada en el servidor con fragmentos HTMX
// - Sesiones firmadas con JWT
// - Historias, favoritos y borrado contra el servicio remoto
// - Importación de historias desde feeds RSS/Atom
// - Métricas Prometheus en /metrics

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"snooze-web/internal/config"
)

type rootOptions struct {
	configPath string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "snooze-web",
		Short:         "Tablón de historias Hack or Snooze",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "ruta del fichero YAML (por defecto SNOOZE_CONFIG_PATH)")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newStoriesCommand(opts))
	return cmd
}

func (o *rootOptions) load() (*config.Config, error) {
	if o.configPath != "" {
		return config.LoadFromFile(o.configPath)
	}
	return config.Load()
}

func initLogger(cfg config.LogConfig) *zap.Logger {
	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.EncoderConfig.TimeKey = "timestamp"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zcfg.EncoderConfig.StacktraceKey = ""

	if level, err := zapcore.ParseLevel(cfg.Level); err == nil {
		zcfg.Level = zap.NewAtomicLevelAt(level)
	}

	logger, err := zcfg.Build()
	if err != nil {
		log.Fatal("Error inicializando logger:", err)
	}

	return logger
}
