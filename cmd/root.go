package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/nmvu/pagerisk/internal/shared/constants"
)

var cfgFile string
var logger *zap.SugaredLogger
var resultsDir string

var rootCmd = &cobra.Command{
	Use:   "pagerisk",
	Short: "Derive a risk and capability profile for a web page (policy-gated, read-only checks)",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// init config
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
		} else {
			viper.AddConfigPath("$HOME")
			viper.SetConfigName(".pagerisk")
			viper.SetConfigType("yaml")
		}

		_ = viper.ReadInConfig()
		if resultsDir == "" {
			resultsDir = viper.GetString("results_dir")
		}
		if resultsDir == "" {
			resultsDir = "./results"
		}

		if err := os.MkdirAll(resultsDir, constants.DefaultDirPerm); err != nil {
			return fmt.Errorf("failed to create results directory: %s", err.Error())
		}

		// init logger
		l, _ := zap.NewProduction()
		logger = l.Sugar()

		// Make final resultsDir absolute (for clarity in logs)
		if abs, err := filepath.Abs(resultsDir); err == nil {
			resultsDir = abs
		}

		applyConfigDefaults(cmd)

		logger.Infof("results_dir=%s", resultsDir)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.pagerisk.yaml)")
	rootCmd.PersistentFlags().StringVar(&resultsDir, "results-dir", "", "directory for scan result files (default ./results)")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(versionCmd)
}

// configFlagKeys maps scan flags to their config file keys.
var configFlagKeys = map[string]string{
	"timeout":         "defaults.timeout_secs",
	"ethical":         "defaults.ethical_mode",
	"site-type":       "defaults.site_type",
	"subdomain-limit": "scan.subdomain_limit",
}

// applyConfigDefaults merges config file defaults into flag values the user
// did not explicitly override. Config defaults only target scan flags today.
func applyConfigDefaults(_ *cobra.Command) {
	scanCmd.Flags().VisitAll(func(f *pflag.Flag) {
		key, ok := configFlagKeys[f.Name]
		if !ok || f.Changed || !viper.IsSet(key) {
			return
		}
		_ = f.Value.Set(viper.GetString(key))
	})
}
