package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Lixing-Zhang/stall-backend/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "stall-server",
	Short: "Order-taking backend for a food stall",
	Long: `stall-server serves store menus, prices and records orders, validates coupons
and pushes menu availability changes to connected clients in real time.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(viper.GetViper(), cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return run(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")

	rootCmd.Flags().String("port", "", "HTTP port (overrides PORT)")
	rootCmd.Flags().String("log-level", "", "log level: debug, info, warn or error (overrides LOG_LEVEL)")
	rootCmd.Flags().String("database-url", "", "PostgreSQL connection string (overrides DATABASE_URL)")
	rootCmd.Flags().StringSlice("coupon-files", nil, "coupon definition files (overrides COUPON_FILES)")

	_ = viper.BindPFlag("server.port", rootCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("log_level", rootCmd.Flags().Lookup("log-level"))
	_ = viper.BindPFlag("database.url", rootCmd.Flags().Lookup("database-url"))
	_ = viper.BindPFlag("coupon.files", rootCmd.Flags().Lookup("coupon-files"))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
