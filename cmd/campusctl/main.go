// Package main 实现运维命令行 campusctl：导入种子数据、执行查询、创建管理员。
package main

import (
	"errors"
	"fmt"
	"os"

	"campus-info-go/internal/config"
	"campus-info-go/internal/store"
	"campus-info-go/pkg/log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "campusctl",
	Short:         "Operator tooling for the campus information backend",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
		c, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = c
		log.Init(cfg.Log.Level, "console", "")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./configs/config.yaml", "path to config.yaml (empty: defaults and CAMPUS_* env only)")
	rootCmd.AddCommand(seedCmd, queryCmd, createAdminCmd)
}

// openStore 按配置打开存储，调用方负责 Close。
func openStore() (store.RecordStore, error) {
	return store.Open(cfg.Database)
}

func main() {
	defer log.Sync()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
