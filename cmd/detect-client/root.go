package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

const Version = "1.0.0"

var (
	serverURL string
	feature   string
	outPath   string
	timeout   time.Duration
)

var rootCmd = &cobra.Command{
	Use:          "detect-client",
	Short:        "Upload media to a cascade-detect server and print what it found",
	Version:      Version,
	SilenceUsage: true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultServer() string {
	if s := os.Getenv("DETECT_SERVER"); s != "" {
		return s
	}
	return "http://localhost:8080"
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServer(), "base URL of the detection server (env DETECT_SERVER)")
	rootCmd.PersistentFlags().StringVarP(&feature, "feature", "f", "face", "detection category: face, pedestrian or vehicle")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Minute, "request timeout")
}
