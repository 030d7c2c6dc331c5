package main

import (
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	serverURL string
	apiToken  string
	timeout   time.Duration
)

func main() {
	var root = &cobra.Command{
		Use:           "smartsearch",
		Short:         "Command line client for the smart search service",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&serverURL, "server", getenv("SMART_SEARCH_URL", "http://localhost:3000"), "REST server base URL")
	root.PersistentFlags().StringVar(&apiToken, "token", os.Getenv("SMART_SEARCH_TOKEN"), "bearer token when JWT_SECRET is set on the server")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "request timeout (0 = none)")

	root.AddCommand(searchCMD(), contextCMD(), eventsCMD())
	if err := root.Execute(); err != nil {
		color.Red("%v", err)
		os.Exit(1)
	}
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
