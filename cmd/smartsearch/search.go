package main

import (
	"fmt"
	"strings"

	"smart-search-be/internal/dto"
	"smart-search-be/pkg/preference"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func searchCMD() *cobra.Command {
	var (
		sessionId string
		stream    bool
		academic  bool
		pdf       bool
		timeRange string
		language  string
		sites     []string
	)

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Run a smart search turn",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := dto.SmartSearchRequest{
				SessionId: sessionId,
				Query:     strings.Join(args, " "),
				Request:   preference.Request{ExtraSites: sites},
			}
			// only send the flags the user actually set, so the server still infers the rest
			if cmd.Flags().Changed("academic") {
				req.PreferAcademic = &academic
			}
			if cmd.Flags().Changed("pdf") {
				req.FiletypePdf = &pdf
			}
			if timeRange != "" {
				req.TimeRange = &timeRange
			}
			if language != "" {
				req.TargetLanguage = &language
			}

			ctx, cancel := timeoutContext(cmd.Context(), timeout)
			defer cancel()
			client := newAPIClient(serverURL, apiToken)

			var (
				resp *dto.SmartSearchResponse
				err  error
			)
			if stream {
				resp, err = client.SearchStream(ctx, req, printEvent)
			} else {
				resp, err = client.Search(ctx, req)
			}
			if err != nil {
				return err
			}
			printResult(resp)
			return nil
		},
	}

	cmd.Flags().StringVarP(&sessionId, "session", "s", "cli", "session id")
	cmd.Flags().BoolVar(&stream, "stream", false, "show pipeline progress")
	cmd.Flags().BoolVar(&academic, "academic", false, "prefer academic sources")
	cmd.Flags().BoolVar(&pdf, "pdf", false, "restrict to PDF files")
	cmd.Flags().StringVar(&timeRange, "time-range", "", "d, w, m or y")
	cmd.Flags().StringVar(&language, "lang", "", "summary language")
	cmd.Flags().StringSliceVar(&sites, "site", nil, "extra site to search (repeatable)")
	return cmd
}

func printEvent(ev dto.SearchEvent) {
	line := fmt.Sprintf("[%3d%%] %-18s %s", ev.Progress, ev.Event, ev.Message)
	switch ev.Level {
	case "error":
		color.Red("%s", line)
	case "warning":
		color.Yellow("%s", line)
	case "debug":
		color.HiBlack("%s", line)
	default:
		color.Cyan("%s", line)
	}
}

func printResult(resp *dto.SmartSearchResponse) {
	if resp == nil {
		return
	}
	if resp.RewrittenQuery != nil {
		color.Yellow("Rewritten: %s", *resp.RewrittenQuery)
	}
	color.Green("Query used: %s", resp.UsedQuery)
	fmt.Println()
	if resp.Summary != nil {
		fmt.Println(*resp.Summary)
	} else {
		color.Red("No summary")
	}
	fmt.Println()
	for i, u := range resp.StateMeta.LatestTopUrls {
		color.Cyan("%d. %s", i+1, u)
	}
	color.HiBlack("session %s, turn %d, search %d ms",
		resp.StateMeta.SessionId, resp.StateMeta.TurnCount, resp.StateMeta.LatencyMs)
}
