package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"eventlog/internal/client"
	"eventlog/internal/event/domain"
)

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func newRootCmd() *cobra.Command {
	var serverURL string
	var asJSON bool

	root := &cobra.Command{
		Use:           "eventctl",
		Short:         "Record events and read stats from an event log server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&serverURL, "server", getEnv("EVENTLOG_URL", "http://localhost:8080"), "Event log server URL")
	root.PersistentFlags().BoolVar(&asJSON, "json", false, "Print raw JSON instead of a table")

	api := func() *client.Client { return client.New(serverURL, nil) }

	root.AddCommand(
		newRecordCmd(api),
		&cobra.Command{
			Use:   "recent",
			Short: "List the 20 most recent events",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				events, err := api().Recent(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(cmd.OutOrStdout(), events)
				}
				return printTable(cmd.OutOrStdout(), []string{"OCCURRED AT", "SOURCE", "EVENT TYPE", "ID"}, func(row func(...any)) {
					for _, e := range events {
						row(formatTime(e.OccurredAt), deref(e.Source), deref(e.EventType), e.ID)
					}
				})
			},
		},
		&cobra.Command{
			Use:   "summary",
			Short: "Show total, today, active sources and top event",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := api().Summary(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(cmd.OutOrStdout(), s)
				}
				return printTable(cmd.OutOrStdout(), []string{"TOTAL", "TODAY", "SOURCES", "TOP EVENT"}, func(row func(...any)) {
					row(s.TotalEvents, s.EventsToday, s.ActiveSources, deref(s.TopEvent))
				})
			},
		},
		&cobra.Command{
			Use:   "daily",
			Short: "Show event counts per source per day",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				daily, err := api().Daily(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(cmd.OutOrStdout(), daily)
				}
				return printTable(cmd.OutOrStdout(), []string{"DAY", "SOURCE", "COUNT"}, func(row func(...any)) {
					for _, d := range daily {
						row(d.Day, d.Source, d.Count)
					}
				})
			},
		},
		&cobra.Command{
			Use:   "top",
			Short: "Rank event types by count",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				top, err := api().Top(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(cmd.OutOrStdout(), top)
				}
				return printTable(cmd.OutOrStdout(), []string{"EVENT TYPE", "COUNT"}, func(row func(...any)) {
					for _, c := range top {
						row(c.EventType, c.EventCount)
					}
				})
			},
		},
	)
	return root
}

func newRecordCmd(api func() *client.Client) *cobra.Command {
	var (
		source, eventType, metadata, occurredAt string
	)
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record one event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := domain.NewEvent{Source: &source, EventType: &eventType}
			if occurredAt == "" {
				occurredAt = time.Now().UTC().Format(time.RFC3339Nano)
			}
			in.OccurredAt = &occurredAt
			if metadata != "" {
				if !json.Valid([]byte(metadata)) {
					return fmt.Errorf("--metadata is not valid JSON")
				}
				in.Metadata = json.RawMessage(metadata)
			}
			e, err := api().Record(cmd.Context(), in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), e)
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "Event source (e.g. web)")
	cmd.Flags().StringVar(&eventType, "type", "", "Event type (e.g. click)")
	cmd.Flags().StringVar(&metadata, "metadata", "", "Metadata as a JSON document")
	cmd.Flags().StringVar(&occurredAt, "occurred-at", "", "Timestamp sent to the server as given; defaults to now in RFC 3339")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printTable(w io.Writer, header []string, rows func(row func(...any))) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, h := range header {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, h)
	}
	fmt.Fprintln(tw)
	rows(func(cols ...any) {
		for i, c := range cols {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, c)
		}
		fmt.Fprintln(tw)
	})
	return tw.Flush()
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}
