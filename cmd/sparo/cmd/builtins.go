package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/msto63/sparo/internal/command"
	"github.com/msto63/sparo/internal/telemetry"
	"github.com/msto63/sparo/internal/terminal"
	"github.com/msto63/sparo/pkg/core/config"
	sperrors "github.com/msto63/sparo/pkg/core/errors"
)

// commandsCommand lists the registered commands
func commandsCommand(infos *command.Infos, term *terminal.Terminal) command.Descriptor {
	return command.Descriptor{
		Pattern:     "commands",
		Description: "List available commands",
		Options: func(schema command.Schema) {
			schema.Flags().Bool("json", false, "Print the list as JSON")
		},
		Handler: func(ctx context.Context, args command.Args, out command.Output) error {
			all := infos.All()

			if asJSON, _ := args.Flags.GetBool("json"); asJSON {
				data, err := json.Marshal(all)
				if err != nil {
					return sperrors.Wrap(err, "failed to encode command list").
						WithCode(sperrors.CodeInternal).
						WithOperation("commands")
				}
				out.WriteLine(string(data))
				return nil
			}

			width := 0
			for _, info := range all {
				if len(info.Name) > width {
					width = len(info.Name)
				}
			}
			for _, info := range all {
				name := lipgloss.NewStyle().Width(width).Render(info.Name)
				out.WriteLine(fmt.Sprintf("  %s  %s", term.Highlight(name), info.Description))
			}
			return nil
		},
	}
}

// telemetryCommand inspects and prunes stored telemetry
func telemetryCommand(store telemetry.Store, reporter command.InternalErrorReporter, retention time.Duration) command.Descriptor {
	return command.Descriptor{
		Pattern:     "telemetry <action>",
		Description: "Show or prune recorded telemetry (actions: show, prune)",
		Options: func(schema command.Schema) {
			schema.Flags().Int("limit", 20, "Number of records to show")
			schema.Flags().Duration("older-than", retention, "Prune records older than this")
		},
		Handler: func(ctx context.Context, args command.Args, out command.Output) error {
			action := args.Get("action")
			if store == nil {
				return sperrors.New("telemetry is disabled").
					WithCode(sperrors.CodeCommandFailed).
					WithOperation("telemetry " + action)
			}

			switch action {
			case "show":
				limit, _ := args.Flags.GetInt("limit")
				return showTelemetry(ctx, store, reporter, limit, out)
			case "prune":
				olderThan, _ := args.Flags.GetDuration("older-than")
				n, err := store.Prune(ctx, olderThan)
				if err != nil {
					return err
				}
				out.WriteLine(fmt.Sprintf("Pruned %d record(s)", n))
				return nil
			default:
				return sperrors.Newf("unknown telemetry action %q", action).
					WithCode(sperrors.CodeInvalidInput).
					WithOperation("telemetry")
			}
		},
	}
}

func showTelemetry(ctx context.Context, store telemetry.Store, reporter command.InternalErrorReporter, limit int, out command.Output) error {
	records, err := store.Recent(ctx, limit)
	if err != nil {
		if !errors.Is(err, telemetry.ErrCorruptRecord) {
			return err
		}
		// a damaged store is not the user's fault; keep going but leave
		// this invocation out of the telemetry
		reporter.SetHasInternalError()
		out.WriteVerboseLine(err.Error())
	}

	if len(records) == 0 {
		out.WriteLine("No telemetry recorded.")
		return nil
	}

	for _, r := range records {
		start := time.UnixMilli(r.StartTimestampMs).Format(time.RFC3339)
		out.WriteLine(fmt.Sprintf("%s  %-12s %7.2fs  %s",
			start, r.CommandName, r.DurationInSeconds, strings.Join(r.Args, " ")))
	}
	return nil
}

// configCommand prints the effective configuration
func configCommand(cfg *config.Config) command.Descriptor {
	return command.Descriptor{
		Pattern:     "config [format]",
		Description: "Print the effective configuration (toml or yaml)",
		Handler: func(ctx context.Context, args command.Args, out command.Output) error {
			format := args.Get("format")
			if format == "" {
				format = config.FormatTOML
			}

			var buf strings.Builder
			if err := cfg.Encode(&buf, format); err != nil {
				return err
			}
			for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
				out.WriteLine(line)
			}
			return nil
		},
	}
}
