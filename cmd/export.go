package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/iksnae/manoj-chat/internal"
	"github.com/iksnae/manoj-chat/internal/export"
	"github.com/spf13/cobra"
)

var (
	format       string
	outputDir    string
	exportChatID int64
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a conversation to file",
	Long: `Export a conversation to one of jsonl, md, yaml or json.

By default the local conversation is exported. Use --chat to export one of
your server-side conversations instead ('manoj-chat conversations' lists them).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		exporter, err := export.NewExporter(format)
		if err != nil {
			return err
		}

		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		ctx := cmd.Context()
		var transcript *internal.Transcript
		if exportChatID != 0 {
			key, err := a.identityKey()
			if err != nil {
				return err
			}
			messages, err := a.gateway.FetchMessages(ctx, exportChatID, key)
			if err != nil {
				return fmt.Errorf("failed to load conversation %d: %w", exportChatID, err)
			}
			transcript = &internal.Transcript{
				ID:       strconv.FormatInt(exportChatID, 10),
				Title:    fmt.Sprintf("Conversation %d", exportChatID),
				Source:   "remote",
				Messages: messages,
			}
		} else {
			messages, ok := a.store.Load(ctx)
			if !ok {
				return errors.New("no local history to export")
			}
			transcript = &internal.Transcript{
				ID:       "local",
				Title:    "Manoj Chat",
				Source:   "local",
				Messages: messages,
			}
		}
		transcript.ExportedAt = time.Now().UTC()

		// Ensure output directory exists
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		path := filepath.Join(outputDir, fmt.Sprintf("chat_%s.%s", transcript.ID, exporter.Extension()))
		err = internal.ShowProgress(ctx, fmt.Sprintf("Exporting %d message(s) to %s", len(transcript.Messages), path), func() error {
			return writeTranscript(exporter, transcript, path)
		})
		if err != nil {
			return err
		}

		internal.PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Export complete: %s", path))
		return nil
	},
}

func writeTranscript(exporter export.Exporter, transcript *internal.Transcript, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return &internal.ExportError{Format: format, Path: path, Err: err}
	}
	if err := exporter.Export(transcript, file); err != nil {
		_ = file.Close()
		return &internal.ExportError{Format: format, Path: path, Err: err}
	}
	if err := file.Close(); err != nil {
		return &internal.ExportError{Format: format, Path: path, Err: err}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&format, "format", "f", "jsonl", "Export format (jsonl, md, yaml, json)")
	exportCmd.Flags().StringVarP(&outputDir, "out", "o", "./exports", "Output directory")
	exportCmd.Flags().Int64Var(&exportChatID, "chat", 0, "Export this server-side conversation instead of local history")
}
