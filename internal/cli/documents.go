package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"docserver/internal/service"
	"docserver/internal/storage"
)

// readInput reads path, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

func extensionOf(path, override string) string {
	if override != "" {
		return override
	}
	return strings.TrimPrefix(filepath.Ext(path), ".")
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newPutCommand(env *environment) *cobra.Command {
	var (
		typeID      int64
		description string
		ext         string
	)

	cmd := &cobra.Command{
		Use:   "put <file|->",
		Short: "Store a new document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			md, err := env.openMetadata(cmd.Context())
			if err != nil {
				return err
			}
			defer md.close()

			docSvc, err := env.documentService(cmd.Context(), md)
			if err != nil {
				return err
			}
			doc, err := docSvc.StoreDocumentFirstTime(cmd.Context(), service.UploadRequest{
				DocumentTypeID:     typeID,
				Description:        description,
				FileExtension:      extensionOf(args[0], ext),
				FileInBase64Format: storage.EncodeTransfer(content),
			})
			if err != nil {
				return err
			}
			return printJSON(cmd, doc)
		},
	}

	cmd.Flags().Int64Var(&typeID, "type", 0, "document type id")
	cmd.Flags().StringVar(&description, "description", "", "document description")
	cmd.Flags().StringVar(&ext, "ext", "", "file extension (defaults to the input file's)")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func newReplaceCommand(env *environment) *cobra.Command {
	var (
		description string
		ext         string
	)

	cmd := &cobra.Command{
		Use:   "replace <document-id> <file|->",
		Short: "Replace the content of a document, keeping its id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readInput(cmd, args[1])
			if err != nil {
				return err
			}

			md, err := env.openMetadata(cmd.Context())
			if err != nil {
				return err
			}
			defer md.close()

			docSvc, err := env.documentService(cmd.Context(), md)
			if err != nil {
				return err
			}
			doc, err := docSvc.StoreReplacementDocument(cmd.Context(), service.ReplacementRequest{
				CurrentID:          args[0],
				Description:        description,
				FileExtension:      extensionOf(args[1], ext),
				FileInBase64Format: storage.EncodeTransfer(content),
			})
			if err != nil {
				return err
			}
			return printJSON(cmd, doc)
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "document description")
	cmd.Flags().StringVar(&ext, "ext", "", "file extension (defaults to the input file's)")
	return cmd
}

func newGetCommand(env *environment) *cobra.Command {
	var (
		out      string
		metaOnly bool
	)

	cmd := &cobra.Command{
		Use:   "get <document-id>",
		Short: "Read a document's content, or its metadata with --meta",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			md, err := env.openMetadata(cmd.Context())
			if err != nil {
				return err
			}
			defer md.close()

			docSvc, err := env.documentService(cmd.Context(), md)
			if err != nil {
				return err
			}

			if metaOnly {
				doc, err := docSvc.GetStoredDocument(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd, doc)
			}

			encoded, err := docSvc.ReadStoredDocument(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			content, err := storage.DecodeTransfer(encoded)
			if err != nil {
				return err
			}

			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(content)
				return err
			}
			if err := os.WriteFile(out, content, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "write content to this file instead of stdout")
	cmd.Flags().BoolVar(&metaOnly, "meta", false, "print metadata instead of content")
	return cmd
}
