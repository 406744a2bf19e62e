package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/underwriter/pkg/cli"
	"mercator-hq/underwriter/pkg/document"
)

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "Manage stored loan documents",
	Long: `Manage the source documents held in the configured document store.

Stored loans can be evaluated with "underwriter evaluate --loan" or through
POST /loans/{loanID}/evaluate.`,
}

var documentsPutCmd = &cobra.Command{
	Use:   "put LOAN_ID SOURCE FILE",
	Short: "Store a source document",
	Long: `Store FILE as the SOURCE document of LOAN_ID, replacing any previous
version. SOURCE is one of los, title, appraisal, credit_report, drive_report.

Example:
  underwriter documents put L-1001 appraisal appraisal.json`,
	Args: cobra.ExactArgs(3),
	RunE: putDocument,
}

var documentsGetCmd = &cobra.Command{
	Use:   "get LOAN_ID SOURCE",
	Short: "Print a stored source document",
	Args:  cobra.ExactArgs(2),
	RunE:  getDocument,
}

var documentsDeleteCmd = &cobra.Command{
	Use:   "delete LOAN_ID",
	Short: "Delete every document of a loan",
	Args:  cobra.ExactArgs(1),
	RunE:  deleteDocuments,
}

func init() {
	rootCmd.AddCommand(documentsCmd)
	documentsCmd.AddCommand(documentsPutCmd, documentsGetCmd, documentsDeleteCmd)
}

func putDocument(cmd *cobra.Command, args []string) error {
	loanID, file := args[0], args[2]
	source, err := document.ParseSource(args[1])
	if err != nil {
		return err
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	var doc document.Value
	if err := doc.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("parse %s: %w", file, err)
	}
	if doc.Kind() != document.KindMapping {
		return fmt.Errorf("%s: %s document must be a JSON object", file, source)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := openDocumentStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Put(cmd.Context(), loanID, source, doc); err != nil {
		return cli.NewCommandError("documents put", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Stored %s document for loan %s\n", source, loanID)
	return nil
}

func getDocument(cmd *cobra.Command, args []string) error {
	source, err := document.ParseSource(args[1])
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := openDocumentStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	doc, err := store.Get(cmd.Context(), args[0], source)
	if err != nil {
		return cli.NewCommandError("documents get", err)
	}
	return (&cli.JSONFormatter{Indent: true}).FormatTo(cmd.OutOrStdout(), doc)
}

func deleteDocuments(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := openDocumentStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Delete(cmd.Context(), args[0]); err != nil {
		return cli.NewCommandError("documents delete", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted documents for loan %s\n", args[0])
	return nil
}
