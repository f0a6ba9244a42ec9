package handlers

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"mailmerge/internal/config"
	"mailmerge/internal/docx"
	"mailmerge/internal/placeholder"
)

// NewFieldsCmd creates the template inspection command
func NewFieldsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fields <template.docx>",
		Short: "List the placeholder fields a Word template expects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFields(args[0])
		},
	}
	return cmd
}

func runFields(templatePath string) error {
	cfg := config.Get()
	if cfg.App.BaseDir != "" {
		templatePath = resolveAgainst(cfg.App.BaseDir, templatePath)
	}

	doc, err := docx.Open(templatePath)
	if err != nil {
		return err
	}
	fields := placeholder.Collect(doc)
	if len(fields) == 0 {
		fmt.Println("No placeholder fields found.")
		return nil
	}
	for _, field := range fields {
		fmt.Printf("«%s»\n", field)
	}
	return nil
}

func resolveAgainst(base, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
