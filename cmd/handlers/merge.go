package handlers

import (
	"github.com/spf13/cobra"

	"mailmerge/internal/config"
	"mailmerge/internal/merge"
)

// NewMergeCmd creates the per-row mail merge command
func NewMergeCmd() *cobra.Command {
	var (
		excelPath       string
		templatePath    string
		outputDir       string
		toField         string
		ccField         string
		attachmentField string
		subjectTemplate string
		from            string
	)

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Generate one email draft per spreadsheet row",
		Long: `Generate one .eml draft per data row of the spreadsheet's active sheet.

Each «field» placeholder in the Word template is replaced with the row's
value for the column of the same name. The To and CC addresses come from
the row itself, and a column of semicolon-separated paths can attach
files to the draft.

Examples:
  # defaults match the conventional file names
  mailmerge merge

  # explicit inputs
  mailmerge merge --excel Filing_Merge.xlsx --template Filing.docx --output output-msg

  # override the subject line template
  mailmerge merge --subject-template "Update <<관리번호>> enclosed"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(excelPath, templatePath, outputDir, toField, ccField,
				attachmentField, subjectTemplate, from)
		},
	}

	cmd.Flags().StringVar(&excelPath, "excel", "Filing_Merge.xlsx", "Excel file holding the merge data")
	cmd.Flags().StringVar(&templatePath, "template", "Filing.docx", "Word template for the mail body")
	cmd.Flags().StringVar(&outputDir, "output", "output-msg", "Directory for the generated drafts")
	cmd.Flags().StringVar(&toField, "to-field", "", "Column holding the To addresses (default from config)")
	cmd.Flags().StringVar(&ccField, "cc-field", "", "Column holding the CC addresses (default from config)")
	cmd.Flags().StringVar(&attachmentField, "attachment-field", "", "Column holding semicolon-separated attachment paths (default from config)")
	cmd.Flags().StringVar(&subjectTemplate, "subject-template", "", "Subject template overriding the configured one")
	cmd.Flags().StringVar(&from, "from", "", "Sender address stamped on the drafts")

	return cmd
}

func runMerge(excelPath, templatePath, outputDir, toField, ccField, attachmentField, subjectTemplate, from string) error {
	cfg := config.Get()

	if toField == "" {
		toField = cfg.Merge.ToField
	}
	if ccField == "" {
		ccField = cfg.Merge.CCField
	}
	if attachmentField == "" {
		attachmentField = cfg.Merge.AttachmentField
	}
	if subjectTemplate == "" {
		subjectTemplate = cfg.Merge.SubjectTemplate
	}
	if from == "" {
		from = cfg.Merge.FromAddress
	}

	_, err := merge.Run(merge.Options{
		ExcelPath:       excelPath,
		TemplatePath:    templatePath,
		OutputDir:       outputDir,
		ToField:         toField,
		CCField:         ccField,
		AttachmentField: attachmentField,
		SubjectTemplate: subjectTemplate,
		From:            from,
		BaseDir:         cfg.App.BaseDir,
	})
	return err
}
