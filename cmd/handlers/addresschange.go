package handlers

import (
	"github.com/spf13/cobra"

	"mailmerge/internal/config"
	"mailmerge/internal/merge"
)

// NewAddressChangeCmd creates the grouped address change command
func NewAddressChangeCmd() *cobra.Command {
	var (
		marksExcel  string
		mailingList string
		template    string
		outputDir   string
		groupColumn string
		from        string
	)

	cmd := &cobra.Command{
		Use:   "address-change",
		Short: "Generate one address change email per country",
		Long: `Group the trademark list by country and generate one .eml draft per
country, with the template's first table refilled with that country's
marks.

Recipients come from the marks file when it carries addressing columns,
otherwise from the mailing list workbook. Countries without any To
address are skipped and counted.

Examples:
  mailmerge address-change

  mailmerge address-change --marks-excel "List of Marks.xlsx" \
    --mailing-list "메일링 리스트.xlsx" \
    --template Address_Change_Mail_Sample.docx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAddressChange(marksExcel, mailingList, template, outputDir, groupColumn, from)
		},
	}

	cmd.Flags().StringVar(&marksExcel, "marks-excel", "List of Marks.xlsx", "Excel file with the trademark list")
	cmd.Flags().StringVar(&mailingList, "mailing-list", "메일링 리스트.xlsx", "Excel file mapping country codes to recipients")
	cmd.Flags().StringVar(&template, "template", "Address_Change_Mail_Sample.docx", "Word template for the mail body")
	cmd.Flags().StringVar(&outputDir, "output", "output-address-change", "Directory for the generated drafts")
	cmd.Flags().StringVar(&groupColumn, "group-column", "", "Column that buckets rows into countries (default from config)")
	cmd.Flags().StringVar(&from, "from", "", "Sender address stamped on the drafts")

	return cmd
}

func runAddressChange(marksExcel, mailingList, template, outputDir, groupColumn, from string) error {
	cfg := config.Get()

	if groupColumn == "" {
		groupColumn = cfg.AddressChange.GroupColumn
	}
	if from == "" {
		from = cfg.Merge.FromAddress
	}

	_, err := merge.RunAddressChange(merge.AddressChangeOptions{
		MarksExcelPath:  marksExcel,
		MailingListPath: mailingList,
		TemplatePath:    template,
		OutputDir:       outputDir,
		GroupColumn:     groupColumn,
		TableColumns:    cfg.AddressChange.TableColumns,
		CellFontPt:      cfg.AddressChange.CellFontPt,
		From:            from,
		BaseDir:         cfg.App.BaseDir,
	})
	return err
}
