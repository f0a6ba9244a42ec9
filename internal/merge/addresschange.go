package merge

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"mailmerge/internal/core"
	"mailmerge/internal/docx"
	"mailmerge/internal/excel"
	"mailmerge/internal/logger"
	"mailmerge/internal/message"
)

// AddressChangeOptions configures the grouped per-country flow.
type AddressChangeOptions struct {
	MarksExcelPath  string
	MailingListPath string
	TemplatePath    string
	OutputDir       string
	GroupColumn     string
	TableColumns    []string
	CellFontPt      int
	From            string
	BaseDir         string
	Writer          message.Writer
}

// RunAddressChange generates one draft per country group. The template's
// first table is emptied down to its header row and refilled with the
// group's records, the page header gets the subject front matter, and
// the result is converted to a draft. Groups without a resolvable To
// address are skipped and counted, never fatal.
func RunAddressChange(opts AddressChangeOptions) (core.Result, error) {
	var res core.Result

	if opts.GroupColumn == "" {
		opts.GroupColumn = "Country Code"
	}
	if len(opts.TableColumns) == 0 {
		opts.TableColumns = []string{"Mark", "Class", "Appl. Date", "Appl. No.", "Reg. Date", "Reg. No."}
	}
	if opts.CellFontPt == 0 {
		opts.CellFontPt = 10
	}
	if opts.Writer == nil {
		opts.Writer = message.EMLWriter{}
	}

	runID := uuid.NewString()

	marksPath := resolvePath(opts.BaseDir, opts.MarksExcelPath)
	mailingPath := resolvePath(opts.BaseDir, opts.MailingListPath)
	templatePath := resolvePath(opts.BaseDir, opts.TemplatePath)
	outputDir := resolvePath(opts.BaseDir, opts.OutputDir)

	logger.Info("address change merge started", "run_id", runID, "marks", marksPath, "template", templatePath)

	if _, err := os.Stat(templatePath); os.IsNotExist(err) {
		return res, fmt.Errorf("%w: %s", core.ErrMissingFile, templatePath)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return res, fmt.Errorf("creating output directory: %w", err)
	}

	grouped, err := excel.LoadGrouped(marksPath, opts.GroupColumn)
	if err != nil {
		return res, err
	}
	logger.Info("trademark data loaded", "groups", grouped.Len(), "marks", grouped.Rows())

	mapping := map[string]core.RecipientInfo{}
	if _, err := os.Stat(mailingPath); err == nil {
		mapping, err = excel.LoadRecipientMapping(mailingPath)
		if err != nil {
			return res, err
		}
		logger.Info("recipient mapping loaded", "entries", len(mapping))
	} else {
		logger.Info("mailing list not found, using addressing from marks file only", "path", mailingPath)
	}

	// the table requirement is structural, fail before any group runs
	probe, err := docx.Open(templatePath)
	if err != nil {
		return res, fmt.Errorf("%w: %v", core.ErrFormat, err)
	}
	if len(probe.Tables()) == 0 {
		return res, fmt.Errorf("%w: %s", core.ErrNoTable, templatePath)
	}

	scratch, err := os.MkdirTemp("", "mailmerge-*")
	if err != nil {
		return res, fmt.Errorf("creating scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	for index, key := range grouped.SortedKeys() {
		rows := grouped.Get(key)
		logger.Info("processing group", "group", key, "marks", len(rows))

		rec, err := ResolveRecipient(key, rows[0], mapping)
		if err != nil {
			logger.Warn("skipping group without recipient", "group", key)
			res.Skipped++
			continue
		}

		subject := fmt.Sprintf("(%s)  Inquiry regarding Recordal of Change of Address (%s)", rec.OurRef, rec.CountryName)

		prepared, err := prepareGroupTemplate(templatePath, scratch, key, subject, rows, opts)
		if err != nil {
			return res, err
		}
		doc, err := docx.Open(prepared)
		if err != nil {
			return res, fmt.Errorf("%w: reopening prepared template: %v", core.ErrConversion, err)
		}

		draft := message.FromDocument(doc, nil)
		draft.Subject = subject
		draft.From = opts.From
		if draft.From == "" {
			draft.From = rec.From
		}
		draft.To = message.SplitAddressList(rec.To)
		draft.Cc = message.SplitAddressList(rec.CC)

		name := SanitizeFilename(fmt.Sprintf("%s_%s_AddressChange", key, rec.CountryName), key, index+1)
		path := filepath.Join(outputDir, name+".eml")
		if err := opts.Writer.Write(draft, path); err != nil {
			logger.Error("failed to write draft", err, "group", key)
			res.Skipped++
			continue
		}
		res.Generated++
		logger.Info("draft written", "file", path, "group", key)
	}

	logger.Info("address change merge finished", "run_id", runID, "generated", res.Generated, "skipped", res.Skipped, "output", outputDir)
	return res, nil
}

// prepareGroupTemplate fills the template's first table with the group's
// records and stamps the subject into the page header, saving the result
// as a scratch document.
func prepareGroupTemplate(templatePath, scratch, key, subject string, rows []core.Row, opts AddressChangeOptions) (string, error) {
	doc, err := docx.Open(templatePath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrFormat, err)
	}
	tables := doc.Tables()
	if len(tables) == 0 {
		return "", fmt.Errorf("%w: %s", core.ErrNoTable, templatePath)
	}

	table := tables[0]
	table.TrimRows(1)
	for _, row := range rows {
		values := make([]string, len(opts.TableColumns))
		for i, column := range opts.TableColumns {
			values[i] = row[column]
		}
		if err := table.AppendRow(values, opts.CellFontPt); err != nil {
			return "", fmt.Errorf("%w: %v", core.ErrNoTable, err)
		}
	}

	escaped := strings.ReplaceAll(subject, `"`, `\"`)
	doc.ReplaceHeader("---", `Subject: "`+escaped+`"`)

	prepared := filepath.Join(scratch, fmt.Sprintf("template_%s.docx", SanitizeFilename(key, key, 1)))
	if err := doc.Save(prepared); err != nil {
		return "", err
	}
	return prepared, nil
}
