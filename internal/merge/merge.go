// Package merge drives the two generation flows: one draft per
// spreadsheet row, and one draft per country group with a populated
// trademark table.
package merge

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"mailmerge/internal/core"
	"mailmerge/internal/docx"
	"mailmerge/internal/excel"
	"mailmerge/internal/logger"
	"mailmerge/internal/message"
	"mailmerge/internal/placeholder"
)

// DefaultSubjectTemplate is used when no subject template is configured.
const DefaultSubjectTemplate = "(«관리번호»«국가코드») New trademark application(s) in «국가명칭»"

// Options configures the per-row flow.
type Options struct {
	ExcelPath       string
	TemplatePath    string
	OutputDir       string
	ToField         string
	CCField         string
	AttachmentField string
	SubjectTemplate string
	From            string
	BaseDir         string
	Writer          message.Writer
}

// Run generates one draft per spreadsheet row: the template's «field»
// markers are rewritten once, then each row's values are substituted
// into a fresh copy. Rows without a To address still produce a draft;
// the address is simply left blank for the sender to fill in. A row
// whose conversion or write fails is logged, counted as skipped and
// does not stop the remaining rows.
func Run(opts Options) (core.Result, error) {
	var res core.Result

	if opts.ToField == "" {
		opts.ToField = "수신"
	}
	if opts.CCField == "" {
		opts.CCField = "참조"
	}
	if opts.AttachmentField == "" {
		opts.AttachmentField = "첨부파일"
	}
	if opts.Writer == nil {
		opts.Writer = message.EMLWriter{}
	}

	runID := uuid.NewString()

	excelPath := resolvePath(opts.BaseDir, opts.ExcelPath)
	templatePath := resolvePath(opts.BaseDir, opts.TemplatePath)
	outputDir := resolvePath(opts.BaseDir, opts.OutputDir)
	logger.Info("mail merge started", "run_id", runID, "excel", excelPath, "template", templatePath)

	if _, err := os.Stat(templatePath); os.IsNotExist(err) {
		return res, fmt.Errorf("%w: %s", core.ErrMissingFile, templatePath)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return res, fmt.Errorf("creating output directory: %w", err)
	}

	rows, err := excel.LoadRows(excelPath)
	if err != nil {
		return res, err
	}
	if len(rows) == 0 {
		return res, fmt.Errorf("%w: no data rows in %s", core.ErrFormat, excelPath)
	}

	template, err := docx.Open(templatePath)
	if err != nil {
		return res, fmt.Errorf("%w: %v", core.ErrFormat, err)
	}
	available := placeholder.Collect(template)

	subjectTemplate := opts.SubjectTemplate
	if subjectTemplate == "" {
		subjectTemplate = DefaultSubjectTemplate
	}
	subjectTemplate = placeholder.NormalizeMarkers(subjectTemplate)

	allFields := unionSorted(available, placeholder.Fields(subjectTemplate))
	warnEmptyFields(allFields, rows)

	scratch, err := os.MkdirTemp("", "mailmerge-*")
	if err != nil {
		return res, fmt.Errorf("creating scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	placeholder.RewriteDocument(template)
	template.ReplaceHeader("---", "Subject: {{ subject }}")
	prepared := filepath.Join(scratch, "mail_template.docx")
	if err := template.Save(prepared); err != nil {
		return res, err
	}

	for i, row := range rows {
		index := i + 1

		ctx := make(map[string]string, len(allFields)+1)
		for _, field := range allFields {
			ctx[field] = row[field]
		}
		subject := subjectTemplate
		for field, value := range ctx {
			subject = strings.ReplaceAll(subject, "«"+field+"»", value)
			subject = strings.ReplaceAll(subject, "<<"+field+">>", value)
		}
		ctx["subject"] = subject

		doc, err := docx.Open(prepared)
		if err != nil {
			logger.Error("skipping row", fmt.Errorf("%w: reopening prepared template: %v", core.ErrConversion, err), "row", index)
			res.Skipped++
			continue
		}
		placeholder.Substitute(doc, ctx)

		draft := message.FromDocument(doc, ctx)
		draft.From = opts.From
		draft.To = message.SplitAddressList(row[opts.ToField])
		draft.Cc = message.SplitAddressList(row[opts.CCField])
		draft.Attachments = resolveAttachments(row[opts.AttachmentField], opts.BaseDir)

		name := SanitizeFilename(subject, subject, index)
		path := filepath.Join(outputDir, name+".eml")
		if err := opts.Writer.Write(draft, path); err != nil {
			logger.Error("skipping row", fmt.Errorf("%w: %v", core.ErrConversion, err), "row", index, "file", path)
			res.Skipped++
			continue
		}
		res.Generated++
		logger.Info("draft written", "file", path, "to", row[opts.ToField])
	}

	logger.Info("mail merge finished", "run_id", runID, "generated", res.Generated, "skipped", res.Skipped, "output", outputDir)
	return res, nil
}

func resolvePath(base, path string) string {
	if path == "" || filepath.IsAbs(path) || base == "" {
		return path
	}
	return filepath.Join(base, path)
}

// resolveAttachments splits a semicolon-separated attachment cell and
// keeps the paths that exist, resolved against the base directory.
func resolveAttachments(cell, baseDir string) []string {
	var out []string
	for _, part := range strings.Split(cell, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		path := resolvePath(baseDir, part)
		if _, err := os.Stat(path); err != nil {
			logger.Warn("attachment not found", "path", path)
			continue
		}
		out = append(out, path)
	}
	return out
}

func unionSorted(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	for _, s := range a {
		seen[s] = true
	}
	for _, s := range b {
		seen[s] = true
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// warnEmptyFields flags template fields that no spreadsheet row fills,
// which usually means a column header was renamed.
func warnEmptyFields(fields []string, rows []core.Row) {
	var missing []string
	for _, field := range fields {
		filled := false
		for _, row := range rows {
			if row[field] != "" {
				filled = true
				break
			}
		}
		if !filled {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		logger.Warn("fields empty in every spreadsheet row", "fields", strings.Join(missing, ", "))
	}
}
