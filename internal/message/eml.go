package message

import (
	"fmt"

	"github.com/wneessen/go-mail"
)

// EMLWriter writes drafts as RFC 5322 .eml files with an HTML body, one
// file per draft. The files open as editable drafts in common mail
// clients.
type EMLWriter struct{}

func (EMLWriter) Write(draft *Draft, path string) error {
	m := mail.NewMsg()
	if draft.From != "" {
		if err := m.From(draft.From); err != nil {
			return fmt.Errorf("invalid sender %q: %w", draft.From, err)
		}
	}
	if len(draft.To) > 0 {
		if err := m.To(draft.To...); err != nil {
			return fmt.Errorf("invalid recipient list %v: %w", draft.To, err)
		}
	}
	if len(draft.Cc) > 0 {
		if err := m.Cc(draft.Cc...); err != nil {
			return fmt.Errorf("invalid cc list %v: %w", draft.Cc, err)
		}
	}
	m.Subject(draft.Subject)
	m.SetBodyString(mail.TypeTextHTML, draft.HTMLBody)
	for _, att := range draft.Attachments {
		m.AttachFile(att)
	}
	if err := m.WriteToFile(path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
