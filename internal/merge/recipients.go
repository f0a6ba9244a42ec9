package merge

import (
	"fmt"

	"mailmerge/internal/core"
)

// Recipient carries the resolved addressing for one country group.
type Recipient struct {
	To          string
	CC          string
	CountryName string
	OurRef      string
	From        string
}

// ResolveRecipient determines who receives a group's mail. Addressing
// columns in the spreadsheet itself win; the mailing-list mapping fills
// in whatever is missing; the group key is the last-resort country name.
// Korean column names are tried before their English alternates.
func ResolveRecipient(key string, first core.Row, mapping map[string]core.RecipientInfo) (Recipient, error) {
	r := Recipient{
		To:          first.First("수신", "To"),
		CC:          first.First("참조", "CC"),
		CountryName: first.First("국가명칭", "Country Name", "Country"),
		OurRef:      first.First("Our. Ref.", "참조번호"),
	}
	if r.OurRef == "" {
		r.OurRef = "Our. Ref."
	}

	if r.To == "" {
		info, ok := mapping[key]
		if !ok {
			return Recipient{}, fmt.Errorf("%w: no addressing for group %q", core.ErrNoRecipient, key)
		}
		r.To = info.To
		if r.CC == "" {
			r.CC = info.CC
		}
		if r.CountryName == "" {
			r.CountryName = info.CountryName
		}
		r.From = info.From
	}
	if r.CountryName == "" {
		r.CountryName = key
	}
	if r.To == "" {
		return Recipient{}, fmt.Errorf("%w: no To address for group %q", core.ErrNoRecipient, key)
	}
	return r, nil
}
