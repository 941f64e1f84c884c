package requests

import (
	"net/url"
	"sort"
	"strings"
)

// Form is an application/x-www-form-urlencoded body. List values travel as a
// single comma-joined field ("nfts=a,b,c"), not as repeated keys, and the
// comma is written literally.
type Form struct {
	fields map[string]string
	lists  map[string][]string
}

func NewForm() *Form {
	return &Form{
		fields: make(map[string]string),
		lists:  make(map[string][]string),
	}
}

func (f *Form) Set(key, value string) *Form {
	f.fields[key] = value
	return f
}

func (f *Form) SetList(key string, values []string) *Form {
	f.lists[key] = append([]string(nil), values...)
	return f
}

func (f *Form) Empty() bool {
	return f == nil || len(f.fields)+len(f.lists) == 0
}

// Encode writes keys in sorted order so bodies are stable.
func (f *Form) Encode() string {
	if f.Empty() {
		return ""
	}

	keys := make([]string, 0, len(f.fields)+len(f.lists))
	for k := range f.fields {
		keys = append(keys, k)
	}
	for k := range f.lists {
		if _, dup := f.fields[k]; !dup {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		if list, ok := f.lists[k]; ok {
			for j, v := range list {
				if j > 0 {
					b.WriteByte(',')
				}
				b.WriteString(url.QueryEscape(v))
			}
			continue
		}
		b.WriteString(url.QueryEscape(f.fields[k]))
	}
	return b.String()
}

// SplitList parses a comma-joined list field. Empty input yields an empty list.
func SplitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" && p != "null" {
			out = append(out, p)
		}
	}
	return out
}
