package dom

import (
	"fmt"
	"sort"
	"strings"
)

// Selector matches elements by tag name and an attribute map. An empty Tag
// matches any element. The "class" attribute matches when the element carries
// every listed class, in any order.
type Selector struct {
	Tag   string
	Attrs map[string]string
}

func Tag(name string) Selector {
	return Selector{Tag: name}
}

func ByClass(tag, class string) Selector {
	return Selector{Tag: tag, Attrs: map[string]string{"class": class}}
}

func ByID(tag, id string) Selector {
	return Selector{Tag: tag, Attrs: map[string]string{"id": id}}
}

func ByAttr(tag, key, value string) Selector {
	return Selector{Tag: tag, Attrs: map[string]string{key: value}}
}

func (s Selector) IsZero() bool {
	return s.Tag == "" && len(s.Attrs) == 0
}

// CSS renders the selector for goquery.
func (s Selector) CSS() string {
	var sb strings.Builder
	if s.Tag == "" {
		sb.WriteString("*")
	} else {
		sb.WriteString(s.Tag)
	}

	keys := make([]string, 0, len(s.Attrs))
	for k := range s.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := s.Attrs[k]
		if k == "class" {
			for _, token := range strings.Fields(v) {
				fmt.Fprintf(&sb, "[class~=%q]", token)
			}
			continue
		}
		fmt.Fprintf(&sb, "[%s=%q]", k, v)
	}
	return sb.String()
}

func (s Selector) String() string {
	return s.CSS()
}
