package domain

import (
	"strconv"
	"strings"
)

// ListKind marks a text line as plain, bulleted or numbered.
type ListKind string

const (
	ListNone     ListKind = ""
	ListBullet   ListKind = "bullet"
	ListNumbered ListKind = "numbered"
)

const BulletPrefix = "• "

// Lines splits the object's raw text into lines.
func (o *Object) Lines() []string {
	return strings.Split(o.Text, "\n")
}

// LineList returns the list kind of line i.
func (o *Object) LineList(i int) ListKind {
	if i < 0 || i >= len(o.LineLists) {
		return ListNone
	}
	return o.LineLists[i]
}

// SetAllLines sets every line of the object to kind k. ListNone clears the metadata.
func (o *Object) SetAllLines(k ListKind) {
	if k == ListNone {
		o.LineLists = nil
		return
	}
	n := len(o.Lines())
	o.LineLists = make([]ListKind, n)
	for i := range o.LineLists {
		o.LineLists[i] = k
	}
}

// DisplayLines returns the text lines with list prefixes applied. Empty lines
// never receive a prefix; numbered lines count from their line position.
func (o *Object) DisplayLines() []string {
	lines := o.Lines()
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = line
		if strings.TrimSpace(line) == "" {
			continue
		}
		switch o.LineList(i) {
		case ListBullet:
			out[i] = BulletPrefix + line
		case ListNumbered:
			out[i] = strconv.Itoa(i+1) + ". " + line
		}
	}
	return out
}

// DisplayText joins DisplayLines with newlines.
func (o *Object) DisplayText() string {
	return strings.Join(o.DisplayLines(), "\n")
}
