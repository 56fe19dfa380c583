package service

import (
	"crypto/md5"
	"encoding/hex"
	"strings"

	"github.com/jjenkins/globeguru/internal/model"
)

// Digest contains the metrics extracted from a law's text
type Digest struct {
	WordCount int
	Checksum  string
}

// Digester computes content digests for laws
type Digester struct{}

// NewDigester creates a new Digester
func NewDigester() *Digester {
	return &Digester{}
}

// Digest counts the words of the readable fields of a law and hashes every
// displayed field plus the tags.
func (d *Digester) Digest(l model.Law) Digest {
	var text strings.Builder
	for _, field := range textFields(l) {
		field = strings.TrimSpace(field)
		if field != "" {
			text.WriteString(field)
			text.WriteString(" ")
		}
	}

	var content strings.Builder
	content.WriteString(l.Title)
	content.WriteString("\x00")
	content.WriteString(l.Category)
	content.WriteString("\x00")
	content.WriteString(string(l.RiskLevel))
	for _, field := range textFields(l)[1:] {
		content.WriteString("\x00")
		content.WriteString(field)
	}
	content.WriteString("\x00")
	content.WriteString(strings.Join(l.Tags, ","))
	content.WriteString("\x00")
	content.WriteString(l.LastUpdated.Format("2006-01-02"))

	return Digest{
		WordCount: len(strings.Fields(text.String())),
		Checksum:  d.calculateChecksum([]byte(content.String())),
	}
}

// textFields returns the human-readable fields of a law, title first
func textFields(l model.Law) []string {
	return []string{l.Title, l.Summary, l.Details, l.Penalties, l.Tips}
}

// calculateChecksum computes MD5 hash of content
func (d *Digester) calculateChecksum(content []byte) string {
	hash := md5.Sum(content)
	return hex.EncodeToString(hash[:])
}
