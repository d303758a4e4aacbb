package detection

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"github.com/stoik/phishcatch/internal/domain"
)

// ErrEmptyDom is returned when a DOM snapshot contains no elements to fingerprint
var ErrEmptyDom = errors.New("dom snapshot has no structure")

// structuralValues lists the attributes whose values change what a form does, not how it reads.
// Every other attribute only contributes its name.
var structuralValues = map[string]map[string]bool{
	"input":  {"type": true},
	"button": {"type": true},
	"form":   {"method": true},
}

// DomFingerprint computes the structural fingerprint of a DOM snapshot.
//
// Only tags and attribute names are kept, in document order, so translated labels and
// dynamic text do not change the fingerprint while an extra or reordered field does.
func DomFingerprint(dom string) (domain.ContentHash, error) {
	tokens, err := structureTokens(dom)
	if err != nil {
		return "", err
	}
	if len(tokens) == 0 {
		return "", ErrEmptyDom
	}

	sum := sha256.Sum256([]byte(strings.Join(tokens, "\n")))
	return domain.ContentHash(hex.EncodeToString(sum[:])), nil
}

// structureTokens walks the DOM and emits one token per start or end tag
func structureTokens(dom string) ([]string, error) {
	z := html.NewTokenizer(strings.NewReader(dom))
	tokens := make([]string, 0)

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return tokens, nil
			}
			return nil, z.Err()

		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			tag := string(name)
			tokens = append(tokens, tag+"["+strings.Join(tagAttributes(z, tag, hasAttr), ",")+"]")

		case html.EndTagToken:
			name, _ := z.TagName()
			tokens = append(tokens, "/"+string(name))
		}
		// Text, comments and doctype carry no structure
	}
}

func tagAttributes(z *html.Tokenizer, tag string, hasAttr bool) []string {
	attrs := make([]string, 0)
	for hasAttr {
		var key, val []byte
		key, val, hasAttr = z.TagAttr()

		attr := string(key)
		if structuralValues[tag][attr] {
			attr += "=" + strings.ToLower(strings.TrimSpace(string(val)))
		}
		attrs = append(attrs, attr)
	}
	sort.Strings(attrs)
	return attrs
}
