package extractor

import (
	"bytes"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/MichalMitros/restock-monitor/internal/platform/models"
	"github.com/samber/lo"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const maxSignalTextLen = 200

var errEmptyPage = errors.New("empty page")

// phraseExpectedDate is phrase of notify signal carrying announced restock date.
const phraseExpectedDate = "expected date"

// expectedDatePatterns find announced restock dates in page text, the first matching pattern wins.
var expectedDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)expected in stock by [^.\n]+`),
	regexp.MustCompile(`(?i)back in stock by [^.\n]+`),
	regexp.MustCompile(`(?i)available [^.\n]*(?:monday|tuesday|wednesday|thursday|friday|saturday|sunday)[^.\n]*`),
	regexp.MustCompile(`(?i)restock(?:ed)? [^.\n]*\d{1,2}[^.\n]*`),
}

// skipped elements never contribute text or signals.
var skipped = map[atom.Atom]bool{
	atom.Head:     true,
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Template: true,
	atom.Svg:      true,
}

// scanner finds availability signals in parsed HTML pages.
// Labels are matched normalized, class and id only lower-cased so that
// theme tokens like add-to-cart never read as phrases.
type scanner struct {
	phrases     Phrases
	attrPhrases Phrases
}

func newScanner(phrases Phrases) scanner {
	return scanner{
		phrases:     phrases.normalized(),
		attrPhrases: phrases.lowered(),
	}
}

func parsePage(body []byte) (*html.Node, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errEmptyPage
	}

	return html.Parse(bytes.NewReader(body))
}

// scan adds interactive element signals and page wide sold out signals to bundle.
func (s scanner) scan(root *html.Node, bundle *models.SignalBundle) {
	s.scanInteractive(root, bundle)
	s.scanPageText(root, bundle)
}

func (s scanner) scanInteractive(root *html.Node, bundle *models.SignalBundle) {
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if skipped[n.DataAtom] || isHidden(n) {
				return
			}
			if source, ok := interactiveSource(n); ok {
				s.matchElement(n, source, bundle)
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
}

func (s scanner) matchElement(n *html.Node, source string, bundle *models.SignalBundle) {
	if n.DataAtom == atom.Input && strings.EqualFold(getAttr(n, "type"), "email") {
		bundle.Notify = append(bundle.Notify, models.Signal{
			Phrase: "email input field",
			Source: source,
		})
		return
	}

	label := elementLabel(n)
	m := elementMatcher{
		label: normalize(label + " " + getAttr(n, "aria-label")),
		attrs: strings.ToLower(getAttr(n, "class") + " " + getAttr(n, "id")),
	}
	_, soldOutLabel := firstMatch(m.label, s.phrases.SoldOut)
	// sold out label or disabled element can't be bought whatever its class says.
	buyable := !soldOutLabel && !isDisabled(n)

	if phrase, ok := m.match(s.phrases.Purchase, s.attrPhrases.Purchase); ok && buyable {
		bundle.Purchase = append(bundle.Purchase, newSignal(phrase, label, source))
	}
	if phrase, ok := m.match(s.phrases.PreOrder, s.attrPhrases.PreOrder); ok && buyable {
		bundle.PreOrder = append(bundle.PreOrder, newSignal(phrase, label, source))
	}
	if phrase, ok := m.match(s.phrases.Notify, s.attrPhrases.Notify); ok {
		bundle.Notify = append(bundle.Notify, newSignal(phrase, label, source))
	}
}

// elementMatcher holds haystacks of single interactive element.
type elementMatcher struct {
	label string
	attrs string
}

// match returns first phrase found in label, then in class and id. Phrase is always returned normalized.
func (m elementMatcher) match(labelPhrases, attrPhrases []string) (string, bool) {
	if phrase, ok := firstMatch(m.label, labelPhrases); ok {
		return phrase, true
	}
	if phrase, ok := firstMatch(m.attrs, attrPhrases); ok {
		return normalize(phrase), true
	}
	return "", false
}

func (s scanner) scanPageText(root *html.Node, bundle *models.SignalBundle) {
	blocks := textBlocks(root)
	normalized := lo.Map(blocks, func(block string, _ int) string { return normalize(block) })
	joined := strings.Join(normalized, " ")

	for _, phrase := range s.phrases.DefinitiveSoldOut {
		if text, ok := findText(phrase, blocks, normalized, joined); ok {
			signal := newSignal(phrase, text, models.SourcePageText)
			signal.Definitive = true
			bundle.SoldOut = append(bundle.SoldOut, signal)
		}
	}

	for _, phrase := range s.phrases.SoldOut {
		if text, ok := findText(phrase, blocks, normalized, joined); ok {
			bundle.SoldOut = append(bundle.SoldOut, newSignal(phrase, text, models.SourcePageText))
		}
	}

	if text, ok := expectedDate(blocks); ok {
		bundle.Notify = append(bundle.Notify, newSignal(phraseExpectedDate, text, models.SourcePageText))
	}
}

// expectedDate returns sentence announcing when product will be back.
func expectedDate(blocks []string) (string, bool) {
	for _, pattern := range expectedDatePatterns {
		for _, block := range blocks {
			if match := pattern.FindString(block); match != "" {
				return strings.TrimSpace(match), true
			}
		}
	}
	return "", false
}

// findText returns original text of the first block containing phrase.
// Phrases split between blocks are reported with phrase itself.
func findText(phrase string, blocks, normalized []string, joined string) (string, bool) {
	for ix := range normalized {
		if strings.Contains(normalized[ix], phrase) {
			return blocks[ix], true
		}
	}

	if strings.Contains(joined, phrase) {
		return phrase, true
	}

	return "", false
}

func newSignal(phrase, text, source string) models.Signal {
	return models.Signal{
		Phrase: phrase,
		Text:   truncate(text),
		Source: source,
	}
}

func interactiveSource(n *html.Node) (string, bool) {
	switch n.DataAtom {
	case atom.Button:
		return models.SourceButton, true
	case atom.A:
		return models.SourceLink, true
	case atom.Input:
		switch strings.ToLower(getAttr(n, "type")) {
		case "submit", "button", "image", "email":
			return models.SourceInput, true
		}
		return "", false
	}

	if strings.EqualFold(getAttr(n, "role"), "button") {
		return models.SourceButton, true
	}

	return "", false
}

func isDisabled(n *html.Node) bool {
	if hasAttr(n, "disabled") || strings.EqualFold(getAttr(n, "aria-disabled"), "true") {
		return true
	}

	return lo.SomeBy(strings.Fields(strings.ToLower(getAttr(n, "class"))), func(token string) bool {
		return strings.Contains(token, "disabled")
	})
}

func isHidden(n *html.Node) bool {
	if hasAttr(n, "hidden") || strings.EqualFold(getAttr(n, "aria-hidden"), "true") {
		return true
	}

	style := strings.ReplaceAll(strings.ToLower(getAttr(n, "style")), " ", "")
	return strings.Contains(style, "display:none")
}

// elementLabel returns visible label of interactive element.
func elementLabel(n *html.Node) string {
	if n.DataAtom == atom.Input {
		return collapse(getAttr(n, "value"))
	}

	if text := visibleText(n); text != "" {
		return text
	}

	return collapse(getAttr(n, "aria-label"))
}

// visibleText returns whitespace collapsed text of node and its children.
func visibleText(n *html.Node) string {
	return strings.Join(textBlocks(n), " ")
}

// textBlocks returns non-empty text nodes under root in document order.
func textBlocks(root *html.Node) []string {
	var blocks []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if text := collapse(n.Data); text != "" {
				blocks = append(blocks, text)
			}
			return
		case html.ElementNode:
			if skipped[n.DataAtom] || isHidden(n) {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return blocks
}

// findFirst returns first element node with provided atom.
func findFirst(root *html.Node, a atom.Atom) *html.Node {
	if root.Type == html.ElementNode && root.DataAtom == a {
		return root
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, a); found != nil {
			return found
		}
	}
	return nil
}

// findBy returns first element node matching predicate.
func findBy(root *html.Node, match func(*html.Node) bool) *html.Node {
	if root.Type == html.ElementNode && match(root) {
		return root
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if found := findBy(c, match); found != nil {
			return found
		}
	}
	return nil
}

// pageName returns product name from first h1 or document title.
func pageName(root *html.Node) string {
	if h1 := findFirst(root, atom.H1); h1 != nil {
		if name := visibleText(h1); name != "" {
			return name
		}
	}

	if title := findFirst(root, atom.Title); title != nil && title.FirstChild != nil {
		return collapse(title.FirstChild.Data)
	}

	return ""
}

// pagePrice returns price from product meta tags or microdata.
func pagePrice(root *html.Node) *string {
	meta := findBy(root, func(n *html.Node) bool {
		if n.DataAtom != atom.Meta {
			return false
		}
		property := getAttr(n, "property")
		return property == "product:price:amount" || property == "og:price:amount"
	})
	if meta != nil && getAttr(meta, "content") != "" {
		return lo.ToPtr(getAttr(meta, "content"))
	}

	item := findBy(root, func(n *html.Node) bool { return getAttr(n, "itemprop") == "price" })
	if item == nil {
		return nil
	}
	if content := getAttr(item, "content"); content != "" {
		return &content
	}
	if text := visibleText(item); text != "" {
		return &text
	}

	return nil
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	return lo.ContainsBy(n.Attr, func(attr html.Attribute) bool { return attr.Key == key })
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxSignalTextLen {
		return s
	}
	return string([]rune(s)[:maxSignalTextLen])
}
