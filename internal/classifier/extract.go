package classifier

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// includeNegativePhrases switch a question to raw (signed) balances.
var includeNegativePhrases = []string{
	"show negative",
	"include negative",
	"also show negative",
	"include credits",
	"show credits",
	"negative values",
	"credit balances",
}

var (
	// Stop an entity phrase at punctuation.
	entityEnd = regexp.MustCompile(`[,.;:?!]`)

	// Stop an entity phrase at a flag or filler word.
	entityFlags = regexp.MustCompile(`(?i)\s+(?:including|excluding|include|exclude|also|with|show|please)\b.*$`)

	// Words dropped from the front of a phrase captured at the start of the
	// question, e.g. "what were the" in "what were the TA DA expenses".
	leadIn = map[string]bool{
		"what": true, "what's": true, "whats": true, "is": true, "are": true,
		"was": true, "were": true, "the": true, "total": true, "show": true,
		"me": true, "how": true, "much": true, "many": true, "did": true,
		"we": true, "our": true, "give": true, "tell": true, "get": true,
		"list": true, "please": true, "all": true, "find": true, "spent": true,
		"spend": true, "on": true, "paid": true, "pay": true, "for": true,
		"of": true,
	}

	// Words dropped from the end of a phrase that runs into the verb, e.g.
	// "did we" in "how much PVC resin did we purchase".
	trailAux = map[string]bool{
		"did": true, "do": true, "does": true, "we": true, "you": true,
		"i": true, "have": true, "has": true, "had": true, "is": true,
		"are": true, "was": true, "were": true, "got": true, "there": true,
		"left": true, "available": true, "been": true,
	}

	dayCount   = regexp.MustCompile(`(?i)\b(\d+)\s*-?\s*days?\b`)
	topLimit   = regexp.MustCompile(`(?i)\btop\s+(\d+)\b`)
	agingWords = []string{"outstanding", "receivable", "overdue"}
	agedPhrase = regexp.MustCompile(`(?i)\b(?:aged|ageing|aging|overdue)\s+(?:receivables?|payments?|balances?|dues?|accounts?)\b|\breceivables?\s+(?:ageing|aging)\b`)

	yearPhrase = regexp.MustCompile(`(?i)\b(?:in|during|for|of)\s+(?:the\s+year\s+)?((?:19|20)\d{2})\b`)
	bareYear   = regexp.MustCompile(`\b((?:19|20)\d{2})\b`)

	purchaseOf    = regexp.MustCompile(`(?i)\bpurchases?\s+(?:summary\s+)?(?:of|for)\s+([^?!,;]+)`)
	purchaseAfter = regexp.MustCompile(`(?i)^\s*([^?!,;]+?)\s+purchase[sd]?\b([^?!,;]*)`)
	fromVendor    = regexp.MustCompile(`(?i)\s+(?:from|by)\s+`)

	stateOutstanding   = regexp.MustCompile(`(?i)\boutstanding\s+(?:balances?\s+)?in\s+(?:the\s+state\s+of\s+)?([^?!,;.]+)`)
	companyOutstanding = regexp.MustCompile(`(?i)\boutstanding\s+(?:balances?\s+)?(?:of|for)\s+([^,.?!;]+)`)

	expense        = regexp.MustCompile(`(?i)^\s*([^?!,;]+?)\s+(expenses?|bills?|charges)\b([^?!;]*)`)
	expenseSegment = regexp.MustCompile(`(?i)\s*\b(?:for|in|at|during|of)\b\s*`)

	salesWord = regexp.MustCompile(`(?i)\bsales?\b`)

	inventoryAt   = regexp.MustCompile(`(?i)\b(?:inventory|stock)\s+(?:of|for)\s+(.+?)\s+(?:at|in)\s+([^?!,;]+)`)
	itemInStockAt = regexp.MustCompile(`(?i)^\s*(.+?)\s+(?:in\s+stock|on\s+hand|available)\s+(?:at|in)\s+([^?!,;]+)`)

	// Words that name the stock itself rather than an item or a place.
	stockWords = map[string]bool{
		"stock": true, "inventory": true, "items": true, "item": true,
		"hand": true, "total": true, "all": true,
	}

	placeWord = regexp.MustCompile(`(?i)\b(?:at|in)\s+(\w+)`)

	skuCode = regexp.MustCompile(`(?i)\bsku\s*(?:code\s*|number\s*)?[:=#]?\s*([\w-]+)`)

	stockSummaryPhrases = []string{
		"stock summary",
		"inventory summary",
		"stock levels",
		"stock level",
		"low stock",
		"total stock",
		"in stock",
		"on hand",
		"how much stock",
		"how many items",
	}

	monthName = regexp.MustCompile(`(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december)\b`)
)

// trimEntity cuts a captured phrase at punctuation and flag words and drops a
// leading article.
func trimEntity(s string) string {
	if loc := entityEnd.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
	}
	s = entityFlags.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)

	fields := strings.Fields(s)
	if len(fields) > 1 && strings.EqualFold(fields[0], "the") {
		fields = fields[1:]
	}
	return strings.Join(fields, " ")
}

// trimLeadIn is trimEntity plus removal of question filler from the front.
func trimLeadIn(s string) string {
	fields := strings.Fields(trimEntity(s))
	for len(fields) > 0 && leadIn[strings.ToLower(fields[0])] {
		fields = fields[1:]
	}
	return strings.Join(fields, " ")
}

// trimFiller is trimLeadIn plus removal of auxiliary verbs from the end.
func trimFiller(s string) string {
	fields := strings.Fields(trimLeadIn(s))
	for len(fields) > 0 && trailAux[strings.ToLower(fields[len(fields)-1])] {
		fields = fields[:len(fields)-1]
	}
	return strings.Join(fields, " ")
}

// skuLike reports whether a word after "sku" looks like a code: it carries a
// digit or hyphen, or is written in capitals.
func skuLike(code string) bool {
	return strings.ContainsAny(code, "0123456789-") || code == strings.ToUpper(code)
}

// lastMonth returns the number of the last month named in s, or 0.
func lastMonth(s string) int {
	all := monthName.FindAllStringSubmatch(s, -1)
	if len(all) == 0 {
		return 0
	}
	return monthNumber(all[len(all)-1][1])
}

func monthNumber(name string) int {
	t, err := time.Parse("January", strings.ToUpper(name[:1])+strings.ToLower(name[1:]))
	if err != nil {
		return 0
	}
	return int(t.Month())
}

// isMonthPhrase reports whether a phrase is just a month, optionally with a
// year, such as "August" or "August 2025".
func isMonthPhrase(s string) bool {
	fields := strings.Fields(s)
	if len(fields) == 0 || len(fields) > 2 || monthNumber(fields[0]) == 0 {
		return false
	}
	if len(fields) == 2 {
		_, err := strconv.Atoi(fields[1])
		return err == nil
	}
	return true
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
