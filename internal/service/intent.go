package service

import (
	"fmt"
	"regexp"
	"strings"

	"washfinder/internal/model"
)

var purchasePhrases = []string{
	"i'll take", "i will take", "lets take", "let's take", "take the",
	"take that one", "that's the one", "that's it", "i'll go with",
	"i will go with", "go with that", "i'm taking", "i want the",
	"we'll take", "we will take", "ok we'll take", "order that",
	"buy that", "i'll choose", "consider it done", "lock it in",
	"我要这个", "我要這個", "就这个", "就這個", "买这个", "買這個",
	"就它了", "就它吧", "就这个吧", "好的就它", "就选这个", "我要那台", "就决定这个",
}

// Affirmations only signal a purchase when a concrete selection precedes
// them ("the Bosch is fine"), otherwise they are just agreement.
var affirmationSuffixes = []string{
	" is ok", " is okay", " is fine", " looks good", " works for me",
	" sounds good", " that'll do", " that will do", " good for me", "就行",
}

var quotedSelectionRe = regexp.MustCompile(`"([^"]+)"`)

// isPurchaseIntent reports whether lower-cased text commits to a purchase
func isPurchaseIntent(lower, selection string) bool {
	for _, phrase := range purchasePhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	if selection == "" {
		return false
	}
	for _, suffix := range affirmationSuffixes {
		if strings.Contains(lower, suffix) {
			return true
		}
	}
	return false
}

// extractSelection pulls a quoted product name from the text
func extractSelection(text string) string {
	if m := quotedSelectionRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// matchKnownSelection grounds the selection hint in things the user can
// actually point at: a previewed product's model or brand, or the brand
// already on the filter. A model mention resolves to "Brand Model".
func matchKnownSelection(lower string, filterBrand *string, products []model.Product) string {
	for i := range products {
		p := &products[i]
		if p.Model != nil && containsFold(lower, *p.Model) {
			return p.DisplayName()
		}
	}
	for i := range products {
		p := &products[i]
		if p.Brand != nil && containsFold(lower, *p.Brand) {
			return *p.Brand
		}
	}
	if filterBrand != nil && containsFold(lower, *filterBrand) {
		return *filterBrand
	}
	return ""
}

func containsFold(lower, needle string) bool {
	needle = strings.ToLower(strings.TrimSpace(needle))
	return needle != "" && strings.Contains(lower, needle)
}

// buildPurchaseClosing writes the wrap-up line, naming the selection when
// one was made.
func buildPurchaseClosing(selection string) string {
	if selection == "" {
		return "Great, I'll wrap that up for you. Let me know if you need anything else."
	}
	return fmt.Sprintf("Great choice on %s! I'll wrap that up—just shout if you need anything else.", selection)
}
