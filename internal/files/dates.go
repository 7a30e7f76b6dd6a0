package files

import (
	"regexp"
	"sync"

	"tincli/pkg/contracts/domain"
)

var datePatterns sync.Map // prefix -> *regexp.Regexp

// ExtractDate returns the first 8-digit token that directly follows
// "<prefix>_" in name, or domain.UnknownDate when there is none.
func ExtractDate(name, prefix string) string {
	match := datePattern(prefix).FindStringSubmatch(name)
	if match == nil {
		return domain.UnknownDate
	}
	return match[1]
}

func datePattern(prefix string) *regexp.Regexp {
	if re, ok := datePatterns.Load(prefix); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile(regexp.QuoteMeta(prefix) + `_(\d{8})`)
	actual, _ := datePatterns.LoadOrStore(prefix, re)
	return actual.(*regexp.Regexp)
}
