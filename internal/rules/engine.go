// Package rules implements the vendor pattern rule engine: the first,
// cheap layer of categorization that runs before anything is sent to an
// AI classifier. Rules are matched against transaction descriptions
// case-insensitively, highest priority first, with creation order
// breaking ties.
package rules

import (
	"regexp"
	"sort"
	"strings"

	"finbook/csv-import/internal/logging"
	"finbook/csv-import/internal/models"
)

type compiledRule struct {
	rule    models.VendorMappingRule
	literal string
	pattern *regexp.Regexp
}

// Engine holds a compiled, sorted rule set. Build one per batch with
// NewEngine; matching itself is read-only and allocation-free.
type Engine struct {
	rules  []compiledRule
	logger logging.Logger
}

// NewEngine compiles and orders the rule set. Regex rules that fail to
// compile are logged and dropped rather than failing the batch. The
// sort key is (priority descending, id ascending) so that ties resolve
// to the oldest rule, deterministically.
func NewEngine(ruleSet []models.VendorMappingRule, logger logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NewMockLogger()
	}

	ordered := make([]models.VendorMappingRule, len(ruleSet))
	copy(ordered, ruleSet)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Priority != ordered[j].Priority {
			return ordered[i].Priority > ordered[j].Priority
		}
		return ordered[i].ID < ordered[j].ID
	})

	e := &Engine{logger: logger}
	for _, r := range ordered {
		cr := compiledRule{rule: r}
		if r.IsRegex {
			re, err := regexp.Compile("(?i)" + r.Pattern)
			if err != nil {
				logger.WithError(err).Warn("skipping invalid regex rule",
					logging.Field{Key: logging.FieldRule, Value: r.Pattern})
				continue
			}
			cr.pattern = re
		} else {
			cr.literal = strings.ToLower(r.Pattern)
		}
		e.rules = append(e.rules, cr)
	}
	return e
}

// Len reports how many usable rules the engine holds.
func (e *Engine) Len() int {
	return len(e.rules)
}

// Match returns the highest-priority rule whose pattern matches the
// description, or false when no rule matches and the row should go to
// the classifier queue instead.
func (e *Engine) Match(description string) (models.VendorMappingRule, bool) {
	lowered := strings.ToLower(description)
	for _, cr := range e.rules {
		if cr.pattern != nil {
			if cr.pattern.MatchString(description) {
				return cr.rule, true
			}
			continue
		}
		if strings.Contains(lowered, cr.literal) {
			return cr.rule, true
		}
	}
	return models.VendorMappingRule{}, false
}
