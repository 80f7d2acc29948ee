package flowchart

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dkoval/crmscope/internal/hubspot"
)

// Field extraction tolerates two historical shapes of the upstream field
// bag: each logical field is looked up through an ordered list of names,
// newest first. Extraction never fails; an absent or unrecognized field
// simply produces no detail line.

func field(fields map[string]any, names ...string) (any, bool) {
	for _, n := range names {
		if v, ok := fields[n]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func fieldString(fields map[string]any, names ...string) (string, bool) {
	v, ok := field(fields, names...)
	if !ok {
		return "", false
	}
	switch s := v.(type) {
	case string:
		if s == "" {
			return "", false
		}
		return s, true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(s), true
	default:
		return "", false
	}
}

func fieldInt64(fields map[string]any, names ...string) (int64, bool) {
	v, ok := field(fields, names...)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

// details returns the action-type-specific detail lines for a box body.
func details(a hubspot.Action) []string {
	if a.Fields == nil {
		return nil
	}
	switch a.Type {
	case "SET_CONTACT_PROPERTY", "SET_COMPANY_PROPERTY", "SET_DEAL_PROPERTY":
		return propertyDetail(a.Fields)
	case "DELAY":
		return delayDetail(a.Fields)
	case "SEND_EMAIL", "AUTOMATED_EMAIL":
		if id, ok := fieldString(a.Fields, "contentId", "emailContentId", "content_id"); ok {
			return []string{"ID: " + id}
		}
	case "COPY_PROPERTY":
		src, okSrc := fieldString(a.Fields, "sourceProperty", "sourcePropertyName")
		tgt, okTgt := fieldString(a.Fields, "targetProperty", "targetPropertyName")
		if okSrc && okTgt {
			return []string{src + " → " + tgt}
		}
	case "WEBHOOK":
		if u, ok := fieldString(a.Fields, "url", "webhookUrl"); ok {
			method, okM := fieldString(a.Fields, "method", "httpMethod")
			if !okM {
				method = "POST"
			}
			return []string{strings.ToUpper(method) + " " + truncate(u, 40)}
		}
	case "CUSTOM_CODE":
		if rt, ok := fieldString(a.Fields, "runtime", "language"); ok {
			return []string{"Runtime: " + rt}
		}
	case "CREATE_TASK":
		if subject, ok := fieldString(a.Fields, "subject", "taskSubject"); ok {
			return []string{`"` + truncate(subject, 30) + `"`}
		}
	}
	return nil
}

func propertyDetail(fields map[string]any) []string {
	prop, ok := fieldString(fields, "property", "propertyName")
	if !ok {
		return nil
	}

	// A structured value object carries a type discriminator instead of a
	// literal; it renders as a parenthesized phrase.
	if v, found := field(fields, "value", "propertyValue", "newValue"); found {
		if obj, isMap := v.(map[string]any); isMap {
			if disc, okD := obj["type"].(string); okD && disc != "" {
				return []string{prop + " = (" + valuePhrase(disc) + ")"}
			}
			return []string{prop}
		}
	}

	if val, okV := fieldString(fields, "value", "propertyValue", "newValue"); okV {
		return []string{prop + " = " + truncate(val, 50)}
	}
	return []string{prop}
}

func delayDetail(fields map[string]any) []string {
	if amount, ok := fieldInt64(fields, "delta"); ok {
		if unit, okU := fieldString(fields, "timeUnit", "unit"); okU {
			return []string{humanizeDuration(amount, unit)}
		}
	}
	if ms, ok := fieldInt64(fields, "delayMillis", "delay"); ok {
		return []string{humanizeMillis(ms)}
	}
	return nil
}

func humanizeDuration(amount int64, unit string) string {
	u := strings.ToLower(unit)
	u = strings.TrimSuffix(u, "s")
	return pluralize(amount, u)
}

// millisBuckets is ordered largest-first; humanizeMillis picks the largest
// unit that divides the raw count evenly into a value >= 1.
var millisBuckets = []struct {
	name string
	ms   int64
}{
	{"day", 86400000},
	{"hour", 3600000},
	{"minute", 60000},
	{"second", 1000},
}

func humanizeMillis(ms int64) string {
	for _, b := range millisBuckets {
		if ms >= b.ms && ms%b.ms == 0 {
			return pluralize(ms/b.ms, b.name)
		}
	}
	return fmt.Sprintf("%d ms", ms)
}

func pluralize(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
