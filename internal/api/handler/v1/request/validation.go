package request

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dlclark/regexp2"
	validation "github.com/go-ozzo/ozzo-validation"
)

// ValidationError collects every violation found in a request body.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Violations, "; ")
}

// collect flattens ozzo-validation errors and appends extra rule violations.
// It returns nil when there is nothing to report.
func collect(err error, extra ...error) error {
	var violations []string
	if err != nil {
		violations = flatten("", err)
	}
	for _, e := range extra {
		if e != nil {
			violations = append(violations, e.Error())
		}
	}

	if len(violations) == 0 {
		return nil
	}

	return &ValidationError{Violations: violations}
}

func flatten(prefix string, err error) []string {
	var errs validation.Errors
	if !errors.As(err, &errs) {
		if prefix == "" {
			return []string{err.Error()}
		}
		return []string{fmt.Sprintf("%s: %s", prefix, err.Error())}
	}

	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []string
	for _, k := range keys {
		if errs[k] == nil {
			continue
		}
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		out = append(out, flatten(key, errs[k])...)
	}

	return out
}

// matchRegexp2 is validation.Match for patterns Go's regexp cannot express,
// such as look-ahead. Empty values pass, as with the built-in rules.
func matchRegexp2(re *regexp2.Regexp, message string) validation.Rule {
	return validation.By(func(value interface{}) error {
		value, isNil := validation.Indirect(value)
		if isNil {
			return nil
		}

		s, ok := value.(string)
		if !ok {
			return errors.New("must be a string")
		}
		if s == "" {
			return nil
		}

		matched, err := re.MatchString(s)
		if err != nil || !matched {
			return errors.New(message)
		}

		return nil
	})
}
