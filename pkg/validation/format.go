package validation

import (
	"fmt"
	"strings"
)

// FormatMessage replaces the first "{0}" in template with params.
func FormatMessage(template string, params any) string {
	return strings.Replace(template, "{0}", fmt.Sprint(params), 1)
}
