package errors

import (
	"sort"
	"sync"
)

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Suggestion string
}

var (
	registryMu sync.RWMutex

	// registry maps error codes to their templates.
	registry = map[string]ErrorTemplate{
		// ============================================
		// Rule configuration (V001-V009)
		// ============================================

		"V001": {
			Category:   CategoryConfig,
			Message:    "Unknown validation rule",
			Suggestion: "Register the rule before attaching it, or check the rule name for typos.",
		},
		"V002": {
			Category:   CategoryConfig,
			Message:    "Anonymous rule has no validator",
			Suggestion: "Set AnonymousRule.Validate to a function returning true for valid values.",
		},
		"V003": {
			Category:   CategoryConfig,
			Message:    "Unknown extender",
			Suggestion: "Call InstallShortcut or InstallAllShortcuts after registering the rule.",
		},
		"V004": {
			Category: CategoryConfig,
			Message:  "Invalid extender argument",
		},

		// ============================================
		// Rule sets (V010-V019)
		// ============================================

		"V010": {
			Category: CategoryRuleSet,
			Message:  "Rule set could not be parsed",
		},
		"V011": {
			Category: CategoryRuleSet,
			Message:  "Rule set source could not be read",
		},
		"V012": {
			Category:   CategoryRuleSet,
			Message:    "Unknown field reference",
			Suggestion: "References use the dotted path of a field declared in the same rule set.",
		},
		"V013": {
			Category: CategoryRuleSet,
			Message:  "Duplicate field",
		},

		// ============================================
		// Service (V020-V029)
		// ============================================

		"V020": {
			Category: CategoryProtocol,
			Message:  "Unknown rule set",
		},
		"V021": {
			Category: CategoryProtocol,
			Message:  "Malformed request",
		},

		// ============================================
		// Service configuration (V030-V039)
		// ============================================

		"V030": {
			Category:   CategoryConfig,
			Message:    "Configuration file not found",
			Suggestion: "Pass --config with an existing file or drop the flag to use defaults.",
		},
		"V031": {
			Category: CategoryConfig,
			Message:  "Configuration could not be read",
		},
		"V032": {
			Category: CategoryConfig,
			Message:  "Invalid configuration",
		},
	}
)

// GetAllCodes returns all registered error codes in sorted order.
func GetAllCodes() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[code] = template
}
