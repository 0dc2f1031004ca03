package validation

import "sync"

// GroupingConfig holds the default options for groups.
type GroupingConfig struct {
	// Deep makes groups recurse past the root's direct children.
	Deep bool `json:"deep" yaml:"deep" mapstructure:"deep"`

	// Observable selects push mode when true and pull mode when false.
	Observable bool `json:"observable" yaml:"observable" mapstructure:"observable"`
}

// Config holds the library options. The presentation fields are carried
// for the code that renders messages and are not interpreted here.
type Config struct {
	// RegisterExtenders installs a shortcut for every registered rule on Init.
	RegisterExtenders bool `json:"registerExtenders" yaml:"registerExtenders" mapstructure:"register_extenders"`

	// MessagesOnModified hides a cell's message until it is modified.
	MessagesOnModified bool `json:"messagesOnModified" yaml:"messagesOnModified" mapstructure:"messages_on_modified"`

	InsertMessages       bool   `json:"insertMessages" yaml:"insertMessages" mapstructure:"insert_messages"`
	DecorateElement      bool   `json:"decorateElement" yaml:"decorateElement" mapstructure:"decorate_element"`
	ErrorClass           string `json:"errorClass" yaml:"errorClass" mapstructure:"error_class"`
	ErrorElementClass    string `json:"errorElementClass" yaml:"errorElementClass" mapstructure:"error_element_class"`
	ErrorMessageClass    string `json:"errorMessageClass" yaml:"errorMessageClass" mapstructure:"error_message_class"`
	MessageTemplate      string `json:"messageTemplate" yaml:"messageTemplate" mapstructure:"message_template"`
	ParseInputAttributes bool   `json:"parseInputAttributes" yaml:"parseInputAttributes" mapstructure:"parse_input_attributes"`

	Grouping GroupingConfig `json:"grouping" yaml:"grouping" mapstructure:"grouping"`
}

// DefaultConfig returns the default options.
func DefaultConfig() Config {
	return Config{
		RegisterExtenders:  true,
		MessagesOnModified: true,
		InsertMessages:     true,
		ErrorElementClass:  "validationElement",
		ErrorMessageClass:  "validationMessage",
		Grouping: GroupingConfig{
			Deep:       false,
			Observable: true,
		},
	}
}

// With returns a copy of c changed by fn. It derives the options for one
// part of a view-model without touching the process configuration.
func (c Config) With(fn func(*Config)) Config {
	if fn != nil {
		fn(&c)
	}
	return c
}

// GroupOptions converts the grouping options for NewGroup.
func (c Config) GroupOptions() []Option {
	mode := ModePush
	if !c.Grouping.Observable {
		mode = ModePull
	}
	return []Option{WithDeep(c.Grouping.Deep), WithMode(mode)}
}

// NewGroup creates a group over root with c's grouping options followed
// by opts.
func (c Config) NewGroup(root any, opts ...Option) *Group {
	return NewGroup(root, append(c.GroupOptions(), opts...)...)
}

var (
	configMu sync.RWMutex
	current  = DefaultConfig()
)

// Init stores cfg as the process configuration. Empty element and message
// classes fall back to ErrorClass and then to the defaults. When
// RegisterExtenders is set every rule in the Default registry gets a
// shortcut.
func Init(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.ErrorElementClass == "" {
		cfg.ErrorElementClass = firstNonEmpty(cfg.ErrorClass, defaults.ErrorElementClass)
	}
	if cfg.ErrorMessageClass == "" {
		cfg.ErrorMessageClass = firstNonEmpty(cfg.ErrorClass, defaults.ErrorMessageClass)
	}

	configMu.Lock()
	current = cfg
	configMu.Unlock()

	if cfg.RegisterExtenders {
		Default.InstallAllShortcuts()
	}
	log().Debug("initialized",
		"register_extenders", cfg.RegisterExtenders,
		"deep", cfg.Grouping.Deep,
		"observable", cfg.Grouping.Observable,
	)
	return cfg
}

// CurrentConfig returns the process configuration.
func CurrentConfig() Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return current
}

// VisibleMessage returns the message a presentation layer should show for
// o under cfg: the error when o is invalid and either modified or
// MessagesOnModified is off, "" otherwise.
func VisibleMessage(o *Observable, cfg Config) string {
	if cfg.MessagesOnModified && !o.IsModified() {
		return ""
	}
	if o.IsValid() {
		return ""
	}
	return o.Error()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
