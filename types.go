package goshadow

// Severity expresses how a recoverable input anomaly is treated.
type Severity int

const (
	// SeverityIgnore accepts the input silently.
	SeverityIgnore Severity = iota
	// SeverityWarn accepts the input and records an error on the affected node.
	SeverityWarn
	// SeverityError aborts parsing with a *ParseError.
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityIgnore:
		return "ignore"
	case SeverityWarn:
		return "warn"
	case SeverityError:
		return "error"
	}
	return "unknown"
}

// Strictness configures enforcement for duplicate keys and NaN handling.
type Strictness struct {
	OnDuplicateKey Severity // duplicate object keys; the last value wins unless SeverityError
	AllowNaN       bool     // keep NaN/±Inf (YAML .nan, .inf) instead of recording invalid_value
}

// ParseOpt bundles parsing options. When several are passed the last one wins.
type ParseOpt struct {
	Strictness Strictness
	MaxDepth   int   // 0 = unlimited
	MaxBytes   int64 // 0 = unlimited
}
