package goshadow

// MaxOriginalValueSize bounds, in encoded JSON bytes, the raw values kept as
// provenance. Larger values are dropped instead of duplicated into the Meta.
const MaxOriginalValueSize = 500

// Meta is the side-channel record attached to every node: errors found while
// interpreting it, remarks describing modifications, and provenance of the
// value before it was changed. The zero Meta is empty.
type Meta struct {
	errors            []Error
	remarks           []Remark
	originalLength    int
	hasOriginalLength bool
	originalValue     *Value
}

// IsEmpty reports whether nothing is recorded. Empty Meta is treated as
// absent everywhere.
func (m *Meta) IsEmpty() bool {
	return m == nil || (len(m.errors) == 0 && len(m.remarks) == 0 && !m.hasOriginalLength && m.originalValue == nil)
}

// Errors returns the recorded errors in insertion order.
func (m *Meta) Errors() []Error { return m.errors }

// HasErrors reports whether at least one error is recorded.
func (m *Meta) HasErrors() bool { return len(m.errors) > 0 }

// AddError appends err.
func (m *Meta) AddError(err Error) { m.errors = append(m.errors, err) }

// Remarks returns the recorded remarks in application order.
func (m *Meta) Remarks() []Remark { return m.remarks }

// AddRemark appends r.
func (m *Meta) AddRemark(r Remark) { m.remarks = append(m.remarks, r) }

// OriginalLength returns the rune length of the value before its first
// modification.
func (m *Meta) OriginalLength() (int, bool) { return m.originalLength, m.hasOriginalLength }

// SetOriginalLength records n unless a length was already recorded; the first
// write describes the true original.
func (m *Meta) SetOriginalLength(n int) {
	if m.hasOriginalLength {
		return
	}
	m.originalLength = n
	m.hasOriginalLength = true
}

// OriginalValue returns the raw value kept as provenance.
func (m *Meta) OriginalValue() (Value, bool) {
	if m.originalValue == nil {
		return Value{}, false
	}
	return *m.originalValue, true
}

// SetOriginalValue keeps v as provenance unless one is already recorded or v
// encodes to MaxOriginalValueSize bytes or more.
func (m *Meta) SetOriginalValue(v Value) {
	if m.originalValue != nil {
		return
	}
	if estimateSize(v) >= MaxOriginalValueSize {
		return
	}
	c := v.Clone()
	m.originalValue = &c
}

func (m *Meta) clearProvenance() {
	m.originalValue = nil
	m.originalLength = 0
	m.hasOriginalLength = false
}

// Clone returns an independent copy.
func (m Meta) Clone() Meta {
	out := Meta{
		originalLength:    m.originalLength,
		hasOriginalLength: m.hasOriginalLength,
	}
	if len(m.errors) > 0 {
		out.errors = append([]Error(nil), m.errors...)
	}
	if len(m.remarks) > 0 {
		out.remarks = append([]Remark(nil), m.remarks...)
	}
	if m.originalValue != nil {
		c := m.originalValue.Clone()
		out.originalValue = &c
	}
	return out
}

// Merge folds other into m: errors and remarks concatenate in order, and
// other's original length and value win when set.
func (m *Meta) Merge(other Meta) {
	m.errors = append(m.errors, other.errors...)
	m.remarks = append(m.remarks, other.remarks...)
	if other.hasOriginalLength {
		m.originalLength = other.originalLength
		m.hasOriginalLength = true
	}
	if other.originalValue != nil {
		c := other.originalValue.Clone()
		m.originalValue = &c
	}
}

func estimateSize(v Value) int {
	b, err := v.MarshalJSON()
	if err != nil {
		return MaxOriginalValueSize
	}
	return len(b)
}
