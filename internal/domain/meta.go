package domain

// ExcludeColumn is the reserved boolean metadata column.
const ExcludeColumn = "exclude"

// ScenarioKey identifies one metadata row.
type ScenarioKey struct {
	Model    string
	Scenario string
}

// MetaTable holds per-scenario indicators. Columns keep insertion order and
// every column has exactly one value per index row.
type MetaTable struct {
	index   []ScenarioKey
	exclude []bool
	columns []string
	values  map[string][]string
	pos     map[ScenarioKey]int
}

// NewMetaTable returns an empty table.
func NewMetaTable() *MetaTable {
	return &MetaTable{
		values: make(map[string][]string),
		pos:    make(map[ScenarioKey]int),
	}
}

// Len returns the number of scenarios in the index.
func (m *MetaTable) Len() int { return len(m.index) }

// Index returns a copy of the row keys.
func (m *MetaTable) Index() []ScenarioKey {
	return append([]ScenarioKey(nil), m.index...)
}

// Exclude reports the exclude flag of the row at i.
func (m *MetaTable) Exclude(i int) bool { return m.exclude[i] }

// SetExclude sets the exclude flag of key, adding the row if needed.
func (m *MetaTable) SetExclude(key ScenarioKey, v bool) {
	m.exclude[m.ensure(key)] = v
}

// Columns returns the indicator column names in insertion order. The exclude
// column is not listed.
func (m *MetaTable) Columns() []string {
	return append([]string(nil), m.columns...)
}

// Column returns a copy of the values of name.
func (m *MetaTable) Column(name string) ([]string, bool) {
	v, ok := m.values[name]
	if !ok {
		return nil, false
	}
	return append([]string(nil), v...), true
}

// SetColumn replaces or creates name. values must have one entry per row.
func (m *MetaTable) SetColumn(name string, values []string) {
	if len(values) != len(m.index) {
		panic("domain: meta column length does not match index")
	}
	if _, ok := m.values[name]; !ok {
		m.columns = append(m.columns, name)
	}
	m.values[name] = append([]string(nil), values...)
}

// Fill sets name to value for every row, creating the column if needed.
func (m *MetaTable) Fill(name, value string) {
	values := make([]string, len(m.index))
	for i := range values {
		values[i] = value
	}
	m.SetColumn(name, values)
}

// Set assigns one cell, adding the row and the column as needed.
func (m *MetaTable) Set(key ScenarioKey, name, value string) {
	i := m.ensure(key)
	if _, ok := m.values[name]; !ok {
		m.columns = append(m.columns, name)
		m.values[name] = make([]string, len(m.index))
	}
	m.values[name][i] = value
}

// Get returns one cell.
func (m *MetaTable) Get(key ScenarioKey, name string) (string, bool) {
	i, ok := m.pos[key]
	if !ok {
		return "", false
	}
	col, ok := m.values[name]
	if !ok {
		return "", false
	}
	return col[i], true
}

// Drop removes the named columns. Unknown names are ignored.
func (m *MetaTable) Drop(names ...string) {
	if len(names) == 0 {
		return
	}
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
		delete(m.values, n)
	}
	kept := m.columns[:0]
	for _, c := range m.columns {
		if _, ok := drop[c]; !ok {
			kept = append(kept, c)
		}
	}
	m.columns = kept
}

// ensure returns the row position of key, appending an empty row if absent.
func (m *MetaTable) ensure(key ScenarioKey) int {
	if i, ok := m.pos[key]; ok {
		return i
	}
	i := len(m.index)
	m.index = append(m.index, key)
	m.exclude = append(m.exclude, false)
	for _, c := range m.columns {
		m.values[c] = append(m.values[c], "")
	}
	m.pos[key] = i
	return i
}

func (m *MetaTable) rename(dim Dimension, mapping map[string]string) {
	for i, k := range m.index {
		switch dim {
		case DimModel:
			if to, ok := mapping[k.Model]; ok {
				k.Model = to
			}
		case DimScenario:
			if to, ok := mapping[k.Scenario]; ok {
				k.Scenario = to
			}
		}
		m.index[i] = k
	}
	m.pos = make(map[ScenarioKey]int, len(m.index))
	for i, k := range m.index {
		if _, dup := m.pos[k]; !dup {
			m.pos[k] = i
		}
	}
}
