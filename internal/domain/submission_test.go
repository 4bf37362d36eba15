package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRows() []Observation {
	return []Observation{
		{Model: "M", Scenario: "Base", Region: "DE", Variable: "Final Energy", Unit: "EJ/yr", Year: 2030, Value: 1},
		{Model: "M", Scenario: "Base", Region: "World", Variable: "Final Energy", Unit: "EJ/yr", Year: 2030, Value: 2},
		{Model: "M", Scenario: "Alt", Region: "DE", Variable: "Emissions|CO2", Unit: "Mt CO2/yr", Year: 2030, Value: 3},
		{Model: "M", Scenario: "Alt", Region: "DE", Variable: "Final Energy", Unit: "TWh/yr", Year: 2030, Value: 4},
	}
}

func TestSubmission_Distinct(t *testing.T) {
	sub := NewSubmission("s", TimeModeYear, testRows())

	assert.Equal(t, []string{"DE", "World"}, sub.Distinct(DimRegion))
	assert.Equal(t, []string{"Alt", "Base"}, sub.Distinct(DimScenario))
	assert.Equal(t, []string{""}, sub.Distinct(DimSubannual))
	assert.Empty(t, NewSubmission("s", TimeModeYear, nil).Distinct(DimRegion))
}

func TestSubmission_VariableUnits(t *testing.T) {
	sub := NewSubmission("s", TimeModeYear, testRows())

	assert.Equal(t, []VariableUnit{
		{Variable: "Emissions|CO2", Unit: "Mt CO2/yr"},
		{Variable: "Final Energy", Unit: "EJ/yr"},
		{Variable: "Final Energy", Unit: "TWh/yr"},
	}, sub.VariableUnits())
}

func TestSubmission_MetaIndexFollowsRows(t *testing.T) {
	sub := NewSubmission("s", TimeModeYear, testRows())

	assert.Equal(t, []ScenarioKey{{Model: "M", Scenario: "Base"}, {Model: "M", Scenario: "Alt"}}, sub.Meta().Index())
	assert.NotNil(t, (&Submission{}).Meta())
}

func TestSubmission_Rename(t *testing.T) {
	t.Run("region", func(t *testing.T) {
		sub := NewSubmission("s", TimeModeYear, testRows())

		sub.Rename(DimRegion, map[string]string{"DE": "Germany"})

		assert.Equal(t, []string{"Germany", "World"}, sub.Distinct(DimRegion))
		assert.Equal(t, 2, sub.Meta().Len())
	})

	t.Run("scenario rekeys meta", func(t *testing.T) {
		sub := NewSubmission("s", TimeModeYear, testRows())
		sub.Meta().Set(ScenarioKey{Model: "M", Scenario: "Alt"}, "Quality Assessment", "mature")

		sub.Rename(DimScenario, map[string]string{"Alt": "8Gt_Bal"})

		assert.Equal(t, []string{"8Gt_Bal", "Base"}, sub.Distinct(DimScenario))
		got, ok := sub.Meta().Get(ScenarioKey{Model: "M", Scenario: "8Gt_Bal"}, "Quality Assessment")
		require.True(t, ok)
		assert.Equal(t, "mature", got)
		_, ok = sub.Meta().Get(ScenarioKey{Model: "M", Scenario: "Alt"}, "Quality Assessment")
		assert.False(t, ok)
	})
}

func TestSubmission_SwapTimeForYear(t *testing.T) {
	zone := time.FixedZone("", 3600)
	sub := NewSubmission("s", TimeModeDatetime, []Observation{
		{Model: "M", Scenario: "S", Region: "R", Variable: "V", Unit: "U", Time: time.Date(2025, time.March, 1, 6, 0, 0, 0, zone)},
		{Model: "M", Scenario: "S", Region: "R", Variable: "V", Unit: "U", Time: time.Date(2025, time.March, 1, 7, 0, 0, 0, time.UTC), NaiveTime: true},
	})

	sub.SwapTimeForYear(func(t time.Time, naive bool) string {
		if naive {
			return t.Format("01-02 15:04") + " naive"
		}
		return t.Format("01-02 15:04")
	})

	assert.Equal(t, TimeModeSubannual, sub.TimeMode())
	assert.Equal(t, 2025, sub.Rows[0].Year)
	assert.Equal(t, "03-01 06:00", sub.Rows[0].Subannual)
	assert.Equal(t, "03-01 07:00 naive", sub.Rows[1].Subannual)
	assert.True(t, sub.Rows[0].Time.IsZero())
	assert.False(t, sub.Rows[1].NaiveTime)

	called := false
	yearly := NewSubmission("s", TimeModeYear, testRows())
	yearly.SwapTimeForYear(func(time.Time, bool) string { called = true; return "" })
	assert.False(t, called)
	assert.Equal(t, TimeModeYear, yearly.TimeMode())
}

func TestSubmission_Clear(t *testing.T) {
	sub := NewSubmission("s", TimeModeYear, testRows())
	sub.Meta().Fill("Quality Assessment", "mature")

	sub.Clear()

	assert.Equal(t, 0, sub.Len())
	assert.Equal(t, 0, sub.Meta().Len())
	assert.Empty(t, sub.Meta().Columns())
}

func TestMetaTable(t *testing.T) {
	base := ScenarioKey{Model: "M", Scenario: "Base"}
	alt := ScenarioKey{Model: "M", Scenario: "Alt"}

	t.Run("set pads new rows and columns", func(t *testing.T) {
		m := NewMetaTable()
		m.Set(base, "A", "1")
		m.Set(alt, "B", "2")

		a, _ := m.Column("A")
		b, _ := m.Column("B")
		assert.Equal(t, []string{"1", ""}, a)
		assert.Equal(t, []string{"", "2"}, b)
		assert.Equal(t, []string{"A", "B"}, m.Columns())
	})

	t.Run("column returns a copy", func(t *testing.T) {
		m := NewMetaTable()
		m.Set(base, "A", "1")

		a, _ := m.Column("A")
		a[0] = "changed"

		got, _ := m.Get(base, "A")
		assert.Equal(t, "1", got)
	})

	t.Run("drop keeps order of remaining columns", func(t *testing.T) {
		m := NewMetaTable()
		m.Set(base, "A", "1")
		m.Set(base, "B", "2")
		m.Set(base, "C", "3")

		m.Drop("B", "missing")

		assert.Equal(t, []string{"A", "C"}, m.Columns())
		_, ok := m.Column("B")
		assert.False(t, ok)
	})

	t.Run("set column length mismatch panics", func(t *testing.T) {
		m := NewMetaTable()
		m.SetExclude(base, true)

		assert.Panics(t, func() { m.SetColumn("A", []string{"1", "2"}) })
	})

	t.Run("exclude is not a column", func(t *testing.T) {
		m := NewMetaTable()
		m.SetExclude(base, true)

		assert.True(t, m.Exclude(0))
		assert.Empty(t, m.Columns())
		_, ok := m.Column(ExcludeColumn)
		assert.False(t, ok)
	})
}
