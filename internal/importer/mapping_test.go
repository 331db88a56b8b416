package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldNames(t *testing.T) {
	var names []string
	for _, f := range Fields() {
		names = append(names, f.String())
	}
	assert.Equal(t, []string{"date", "amount", "category", "type", "description", "notes", "tags"}, names)
	assert.Equal(t, "Field(99)", Field(99).String())
}

func TestFieldRequired(t *testing.T) {
	for _, f := range []Field{FieldDate, FieldAmount, FieldCategory, FieldType, FieldDescription} {
		assert.True(t, f.Required(), f.String())
	}
	assert.False(t, FieldNotes.Required())
	assert.False(t, FieldTags.Required())
}

func TestParseField(t *testing.T) {
	f, err := ParseField(" Amount ")
	require.NoError(t, err)
	assert.Equal(t, FieldAmount, f)

	_, err = ParseField("payee")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown field")
}

func TestMapping_SetColumn(t *testing.T) {
	var m Mapping
	for i, f := range Fields() {
		m.Set(f, string(rune('A'+i)))
	}
	for i, f := range Fields() {
		assert.Equal(t, string(rune('A'+i)), m.Column(f))
	}
	m.Set(FieldNotes, "")
	assert.Equal(t, "", m.Notes)
}

func TestMapping_ValidateMissing(t *testing.T) {
	m := Mapping{Category: "Cat", Type: "Type", Description: "Desc"}
	err := m.Validate(nil)

	var missing *MissingFieldsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []Field{FieldDate, FieldAmount}, missing.Fields)
	assert.Equal(t, "missing required columns: date, amount", err.Error())
}

func TestMapping_ValidateUnknownColumn(t *testing.T) {
	m := ExportMapping
	err := m.Validate([]string{"Date", "Type", "Category", "Amount", "Description", "Notes"})

	var unknown *UnknownColumnError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, FieldTags, unknown.Field)
	assert.Equal(t, "Tags", unknown.Column)
}

func TestMapping_ValidateOK(t *testing.T) {
	m := Mapping{Date: "d", Amount: "a", Category: "c", Type: "t", Description: "x"}
	assert.NoError(t, m.Validate([]string{"d", "a", "c", "t", "x"}))
	assert.NoError(t, m.Validate(nil))
}

func TestAutoMap_Substring(t *testing.T) {
	headers := []string{"Transaction Date", "Amount (USD)", "Category", "Type", "Description", "Memo"}
	m := AutoMap(headers, 0)
	assert.Equal(t, Mapping{
		Date:        "Transaction Date",
		Amount:      "Amount (USD)",
		Category:    "Category",
		Type:        "Type",
		Description: "Description",
	}, m)
}

func TestAutoMap_DoesNotReuseHeader(t *testing.T) {
	m := AutoMap([]string{"Category Type", "Kind"}, 0)
	assert.Equal(t, "Category Type", m.Category)
	assert.Equal(t, "", m.Type)
}

func TestAutoMap_Fuzzy(t *testing.T) {
	headers := []string{"Dte", "Amout", "Categry", "Typ", "Descripton", "Nots", "Tag"}
	m := AutoMap(headers, 2)
	assert.Equal(t, "Dte", m.Date)
	assert.Equal(t, "Amout", m.Amount)
	assert.Equal(t, "Categry", m.Category)
	assert.Equal(t, "Typ", m.Type)
	assert.Equal(t, "Descripton", m.Description)
	assert.Equal(t, "Nots", m.Notes)
	assert.Equal(t, "Tag", m.Tags)

	assert.Equal(t, Mapping{}, AutoMap([]string{"Payee", "Memo"}, 2))
}

func TestAutoMap_ExportHeaders(t *testing.T) {
	m := AutoMap([]string{"Date", "Type", "Category", "Amount", "Description", "Notes", "Tags"}, 2)
	assert.Equal(t, ExportMapping, m)
}

func TestPresets(t *testing.T) {
	p := DefaultPresets()
	m, ok := p.Get("FinTrack")
	require.True(t, ok)
	assert.Equal(t, ExportMapping, m)

	_, ok = p.Get("chase")
	assert.False(t, ok)

	p.Register("chase", Mapping{Date: "Posting Date"})
	m, ok = p.Get("CHASE")
	require.True(t, ok)
	assert.Equal(t, "Posting Date", m.Date)

	assert.Panics(t, func() { p.Register("Chase", Mapping{}) })
}
