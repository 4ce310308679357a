package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/facturx/internal/model"
)

func TestParseDate(t *testing.T) {
	d, err := model.ParseDate("2026-03-15")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-15", d.String())
	assert.Equal(t, time.March, d.Time().Month())
}

func TestParseDateEmpty(t *testing.T) {
	d, err := model.ParseDate("")
	require.NoError(t, err)
	assert.True(t, d.IsZero())
	assert.Equal(t, "", d.String())
}

func TestParseDateInvalid(t *testing.T) {
	_, err := model.ParseDate("15.03.2026")
	require.Error(t, err)

	_, err = model.ParseDate("2026-13-01")
	require.Error(t, err)
}

func TestDateEqual(t *testing.T) {
	a := model.NewDate(2026, time.March, 15)
	b := model.NewDate(2026, time.March, 15)
	c := model.NewDate(2026, time.March, 16)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestDateJSONRoundTrip(t *testing.T) {
	d := model.NewDate(2026, time.January, 2)

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2026-01-02"`, string(data))

	var back model.Date
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, d.Equal(back))
}

func TestDateJSONNullAndEmpty(t *testing.T) {
	var d model.Date
	require.NoError(t, json.Unmarshal([]byte(`null`), &d))
	assert.True(t, d.IsZero())

	require.NoError(t, json.Unmarshal([]byte(`""`), &d))
	assert.True(t, d.IsZero())
}
