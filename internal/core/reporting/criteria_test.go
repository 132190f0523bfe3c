package reporting_test

import (
	"testing"
	"time"

	"github.com/lorrc/asset-desk-backend/internal/core/domain"
	apperrors "github.com/lorrc/asset-desk-backend/internal/core/errors"
	"github.com/lorrc/asset-desk-backend/internal/core/reporting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var brt = time.FixedZone("BRT", -3*60*60)

func TestResolvePreset(t *testing.T) {
	// Thursday afternoon.
	now := time.Date(2024, 7, 25, 14, 30, 0, 0, brt)
	endOfToday := time.Date(2024, 7, 25, 23, 59, 59, 999_000_000, brt)

	tests := []struct {
		preset    domain.DateRangePreset
		now       time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{domain.PresetToday, now, time.Date(2024, 7, 25, 0, 0, 0, 0, brt), endOfToday},
		{domain.PresetWeek, now, time.Date(2024, 7, 22, 0, 0, 0, 0, brt), endOfToday},
		{domain.PresetMonth, now, time.Date(2024, 7, 1, 0, 0, 0, 0, brt), endOfToday},
		{domain.PresetYear, now, time.Date(2024, 1, 1, 0, 0, 0, 0, brt), endOfToday},
		{
			domain.PresetWeek,
			time.Date(2024, 7, 28, 8, 0, 0, 0, brt), // Sunday belongs to the week that began Monday the 22nd
			time.Date(2024, 7, 22, 0, 0, 0, 0, brt),
			time.Date(2024, 7, 28, 23, 59, 59, 999_000_000, brt),
		},
		{
			domain.PresetWeek,
			time.Date(2024, 7, 22, 0, 0, 0, 0, brt),
			time.Date(2024, 7, 22, 0, 0, 0, 0, brt),
			time.Date(2024, 7, 22, 23, 59, 59, 999_000_000, brt),
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.preset)+" "+tt.now.Format(time.DateOnly), func(t *testing.T) {
			start, end, err := reporting.ResolvePreset(tt.preset, tt.now)
			require.NoError(t, err)
			assert.True(t, tt.wantStart.Equal(start), "start: want %s got %s", tt.wantStart, start)
			assert.True(t, tt.wantEnd.Equal(end), "end: want %s got %s", tt.wantEnd, end)
		})
	}
}

func TestResolvePreset_Unknown(t *testing.T) {
	_, _, err := reporting.ResolvePreset("quarter", time.Now())
	assert.ErrorIs(t, err, apperrors.ErrInvalidDateRange)
	assert.ErrorIs(t, err, apperrors.ErrInvalidCriteria)
}

func TestBuildCriteria(t *testing.T) {
	now := time.Date(2024, 7, 25, 14, 30, 0, 0, brt)
	from := time.Date(2024, 7, 1, 0, 0, 0, 0, brt)
	to := time.Date(2024, 7, 10, 0, 0, 0, 0, brt)

	t.Run("resolves status aliases", func(t *testing.T) {
		for alias, want := range map[string]string{
			"active":    "Aberto",
			"Pending":   "Pendente",
			"completed": "Concluído",
			"inactive":  "Fechado",
			"Resolvido": "Resolvido",
		} {
			c, err := reporting.BuildCriteria(reporting.CriteriaInput{Status: alias}, now)
			require.NoError(t, err)
			assert.Equal(t, want, c.Status, alias)
		}
	})

	t.Run("trims location and responsible", func(t *testing.T) {
		c, err := reporting.BuildCriteria(reporting.CriteriaInput{Location: " Sala 3 ", Responsible: " maria-souza"}, now)
		require.NoError(t, err)
		assert.Equal(t, "Sala 3", c.Location)
		assert.Equal(t, "maria-souza", c.Responsible)
	})

	t.Run("preset overrides explicit bounds", func(t *testing.T) {
		c, err := reporting.BuildCriteria(reporting.CriteriaInput{Range: "today", From: &from, To: &to}, now)
		require.NoError(t, err)
		require.NotNil(t, c.DateRangeStart)
		assert.Equal(t, 25, c.DateRangeStart.Day())
	})

	t.Run("custom keeps explicit bounds", func(t *testing.T) {
		c, err := reporting.BuildCriteria(reporting.CriteriaInput{Range: "custom", From: &from, To: &to}, now)
		require.NoError(t, err)
		assert.Equal(t, &from, c.DateRangeStart)
		assert.Equal(t, &to, c.DateRangeEnd)
	})

	t.Run("all clears the range", func(t *testing.T) {
		c, err := reporting.BuildCriteria(reporting.CriteriaInput{Range: "all"}, now)
		require.NoError(t, err)
		assert.Nil(t, c.DateRangeStart)
		assert.Nil(t, c.DateRangeEnd)
	})

	t.Run("inverted range is rejected", func(t *testing.T) {
		_, err := reporting.BuildCriteria(reporting.CriteriaInput{From: &to, To: &from}, now)
		assert.ErrorIs(t, err, apperrors.ErrInvalidDateRange)
	})

	t.Run("unknown preset is rejected", func(t *testing.T) {
		_, err := reporting.BuildCriteria(reporting.CriteriaInput{Range: "fortnight"}, now)
		assert.ErrorIs(t, err, apperrors.ErrInvalidCriteria)
	})
}
