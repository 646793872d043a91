package services

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/coinvest-api/models"
	"github.com/yourusername/coinvest-api/testutil"
)

func TestNewPage(t *testing.T) {
	tests := []struct {
		name        string
		page, limit int
		want        Page
	}{
		{"Defaults", 0, 0, Page{Page: 1, Limit: defaultPageSize}},
		{"Negative", -3, -1, Page{Page: 1, Limit: defaultPageSize}},
		{"Limit Capped", 2, 5000, Page{Page: 2, Limit: maxPageSize}},
		{"Page Capped", math.MaxInt, 100, Page{Page: maxPage, Limit: 100}},
		{"In Range", 3, 10, Page{Page: 3, Limit: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewPage(tt.page, tt.limit))
		})
	}
}

func TestHugePageReturnsNothing(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateProfile(t, env.db, models.Profile{})
	env.confirmedInvestment(t, user, 200)

	deposits, total, err := env.deposits.List(context.Background(), "", NewPage(math.MaxInt, maxPageSize))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Empty(t, deposits)
}
