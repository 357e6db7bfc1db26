package graph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-tools/meridian/pkg/catalog"
	"github.com/meridian-tools/meridian/pkg/domain"
)

func TestGenerateMermaid_FullCatalog(t *testing.T) {
	cat, err := catalog.New()
	require.NoError(t, err)

	out := GenerateMermaid(cat.Menus(), nil)

	assert.True(t, strings.HasPrefix(out, "graph TD\n"))
	assert.Contains(t, out, `Time_Tools(("Time Tools"))`)
	assert.Contains(t, out, `Statistics(("Statistics"))`)

	// Menu edges
	assert.Contains(t, out, "Time_Tools --> Bounds_Set")

	// X-Daily collects input, statistics are subroutines.
	assert.Contains(t, out, `bounds_x_daily[/"Set Bounds For X-Daily Data"/]`)
	assert.Contains(t, out, `stat_mean[["Mean"]]`)

	// Season actions stay rectangles.
	assert.Contains(t, out, `season_Extract_annualmeans["Annual Means"]`)

	// IDs must not carry Mermaid-breaking characters.
	assert.NotContains(t, out, "stat.mean")
	assert.Contains(t, out, `stat_rank[["Rank (in %)"]]`)
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	cat, err := catalog.New()
	require.NoError(t, err)

	out := GenerateMermaid(cat.Menus(), &CatalogOverlay{
		DispatchedOps: []domain.OpID{
			domain.OpBoundsYearly,
			domain.OpBoundsYearly, // duplicates collapse
			domain.StatOp(domain.StatMean),
		},
	})

	assert.Contains(t, out, "classDef dispatched")
	assert.Equal(t, 1, strings.Count(out, "class bounds_yearly dispatched;"))
	assert.Contains(t, out, "class stat_mean dispatched;")
}
