package pharmacogene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenes_RequiredSet(t *testing.T) {
	for _, sym := range []string{"CYP2D6", "CYP2C19", "CYP2C9", "VKORC1", "SLCO1B1", "TPMT", "DPYD"} {
		g, ok := Lookup(sym)
		require.True(t, ok, sym)
		assert.NotEmpty(t, g.Chromosome, sym)
		assert.NotEmpty(t, g.Markers, sym)
		assert.Less(t, g.Start, g.End, sym)
	}
	assert.Len(t, Genes(), 7)
}

func TestLookup_CaseAndAlias(t *testing.T) {
	g, ok := Lookup("cyp2d6")
	require.True(t, ok)
	assert.Equal(t, "CYP2D6", g.Symbol)

	g, ok = Lookup("OATP1B1")
	require.True(t, ok)
	assert.Equal(t, "SLCO1B1", g.Symbol)

	_, ok = Lookup(UnknownGene)
	assert.False(t, ok)
}

func TestGeneDefinition_MarkerIDs(t *testing.T) {
	g, _ := Lookup("CYP2D6")
	assert.Equal(t, []string{"rs3892097", "rs1065852", "rs16947", "rs28371725"}, g.MarkerIDs())
}

func TestLookup_ReturnsCopy(t *testing.T) {
	g, _ := Lookup("TPMT")
	g.Markers[0].ID = "mutated"

	again, _ := Lookup("TPMT")
	assert.Equal(t, "rs1142345", again.Markers[0].ID)

	all := Genes()
	all[0].Markers = nil
	assert.NotEmpty(t, Genes()[0].Markers)
}

func TestChromosomesFor(t *testing.T) {
	assert.Equal(t, []string{"1", "10", "12", "16", "22", "6"}, ChromosomesFor())
	assert.Equal(t, []string{"10", "22"}, ChromosomesFor("CYP2D6", "cyp2c19", "CYP2C9", "NOPE"))
	assert.Empty(t, ChromosomesFor("NOPE"))
}

func TestGeneDefinition_Contains(t *testing.T) {
	g, _ := Lookup("CYP2D6")
	assert.True(t, g.Contains("chr22", 42522501))
	assert.True(t, g.Contains("22", g.End))
	assert.False(t, g.Contains("22", g.End+1))
	assert.False(t, g.Contains("10", 42522501))
}
