package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/garcom-app/models"
	"github.com/yeremiapane/garcom-app/variant"
)

func catalog() Snapshot {
	return Snapshot{
		1: {ID: 1, Name: "Soda", OptionType: models.OptionSoda},
		2: {ID: 2, Name: "Pastel", OptionType: models.OptionFlavors, Flavors: []string{"Frango com queijo", "Sertanejo"}},
		3: {ID: 3, Name: "Agua", OptionType: models.OptionPlain},
	}
}

func TestIncrementNeverLeavesZeroEntries(t *testing.T) {
	c := New()
	k := variant.Soda(1, "Lata", "Zero")

	assert.Equal(t, 1, c.Increment(k, 1))
	assert.Equal(t, 0, c.Increment(k, -1))
	assert.True(t, c.Empty())
	assert.Empty(t, c.Lines(catalog()))

	// decrementing an absent key is a no-op, never negative
	assert.Equal(t, 0, c.Increment(k, -3))
	assert.Zero(t, c.ProductQuantity(1))
	assert.True(t, c.Empty())
}

func TestQuantitiesAggregatePerProduct(t *testing.T) {
	c := New()
	c.Increment(variant.Soda(1, "Lata", "Zero"), 2)
	c.Increment(variant.Soda(1, "Litro", "Normal"), 1)
	c.Increment(variant.Flavored(2, "Sertanejo"), 1)
	c.Increment(variant.Soda(1, "Lata", "Zero"), 1)

	assert.Equal(t, 4, c.ProductQuantity(1))
	assert.Equal(t, 1, c.ProductQuantity(2))
	assert.Equal(t, 0, c.ProductQuantity(3))
	assert.Equal(t, 5, c.TotalItemCount())
}

func TestRemoveProductDropsAllVariants(t *testing.T) {
	c := New()
	c.Increment(variant.Soda(1, "Lata", "Zero"), 2)
	c.Increment(variant.Soda(1, "KS", "Normal"), 1)
	c.Increment(variant.Plain(3), 1)

	assert.Equal(t, 2, c.RemoveProduct(1))
	assert.Equal(t, 0, c.ProductQuantity(1))
	assert.Equal(t, 1, c.TotalItemCount())

	lines := c.Lines(catalog())
	require.Len(t, lines, 1)
	assert.Equal(t, "3", lines[0].EncodedKey)
}

func TestLinesKeepInsertionOrderAndSharedNotes(t *testing.T) {
	c := New()
	c.Increment(variant.Flavored(2, "Frango com queijo"), 1)
	c.Increment(variant.Soda(1, "Lata", "Zero"), 2)
	c.Increment(variant.Flavored(2, "Sertanejo"), 1)
	c.SetNote(2, "  sem cebola ")

	lines := c.Lines(catalog())
	require.Len(t, lines, 3)

	assert.Equal(t, "Pastel (Frango com queijo)", lines[0].Description())
	assert.Equal(t, "sem cebola", lines[0].Note)
	assert.Equal(t, "Soda (Lata Zero)", lines[1].Description())
	assert.Equal(t, 2, lines[1].Quantity)
	assert.Equal(t, "1-Lata-Zero", lines[1].EncodedKey)
	assert.Empty(t, lines[1].Note)
	assert.Equal(t, "Sertanejo", lines[2].Label)
	assert.Equal(t, "sem cebola", lines[2].Note)
}

func TestLinesSkipProductsMissingFromCatalog(t *testing.T) {
	c := New()
	c.Increment(variant.Plain(3), 1)
	c.Increment(variant.Plain(99), 4)

	lines := c.Lines(catalog())
	require.Len(t, lines, 1)
	assert.Equal(t, uint(3), lines[0].Product.ID)
	// the entry itself is still counted until it is removed
	assert.Equal(t, 5, c.TotalItemCount())
}

func TestAppendTagAndReset(t *testing.T) {
	c := New()
	assert.Equal(t, "#Gelo", c.AppendTag(1, "#Gelo"))
	assert.Equal(t, "#Gelo #Limao", c.AppendTag(1, "#Limao"))
	c.Increment(variant.Soda(1, "Lata", "Zero"), 1)
	c.SetNote(1, "")
	lines := c.Lines(catalog())
	require.Len(t, lines, 1)
	assert.Empty(t, lines[0].Note)

	c.Increment(variant.Plain(3), 1)
	c.AppendTag(3, "#Gelo")
	c.Reset()
	assert.True(t, c.Empty())
	c.Increment(variant.Plain(3), 1)
	assert.Empty(t, c.Lines(catalog())[0].Note)
}

func TestSettleKeepsWhatWasAddedAfterListing(t *testing.T) {
	c := New()
	zero := variant.Soda(1, "Lata", "Zero")
	c.Increment(zero, 2)
	c.Increment(variant.Plain(3), 1)
	c.SetNote(3, "gelada")
	c.SetNote(1, "#Gelo")

	committed := c.Lines(catalog())
	// another request lands between listing and commit
	c.Increment(zero, 1)

	c.Settle(committed)
	lines := c.Lines(catalog())
	require.Len(t, lines, 1)
	assert.Equal(t, "1-Lata-Zero", lines[0].EncodedKey)
	assert.Equal(t, 1, lines[0].Quantity)
	assert.Equal(t, "#Gelo", lines[0].Note)

	c.Increment(variant.Plain(3), 1)
	assert.Empty(t, c.Lines(catalog())[1].Note, "the note left with its last variant")
}

func TestStoreKeepsOneCartPerTable(t *testing.T) {
	s := NewStore()
	s.Update("table-a", func(c *Cart) { c.Increment(variant.Plain(3), 1) })
	s.Update("table-a", func(c *Cart) { c.Increment(variant.Plain(3), 2) })

	a, ok := s.Peek("table-a")
	require.True(t, ok)
	assert.Equal(t, 3, a.TotalItemCount())
	_, ok = s.Peek("table-b")
	assert.False(t, ok)

	s.Discard("table-a")
	_, ok = s.Peek("table-a")
	assert.False(t, ok)
	assert.True(t, a.Empty(), "a discarded cart is emptied for anyone still holding it")
}

func TestStoreSettleDropsOnlyEmptyCarts(t *testing.T) {
	s := NewStore()
	s.Update("t1", func(c *Cart) { c.Increment(variant.Plain(3), 2) })
	c, _ := s.Peek("t1")
	committed := c.Lines(catalog())

	s.Update("t1", func(c *Cart) { c.Increment(variant.Soda(1, "KS", "Normal"), 1) })
	s.Settle("t1", committed)
	left, ok := s.Peek("t1")
	require.True(t, ok)
	assert.Equal(t, 1, left.TotalItemCount())

	s.Settle("t1", left.Lines(catalog()))
	_, ok = s.Peek("t1")
	assert.False(t, ok)

	s.Settle("missing", committed)
}

func TestSuggestedTags(t *testing.T) {
	soda := &models.Product{Name: "Soda", OptionType: models.OptionSoda}
	assert.Equal(t, []string{"#Gelo", "#S/Gelo", "#Limao", "#S/Limao"}, SuggestedTags(soda))

	caipirinha := &models.Product{Name: "Caipirinha", IsDrink: true}
	assert.Equal(t, []string{"#Com Álcool", "#Sem Álcool", "#Pouco Álcool"}, SuggestedTags(caipirinha))

	coca := &models.Product{Name: "Coca Cola", IsDrink: true}
	assert.Len(t, SuggestedTags(coca), 7)

	assert.Empty(t, SuggestedTags(&models.Product{Name: "Pastel"}))
}
