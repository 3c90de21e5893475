package client_test

import (
	"testing"

	"github.com/shashiranjanraj/bazaar/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductSearch(t *testing.T) {
	app := client.NewApp(startServer(t), client.NewMemoryStorage())

	res := app.Products.Search(client.ProductFilter{})
	require.True(t, res.Success, res.Error)

	state := app.Products.State()
	assert.Len(t, state.Products, 3)
	assert.EqualValues(t, 3, state.Pagination.Total)
	assert.False(t, state.Loading)

	res = app.Products.Search(client.ProductFilter{Category: "books"})
	require.True(t, res.Success, res.Error)
	state = app.Products.State()
	require.Len(t, state.Products, 1)
	assert.Equal(t, "Fixture Novel", state.Products[0].Title)
	assert.Equal(t, "books", state.Filter.Category)

	res = app.Products.Search(client.ProductFilter{Search: "keyboard"})
	require.True(t, res.Success, res.Error)
	require.Len(t, app.Products.State().Products, 1)
}

func TestProductDetail(t *testing.T) {
	app := client.NewApp(startServer(t), client.NewMemoryStorage())

	res := app.Products.Search(client.ProductFilter{Search: "keyboard"})
	require.True(t, res.Success, res.Error)
	id := app.Products.State().Products[0].ID

	res = app.Products.LoadDetail(id)
	require.True(t, res.Success, res.Error)

	detail := app.Products.State().Detail
	require.NotNil(t, detail)
	assert.Equal(t, "Fixture Keyboard", detail.Title)
	assert.InDelta(t, 49.00, detail.Price, 0.001)

	// A missing listing is an error value, and the old detail stays put.
	res = app.Products.LoadDetail(424242)
	require.False(t, res.Success)
	assert.Equal(t, "Product not found", res.Error)
	assert.NotNil(t, app.Products.State().Detail)
	assert.Equal(t, "Product not found", app.Products.State().Err)
}

func TestProductBootstrap(t *testing.T) {
	app := client.NewApp(startServer(t), client.NewMemoryStorage())

	res := app.Products.Bootstrap()
	require.True(t, res.Success, res.Error)

	state := app.Products.State()
	// Only the keyboard fixture carries a featured-grade rating.
	require.Len(t, state.Featured, 1)
	assert.Equal(t, "Fixture Keyboard", state.Featured[0].Title)

	require.Len(t, state.Categories, 2)
	assert.Equal(t, "electronics", state.Categories[0].Category)
	assert.EqualValues(t, 2, state.Categories[0].Count)
}
