package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "smith-portable-buildings", Slugify("Smith Portable Buildings"))
	assert.Equal(t, "joe-s-sheds", Slugify("  Joe's Sheds  "))
	assert.Equal(t, "a1-barns", Slugify("A1 Barns!"))
	// Unusable names fall back to a generated slug rather than colliding on "".
	assert.NotEmpty(t, Slugify("!!!"))
}

func TestCreateDealerSlugCollision(t *testing.T) {
	database := openTestDB(t)

	first, err := CreateDealer(database, "Smith Sheds", "premier")
	require.NoError(t, err)
	assert.Equal(t, "smith-sheds", first.Slug)
	assert.Equal(t, "premier", first.Manufacturer)

	second, err := CreateDealer(database, "Smith Sheds", "premier")
	require.NoError(t, err)
	assert.Equal(t, "smith-sheds-2", second.Slug)

	third, err := CreateDealer(database, "Smith Sheds", "premier")
	require.NoError(t, err)
	assert.Equal(t, "smith-sheds-3", third.Slug)
}

func TestCreateDealerValidation(t *testing.T) {
	database := openTestDB(t)

	_, err := CreateDealer(database, "", "premier")
	require.Error(t, err)

	_, err = CreateDealer(database, "Smith Sheds", "unknown-brand")
	require.Error(t, err)
}

func TestGetDealerBySlug(t *testing.T) {
	database := openTestDB(t)
	created, err := CreateDealer(database, "Smith Sheds", "graceland")
	require.NoError(t, err)

	loaded, err := GetDealerBySlug(database, "smith-sheds")
	require.NoError(t, err)
	assert.Equal(t, created.ID, loaded.ID)

	_, err = GetDealerBySlug(database, "nope")
	require.Error(t, err)
	var serviceErr ServiceError
	require.ErrorAs(t, err, &serviceErr)
	assert.Equal(t, 404, serviceErr.Status)
}
