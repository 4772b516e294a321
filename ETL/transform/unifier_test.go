package transform

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LilVoxy/appmarket_intel/ETL/models"
)

func TestAndroidAppID(t *testing.T) {
	id := AndroidAppID("Instagram")
	assert.True(t, strings.HasPrefix(id, "gp_"))
	assert.Equal(t, id, AndroidAppID("Instagram"), "id must be stable across runs")
	assert.LessOrEqual(t, len(id), len("gp_999999"))
}

func TestIOSAppID(t *testing.T) {
	assert.Equal(t, "ios_389801252", IOSAppID(389801252))
}

func TestCategoryMap(t *testing.T) {
	cm := DefaultCategoryMap()

	assert.Equal(t, "Games", cm.Map(models.PlatformAndroid, "GAME"))
	assert.Equal(t, "Social", cm.Map(models.PlatformIOS, "Social Networking"))
	assert.Equal(t, "Education", cm.Map(models.PlatformIOS, "Reference"))
	assert.Equal(t, "Photo & Video", cm.Map(models.PlatformAndroid, "VIDEO_PLAYERS"))

	// неизвестная метка проходит как есть
	assert.Equal(t, "Book", cm.Map(models.PlatformIOS, "Book"))
	assert.Equal(t, "1.9", cm.Map(models.PlatformAndroid, "1.9"))
	// метки одной платформы не применяются к другой
	assert.Equal(t, "GAME", cm.Map(models.PlatformIOS, "GAME"))
	assert.Equal(t, UncategorizedLabel, cm.Map(models.PlatformAndroid, "  "))
}

func TestUnifier_Unify(t *testing.T) {
	u := NewUnifier(DefaultCategoryMap())

	android := []models.NormalizedRecord{
		{Platform: models.PlatformAndroid, Name: "Puzzle", Category: "GAME", AppType: "Free",
			Rating: models.FloatOf(4.1), ReviewCount: 10, SizeMB: models.NullFloat{}},
		{Platform: models.PlatformAndroid, Name: "Pro Tool", Category: "TOOLS", AppType: "NaN", PriceUSD: 2.99},
		{Platform: models.PlatformAndroid, Name: "Odd", Category: "", AppType: ""},
	}
	ios := []models.NormalizedRecord{
		{Platform: models.PlatformIOS, Name: "Camera+", SourceID: 42, Category: "Photo & Video",
			SizeBytes: 52428800, PriceUSD: 1.99, Developer: "LateNite"},
		{Platform: models.PlatformIOS, Name: "Free Book", SourceID: 43, Category: "Book", SizeBytes: -1},
	}

	out := u.Unify(android, ios)
	require.Len(t, out, 5)

	assert.Equal(t, []models.Platform{
		models.PlatformAndroid, models.PlatformAndroid, models.PlatformAndroid,
		models.PlatformIOS, models.PlatformIOS,
	}, []models.Platform{out[0].Platform, out[1].Platform, out[2].Platform, out[3].Platform, out[4].Platform})

	assert.Equal(t, "Games", out[0].UnifiedCategory)
	assert.Equal(t, "GAME", out[0].OriginalCategory)
	assert.False(t, out[0].SizeMB.Valid)
	assert.Equal(t, models.SourceGooglePlay, out[0].DataSource)
	assert.Empty(t, out[0].Developer)

	assert.Equal(t, models.AppTypePaid, out[1].AppType, "unknown type derived from price")
	assert.Equal(t, models.AppTypeFree, out[2].AppType)
	assert.Equal(t, UncategorizedLabel, out[2].UnifiedCategory)

	assert.Equal(t, "ios_42", out[3].AppID)
	require.True(t, out[3].SizeMB.Valid)
	assert.Equal(t, 50.0, out[3].SizeMB.Float64)
	assert.Equal(t, models.AppTypePaid, out[3].AppType)
	assert.Equal(t, int64(0), out[3].Installs)
	assert.Equal(t, models.SourceITunes, out[3].DataSource)
	assert.Equal(t, "LateNite", out[3].Developer)

	assert.Equal(t, 0.0, out[4].SizeMB.Float64)
	assert.Equal(t, "Book", out[4].UnifiedCategory)

	for _, rec := range out {
		assert.NotEmpty(t, rec.UnifiedCategory)
	}
}

func TestUnifier_ReunifyKeepsRowCount(t *testing.T) {
	u := NewUnifier(DefaultCategoryMap())
	out := u.Unify(
		[]models.NormalizedRecord{{Name: "A", Category: "GAME"}, {Name: "B", Category: "UNKNOWN_LABEL"}},
		[]models.NormalizedRecord{{Name: "C", SourceID: 1, Category: "Social Networking"}},
	)

	again := u.Reunify(out)
	require.Len(t, again, len(out))
	assert.Equal(t, out, again)

	assert.Equal(t, len(out), len(u.Reunify(again)))
}
