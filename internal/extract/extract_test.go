package extract

import (
	"testing"

	"excursion-catalog/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsDetailPage(t *testing.T) {
	testCases := []struct {
		url      string
		expected bool
	}{
		{"https://hostaotdykh.ru/ekskursii-sochi/krasnaya-polyana-detail.html", true},
		{"https://hostaotdykh.ru/", false},
		{"https://hostaotdykh.ru/ekskursii-sochi.html", false},
		{"https://hostaotdykh.ru/ekskursii-sochi/dirDesc.html?detail.html", false},
		{"https://hostaotdykh.ru/kalendar.html/detail.html", false},
		{"", false},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, IsDetailPage(tc.url), "IsDetailPage(%q)", tc.url)
	}
}

func TestSourceCategory(t *testing.T) {
	assert.Equal(t, SourceSochi, SourceCategory("https://hostaotdykh.ru/ekskursii-sochi/a-detail.html"))
	assert.Equal(t, SourceAbkhazia, SourceCategory("https://hostaotdykh.ru/ekskursii-abkhaziya/b-detail.html"))
	assert.Equal(t, SourceGeneral, SourceCategory("https://hostaotdykh.ru/morskie/c-detail.html"))
}

func TestImages(t *testing.T) {
	got := Images([]domain.Image{
		{URL: "https://hostaotdykh.ru/images/oldlogo.png"},
		{URL: "https://hostaotdykh.ru/images/virtuemart/product/ritsa.jpg", Alt: "Рица", Page: "p"},
		{URL: "https://hostaotdykh.ru/components/com_virtuemart/assets/images/vmgeneral/cart.png"},
		{URL: "https://mc.yandex.ru/watch/1"},
		{URL: ""},
		{URL: "https://hostaotdykh.ru/images/virtuemart/product/resized/ritsa2.jpg"},
	})

	assert.Equal(t, []domain.Image{
		{URL: "https://hostaotdykh.ru/images/virtuemart/product/ritsa.jpg", Alt: "Рица", IsMain: true},
		{URL: "https://hostaotdykh.ru/images/virtuemart/product/resized/ritsa2.jpg"},
	}, got)

	assert.NotNil(t, Images(nil))
}

func TestContent(t *testing.T) {
	got := Content(&domain.Content{
		Headings: []domain.Heading{
			{Level: "h1", Text: "Озеро Рица"},
			{Level: "h3", Text: "Контакты"},
			{Level: "h3", Text: "ССЫЛКИ"},
		},
		Paragraphs: []string{
			"Выезд в 7:00 от гостиницы, возвращение вечером.",
			`ООО "Хостинский Отдых", ИНН: 2367000000`,
			"Звоните: 8 (988) 000-00-00",
			"  короткий  ",
		},
		Lists: [][]string{
			{"Главная", "Экскурсии", "Контакты"},
			{"г. Сочи, ул. Ленина 1"},
			{"Рица", "Гегский водопад", "Медовая ферма"},
			{},
		},
		DivsText:  []string{"Цена: 2500 руб"},
		SpansText: []string{"2500 р."},
	})

	assert.Equal(t, []domain.Heading{{Level: "h1", Text: "Озеро Рица"}}, got.Headings)
	assert.Equal(t, []string{"Выезд в 7:00 от гостиницы, возвращение вечером."}, got.Paragraphs)
	assert.Equal(t, [][]string{{"Рица", "Гегский водопад", "Медовая ферма"}}, got.Lists)
	assert.Empty(t, got.DivsText)
	assert.Empty(t, got.SpansText)
}

func TestContentKeepsLongListsMentioningNav(t *testing.T) {
	items := make([]string, 16)
	for i := range items {
		items[i] = "Экскурсии по побережью"
	}
	got := Content(&domain.Content{Lists: [][]string{items}})
	assert.Len(t, got.Lists, 1)
}

func TestContentNil(t *testing.T) {
	got := Content(nil)
	require.NotNil(t, got)
	assert.True(t, got.IsEmpty())
}

func TestCatalog(t *testing.T) {
	records := []domain.RawExcursion{
		{URL: "https://hostaotdykh.ru/", Title: "Главная"},
		{
			URL:          "https://hostaotdykh.ru/ekskursii-abkhaziya/ritsa-detail.html",
			Title:        "Экскурсии: Озеро Рица",
			Price:        "2500 руб",
			PickupPoints: []domain.PickupPoint{{Location: "Адлера", Price: "2500 р."}},
			Images:       []domain.Image{{URL: "https://hostaotdykh.ru/images/virtuemart/product/ritsa.jpg"}},
			Links:        []domain.Link{{Text: "Назад", URL: "https://hostaotdykh.ru/"}},
		},
		{URL: "https://hostaotdykh.ru/ekskursii-sochi.html", Title: "Экскурсии по Сочи"},
		{
			URL:             "https://hostaotdykh.ru/ekskursii-sochi/polyana-detail.html",
			Title:           "Красная Поляна",
			Duration:        "10 ч",
			AdditionalCosts: []domain.AdditionalCost{{Price: "1500р.", Description: "билет на канатную дорогу"}},
		},
	}

	doc := Catalog(records)
	require.Equal(t, 2, doc.Total)
	require.Len(t, doc.Excursions, 2)

	ritsa := doc.Excursions[0]
	assert.Equal(t, SourceAbkhazia, ritsa.SourceCategory)
	assert.Equal(t, 1, ritsa.ImageCount)
	assert.True(t, ritsa.Images[0].IsMain)
	assert.Len(t, ritsa.Links, 1)
	require.NotNil(t, ritsa.Content)

	polyana := doc.Excursions[1]
	assert.Equal(t, SourceSochi, polyana.SourceCategory)
	assert.NotNil(t, polyana.Links)

	assert.Equal(t, Stats{
		Total:          2,
		WithPrice:      1,
		WithDuration:   1,
		WithPickups:    1,
		WithExtraCosts: 1,
		Images:         1,
	}, Summarize(doc))
}

func TestURLs(t *testing.T) {
	got := URLs([]domain.RawExcursion{
		{URL: "https://hostaotdykh.ru/ekskursii-sochi/b-detail.html"},
		{URL: "https://hostaotdykh.ru/uslugi/transfer.html"},
		{URL: "https://hostaotdykh.ru/ekskursii-abkhaziya/a-detail.html"},
		{URL: "https://hostaotdykh.ru/ekskursii-sochi/b-detail.html"},
		{},
	})
	assert.Equal(t, []string{
		"https://hostaotdykh.ru/ekskursii-abkhaziya/a-detail.html",
		"https://hostaotdykh.ru/ekskursii-sochi/b-detail.html",
	}, got)
}
