package crawler

import (
	"strings"
	"testing"

	"excursion-catalog/internal/domain"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ritsaPage = `<html>
<head>
  <title>Экскурсии: Озеро Рица</title>
  <meta name="description" content="Поездка на озеро Рица">
  <style>.price { color: red }</style>
  <script>var price = "9999 руб";</script>
</head>
<body>
  <nav><a href="/">Главная</a> <a href="/ekskursii/">Экскурсии</a></nav>
  <h1>Озеро Рица</h1>
  <h2>Программа</h2>
  <p>Путешествие к высокогорному озеру через Гегский водопад.</p>
  <p>Коротко</p>
  <div class="price">Цена: 2500 руб</div>
  <div class="duration">Продолжительность: 12 часов</div>
  <div class="pickup">Отправление из Адлера - 2500р.взр./ 1500р.дет.(до 12 лет)</div>
  <ul>
    <li>Отправление из Сочи – 2700 р.</li>
  </ul>
  <ul>
    <li>500р. / 300р. (до 12 лет) – обед в кафе.</li>
    <li>1200р. – билет на канатную дорогу.</li>
  </ul>
  <span data-price="2500">2500 р.</span>
  <img src="/images/virtuemart/product/ritsa.jpg" alt="Рица">
  <a href="gallery.html">Фотогалерея</a>
</body>
</html>`

const ritsaURL = "https://hostaotdykh.ru/ekskursii/abhaziya/ritsa-detail.html"

func parseHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestStrippedText(t *testing.T) {
	doc := parseHTML(t, `<div id="x"> Цена: <b> 500 </b>руб<script>ignored()</script></div>`)
	assert.Equal(t, "Цена:500руб", strippedText(doc.Find("#x")))
}

func TestExtractText(t *testing.T) {
	doc := parseHTML(t, ritsaPage)
	text := ExtractText(doc, ritsaURL)

	assert.Equal(t, "Экскурсии: Озеро Рица", text.Title)
	assert.Equal(t, "Поездка на озеро Рица", text.Description)
	assert.Equal(t, []domain.Heading{{Level: "h1", Text: "Озеро Рица"}, {Level: "h2", Text: "Программа"}}, text.Content.Headings)
	assert.Equal(t, []string{"Путешествие к высокогорному озеру через Гегский водопад."}, text.Content.Paragraphs)
	require.Len(t, text.Content.Lists, 2)
	assert.Equal(t, []string{"Отправление из Сочи – 2700 р."}, text.Content.Lists[0])
	assert.Contains(t, text.Content.DivsText, "Цена: 2500 руб")
	assert.Contains(t, text.Content.DivsText, "Отправление из Адлера - 2500р.взр./ 1500р.дет.(до 12 лет)")
	assert.Equal(t, []string{"2500 р."}, text.Content.SpansText)
	assert.Equal(t, []string{"data-price: 2500"}, text.Content.DataAttributes)
	assert.Contains(t, text.Links, domain.Link{Text: "Фотогалерея", URL: "https://hostaotdykh.ru/ekskursii/abhaziya/gallery.html"})
	assert.Contains(t, text.Links, domain.Link{Text: "Главная", URL: "https://hostaotdykh.ru/"})

	assert.Zero(t, doc.Find("script").Length())
	assert.NotContains(t, doc.Text(), "9999")
}

func TestExtractImages(t *testing.T) {
	doc := parseHTML(t, `<img src="/a.jpg" alt="A"><img src=""><img src="https://cdn.example/b.png">`)
	images := ExtractImages(doc, "https://hostaotdykh.ru/ekskursii/")

	assert.Equal(t, []domain.Image{
		{URL: "https://hostaotdykh.ru/a.jpg", Alt: "A", Page: "https://hostaotdykh.ru/ekskursii/"},
		{URL: "https://cdn.example/b.png", Page: "https://hostaotdykh.ru/ekskursii/"},
	}, images)
}

func TestExtractContacts(t *testing.T) {
	doc := parseHTML(t, `<body>
<p>Телефон: +7 (988) 123-45-67</p>
<p>Ещё: 8 918 765 43 21</p>
<p>Почта: info@hostaotdykh.ru, info@hostaotdykh.ru</p>
<p>Адрес: г. Сочи, ул. Ленина 1</p>
</body>`)
	c := ExtractContacts(doc)

	assert.Contains(t, c.Phones, "+7 (988) 123-45-67")
	assert.Equal(t, []string{"info@hostaotdykh.ru"}, c.Emails)
	require.NotEmpty(t, c.Addresses)
	assert.Contains(t, c.Addresses[0], "Сочи")
	assert.False(t, c.IsEmpty())
}

func TestFindLinks(t *testing.T) {
	doc := parseHTML(t, `<body>
<a href="ritsa.html">Рица</a>
<a href="/a.html?x=1#y">A</a>
<a href="/a.html?x=1">A again</a>
<a href="#top">Наверх</a>
<a href="javascript:void(0)">JS</a>
<a href="mailto:info@hostaotdykh.ru">Почта</a>
<a href="https://other.example/x">Чужой</a>
<a href="">Пусто</a>
</body>`)

	links := FindLinks(doc, "http://hostaotdykh.ru/ekskursii/index.html", "hostaotdykh.ru")
	assert.Equal(t, []string{
		"http://hostaotdykh.ru/ekskursii/ritsa.html",
		"http://hostaotdykh.ru/a.html?x=1",
	}, links)
}

func TestIsSkippedFile(t *testing.T) {
	assert.True(t, IsSkippedFile("https://hostaotdykh.ru/files/price.pdf"))
	assert.True(t, IsSkippedFile("https://hostaotdykh.ru/templates/site.css"))
	assert.False(t, IsSkippedFile("https://hostaotdykh.ru/ekskursii/ritsa-detail.html"))
}

func TestNavigation(t *testing.T) {
	doc := parseHTML(t, ritsaPage)
	nav := Navigation(doc, ritsaURL)
	assert.Equal(t, []domain.Link{
		{Text: "Главная", URL: "https://hostaotdykh.ru/"},
		{Text: "Экскурсии", URL: "https://hostaotdykh.ru/ekskursii/"},
	}, nav)
}

func TestContactsMerge(t *testing.T) {
	c := Contacts{Phones: []string{"1"}}
	c.Merge(Contacts{Phones: []string{"1", "2"}, Emails: []string{"a@b.ru"}})

	assert.Equal(t, []string{"1", "2"}, c.Phones)
	assert.Equal(t, []string{"a@b.ru"}, c.Emails)
	assert.True(t, Contacts{}.IsEmpty())
}
