package catalog

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"price-recon/internal/reconcile/model"
	"price-recon/internal/reconcile/service"
)

// Промо-плашки, которые в тексте страницы стоят отдельными строками.
var promoLabels = map[string]struct{}{
	"ESPECIAL":     {},
	"OFERTA":       {},
	"PARTICIPANTE": {},
}

type storeBItem struct {
	Data struct {
		HTML string `json:"html_data"`
	} `json:"data"`
}

// ParseStoreB: [{"data":{"html_data":"<html>..."}}] — по странице на элемент.
func ParseStoreB(r io.Reader) ([]model.Product, error) {
	var items []storeBItem
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, eris.Wrap(err, "decode store B export")
	}
	var products []model.Product
	for i, it := range items {
		if strings.TrimSpace(it.Data.HTML) == "" {
			continue
		}
		page, err := ParseStoreBHTML(strings.NewReader(it.Data.HTML))
		if err != nil {
			return nil, eris.Wrapf(err, "page %d", i)
		}
		products = append(products, page...)
	}
	return products, nil
}

// ParseStoreBHTML разбирает одну страницу. Если есть карточки .product-grid-item —
// читаем их по разметке, иначе угадываем товары по тексту страницы.
func ParseStoreBHTML(r io.Reader) ([]model.Product, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, eris.Wrap(err, "parse html")
	}
	if cards := doc.Find(".product-grid-item"); cards.Length() > 0 {
		return parseCards(cards), nil
	}
	return parseLines(strippedStrings(doc.Nodes...)), nil
}

func parseCards(cards *goquery.Selection) []model.Product {
	var products []model.Product
	cards.Each(func(_ int, card *goquery.Selection) {
		var name string
		if link := card.Find("h3").First().Find("a").First(); link.Length() > 0 {
			name = strings.TrimSpace(link.Text())
		} else {
			name = textOf(card)
		}
		// вторичные данные (вес/объём) у магазина в <p class="... text-muted">
		if qty := textOf(card.Find("p[class*='text-muted']").First()); qty != "" {
			name += " " + qty
		}
		price := textOf(card.Find("p[class*='precio']").First())

		p := model.Product{Name: service.NormalizeName(name), Price: service.NormalizePrice(price)}
		if p.Name != "" && p.Price != "" {
			products = append(products, p)
		}
	})
	return products
}

// parseLines — эвристика для страниц без разметки: товар это "имя, [количество], цена",
// цена узнаётся по "$". Если группа не сходится, сдвигаемся на одну строку
// и ищем следующую цену, а не режем страницу по три строки вслепую.
func parseLines(lines []string) []model.Product {
	filtered := lines[:0:0]
	for _, l := range lines {
		if _, promo := promoLabels[strings.ToUpper(l)]; !promo {
			filtered = append(filtered, l)
		}
	}

	var (
		products []model.Product
		skipped  int
	)
	for i := 0; i < len(filtered); {
		switch {
		case isPriceLine(filtered[i]):
			skipped++
			i++
		case i+1 < len(filtered) && isPriceLine(filtered[i+1]):
			products = appendLine(products, filtered[i], filtered[i+1])
			i += 2
		case i+2 < len(filtered) && isPriceLine(filtered[i+2]):
			products = appendLine(products, filtered[i]+" "+filtered[i+1], filtered[i+2])
			i += 3
		default:
			skipped++
			i++
		}
	}
	if skipped > 0 {
		log.Debug().Int("lines", len(filtered)).Int("skipped", skipped).Int("products", len(products)).
			Msg("store B: unaligned lines skipped")
	}
	return products
}

func isPriceLine(s string) bool { return strings.Contains(s, "$") }

func appendLine(products []model.Product, name, price string) []model.Product {
	p := model.Product{Name: service.NormalizeName(name), Price: service.NormalizePrice(price)}
	if p.Name == "" || p.Price == "" {
		return products
	}
	return append(products, p)
}

// textOf — как get_text(strip=True): обрезанные текстовые узлы подряд, без разделителя.
func textOf(sel *goquery.Selection) string {
	return strings.Join(strippedStrings(sel.Nodes...), "")
}

// strippedStrings — все непустые текстовые узлы (обрезанные) в порядке документа.
func strippedStrings(nodes ...*html.Node) []string {
	var out []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if s := strings.TrimSpace(n.Data); s != "" {
				out = append(out, s)
			}
			return
		case html.CommentNode:
			return
		case html.ElementNode:
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript, atom.Template:
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return out
}
