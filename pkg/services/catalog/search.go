package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/goccy/go-json"
)

// Search looks up query in the catalog and returns at most the first page of
// n results. Identical searches running at the same time share one request.
func (c *Client) Search(ctx context.Context, query string, n int) ([]Book, error) {
	if c.cache != nil {
		if data, err := c.cache.GetCatalogSearch(ctx, query, n); err != nil {
			c.logger.WithError(err).Warnln("failed to read search cache")
		} else if data != nil {
			var books []Book
			if err = json.Unmarshal(data, &books); err == nil {
				return books, nil
			}
		}
	}

	key := fmt.Sprintf("%d:%s", n, query)
	// the shared fetch must outlive the caller which started it
	sharedCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (interface{}, error) {
		fetchCtx, cancel := context.WithCancel(sharedCtx)
		if c.cnf.Timeout > 0 {
			fetchCtx, cancel = context.WithTimeout(sharedCtx, c.cnf.Timeout)
		}
		defer cancel()

		books, err := c.search(fetchCtx, query, n)
		if err != nil {
			return nil, err
		}
		c.storeSearch(fetchCtx, query, n, books)
		return books, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]Book), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Client) storeSearch(ctx context.Context, query string, n int, books []Book) {
	if c.cache == nil || len(books) == 0 {
		return
	}
	data, err := json.Marshal(books)
	if err != nil {
		return
	}
	if err = c.cache.SetCatalogSearch(ctx, query, n, data, c.cnf.CacheTTL); err != nil {
		c.logger.WithError(err).Warnln("failed to store search cache")
	}
}

func (c *Client) search(ctx context.Context, query string, n int) ([]Book, error) {
	params := url.Values{}
	params.Set("req", query)
	params.Set("open", "0")
	params.Set("res", strconv.Itoa(n))
	params.Set("view", "simple")
	params.Set("phrase", "1")
	params.Set("column", "def")

	doc, err := c.fetch(ctx, c.cnf.BaseUrl+"/search.php?"+params.Encode())
	if err != nil {
		return nil, err
	}
	return parseSearchResults(doc, c.cnf.BaseUrl), nil
}

// parseSearchResults reads the results table. The first row is the header,
// the third cell holds the title link.
func parseSearchResults(doc *goquery.Document, baseUrl string) []Book {
	books := make([]Book, 0)
	table := doc.Find("table.c").First()
	if table.Length() == 0 {
		return books
	}

	table.Find("tr").Slice(1, goquery.ToEnd).Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() <= 2 {
			return
		}
		link := cells.Eq(2).Find("a").First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		books = append(books, Book{
			Title: strippedText(link),
			Link:  baseUrl + "/" + href,
		})
	})
	return books
}

// strippedText joins the trimmed, non empty text nodes below sel with a space.
func strippedText(sel *goquery.Selection) string {
	var parts []string
	var walk func(s *goquery.Selection)
	walk = func(s *goquery.Selection) {
		s.Contents().Each(func(_ int, child *goquery.Selection) {
			if goquery.NodeName(child) == "#text" {
				if t := strings.TrimSpace(child.Text()); t != "" {
					parts = append(parts, t)
				}
				return
			}
			walk(child)
		})
	}
	walk(sel)
	return strings.Join(parts, " ")
}
