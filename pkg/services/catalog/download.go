package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/cavaliergopher/grab/v3"
)

// DownloadedFile is a catalog file saved to a temporary directory.
type DownloadedFile struct {
	Path     string
	FileName string
	Size     int64
	dir      string
}

// Cleanup removes the temporary directory of the file.
func (f *DownloadedFile) Cleanup() {
	if f.dir != "" {
		_ = os.RemoveAll(f.dir)
	}
}

// Download follows a detail page to its mirror page and fetches the file
// behind the GET link. The caller must call Cleanup on the result.
func (c *Client) Download(ctx context.Context, detailUrl string) (*DownloadedFile, error) {
	fileUrl, err := c.resolveDownloadUrl(ctx, detailUrl)
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp(c.cnf.DownloadDir, "catalog-*")
	if err != nil {
		return nil, err
	}

	req, err := grab.NewRequest(dir, fileUrl)
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}
	req = req.WithContext(ctx)

	resp := c.grabClient.Do(req)
	if err = resp.Err(); err != nil {
		_ = os.RemoveAll(dir)
		if grab.IsStatusCodeError(err) {
			code := 0
			if resp.HTTPResponse != nil {
				code = resp.HTTPResponse.StatusCode
			}
			return nil, &UpstreamError{URL: fileUrl, StatusCode: code}
		}
		return nil, &UpstreamError{URL: fileUrl, Err: err}
	}

	c.logger.WithField("file", resp.Filename).Infoln("catalog file downloaded")
	return &DownloadedFile{
		Path:     resp.Filename,
		FileName: filepath.Base(resp.Filename),
		Size:     resp.BytesComplete(),
		dir:      dir,
	}, nil
}

func (c *Client) resolveDownloadUrl(ctx context.Context, detailUrl string) (string, error) {
	doc, err := c.fetch(ctx, detailUrl)
	if err != nil {
		return "", err
	}

	mirrorLink := doc.Find("a").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(s.Text(), c.cnf.MirrorLinkText)
	}).First()
	href, ok := mirrorLink.Attr("href")
	if !ok {
		return "", &ParseError{Msg: fmt.Sprintf("Mirror link '%s' not found.", c.cnf.MirrorLinkText)}
	}

	mirrorUrl, err := resolve(detailUrl, href)
	if err != nil {
		return "", err
	}

	mirror, err := c.fetch(ctx, mirrorUrl)
	if err != nil {
		return "", err
	}

	downloadDiv := mirror.Find("div#download").First()
	if downloadDiv.Length() == 0 {
		return "", &ParseError{Msg: "<div id='download'> not found in mirror page."}
	}

	getLink := downloadDiv.Find("a").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.TrimSpace(s.Text()) == "GET"
	}).First()
	href, ok = getLink.Attr("href")
	if !ok {
		return "", &ParseError{Msg: "GET download link not found."}
	}

	return resolve(mirrorUrl, href)
}
