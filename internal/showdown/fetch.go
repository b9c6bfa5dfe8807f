package showdown

import (
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
)

// TextFetcher downloads small text documents such as pastebin raw pages.
type TextFetcher struct {
	http    *fasthttp.Client
	timeout time.Duration
	maxSize int
}

func NewTextFetcher() *TextFetcher {
	return &TextFetcher{
		http:    &fasthttp.Client{ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 4},
		timeout: 10 * time.Second,
		maxSize: 64 << 10,
	}
}

func (f *TextFetcher) FetchText(url string) (string, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(fasthttp.MethodGet)
	req.SetRequestURI(url)
	if err := f.http.DoDeadline(req, resp, time.Now().Add(f.timeout)); err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	if status := resp.StatusCode(); status < 200 || status >= 300 {
		return "", fmt.Errorf("fetch %s: status %d", url, status)
	}
	body := resp.Body()
	if len(body) > f.maxSize {
		return "", fmt.Errorf("fetch %s: body exceeds %d bytes", url, f.maxSize)
	}
	return string(body), nil
}
