package page

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"

	"golang.org/x/net/html"
)

// RecordsContainerID is the element holding the records fragment on the page.
const RecordsContainerID = "recordsContainer"

// Loaded is a page the navigator arrived at.
type Loaded struct {
	URL     string
	Status  int
	Flash   *Flash
	Records string
}

// Navigator performs full page navigations against the attendance server.
// Cookies persist across navigations so flash messages survive redirects.
type Navigator struct {
	BaseURL string
	HTTP    *http.Client
}

// NewNavigator returns a navigator with its own cookie jar.
func NewNavigator(baseURL string) (*Navigator, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Navigator{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Jar: jar},
	}, nil
}

// Load opens the page root.
func (n *Navigator) Load(ctx context.Context) (Loaded, error) {
	return n.Follow(ctx, "/")
}

// Follow navigates to href, a server-relative link.
func (n *Navigator) Follow(ctx context.Context, href string) (Loaded, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.BaseURL+href, nil)
	if err != nil {
		return Loaded{}, err
	}
	return n.do(req)
}

// Submit posts sub as a form and follows the server's redirect.
func (n *Navigator) Submit(ctx context.Context, sub Submission) (Loaded, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.BaseURL+sub.Action, strings.NewReader(sub.Values.Encode()))
	if err != nil {
		return Loaded{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return n.do(req)
}

func (n *Navigator) do(req *http.Request) (Loaded, error) {
	resp, err := n.HTTP.Do(req)
	if err != nil {
		return Loaded{}, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	loaded := Loaded{URL: resp.Request.URL.String(), Status: resp.StatusCode}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return loaded, fmt.Errorf("%s %s: unexpected status %s", req.Method, req.URL.Path, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return loaded, fmt.Errorf("read page: %w", err)
	}
	if err := parsePage(string(body), &loaded); err != nil {
		return loaded, err
	}
	return loaded, nil
}

func parsePage(markup string, into *Loaded) error {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return fmt.Errorf("parse page: %w", err)
	}

	if alert := findFirst(root, func(n *html.Node) bool { return hasClass(n, "alert") }); alert != nil {
		into.Flash = &Flash{Category: alertCategory(alert), Message: text(alert)}
	}

	container := findFirst(root, func(n *html.Node) bool { return attr(n, "id") == RecordsContainerID })
	if container == nil {
		return fmt.Errorf("parse page: #%s not found", RecordsContainerID)
	}
	records, err := innerHTML(container)
	if err != nil {
		return fmt.Errorf("render records: %w", err)
	}
	into.Records = strings.TrimSpace(records)
	return nil
}

func hasClass(n *html.Node, name string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == name {
			return true
		}
	}
	return false
}

// alertCategory maps "alert alert-success" to "success".
func alertCategory(n *html.Node) string {
	for _, c := range strings.Fields(attr(n, "class")) {
		if cat, ok := strings.CutPrefix(c, "alert-"); ok && cat != "dismissible" {
			return cat
		}
	}
	return "info"
}
