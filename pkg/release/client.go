// pkg/release/client.go
//
// Client for the release console. The component list lives only in the web
// interface's relationship view, so this scrapes the train page rather than
// calling an API.

package release

import (
	"net/http"
	"net/url"
	"strings"

	cerr "github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/infraops/invreporter/pkg/credstore"
	"github.com/infraops/invreporter/pkg/httpclient"
	"github.com/infraops/invreporter/pkg/runctx"
	"github.com/infraops/invreporter/pkg/xerr"
)

// Client fetches component lists from train pages.
type Client struct {
	httpc *http.Client
	cred  credstore.Credential
}

// NewClient builds a release console client.
func NewClient(httpc *http.Client, cred credstore.Credential) *Client {
	return &Client{httpc: httpc, cred: cred}
}

// ComponentsFromTrain fetches a train page and extracts the component names
// from its relationship view. An empty slice and nil error means the view
// had no components.
func (c *Client) ComponentsFromTrain(rc *runctx.RuntimeContext, trainURL string) ([]string, error) {
	if !validTrainURL(trainURL) {
		return nil, xerr.New(xerr.KindValidation, "invalid release train URL format")
	}

	resp, err := httpclient.AuthenticatedGet(rc.Ctx, c.httpc, trainURL, c.cred.Identity, c.cred.Secret)
	if err != nil {
		return nil, xerr.Wrap(xerr.KindServiceError, err, "release console request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, xerr.New(xerr.KindAuthRejected, "invalid credentials for release console access")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, xerr.New(xerr.KindServiceError,
			cerr.Newf("release console returned status %d", resp.StatusCode).Error())
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, xerr.Wrap(xerr.KindServiceError, err, "parse release console page")
	}

	components := extractComponents(doc)
	if len(components) == 0 {
		rc.Log.Warn("No components found in release train", zap.String("url", trainURL))
		return nil, nil
	}

	rc.Log.Info("Retrieved components from release train",
		zap.Int("count", len(components)),
	)
	return components, nil
}

func validTrainURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}

// extractComponents walks the parsed document for
// div.relationship-view > div.component > span.component-name text nodes.
// Duplicates are dropped, first-seen order kept.
func extractComponents(doc *html.Node) []string {
	var components []string
	seen := make(map[string]struct{})

	for _, view := range findAll(doc, "div", "relationship-view") {
		for _, component := range findAll(view, "div", "component") {
			for _, name := range findAll(component, "span", "component-name") {
				text := strings.TrimSpace(nodeText(name))
				if text == "" {
					continue
				}
				if _, dup := seen[text]; dup {
					continue
				}
				seen[text] = struct{}{}
				components = append(components, text)
			}
		}
	}
	return components
}

func findAll(root *html.Node, tag, class string) []*html.Node {
	var matches []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag && hasClass(n, class) {
			matches = append(matches, n)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)
	return matches
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, candidate := range strings.Fields(attr.Val) {
			if candidate == class {
				return true
			}
		}
	}
	return false
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return sb.String()
}
