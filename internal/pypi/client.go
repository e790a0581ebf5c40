// Package pypi looks up package releases on a PyPI-compatible index and
// materializes wheel artifacts to local directories.
package pypi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"pysymbols/internal/diag"
)

// DefaultIndexURL is the JSON API of the public index.
const DefaultIndexURL = "https://pypi.org/pypi"

// Client queries the index's JSON API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	sink       *diag.Sink
}

// NewClient creates a client for the given index URL. An empty URL selects
// the public index.
func NewClient(baseURL string, sink *diag.Sink) *Client {
	if baseURL == "" {
		baseURL = DefaultIndexURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		sink: sink,
	}
}

// projectResponse is the subset of the index's project document we consume.
type projectResponse struct {
	Releases map[string][]artifactResponse `json:"releases"`
}

type artifactResponse struct {
	Filename    string `json:"filename"`
	URL         string `json:"url"`
	PackageType string `json:"packagetype"`
}

// Versions returns every released version of the named package, sorted in
// release order (numeric dot-component comparison, oldest first).
func (c *Client) Versions(ctx context.Context, name string) ([]string, error) {
	project, err := c.fetchProject(ctx, name)
	if err != nil {
		return nil, err
	}

	versions := make([]string, 0, len(project.Releases))
	for version := range project.Releases {
		versions = append(versions, version)
	}
	sort.Slice(versions, func(i, j int) bool {
		return compareVersions(versions[i], versions[j]) < 0
	})
	return versions, nil
}

// Artifacts returns the wheel artifacts published for one release, each
// carrying the platform qualifier parsed from its filename.
func (c *Client) Artifacts(ctx context.Context, name, version string) ([]Artifact, error) {
	project, err := c.fetchProject(ctx, name)
	if err != nil {
		return nil, err
	}

	files, ok := project.Releases[version]
	if !ok {
		return nil, fmt.Errorf("no release %s for package %s", version, name)
	}

	var artifacts []Artifact
	for _, f := range files {
		if f.PackageType != "bdist_wheel" {
			continue
		}
		artifacts = append(artifacts, Artifact{
			Filename:    f.Filename,
			URL:         f.URL,
			PlatformTag: wheelPlatformTag(f.Filename),
			client:      c,
		})
	}
	return artifacts, nil
}

// SelectArtifact picks the first artifact whose platform tag contains the
// preferred substring (e.g. "manylinux"). When none matches, it records an
// error diagnostic and reports no selection so the caller can skip the
// version instead of downloading an arbitrary build.
func (c *Client) SelectArtifact(artifacts []Artifact, preferredPlatform, version string) (Artifact, bool) {
	for _, a := range artifacts {
		if strings.Contains(a.PlatformTag, preferredPlatform) {
			return a, true
		}
	}

	c.sink.Error("no platform-qualified artifact", diag.Fields{
		"version":  version,
		"platform": preferredPlatform,
		"wheels":   fmt.Sprintf("%d", len(artifacts)),
	})
	return Artifact{}, false
}

func (c *Client) fetchProject(ctx context.Context, name string) (*projectResponse, error) {
	url := fmt.Sprintf("%s/%s/json", c.baseURL, name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("index request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("index returned status %d for %s", resp.StatusCode, name)
	}

	var project projectResponse
	if err := json.NewDecoder(resp.Body).Decode(&project); err != nil {
		return nil, fmt.Errorf("failed to decode index response: %w", err)
	}
	return &project, nil
}

// wheelPlatformTag extracts the platform tag from a wheel filename:
// {dist}-{version}(-{build})?-{python}-{abi}-{platform}.whl.
func wheelPlatformTag(filename string) string {
	name := strings.TrimSuffix(filename, ".whl")
	parts := strings.Split(name, "-")
	if len(parts) < 5 {
		return ""
	}
	return parts[len(parts)-1]
}

// compareVersions orders dot-separated versions numerically, falling back
// to string comparison for non-numeric components.
func compareVersions(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")

	for i := 0; i < len(as) && i < len(bs); i++ {
		an, aerr := strconv.Atoi(as[i])
		bn, berr := strconv.Atoi(bs[i])
		switch {
		case aerr == nil && berr == nil:
			if an != bn {
				if an < bn {
					return -1
				}
				return 1
			}
		default:
			if as[i] != bs[i] {
				return strings.Compare(as[i], bs[i])
			}
		}
	}
	return len(as) - len(bs)
}
