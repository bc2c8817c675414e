// Package openstack fetches the region inventory over the OpenStack HTTP
// APIs: keystone for identity, nova for servers and flavors, cinder for
// volumes, glance for images.
package openstack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/de-tools/cloud-ledger/pkg/models/api"
)

type Credentials struct {
	Username string
	Password string
	Domain   string
	Project  string
}

// Client is an authenticated session against one region's admin
// endpoints.
type Client struct {
	http  *http.Client
	token string

	keystoneURL *url.URL
	novaURL     *url.URL
	cinderURL   *url.URL
	glanceURL   *url.URL
}

// Connect authenticates against keystone with a project-scoped password
// grant and resolves the region's admin endpoints from the service
// catalog. With rewriteHost, endpoint hosts are replaced by localhost so
// the collector can run through an SSH tunnel.
func Connect(ctx context.Context, creds Credentials, keystoneURL, region string, rewriteHost bool) (*Client, error) {
	base, err := url.Parse(keystoneURL)
	if err != nil {
		return nil, fmt.Errorf("invalid keystone URL %q: %w", keystoneURL, err)
	}

	c := &Client{
		http:        &http.Client{},
		keystoneURL: base,
	}

	payload, err := json.Marshal(authPayload(creds))
	if err != nil {
		return nil, fmt.Errorf("failed to encode auth payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base.JoinPath("auth", "tokens").String(), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("keystone authentication request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode/100 != 2 {
		return nil, fmt.Errorf("keystone authentication returned status %d", res.StatusCode)
	}

	c.token = res.Header.Get("X-Subject-Token")
	if c.token == "" {
		return nil, fmt.Errorf("keystone response carried no X-Subject-Token header")
	}

	var info api.TokenInfo
	if err := json.NewDecoder(res.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to parse keystone token response: %w", err)
	}

	endpoints := catalogEndpoints(info.Token.Catalog, region)

	if c.novaURL, err = requireEndpoint(endpoints, "nova", "compute", rewriteHost); err != nil {
		return nil, err
	}
	if c.cinderURL, err = requireEndpoint(endpoints, "cinderv3", "volumev3", rewriteHost); err != nil {
		return nil, err
	}
	if c.glanceURL, err = requireEndpoint(endpoints, "glance", "image", rewriteHost); err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().
		Str("nova", c.novaURL.String()).
		Str("cinder", c.cinderURL.String()).
		Str("glance", c.glanceURL.String()).
		Msg("resolved region endpoints")

	return c, nil
}

func authPayload(creds Credentials) map[string]any {
	return map[string]any{
		"auth": map[string]any{
			"identity": map[string]any{
				"methods": []string{"password"},
				"password": map[string]any{
					"user": map[string]any{
						"name":     creds.Username,
						"password": creds.Password,
						"domain":   map[string]string{"id": creds.Domain},
					},
				},
			},
			"scope": map[string]any{
				"project": map[string]any{
					"domain": map[string]string{"id": creds.Domain},
					"name":   creds.Project,
				},
			},
		},
	}
}

type endpointKey struct {
	name string
	typ  string
}

func catalogEndpoints(catalog []api.Service, region string) map[endpointKey]string {
	endpoints := make(map[endpointKey]string)
	for _, svc := range catalog {
		for _, ep := range svc.Endpoints {
			if ep.Region == region && ep.Interface == "admin" {
				endpoints[endpointKey{svc.Name, svc.Type}] = ep.URL
			}
		}
	}
	return endpoints
}

func requireEndpoint(endpoints map[endpointKey]string, name, typ string, rewriteHost bool) (*url.URL, error) {
	raw, ok := endpoints[endpointKey{name, typ}]
	if !ok {
		return nil, fmt.Errorf("could not find %s endpoint in service catalog", name)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s endpoint URL %q: %w", name, raw, err)
	}

	if rewriteHost {
		if port := u.Port(); port != "" {
			u.Host = "localhost:" + port
		} else {
			u.Host = "localhost"
		}
	}

	return u, nil
}

func (c *Client) getJSON(ctx context.Context, u *url.URL, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-Auth-Token", c.token)

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode/100 != 2 {
		return fmt.Errorf("GET %s returned status %d", u.Path, res.StatusCode)
	}

	return json.NewDecoder(res.Body).Decode(out)
}

func (c *Client) Servers(ctx context.Context) ([]api.Server, error) {
	u := c.novaURL.JoinPath("servers", "detail")
	q := u.Query()
	q.Set("all_tenants", "True")
	u.RawQuery = q.Encode()

	var servers api.Servers
	if err := c.getJSON(ctx, u, &servers); err != nil {
		return nil, fmt.Errorf("could not retrieve servers from nova: %w", err)
	}

	return servers.Servers, nil
}

func (c *Client) Flavors(ctx context.Context) (map[string]api.Flavor, error) {
	u := c.novaURL.JoinPath("flavors", "detail")
	q := u.Query()
	q.Set("is_public", "None")
	u.RawQuery = q.Encode()

	var flavors api.Flavors
	if err := c.getJSON(ctx, u, &flavors); err != nil {
		return nil, fmt.Errorf("could not retrieve flavors from nova: %w", err)
	}

	byID := make(map[string]api.Flavor, len(flavors.Flavors))
	for _, f := range flavors.Flavors {
		byID[f.ID] = f
	}

	return byID, nil
}

// Volumes follows cinder's volumes_links pagination until no rel=next
// link remains.
func (c *Client) Volumes(ctx context.Context) ([]api.Volume, error) {
	u := c.cinderURL.JoinPath("volumes", "detail")
	q := u.Query()
	q.Set("all_tenants", "1")
	u.RawQuery = q.Encode()

	var ret []api.Volume
	for {
		var page api.Volumes
		if err := c.getJSON(ctx, u, &page); err != nil {
			return nil, fmt.Errorf("could not retrieve volumes from cinder: %w", err)
		}
		ret = append(ret, page.Volumes...)

		next := ""
		for _, link := range page.Links {
			if link.Rel == "next" {
				next = link.Href
				break
			}
		}
		if next == "" {
			return ret, nil
		}

		nextURL, err := url.Parse(next)
		if err != nil {
			return nil, fmt.Errorf("invalid volume pagination link %q: %w", next, err)
		}
		u = nextURL
	}
}

// Images follows glance's relative next links until the listing is
// exhausted.
func (c *Client) Images(ctx context.Context) ([]api.Image, error) {
	u := c.glanceURL.JoinPath("v2", "images")

	var ret []api.Image
	for {
		var page api.Images
		if err := c.getJSON(ctx, u, &page); err != nil {
			return nil, fmt.Errorf("could not retrieve images from glance: %w", err)
		}
		ret = append(ret, page.Images...)

		if page.Next == nil {
			return ret, nil
		}

		nextURL, err := c.glanceURL.Parse(*page.Next)
		if err != nil {
			return nil, fmt.Errorf("invalid image pagination link %q: %w", *page.Next, err)
		}
		u = nextURL
	}
}

func (c *Client) Users(ctx context.Context) ([]api.User, error) {
	var users api.Users
	if err := c.getJSON(ctx, c.keystoneURL.JoinPath("users"), &users); err != nil {
		return nil, fmt.Errorf("could not retrieve users from keystone: %w", err)
	}
	return users.Users, nil
}

func (c *Client) Projects(ctx context.Context) ([]api.Project, error) {
	var projects api.Projects
	if err := c.getJSON(ctx, c.keystoneURL.JoinPath("projects"), &projects); err != nil {
		return nil, fmt.Errorf("could not retrieve projects from keystone: %w", err)
	}
	return projects.Projects, nil
}

func (c *Client) Domains(ctx context.Context) ([]api.Domain, error) {
	var domains api.Domains
	if err := c.getJSON(ctx, c.keystoneURL.JoinPath("domains"), &domains); err != nil {
		return nil, fmt.Errorf("could not retrieve domains from keystone: %w", err)
	}
	return domains.Domains, nil
}
