// Package geoapi is a client for the hosted geospatial compute
// platform. every operation here (filtering, union, clipping, exports)
// executes server-side, the client only holds opaque handles returned
// by the API.
package geoapi

import (
	"context"
	"net/http/cookiejar"
	"net/url"
	"time"

	"hydroclip/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/publicsuffix"
)

type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client
	Project string
}

type ClientOptions struct {
	BaseUrl string
	// the platform project all assets and exports are billed against
	Project string
	// optional, requests are unauthenticated until SetToken is called
	Token *Token
}

func NewClient(ctx context.Context, opts ClientOptions) (*Client, error) {
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	client.SetTimeout(time.Second * 30)
	client.SetHeader("accept", "application/json")

	telemetry.InstrumentResty(client, "geoapi/http")

	c := &Client{
		BaseUrl: baseUrl,
		Http:    client,
		Project: opts.Project,
	}
	if opts.Token != nil {
		c.SetToken(*opts.Token)
	}
	return c, nil
}

func (c *Client) SetToken(token Token) {
	c.Http.SetAuthToken(token.AccessToken)
}
