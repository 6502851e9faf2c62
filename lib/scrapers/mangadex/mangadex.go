package mangadex

import (
	"context"
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"time"

	"mangarank/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/mangadex")

const DefaultBaseUrl = "https://mangadex.org"

type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client
}

type ClientOptions struct {
	// BaseUrl defaults to DefaultBaseUrl when empty.
	BaseUrl string
	// Timeout applies to every request. Zero means 30 seconds.
	Timeout time.Duration
}

func NewClient(ctx context.Context, opts ClientOptions) (*Client, error) {
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.Timeout == 0 {
		opts.Timeout = time.Second * 30
	}

	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	client.SetTimeout(opts.Timeout)

	telemetry.InstrumentResty(client, "scrapers/mangadex/http")

	c := &Client{
		BaseUrl: baseUrl,
		Http:    client,
	}
	return c, nil
}

// AbsoluteUrl joins an item path with the endpoint origin.
func (c *Client) AbsoluteUrl(path string) string {
	return c.BaseUrl.JoinPath(path).String()
}

// Login starts an authenticated session. The session cookie lands in the
// client's cookie jar and rides along on every later request. Searching
// works without it, logging in only applies the account's content filters.
func (c *Client) Login(ctx context.Context, username, password string) error {
	ctx, span := tracer.Start(ctx, "client:Login")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		SetQueryParam("function", "login").
		SetFormData(map[string]string{
			"login_username": username,
			"login_password": password,
		}).
		Post("/ajax/actions.ajax.php")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to make login request")
		return err
	}
	if res.IsError() {
		err := fmt.Errorf("unexpected status %q from login", res.Status())
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
