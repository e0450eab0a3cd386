package polyratings

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/cookiejar"
	"time"

	"github.com/sreshtalluri/polyratings-data-collection/lib/restyutil"
	"github.com/sreshtalluri/polyratings-data-collection/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

var tracer = telemetry.Tracer("polyratings")

const DefaultBaseUrl = "https://api-prod.polyratings.org"

type Config struct {
	// api base url, defaults to the production polyratings api
	BaseUrl string `json:"base_url"`
	// max requests per second against the api
	RateLimit float64 `json:"rate_limit"`
	// when set, full http request/response pairs are dumped to this
	// directory at debug verbosity
	HttpDebugDir string `json:"http_debug_dir"`
}

type Client struct {
	http *resty.Client
}

func NewClient(config Config) (*Client, error) {
	baseUrl := config.BaseUrl
	if baseUrl == "" {
		baseUrl = DefaultBaseUrl
	}

	client := resty.New()
	client.SetBaseURL(baseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetTimeout(time.Second * 30)
	client.SetRetryCount(2)

	// 10 requests max per second by default, a courtesy delay for the
	// public api
	limit := config.RateLimit
	if limit <= 0 {
		limit = 10
	}
	rateLimiter := rate.NewLimiter(rate.Limit(limit), 1)
	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return rateLimiter.Wait(req.Context())
	})

	var output restyutil.InstrumentOutput
	if config.HttpDebugDir != "" {
		output = restyutil.NewFilesystemOutput(config.HttpDebugDir)
	}
	restyutil.InstrumentClient(client, telemetry.Tracer("polyratings/http"), output)

	return &Client{http: client}, nil
}

// All fetches the complete professor roster.
func (c *Client) All(ctx context.Context) ([]Professor, error) {
	ctx, span := tracer.Start(ctx, "All")
	defer span.End()

	res, err := c.http.R().
		SetContext(ctx).
		Get("/professors.all")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch")
		return nil, fmt.Errorf("fetch professor roster: %w", err)
	}
	if res.IsError() {
		err := fmt.Errorf("fetch professor roster: unexpected status %s", res.Status())
		span.RecordError(err)
		span.SetStatus(codes.Error, "unexpected status")
		return nil, err
	}

	var body envelope[[]Professor]
	err = json.Unmarshal(res.Body(), &body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse json response")
		return nil, fmt.Errorf("decode professor roster: %w", err)
	}

	span.SetAttributes(attribute.Int("professors", len(body.Result.Data)))
	return body.Result.Data, nil
}

// Get fetches a single professor along with all of their reviews.
func (c *Client) Get(ctx context.Context, id string) (ProfessorDetail, error) {
	ctx, span := tracer.Start(ctx, "Get")
	defer span.End()

	span.SetAttributes(attribute.String("id", id))

	input, err := json.Marshal(getInput{Id: id})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to serialize input")
		return ProfessorDetail{}, err
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("input", string(input)).
		Get("/professors.get")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch")
		return ProfessorDetail{}, fmt.Errorf("fetch professor %s: %w", id, err)
	}
	if res.IsError() {
		err := fmt.Errorf("fetch professor %s: unexpected status %s", id, res.Status())
		span.RecordError(err)
		span.SetStatus(codes.Error, "unexpected status")
		return ProfessorDetail{}, err
	}

	var body envelope[ProfessorDetail]
	err = json.Unmarshal(res.Body(), &body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse json response")
		return ProfessorDetail{}, fmt.Errorf("decode professor %s: %w", id, err)
	}

	return body.Result.Data, nil
}
