package httpfetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/gocolly/colly/v2/extensions"
	"golang.org/x/time/rate"

	"immo-parser-service/internal/core/domain"
	"immo-parser-service/internal/core/port"
)

const (
	DefaultTimeout = 30 * time.Second
	DefaultMaxRPS  = 2.0
)

// Config - параметры клиента
type Config struct {
	Timeout time.Duration
	MaxRPS  float64
}

// Client выполняет запросы через colly. Повторов нет, решение о них принимает вызывающий.
type Client struct {
	// родительский коллектор, от него на каждый запрос делается Clone
	collector *colly.Collector
	limiter   *rate.Limiter
	egress    port.EgressPort
	timeout   time.Duration
	logger    port.LoggerPort
}

// NewClient создает клиент; egress может быть nil (всегда прямое соединение)
func NewClient(cfg Config, egress port.EgressPort, logger port.LoggerPort) (*Client, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRPS <= 0 {
		cfg.MaxRPS = DefaultMaxRPS
	}

	c := colly.NewCollector(colly.AllowURLRevisit(), colly.ParseHTTPErrorResponse())
	// cookies ведет Session, встроенный jar не нужен
	c.DisableCookies()
	// backend общий для всех Clone: его таймаут обрезал бы длинный бюджет детальных страниц.
	// Единственный дедлайн - контекст запроса в Fetch.
	c.SetRequestTimeout(0)

	if err := c.Limit(&colly.LimitRule{DomainGlob: "*", Parallelism: 1}); err != nil {
		return nil, fmt.Errorf("fetch client: failed to set limit rule: %w", err)
	}

	client := &Client{
		collector: c,
		limiter:   rate.NewLimiter(rate.Limit(cfg.MaxRPS), 1),
		egress:    egress,
		timeout:   cfg.Timeout,
		logger:    logger.WithFields(port.Fields{"component": "fetch_client"}),
	}

	c.SetProxyFunc(client.proxyFor)
	return client, nil
}

// proxyFor берет следующий идентификатор из пула; nil - прямое соединение
func (c *Client) proxyFor(r *http.Request) (*url.URL, error) {
	if c.egress == nil {
		return nil, nil
	}
	id := c.egress.Acquire()
	if id == nil {
		return nil, nil
	}
	return url.Parse(id.ProxyURL)
}

func defaultHeaders() http.Header {
	h := http.Header{}
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	h.Set("Accept-Language", "de-AT,de;q=0.9,en;q=0.8")
	h.Set("DNT", "1")
	h.Set("Upgrade-Insecure-Requests", "1")
	return h
}

// Fetch выполняет один GET-запрос
func (c *Client) Fetch(ctx context.Context, req port.FetchRequest) (*port.FetchResponse, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, classifyError(req.URL, err)
	}

	hdr := defaultHeaders()
	if req.Cookies != "" {
		hdr.Set("Cookie", req.Cookies)
	}
	for k, v := range req.Headers {
		hdr.Set(k, v)
	}

	// наследует лимиты, но имеет свои собственные обработчики
	collector := c.collector.Clone()
	collector.Context = ctx
	// Clone не копирует обработчики, поэтому расширения подключаются к каждой копии.
	// На каждый запрос будет подставлен User-Agent реального браузера
	extensions.RandomUserAgent(collector)

	var resp *port.FetchResponse
	collector.OnResponse(func(r *colly.Response) {
		resp = &port.FetchResponse{Body: string(r.Body), Status: r.StatusCode}
		if r.Headers != nil {
			resp.SetCookies = r.Headers.Values("Set-Cookie")
		}
	})

	c.logger.Debug("Making request", port.Fields{"url": req.URL})
	if err := collector.Request(http.MethodGet, req.URL, nil, nil, hdr); err != nil {
		return nil, classifyError(req.URL, err)
	}
	collector.Wait()

	if resp == nil {
		return nil, fmt.Errorf("fetch client: no response for %s", req.URL)
	}
	if resp.Status < 200 || resp.Status > 299 {
		return resp, &domain.StatusError{Code: resp.Status, URL: req.URL}
	}
	return resp, nil
}

func classifyError(rawURL string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("fetch client: %s: %w: %w", rawURL, domain.ErrTimeout, err)
	}
	return fmt.Errorf("fetch client: request to %s failed: %w", rawURL, err)
}
