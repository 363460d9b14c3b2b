// health агрегирует проверки готовности внешних зависимостей сервиса
// (БД, Redis, исходящая HTTP-связность) в единый отчёт.
package health

import (
	"context"
	"net/http"
	"time"
)

// Статусы отчёта и отдельных проверок.
const (
	StatusOK    = "ok"
	StatusError = "error"

	checkUp   = "up"
	checkDown = "down"
)

// Detail — результат одной проверки.
type Detail struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Report — агрегированный отчёт: Info содержит успешные проверки,
// Error — упавшие, Details — все. Status == "error", если упала хотя бы одна.
type Report struct {
	Status  string            `json:"status"`
	Info    map[string]Detail `json:"info"`
	Error   map[string]Detail `json:"error"`
	Details map[string]Detail `json:"details"`
}

// Indicator — одна именованная проверка зависимости.
type Indicator interface {
	Name() string
	Check(ctx context.Context) error
}

// Checker последовательно выполняет все проверки и собирает отчёт.
type Checker struct {
	indicators []Indicator
}

// NewChecker создаёт агрегатор проверок.
func NewChecker(indicators ...Indicator) *Checker {
	return &Checker{indicators: indicators}
}

// Check выполняет все проверки. Ошибка одной проверки не прерывает остальные.
func (c *Checker) Check(ctx context.Context) Report {
	report := Report{
		Status:  StatusOK,
		Info:    make(map[string]Detail),
		Error:   make(map[string]Detail),
		Details: make(map[string]Detail),
	}

	for _, ind := range c.indicators {
		detail := Detail{Status: checkUp}

		if err := ind.Check(ctx); err != nil {
			detail = Detail{Status: checkDown, Message: err.Error()}
			report.Status = StatusError
			report.Error[ind.Name()] = detail
		} else {
			report.Info[ind.Name()] = detail
		}

		report.Details[ind.Name()] = detail
	}

	return report
}

// Pinger — то, что умеет Ping (pgx-пул, Redis-клиент).
type Pinger interface {
	Ping(ctx context.Context) error
}

type pingIndicator struct {
	name   string
	pinger Pinger
}

// NewPingIndicator оборачивает Ping-зависимость в проверку.
func NewPingIndicator(name string, p Pinger) Indicator {
	return &pingIndicator{name: name, pinger: p}
}

func (i *pingIndicator) Name() string { return i.name }

func (i *pingIndicator) Check(ctx context.Context) error {
	return i.pinger.Ping(ctx)
}

type httpIndicator struct {
	name   string
	url    string
	client *http.Client
}

// NewHTTPIndicator проверяет исходящую HTTP-связность запросом HEAD по url.
func NewHTTPIndicator(name, url string) Indicator {
	return &httpIndicator{
		name:   name,
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

func (i *httpIndicator) Name() string { return i.name }

func (i *httpIndicator) Check(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, i.url, nil)
	if err != nil {
		return err
	}

	resp, err := i.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return nil
}
