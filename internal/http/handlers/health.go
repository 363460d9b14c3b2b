package handlers

import (
	"net/http"

	"chat-backend/internal/health"
)

// HealthCheck — GET /health. Возвращает агрегированный отчёт о внешних
// зависимостях: 200 при полном здоровье, 503 — если упала хотя бы одна проверка.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := h.Health.Check(r.Context())

	status := http.StatusOK
	if report.Status != health.StatusOK {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, report)
}
