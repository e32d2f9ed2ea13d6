package http

import (
	"net/http"
	"time"

	"github.com/guachince/guachince/internal/auth/store"
	"github.com/guachince/guachince/pkg/httpx"
)

// HealthResponse is the payload of GET /health.
type HealthResponse struct {
	Status string    `json:"status"`
	App    string    `json:"app"`
	Time   time.Time `json:"time"`
}

// HealthHandler godoc
//
//	@Summary		Service health check
//	@Description	Reports ok while the service is up and the database answers.
//	@Tags			system
//	@Produce		json
//	@Success		200	{object}	HealthResponse
//	@Failure		503	{object}	HealthResponse
//	@Router			/health [get].
func HealthHandler(appName string, st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		code := http.StatusOK
		if err := st.Ping(r.Context()); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, code, HealthResponse{
			Status: status,
			App:    appName,
			Time:   time.Now().UTC(),
		})
	}
}
