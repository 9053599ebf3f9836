package http

import (
	"errors"
	"net/http"

	"github.com/jmehdipour/wasend/internal/service/sendrun"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// loginStateHandler reports the best-effort probe of the client's login
// state. It is informational; only the confirm endpoint unlocks runs.
func loginStateHandler(svc *sendrun.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		state, err := svc.LoginState(c.Request().Context())
		if err != nil {
			if errors.Is(err, sendrun.ErrSessionBusy) {
				// probing navigates the shared browser session; never
				// steal it from an active run
				return c.JSON(http.StatusConflict, map[string]string{"error": "session busy"})
			}

			log.Errorf("login probe failed: %v", err)

			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "browser session error"})
		}

		return c.JSON(http.StatusOK, map[string]any{
			"state":     state,
			"confirmed": svc.Confirmed(),
		})
	}
}

func confirmLoginHandler(svc *sendrun.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		svc.ConfirmLogin()

		return c.JSON(http.StatusOK, map[string]any{"confirmed": true})
	}
}
