package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jmehdipour/wasend/internal/model"
	"github.com/jmehdipour/wasend/internal/service/sendrun"
	"github.com/jmehdipour/wasend/internal/sheet"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

type startRunReq struct {
	SheetURL     string `json:"sheet_url"`
	DelaySeconds int    `json:"delay_seconds"`
}

// delayFromSeconds parses the multipart form's delay_seconds value; zero
// means "use the configured default".
func delayFromSeconds(v string) time.Duration {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}

// startRunHandler accepts either a multipart upload (field "file", CSV or
// XLSX) or a JSON body with a published sheet URL, loads the contacts and
// starts the run.
func startRunHandler(svc *sendrun.Service, loader *sheet.Loader) echo.HandlerFunc {
	return func(c echo.Context) error {
		var (
			contacts []model.Contact
			delay    time.Duration
			err      error
		)

		if fh, ferr := c.FormFile("file"); ferr == nil {
			f, oerr := fh.Open()
			if oerr != nil {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "unreadable upload"})
			}
			defer f.Close()

			name := strings.ToLower(fh.Filename)
			if strings.HasSuffix(name, ".xlsx") || strings.HasSuffix(name, ".xls") {
				contacts, err = sheet.ParseXLSX(f)
			} else {
				contacts, err = sheet.ParseCSV(f)
			}
			delay = delayFromSeconds(c.FormValue("delay_seconds"))
		} else {
			var req startRunReq
			if berr := c.Bind(&req); berr != nil {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad request"})
			}
			if strings.TrimSpace(req.SheetURL) == "" {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "sheet_url or file upload required"})
			}
			if req.DelaySeconds > 0 {
				delay = time.Duration(req.DelaySeconds) * time.Second
			}
			contacts, err = loader.FromURL(c.Request().Context(), req.SheetURL)
		}

		if err != nil {
			// malformed dataset or missing columns; the message names them
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}

		runID, err := svc.Start(contacts, delay)
		if err != nil {
			switch {
			case errors.Is(err, sendrun.ErrRunActive):
				return c.JSON(http.StatusConflict, map[string]string{"error": "run already active"})
			case errors.Is(err, sendrun.ErrLoginNotConfirmed):
				return c.JSON(http.StatusPreconditionFailed, map[string]string{
					"error":       "login_not_confirmed",
					"description": "scan the QR code, then POST /v1/session/confirm",
				})
			case errors.Is(err, sendrun.ErrNoContacts):
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "no contacts to send"})
			case errors.Is(err, sendrun.ErrSessionBusy):
				return c.JSON(http.StatusConflict, map[string]string{"error": "session busy"})
			}

			log.Errorf("start run failed: %v", err)

			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "browser session error"})
		}

		return c.JSON(http.StatusAccepted, map[string]any{
			"started":  true,
			"run_id":   runID,
			"contacts": len(contacts),
		})
	}
}

func currentRunHandler(svc *sendrun.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		summary, attempts, ok := svc.Current()
		if !ok {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "no run yet"})
		}

		return c.JSON(http.StatusOK, map[string]any{
			"summary":  summary,
			"attempts": attempts,
		})
	}
}

func stopRunHandler(svc *sendrun.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !svc.Stop() {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "no active run"})
		}

		return c.JSON(http.StatusOK, map[string]any{"stopping": true})
	}
}
