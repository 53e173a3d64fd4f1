package api

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/cptinfo/internal/report"
	"github.com/samcharles93/cptinfo/pkg/cpt"
)

const mimeYAML = "application/yaml"

func writeBadRequest(c *echo.Context, msg string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg, "", "")
}

func writeInvalidParam(c *echo.Context, err error) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", err.Error(), errorParam(err), "invalid_parameter")
}

func writeNotFound(c *echo.Context, msg string) error {
	return writeError(c, http.StatusNotFound, "not_found_error", msg, "", "")
}

func writeError(c *echo.Context, status int, errType, msg, param, code string) error {
	return c.JSON(status, map[string]any{
		"error": ResponseError{
			Message: msg,
			Type:    errType,
			Code:    code,
			Param:   param,
		},
	})
}

// writeReport renders r in the requested format. JSON goes through the
// report encoder so the wire form matches the CLI output byte for byte.
func writeReport(c *echo.Context, status int, format report.Format, r *report.Report) error {
	var buf bytes.Buffer
	if err := report.Write(&buf, format, r, report.Options{Chunks: true, Data: true, Verbose: true}); err != nil {
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error(), "", "")
	}
	return c.Blob(status, contentType(format), buf.Bytes())
}

func contentType(format report.Format) string {
	switch format {
	case report.FormatJSON:
		return echo.MIMEApplicationJSON
	case report.FormatYAML:
		return mimeYAML
	default:
		return "text/plain; charset=utf-8"
	}
}

// parseInspectRequest reads the query of an inspect call. Format defaults
// to JSON and the report is stored unless store=false.
func parseInspectRequest(c *echo.Context, defaultCharset string) (InspectRequest, cpt.Options, error) {
	req := InspectRequest{
		Name:    strings.TrimSpace(c.QueryParam("name")),
		Charset: strings.TrimSpace(c.QueryParam("charset")),
		Blocks:  strings.TrimSpace(c.QueryParam("blocks")),
		Format:  report.FormatJSON,
		Store:   true,
	}
	if req.Name == "" {
		req.Name = "upload.cpt"
	}
	if req.Charset == "" {
		req.Charset = defaultCharset
	}

	format, err := parseFormat(c.QueryParam("format"))
	if err != nil {
		return req, cpt.Options{}, err
	}
	req.Format = format

	if v := strings.TrimSpace(c.QueryParam("store")); v != "" {
		store, err := strconv.ParseBool(v)
		if err != nil {
			return req, cpt.Options{}, newParamError("store", "store: expected a boolean")
		}
		req.Store = store
	}

	opts := cpt.Options{Charset: req.Charset}
	if req.Charset != "" {
		if _, err := cpt.LookupCharset(req.Charset); err != nil {
			return req, cpt.Options{}, newParamError("charset", err.Error())
		}
	}
	if req.Blocks != "" {
		br, err := cpt.ParseBlockRange(req.Blocks)
		if err != nil {
			return req, cpt.Options{}, newParamError("blocks", err.Error())
		}
		opts.Blocks = &br
	}
	return req, opts, nil
}

func parseFormat(s string) (report.Format, error) {
	if strings.TrimSpace(s) == "" {
		return report.FormatJSON, nil
	}
	f, err := report.ParseFormat(s)
	if err != nil {
		return "", newParamError("format", err.Error())
	}
	return f, nil
}
