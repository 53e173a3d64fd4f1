package api

import (
	"github.com/samcharles93/cptinfo/internal/report"
	"github.com/samcharles93/cptinfo/internal/version"
)

type ResponseError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Param   string `json:"param,omitempty"`
}

// InspectRequest holds the query parameters of POST /v1/inspect. The file
// itself is the raw request body.
type InspectRequest struct {
	Name    string
	Charset string
	Blocks  string
	Format  report.Format
	Store   bool
}

type ReportSummary struct {
	ID        string `json:"id"`
	File      string `json:"file"`
	Size      int    `json:"size"`
	Version   string `json:"version"`
	Anomalies int    `json:"anomalies"`
	Error     string `json:"error,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

type ReportList struct {
	Object string          `json:"object"`
	Data   []ReportSummary `json:"data"`
}

type ChunkInfo struct {
	ID      string `json:"id"`
	Decoded bool   `json:"decoded"`
}

type ChunkList struct {
	Object string      `json:"object"`
	Data   []ChunkInfo `json:"data"`
}

type HealthResponse struct {
	Status  string       `json:"status"`
	Version version.Info `json:"version"`
}
