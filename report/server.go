// Copyright 2026 The PollCSV Authors
// SPDX-License-Identifier: Apache-2.0

// Package report serves the outcome of a check run over HTTP so the
// suspect coordinates can be reviewed on a map.
package report

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tohyomap/pollcsv/polling"
	"github.com/tohyomap/pollcsv/runner"
	"github.com/tohyomap/pollcsv/spatial"
)

// DefaultClusterResolution buckets suspects into roughly 460m H3 cells,
// the scale at which provider disagreements overlap.
const DefaultClusterResolution = 8

type Server struct {
	report *runner.Report
}

func NewServer(report *runner.Report) *Server {
	return &Server{report: report}
}

// LoadReport reads a report previously saved with --report.
func LoadReport(path string) (*runner.Report, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}

	var r runner.Report
	if err := json.Unmarshal(content, &r); err != nil {
		return nil, fmt.Errorf("parsing report %s: %w", path, err)
	}

	return &r, nil
}

// SaveReport writes the report as JSON for later serving.
func SaveReport(report *runner.Report, path string) error {
	content, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}

	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	return nil
}

func (s *Server) Handler() http.Handler {
	r := gin.Default()

	r.GET("/api/report", s.getReport)
	r.GET("/api/report/summary", s.getSummary)
	r.GET("/api/suspects/clusters", s.getSuspectClusters)

	return r
}

func (s *Server) Run(addr string) error {
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) getReport(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, s.report)
}

type SummaryResponse struct {
	GeneratedAt    string `json:"generated_at"`
	Municipalities int    `json:"municipalities"`
	Errors         int    `json:"errors"`
	Warnings       int    `json:"warnings"`
	Suspects       int    `json:"suspects"`
}

func (s *Server) getSummary(ctx *gin.Context) {
	resp := SummaryResponse{
		GeneratedAt:    s.report.GeneratedAt.Format("2006-01-02 15:04:05"),
		Municipalities: len(s.report.Municipalities),
	}

	for _, m := range s.report.Municipalities {
		resp.Suspects += len(m.SuspectPoints)

		for _, d := range m.Diagnostics {
			switch d.Severity {
			case polling.SeverityError:
				resp.Errors++
			case polling.SeverityWarning:
				resp.Warnings++
			}
		}
	}

	ctx.JSON(http.StatusOK, resp)
}

type Cluster struct {
	Cell   string        `json:"cell"`
	Count  int           `json:"count"`
	Center spatial.Point `json:"center"`
}

func (s *Server) getSuspectClusters(ctx *gin.Context) {
	res := DefaultClusterResolution

	if p := ctx.Query("resolution"); p != "" {
		parsed, err := strconv.Atoi(p)
		if err != nil || parsed < 0 || parsed > 15 {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid resolution parameter"})

			return
		}

		res = parsed
	}

	var points []spatial.Point
	for _, m := range s.report.Municipalities {
		points = append(points, m.SuspectPoints...)
	}

	groups := spatial.GroupByCell(points, res)

	clusters := make([]Cluster, 0, len(groups))

	for cell, members := range groups {
		var c spatial.Point
		for _, p := range members {
			c.Lat += p.Lat
			c.Lng += p.Lng
		}

		c.Lat /= float64(len(members))
		c.Lng /= float64(len(members))

		clusters = append(clusters, Cluster{Cell: cell, Count: len(members), Center: c})
	}

	sort.Slice(clusters, func(i, j int) bool {
		if clusters[i].Count != clusters[j].Count {
			return clusters[i].Count > clusters[j].Count
		}

		return clusters[i].Cell < clusters[j].Cell
	})

	ctx.JSON(http.StatusOK, clusters)
}
