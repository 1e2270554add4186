// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the tempus calculator to LLM clients via stdio transport.
package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/tempus/internal/apperr"
	"github.com/starford/tempus/internal/calcservice"
	"github.com/starford/tempus/internal/iso"
	"github.com/starford/tempus/internal/models"
)

const (
	optionsURI      = "tempus://options"
	recordFormatURI = "tempus://record-format"
)

// Server wraps the MCP server with calculator tools.
type Server struct {
	mcp *server.MCPServer
	svc *calcservice.Service
}

// New creates a new MCP server with all calculator tools registered.
func New(svc *calcservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Tempus",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	recordArg := func(name, desc string, opts ...mcp.PropertyOption) mcp.ToolOption {
		return mcp.WithString(name, append(opts, mcp.Description(desc+" (JSON value record, see "+recordFormatURI+")"))...)
	}

	s.mcp.AddTool(mcp.NewTool("temporal_add",
		mcp.WithDescription("Add a duration to a date, date-time, zoned date-time, instant, time or year-month."),
		recordArg("value", "Value to move", mcp.Required()),
		mcp.WithString("duration", mcp.Required(), mcp.Description(`Duration as JSON, e.g. {"months":1}`)),
		mcp.WithString("overflow", mcp.Description("constrain (default) or reject")),
		mcp.WithBoolean("subtract", mcp.Description("Move backward instead of forward")),
	), s.temporalAdd)

	s.mcp.AddTool(mcp.NewTool("temporal_until",
		mcp.WithDescription("Duration between two values of the same kind, balanced up to largestUnit."),
		recordArg("one", "Start value", mcp.Required()),
		recordArg("other", "End value", mcp.Required()),
		mcp.WithString("options", mcp.Description(`Difference options as JSON, e.g. {"largestUnit":"month"}`)),
		mcp.WithBoolean("since", mcp.Description("Measure from other back to one")),
	), s.temporalUntil)

	s.mcp.AddTool(mcp.NewTool("temporal_round",
		mcp.WithDescription("Round a date-time, zoned date-time, instant or time to a unit."),
		recordArg("value", "Value to round", mcp.Required()),
		mcp.WithString("options", mcp.Required(), mcp.Description(`Rounding options as JSON, e.g. {"smallestUnit":"hour"}`)),
	), s.temporalRound)

	s.mcp.AddTool(mcp.NewTool("duration_round",
		mcp.WithDescription("Round and rebalance a duration. Calendar units need relativeTo."),
		mcp.WithString("duration", mcp.Required(), mcp.Description("Duration as JSON")),
		recordArg("relativeTo", "Reference date or zoned date-time"),
		mcp.WithString("options", mcp.Required(), mcp.Description(`Rounding options as JSON, e.g. {"largestUnit":"day","smallestUnit":"hour"}`)),
	), s.durationRound)

	s.mcp.AddTool(mcp.NewTool("duration_total",
		mcp.WithDescription("Express a duration as a fractional number of one unit."),
		mcp.WithString("duration", mcp.Required(), mcp.Description("Duration as JSON")),
		mcp.WithString("unit", mcp.Required(), mcp.Description("Unit to total in, e.g. day")),
		recordArg("relativeTo", "Reference date or zoned date-time"),
	), s.durationTotal)

	s.mcp.AddTool(mcp.NewTool("resolve_local_time",
		mcp.WithDescription("Resolve a wall-clock time in a zone to an exact instant, handling DST gaps and overlaps."),
		recordArg("value", "ZonedDateTime record with local fields", mcp.Required()),
		mcp.WithString("disambiguation", mcp.Description("compatible (default), earlier, later or reject")),
		mcp.WithString("offset", mcp.Description("Policy for a supplied offset: reject (default), use, prefer or ignore")),
	), s.resolveLocalTime)

	s.mcp.AddTool(mcp.NewTool("temporal_with",
		mcp.WithDescription("Replace some fields of a date, date-time, zoned date-time, time, year-month or month-day. Zoned values keep their offset where it still fits."),
		recordArg("value", "Value to change", mcp.Required()),
		mcp.WithString("fields", mcp.Required(), mcp.Description(`Fields to replace as JSON, e.g. {"month":2} or {"hour":9,"offset":"+01:00"}`)),
		mcp.WithString("overflow", mcp.Description("constrain (default) or reject")),
		mcp.WithString("disambiguation", mcp.Description("compatible (default), earlier, later or reject")),
		mcp.WithString("offset", mcp.Description("Policy for the offset: prefer (default), use, ignore or reject")),
	), s.temporalWith)

	s.mcp.AddTool(mcp.NewTool("zone_day",
		mcp.WithDescription("When a local date starts in a zone and how many hours it has."),
		mcp.WithString("zone", mcp.Required(), mcp.Description("Zone id")),
		mcp.WithString("date", mcp.Required(), mcp.Description("ISO date, e.g. 2021-11-07")),
	), s.zoneDay)

	s.mcp.AddTool(mcp.NewTool("list_zones",
		mcp.WithDescription("List zones loaded from the zone catalog directory."),
	), s.listZones)

	s.mcp.AddTool(mcp.NewTool("get_record_format",
		mcp.WithDescription("Returns the JSON record format the calculator tools accept. "+
			"Call this before building tool arguments."),
	), s.getRecordFormat)

	s.mcp.AddResource(
		mcp.NewResource(optionsURI, "Accepted options",
			mcp.WithResourceDescription("Accepted option values, value kinds, operations and calendars."),
			mcp.WithMIMEType("application/json"),
		),
		s.readOptionsResource,
	)
	s.mcp.AddResource(
		mcp.NewResource(recordFormatURI, "Record Format",
			mcp.WithResourceDescription("JSON value record and duration format."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readRecordFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// decodeArg unmarshals the JSON string argument name into target. Missing
// optional arguments leave target untouched.
func decodeArg(req mcp.CallToolRequest, name string, required bool, target any) error {
	raw := req.GetString(name, "")
	if raw == "" {
		if required {
			return fmt.Errorf("%w: argument %q is required", apperr.ErrInvalidOption, name)
		}
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return fmt.Errorf("%w: argument %q: %v", apperr.ErrInvalidOption, name, err)
	}
	return nil
}

// result renders a calculation outcome. Failures become tool errors
// carrying the error class so clients can tell their mistakes from ours.
func result(v any, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s error: %v", apperr.ClassOf(err), err)), nil
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) temporalAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var r models.ArithmeticRequest
	if err := decodeArg(req, "value", true, &r.Value); err != nil {
		return result(nil, err)
	}
	if err := decodeArg(req, "duration", true, &r.Duration); err != nil {
		return result(nil, err)
	}
	r.Overflow = req.GetString("overflow", "")
	if req.GetBool("subtract", false) {
		return result(s.svc.Subtract(ctx, r))
	}
	return result(s.svc.Add(ctx, r))
}

func (s *Server) temporalUntil(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var r models.DifferenceRequest
	if err := decodeArg(req, "one", true, &r.One); err != nil {
		return result(nil, err)
	}
	if err := decodeArg(req, "other", true, &r.Other); err != nil {
		return result(nil, err)
	}
	if err := decodeArg(req, "options", false, &r.Options); err != nil {
		return result(nil, err)
	}
	if req.GetBool("since", false) {
		return result(s.svc.Since(ctx, r))
	}
	return result(s.svc.Until(ctx, r))
}

func (s *Server) temporalRound(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var r models.RoundRequest
	if err := decodeArg(req, "value", true, &r.Value); err != nil {
		return result(nil, err)
	}
	if err := decodeArg(req, "options", true, &r.Options); err != nil {
		return result(nil, err)
	}
	return result(s.svc.Round(ctx, r))
}

func relativeToArg(req mcp.CallToolRequest) (*models.ValueRecord, error) {
	if req.GetString("relativeTo", "") == "" {
		return nil, nil
	}
	var rel models.ValueRecord
	if err := decodeArg(req, "relativeTo", true, &rel); err != nil {
		return nil, err
	}
	return &rel, nil
}

func (s *Server) durationRound(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var r models.DurationRoundRequest
	if err := decodeArg(req, "duration", true, &r.Duration); err != nil {
		return result(nil, err)
	}
	if err := decodeArg(req, "options", true, &r.Options); err != nil {
		return result(nil, err)
	}
	rel, err := relativeToArg(req)
	if err != nil {
		return result(nil, err)
	}
	r.RelativeTo = rel
	return result(s.svc.DurationRound(ctx, r))
}

func (s *Server) durationTotal(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var r models.DurationTotalRequest
	if err := decodeArg(req, "duration", true, &r.Duration); err != nil {
		return result(nil, err)
	}
	unit, err := req.RequireString("unit")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	r.Options.Unit = unit
	if r.RelativeTo, err = relativeToArg(req); err != nil {
		return result(nil, err)
	}
	return result(s.svc.DurationTotal(ctx, r))
}

func (s *Server) resolveLocalTime(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var r models.ResolveRequest
	if err := decodeArg(req, "value", true, &r.Value); err != nil {
		return result(nil, err)
	}
	r.Options.Disambiguation = req.GetString("disambiguation", "")
	r.Options.Offset = req.GetString("offset", "")
	return result(s.svc.Resolve(ctx, r))
}

func (s *Server) temporalWith(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var r models.WithRequest
	if err := decodeArg(req, "value", true, &r.Value); err != nil {
		return result(nil, err)
	}
	if err := decodeArg(req, "fields", true, &r.Fields); err != nil {
		return result(nil, err)
	}
	r.Options.Overflow = req.GetString("overflow", "")
	r.Options.Disambiguation = req.GetString("disambiguation", "")
	r.Options.Offset = req.GetString("offset", "")
	return result(s.svc.With(ctx, r))
}

func (s *Server) zoneDay(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	zone, err := req.RequireString("zone")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, err := req.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return result(nil, fmt.Errorf("%w: date %q is not YYYY-MM-DD", apperr.ErrInvalidOption, raw))
	}
	return result(s.svc.Day(ctx, zone, iso.Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}))
}

func (s *Server) listZones(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	zones := s.svc.ListZones(ctx)
	if len(zones) == 0 {
		return mcp.NewToolResultText("no catalog zones loaded"), nil
	}
	return result(zones, nil)
}

func (s *Server) getRecordFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(RecordFormat), nil
}

func (s *Server) optionsDocument() ([]byte, error) {
	return json.MarshalIndent(map[string]any{
		"options":   calcservice.Options(),
		"calendars": s.svc.Calendars(),
	}, "", "  ")
}

func (s *Server) readOptionsResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	doc, err := s.optionsDocument()
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      optionsURI,
			MIMEType: "application/json",
			Text:     string(doc),
		},
	}, nil
}

func (s *Server) readRecordFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      recordFormatURI,
			MIMEType: "text/markdown",
			Text:     RecordFormat,
		},
	}, nil
}
