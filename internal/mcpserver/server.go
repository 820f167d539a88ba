// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the note store as tools, over streamable HTTP or stdio.
package mcpserver

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/notepad/internal/models"
	"github.com/starford/notepad/internal/notestore"
)

// Name and Version are reported to MCP clients.
const (
	Name    = "Notes App"
	Version = "1.0.0"
)

// journalDefaultLimit is the number of history entries returned when no
// limit is given.
const journalDefaultLimit = 20

// EmptyHistory is returned by get_note_history when nothing was journaled.
const EmptyHistory = "No history found"

// History reads journaled mutations.
type History interface {
	Recent(ctx context.Context, limit int) ([]models.HistoryEntry, error)
}

// Server wraps the MCP server with the notes tools.
type Server struct {
	mcp     *server.MCPServer
	store   *notestore.Store
	history History
	logger  *slog.Logger
}

// New creates a new MCP server with all tools registered. history may be nil,
// in which case get_note_history is not offered.
func New(store *notestore.Store, history History, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{store: store, history: history, logger: logger}

	s.mcp = server.NewMCPServer(
		Name,
		Version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithRecovery(),
	)

	s.mcp.AddTool(mcp.NewTool("get_my_notes",
		mcp.WithDescription("Get all notes, numbered from 1 in the order they were added."),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.getMyNotes)

	s.mcp.AddTool(mcp.NewTool("add_note",
		mcp.WithDescription("Add a note. The content must be a single non-blank line."),
		mcp.WithString("content", mcp.Required(), mcp.Description("The note content to add")),
	), s.addNote)

	s.mcp.AddTool(mcp.NewTool("delete_random_notes",
		mcp.WithDescription("Randomly pick and delete notes from the notes file."),
		mcp.WithNumber("count", mcp.DefaultNumber(1), mcp.Description("Number of notes to randomly delete (default: 1)")),
		mcp.WithDestructiveHintAnnotation(true),
	), s.deleteRandomNotes)

	if history != nil {
		s.mcp.AddTool(mcp.NewTool("get_note_history",
			mcp.WithDescription("List recently added and deleted notes, newest first."),
			mcp.WithNumber("limit", mcp.DefaultNumber(journalDefaultLimit), mcp.Description("Maximum number of entries (default: 20)")),
			mcp.WithReadOnlyHintAnnotation(true),
		), s.getNoteHistory)
	}

	s.mcp.AddResource(
		mcp.NewResource(FormatURI, "Notes File Format",
			mcp.WithResourceDescription("How notes are stored and what add_note accepts."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
	)

	return s
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// HTTPHandler returns a streamable HTTP handler serving MCP at endpoint.
func (s *Server) HTTPHandler(endpoint string) http.Handler {
	return server.NewStreamableHTTPServer(s.mcp,
		server.WithEndpointPath(endpoint),
	)
}

// ServeStdio serves MCP on in/out until ctx is cancelled or in is closed.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(log.New(&slogWriter{logger: s.logger}, "", 0))
	return stdio.Listen(ctx, in, out)
}

func (s *Server) getMyNotes(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	l, err := s.store.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(notestore.FailureText(notestore.ActionList, err)), nil
	}
	return mcp.NewToolResultText(l.String()), nil
}

func (s *Server) addNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(notestore.FailureText(notestore.ActionAdd, err)), nil
	}
	note, err := s.store.Add(ctx, content)
	if err != nil {
		return mcp.NewToolResultError(notestore.FailureText(notestore.ActionAdd, err)), nil
	}
	return mcp.NewToolResultText(notestore.AddedText(note)), nil
}

func (s *Server) deleteRandomNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	count, err := intArgument(req, "count", 1)
	if err != nil {
		return mcp.NewToolResultError(notestore.FailureText(notestore.ActionDelete, notestore.ErrCountNotInteger)), nil
	}
	d, err := s.store.DeleteRandom(ctx, count)
	if err != nil {
		return mcp.NewToolResultError(notestore.FailureText(notestore.ActionDelete, err)), nil
	}
	return mcp.NewToolResultText(d.String()), nil
}

func (s *Server) getNoteHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit, err := intArgument(req, "limit", journalDefaultLimit)
	if err != nil {
		return mcp.NewToolResultError("Error retrieving history: " + err.Error()), nil
	}
	entries, err := s.history.Recent(ctx, limit)
	if err != nil {
		s.logger.Error("get history failed", slog.String("error", err.Error()))
		return mcp.NewToolResultError("Error retrieving history: " + err.Error()), nil
	}
	return mcp.NewToolResultText(FormatHistory(entries)), nil
}

func (s *Server) readFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      FormatURI,
			MIMEType: "text/markdown",
			Text:     NotesFormat,
		},
	}, nil
}

// FormatHistory renders entries one per line: "<RFC3339 time> <op>: <note>".
func FormatHistory(entries []models.HistoryEntry) string {
	if len(entries) == 0 {
		return EmptyHistory
	}
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = fmt.Sprintf("%s %s: %s", e.CreatedAt.UTC().Format(time.RFC3339), e.Op, e.Note)
	}
	return strings.Join(lines, "\n")
}

// slogWriter adapts the stdio server's *log.Logger onto slog.
type slogWriter struct {
	logger *slog.Logger
}

func (w *slogWriter) Write(p []byte) (int, error) {
	w.logger.Error("mcp stdio", slog.String("error", strings.TrimSpace(string(p))))
	return len(p), nil
}
