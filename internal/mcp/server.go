package mcp

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/a3tai/mcp-pdf-forms/internal/config"
	"github.com/a3tai/mcp-pdf-forms/internal/descriptions"
	"github.com/a3tai/mcp-pdf-forms/internal/pdf"
)

// shutdownTimeout bounds the SSE server shutdown in server mode
const shutdownTimeout = 5 * time.Second

// Server represents the MCP server instance
type Server struct {
	config     *config.Config
	pdfService *pdf.Service
	serverInfo *pdf.PDFServerInfo
	mcpServer  *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, pdfService *pdf.Service) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if pdfService == nil {
		return nil, fmt.Errorf("pdfService cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // the tool set never changes at runtime
		server.WithRecovery(),
	)

	s := &Server{
		config:     cfg,
		pdfService: pdfService,
		serverInfo: pdf.NewPDFServerInfo(pdfService),
		mcpServer:  mcpServer,
	}
	s.registerTools()

	return s, nil
}

func pathArg(description string) mcp.ToolOption {
	return mcp.WithString("path", mcp.Required(), mcp.Description(description))
}

func outputArg() mcp.ToolOption {
	return mcp.WithString("output",
		mcp.Description("Output file, absolute or relative to the output directory. Defaults to a generated name."))
}

func namesArg(description string) mcp.ToolOption {
	return mcp.WithArray("names", mcp.Description(description), mcp.Items(map[string]any{"type": "string"}))
}

func allArg(description string) mcp.ToolOption {
	return mcp.WithBoolean("all", mcp.Description(description))
}

func formatArg() mcp.ToolOption {
	return mcp.WithString("format",
		mcp.Description("json or yaml; defaults to the output file extension, else json"),
		mcp.Enum("json", "yaml"))
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	s.addTool("pdf_form_inspect", s.handleFormInspect,
		pathArg("Path to the PDF file"),
		mcp.WithString("password", mcp.Description("User password for encrypted documents")),
	)
	s.addTool("pdf_form_export", s.handleFormExport,
		pathArg("Path to the PDF form"),
		outputArg(),
		formatArg(),
		mcp.WithBoolean("include_empty", mcp.Description("Include fields without a value")),
	)
	s.addTool("pdf_form_map", s.handleFormMap,
		pathArg("Path to the PDF form"),
	)
	s.addTool("pdf_form_search", s.handleFormSearch,
		pathArg("Path to the PDF form"),
		mcp.WithString("term", mcp.Description("Text to look for in field names and tooltips; empty lists every field")),
	)
	s.addTool("pdf_form_template", s.handleFormTemplate,
		pathArg("Path to the PDF form"),
		outputArg(),
		formatArg(),
		mcp.WithArray("sections",
			mcp.Description("Only include fields whose names start with one of these prefixes"),
			mcp.Items(map[string]any{"type": "string"})),
	)
	s.addTool("pdf_form_fill", s.handleFormFill,
		pathArg("Path to the PDF form"),
		mcp.WithObject("values", mcp.Description("Field name to value mapping")),
		mcp.WithString("data_file", mcp.Description("JSON or YAML data file, or inline JSON, used when values is empty")),
		outputArg(),
	)
	s.addTool("pdf_form_clear", s.handleFormClear,
		pathArg("Path to the PDF form"),
		namesArg("Fields to clear; [\"ALL\"] clears every field"),
		allArg("Clear every field"),
		outputArg(),
	)
	s.addTool("pdf_form_hide", s.handleFormHide,
		pathArg("Path to the PDF form"),
		namesArg("Fields to hide"),
		outputArg(),
	)
	s.addTool("pdf_form_unlock", s.handleFormUnlock,
		pathArg("Path to the PDF form"),
		namesArg("Fields to unlock; [\"ALL\"] unlocks every read-only field"),
		allArg("Unlock every read-only field"),
		outputArg(),
	)
	s.addTool("pdf_validate_file", s.handlePDFValidateFile,
		pathArg("Path to the PDF file"),
	)
	s.addTool("pdf_search_directory", s.handlePDFSearchDirectory,
		mcp.WithString("directory", mcp.Description("Directory path to search (uses default if empty)")),
		mcp.WithString("query", mcp.Description("Optional search query for fuzzy matching")),
	)
	s.addTool("pdf_server_info", s.handlePDFServerInfo)
}

func (s *Server) addTool(name string, handler server.ToolHandlerFunc, opts ...mcp.ToolOption) {
	opts = append([]mcp.ToolOption{mcp.WithDescription(descriptions.GetToolDescription(name))}, opts...)
	s.mcpServer.AddTool(mcp.NewTool(name, opts...), handler)
}

// resolvePath makes relative paths relative to the input directory
func (s *Server) resolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.config.PDFDirectory, path)
}

// stringList reads an array argument. A single string is split on commas.
func stringList(request mcp.CallToolRequest, key string) []string {
	if raw, ok := request.GetArguments()[key].(string); ok {
		var out []string
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}
	return request.GetStringSlice(key, nil)
}

func (s *Server) handleFormInspect(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.Inspect(pdf.PDFFormInspectRequest{
		Path:     s.resolvePath(path),
		Password: request.GetString("password", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatInspectResult(result)), nil
}

func (s *Server) handleFormExport(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.Export(pdf.PDFFormExportRequest{
		Path:         s.resolvePath(path),
		Output:       request.GetString("output", ""),
		Format:       request.GetString("format", ""),
		IncludeEmpty: request.GetBool("include_empty", false),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatExportResult(result)), nil
}

func (s *Server) handleFormMap(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.Map(pdf.PDFFormMapRequest{Path: s.resolvePath(path)})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatMapResult(result)), nil
}

func (s *Server) handleFormSearch(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.Search(pdf.PDFFormSearchRequest{
		Path: s.resolvePath(path),
		Term: request.GetString("term", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSearchResult(result)), nil
}

func (s *Server) handleFormTemplate(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.Template(pdf.PDFFormTemplateRequest{
		Path:     s.resolvePath(path),
		Output:   request.GetString("output", ""),
		Format:   request.GetString("format", ""),
		Sections: stringList(request, "sections"),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatTemplateResult(result)), nil
}

func (s *Server) handleFormFill(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := pdf.PDFFormFillRequest{
		Path:   s.resolvePath(path),
		Output: request.GetString("output", ""),
	}
	if values, ok := request.GetArguments()["values"].(map[string]any); ok {
		req.Values = values
	}
	if dataFile := request.GetString("data_file", ""); dataFile != "" {
		if strings.HasPrefix(strings.TrimSpace(dataFile), "{") {
			req.DataFile = dataFile
		} else {
			req.DataFile = s.resolvePath(dataFile)
		}
	}

	result, err := s.pdfService.Fill(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatFillResult(result)), nil
}

func (s *Server) handleFormClear(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.ClearDefaults(pdf.PDFFormClearRequest{
		Path:   s.resolvePath(path),
		Output: request.GetString("output", ""),
		Names:  stringList(request, "names"),
		All:    request.GetBool("all", false),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatEditResult("Cleared", result.Cleared, result.Output, &result.Diagnostics)), nil
}

func (s *Server) handleFormHide(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.Hide(pdf.PDFFormHideRequest{
		Path:   s.resolvePath(path),
		Output: request.GetString("output", ""),
		Names:  stringList(request, "names"),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatEditResult("Hidden", result.Hidden, result.Output, &result.Diagnostics)), nil
}

func (s *Server) handleFormUnlock(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.Unlock(pdf.PDFFormUnlockRequest{
		Path:   s.resolvePath(path),
		Output: request.GetString("output", ""),
		Names:  stringList(request, "names"),
		All:    request.GetBool("all", false),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatEditResult("Unlocked", result.Unlocked, result.Output, &result.Diagnostics)), nil
}

func (s *Server) handlePDFValidateFile(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.ValidateFile(pdf.PDFValidateFileRequest{Path: s.resolvePath(path)})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var responseText string
	if result.Valid {
		responseText = fmt.Sprintf("PDF file %s is valid and readable", result.Path)
	} else {
		responseText = fmt.Sprintf("PDF validation failed for %s: %s", result.Path, result.Message)
	}
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handlePDFSearchDirectory(_ context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	directory := s.config.PDFDirectory
	if dir := request.GetString("directory", ""); dir != "" {
		directory = s.resolvePath(dir)
	}

	result, err := s.pdfService.SearchDirectory(pdf.PDFSearchDirectoryRequest{
		Directory: directory,
		Query:     request.GetString("query", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if result.TotalCount == 0 {
		responseText := fmt.Sprintf("No PDF files found in directory: %s", result.Directory)
		if result.SearchQuery != "" {
			responseText += fmt.Sprintf(" (searched for: %s)", result.SearchQuery)
		}
		return mcp.NewToolResultText(responseText), nil
	}
	return mcp.NewToolResultText(formatSearchDirectoryResult(result)), nil
}

func (s *Server) handlePDFServerInfo(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.serverInfo.GetServerInfo(ctx, s.config.ServerName, s.config.Version)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatServerInfoResult(result)), nil
}

// Run starts the MCP server in the configured mode
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode serves MCP over stdin/stdout until ctx is done or input ends
func (s *Server) runStdioMode(ctx context.Context) error {
	if s.config.IsDebug() {
		log.Printf("Starting PDF forms MCP server in stdio mode")
		log.Printf("PDF directory: %s, output directory: %s", s.config.PDFDirectory, s.config.OutputDirectory)
	}

	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(log.New(os.Stderr, "", log.LstdFlags))
	if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode serves MCP over HTTP with server-sent events until ctx is done
func (s *Server) runServerMode(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := s.config.Address()
	sse := server.NewSSEServer(s.mcpServer, server.WithBaseURL("http://"+addr))
	log.Printf("Starting PDF forms MCP server on %s (SSE)", addr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- sse.Start(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve SSE: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := sse.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down SSE server: %w", err)
		}
		return nil
	}
}
