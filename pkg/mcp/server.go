// Package mcp exposes redisctl over the Model Context Protocol, so MCP
// clients can list and run workflows and read from the REST APIs through
// the same profile configuration the CLI uses.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/redisctl/redisctl/pkg/api/cloud"
	"github.com/redisctl/redisctl/pkg/api/enterprise"
	"github.com/redisctl/redisctl/pkg/config"
	"github.com/redisctl/redisctl/pkg/telemetry"
	"github.com/redisctl/redisctl/pkg/workflow"
)

// getArgs extracts arguments from request as map[string]any.
func getArgs(request mcp.CallToolRequest) map[string]any {
	if args, ok := request.Params.Arguments.(map[string]any); ok {
		return args
	}
	return make(map[string]any)
}

// Server wraps an MCP server over the workflow registry and API clients.
type Server struct {
	mcpServer *server.MCPServer
	cfg       *config.Config
	registry  *workflow.Registry
	log       *telemetry.Logger
}

// NewServer creates the MCP server and registers its tools.
func NewServer(cfg *config.Config, registry *workflow.Registry, log *telemetry.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		registry: registry,
		log:      log.NewComponentLogger("mcp"),
	}

	mcpServer := server.NewMCPServer(
		"redisctl",
		"1.0.0",
		server.WithToolCapabilities(true),
	)
	s.registerTools(mcpServer)
	s.mcpServer = mcpServer
	return s
}

// registerTools adds all MCP tools.
func (s *Server) registerTools(mcpServer *server.MCPServer) {
	listTool := mcp.NewTool("workflow_list",
		mcp.WithDescription("List the available redisctl workflows"),
	)
	mcpServer.AddTool(listTool, s.handleWorkflowList)

	runTool := mcp.NewTool("workflow_run",
		mcp.WithDescription("Run a redisctl workflow and return its result as JSON"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Workflow name, as reported by workflow_list"),
		),
		mcp.WithString("args",
			mcp.Description("Workflow arguments as a JSON object, e.g. {\"name\":\"prod\"}"),
		),
		mcp.WithString("profile",
			mcp.Description("Configuration profile to use; defaults follow the config file and environment"),
		),
		mcp.WithNumber("timeout_seconds",
			mcp.Description("Overall wait budget per asynchronous operation (default 600)"),
		),
		mcp.WithNumber("interval_seconds",
			mcp.Description("Delay between status checks (default 10)"),
		),
		mcp.WithBoolean("confirm",
			mcp.Description("Must be true; workflows mutate the target account or cluster"),
		),
	)
	mcpServer.AddTool(runTool, s.handleWorkflowRun)

	cloudGetTool := mcp.NewTool("cloud_api_get",
		mcp.WithDescription("Perform a GET request against the Redis Cloud API and return the raw JSON"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("API path, e.g. /subscriptions"),
		),
		mcp.WithString("profile",
			mcp.Description("Cloud profile to use"),
		),
	)
	mcpServer.AddTool(cloudGetTool, s.handleCloudAPIGet)

	enterpriseGetTool := mcp.NewTool("enterprise_api_get",
		mcp.WithDescription("Perform a GET request against the Redis Enterprise API and return the raw JSON"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("API path, e.g. /v1/cluster"),
		),
		mcp.WithString("profile",
			mcp.Description("Enterprise profile to use"),
		),
	)
	mcpServer.AddTool(enterpriseGetTool, s.handleEnterpriseAPIGet)
}

// handleWorkflowList lists registered workflows.
func (s *Server) handleWorkflowList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(s.registry.List(), "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding workflow list: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// handleWorkflowRun executes a workflow and reports its result document. A
// failed run still returns the result so the caller sees partial outputs.
func (s *Server) handleWorkflowRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	reqArgs := getArgs(request)

	name, ok := reqArgs["name"].(string)
	if !ok || name == "" {
		return mcp.NewToolResultError("name parameter is required"), nil
	}
	wf, ok := s.registry.Get(name)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unknown workflow %q", name)), nil
	}

	// The other tools are read-only; running a workflow is the one mutating
	// operation this server exposes, so it demands an explicit confirmation.
	if confirm, _ := reqArgs["confirm"].(bool); !confirm {
		return mcp.NewToolResultError("workflow_run mutates the target deployment; pass confirm: true to proceed"), nil
	}

	wfArgs := workflow.Args{}
	if raw, _ := reqArgs["args"].(string); raw != "" {
		if err := json.Unmarshal([]byte(raw), &wfArgs); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("args is not a JSON object: %v", err)), nil
		}
	}

	poll := workflow.DefaultPollConfig()
	if v, ok := reqArgs["timeout_seconds"].(float64); ok && v > 0 {
		poll.Timeout = time.Duration(v * float64(time.Second))
	}
	if v, ok := reqArgs["interval_seconds"].(float64); ok && v > 0 {
		poll.Interval = time.Duration(v * float64(time.Second))
	}
	if err := poll.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	profileName, _ := reqArgs["profile"].(string)
	log := s.log.WithWorkflow(name)
	if profileName != "" {
		log = log.WithProfile(profileName)
	}
	rc := workflow.NewRunContext(log, poll)
	rc.Quiet = true
	if err := s.attachClients(rc, profileName); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	log.Info("running workflow over MCP")
	result, err := wf.Execute(ctx, rc, wfArgs)
	if err != nil && result == nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// On failure the result document still carries success=false and the
	// partial outputs; surface it as text so the caller can inspect it.
	data, merr := json.MarshalIndent(result, "", "  ")
	if merr != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", merr)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// attachClients wires whichever backend clients the profiles can provide.
// Workflows reject runs missing the client they need.
func (s *Server) attachClients(rc *workflow.RunContext, profileName string) error {
	var lastErr error
	if profile, _, err := s.cfg.ResolveProfile(profileName, config.DeploymentCloud); err == nil {
		rc.Cloud = cloud.NewClient(profile.APIKey, profile.APISecret, profile.APIURL)
	} else {
		lastErr = err
	}
	if profile, _, err := s.cfg.ResolveProfile(profileName, config.DeploymentEnterprise); err == nil {
		rc.Enterprise = enterprise.NewClient(profile.URL, profile.Username, profile.Password, profile.Insecure)
	} else {
		lastErr = err
	}
	if rc.Cloud == nil && rc.Enterprise == nil {
		return fmt.Errorf("no usable profile: %w", lastErr)
	}
	return nil
}

// handleCloudAPIGet performs a raw GET against the Cloud API.
func (s *Server) handleCloudAPIGet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := getArgs(request)
	path, ok := args["path"].(string)
	if !ok || path == "" {
		return mcp.NewToolResultError("path parameter is required"), nil
	}
	profileName, _ := args["profile"].(string)

	profile, _, err := s.cfg.ResolveProfile(profileName, config.DeploymentCloud)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	client := cloud.NewClient(profile.APIKey, profile.APISecret, profile.APIURL)

	doc, err := client.Get(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(doc)
}

// handleEnterpriseAPIGet performs a raw GET against the Enterprise API.
func (s *Server) handleEnterpriseAPIGet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := getArgs(request)
	path, ok := args["path"].(string)
	if !ok || path == "" {
		return mcp.NewToolResultError("path parameter is required"), nil
	}
	profileName, _ := args["profile"].(string)

	profile, _, err := s.cfg.ResolveProfile(profileName, config.DeploymentEnterprise)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	client := enterprise.NewClient(profile.URL, profile.Username, profile.Password, profile.Insecure)

	doc, err := client.Get(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(doc)
}

func jsonResult(doc map[string]any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// Serve runs the MCP server over stdio until the client disconnects or ctx
// is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	s.log.Info("serving MCP over stdio")
	return s.serve(ctx, os.Stdin, os.Stdout)
}

func (s *Server) serve(ctx context.Context, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s.mcpServer).Listen(ctx, in, out)
}
