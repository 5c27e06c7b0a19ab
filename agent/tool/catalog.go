package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/voice-agent-demos/agent/contract"
)

var (
	ErrDuplicateTool = errors.New("duplicate tool name")
	ErrInvalidTool   = errors.New("invalid tool definition")
)

// Handler runs one tool call. The returned string is spoken back to the
// caller; an error means the arguments were unusable and is shown to the
// model instead.
type Handler func(ctx context.Context, args Args) (string, error)

type Tool struct {
	Info   *schema.ToolInfo
	Handle Handler
}

// Define builds a tool whose parameters are all strings.
func Define(name, desc string, params map[string]*schema.ParameterInfo, h Handler) Tool {
	info := &schema.ToolInfo{Name: name, Desc: desc}
	if len(params) > 0 {
		info.ParamsOneOf = schema.NewParamsOneOfByParams(params)
	}
	return Tool{Info: info, Handle: h}
}

func RequiredString(desc string) *schema.ParameterInfo {
	return &schema.ParameterInfo{Type: schema.String, Desc: desc, Required: true}
}

func OptionalString(desc string) *schema.ParameterInfo {
	return &schema.ParameterInfo{Type: schema.String, Desc: desc}
}

// Catalog is the set of tools one agent session exposes to the model.
type Catalog struct {
	agentKind contractx.AgentKind
	tools     map[string]Tool
	infos     []*schema.ToolInfo
}

func NewCatalog(agentKind contractx.AgentKind, tools ...Tool) (*Catalog, error) {
	c := &Catalog{
		agentKind: agentKind,
		tools:     make(map[string]Tool, len(tools)),
		infos:     make([]*schema.ToolInfo, 0, len(tools)),
	}
	for _, t := range tools {
		if t.Info == nil || strings.TrimSpace(t.Info.Name) == "" || t.Handle == nil {
			return nil, ErrInvalidTool
		}
		if _, ok := c.tools[t.Info.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTool, t.Info.Name)
		}
		c.tools[t.Info.Name] = t
		c.infos = append(c.infos, t.Info)
	}
	return c, nil
}

func MustNewCatalog(agentKind contractx.AgentKind, tools ...Tool) *Catalog {
	c, err := NewCatalog(agentKind, tools...)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) AgentKind() contractx.AgentKind {
	return c.agentKind
}

// Infos returns the tool schemas in definition order.
func (c *Catalog) Infos() []*schema.ToolInfo {
	return append([]*schema.ToolInfo(nil), c.infos...)
}

func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.infos))
	for _, info := range c.infos {
		names = append(names, info.Name)
	}
	return names
}

func (c *Catalog) Has(name string) bool {
	_, ok := c.tools[name]
	return ok
}

// Execute dispatches one request. Unknown tools and bad arguments come back as
// a result with Error set; Execute itself never fails.
func (c *Catalog) Execute(ctx context.Context, req contractx.ToolRequest) contractx.ToolResult {
	t, ok := c.tools[req.Tool]
	if !ok {
		return contractx.ToolResult{
			Tool:  req.Tool,
			Error: fmt.Sprintf("tool=%s is unavailable for agent=%s", req.Tool, c.agentKind),
		}
	}

	out, err := t.Handle(ctx, Args(req.Args))
	if err != nil {
		return contractx.ToolResult{Tool: req.Tool, Error: err.Error()}
	}
	return contractx.ToolResult{Tool: req.Tool, Result: out}
}
