package service

import (
	"fmt"

	"github.com/louisbranch/wfrp-stress/internal/services/mcp/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type mcpRegistrationTarget interface {
	AddTool(*mcp.Tool, any) error
	AddResourceTemplate(*mcp.ResourceTemplate, mcp.ResourceHandler)
	AddResource(*mcp.Resource, mcp.ResourceHandler)
}

func registerStressTools(registrar mcpRegistrationTarget, svc domain.StressService, notify domain.ResourceUpdateNotifier) error {
	registrations := []struct {
		tool    *mcp.Tool
		handler any
	}{
		{tool: domain.ActorUpsertTool(), handler: domain.ActorUpsertHandler(svc, notify)},
		{tool: domain.StressGetTool(), handler: domain.StressGetHandler(svc)},
		{tool: domain.StressSetTool(), handler: domain.StressSetHandler(svc, notify)},
		{tool: domain.TestApplyTool(), handler: domain.TestApplyHandler(svc, notify)},
		{tool: domain.TestRollTool(), handler: domain.TestRollHandler(svc, notify)},
		{tool: domain.HistoryTool(), handler: domain.HistoryHandler(svc)},
	}
	for _, registration := range registrations {
		if err := registerTool(registrar, registration.tool, registration.handler); err != nil {
			return err
		}
	}
	return nil
}

func registerStressResources(registrar mcpRegistrationTarget, svc domain.StressService) {
	registrar.AddResource(domain.ActorListResource(), domain.ActorListResourceHandler(svc))
	registrar.AddResourceTemplate(domain.ActorResourceTemplate(), domain.ActorResourceHandler(svc))
}

func registerTool(registrar mcpRegistrationTarget, tool *mcp.Tool, handler any) error {
	if tool == nil {
		return fmt.Errorf("tool is nil")
	}
	return registrar.AddTool(tool, handler)
}
