package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	apperrors "github.com/louisbranch/wfrp-stress/internal/platform/errors"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const actorResourcePrefix = "stress://actors"

// ActorResourceURI returns the resource URI for one actor's stress.
func ActorResourceURI(actorID string) string {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return ""
	}
	return actorResourcePrefix + "/" + actorID
}

// ActorListResource defines the readable listing of tracked actors.
func ActorListResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "stress_actor_list",
		Title:       "Actors",
		Description: "Readable listing of actors with stress tracks",
		MIMEType:    "application/json",
		URI:         actorResourcePrefix,
	}
}

// ActorResourceTemplate defines the per-actor stress resource.
// URI format: stress://actors/{actor_id}
func ActorResourceTemplate() *mcp.ResourceTemplate {
	return &mcp.ResourceTemplate{
		Name:        "stress_actor",
		Title:       "Actor stress",
		Description: "Current stress, maximum and affliction flag for one actor. URI format: stress://actors/{actor_id}",
		MIMEType:    "application/json",
		URITemplate: actorResourcePrefix + "/{actor_id}",
	}
}

// ActorListPayload is the JSON body of the actor listing resource.
type ActorListPayload struct {
	Actors []ActorListEntry `json:"actors"`
}

// ActorListEntry is one actor in the listing.
type ActorListEntry struct {
	ActorID      string `json:"actor_id"`
	Name         string `json:"name"`
	Willpower    int    `json:"willpower"`
	Intelligence int    `json:"intelligence"`
	Cool         int    `json:"cool"`
	URI          string `json:"uri"`
}

// ActorListResourceHandler returns the actor listing.
func ActorListResourceHandler(svc StressService) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if svc == nil {
			return nil, fmt.Errorf("stress service is not configured")
		}
		uri := actorResourcePrefix
		if req != nil && req.Params != nil && req.Params.URI != "" {
			uri = req.Params.URI
		}

		actors, err := svc.ListActors(ctx)
		if err != nil {
			return nil, fmt.Errorf("actor list failed: %w", err)
		}
		payload := ActorListPayload{Actors: make([]ActorListEntry, 0, len(actors))}
		for _, actor := range actors {
			payload.Actors = append(payload.Actors, ActorListEntry{
				ActorID:      actor.ID,
				Name:         actor.Name,
				Willpower:    actor.Willpower,
				Intelligence: actor.Intelligence,
				Cool:         actor.Cool,
				URI:          ActorResourceURI(actor.ID),
			})
		}
		return jsonResource(uri, payload)
	}
}

// ActorResourceHandler returns one actor's stress.
func ActorResourceHandler(svc StressService) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if svc == nil {
			return nil, fmt.Errorf("stress service is not configured")
		}
		if req == nil || req.Params == nil {
			return nil, fmt.Errorf("resource uri is required")
		}
		uri := req.Params.URI
		actorID, err := parseActorIDFromURI(uri)
		if err != nil {
			return nil, err
		}

		view, err := svc.GetStress(ctx, actorID)
		if err != nil {
			if apperrors.IsCode(err, apperrors.CodeActorNotFound) {
				return nil, mcp.ResourceNotFoundError(uri)
			}
			return nil, fmt.Errorf("stress get failed: %w", err)
		}
		return jsonResource(uri, stressResultFromView(view))
	}
}

// parseActorIDFromURI extracts the actor ID from stress://actors/{actor_id}.
func parseActorIDFromURI(uri string) (string, error) {
	prefix := actorResourcePrefix + "/"
	if !strings.HasPrefix(uri, prefix) {
		return "", fmt.Errorf("invalid URI format: expected %s{actor_id}", prefix)
	}
	actorID := strings.TrimSpace(strings.TrimPrefix(uri, prefix))
	if actorID == "" || strings.Contains(actorID, "/") {
		return "", fmt.Errorf("actor id is required in URI")
	}
	return actorID, nil
}

func jsonResource(uri string, payload any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: "application/json",
				Text:     string(data),
			},
		},
	}, nil
}
