package graph

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/stem/pkg/tracing"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/Ramsey-B/bramble/pkg/models"
)

// Projector maintains the lineage projection. Games are :Game nodes, external
// works are :ExternalWork nodes keyed by URL, and based-on links are
// BASED_ON edges carrying the link label.
type Projector struct {
	client *Client
	logger ectologger.Logger
}

// NewProjector creates a new lineage projector
func NewProjector(client *Client, logger ectologger.Logger) *Projector {
	return &Projector{client: client, logger: logger}
}

// ProjectGame creates or updates the game's node.
func (p *Projector) ProjectGame(ctx context.Context, game *models.Game) error {
	ctx, span := tracing.StartSpan(ctx, "graph.Projector.ProjectGame")
	defer span.End()

	cypher := `
		MERGE (g:Game {id: $id})
		SET g.title = $title, g.updated_at = $updated_at
		RETURN g
	`

	_, err := p.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, map[string]any{
			"id":         game.ID,
			"title":      game.Title,
			"updated_at": game.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		})
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})

	if err != nil {
		p.logger.WithContext(ctx).WithError(err).WithField("game_id", game.ID).Error("failed to project game node")
		return fmt.Errorf("failed to project game node: %w", err)
	}
	return nil
}

// ReplaceBasedOn replaces the game's outgoing BASED_ON edges with the given
// links, mirroring the relational replacement. Game targets get a placeholder
// node if not yet projected; URL targets merge an :ExternalWork node.
func (p *Projector) ReplaceBasedOn(ctx context.Context, gameID string, links []models.BasedOnInput) error {
	ctx, span := tracing.StartSpan(ctx, "graph.Projector.ReplaceBasedOn")
	defer span.End()

	_, err := p.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, `
			MATCH (g:Game {id: $id})-[r:BASED_ON]->()
			DELETE r
		`, map[string]any{"id": gameID})
		if err != nil {
			return nil, err
		}
		if _, err := result.Consume(ctx); err != nil {
			return nil, err
		}

		for _, link := range links {
			var cypher string
			params := map[string]any{
				"id":    gameID,
				"label": link.Label,
			}
			switch link.SourceType() {
			case models.BasedOnSourceGame:
				cypher = `
					MERGE (g:Game {id: $id})
					MERGE (t:Game {id: $target})
					MERGE (g)-[r:BASED_ON]->(t)
					SET r.label = $label
				`
				params["target"] = *link.BasedOnGameID
			case models.BasedOnSourceURL:
				cypher = `
					MERGE (g:Game {id: $id})
					MERGE (t:ExternalWork {url: $url})
					MERGE (g)-[r:BASED_ON]->(t)
					SET r.label = $label
				`
				params["url"] = *link.BasedOnURL
			}

			result, err := tx.Run(ctx, cypher, params)
			if err != nil {
				return nil, err
			}
			if _, err := result.Consume(ctx); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})

	if err != nil {
		p.logger.WithContext(ctx).WithError(err).WithField("game_id", gameID).Error("failed to replace based-on edges")
		return fmt.Errorf("failed to replace based-on edges: %w", err)
	}
	return nil
}

// RemoveGame deletes the game's node and all its edges.
func (p *Projector) RemoveGame(ctx context.Context, gameID string) error {
	ctx, span := tracing.StartSpan(ctx, "graph.Projector.RemoveGame")
	defer span.End()

	_, err := p.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, `
			MATCH (g:Game {id: $id})
			DETACH DELETE g
		`, map[string]any{"id": gameID})
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})

	if err != nil {
		p.logger.WithContext(ctx).WithError(err).WithField("game_id", gameID).Error("failed to remove game node")
		return fmt.Errorf("failed to remove game node: %w", err)
	}
	return nil
}

// LineageNode is one ancestor on a game's based-on chain.
type LineageNode struct {
	GameID string `json:"game_id,omitempty"`
	Title  string `json:"title,omitempty"`
	URL    string `json:"url,omitempty"`
	Label  string `json:"label"`
	Depth  int    `json:"depth"`
}

// Lineage walks the BASED_ON chain from the given game up to maxDepth hops
// and returns the ancestors in breadth order.
func (p *Projector) Lineage(ctx context.Context, gameID string, maxDepth int) ([]LineageNode, error) {
	ctx, span := tracing.StartSpan(ctx, "graph.Projector.Lineage")
	defer span.End()

	if maxDepth < 1 {
		maxDepth = 5
	}

	cypher := fmt.Sprintf(`
		MATCH path = (g:Game {id: $id})-[:BASED_ON*1..%d]->(a)
		WITH a, relationships(path) AS rels, length(path) AS depth
		RETURN a.id AS game_id, a.title AS title, a.url AS url,
			rels[size(rels)-1].label AS label, depth
		ORDER BY depth ASC
	`, maxDepth)

	result, err := p.client.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, map[string]any{"id": gameID})
		if err != nil {
			return nil, err
		}

		var nodes []LineageNode
		for result.Next(ctx) {
			record := result.Record()
			node := LineageNode{}
			if v, ok := record.Get("game_id"); ok && v != nil {
				node.GameID, _ = v.(string)
			}
			if v, ok := record.Get("title"); ok && v != nil {
				node.Title, _ = v.(string)
			}
			if v, ok := record.Get("url"); ok && v != nil {
				node.URL, _ = v.(string)
			}
			if v, ok := record.Get("label"); ok && v != nil {
				node.Label, _ = v.(string)
			}
			if v, ok := record.Get("depth"); ok && v != nil {
				if d, ok := v.(int64); ok {
					node.Depth = int(d)
				}
			}
			nodes = append(nodes, node)
		}
		return nodes, result.Err()
	})

	if err != nil {
		p.logger.WithContext(ctx).WithError(err).WithField("game_id", gameID).Error("failed to query lineage")
		return nil, fmt.Errorf("failed to query lineage: %w", err)
	}

	nodes, _ := result.([]LineageNode)
	return nodes, nil
}
