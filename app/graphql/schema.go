// Package graphql exposes a read-only catalog query API at
// /api/graphql, for storefront clients that prefer shaping their own
// responses over the fixed REST payloads.
package graphql

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/graphql-go/graphql"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vastrahub/vastra/app/models"
	"github.com/vastrahub/vastra/app/repositories"
	"github.com/vastrahub/vastra/app/services"
	"github.com/vastrahub/vastra/pkg/response"
)

var sizeStockType = graphql.NewObject(graphql.ObjectConfig{
	Name: "SizeStock",
	Fields: graphql.Fields{
		"size":  &graphql.Field{Type: graphql.String},
		"stock": &graphql.Field{Type: graphql.Int},
	},
})

var imageType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Image",
	Fields: graphql.Fields{
		"url": &graphql.Field{Type: graphql.String},
	},
})

var productType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Product",
	Fields: graphql.Fields{
		"id": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if prod, ok := p.Source.(models.Product); ok {
					return prod.ID.Hex(), nil
				}
				if prod, ok := p.Source.(*models.Product); ok {
					return prod.ID.Hex(), nil
				}
				return nil, nil
			},
		},
		"name":        &graphql.Field{Type: graphql.String},
		"description": &graphql.Field{Type: graphql.String},
		"price":       &graphql.Field{Type: graphql.Float},
		"category":    &graphql.Field{Type: graphql.String},
		"sizes":       &graphql.Field{Type: graphql.NewList(sizeStockType)},
		"stock":       &graphql.Field{Type: graphql.Int},
		"images":      &graphql.Field{Type: graphql.NewList(imageType)},
	},
})

// NewSchema builds the catalog schema over the given service.
func NewSchema(catalog *services.CatalogService) (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"products": &graphql.Field{
				Type: graphql.NewList(productType),
				Args: graphql.FieldConfigArgument{
					"keyword":  &graphql.ArgumentConfig{Type: graphql.String},
					"category": &graphql.ArgumentConfig{Type: graphql.String},
					"page":     &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 1},
					"limit":    &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 12},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					f := repositories.ListFilter{
						Page:  p.Args["page"].(int),
						Limit: p.Args["limit"].(int),
					}
					if kw, ok := p.Args["keyword"].(string); ok {
						f.Keyword = kw
					}
					if cat, ok := p.Args["category"].(string); ok {
						f.Category = cat
					}
					products, _, err := catalog.List(p.Context, f)
					return products, err
				},
			},
			"product": &graphql.Field{
				Type: productType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					oid, err := primitive.ObjectIDFromHex(p.Args["id"].(string))
					if err != nil {
						return nil, fmt.Errorf("invalid product id")
					}
					return catalog.Get(p.Context, oid)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: query})
}

// Handler serves POST /api/graphql.
func Handler(schema graphql.Schema) http.HandlerFunc {
	type gqlRequest struct {
		Query     string                 `json:"query"`
		Variables map[string]interface{} `json:"variables"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req gqlRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "Invalid GraphQL request")
			return
		}
		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			Context:        r.Context(),
		})
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result) //nolint:errcheck
	}
}
