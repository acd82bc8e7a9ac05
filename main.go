package main

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/asaidimu/go-tafsiri/core"
	"github.com/asaidimu/go-tafsiri/core/query"
	"github.com/asaidimu/go-tafsiri/core/schema"
	"github.com/asaidimu/go-tafsiri/postgres"
)

const userSchemaJSON = `{
	"name": "users",
	"version": "1.0.0",
	"description": "Schema for user profiles",
	"fields": [
		{"name": "id", "type": "integer", "unique": true},
		{"name": "name", "type": "string", "required": true},
		{"name": "email", "type": "string", "required": true, "unique": true},
		{"name": "age", "type": "integer"},
		{"name": "tags", "type": "array", "itemsType": "string"}
	],
	"relations": [
		{"name": "posts", "target": "posts"},
		{"name": "profile", "target": "profiles"}
	]
}`

const queryJSON = `{
	"project": "+name,age",
	"sort": "age-,name",
	"filter": {"age": {"$gte": 18}, "tags": {"$in": ["go", "sql"]}},
	"join": ["posts"]
}`

func main() {
	var def schema.Definition
	if err := json.Unmarshal([]byte(userSchemaJSON), &def); err != nil {
		log.Fatalf("failed to parse schema: %v", err)
	}

	planner, err := core.NewPlanner(&def)
	if err != nil {
		log.Fatalf("failed to create planner: %v", err)
	}

	var q query.Query
	if err := json.Unmarshal([]byte(queryJSON), &q); err != nil {
		log.Fatalf("failed to parse query: %v", err)
	}

	compiled, err := planner.Compile(&q)
	if err != nil {
		log.Fatalf("failed to compile query: %v", err)
	}

	sql, args, err := postgres.NewRenderer().RenderSelect(compiled)
	if err != nil {
		log.Fatalf("failed to render plan: %v", err)
	}

	fmt.Printf("plan %s against model %q\n", compiled.ID, compiled.Model)
	fmt.Printf("sql:  %s\n", sql)
	fmt.Printf("args: %v\n", args)
	for _, rel := range compiled.Relations {
		fmt.Printf("lazy: %s -> %s\n", rel.Relation.Name(), rel.Relation.Target())
	}
}
