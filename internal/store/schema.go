package store

import (
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const taskFileSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "array",
	"items": {
		"type": "object",
		"required": ["id", "description"],
		"properties": {
			"id": {"type": "integer", "minimum": 1},
			"description": {"type": "string"},
			"priority": {"type": "string"},
			"due_date": {"type": ["string", "null"]},
			"completed": {"type": "boolean"},
			"created_at": {"type": "string"}
		}
	}
}`

// Contacts written before ids existed have no "id" key.
const contactFileSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "array",
	"items": {
		"type": "object",
		"required": ["name"],
		"properties": {
			"id": {"type": "integer", "minimum": 1},
			"name": {"type": "string"},
			"phone": {"type": "string"},
			"email": {"type": "string"},
			"address": {"type": "string"}
		}
	}
}`

var (
	taskSchema    = mustCompileSchema("tasks.schema.json", taskFileSchema)
	contactSchema = mustCompileSchema("contacts.schema.json", contactFileSchema)
)

func mustCompileSchema(name, src string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(src)); err != nil {
		panic(err)
	}
	return compiler.MustCompile(name)
}
