package ai

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	subtaskSchema  = mustCompileSchema("schemas/subtasks.json")
	prioritySchema = mustCompileSchema("schemas/priorities.json")
)

// fencePattern matches a whole response wrapped in a markdown code fence,
// with or without a language tag.
var fencePattern = regexp.MustCompile("(?s)^```[A-Za-z0-9_-]*[ \\t]*\\n?(.*?)\\s*```$")

func mustCompileSchema(name string) *jsonschema.Schema {
	data, err := schemaFS.ReadFile(name)
	if err != nil {
		panic(fmt.Sprintf("ai: read schema %s: %v", name, err))
	}
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
		panic(fmt.Sprintf("ai: add schema %s: %v", name, err))
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("ai: compile schema %s: %v", name, err))
	}
	return schema
}

// extractJSON strips surrounding whitespace and a markdown code fence.
func extractJSON(text string) string {
	s := strings.TrimSpace(text)
	if m := fencePattern.FindStringSubmatch(s); m != nil {
		s = strings.TrimSpace(m[1])
	}
	return s
}

// decodeArray parses model text that must hold exactly one JSON array and
// returns its elements, with numbers kept as json.Number.
func decodeArray(text string) ([]any, error) {
	raw := []byte(extractJSON(text))

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, &ValidationError{Reason: "response is not valid JSON", Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &ValidationError{Reason: "unexpected data after JSON value"}
	}

	arr, ok := doc.([]any)
	if !ok {
		return nil, &ValidationError{Reason: fmt.Sprintf("top-level value is %s, not an array", jsonKind(doc))}
	}
	return arr, nil
}

// validateArray checks every element of arr against schema and then decodes
// it into out. Integral numbers written with a fraction, such as 2.0, pass the
// schema as integers and are decoded as integers.
func validateArray(schema *jsonschema.Schema, arr []any, out any) error {
	if err := schema.Validate(arr); err != nil {
		return schemaError(err)
	}
	normalized, err := json.Marshal(normalizeNumbers(arr))
	if err != nil {
		return &ValidationError{Reason: "response could not be re-encoded", Err: err}
	}
	if err := json.Unmarshal(normalized, out); err != nil {
		return &ValidationError{Reason: "response does not fit the expected types", Err: err}
	}
	return nil
}

// normalizeNumbers rewrites integral json.Numbers like 2.0 or 1e2 into plain
// integer form.
func normalizeNumbers(v any) any {
	switch v := v.(type) {
	case []any:
		for i := range v {
			v[i] = normalizeNumbers(v[i])
		}
		return v
	case map[string]any:
		for k, elem := range v {
			v[k] = normalizeNumbers(elem)
		}
		return v
	case json.Number:
		if _, err := v.Int64(); err == nil {
			return v
		}
		f, err := v.Float64()
		if err != nil || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
			return v
		}
		return json.Number(strconv.FormatInt(int64(f), 10))
	default:
		return v
	}
}

// schemaError converts the first leaf jsonschema failure into a ValidationError.
func schemaError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &ValidationError{Reason: "schema validation failed", Err: err}
	}
	leaf := ve
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}
	return &ValidationError{Path: pointerToPath(leaf.InstanceLocation), Reason: leaf.Message}
}

// pointerToPath turns a JSON pointer such as /0/title into $[0].title.
func pointerToPath(pointer string) string {
	if pointer == "" {
		return "$"
	}
	var b strings.Builder
	b.WriteString("$")
	for _, part := range strings.Split(strings.TrimPrefix(pointer, "/"), "/") {
		if part != "" && strings.Trim(part, "0123456789") == "" {
			b.WriteString("[" + part + "]")
			continue
		}
		b.WriteString("." + part)
	}
	return b.String()
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "an object"
	case string:
		return "a string"
	case json.Number:
		return "a number"
	case bool:
		return "a boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}
