package docs

import (
	"encoding/json"
	"testing"

	"github.com/swaggo/swag"
)

func TestSwaggerDocument(t *testing.T) {
	doc, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	if err != nil {
		t.Fatalf("read doc: %v", err)
	}

	var parsed struct {
		Paths       map[string]map[string]any `json:"paths"`
		Definitions map[string]any            `json:"definitions"`
	}
	if err := json.Unmarshal([]byte(doc), &parsed); err != nil {
		t.Fatalf("document is not valid JSON: %v", err)
	}

	routes := map[string]string{
		"/api/ask":      "post",
		"/api/solve":    "post",
		"/health":       "get",
		"/health/ready": "get",
	}
	for path, method := range routes {
		if _, ok := parsed.Paths[path][method]; !ok {
			t.Errorf("missing %s %s", method, path)
		}
	}
	if _, ok := parsed.Definitions["health.HealthResponse"]; !ok {
		t.Error("missing health.HealthResponse definition")
	}
}
